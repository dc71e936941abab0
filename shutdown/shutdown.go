// Package shutdown turns termination signals into context cancellation so
// playback can release the audio device before the process exits.
package shutdown

import (
	"context"
	"os/signal"
)

// Context is cancelled on the first termination signal. A second signal
// kills the process as usual once stop has been called.
func Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

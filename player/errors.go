package player

import (
	"errors"
	"fmt"
)

var (
	ErrNoLyrics   = errors.New("LRC file contains no lyrics")
	ErrNotStarted = errors.New("playback not started")
)

// AudioError is a failure reported by the audio backend. It ends the play
// session.
type AudioError struct {
	Op   string
	Path string
	Err  error
}

func (e *AudioError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("audio %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("audio %s: %v", e.Op, e.Err)
}

func (e *AudioError) Unwrap() error { return e.Err }

// InvariantViolation is the panic value raised when controller state is
// found inconsistent.
type InvariantViolation struct {
	What string
}

func (e *InvariantViolation) Error() string {
	return "player invariant violated: " + e.What
}

func violate(format string, args ...any) {
	panic(&InvariantViolation{What: fmt.Sprintf(format, args...)})
}

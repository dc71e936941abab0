package audio

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Fake is a Backend driven by a virtual clock. In realtime mode the clock
// follows the wall clock while playing; otherwise it only moves on Advance.
type Fake struct {
	realtime bool
	// measure takes the length from the opened file when it can be decoded.
	measure  bool

	mu        sync.Mutex
	length    time.Duration
	path      string
	playing   bool
	elapsed   time.Duration
	since     time.Time
	seeks     []time.Duration
	stops     int
	done      chan struct{}
	ended     bool
	seekGate  chan struct{}
	seekStart chan time.Duration

	// Injected failures.
	OpenErr error
	SeekErr error
	PlayErr error
}

// NewFake returns a fake of the given length. A zero length never ends.
func NewFake(length time.Duration, realtime bool) *Fake {
	return &Fake{length: length, realtime: realtime, done: make(chan struct{})}
}

// GateSeeks makes every Seek announce itself on the returned channel and
// block until release is called.
func (f *Fake) GateSeeks() (started <-chan time.Duration, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seekGate = make(chan struct{})
	f.seekStart = make(chan time.Duration, 16)
	gate := f.seekGate
	var once sync.Once
	return f.seekStart, func() { once.Do(func() { close(gate) }) }
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Open(path string) error {
	if f.OpenErr != nil {
		return f.OpenErr
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("fake open: %w", err)
		}
	}
	var length time.Duration
	if f.measure && path != "" {
		if format, n, err := Measure(path); err == nil {
			length = format.SampleRate.D(n)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.measure {
		f.length = length
	}
	f.path = path
	f.elapsed = 0
	f.playing = false
	if f.ended {
		f.done = make(chan struct{})
		f.ended = false
	}
	return nil
}

func (f *Fake) Play() error {
	if f.PlayErr != nil {
		return f.PlayErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.playing {
		f.playing = true
		f.since = time.Now()
	}
	return nil
}

func (f *Fake) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settle()
	f.playing = false
	return nil
}

func (f *Fake) Seek(pos time.Duration) error {
	f.mu.Lock()
	gate, started := f.seekGate, f.seekStart
	f.mu.Unlock()
	if started != nil {
		started <- pos
		<-gate
	}
	if f.SeekErr != nil {
		return f.SeekErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, pos)
	f.elapsed = pos
	f.since = time.Now()
	return nil
}

// Advance moves the virtual clock forward while playing.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playing {
		f.elapsed += d
	}
	f.checkEnd()
}

func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settle()
	f.checkEnd()
	return f.elapsed
}

// settle folds wall-clock time into elapsed. Caller holds f.mu.
func (f *Fake) settle() {
	if !f.realtime || !f.playing {
		return
	}
	now := time.Now()
	f.elapsed += now.Sub(f.since)
	f.since = now
}

// checkEnd closes Done once the clock passes the end. Caller holds f.mu.
func (f *Fake) checkEnd() {
	if f.length > 0 && f.elapsed >= f.length {
		f.elapsed = f.length
		f.playing = false
		f.end()
	}
}

// end closes Done once. Caller holds f.mu.
func (f *Fake) end() {
	if !f.ended {
		f.ended = true
		close(f.done)
	}
}

func (f *Fake) Length() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.length
}

func (f *Fake) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Finish ends the song immediately.
func (f *Fake) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	f.end()
}

func (f *Fake) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settle()
	f.playing = false
	f.stops++
	return nil
}

// Seeks returns the positions of completed seeks.
func (f *Fake) Seeks() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.seeks...)
}

func (f *Fake) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *Fake) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *Fake) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}

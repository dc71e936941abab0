package player

import (
	"context"
	"time"

	"hangulfun/audio"
	"hangulfun/log"
)

// mailbox holds at most one value; Put replaces whatever is waiting.
type mailbox[T any] struct {
	ch chan T
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{ch: make(chan T, 1)}
}

func (m *mailbox[T]) Put(v T) {
	for {
		select {
		case m.ch <- v:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

func (m *mailbox[T]) Drain() {
	select {
	case <-m.ch:
	default:
	}
}

func (m *mailbox[T]) C() <-chan T { return m.ch }

// Engine owns the backend for the length of a session. It is the only
// goroutine that calls into the device.
type Engine struct {
	backend  audio.Backend
	session  *Session
	interval time.Duration

	seeks  *mailbox[SeekRequest]
	pauses *mailbox[bool]
}

func NewEngine(backend audio.Backend, session *Session, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Engine{
		backend:  backend,
		session:  session,
		interval: interval,
		seeks:    newMailbox[SeekRequest](),
		pauses:   newMailbox[bool](),
	}
}

// RequestSeek hands a seek to the engine. A newer request replaces one the
// engine has not picked up yet; any pending pause change is dropped since a
// seek always resumes playback.
func (e *Engine) RequestSeek(req SeekRequest) {
	e.pauses.Drain()
	e.seeks.Put(req)
}

func (e *Engine) RequestPause(paused bool) {
	e.pauses.Put(paused)
}

// Run drives the backend until ctx is cancelled, the song ends, or the
// backend fails. It returns nil on cancellation and completion.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-e.backend.Done():
			e.session.Tick(e.backend.Elapsed())
			return nil

		case req := <-e.seeks.C():
			if err := e.backend.Seek(req.Position); err != nil {
				return &AudioError{Op: "seek", Err: err}
			}
			if err := e.backend.Play(); err != nil {
				return &AudioError{Op: "play", Err: err}
			}
			resolved := e.session.ResolveSeek(req.ID)
			log.SeekResolved(req.ID, req.Line, req.Position, resolved)

		case paused := <-e.pauses.C():
			if paused {
				if err := e.backend.Pause(); err != nil {
					return &AudioError{Op: "pause", Err: err}
				}
			} else if err := e.backend.Play(); err != nil {
				return &AudioError{Op: "resume", Err: err}
			}

		case <-ticker.C:
			e.session.Tick(e.backend.Elapsed())
		}
	}
}

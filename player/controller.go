// Package player keeps the lyric cursor, the audio clock and the user's
// commands consistent while a song plays.
package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"hangulfun/audio"
	"hangulfun/log"
	"hangulfun/lrc"
)

const (
	DefaultRewind       = 2 * time.Second
	DefaultTickInterval = 50 * time.Millisecond
)

// Song pairs an audio file with its lyric file.
type Song struct {
	Audio  string
	Lyrics string
}

// NewSong uses the .lrc file next to the audio file.
func NewSong(audioPath string) Song {
	return Song{Audio: audioPath, Lyrics: lrc.Sibling(audioPath)}
}

type Options struct {
	Rewind       time.Duration
	TickInterval time.Duration
	// LyricsOffset moves every lyric line earlier (positive) or later.
	LyricsOffset time.Duration
}

// Controller runs one song at a time on a backend.
type Controller struct {
	backend audio.Backend
	opts    Options

	mu      sync.Mutex
	song    Song
	session *Session
	engine  *Engine
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

func NewController(backend audio.Backend, opts Options) *Controller {
	if opts.Rewind <= 0 {
		opts.Rewind = DefaultRewind
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Controller{backend: backend, opts: opts}
}

// Start loads the song's lyrics, opens the backend and begins playback from
// the top with the cursor following the audio.
func (c *Controller) Start(ctx context.Context, song Song) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		select {
		case <-c.done:
		default:
			return errors.New("player: already running")
		}
	}

	tl, parseErrs, err := lrc.Load(song.Lyrics)
	if err != nil {
		return err
	}
	for _, pe := range parseErrs {
		log.Warnf("lyrics %s: %v", song.Lyrics, pe)
	}
	if c.opts.LyricsOffset != 0 {
		tl = tl.Shift(-c.opts.LyricsOffset)
	}
	log.LyricsLoaded(song.Lyrics, tl.Len(), len(parseErrs))

	session, err := NewSession(tl)
	if err != nil {
		return err
	}

	if err := c.backend.Open(song.Audio); err != nil {
		return &AudioError{Op: "open", Path: song.Audio, Err: err}
	}
	session.start()
	if err := c.backend.Play(); err != nil {
		c.backend.Stop()
		return &AudioError{Op: "play", Path: song.Audio, Err: err}
	}
	log.SessionStart(song.Audio, c.backend.Name())

	runCtx, cancel := context.WithCancel(ctx)
	engine := NewEngine(c.backend, session, c.opts.TickInterval)
	done := make(chan struct{})

	c.song = song
	c.session = session
	c.engine = engine
	c.cancel = cancel
	c.done = done
	c.err = nil

	go func() {
		defer close(done)
		err := engine.Run(runCtx)
		if stopErr := c.backend.Stop(); err == nil && stopErr != nil {
			err = &AudioError{Op: "stop", Err: stopErr}
		}
		session.stop()
		reason := "finished"
		switch {
		case err != nil:
			reason = err.Error()
		case runCtx.Err() != nil:
			reason = "stopped"
		}
		log.SessionEnd(reason)

		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
	}()
	return nil
}

// Stop ends playback and waits until the device is released. It returns
// the error that ended the session, if any.
func (c *Controller) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	cancel()
	<-done
	return c.Err()
}

// Restart plays the current song again from the top.
func (c *Controller) Restart(ctx context.Context) error {
	c.mu.Lock()
	song := c.song
	c.mu.Unlock()
	if song.Audio == "" {
		return ErrNotStarted
	}
	c.Stop()
	return c.Start(ctx, song)
}

// Done is closed when the session ends for any reason.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Song() Song {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.song
}

func (c *Controller) Length() time.Duration { return c.backend.Length() }

func (c *Controller) current() (*Session, *Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.engine
}

func (c *Controller) Session() *Session {
	s, _ := c.current()
	return s
}

func (c *Controller) Snapshot() State {
	s, _ := c.current()
	if s == nil {
		return State{Mode: Stopped{}, Line: -1}
	}
	return s.Snapshot()
}

func (c *Controller) Navigate(dir Direction) {
	if s, _ := c.current(); s != nil {
		s.Navigate(dir)
	}
}

// Activate seeks to the line under the cursor.
func (c *Controller) Activate() error {
	s, e := c.current()
	if s == nil {
		return ErrNotStarted
	}
	req, err := s.Activate()
	if err != nil {
		return err
	}
	log.SeekIssued(req.ID, req.Line, req.Position)
	e.RequestSeek(req)
	return nil
}

// Rewind jumps back by the configured step.
func (c *Controller) Rewind() error {
	s, e := c.current()
	if s == nil {
		return ErrNotStarted
	}
	req, err := s.Rewind(c.opts.Rewind)
	if err != nil {
		return err
	}
	log.SeekIssued(req.ID, req.Line, req.Position)
	e.RequestSeek(req)
	return nil
}

func (c *Controller) TogglePause() error {
	s, e := c.current()
	if s == nil {
		return ErrNotStarted
	}
	paused, changed, err := s.TogglePause()
	if err != nil || !changed {
		return err
	}
	e.RequestPause(paused)
	return nil
}

func (c *Controller) Pause() error { return c.setPaused(true) }

func (c *Controller) Resume() error { return c.setPaused(false) }

func (c *Controller) setPaused(paused bool) error {
	s, e := c.current()
	if s == nil {
		return ErrNotStarted
	}
	changed, err := s.SetPaused(paused)
	if err != nil || !changed {
		return err
	}
	e.RequestPause(paused)
	return nil
}

func (c *Controller) Follow() {
	if s, _ := c.current(); s != nil {
		s.Follow()
	}
}

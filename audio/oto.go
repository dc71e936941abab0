package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"
)

// oto allows one context per process; every song is resampled to this rate.
const otoRate = 44100

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func otoContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   otoRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   50 * time.Millisecond,
		})
		if err != nil {
			otoErr = fmt.Errorf("oto: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

type otoBackend struct {
	mu      sync.Mutex
	player  *oto.Player
	deck    *deck
	stopped bool
}

func newOto(device string) (Backend, error) {
	if device != "" {
		return nil, errors.New("oto plays on the system default device only")
	}
	return &otoBackend{}, nil
}

func (o *otoBackend) Name() string { return "oto" }

func (o *otoBackend) Open(path string) error {
	d, err := openDeck(path, otoRate)
	if err != nil {
		return err
	}
	ctx, err := otoContext()
	if err != nil {
		d.close()
		return err
	}
	player := ctx.NewPlayer(d)
	player.SetBufferSize(int(beep.SampleRate(otoRate).N(100*time.Millisecond)) * 8)

	o.mu.Lock()
	o.player = player
	o.deck = d
	o.stopped = false
	o.mu.Unlock()
	return nil
}

func (o *otoBackend) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.deck == nil {
		return ErrNotOpen
	}
	o.deck.setPaused(false)
	if !o.player.IsPlaying() {
		o.player.Play()
	}
	return o.player.Err()
}

func (o *otoBackend) Pause() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.deck == nil {
		return ErrNotOpen
	}
	o.player.Pause()
	o.deck.setPaused(true)
	return nil
}

// Seek goes through the player so its buffered audio is dropped too.
func (o *otoBackend) Seek(pos time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.deck == nil {
		return ErrNotOpen
	}
	offset := int64(o.deck.rate.N(pos)) * 8
	_, err := o.player.Seek(offset, io.SeekStart)
	return err
}

func (o *otoBackend) Elapsed() time.Duration {
	if d := o.loadDeck(); d != nil {
		return d.elapsed()
	}
	return 0
}

func (o *otoBackend) Length() time.Duration {
	if d := o.loadDeck(); d != nil {
		return d.length()
	}
	return 0
}

func (o *otoBackend) Done() <-chan struct{} {
	if d := o.loadDeck(); d != nil {
		return d.done
	}
	return nil
}

func (o *otoBackend) loadDeck() *deck {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deck
}

func (o *otoBackend) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped || o.deck == nil {
		return nil
	}
	o.stopped = true
	o.player.Pause()
	err := o.player.Close()
	if cerr := o.deck.close(); err == nil {
		err = cerr
	}
	return err
}

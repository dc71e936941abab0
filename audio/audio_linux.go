//go:build linux

package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

func newDefault(device string) (Backend, error) { return newPulse(device) }

func defaultDevices() ([]DeviceInfo, error) { return pulseDevices() }

func newMalgo(string) (Backend, error) {
	return nil, errors.New("malgo backend is not built on linux, use pulse or oto")
}

func malgoDevices() ([]DeviceInfo, error) {
	return nil, errors.New("malgo backend is not built on linux")
}

func pulseDevices() ([]DeviceInfo, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	defer c.Close()
	sinks, err := c.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("pulse list sinks: %w", err)
	}
	var devices []DeviceInfo
	for _, s := range sinks {
		devices = append(devices, DeviceInfo{
			ID:   s.ID(),
			Name: s.Name(),
		})
	}
	return devices, nil
}

type pulseBackend struct {
	device string

	mu      sync.Mutex
	client  *pulse.Client
	stream  *pulse.PlaybackStream
	deck    *deck
	started bool
	stopped bool
}

func newPulse(device string) (Backend, error) {
	return &pulseBackend{device: device}, nil
}

func (p *pulseBackend) Name() string { return "pulse" }

func (p *pulseBackend) Open(path string) error {
	d, err := openDeck(path, 0)
	if err != nil {
		return err
	}
	c, err := pulse.NewClient()
	if err != nil {
		d.close()
		return fmt.Errorf("pulse: %w", err)
	}

	reader := pulse.Float32Reader(func(buf []float32) (int, error) {
		n, ok := d.readFloat32(buf)
		if !ok {
			return 0, pulse.EndOfData
		}
		return n, nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(int(d.rate)),
		pulse.PlaybackLatency(0.05),
		pulse.PlaybackRawOption(func(s *proto.CreatePlaybackStream) {
			s.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	}
	if p.device != "" {
		sink, err := c.SinkByID(p.device)
		if err == nil && sink != nil {
			opts = append(opts, pulse.PlaybackSink(sink))
		}
	}

	stream, err := c.NewPlayback(reader, opts...)
	if err != nil {
		c.Close()
		d.close()
		return fmt.Errorf("pulse playback: %w", err)
	}

	p.mu.Lock()
	p.client = c
	p.stream = stream
	p.deck = d
	p.started = false
	p.stopped = false
	p.mu.Unlock()
	return nil
}

func (p *pulseBackend) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deck == nil {
		return ErrNotOpen
	}
	p.deck.setPaused(false)
	if !p.started {
		p.stream.Start()
		p.started = true
	}
	return p.stream.Error()
}

func (p *pulseBackend) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deck == nil {
		return ErrNotOpen
	}
	p.deck.setPaused(true)
	return nil
}

func (p *pulseBackend) Seek(pos time.Duration) error {
	d := p.loadDeck()
	if d == nil {
		return ErrNotOpen
	}
	return d.seek(pos)
}

func (p *pulseBackend) Elapsed() time.Duration {
	if d := p.loadDeck(); d != nil {
		return d.elapsed()
	}
	return 0
}

func (p *pulseBackend) Length() time.Duration {
	if d := p.loadDeck(); d != nil {
		return d.length()
	}
	return 0
}

func (p *pulseBackend) Done() <-chan struct{} {
	if d := p.loadDeck(); d != nil {
		return d.done
	}
	return nil
}

func (p *pulseBackend) loadDeck() *deck {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deck
}

func (p *pulseBackend) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.deck == nil {
		return nil
	}
	p.stopped = true
	if p.started {
		p.stream.Stop()
	}
	p.stream.Close()
	p.client.Close()
	return p.deck.close()
}

//go:build !linux

package audio

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

func newDefault(device string) (Backend, error) { return newMalgo(device) }

func defaultDevices() ([]DeviceInfo, error) { return malgoDevices() }

func newPulse(string) (Backend, error) {
	return nil, errors.New("pulse backend is only built on linux, use malgo or oto")
}

func pulseDevices() ([]DeviceInfo, error) {
	return nil, errors.New("pulse backend is only built on linux")
}

func malgoDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: %w", err)
	}
	defer func() {
		ctx.Uninit()
		ctx.Free()
	}()
	devices, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for i := range devices {
		result = append(result, DeviceInfo{
			ID:   devices[i].ID.String(),
			Name: devices[i].Name(),
		})
	}
	return result, nil
}

type malgoBackend struct {
	device string

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	dev     *malgo.Device
	deck    *deck
	started bool
	stopped bool
}

func newMalgo(device string) (Backend, error) {
	return &malgoBackend{device: device}, nil
}

func (m *malgoBackend) Name() string { return "malgo" }

func (m *malgoBackend) Open(path string) error {
	d, err := openDeck(path, 0)
	if err != nil {
		return err
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		d.close()
		return fmt.Errorf("malgo: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 2
	cfg.SampleRate = uint32(d.rate)

	if m.device != "" {
		idBytes, err := hex.DecodeString(m.device)
		if err != nil {
			ctx.Uninit()
			ctx.Free()
			d.close()
			return fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		cfg.Playback.DeviceID = devID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			d.readF32LE(out)
		},
	}
	dev, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		d.close()
		return fmt.Errorf("malgo device: %w", err)
	}

	m.mu.Lock()
	m.ctx = ctx
	m.dev = dev
	m.deck = d
	m.started = false
	m.stopped = false
	m.mu.Unlock()
	return nil
}

func (m *malgoBackend) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deck == nil {
		return ErrNotOpen
	}
	m.deck.setPaused(false)
	if !m.started {
		if err := m.dev.Start(); err != nil {
			return fmt.Errorf("malgo start: %w", err)
		}
		m.started = true
	}
	return nil
}

func (m *malgoBackend) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deck == nil {
		return ErrNotOpen
	}
	m.deck.setPaused(true)
	return nil
}

func (m *malgoBackend) Seek(pos time.Duration) error {
	d := m.loadDeck()
	if d == nil {
		return ErrNotOpen
	}
	return d.seek(pos)
}

func (m *malgoBackend) Elapsed() time.Duration {
	if d := m.loadDeck(); d != nil {
		return d.elapsed()
	}
	return 0
}

func (m *malgoBackend) Length() time.Duration {
	if d := m.loadDeck(); d != nil {
		return d.length()
	}
	return 0
}

func (m *malgoBackend) Done() <-chan struct{} {
	if d := m.loadDeck(); d != nil {
		return d.done
	}
	return nil
}

func (m *malgoBackend) loadDeck() *deck {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deck
}

func (m *malgoBackend) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped || m.deck == nil {
		return nil
	}
	m.stopped = true
	if m.started {
		m.dev.Stop()
	}
	m.dev.Uninit()
	m.ctx.Uninit()
	m.ctx.Free()
	return m.deck.close()
}

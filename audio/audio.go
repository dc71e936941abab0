package audio

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNoDevice          = errors.New("no output device")
	ErrNotOpen           = errors.New("audio not open")
)

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", "bluez", " bt ", " bt)", " bt]",
}

// IsBluetooth guesses from the device name whether output goes over
// Bluetooth, where lyrics tend to run ahead of what is heard.
func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Backend plays one song at a time. Implementations are safe for use by a
// single engine goroutine plus concurrent Elapsed readers.
type Backend interface {
	Name() string
	Open(path string) error
	Play() error
	Pause() error
	Seek(pos time.Duration) error
	Elapsed() time.Duration
	Length() time.Duration
	// Done is closed when the song has played to the end.
	Done() <-chan struct{}
	// Stop releases the device. It is safe to call more than once.
	Stop() error
}

// Names lists the backends available on this platform, default first.
func Names() []string {
	if runtime.GOOS == "linux" {
		return []string{"pulse", "oto", "fake"}
	}
	return []string{"malgo", "oto", "fake"}
}

// New returns the named backend. "auto" and "" pick the platform default.
func New(name, device string) (Backend, error) {
	switch name {
	case "", "auto":
		return newDefault(device)
	case "pulse":
		return newPulse(device)
	case "malgo":
		return newMalgo(device)
	case "oto":
		return newOto(device)
	case "fake":
		f := NewFake(0, true)
		f.measure = true
		return f, nil
	}
	return nil, fmt.Errorf("unknown audio backend %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Devices lists output devices for the named backend.
func Devices(name string) ([]DeviceInfo, error) {
	switch name {
	case "", "auto":
		return defaultDevices()
	case "pulse":
		return pulseDevices()
	case "malgo":
		return malgoDevices()
	case "oto":
		return []DeviceInfo{{ID: "", Name: "system default"}}, nil
	case "fake":
		return []DeviceInfo{{ID: "fake", Name: "fake (virtual clock)"}}, nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", name)
}

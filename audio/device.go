package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var errPickCancelled = errors.New("device selection cancelled")

// SelectDevice lets the user pick one of the backend's output devices in
// the terminal, starting on the device with ID current. A single device is
// returned without prompting.
func SelectDevice(backend, current string) (*DeviceInfo, error) {
	devices, err := Devices(backend)
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("device selection needs a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return newPicker(devices, current).run(os.Stdin, os.Stdout)
}

type pickKey int

const (
	keyNone pickKey = iota
	keyUp
	keyDown
	keyChoose
	keyCancel
)

// decodeKey maps one raw-mode read to a picker key.
func decodeKey(b []byte) pickKey {
	switch {
	case len(b) == 1:
		switch b[0] {
		case '\r', '\n':
			return keyChoose
		case 3, 27, 'q': // ctrl+c, esc
			return keyCancel
		case 'k':
			return keyUp
		case 'j':
			return keyDown
		}
	case len(b) == 3 && b[0] == 0x1b && b[1] == '[':
		switch b[2] {
		case 'A':
			return keyUp
		case 'B':
			return keyDown
		}
	}
	return keyNone
}

type picker struct {
	devices []DeviceInfo
	cursor  int
}

func newPicker(devices []DeviceInfo, current string) *picker {
	p := &picker{devices: devices}
	for i, d := range devices {
		if d.ID == current {
			p.cursor = i
		}
	}
	return p
}

// move applies k and reports whether the picker is finished.
func (p *picker) move(k pickKey) (done bool) {
	switch k {
	case keyUp:
		p.cursor = max(p.cursor-1, 0)
	case keyDown:
		p.cursor = min(p.cursor+1, len(p.devices)-1)
	case keyChoose, keyCancel:
		return true
	}
	return false
}

// height is the number of rows render draws.
func (p *picker) height() int { return len(p.devices) + 2 }

func (p *picker) render(w io.Writer) {
	fmt.Fprint(w, "\r\x1b[J")
	fmt.Fprint(w, "Select output device (↑/↓, Enter to confirm):\r\n\r\n")
	for i, d := range p.devices {
		tag := ""
		if IsBluetooth(d.Name) {
			tag = " \x1b[33m[bluetooth: tune lyrics_offset]\x1b[0m"
		}
		if i == p.cursor {
			fmt.Fprintf(w, "  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, tag)
		} else {
			fmt.Fprintf(w, "    %s%s\r\n", d.Name, tag)
		}
	}
}

func (p *picker) run(in io.Reader, out io.Writer) (*DeviceInfo, error) {
	p.render(out)
	buf := make([]byte, 3)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		k := decodeKey(buf[:n])
		if p.move(k) {
			fmt.Fprint(out, "\r\n")
			if k == keyCancel {
				return nil, errPickCancelled
			}
			return &p.devices[p.cursor], nil
		}
		fmt.Fprintf(out, "\x1b[%dA", p.height())
		p.render(out)
	}
}

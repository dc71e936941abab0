package player

import "time"

// Mode is the playback state. The set of variants is closed: Stopped,
// Playing, Paused and Seeking.
type Mode interface {
	mode()
	String() string
}

type Stopped struct{}
type Playing struct{}
type Paused struct{}

// Seeking waits for the backend to confirm Request.
type Seeking struct{ Request SeekRequest }

func (Stopped) mode() {}
func (Playing) mode() {}
func (Paused) mode()  {}
func (Seeking) mode() {}

func (Stopped) String() string { return "stopped" }
func (Playing) String() string { return "playing" }
func (Paused) String() string  { return "paused" }
func (Seeking) String() string { return "seeking" }

// SeekRequest asks the engine to move playback to Position, the start of
// Line. IDs increase monotonically per session.
type SeekRequest struct {
	ID       uint64
	Line     int
	Position time.Duration
}

type event int

const (
	evStart event = iota
	evPause
	evResume
	evSeek
	evSeekDone
	evStop
)

var eventNames = [...]string{"start", "pause", "resume", "seek", "seek-done", "stop"}

func (e event) String() string { return eventNames[e] }

// transition is the only place modes change. ok is false when ev is not
// allowed from m.
func transition(m Mode, ev event, req SeekRequest) (next Mode, ok bool) {
	if ev == evStop {
		return Stopped{}, true
	}
	switch cur := m.(type) {
	case Stopped:
		if ev == evStart {
			return Playing{}, true
		}
	case Playing:
		switch ev {
		case evPause:
			return Paused{}, true
		case evSeek:
			return Seeking{Request: req}, true
		}
	case Paused:
		switch ev {
		case evResume:
			return Playing{}, true
		case evSeek:
			return Seeking{Request: req}, true
		}
	case Seeking:
		switch ev {
		case evSeek:
			return Seeking{Request: req}, true
		case evSeekDone:
			if req.ID == cur.Request.ID {
				return Playing{}, true
			}
		}
	}
	return m, false
}

package player

import (
	"sync"
	"time"

	"hangulfun/lrc"
)

// Cursor selects one syllable. On a line without words the only valid
// cursor is {Line, 0, 0}.
type Cursor struct {
	Line, Word, Syllable int
}

type Direction int

const (
	PrevLine Direction = iota
	NextLine
	PrevSyllable
	NextSyllable
	PrevWord
	NextWord
)

// State is a snapshot of a session.
type State struct {
	Mode      Mode
	Elapsed   time.Duration
	Following bool
	// Line is the current line: the line under the audio clock while
	// following, otherwise the line the user navigated to. -1 before the
	// first line.
	Line   int
	Cursor Cursor
	// Playing is the line under the audio clock regardless of Following.
	Playing int
	// LastSeek is the most recent seek that was resolved.
	LastSeek SeekRequest
	Resolved int
}

// Session is the playback state shared by the engine and the input
// handler. Every method takes the session lock; none of them touch the
// audio device.
type Session struct {
	timeline *lrc.Timeline

	mu     sync.Mutex
	st     State
	lastID uint64
}

// NewSession needs at least one line with words; instrumental breaks alone
// are not lyrics.
func NewSession(tl *lrc.Timeline) (*Session, error) {
	if !hasWords(tl) {
		return nil, ErrNoLyrics
	}
	return &Session{
		timeline: tl,
		st: State{
			Mode:      Stopped{},
			Following: true,
			Line:      -1,
		},
	}, nil
}

func hasWords(tl *lrc.Timeline) bool {
	if tl == nil {
		return false
	}
	for i := 0; i < tl.Len(); i++ {
		if len(tl.Line(i).Words) > 0 {
			return true
		}
	}
	return false
}

func (s *Session) Timeline() *lrc.Timeline { return s.timeline }

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st
	st.Playing = s.timeline.Index(st.Elapsed)
	return st
}

func (s *Session) apply(ev event, req SeekRequest) bool {
	next, ok := transition(s.st.Mode, ev, req)
	if ok {
		s.st.Mode = next
	}
	return ok
}

func (s *Session) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.apply(evStart, SeekRequest{}) {
		violate("start from %v", s.st.Mode)
	}
	s.st.Elapsed = 0
	s.st.Following = true
	s.st.Line = s.timeline.Index(0)
	s.st.Cursor = Cursor{Line: max(s.st.Line, 0)}
	s.check()
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(evStop, SeekRequest{})
}

// Tick records a new clock reading. While following, the current line is
// recomputed and the cursor moves to the start of a newly entered line.
// Readings during a seek are stale and ignored.
func (s *Session) Tick(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.st.Mode.(type) {
	case Stopped, Seeking:
		return
	}
	s.st.Elapsed = elapsed
	if s.st.Following {
		s.follow()
	}
}

// follow syncs the current line with the clock. Caller holds s.mu.
func (s *Session) follow() {
	idx := s.timeline.Index(s.st.Elapsed)
	if idx == s.st.Line {
		return
	}
	s.st.Line = idx
	s.st.Cursor = Cursor{Line: max(idx, 0)}
	s.check()
}

// Navigate moves the cursor and stops following the audio.
func (s *Session) Navigate(dir Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.st.Cursor
	words := s.timeline.Line(c.Line).Words

	switch dir {
	case PrevLine:
		if c.Line > 0 {
			c = Cursor{Line: c.Line - 1}
		}
	case NextLine:
		if c.Line < s.timeline.Len()-1 {
			c = Cursor{Line: c.Line + 1}
		}
	case NextSyllable:
		if len(words) == 0 {
			break
		}
		if c.Syllable+1 < len(words[c.Word].Syllables) {
			c.Syllable++
		} else if c.Word+1 < len(words) {
			c.Word++
			c.Syllable = 0
		}
	case PrevSyllable:
		if c.Syllable > 0 {
			c.Syllable--
		} else if c.Word > 0 {
			c.Word--
			c.Syllable = len(words[c.Word].Syllables) - 1
		}
	case NextWord:
		if c.Word+1 < len(words) {
			c.Word++
			c.Syllable = 0
		}
	case PrevWord:
		if c.Syllable > 0 {
			c.Syllable = 0
		} else if c.Word > 0 {
			c.Word--
		}
	default:
		violate("unknown direction %d", dir)
	}

	s.st.Cursor = c
	s.st.Line = c.Line
	s.st.Following = false
	s.check()
}

// Activate requests a seek to the start of the cursor's line and resumes
// following from there.
func (s *Session) Activate() (SeekRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.st.Cursor.Line
	req, err := s.requestSeek(line, s.timeline.Line(line).Start)
	if err != nil {
		return SeekRequest{}, err
	}
	s.st.Following = true
	s.st.Line = line
	return req, nil
}

// Rewind requests a seek back by d from the current position, or from the
// pending target while a seek is in flight.
func (s *Session) Rewind(d time.Duration) (SeekRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.st.Elapsed
	if sk, ok := s.st.Mode.(Seeking); ok {
		from = sk.Request.Position
	}
	pos := max(from-d, 0)
	return s.requestSeek(s.timeline.Index(pos), pos)
}

// requestSeek supersedes any pending seek. Caller holds s.mu.
func (s *Session) requestSeek(line int, pos time.Duration) (SeekRequest, error) {
	if _, stopped := s.st.Mode.(Stopped); stopped {
		return SeekRequest{}, ErrNotStarted
	}
	s.lastID++
	req := SeekRequest{ID: s.lastID, Line: line, Position: pos}
	if !s.apply(evSeek, req) {
		violate("seek from %v", s.st.Mode)
	}
	return req, nil
}

// ResolveSeek is called by the engine once the backend finished seeking.
// It reports false when id was superseded, in which case the result is
// discarded.
func (s *Session) ResolveSeek(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk, ok := s.st.Mode.(Seeking)
	if !ok || sk.Request.ID != id {
		return false
	}
	if !s.apply(evSeekDone, sk.Request) {
		violate("resolve seek %d from %v", id, s.st.Mode)
	}
	s.st.Elapsed = sk.Request.Position
	s.st.LastSeek = sk.Request
	s.st.Resolved++
	if s.st.Following {
		s.follow()
	}
	return true
}

// TogglePause flips between Playing and Paused. changed is false while a
// seek is pending.
func (s *Session) TogglePause() (paused, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.st.Mode.(type) {
	case Stopped:
		return false, false, ErrNotStarted
	case Playing:
		s.apply(evPause, SeekRequest{})
		return true, true, nil
	case Paused:
		s.apply(evResume, SeekRequest{})
		return false, true, nil
	}
	return false, false, nil
}

// SetPaused moves to Paused or back to Playing. changed is false when the
// session is already in the wanted mode or a seek is pending.
func (s *Session) SetPaused(paused bool) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.st.Mode.(type) {
	case Stopped:
		return false, ErrNotStarted
	case Playing:
		if paused {
			return s.apply(evPause, SeekRequest{}), nil
		}
	case Paused:
		if !paused {
			return s.apply(evResume, SeekRequest{}), nil
		}
	}
	return false, nil
}

// Follow makes the cursor track the audio clock again.
func (s *Session) Follow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Following = true
	idx := s.timeline.Index(s.st.Elapsed)
	s.st.Line = idx
	s.st.Cursor = Cursor{Line: max(idx, 0)}
	s.check()
}

// check panics if the cursor is outside the timeline. Caller holds s.mu.
func (s *Session) check() {
	c := s.st.Cursor
	if c.Line < 0 || c.Line >= s.timeline.Len() {
		violate("cursor line %d outside [0,%d)", c.Line, s.timeline.Len())
	}
	words := s.timeline.Line(c.Line).Words
	if len(words) == 0 {
		if c.Word != 0 || c.Syllable != 0 {
			violate("cursor %+v on a line without words", c)
		}
		return
	}
	if c.Word < 0 || c.Word >= len(words) {
		violate("cursor word %d outside [0,%d) on line %d", c.Word, len(words), c.Line)
	}
	if n := len(words[c.Word].Syllables); c.Syllable < 0 || c.Syllable >= n {
		violate("cursor syllable %d outside [0,%d) at %+v", c.Syllable, n, c)
	}
}

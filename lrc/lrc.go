// Package lrc parses LRC lyric files into a time-indexed timeline.
package lrc

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"hangulfun/hangul"
)

var ErrNoLyricFile = errors.New("LRC file does not exist")

// Line is one timed lyric line. A line tagged with several timestamps
// appears once per tag.
type Line struct {
	Start      time.Duration
	Text       string
	Words      []Word
	SourceLine int
}

// Word is a maximal run of non-whitespace.
type Word struct {
	Text      string
	Syllables []hangul.Char
}

// ParseError describes a line that was dropped.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Timeline is immutable once built.
type Timeline struct {
	lines []Line
	meta  map[string]string
}

func (t *Timeline) Len() int { return len(t.lines) }

func (t *Timeline) Line(i int) Line { return t.lines[i] }

// Lines returns a copy of the line slice.
func (t *Timeline) Lines() []Line {
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

// Meta returns an ID tag value such as "ti" or "ar".
func (t *Timeline) Meta(key string) string { return t.meta[key] }

// Shift returns a copy of t with every line moved by d, clamped at zero.
func (t *Timeline) Shift(d time.Duration) *Timeline {
	out := &Timeline{lines: t.Lines(), meta: t.meta}
	out.shift(d)
	return out
}

func (t *Timeline) shift(d time.Duration) {
	for i := range t.lines {
		start := t.lines[i].Start
		switch {
		case d > 0 && start > maxStart-d:
			start = maxStart
		default:
			start = max(start+d, 0)
		}
		t.lines[i].Start = start
	}
}

// Index returns the last line starting at or before elapsed, or -1.
func (t *Timeline) Index(elapsed time.Duration) int {
	return sort.Search(len(t.lines), func(i int) bool {
		return t.lines[i].Start > elapsed
	}) - 1
}

const (
	maxStart   = time.Duration(math.MaxInt64)
	maxMinutes = int64(maxStart/time.Minute) - 1
)

var (
	timeTagRe = regexp.MustCompile(`^(\d+):(\d+)(?:[.:](\d+))?$`)
	metaTagRe = regexp.MustCompile(`^([A-Za-z]+):(.*)$`)
	wordTagRe = regexp.MustCompile(`<\d+:\d+(?:[.:]\d+)?>`)
)

// Parse never fails as a whole; dropped lines are returned as errors.
func Parse(raw string) (*Timeline, []ParseError) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	t := &Timeline{meta: map[string]string{}}
	var errs []ParseError

	for i, src := range strings.Split(raw, "\n") {
		lineNo := i + 1
		rest := strings.TrimSpace(src)
		if rest == "" {
			continue
		}

		var stamps []time.Duration
		malformed := ""
		for strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				break
			}
			tag := rest[1:end]
			if d, ok, reason := parseTimeTag(tag); ok {
				stamps = append(stamps, d)
			} else if reason != "" {
				malformed = reason
				break
			} else if m := metaTagRe.FindStringSubmatch(tag); m != nil && len(stamps) == 0 {
				key, value := strings.ToLower(m[1]), strings.TrimSpace(m[2])
				if key == "offset" {
					if _, reason := parseOffset(value); reason != "" {
						malformed = reason
						break
					}
				}
				t.meta[key] = value
				rest = ""
				break
			} else {
				break
			}
			rest = rest[end+1:]
		}

		if malformed != "" {
			errs = append(errs, ParseError{Line: lineNo, Text: src, Reason: malformed})
			continue
		}
		if len(stamps) == 0 {
			continue
		}

		text := strings.TrimSpace(wordTagRe.ReplaceAllString(rest, ""))
		words := splitWords(text)
		for _, s := range stamps {
			t.lines = append(t.lines, Line{Start: s, Text: text, Words: words, SourceLine: lineNo})
		}
	}

	// A positive offset makes lyrics appear sooner.
	if off, _ := parseOffset(t.meta["offset"]); off != 0 {
		t.shift(-off)
	}

	sort.SliceStable(t.lines, func(a, b int) bool {
		return t.lines[a].Start < t.lines[b].Start
	})
	return t, errs
}

// parseTimeTag returns ok for a valid mm:ss.xx tag. A non-empty reason means
// the tag looked like a timestamp but could not be read.
func parseTimeTag(tag string) (d time.Duration, ok bool, reason string) {
	if tag == "" || tag[0] < '0' || tag[0] > '9' {
		return 0, false, ""
	}
	m := timeTagRe.FindStringSubmatch(tag)
	if m == nil {
		return 0, false, "malformed timestamp"
	}
	minutes, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || minutes > maxMinutes {
		return 0, false, "minutes out of range"
	}
	if len(m[2]) != 2 {
		return 0, false, "seconds must have two digits"
	}
	seconds, _ := strconv.Atoi(m[2])
	if seconds >= 60 {
		return 0, false, "seconds out of range"
	}
	var ms int
	if frac := m[3]; frac != "" {
		if len(frac) > 3 {
			return 0, false, "fraction too long"
		}
		ms, _ = strconv.Atoi(frac)
		for n := len(frac); n < 3; n++ {
			ms *= 10
		}
	}
	d = time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(ms)*time.Millisecond
	return d, true, ""
}

// parseOffset reads an [offset:] value in milliseconds. An empty value is
// no offset.
func parseOffset(v string) (time.Duration, string) {
	if v == "" {
		return 0, ""
	}
	ms, err := strconv.ParseInt(strings.TrimPrefix(v, "+"), 10, 64)
	if err != nil {
		return 0, "malformed offset"
	}
	limit := int64(maxStart / time.Millisecond)
	if ms > limit || ms < -limit {
		return 0, "offset out of range"
	}
	return time.Duration(ms) * time.Millisecond, ""
}

func splitWords(text string) []Word {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	words := make([]Word, len(fields))
	for i, f := range fields {
		words[i] = Word{Text: f, Syllables: hangul.AnalyzeString(f)}
	}
	return words
}

// Sibling returns the lyric path for an audio file: same directory and
// base name with an .lrc extension.
func Sibling(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".lrc"
}

// Load reads and parses the lyric file at path.
func Load(path string) (*Timeline, []ParseError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNoLyricFile, path)
		}
		return nil, nil, fmt.Errorf("reading lyrics: %w", err)
	}
	t, errs := Parse(strings.ReplaceAll(string(data), "\r\n", "\n"))
	return t, errs, nil
}

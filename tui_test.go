package main

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"hangulfun/audio"
	"hangulfun/player"
)

const testLyrics = `[ti:연습]
[ar:hangulfun]
[00:01.00]안녕
[00:05.50]하세요
[00:08.00]밥을 먹어요
[00:10.00]
[00:12.00]끝
`

// writeSong creates <dir>/song.mp3 next to song.lrc.
func writeSong(t *testing.T, lyrics string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	writeFile(t, path, "id3")
	writeFile(t, filepath.Join(dir, "song.lrc"), lyrics)
	return path
}

func startFake(t *testing.T) (*player.Controller, *audio.Fake) {
	t.Helper()
	fake := audio.NewFake(0, false)
	ctrl := player.NewController(fake, player.Options{TickInterval: 5 * time.Millisecond})
	if err := ctrl.Start(context.Background(), player.NewSong(writeSong(t, testLyrics))); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ctrl.Stop() })
	return ctrl, fake
}

func newTestModel(t *testing.T) (tuiModel, *audio.Fake) {
	t.Helper()
	ctrl, fake := startFake(t)
	m := newTUIModel(context.Background(), ctrl, 0)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(tuiModel), fake
}

func press(t *testing.T, m tuiModel, keys ...tea.KeyMsg) tuiModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(tuiModel)
	}
	return m
}

// eventually polls cond for up to two seconds.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func wantCursor(t *testing.T, ctrl *player.Controller, want player.Cursor) {
	t.Helper()
	if got := ctrl.Snapshot().Cursor; got != want {
		t.Errorf("cursor = %+v, want %+v", got, want)
	}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func TestTUILoadingBeforeSize(t *testing.T) {
	ctrl, _ := startFake(t)
	m := newTUIModel(context.Background(), ctrl, 0)
	if v := m.View(); v != "Loading..." {
		t.Errorf("view = %q", v)
	}
}

func TestTUIRendersLyricsAndSelection(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	for _, want := range []string{
		"연습 - hangulfun",
		"하세요",
		"♪",
		"word:",
		"annyeong",
		"initial: ㅇ (silent)",
		"final  : ㄴ (n)",
		"playing",
		"following",
	} {
		wantContains(t, view, want)
	}
}

func TestTUINavigationStopsFollowing(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, keyDown, keyDown, keyRight, keyTab)

	wantCursor(t, m.ctrl, player.Cursor{Line: 2, Word: 1})
	if m.ctrl.Snapshot().Following {
		t.Error("still following after navigation")
	}
	view := m.View()
	wantContains(t, view, "meogeoyo")
	wantContains(t, view, "manual (f to follow)")

	m = press(t, m, runes("f"))
	if !m.ctrl.Snapshot().Following {
		t.Error("f did not resume following")
	}
}

func TestTUIVimKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, runes("j"), runes("j"), runes("l"), runes("k"))
	wantCursor(t, m.ctrl, player.Cursor{Line: 1})
}

func TestTUIEnterSeeks(t *testing.T) {
	m, fake := newTestModel(t)
	m = press(t, m, keyDown, keyDown, keyEnter)

	eventually(t, "seek resolved", func() bool { return m.ctrl.Snapshot().Resolved == 1 })
	if got, want := fake.Seeks(), []time.Duration{8 * time.Second}; !reflect.DeepEqual(got, want) {
		t.Errorf("seeks = %v, want %v", got, want)
	}
	if !m.ctrl.Snapshot().Following {
		t.Error("enter should resume following")
	}
}

func TestTUISpacePauses(t *testing.T) {
	m, fake := newTestModel(t)
	m = press(t, m, keySpace)
	if mode := m.ctrl.Snapshot().Mode; mode != (player.Paused{}) {
		t.Errorf("mode = %v, want paused", mode)
	}
	wantContains(t, m.View(), "paused")
	eventually(t, "backend paused", func() bool { return !fake.Playing() })
}

func TestTUIQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m, _ := newTestModel(t)
		if _, cmd := m.Update(k); !isQuit(cmd) {
			t.Errorf("key %q did not quit", k.String())
		}
	}
}

func TestTUIEndedAndRestart(t *testing.T) {
	m, fake := newTestModel(t)
	fake.Finish()
	<-m.ctrl.Done()

	next, cmd := m.Update(endedMsg{})
	m = next.(tuiModel)
	if cmd != nil || !m.finished {
		t.Fatalf("after end: cmd=%v finished=%v", cmd, m.finished)
	}
	wantContains(t, m.View(), "r to restart")

	m = press(t, m, runes("r"))
	if m.finished {
		t.Error("still finished after restart")
	}
	if mode := m.ctrl.Snapshot().Mode; mode != (player.Playing{}) {
		t.Errorf("mode = %v, want playing", mode)
	}
}

func TestTUIRestartDisabledWhilePlaying(t *testing.T) {
	m, fake := newTestModel(t)
	fake.Advance(6 * time.Second)
	eventually(t, "line 1", func() bool { return m.ctrl.Snapshot().Line == 1 })

	m = press(t, m, runes("r"))
	if got := m.ctrl.Snapshot().Line; got != 1 {
		t.Errorf("r restarted a playing song: line %d", got)
	}
}

func TestTUIFatalErrorQuits(t *testing.T) {
	m, _ := newTestModel(t)
	boom := &player.AudioError{Op: "seek", Err: errors.New("device lost")}
	next, cmd := m.Update(endedMsg{err: boom})
	if !isQuit(cmd) {
		t.Error("fatal error did not quit")
	}
	if err := next.(tuiModel).err; err != boom {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestTUIHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	if strings.Contains(m.View(), "prev syllable") {
		t.Error("full help shown before ?")
	}
	m = press(t, m, runes("?"))
	wantContains(t, m.View(), "prev syllable")
}

func TestTUIInstrumentalLine(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, keyDown, keyDown, keyDown)
	wantContains(t, m.View(), "(instrumental)")

	m = press(t, m, runes("c"))
	if m.notice != "nothing to copy" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[time.Duration]string{
		0:                                       "0:00",
		65 * time.Second:                        "1:05",
		12*time.Minute + 29600*time.Millisecond: "12:30",
	}
	for d, want := range tests {
		if got := formatClock(d); got != want {
			t.Errorf("formatClock(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestViewFitsWidth(t *testing.T) {
	m, _ := newTestModel(t)
	for _, line := range strings.Split(m.View(), "\n") {
		if n := len([]rune(stripANSI(line))); n > 80 {
			t.Errorf("line is %d columns wide: %q", n, stripANSI(line))
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

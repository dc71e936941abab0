package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hangulfun/clipboard"
	"hangulfun/hangul"
	"hangulfun/log"
	"hangulfun/lrc"
	"hangulfun/player"
)

type tickMsg time.Time

// endedMsg arrives when the play session stops on its own: the song
// finished or the backend failed.
type endedMsg struct{ err error }

type tuiModel struct {
	ctx      context.Context
	ctrl     *player.Controller
	keys     keyMap
	help     help.Model
	interval time.Duration

	width, height int
	st            player.State
	finished      bool
	err           error
	notice        string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	playingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("237"))
	selectedStyle = lipgloss.NewStyle().Reverse(true).Bold(true)
	wordStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

// Rows used by everything but the lyric window.
const chromeRows = 12

func newTUIModel(ctx context.Context, ctrl *player.Controller, interval time.Duration) tuiModel {
	if interval <= 0 {
		interval = player.DefaultTickInterval
	}
	return tuiModel{
		ctx:      ctx,
		ctrl:     ctrl,
		keys:     newKeyMap(),
		help:     help.New(),
		interval: interval,
		st:       ctrl.Snapshot(),
	}
}

func NewTUIProgram(m tuiModel, altScreen bool) *tea.Program {
	var opts []tea.ProgramOption
	if altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return tea.NewProgram(m, opts...)
}

func (m tuiModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitEnded(ctrl *player.Controller) tea.Cmd {
	done := ctrl.Done()
	return func() tea.Msg {
		<-done
		return endedMsg{err: ctrl.Err()}
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), waitEnded(m.ctrl))
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.st = m.ctrl.Snapshot()
		return m, m.tick()

	case endedMsg:
		m.st = m.ctrl.Snapshot()
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.finished = true
		m.keys.Restart.SetEnabled(true)
		m.notice = "song finished, r to restart"

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var err error
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.ctrl.Navigate(player.PrevLine)
	case key.Matches(msg, m.keys.Down):
		m.ctrl.Navigate(player.NextLine)
	case key.Matches(msg, m.keys.Left):
		m.ctrl.Navigate(player.PrevSyllable)
	case key.Matches(msg, m.keys.Right):
		m.ctrl.Navigate(player.NextSyllable)
	case key.Matches(msg, m.keys.NextWord):
		m.ctrl.Navigate(player.NextWord)
	case key.Matches(msg, m.keys.PrevWord):
		m.ctrl.Navigate(player.PrevWord)
	case key.Matches(msg, m.keys.Play):
		if err = m.ctrl.Activate(); err == nil {
			line := m.ctrl.Session().Timeline().Line(m.st.Cursor.Line)
			log.Practice(m.ctrl.Song().Audio, line.Text)
		}
	case key.Matches(msg, m.keys.Pause):
		err = m.ctrl.TogglePause()
	case key.Matches(msg, m.keys.Rewind):
		err = m.ctrl.Rewind()
	case key.Matches(msg, m.keys.Follow):
		m.ctrl.Follow()
	case key.Matches(msg, m.keys.Copy):
		m.notice, err = m.copySelection()
	case key.Matches(msg, m.keys.Restart):
		if err = m.ctrl.Restart(m.ctx); err == nil {
			m.finished = false
			m.keys.Restart.SetEnabled(false)
			cmd = waitEnded(m.ctrl)
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	if errors.Is(err, player.ErrNotStarted) && m.finished {
		m.notice = "song finished, r to restart"
	} else if err != nil {
		m.notice = err.Error()
	}
	m.st = m.ctrl.Snapshot()
	return m, cmd
}

func (m tuiModel) copySelection() (string, error) {
	word, ok := m.selectedWord()
	if !ok {
		return "nothing to copy", nil
	}
	text, err := clipboard.CopyEntry(word.Text, hangul.RomanizeChars(word.Syllables))
	if err != nil {
		return "", err
	}
	return "copied " + text, nil
}

func (m tuiModel) timeline() *lrc.Timeline {
	if s := m.ctrl.Session(); s != nil {
		return s.Timeline()
	}
	return nil
}

func (m tuiModel) selectedWord() (lrc.Word, bool) {
	tl := m.timeline()
	if tl == nil {
		return lrc.Word{}, false
	}
	c := m.st.Cursor
	words := tl.Line(c.Line).Words
	if len(words) == 0 {
		return lrc.Word{}, false
	}
	return words[c.Word], true
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	tl := m.timeline()
	if tl == nil {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(tl))
	b.WriteString("\n\n")
	b.WriteString(m.renderLyrics(tl))
	b.WriteString(m.rule())
	b.WriteString(m.renderSelection())
	b.WriteString(m.rule())
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m tuiModel) rule() string {
	return ruleStyle.Render(strings.Repeat("─", max(m.width, 1))) + "\n"
}

func (m tuiModel) renderHeader(tl *lrc.Timeline) string {
	title := tl.Meta("ti")
	if title == "" {
		title = filepath.Base(m.ctrl.Song().Audio)
	}
	if ar := tl.Meta("ar"); ar != "" {
		title += " - " + ar
	}
	return titleStyle.Render("HANGUL-FUN") + "  " + title
}

func (m tuiModel) renderLyrics(tl *lrc.Timeline) string {
	rows := max(m.height-chromeRows, 3)
	cur := m.st.Cursor.Line
	first := max(cur-rows/2, 0)
	if last := first + rows; last > tl.Len() {
		first = max(tl.Len()-rows, 0)
	}

	var b strings.Builder
	for i := first; i < tl.Len() && i < first+rows; i++ {
		prefix := "  "
		if i == m.st.Playing {
			prefix = playingStyle.Render("▶ ")
		}
		b.WriteString(prefix)
		line := tl.Line(i)
		switch {
		case i == cur:
			b.WriteString(m.renderCursorLine(line))
		case len(line.Words) == 0:
			b.WriteString(dimStyle.Render("♪"))
		default:
			b.WriteString(line.Text)
		}
		b.WriteString("\n")
	}
	for i := tl.Len() - first; i < rows; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m tuiModel) renderCursorLine(line lrc.Line) string {
	if len(line.Words) == 0 {
		return cursorStyle.Render("♪")
	}
	c := m.st.Cursor
	var b strings.Builder
	for wi, w := range line.Words {
		if wi > 0 {
			b.WriteString(cursorStyle.Render(" "))
		}
		for si, ch := range w.Syllables {
			if wi == c.Word && si == c.Syllable {
				b.WriteString(selectedStyle.Render(ch.String()))
			} else {
				b.WriteString(cursorStyle.Render(ch.String()))
			}
		}
	}
	return b.String()
}

func (m tuiModel) renderSelection() string {
	word, ok := m.selectedWord()
	if !ok {
		return dimStyle.Render("(instrumental)") + "\n\n\n\n\n"
	}
	ch := word.Syllables[m.st.Cursor.Syllable]

	var b strings.Builder
	fmt.Fprintf(&b, "word:     %s (%s)\n", wordStyle.Render(word.Text), hangul.RomanizeChars(word.Syllables))
	fmt.Fprintf(&b, "syllable: %s\n", wordStyle.Render(ch.String()))
	if !ch.IsSyllable {
		b.WriteString(dimStyle.Render("  not a Hangul syllable") + "\n\n\n")
		return b.String()
	}

	lead := ch.Parts.Leading()
	roman := lead.Roman
	if roman == "" {
		roman = "silent"
	}
	fmt.Fprintf(&b, "  initial: %c (%s) %s\n", lead.Compat, roman, dimStyle.Render(lead.Hint))

	vowel := ch.Parts.Vowel()
	fmt.Fprintf(&b, "  medial : %c (%s) %s\n", vowel.Compat, vowel.Roman, dimStyle.Render(vowel.Hint))

	if tail, ok := ch.Parts.Trailing(); ok {
		roman := tail.Roman
		if tail.Linked != "" && tail.Linked != tail.Roman {
			roman += "/" + tail.Linked
		}
		fmt.Fprintf(&b, "  final  : %c (%s) %s\n", tail.Compat, roman, dimStyle.Render(tail.Hint))
	} else {
		b.WriteString("\n")
	}
	return b.String()
}

func modeGlyph(mode player.Mode) string {
	switch mode.(type) {
	case player.Playing:
		return "▶ playing"
	case player.Paused:
		return "⏸ paused"
	case player.Seeking:
		return "⟳ seeking"
	}
	return "■ stopped"
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func (m tuiModel) renderStatus() string {
	follow := "following"
	if !m.st.Following {
		follow = "manual (f to follow)"
	}
	status := fmt.Sprintf("%s  %s / %s  %s",
		modeGlyph(m.st.Mode), formatClock(m.st.Elapsed), formatClock(m.ctrl.Length()), follow)
	status = dimStyle.Render(status)
	if m.notice != "" {
		status += "  " + noticeStyle.Render(m.notice)
	}
	return status + "\n"
}

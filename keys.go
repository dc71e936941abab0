package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down    key.Binding
	Left, Right key.Binding
	NextWord    key.Binding
	PrevWord    key.Binding
	Play        key.Binding
	Pause       key.Binding
	Rewind      key.Binding
	Follow      key.Binding
	Copy        key.Binding
	Restart     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "ctrl+p"),
			key.WithHelp("↑/k", "prev line"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "ctrl+n"),
			key.WithHelp("↓/j", "next line"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h", "ctrl+b"),
			key.WithHelp("←/h", "prev syllable"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l", "ctrl+f"),
			key.WithHelp("→/l", "next syllable"),
		),
		NextWord: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next word"),
		),
		PrevWord: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev word"),
		),
		Play: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play line"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause"),
		),
		Rewind: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "rewind"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "follow audio"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy word"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
			key.WithDisabled(),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Pause, k.Follow, k.Restart, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextWord, k.PrevWord, k.Play, k.Pause},
		{k.Rewind, k.Follow, k.Copy, k.Restart},
		{k.Help, k.Quit},
	}
}

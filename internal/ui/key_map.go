package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the [key.Binding] set shared across the review flow's views.
type keyMap struct {
	cursorUp   key.Binding
	cursorDown key.Binding
	toggle     key.Binding
	confirm    key.Binding
	back       key.Binding
	yes        key.Binding
	no         key.Binding
	retry      key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		cursorUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		cursorDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space/x", "include/exclude"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "build"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "cancel"),
		),
		retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resolve again"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.back, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.cursorUp, k.cursorDown, k.toggle},
		{k.confirm, k.back, k.retry},
		{k.yes, k.no, k.quit},
	}
}

package ui

import "github.com/charmbracelet/lipgloss"

var styles = newPalette()

// Palette is the stylesheet for the review flow, built from named
// [lipgloss.Style] fields.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	link  lipgloss.Style
}

func newPalette() *Palette {
	return &Palette{
		title: bold("#7C5CBF").MarginBottom(1),
		ok:    bold("#04B575"),
		err:   bold("#FF5F5F"),
		warn:  fg("#FFA500"),
		help:  fg("#626262").Italic(true),
		link:  fg("#7C5CBF").Underline(true),
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}

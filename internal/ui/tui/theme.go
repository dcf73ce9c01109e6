package tui

import (
	"github.com/charmbracelet/lipgloss"

	"timekeeper/internal/core/model"
)

type palette struct {
	foreground lipgloss.Color
	accent     lipgloss.Color
	muted      lipgloss.Color
	surface    lipgloss.Color
}

var palettes = map[model.Theme]palette{
	model.ThemeLight:  {foreground: "#1f2933", accent: "#3b82f6", muted: "#7b8794", surface: "#e4e7eb"},
	model.ThemeDark:   {foreground: "#f5f7fa", accent: "#a78bfa", muted: "#9aa5b1", surface: "#323f4b"},
	model.ThemeWarm:   {foreground: "#3d2c1e", accent: "#e8590c", muted: "#a27b5c", surface: "#ffe8cc"},
	model.ThemeCool:   {foreground: "#102a43", accent: "#0ca5b0", muted: "#627d98", surface: "#d9f2f5"},
	model.ThemeForest: {foreground: "#1b3a2b", accent: "#2f9e44", muted: "#5c7a63", surface: "#d3f9d8"},
}

type styles struct {
	header   lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	display  lipgloss.Style
	label    lipgloss.Style
	muted    lipgloss.Style
	bar      lipgloss.Style
	toast    lipgloss.Style
	overlay  lipgloss.Style
	selected lipgloss.Style
}

func newStyles(theme model.Theme) styles {
	colors, ok := palettes[theme]
	if !ok {
		colors = palettes[model.ThemeLight]
	}
	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(colors.accent),
		tab:      lipgloss.NewStyle().Foreground(colors.muted).Padding(0, 1),
		tabOn:    lipgloss.NewStyle().Bold(true).Foreground(colors.surface).Background(colors.accent).Padding(0, 1),
		display:  lipgloss.NewStyle().Bold(true).Foreground(colors.foreground).Padding(1, 0),
		label:    lipgloss.NewStyle().Foreground(colors.foreground),
		muted:    lipgloss.NewStyle().Foreground(colors.muted),
		bar:      lipgloss.NewStyle().Foreground(colors.accent),
		toast:    lipgloss.NewStyle().Foreground(colors.surface).Background(colors.foreground).Padding(0, 1),
		overlay:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colors.accent).Padding(1, 2),
		selected: lipgloss.NewStyle().Bold(true).Foreground(colors.accent),
	}
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"timekeeper/internal/core/clock"
	"timekeeper/internal/core/model"
)

const barWidth = 30

// View renders the timer and any open overlay.
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.headerView(), m.tabsView(), m.timerView())

	if extra := m.modeDetailView(); extra != "" {
		sections = append(sections, extra)
	}

	switch m.overlay {
	case overlayNav:
		sections = append(sections, m.navView())
	case overlayOptions:
		sections = append(sections, m.optionsView())
	}

	if m.toast != "" {
		sections = append(sections, m.st.toast.Render(m.toast))
	}
	sections = append(sections, m.st.muted.Render(helpLine))

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.dimmed {
		body = lipgloss.NewStyle().Faint(true).Render(body)
	}
	return body
}

const helpLine = "space start/pause · r reset · s skip · l lap · 1-4 mode · f focus · [ ] timer · m menu · o options · t theme · e export · q quit"

func (m Model) headerView() string {
	left := m.st.header.Render("TimeKeeper")
	right := m.st.muted.Render(clock.WallClock(m.wall, m.settings.Clock24h))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) tabsView() string {
	tabs := make([]string, 0, len(model.Modes))
	for index, mode := range model.Modes {
		label := fmt.Sprintf("%d %s", index+1, mode.Label())
		if mode == m.snapshot.Mode {
			tabs = append(tabs, m.st.tabOn.Render(label))
		} else {
			tabs = append(tabs, m.st.tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) timerView() string {
	state := "paused"
	if m.snapshot.Running {
		state = "running"
	}
	lines := []string{
		m.st.display.Render(m.snapshot.Display()),
		m.st.label.Render(m.snapshot.Label()) + m.st.muted.Render(" · "+state),
	}
	if m.snapshot.Mode != model.ModeStopwatch {
		lines = append(lines, m.progressBar(m.snapshot.Progress()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) progressBar(progress float64) string {
	filled := int(progress * barWidth)
	if filled < 0 {
		filled = 0
	} else if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return m.st.bar.Render(bar) + m.st.muted.Render(fmt.Sprintf(" %3.0f%%", progress*100))
}

func (m Model) modeDetailView() string {
	switch m.snapshot.Mode {
	case model.ModeStopwatch:
		laps := m.snapshot.Stopwatch.Laps
		if len(laps) == 0 {
			return ""
		}
		lines := make([]string, 0, len(laps))
		for index, lap := range laps {
			lines = append(lines, fmt.Sprintf("Lap %2d  %s", len(laps)-index, formatLap(lap, m.settings.ShowHundredths)))
		}
		return m.st.muted.Render(strings.Join(lines, "\n"))
	case model.ModePomodoro:
		return m.st.muted.Render(fmt.Sprintf("Focus length %d min · %d completed",
			int(m.snapshot.Pomodoro.FocusDuration.Minutes()), m.snapshot.Pomodoro.CompletedFocusCount))
	case model.ModeCountdown:
		return m.st.muted.Render("Set to " + clock.FormatSeconds(m.snapshot.Countdown.Duration).String())
	}
	return ""
}

func (m Model) navView() string {
	lines := []string{
		m.st.header.Render("Menu"),
		fmt.Sprintf("Today       %d sessions", m.today),
		fmt.Sprintf("Sessions    %d", m.stats.TotalSessions),
		fmt.Sprintf("Focused     %s", clock.HumanTotal(m.stats.TotalFocusedSeconds)),
		fmt.Sprintf("Streak      %d days", m.stats.StreakDays),
		fmt.Sprintf("Theme       %s", m.theme),
		"",
	}
	for index, mode := range model.Modes {
		lines = append(lines, fmt.Sprintf("[%d] %s", index+1, mode.Label()))
	}
	return m.st.overlay.Render(strings.Join(lines, "\n"))
}

func (m Model) optionsView() string {
	lines := []string{m.st.header.Render("Options")}
	for index, field := range m.fields {
		value, err := m.app.Settings.Get(field.Key)
		if err != nil {
			continue
		}
		if field.Flag {
			value = map[string]string{"true": "on", "false": "off"}[value]
		}
		line := fmt.Sprintf("%-26s %s", field.Label, value)
		if index == m.cursor {
			line = m.st.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", m.st.muted.Render("↑/↓ select · enter toggle · ←/→ adjust · esc close"))
	return m.st.overlay.Render(strings.Join(lines, "\n"))
}

func formatLap(lap time.Duration, hundredths bool) string {
	if hundredths {
		return clock.FormatMilliseconds(lap).String()
	}
	return clock.FormatSeconds(lap).String()
}

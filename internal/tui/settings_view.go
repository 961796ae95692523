package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/glossr/internal/lookup"
)

func (m *Model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	step := 0
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Enter):
		m.screen = screenReader
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Tab):
		m.settings = 1 - m.settings
	case key.Matches(msg, m.keys.NextSent), key.Matches(msg, m.keys.StudyNext), key.Matches(msg, m.keys.TransNext):
		step = 1
	case key.Matches(msg, m.keys.PrevSent), key.Matches(msg, m.keys.StudyPrev), key.Matches(msg, m.keys.TransPrev):
		step = -1
	}
	if step == 0 {
		return nil
	}
	if m.settings == 0 {
		return m.switchLanguages(step, 0)
	}
	return m.switchLanguages(0, step)
}

func (m *Model) viewSettings() string {
	rows := []struct{ label, code string }{
		{"I am reading", m.studyLang},
		{"Translate into", m.transLang},
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Languages"))
	sb.WriteString("\n\n")
	for i, r := range rows {
		line := fmt.Sprintf("%-15s ‹ %s ›", r.label, lookup.LanguageName(r.code))
		if i == m.settings {
			sb.WriteString(listCursorStyle.Render("> " + line))
		} else {
			sb.WriteString(listItemStyle.Render(line))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("  ←/→ change · ↑/↓ switch row · enter done"))

	body := lipgloss.NewStyle().Height(max(m.height-2, 1)).Render(sb.String())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusOrBlank(), "")
}

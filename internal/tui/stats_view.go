package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/glossr/internal/vocab"
)

var (
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
)

func (m *Model) updateStats(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
		m.screen = screenReader
	}
	return nil
}

func statsData(counts []vocab.LanguageCount) []barchart.BarData {
	data := make([]barchart.BarData, 0, len(counts))
	for _, c := range counts {
		data = append(data, barchart.BarData{
			Label:  c.Lang,
			Values: []barchart.BarValue{{Name: c.Lang, Value: float64(c.Count), Style: barStyle}},
		})
	}
	return data
}

func (m *Model) viewStats() string {
	title := titleStyle.Render("Vocabulary stats")
	if m.deps.Vocab == nil || m.deps.Vocab.Bank().Len() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			mutedStyle.Render("  No saved words yet."), "", m.helpLine())
	}

	entries := m.deps.Vocab.Bank().Entries()
	counts := vocab.CountByLanguage(entries)

	chart := barchart.New(max(m.width-4, 10), max(m.height-8, 4),
		barchart.WithDataSet(statsData(counts)),
		barchart.WithStyles(axisStyle, labelStyle),
	)
	chart.Draw()

	var totals []string
	for _, c := range counts {
		totals = append(totals, fmt.Sprintf("%s %d", c.Lang, c.Count))
	}
	summary := statusStyle.Render(fmt.Sprintf("%d words · %s", len(entries), strings.Join(totals, " · ")))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", chart.View(), summary, m.helpLine())
}

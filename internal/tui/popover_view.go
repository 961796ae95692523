package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/metcalfc/glossr/internal/lookup"
	"github.com/metcalfc/glossr/internal/popover"
)

// popoverBody renders the popover content for the current result.
func (m *Model) popoverBody() string {
	cfg := m.deps.Config.Popover
	inner := max(cfg.Width-4, 8) // border and padding
	req, _ := m.coord.Current()
	res := m.coord.Result()

	title := popoverTitleStyle.Render(ansi.Truncate(req.Text, inner, "…"))
	langs := mutedStyle.Render(lookup.LanguageName(req.TargetLang) + " → " + lookup.LanguageName(req.SourceLang))

	var body string
	switch res.Status {
	case lookup.Pending:
		body = m.spinner.View() + " Translating…"
	case lookup.Failed:
		body = errorStyle.UnsetPadding().Render(wordwrap.String(res.Message, inner))
	default:
		body = wordwrap.String(res.Value, inner)
	}

	save := buttonStyle
	if res.Status == lookup.Resolved {
		save = activeButtonStyle
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		m.zones.Mark(zoneSave, save.Render("Save")), " ",
		m.zones.Mark(zoneCopy, buttonStyle.Render("Copy")), " ",
		m.zones.Mark(zoneClose, buttonStyle.Render("×")),
	)

	content := strings.Join([]string{title, langs, "", body, "", buttons}, "\n")
	return popoverStyle.Width(inner + 2).Render(content)
}

// popover renders the box and places it relative to the page area.
func (m *Model) popover() (string, popover.Placement) {
	box := m.popoverBody()
	size := popover.Size{W: lipgloss.Width(box), H: lipgloss.Height(box)}
	anchor := popover.Point{X: m.popAnchor.X, Y: m.popAnchor.Y - headerRows}
	area := popover.Size{W: m.width, H: m.areaHeight()}
	opt := popover.Options{Offset: m.deps.Config.Popover.Offset, Margin: m.deps.Config.Popover.Margin}
	return box, popover.Place(anchor, size, area, opt)
}

// inPopover reports whether screen cell (x, y) falls on the open popover.
func (m *Model) inPopover(x, y int) bool {
	box, p := m.popover()
	row := y - headerRows
	return row >= p.Top && row < p.Top+lipgloss.Height(box) &&
		x >= p.Left && x < p.Left+lipgloss.Width(box)
}

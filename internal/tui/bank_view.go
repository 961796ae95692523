package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/glossr/internal/lookup"
	"github.com/metcalfc/glossr/internal/vocab"
)

type bankView struct {
	cursor    int
	search    textinput.Model
	searching bool
	entries   []vocab.Entry
}

func newBankView() bankView {
	return bankView{search: newInput("search saved words")}
}

func (m *Model) openBank() {
	m.screen = screenBank
	m.bank.cursor = 0
	m.bank.search.Reset()
	m.bank.searching = false
	m.refreshBank()
}

// refreshBank re-applies the search to the study-language entries.
func (m *Model) refreshBank() {
	if m.deps.Vocab == nil {
		m.bank.entries = nil
		return
	}
	m.bank.entries = m.deps.Vocab.Bank().Search(m.studyLang, m.bank.search.Value())
	if m.bank.cursor >= len(m.bank.entries) {
		m.bank.cursor = max(len(m.bank.entries)-1, 0)
	}
}

func (m *Model) updateBank(msg tea.KeyMsg) tea.Cmd {
	b := &m.bank
	if b.searching {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			b.searching = false
			b.search.Blur()
			return nil
		}
		var cmd tea.Cmd
		b.search, cmd = b.search.Update(msg)
		m.refreshBank()
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.screen = screenReader
	case key.Matches(msg, m.keys.Up):
		b.cursor = max(b.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		b.cursor = min(b.cursor+1, max(len(b.entries)-1, 0))
	case key.Matches(msg, m.keys.Search):
		b.searching = true
		return b.search.Focus()
	case key.Matches(msg, m.keys.Delete):
		if len(b.entries) == 0 {
			return nil
		}
		e := b.entries[b.cursor]
		if err := m.deps.Vocab.Remove(context.Background(), e.Text, e.TargetLang); err != nil {
			m.setError(err.Error())
			return nil
		}
		m.setStatus(fmt.Sprintf("Removed %q", e.Text))
		m.refreshBank()
	case key.Matches(msg, m.keys.Export):
		m.exportBank()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	return nil
}

// exportBank writes every saved entry to a dated CSV in the working
// directory.
func (m *Model) exportBank() {
	if m.deps.Vocab == nil || m.deps.Vocab.Bank().Len() == 0 {
		m.setStatus("Nothing to export")
		return
	}
	name := vocab.DefaultExportName(m.now())
	f, err := os.Create(name)
	if err != nil {
		m.setError("Export failed: " + err.Error())
		return
	}
	err = vocab.Export(f, m.deps.Vocab.Bank().Entries())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		m.setError("Export failed: " + err.Error())
		return
	}
	m.setStatus("Exported to " + name)
}

func (m *Model) viewBank() string {
	b := m.bank
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Word bank · " + lookup.LanguageName(m.studyLang)))
	sb.WriteString("\n")
	if b.searching || b.search.Value() != "" {
		sb.WriteString(" " + b.search.View())
	}
	sb.WriteString("\n")

	switch {
	case m.deps.Vocab == nil || !m.deps.Vocab.SignedIn():
		sb.WriteString(mutedStyle.Render("  Sign in (press a on the reader) to keep a word bank."))
	case len(b.entries) == 0:
		sb.WriteString(mutedStyle.Render("  No saved words for this language yet."))
	default:
		rows := m.height - 5
		start := max(0, min(b.cursor-rows/2, len(b.entries)-rows))
		for i := start; i < len(b.entries) && i < start+rows; i++ {
			e := b.entries[i]
			line := fmt.Sprintf("%s  %s", e.Text, mutedStyle.Render(firstLine(e.Translation)))
			if i == b.cursor {
				sb.WriteString(listCursorStyle.Render("> " + line))
			} else {
				sb.WriteString(listItemStyle.Render(line))
			}
			sb.WriteString("\n")
		}
	}

	body := lipgloss.NewStyle().Height(m.height - 2).Render(sb.String())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusOrBlank(), m.helpLine())
}

func (m *Model) statusOrBlank() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return bannerStyle.Render(m.status)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

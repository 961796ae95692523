package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/glossr/internal/reader"
	"github.com/metcalfc/glossr/internal/store"
)

type libraryView struct {
	cursor int
	docs   []store.Document
	err    string
}

func (m *Model) openLibrary() tea.Cmd {
	m.screen = screenLibrary
	m.library = libraryView{}
	uid := m.userID()
	if uid == "" || m.deps.Store == nil {
		return nil
	}
	docs, err := m.deps.Store.ListDocuments(context.Background(), uid)
	if err != nil {
		m.library.err = err.Error()
		return nil
	}
	m.library.docs = docs
	return nil
}

func (m *Model) updateLibrary(msg tea.KeyMsg) tea.Cmd {
	l := &m.library
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.screen = screenReader
	case key.Matches(msg, m.keys.Up):
		l.cursor = max(l.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		l.cursor = min(l.cursor+1, max(len(l.docs)-1, 0))
	case key.Matches(msg, m.keys.Enter):
		if len(l.docs) > 0 {
			m.openStored(l.docs[l.cursor])
		}
	case key.Matches(msg, m.keys.Delete):
		if len(l.docs) == 0 {
			return nil
		}
		d := l.docs[l.cursor]
		if err := m.deps.Store.DeleteDocument(context.Background(), m.userID(), d.Hash); err != nil {
			l.err = err.Error()
			return nil
		}
		l.docs = append(l.docs[:l.cursor], l.docs[l.cursor+1:]...)
		l.cursor = min(l.cursor, max(len(l.docs)-1, 0))
		m.setStatus(fmt.Sprintf("Removed %q from your library", d.Name))
	}
	return nil
}

// openStored loads a library document into the reader.
func (m *Model) openStored(d store.Document) {
	full, err := m.deps.Store.FindDocument(context.Background(), m.userID(), d.Hash)
	if err != nil {
		m.library.err = err.Error()
		return
	}
	seg, err := reader.SegmenterFor(m.studyLang, m.segMode)
	if err != nil {
		m.library.err = err.Error()
		return
	}
	m.saveProgress()
	doc := reader.NewDocument(full.Name, full.Text, seg)
	doc.Hash = full.Hash
	m.segOn = seg != nil
	m.setDocument(doc)
	m.screen = screenReader
}

func (m *Model) viewLibrary() string {
	l := m.library
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Library"))
	sb.WriteString("\n\n")

	switch {
	case m.userID() == "":
		sb.WriteString(mutedStyle.Render("  Sign in to keep documents in your library."))
	case l.err != "":
		sb.WriteString(errorStyle.Render(l.err))
	case len(l.docs) == 0:
		sb.WriteString(mutedStyle.Render("  Documents you open while signed in show up here."))
	default:
		for i, d := range l.docs {
			line := fmt.Sprintf("%s  %s", d.Name, mutedStyle.Render(d.AddedAt.Local().Format("2006-01-02")))
			if d.Hash == m.doc.Hash {
				line += mutedStyle.Render("  (open)")
			}
			if i == l.cursor {
				sb.WriteString(listCursorStyle.Render("> " + line))
			} else {
				sb.WriteString(listItemStyle.Render(line))
			}
			sb.WriteString("\n")
		}
	}

	body := lipgloss.NewStyle().Height(max(m.height-2, 1)).Render(sb.String())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusOrBlank(), m.helpLine())
}

package tui

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/glossr/internal/lookup"
	"github.com/metcalfc/glossr/internal/vocab"
)

func (m *Model) openTrainer() {
	m.screen = screenTrainer
	m.session = nil
	if m.deps.Vocab == nil {
		return
	}
	seed := uint64(m.now().UnixNano())
	r := rand.New(rand.NewPCG(seed, seed>>1))
	m.session = vocab.NewSession(m.deps.Vocab.Bank().ForLanguage(m.studyLang), r)
}

func (m *Model) updateTrainer(msg tea.KeyMsg) tea.Cmd {
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.screen = screenReader
	case s == nil:
	case key.Matches(msg, m.keys.Restart):
		s.Restart()
	case s.Done():
	case key.Matches(msg, m.keys.Flip):
		s.Flip()
	case key.Matches(msg, m.keys.GotIt):
		s.GotIt()
	case key.Matches(msg, m.keys.Learning):
		s.StillLearning()
	}
	return nil
}

func (m *Model) viewTrainer() string {
	title := titleStyle.Render("Flashcards · " + lookup.LanguageName(m.studyLang))
	s := m.session

	var card string
	switch {
	case s == nil:
		card = mutedStyle.Render("Save some words in this language to practise them here.")
	case s.Done():
		_, total := s.Progress()
		card = cardStyle.Render(fmt.Sprintf("Done!\n\nMastered %d of %d\n\nr to go again", s.Mastered(), total))
	default:
		e, _ := s.Card()
		cur, total := s.Progress()
		face := e.Text
		hint := mutedStyle.Render("space to reveal")
		if s.Flipped() {
			face = e.Translation
			hint = mutedStyle.Render("1 got it · 2 still learning")
		}
		width := min(max(m.width-10, 20), 60)
		card = strings.Join([]string{
			mutedStyle.Render(fmt.Sprintf("%d / %d", cur, total)),
			cardStyle.Width(width).Render(face),
			hint,
		}, "\n")
	}

	body := lipgloss.Place(m.width, max(m.height-3, 1), lipgloss.Center, lipgloss.Center, card)
	return lipgloss.JoinVertical(lipgloss.Left, title, body, m.helpLine())
}

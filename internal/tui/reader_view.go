package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/glossr/internal/lookup"
	"github.com/metcalfc/glossr/internal/reader"
	"github.com/metcalfc/glossr/internal/selection"
	"github.com/metcalfc/glossr/internal/state"
	"github.com/metcalfc/glossr/internal/store"
	"github.com/metcalfc/glossr/internal/vocab"
)

// Zone ids of the popover buttons.
const (
	zoneSave  = "pop-save"
	zoneCopy  = "pop-copy"
	zoneClose = "pop-close"
)

// noHighlight never contains a token index.
var noHighlight = selection.Range{Anchor: -1, Focus: -1}

func (m *Model) textWidth() int  { return max(m.width-2*gutter, 1) }
func (m *Model) areaHeight() int { return max(m.height-headerRows-footerRows, 1) }

// setDocument replaces the displayed document. Any drag or open popover
// refers to the old token array and is dropped.
func (m *Model) setDocument(doc *reader.Document) {
	if doc.Hash == "" {
		doc.Hash = state.HashText(doc.Text)
	}
	m.doc = doc
	m.layout = nil
	m.tracker.Reset(doc.Tokens)
	m.coord.Close()
	m.pending = nil
	m.popRange = noHighlight
	m.relayout()
	m.restoreProgress()
}

// relayout rewraps the page after a size or document change, keeping the
// top token in view.
func (m *Model) relayout() {
	top := m.topToken()
	m.layout = newLayout(m.doc.Tokens, m.textWidth())
	m.vp.Width = m.textWidth()
	m.vp.Height = m.areaHeight()
	m.vp.SetContent(strings.Join(m.layout.plain(0, m.layout.lineCount()), "\n"))
	if top >= 0 {
		m.vp.SetYOffset(m.layout.lineOf(top))
	}
}

// topToken is the first token on the top visible line, or -1.
func (m *Model) topToken() int {
	if m.layout == nil || m.doc == nil || len(m.doc.Tokens) == 0 {
		return -1
	}
	idx, _ := m.layout.tokenAt(m.vp.YOffset, 0)
	return idx
}

func (m *Model) scrollTo(index int) {
	m.vp.SetYOffset(m.layout.lineOf(index))
}

func (m *Model) restoreProgress() {
	if m.opts.Fresh || len(m.doc.Tokens) == 0 {
		return
	}
	offset := 0
	if m.deps.State != nil {
		offset = m.deps.State.GetPosition(m.doc.Hash)
	}
	if uid := m.userID(); uid != "" && m.deps.Store != nil {
		if o, err := m.deps.Store.LoadProgress(context.Background(), uid, m.doc.Hash); err == nil && o > 0 {
			offset = o
		}
	}
	if offset > 0 {
		m.scrollTo(reader.TokenAtOffset(m.doc.Tokens, offset))
	}
}

// saveProgress records the byte offset of the top visible token locally
// and, when signed in, in the store.
func (m *Model) saveProgress() {
	top := m.topToken()
	if top < 0 {
		return
	}
	offset := m.doc.Tokens[top].Offset
	if m.deps.State != nil {
		if err := m.deps.State.SetPosition(m.doc.Hash, offset); err != nil {
			m.log.Warn("save position failed", slog.String("error", err.Error()))
		}
	}
	if uid := m.userID(); uid != "" && m.deps.Store != nil {
		if err := m.deps.Store.SaveProgress(context.Background(), uid, m.doc.Hash, offset); err != nil {
			m.log.Warn("save progress failed", slog.String("error", err.Error()))
		}
	}
}

// persistDocument stores the open document for a signed-in user so it
// shows up in the library.
func (m *Model) persistDocument() {
	uid := m.userID()
	if uid == "" || m.deps.Store == nil || m.doc.Text == "" {
		return
	}
	_, err := m.deps.Store.SaveDocument(context.Background(), uid, store.Document{
		Name: m.doc.Title,
		Hash: m.doc.Hash,
		Text: m.doc.Text,
	})
	if err != nil {
		m.log.Warn("save document failed", slog.String("error", err.Error()))
	}
}

// pageCell maps a screen cell to a layout cell; ok is false outside the page.
func (m *Model) pageCell(x, y int) (line, col int, ok bool) {
	row := y - headerRows
	if row < 0 || row >= m.areaHeight() {
		return 0, 0, false
	}
	return m.vp.YOffset + row, x - gutter, true
}

func (m *Model) updateMouse(msg tea.MouseMsg) tea.Cmd {
	if tea.MouseEvent(msg).IsWheel() {
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return cmd
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		if m.coord.Active() {
			switch {
			case m.zones.Get(zoneSave).InBounds(msg):
				return m.saveSelection()
			case m.zones.Get(zoneCopy).InBounds(msg):
				m.copySelection()
				return nil
			case m.zones.Get(zoneClose).InBounds(msg):
				m.coord.Close()
				return nil
			}
			if m.inPopover(msg.X, msg.Y) {
				return nil
			}
		}
		line, col, ok := m.pageCell(msg.X, msg.Y)
		if !ok {
			return nil
		}
		// Only a press on text starts a selection; empty space dismisses.
		idx, exact := m.layout.tokenAt(line, col)
		if !exact {
			m.coord.Close()
			return nil
		}
		m.tracker.Begin(idx)

	case tea.MouseActionMotion:
		if m.tracker.State() != selection.Dragging {
			return nil
		}
		line, col, ok := m.pageCell(msg.X, msg.Y)
		if !ok {
			return nil
		}
		idx, _ := m.layout.tokenAt(line, col)
		m.tracker.Extend(idx)

	case tea.MouseActionRelease:
		if m.tracker.State() != selection.Dragging {
			return nil
		}
		line, col, ok := m.pageCell(msg.X, msg.Y)
		if !ok {
			if m.releaseHandler != nil {
				m.releaseHandler()
			}
			return m.drainLookup()
		}
		idx, _ := m.layout.tokenAt(line, col)
		m.tracker.Extend(idx)
		m.tracker.End(&selection.Point{X: msg.X, Y: msg.Y})
		return m.drainLookup()
	}
	return nil
}

func (m *Model) updateReaderKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back):
		if m.tracker.State() == selection.Dragging {
			m.tracker.Cancel()
		} else {
			m.coord.Close()
		}
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Save):
		return m.saveSelection()
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
	case key.Matches(msg, m.keys.PrevSent):
		m.scrollTo(m.doc.PrevSentence(max(m.topToken(), 0)))
	case key.Matches(msg, m.keys.NextSent):
		m.scrollTo(m.doc.NextSentence(max(m.topToken(), 0)))
	case key.Matches(msg, m.keys.Chapter):
		m.nextChapter()
	case key.Matches(msg, m.keys.Reset):
		m.vp.GotoTop()
		if m.deps.State != nil {
			_ = m.deps.State.Clear(m.doc.Hash)
		}
	case key.Matches(msg, m.keys.StudyNext):
		return m.switchLanguages(1, 0)
	case key.Matches(msg, m.keys.StudyPrev):
		return m.switchLanguages(-1, 0)
	case key.Matches(msg, m.keys.TransNext):
		return m.switchLanguages(0, 1)
	case key.Matches(msg, m.keys.TransPrev):
		return m.switchLanguages(0, -1)
	case key.Matches(msg, m.keys.Bank):
		m.openBank()
	case key.Matches(msg, m.keys.Trainer):
		m.openTrainer()
	case key.Matches(msg, m.keys.Stats):
		m.screen = screenStats
	case key.Matches(msg, m.keys.Settings):
		m.screen = screenSettings
	case key.Matches(msg, m.keys.Account):
		return m.openAccount()
	case key.Matches(msg, m.keys.Library):
		return m.openLibrary()
	default:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) nextChapter() {
	if len(m.doc.Chapters) == 0 {
		m.setStatus("No chapters in this document")
		return
	}
	next := m.doc.ChapterAt(max(m.topToken(), 0)) + 1
	if next >= len(m.doc.Chapters) {
		next = 0
	}
	m.scrollTo(m.doc.Chapters[next].TokenStart)
	m.setStatus("Chapter: " + m.doc.Chapters[next].Title)
}

// switchLanguages cycles the study or translation language. An open
// popover is looked up again for the new pair.
func (m *Model) switchLanguages(study, trans int) tea.Cmd {
	if study != 0 {
		m.studyLang = lookup.NextLanguage(m.studyLang, study)
		m.retokenize()
	}
	if trans != 0 {
		m.transLang = lookup.NextLanguage(m.transLang, trans)
	}
	if m.deps.State != nil {
		err := m.deps.State.SetLanguages(state.Languages{Study: m.studyLang, Translation: m.transLang})
		if err != nil {
			m.log.Warn("save languages failed", slog.String("error", err.Error()))
		}
	}
	m.setStatus(fmt.Sprintf("Reading %s, translating to %s",
		lookup.LanguageName(m.studyLang), lookup.LanguageName(m.transLang)))

	req, ok := m.coord.SetLanguages(m.transLang, m.studyLang)
	if !ok {
		return nil
	}
	m.pending = &req
	return m.drainLookup()
}

// retokenize rebuilds the token array when the study language changes
// whether words are segmented.
func (m *Model) retokenize() {
	seg, err := reader.SegmenterFor(m.studyLang, m.segMode)
	if err != nil {
		m.setError(err.Error())
		return
	}
	if (seg != nil) == m.segOn {
		return
	}
	m.segOn = seg != nil
	top := m.topToken()
	offset := 0
	if top >= 0 {
		offset = m.doc.Tokens[top].Offset
	}
	old := m.doc
	doc := reader.NewDocument(old.Title, old.Text, seg)
	doc.Hash = old.Hash
	doc.SetChapters(old.Chapters, old.TOC)

	m.doc = doc
	m.tracker.Reset(doc.Tokens)
	m.popRange = noHighlight
	m.relayout()
	m.scrollTo(reader.TokenAtOffset(doc.Tokens, offset))
}

func (m *Model) saveSelection() tea.Cmd {
	req, ok := m.coord.Current()
	res := m.coord.Result()
	if !ok || res.Status != lookup.Resolved {
		m.setStatus("Select some text and wait for its translation first")
		return nil
	}
	if m.deps.Vocab == nil || !m.deps.Vocab.SignedIn() {
		m.setStatus("Sign in to save words (press a)")
		return nil
	}
	r, err := m.deps.Vocab.Save(context.Background(), req.Text, res.Value, req.SourceLang, req.TargetLang)
	switch {
	case errors.Is(err, vocab.ErrSignInRequired):
		m.setStatus("Sign in to save words (press a)")
	case err != nil:
		m.setError("Could not save: " + err.Error())
	case r == vocab.AlreadySaved:
		m.setStatus(fmt.Sprintf("%q is already in your word bank", req.Text))
	default:
		m.setStatus(fmt.Sprintf("Saved %q", req.Text))
	}
	return nil
}

func (m *Model) copySelection() {
	req, ok := m.coord.Current()
	if !ok {
		return
	}
	text := req.Text
	if res := m.coord.Result(); res.Status == lookup.Resolved {
		text = res.Value
	}
	if err := m.deps.Clipboard(text); err != nil {
		m.setError("Copy failed: " + err.Error())
		return
	}
	m.setStatus("Copied to clipboard")
}

// highlight is the token range drawn as selected.
func (m *Model) highlight() (selection.Range, bool) {
	if r, ok := m.tracker.Range(); ok {
		return r, true
	}
	if m.coord.Active() {
		return m.popRange, true
	}
	return selection.Range{}, false
}

func (m *Model) savedWords() map[string]bool {
	if m.deps.Vocab == nil {
		return nil
	}
	saved := map[string]bool{}
	for _, e := range m.deps.Vocab.Bank().ForLanguage(m.studyLang) {
		saved[strings.ToLower(e.Text)] = true
	}
	return saved
}

func (m *Model) viewReader() string {
	header := titleStyle.Render(m.doc.Title)
	if ch := m.doc.ChapterTitle(max(m.topToken(), 0)); ch != "" {
		header += mutedStyle.Render("  " + ch)
	}
	header += mutedStyle.Render(fmt.Sprintf("  %s → %s", m.studyLang, m.transLang))

	rng, hl := m.highlight()
	saved := m.savedWords()
	lines := m.layout.render(m.vp.YOffset, m.vp.YOffset+m.areaHeight(), func(tok int, text string) string {
		switch {
		case hl && rng.Contains(tok):
			return selectedStyle.Render(text)
		case saved[strings.ToLower(m.doc.Tokens[tok].Text)]:
			return savedWordStyle.Render(text)
		}
		return text
	})
	for len(lines) < m.areaHeight() {
		lines = append(lines, "")
	}
	pad := strings.Repeat(" ", gutter)
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	page := strings.Join(lines, "\n")
	if len(m.doc.Tokens) == 0 {
		page = mutedStyle.Render(pad + "Nothing to read. Pass a file or pipe text in, or press o for your library.")
	}

	if m.coord.Active() {
		box, p := m.popover()
		page = overlay(page, box, p.Top, p.Left)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, page, m.statusLine(), m.helpLine())
}

func (m *Model) statusLine() string {
	if m.status != "" {
		if m.statusErr {
			return errorStyle.Render(m.status)
		}
		return bannerStyle.Render(m.status)
	}
	pct := 0
	if n := m.vp.TotalLineCount(); n > 0 {
		pct = int(m.vp.ScrollPercent() * 100)
	}
	who := "anonymous"
	if m.deps.Identity != nil {
		if u := m.deps.Identity.Current(); u != nil {
			who = u.Email
		}
	}
	return statusStyle.Render(fmt.Sprintf("%d%% · %d words · %s", pct, m.doc.WordCount(), who))
}

func (m *Model) helpLine() string {
	m.help.ShowAll = m.showHelp
	switch m.screen {
	case screenBank:
		return m.help.View(listKeys{k: m.keys, extras: []key.Binding{m.keys.Search, m.keys.Delete, m.keys.Export}})
	case screenLibrary:
		return m.help.View(listKeys{k: m.keys, extras: []key.Binding{m.keys.Enter, m.keys.Delete}})
	case screenTrainer:
		return m.help.View(trainerKeys{k: m.keys})
	}
	return m.help.View(readerKeys{k: m.keys})
}

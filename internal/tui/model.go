// Package tui is the terminal reader: a wrapped page of tokens the user can
// drag-select with the mouse, a translation popover, and the word bank,
// trainer, stats, account and library screens.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/metcalfc/glossr/internal/config"
	"github.com/metcalfc/glossr/internal/identity"
	"github.com/metcalfc/glossr/internal/lookup"
	"github.com/metcalfc/glossr/internal/reader"
	"github.com/metcalfc/glossr/internal/selection"
	"github.com/metcalfc/glossr/internal/state"
	"github.com/metcalfc/glossr/internal/store"
	"github.com/metcalfc/glossr/internal/vocab"
)

type screen int

const (
	screenReader screen = iota
	screenBank
	screenTrainer
	screenStats
	screenSettings
	screenAccount
	screenLibrary
)

// Rows above and below the page.
const (
	headerRows = 1
	footerRows = 2
	gutter     = 1
)

// Deps are the services the UI drives. Store, Identity and State may be
// nil; the features that need them then report themselves unavailable.
type Deps struct {
	Config    *config.Config
	Log       *slog.Logger
	Provider  lookup.Provider
	Vocab     *vocab.Service
	Store     *store.Store
	Identity  *identity.Service
	State     *state.StateStore
	Clipboard func(string) error
}

// Options tune a session.
type Options struct {
	// Fresh ignores saved reading positions.
	Fresh bool
	// Email pre-fills the sign in form.
	Email string
}

// lookupDoneMsg carries a finished lookup back to the event loop.
type lookupDoneMsg lookup.Completion

// Model is the bubbletea model. It is used through a pointer.
type Model struct {
	deps Deps
	log  *slog.Logger
	opts Options
	keys keyMap
	now  func() time.Time

	help    help.Model
	zones   *zone.Manager
	spinner spinner.Model
	vp      viewport.Model

	doc     *reader.Document
	layout  *layout
	tracker *selection.Tracker
	coord   *lookup.Coordinator

	// releaseHandler is set only while a drag is active.
	releaseHandler func()
	pending        *lookup.Request
	popAnchor      selection.Point
	popRange       selection.Range

	studyLang, transLang string
	segMode              string
	// segOn is set when the token array was built with a word segmenter.
	segOn bool

	screen    screen
	width     int
	height    int
	status    string
	statusErr bool
	showHelp  bool
	quitting  bool

	bank     bankView
	session  *vocab.Session
	account  accountForm
	library  libraryView
	settings int
}

// New builds the UI around doc, which may be empty. segmented tells
// whether doc was tokenized with a word segmenter.
func New(deps Deps, doc *reader.Document, segmented bool, opts Options) *Model {
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	cfg := deps.Config

	m := &Model{
		deps:      deps,
		log:       deps.Log.With("component", "tui"),
		opts:      opts,
		keys:      defaultKeyMap(),
		now:       time.Now,
		help:      help.New(),
		zones:     zone.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(mutedStyle)),
		vp:        viewport.New(80, 21),
		coord:     lookup.NewCoordinator(),
		studyLang: cfg.Languages.Study,
		transLang: cfg.Languages.Translation,
		segMode:   cfg.Reader.Segment,
		segOn:     segmented,
		width:     80,
		height:    24,
		bank:      newBankView(),
		account:   newAccountForm(),
	}
	m.vp.KeyMap.Left.SetEnabled(false)
	m.vp.KeyMap.Right.SetEnabled(false)
	m.vp.MouseWheelEnabled = true
	m.account.email.SetValue(opts.Email)

	if deps.State != nil {
		if l, ok := deps.State.Languages(); ok {
			m.studyLang, m.transLang = l.Study, l.Translation
		}
	}

	m.tracker = selection.NewTracker(nil, m)
	m.tracker.SetReleaseHook(func(onRelease func()) func() {
		m.releaseHandler = onRelease
		return func() { m.releaseHandler = nil }
	})

	if doc == nil {
		doc = reader.NewDocument("glossr", "", nil)
	}
	m.setDocument(doc)
	// The saved study language may need a different tokenization.
	m.retokenize()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// SelectionStarted closes any open popover.
func (m *Model) SelectionStarted() {
	m.coord.Close()
}

// SelectionFinalized issues a lookup for the selected text.
func (m *Model) SelectionFinalized(f selection.Finalized) {
	req := m.coord.Request(f.Text, m.transLang, m.studyLang)
	m.pending = &req
	m.popAnchor = f.Anchor
	m.popRange = f.Range
}

// lookupCmd runs req off the event loop.
func (m *Model) lookupCmd(req lookup.Request) tea.Cmd {
	p := m.deps.Provider
	timeout := m.deps.Config.Lookup.Timeout
	return func() tea.Msg {
		return lookupDoneMsg(lookup.Fetch(context.Background(), p, req, timeout))
	}
}

// drainLookup turns a request queued by the tracker into commands.
func (m *Model) drainLookup() tea.Cmd {
	if m.pending == nil {
		return nil
	}
	req := *m.pending
	m.pending = nil
	m.log.Debug("lookup requested", slog.Uint64("id", req.ID), slog.String("text", req.Text))
	return tea.Batch(m.lookupCmd(req), m.spinner.Tick)
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.statusErr = s, true
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.relayout()
		return m, nil

	case lookupDoneMsg:
		if !m.coord.Complete(msg.ID, msg.Value, msg.Err) {
			m.log.Debug("dropping stale lookup", slog.Uint64("id", msg.ID))
		} else if msg.Err != nil {
			m.log.Warn("lookup failed", slog.Uint64("id", msg.ID), slog.String("error", msg.Err.Error()))
		}
		return m, nil

	case spinner.TickMsg:
		if m.coord.Result().Status != lookup.Pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.BlurMsg:
		// Losing focus mid-drag counts as a release outside the page.
		if m.releaseHandler != nil {
			m.releaseHandler()
		}
		return m, m.drainLookup()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		m.status = ""
		switch m.screen {
		case screenBank:
			return m, m.updateBank(msg)
		case screenTrainer:
			return m, m.updateTrainer(msg)
		case screenStats:
			return m, m.updateStats(msg)
		case screenSettings:
			return m, m.updateSettings(msg)
		case screenAccount:
			return m, m.updateAccount(msg)
		case screenLibrary:
			return m, m.updateLibrary(msg)
		}
		return m, m.updateReaderKeys(msg)

	case tea.MouseMsg:
		if m.screen != screenReader {
			if msg.Action == tea.MouseActionRelease && m.releaseHandler != nil {
				m.releaseHandler()
				return m, m.drainLookup()
			}
			return m, nil
		}
		return m, m.updateMouse(msg)
	}
	return m, nil
}

func (m *Model) quit() tea.Cmd {
	m.saveProgress()
	m.quitting = true
	return tea.Quit
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var v string
	switch m.screen {
	case screenBank:
		v = m.viewBank()
	case screenTrainer:
		v = m.viewTrainer()
	case screenStats:
		v = m.viewStats()
	case screenSettings:
		v = m.viewSettings()
	case screenAccount:
		v = m.viewAccount()
	case screenLibrary:
		v = m.viewLibrary()
	default:
		v = m.viewReader()
	}
	return m.zones.Scan(v)
}

// userID is the signed-in user's id, or "".
func (m *Model) userID() string {
	if m.deps.Identity == nil {
		return ""
	}
	if u := m.deps.Identity.Current(); u != nil {
		return u.ID
	}
	return ""
}

func newInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 256
	return in
}

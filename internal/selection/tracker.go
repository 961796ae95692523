// Package selection tracks pointer-drag selections over a token array.
//
// The tracker is input-agnostic: a front end maps its own pointer events to
// token indices and calls Begin, Extend and End. All methods must be called
// from a single goroutine (the UI event loop).
package selection

import (
	"strings"

	"github.com/metcalfc/glossr/internal/reader"
)

// State is the tracker's phase.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Point is a pointer position in viewport coordinates.
type Point struct {
	X, Y int
}

// Range is a pair of token indices. Anchor is where the drag started.
type Range struct {
	Anchor, Focus int
}

// Bounds returns the range ordered low to high.
func (r Range) Bounds() (lo, hi int) {
	if r.Anchor <= r.Focus {
		return r.Anchor, r.Focus
	}
	return r.Focus, r.Anchor
}

// Contains reports whether index lies inside the normalized range.
func (r Range) Contains(index int) bool {
	lo, hi := r.Bounds()
	return index >= lo && index <= hi
}

// Finalized is a completed, non-empty selection.
type Finalized struct {
	Text   string
	Range  Range
	Anchor Point
}

// Listener receives tracker side effects.
type Listener interface {
	// SelectionStarted fires on Begin; displayed popovers should close.
	SelectionStarted()
	// SelectionFinalized fires when a drag ends on non-blank text.
	SelectionFinalized(Finalized)
}

// ReleaseHook registers a document-wide pointer-up handler. The returned
// function deregisters it.
type ReleaseHook func(onRelease func()) (unregister func())

// Tracker is the Idle/Dragging state machine.
type Tracker struct {
	tokens   []reader.Token
	state    State
	rng      Range
	listener Listener

	hook       ReleaseHook
	unregister func()
}

// NewTracker creates a tracker over tokens. listener may be nil.
func NewTracker(tokens []reader.Token, listener Listener) *Tracker {
	return &Tracker{tokens: tokens, listener: listener}
}

// SetReleaseHook installs the hook used to catch pointer releases outside
// the token surface while a drag is active.
func (t *Tracker) SetReleaseHook(h ReleaseHook) { t.hook = h }

// State returns the current phase.
func (t *Tracker) State() State { return t.state }

// Range returns the in-progress range and whether a drag is active.
func (t *Tracker) Range() (Range, bool) {
	return t.rng, t.state == Dragging
}

// Reset swaps in a new token array, aborting any drag.
func (t *Tracker) Reset(tokens []reader.Token) {
	t.abort()
	t.tokens = tokens
}

// Begin starts a drag at index, replacing any drag in progress.
func (t *Tracker) Begin(index int) {
	if len(t.tokens) == 0 {
		return
	}
	index = t.clamp(index)
	if t.listener != nil {
		t.listener.SelectionStarted()
	}
	t.rng = Range{Anchor: index, Focus: index}
	if t.state != Dragging {
		t.state = Dragging
		t.registerRelease()
	}
}

// Extend moves the focus while dragging. It is a no-op when idle.
func (t *Tracker) Extend(index int) {
	if t.state != Dragging {
		return
	}
	t.rng.Focus = t.clamp(index)
}

// End finishes the drag. at is the pointer position of the release; nil
// means the release happened outside the tracked surface and (0,0) is used.
// The finalized selection is returned and sent to the listener; ok is false
// when nothing was selected.
func (t *Tracker) End(at *Point) (f Finalized, ok bool) {
	if t.state != Dragging {
		return Finalized{}, false
	}
	rng := t.rng
	t.abort()

	lo, hi := rng.Bounds()
	text := strings.TrimSpace(reader.Join(t.tokens, lo, hi))
	if text == "" {
		return Finalized{}, false
	}

	f = Finalized{Text: text, Range: rng}
	if at != nil {
		f.Anchor = *at
	}
	if t.listener != nil {
		t.listener.SelectionFinalized(f)
	}
	return f, true
}

// Cancel abandons a drag without emitting anything.
func (t *Tracker) Cancel() { t.abort() }

func (t *Tracker) abort() {
	t.state = Idle
	t.rng = Range{}
	if t.unregister != nil {
		t.unregister()
		t.unregister = nil
	}
}

func (t *Tracker) registerRelease() {
	if t.hook == nil {
		return
	}
	t.unregister = t.hook(func() { t.End(nil) })
}

func (t *Tracker) clamp(index int) int {
	if index < 0 {
		return 0
	}
	if index >= len(t.tokens) {
		return len(t.tokens) - 1
	}
	return index
}

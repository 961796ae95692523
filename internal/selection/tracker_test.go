package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/glossr/internal/reader"
)

type recorder struct {
	started   int
	finalized []Finalized
}

func (r *recorder) SelectionStarted()              { r.started++ }
func (r *recorder) SelectionFinalized(f Finalized) { r.finalized = append(r.finalized, f) }

// fakeDocument stands in for a document surface with a single global
// pointer-up listener slot.
type fakeDocument struct {
	registered int
	onRelease  func()
}

func (d *fakeDocument) hook(onRelease func()) func() {
	d.registered++
	d.onRelease = onRelease
	return func() {
		d.registered--
		d.onRelease = nil
	}
}

func (d *fakeDocument) release() {
	if d.onRelease != nil {
		d.onRelease()
	}
}

const scenario = "The cat sat.\n\nIt slept."

// indexOf returns the index of the first token with the given text.
func indexOf(t *testing.T, tokens []reader.Token, text string) int {
	t.Helper()
	for _, tok := range tokens {
		if tok.Text == text {
			return tok.Index
		}
	}
	t.Fatalf("token %q not found", text)
	return -1
}

func TestDragScenario(t *testing.T) {
	tokens := reader.Tokenize(scenario)
	rec := &recorder{}
	tr := NewTracker(tokens, rec)

	cat := indexOf(t, tokens, "cat")
	sat := indexOf(t, tokens, "sat.")

	tr.Begin(cat)
	tr.Extend(cat + 1)
	tr.Extend(sat)
	f, ok := tr.End(&Point{X: 12, Y: 3})

	require.True(t, ok)
	assert.Equal(t, "cat sat.", f.Text)
	assert.Equal(t, Point{X: 12, Y: 3}, f.Anchor)
	assert.Equal(t, Idle, tr.State())
	require.Len(t, rec.finalized, 1)
	assert.Equal(t, f, rec.finalized[0])
}

func TestSelectionSymmetry(t *testing.T) {
	tokens := reader.Tokenize(scenario)
	for a := range tokens {
		for b := range tokens {
			tr := NewTracker(tokens, nil)
			tr.Begin(a)
			tr.Extend(b)
			forward, okF := tr.End(nil)

			tr.Begin(b)
			tr.Extend(a)
			backward, okB := tr.End(nil)

			assert.Equal(t, okF, okB, "a=%d b=%d", a, b)
			assert.Equal(t, forward.Text, backward.Text, "a=%d b=%d", a, b)
		}
	}
}

func TestSingleTokenSelection(t *testing.T) {
	tokens := reader.Tokenize(scenario)
	for _, tok := range tokens {
		if tok.IsSpace() {
			continue
		}
		tr := NewTracker(tokens, nil)
		tr.Begin(tok.Index)
		f, ok := tr.End(nil)
		require.True(t, ok)
		assert.Equal(t, tok.Text, f.Text)
		assert.Equal(t, Point{}, f.Anchor, "missing pointer position defaults to origin")
	}
}

func TestWhitespaceOnlySelectionAborts(t *testing.T) {
	tokens := reader.Tokenize(scenario)
	rec := &recorder{}
	tr := NewTracker(tokens, rec)

	blank := indexOf(t, tokens, "\n\n")
	tr.Begin(blank)
	f, ok := tr.End(&Point{X: 1, Y: 1})

	assert.False(t, ok)
	assert.Empty(t, f.Text)
	assert.Empty(t, rec.finalized)
	assert.Equal(t, Idle, tr.State())
	_, dragging := tr.Range()
	assert.False(t, dragging)
}

func TestExtendWhileIdleIsNoop(t *testing.T) {
	tokens := reader.Tokenize(scenario)
	tr := NewTracker(tokens, nil)

	tr.Extend(4)
	assert.Equal(t, Idle, tr.State())
	_, ok := tr.End(nil)
	assert.False(t, ok)
}

func TestExtendIsIdempotent(t *testing.T) {
	tokens := reader.Tokenize(scenario)
	tr := NewTracker(tokens, nil)

	tr.Begin(0)
	for i := 0; i < 5; i++ {
		tr.Extend(2)
	}
	rng, ok := tr.Range()
	require.True(t, ok)
	assert.Equal(t, Range{Anchor: 0, Focus: 2}, rng)
}

func TestBeginClosesPopoverAndRestarts(t *testing.T) {
	tokens := reader.Tokenize(scenario)
	rec := &recorder{}
	tr := NewTracker(tokens, rec)

	tr.Begin(0)
	tr.Extend(4)
	tr.Begin(6)
	assert.Equal(t, 2, rec.started)

	f, ok := tr.End(nil)
	require.True(t, ok)
	assert.Equal(t, "It", f.Text)
}

func TestGlobalReleaseListener(t *testing.T) {
	tokens := reader.Tokenize(scenario)
	doc := &fakeDocument{}
	rec := &recorder{}
	tr := NewTracker(tokens, rec)
	tr.SetReleaseHook(doc.hook)

	assert.Equal(t, 0, doc.registered, "no listener while idle")

	tr.Begin(2)
	assert.Equal(t, 1, doc.registered)
	tr.Begin(4) // restart keeps a single listener
	assert.Equal(t, 1, doc.registered)

	tr.Extend(6)
	doc.release()

	assert.Equal(t, 0, doc.registered, "listener removed after finalize")
	require.Len(t, rec.finalized, 1)
	assert.Equal(t, "sat.\n\nIt", rec.finalized[0].Text)
	assert.Equal(t, Point{}, rec.finalized[0].Anchor)

	// Releasing again after finalize does nothing.
	doc.release()
	assert.Len(t, rec.finalized, 1)
}

func TestListenerRemovedOnAbort(t *testing.T) {
	tokens := reader.Tokenize("a  b")
	doc := &fakeDocument{}
	tr := NewTracker(tokens, nil)
	tr.SetReleaseHook(doc.hook)

	tr.Begin(1)
	_, ok := tr.End(nil)
	assert.False(t, ok)
	assert.Equal(t, 0, doc.registered)

	tr.Begin(0)
	tr.Reset(reader.Tokenize("new document"))
	assert.Equal(t, 0, doc.registered)
	assert.Equal(t, Idle, tr.State())
}

func TestIndicesAreClamped(t *testing.T) {
	tokens := reader.Tokenize("one two")
	tr := NewTracker(tokens, nil)

	tr.Begin(-5)
	tr.Extend(99)
	f, ok := tr.End(nil)
	require.True(t, ok)
	assert.Equal(t, "one two", f.Text)
}

func TestEmptyDocumentIgnoresBegin(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.Begin(0)
	assert.Equal(t, Idle, tr.State())
}

func TestRangeHelpers(t *testing.T) {
	r := Range{Anchor: 5, Focus: 2}
	lo, hi := r.Bounds()
	assert.Equal(t, 2, lo)
	assert.Equal(t, 5, hi)
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(6))
}

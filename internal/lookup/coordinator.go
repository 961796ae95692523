// Package lookup drives translation lookups for finalized selections.
//
// The Coordinator keeps a single visible result slot. Every request gets a
// new id; a completion is committed only if it carries the latest id, so a
// slow answer to an old selection can never overwrite a newer one.
package lookup

import (
	"context"
	"errors"
	"strings"
	"time"
)

// NoTranslation is shown when a provider answers with nothing.
const NoTranslation = "No translation found."

// Status is the state of the visible result slot.
type Status int

const (
	Idle Status = iota
	Pending
	Resolved
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Request is one lookup. TargetLang is the study language the text is
// written in; SourceLang is the language the answer is given in.
type Request struct {
	ID         uint64
	Text       string
	SourceLang string
	TargetLang string
}

// Result is the visible outcome for RequestID.
type Result struct {
	RequestID uint64
	Status    Status
	Value     string
	Message   string
}

// Coordinator owns the request counter and the result slot. It is not safe
// for concurrent use; drive it from the UI event loop.
type Coordinator struct {
	lastID  uint64
	current Request
	active  bool
	result  Result
}

// NewCoordinator returns an idle coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Request issues a new lookup and marks the result Pending. The caller runs
// the lookup and reports back through Complete.
func (c *Coordinator) Request(text, sourceLang, targetLang string) Request {
	c.lastID++
	c.current = Request{
		ID:         c.lastID,
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}
	c.active = true
	c.result = Result{RequestID: c.lastID, Status: Pending}
	return c.current
}

// SetLanguages re-issues the current text for a new language pair. ok is
// false when no selection is active or the pair is unchanged.
func (c *Coordinator) SetLanguages(sourceLang, targetLang string) (req Request, ok bool) {
	if !c.active {
		return Request{}, false
	}
	if c.current.SourceLang == sourceLang && c.current.TargetLang == targetLang {
		return Request{}, false
	}
	return c.Request(c.current.Text, sourceLang, targetLang), true
}

// Complete commits the outcome of request id. It returns false, leaving the
// slot untouched, when the request has been superseded or closed.
func (c *Coordinator) Complete(id uint64, value string, err error) bool {
	if !c.active || id != c.lastID {
		return false
	}
	if err != nil {
		c.result = Result{RequestID: id, Status: Failed, Message: failureMessage(err)}
		return true
	}
	value = strings.TrimSpace(value)
	if value == "" {
		value = NoTranslation
	}
	c.result = Result{RequestID: id, Status: Resolved, Value: value}
	return true
}

// Close clears the slot; completions still in flight will be dropped.
func (c *Coordinator) Close() {
	c.active = false
	c.current = Request{}
	c.result = Result{}
}

// Active reports whether a popover's request is current.
func (c *Coordinator) Active() bool { return c.active }

// Current returns the latest request and whether it is still open.
func (c *Coordinator) Current() (Request, bool) { return c.current, c.active }

// Result returns the visible result.
func (c *Coordinator) Result() Result { return c.result }

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Lookup timed out. Select the text again to retry."
	case errors.Is(err, ErrNotFound):
		return NoTranslation
	}
	msg := err.Error()
	if msg == "" {
		return "Lookup failed."
	}
	return "Lookup failed: " + msg
}

// Completion is the outcome of running a Request against a Provider.
type Completion struct {
	ID    uint64
	Value string
	Err   error
}

// Fetch runs req against p with a timeout. It never panics; a provider
// panic is reported as an error.
func Fetch(ctx context.Context, p Provider, req Request, timeout time.Duration) (c Completion) {
	c.ID = req.ID
	defer func() {
		if r := recover(); r != nil {
			c.Value = ""
			c.Err = panicError(r)
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	c.Value, c.Err = p.Lookup(ctx, req.Text, req.SourceLang, req.TargetLang)
	return c
}

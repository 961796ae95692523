// Package vocab holds the personal word bank: the deduplicating save gate,
// search, CSV export, stats and the flashcard trainer.
package vocab

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// Entry is one saved word or phrase. TargetLang is the study language of
// Text; SourceLang is the language of Translation.
type Entry struct {
	Text        string    `json:"text"`
	Translation string    `json:"translation"`
	SourceLang  string    `json:"source_lang"`
	TargetLang  string    `json:"target_lang"`
	Timestamp   time.Time `json:"timestamp"`
}

// Key identifies an entry: case-insensitive text within a study language.
func (e Entry) Key() string { return Key(e.Text, e.TargetLang) }

// Key builds the uniqueness key for text in targetLang. The language is
// length-prefixed so no pair of codes and texts can produce the same key.
func Key(text, targetLang string) string {
	return strconv.Itoa(len(targetLang)) + ":" + targetLang + "|" + strings.ToLower(text)
}

// Bank is an in-memory entry collection with first-save-wins semantics.
// Returned slices are copies; callers may keep them.
type Bank struct {
	entries []Entry
}

// NewBank returns a bank holding entries, dropping later duplicates.
func NewBank(entries []Entry) *Bank {
	b := &Bank{}
	for _, e := range entries {
		b.TrySave(e)
	}
	return b
}

// Entries returns every entry in save order.
func (b *Bank) Entries() []Entry { return slices.Clone(b.entries) }

// Len is the number of entries.
func (b *Bank) Len() int { return len(b.entries) }

// Contains reports whether an entry with the same key exists.
func (b *Bank) Contains(text, targetLang string) bool {
	return b.indexOf(Key(text, targetLang)) >= 0
}

func (b *Bank) indexOf(key string) int {
	return slices.IndexFunc(b.entries, func(e Entry) bool { return e.Key() == key })
}

// TrySave appends e unless its key is already present. It returns the
// resulting collection and whether e was added.
func (b *Bank) TrySave(e Entry) ([]Entry, bool) {
	if b.indexOf(e.Key()) >= 0 {
		return b.Entries(), false
	}
	b.entries = append(b.entries, e)
	return b.Entries(), true
}

// Remove deletes every entry keyed (text, targetLang). A missing key leaves
// the bank unchanged.
func (b *Bank) Remove(text, targetLang string) []Entry {
	key := Key(text, targetLang)
	b.entries = slices.DeleteFunc(b.entries, func(e Entry) bool { return e.Key() == key })
	return b.Entries()
}

// ForLanguage returns the entries studied in targetLang.
func (b *Bank) ForLanguage(targetLang string) []Entry {
	var out []Entry
	for _, e := range b.entries {
		if e.TargetLang == targetLang {
			out = append(out, e)
		}
	}
	return out
}

type entrySource []Entry

func (s entrySource) String(i int) string { return s[i].Text + " " + s[i].Translation }
func (s entrySource) Len() int            { return len(s) }

// Search fuzzy-matches query against text and translation within the
// targetLang view, best match first. An empty query returns the whole view.
func (b *Bank) Search(targetLang, query string) []Entry {
	view := b.ForLanguage(targetLang)
	query = strings.TrimSpace(query)
	if query == "" {
		return view
	}
	matches := fuzzy.FindFrom(query, entrySource(view))
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, view[m.Index])
	}
	return out
}

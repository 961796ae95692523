package vocab

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(text, translation, target string) Entry {
	return Entry{Text: text, Translation: translation, SourceLang: "en", TargetLang: target}
}

func TestBankFirstSaveWins(t *testing.T) {
	b := NewBank(nil)

	got, saved := b.TrySave(entry("Casa", "house", "es"))
	require.True(t, saved)
	require.Len(t, got, 1)

	got, saved = b.TrySave(entry("casa", "home", "es"))
	assert.False(t, saved)
	require.Len(t, got, 1)
	assert.Equal(t, "house", got[0].Translation)
	assert.Equal(t, "Casa", got[0].Text)

	// Same text in another study language is a different entry.
	_, saved = b.TrySave(entry("casa", "maison", "fr"))
	assert.True(t, saved)
	assert.Equal(t, 2, b.Len())
}

func TestBankRemove(t *testing.T) {
	b := NewBank([]Entry{entry("hello", "bonjour", "fr")})
	before := b.Entries()

	after := b.Remove("hello", "es")
	assert.Equal(t, before, after, "missing key leaves the bank unchanged")

	after = b.Remove("HELLO", "fr")
	assert.Empty(t, after)
	assert.False(t, b.Contains("hello", "fr"))
}

func TestBankForLanguageDoesNotMutate(t *testing.T) {
	b := NewBank([]Entry{
		entry("gato", "cat", "es"),
		entry("chat", "cat", "fr"),
		entry("perro", "dog", "es"),
	})

	es := b.ForLanguage("es")
	require.Len(t, es, 2)
	es[0].Text = "changed"

	assert.Equal(t, "gato", b.Entries()[0].Text)
	assert.Empty(t, b.ForLanguage("de"))
}

func TestNewBankDropsDuplicates(t *testing.T) {
	b := NewBank([]Entry{entry("Sol", "sun", "es"), entry("sol", "ground", "es")})
	require.Equal(t, 1, b.Len())
	assert.Equal(t, "sun", b.Entries()[0].Translation)
}

func TestBankSearch(t *testing.T) {
	b := NewBank([]Entry{
		entry("mariposa", "butterfly", "es"),
		entry("mar", "sea", "es"),
		entry("manzana", "apple", "es"),
		entry("papillon", "butterfly", "fr"),
	})

	got := b.Search("es", "butter")
	require.Len(t, got, 1)
	assert.Equal(t, "mariposa", got[0].Text)

	got = b.Search("es", "mar")
	require.NotEmpty(t, got)
	assert.Equal(t, "mar", got[0].Text)

	assert.Len(t, b.Search("es", "  "), 3)
	assert.Empty(t, b.Search("es", "zzz"))
}

type memRepo struct {
	entries  map[string]map[string]Entry
	fail     error
	failList error
}

func newMemRepo() *memRepo { return &memRepo{entries: map[string]map[string]Entry{}} }

func (r *memRepo) List(_ context.Context, userID string) ([]Entry, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	if r.failList != nil {
		return nil, r.failList
	}
	var out []Entry
	for _, e := range r.entries[userID] {
		out = append(out, e)
	}
	return out, nil
}

func (r *memRepo) Save(_ context.Context, userID string, e Entry) error {
	if r.fail != nil {
		return r.fail
	}
	if r.entries[userID] == nil {
		r.entries[userID] = map[string]Entry{}
	}
	if _, ok := r.entries[userID][e.Key()]; !ok {
		r.entries[userID][e.Key()] = e
	}
	return nil
}

func (r *memRepo) Delete(_ context.Context, userID, key string) error {
	if r.fail != nil {
		return r.fail
	}
	delete(r.entries[userID], key)
	return nil
}

func TestServiceAnonymous(t *testing.T) {
	s := NewService(newMemRepo(), discardLogger())
	_, err := s.Save(context.Background(), "gato", "cat", "en", "es")
	assert.ErrorIs(t, err, ErrSignInRequired)
	assert.ErrorIs(t, s.Remove(context.Background(), "gato", "es"), ErrSignInRequired)
	assert.False(t, s.SignedIn())
}

func TestServiceSaveAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := NewService(repo, discardLogger())
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, s.Load(ctx, "u1"))

	res, err := s.Save(ctx, " Casa ", "house", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, Saved, res)

	res, err = s.Save(ctx, "casa", "home", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, AlreadySaved, res)

	require.Len(t, repo.entries["u1"], 1)
	assert.Equal(t, "house", repo.entries["u1"][Key("casa", "es")].Translation)

	// Reloading reads the repository back.
	require.NoError(t, s.Load(ctx, "u1"))
	assert.True(t, s.Bank().Contains("CASA", "es"))

	require.NoError(t, s.Remove(ctx, "casa", "fr"))
	assert.Equal(t, 1, s.Bank().Len())
	require.NoError(t, s.Remove(ctx, "casa", "es"))
	assert.Equal(t, 0, s.Bank().Len())
	assert.Empty(t, repo.entries["u1"])
}

func TestServiceStorageFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := NewService(repo, discardLogger())
	require.NoError(t, s.Load(ctx, "u1"))
	_, err := s.Save(ctx, "luna", "moon", "en", "es")
	require.NoError(t, err)

	repo.fail = errors.New("disk full")
	_, err = s.Save(ctx, "sol", "sun", "en", "es")
	assert.Error(t, err)
	assert.False(t, s.Bank().Contains("sol", "es"))

	assert.Error(t, s.Remove(ctx, "luna", "es"))
	assert.True(t, s.Bank().Contains("luna", "es"))
}

func TestServiceFailedLoadStaysAnonymous(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := NewService(repo, discardLogger())
	require.NoError(t, s.Load(ctx, "u1"))
	_, err := s.Save(ctx, "Casa", "house", "en", "es")
	require.NoError(t, err)

	repo.failList = errors.New("disk I/O error")
	assert.Error(t, s.Load(ctx, "u1"))
	assert.False(t, s.SignedIn())
	assert.Zero(t, s.Bank().Len())

	_, err = s.Save(ctx, "casa", "home", "en", "es")
	assert.ErrorIs(t, err, ErrSignInRequired)

	repo.failList = nil
	require.NoError(t, s.Load(ctx, "u1"))
	res, err := s.Save(ctx, "casa", "home", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, AlreadySaved, res)
	assert.Equal(t, "house", repo.entries["u1"][Key("casa", "es")].Translation)
}

func TestKeyKeepsLanguagesApart(t *testing.T) {
	assert.NotEqual(t, Key("c", "a|b"), Key("b|c", "a"))
	assert.Equal(t, Key("Casa", "es"), Key("casa", "es"))

	b := NewBank([]Entry{entry("c", "x", "a|b"), entry("b|c", "y", "a")})
	assert.Equal(t, 2, b.Len())
	assert.True(t, b.Contains("C", "a|b"))
	assert.False(t, b.Contains("c", "a"))
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2024, 3, 9, 8, 30, 0, 0, time.Local)
	err := Export(&buf, []Entry{
		{Text: "hola, amigo", Translation: "hi, friend", SourceLang: "en", TargetLang: "es", Timestamp: ts},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Original Text", "Translation", "Learning Language", "Translation Language", "Saved On"}, rows[0])
	assert.Equal(t, []string{"hola, amigo", "hi, friend", "es", "en", "2024-03-09 08:30:00"}, rows[1])
}

func TestDefaultExportName(t *testing.T) {
	assert.Equal(t, "word_bank_export_2024-12-31.csv", DefaultExportName(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
}

func TestSession(t *testing.T) {
	assert.Nil(t, NewSession(nil, nil))

	entries := []Entry{entry("uno", "one", "es"), entry("dos", "two", "es"), entry("tres", "three", "es")}
	s := NewSession(entries, rand.New(rand.NewPCG(7, 7)))
	require.NotNil(t, s)

	cur, total := s.Progress()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 3, total)

	s.Flip()
	assert.True(t, s.Flipped())
	s.GotIt()
	assert.False(t, s.Flipped(), "next card starts face down")
	s.StillLearning()
	s.GotIt()

	assert.True(t, s.Done())
	assert.Equal(t, 2, s.Mastered())
	_, ok := s.Card()
	assert.False(t, ok)

	// Extra answers after the end change nothing.
	s.GotIt()
	assert.Equal(t, 2, s.Mastered())

	s.Restart()
	assert.False(t, s.Done())
	assert.Equal(t, 0, s.Mastered())
	card, ok := s.Card()
	require.True(t, ok)
	assert.Contains(t, []string{"uno", "dos", "tres"}, card.Text)
}

func TestCountByLanguage(t *testing.T) {
	got := CountByLanguage([]Entry{
		entry("a", "", "fr"),
		entry("b", "", "es"),
		entry("c", "", "es"),
		entry("d", "", "de"),
	})
	assert.Equal(t, []LanguageCount{{"es", 2}, {"de", 1}, {"fr", 1}}, got)
	assert.Empty(t, CountByLanguage(nil))
}

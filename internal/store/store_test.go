package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s, err := New(context.Background(), db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	addUser(t, s, "u1")
	addUser(t, s, "u2")
	return s
}

func addUser(t *testing.T, s *Store, id string) {
	t.Helper()
	_, err := s.DB().Exec(`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, 'x', ?)`,
		id, id+"@example.com", time.Now())
	require.NoError(t, err)
}

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.Put(ctx, "u1", Vocabulary, Record{Key: "a", Data: []byte(`{"n":1}`)}))
	require.NoError(t, s.Put(ctx, "u1", Vocabulary, Record{Key: "b", Data: []byte(`{"n":2}`)}))
	require.NoError(t, s.Put(ctx, "u2", Vocabulary, Record{Key: "a", Data: []byte(`{"n":3}`)}))

	got, err := s.Get(ctx, "u1", Vocabulary)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Key)
	assert.JSONEq(t, `{"n":1}`, string(got[0].Data))

	// Replace keeps one row.
	require.NoError(t, s.Put(ctx, "u1", Vocabulary, Record{Key: "a", Data: []byte(`{"n":9}`)}))
	r, err := s.Find(ctx, "u1", Vocabulary, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":9}`, string(r.Data))

	require.NoError(t, s.Delete(ctx, "u1", Vocabulary, "a"))
	require.NoError(t, s.Delete(ctx, "u1", Vocabulary, "missing"))
	_, err = s.Find(ctx, "u1", Vocabulary, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	// Other users and collections are untouched.
	other, err := s.Get(ctx, "u2", Vocabulary)
	require.NoError(t, err)
	assert.Len(t, other, 1)
	empty, err := s.Get(ctx, "u1", Documents)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPutEmptyKey(t *testing.T) {
	s := setupTestStore(t)
	assert.Error(t, s.Put(context.Background(), "u1", Vocabulary, Record{}))
}

func TestInsertKeepsExisting(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	ok, err := s.Insert(ctx, "u1", Vocabulary, Record{Key: "a", Data: []byte(`{"n":1}`)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Insert(ctx, "u1", Vocabulary, Record{Key: "a", Data: []byte(`{"n":2}`)})
	require.NoError(t, err)
	assert.False(t, ok)

	r, err := s.Find(ctx, "u1", Vocabulary, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(r.Data))

	_, err = s.Insert(ctx, "u1", Vocabulary, Record{})
	assert.Error(t, err)
}

func TestDocuments(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	doc, err := s.SaveDocument(ctx, "u1", Document{Name: "quijote.txt", Hash: "h1", Text: "En un lugar de la Mancha"})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)

	again, err := s.SaveDocument(ctx, "u1", Document{Name: "renamed.txt", Hash: "h1", Text: "En un lugar de la Mancha"})
	require.NoError(t, err)
	assert.Equal(t, doc.ID, again.ID)

	list, err := s.ListDocuments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "renamed.txt", list[0].Name)
	assert.Empty(t, list[0].Text)

	full, err := s.FindDocument(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Equal(t, "En un lugar de la Mancha", full.Text)

	_, err = s.SaveDocument(ctx, "u1", Document{Name: "x"})
	assert.Error(t, err)

	require.NoError(t, s.SaveProgress(ctx, "u1", "h1", 42))
	require.NoError(t, s.DeleteDocument(ctx, "u1", "h1"))
	_, err = s.FindDocument(ctx, "u1", "h1")
	assert.ErrorIs(t, err, ErrNotFound)
	off, err := s.LoadProgress(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.Zero(t, off)
}

func TestProgress(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	off, err := s.LoadProgress(ctx, "u1", "h")
	require.NoError(t, err)
	assert.Zero(t, off)

	require.NoError(t, s.SaveProgress(ctx, "u1", "h", 120))
	require.NoError(t, s.SaveProgress(ctx, "u1", "h", 340))
	off, err = s.LoadProgress(ctx, "u1", "h")
	require.NoError(t, err)
	assert.Equal(t, 340, off)
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "glossr.db")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := Open(ctx, path, log)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening an up-to-date database applies nothing and succeeds.
	s, err = Open(ctx, path, log)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

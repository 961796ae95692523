package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/glossr/internal/state"
	"github.com/metcalfc/glossr/internal/store"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("GLOSSR_CONFIG", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	return dir
}

func TestVersionFlag(t *testing.T) {
	s, done, err := runCommands(context.Background(), "glossr", options{showVersion: true})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Nil(t, s)
}

func TestInitConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "glossr.toml")

	_, done, err := runCommands(context.Background(), "glossr", options{initConfig: true, configPath: path})
	require.NoError(t, err)
	assert.True(t, done)
	assert.FileExists(t, path)

	_, _, err = runCommands(context.Background(), "glossr", options{initConfig: true, configPath: path})
	assert.Error(t, err)
}

func TestSessionOpensDocument(t *testing.T) {
	dir := isolate(t)
	ctx := context.Background()

	s, err := newSession(ctx, options{})
	require.NoError(t, err)
	defer s.Close()
	assert.Nil(t, s.identity.Current())

	path := filepath.Join(dir, "cuento.txt")
	require.NoError(t, os.WriteFile(path, []byte("Había una vez un gato."), 0o644))

	doc, segmented, err := s.openDocument([]string{path})
	require.NoError(t, err)
	assert.False(t, segmented)
	assert.Equal(t, "cuento", doc.Title)
	assert.Equal(t, state.HashText(doc.Text), doc.Hash)

	// Anonymous sessions keep no library.
	s.rememberDocument(ctx, doc)
	_, err = s.identity.SignUp(ctx, "reader@example.com", "secret123")
	require.NoError(t, err)
	u := s.identity.Current()
	_, err = s.store.FindDocument(ctx, u.ID, doc.Hash)
	assert.ErrorIs(t, err, store.ErrNotFound)

	s.rememberDocument(ctx, doc)
	stored, err := s.store.FindDocument(ctx, u.ID, doc.Hash)
	require.NoError(t, err)
	assert.Equal(t, doc.Text, stored.Text)
}

func TestOpenMissingFile(t *testing.T) {
	dir := isolate(t)
	s, err := newSession(context.Background(), options{})
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.openDocument([]string{filepath.Join(dir, "nope.txt")})
	assert.Error(t, err)
}

func TestResumeAndExport(t *testing.T) {
	dir := isolate(t)
	ctx := context.Background()

	s, err := newSession(ctx, options{})
	require.NoError(t, err)
	u, err := s.identity.SignUp(ctx, "reader@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, s.state.SetCurrentUser(u.ID))
	s.Close()

	// A new session picks the account back up from the state file.
	s, err = newSession(ctx, options{})
	require.NoError(t, err)
	defer s.Close()
	require.NotNil(t, s.identity.Current())
	assert.True(t, s.vocab.SignedIn())

	_, err = s.vocab.Save(ctx, "gato", "cat", "en", "es")
	require.NoError(t, err)

	out := filepath.Join(dir, "words.csv")
	require.NoError(t, s.exportBank(out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"gato", "cat", "es", "en"}, rows[1][:4])
}

func TestExportNeedsSignIn(t *testing.T) {
	dir := isolate(t)
	s, err := newSession(context.Background(), options{})
	require.NoError(t, err)
	defer s.Close()

	err = s.exportBank(filepath.Join(dir, "words.csv"))
	assert.Error(t, err)
}

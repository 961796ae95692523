// Package store keeps per-user records in sqlite: stored documents, word
// bank entries and reading progress, each in its own collection.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Collections.
const (
	Documents  = "documents"
	Vocabulary = "vocabulary"
	Progress   = "progress"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

//go:embed migrations/*.sql
var migrations embed.FS

// Record is one JSON document in a collection.
type Record struct {
	Key       string
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a sqlite-backed record store.
type Store struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	s, err := New(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and applies pending migrations.
func New(ctx context.Context, db *sql.DB, logger *slog.Logger) (*Store, error) {
	s := &Store{db: db, log: logger.With("component", "store"), now: time.Now}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("store: migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys, goose.WithSlog(s.log))
	if err != nil {
		return fmt.Errorf("store: goose new provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("store: goose up: %w", err)
	}
	if len(results) > 0 {
		s.log.InfoContext(ctx, "database migrated", slog.Int("applied", len(results)))
	}
	return nil
}

// DB exposes the connection for packages that own their own tables.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns every record of userID in collection, oldest first.
func (s *Store) Get(ctx context.Context, userID, collection string) ([]Record, error) {
	query, args, err := sq.Select("key", "data", "created_at", "updated_at").
		From("records").
		Where(sq.Eq{"user_id": userID, "collection": collection}).
		OrderBy("created_at", "key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var data string
		if err := rows.Scan(&r.Key, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", collection, err)
		}
		r.Data = []byte(data)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: get %s: %w", collection, err)
	}
	return out, nil
}

// Find returns one record or ErrNotFound.
func (s *Store) Find(ctx context.Context, userID, collection, key string) (Record, error) {
	query, args, err := sq.Select("key", "data", "created_at", "updated_at").
		From("records").
		Where(sq.Eq{"user_id": userID, "collection": collection, "key": key}).
		ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("store: build query: %w", err)
	}

	var r Record
	var data string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&r.Key, &data, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: find %s/%s: %w", collection, key, err)
	}
	r.Data = []byte(data)
	return r, nil
}

// Put inserts or replaces a record. CreatedAt is kept on replace.
func (s *Store) Put(ctx context.Context, userID, collection string, r Record) error {
	if r.Key == "" {
		return fmt.Errorf("store: put %s: empty key", collection)
	}
	now := s.now().UTC()
	query, args, err := sq.Insert("records").
		Columns("user_id", "collection", "key", "data", "created_at", "updated_at").
		Values(userID, collection, r.Key, string(r.Data), now, now).
		Suffix("ON CONFLICT (user_id, collection, key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("store: build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("store: put %s/%s: %w", collection, r.Key, err)
	}
	return nil
}

// Insert adds a record unless one with the same key exists. inserted is
// false when the existing record was left untouched.
func (s *Store) Insert(ctx context.Context, userID, collection string, r Record) (inserted bool, err error) {
	if r.Key == "" {
		return false, fmt.Errorf("store: insert %s: empty key", collection)
	}
	now := s.now().UTC()
	query, args, err := sq.Insert("records").
		Columns("user_id", "collection", "key", "data", "created_at", "updated_at").
		Values(userID, collection, r.Key, string(r.Data), now, now).
		Suffix("ON CONFLICT (user_id, collection, key) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("store: build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("store: insert %s/%s: %w", collection, r.Key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: insert %s/%s: %w", collection, r.Key, err)
	}
	return n > 0, nil
}

// Delete removes a record. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, userID, collection, key string) error {
	query, args, err := sq.Delete("records").
		Where(sq.Eq{"user_id": userID, "collection": collection, "key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("store: build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", collection, key, err)
	}
	return nil
}

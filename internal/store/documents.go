package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is a stored copy of an opened document, keyed by content hash.
type Document struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Hash    string    `json:"hash"`
	Text    string    `json:"text"`
	AddedAt time.Time `json:"added_at"`
}

// SaveDocument stores doc for userID. A document with the same hash keeps
// its id and added time.
func (s *Store) SaveDocument(ctx context.Context, userID string, doc Document) (Document, error) {
	if doc.Hash == "" {
		return Document{}, errors.New("store: document without hash")
	}
	existing, err := s.FindDocument(ctx, userID, doc.Hash)
	switch {
	case err == nil:
		doc.ID = existing.ID
		doc.AddedAt = existing.AddedAt
	case errors.Is(err, ErrNotFound):
		doc.ID = uuid.NewString()
		doc.AddedAt = s.now().UTC()
	default:
		return Document{}, err
	}
	if err := s.putJSON(ctx, userID, Documents, doc.Hash, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// FindDocument returns the stored document with hash.
func (s *Store) FindDocument(ctx context.Context, userID, hash string) (Document, error) {
	r, err := s.Find(ctx, userID, Documents, hash)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(r.Data, &doc); err != nil {
		return Document{}, fmt.Errorf("store: decode document %s: %w", hash, err)
	}
	return doc, nil
}

// ListDocuments returns userID's documents, oldest first, without text.
func (s *Store) ListDocuments(ctx context.Context, userID string) ([]Document, error) {
	records, err := s.Get(ctx, userID, Documents)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(records))
	for _, r := range records {
		var doc Document
		if err := json.Unmarshal(r.Data, &doc); err != nil {
			s.log.WarnContext(ctx, "skipping unreadable document", "key", r.Key, "error", err)
			continue
		}
		doc.Text = ""
		docs = append(docs, doc)
	}
	return docs, nil
}

// DeleteDocument removes a document and its progress.
func (s *Store) DeleteDocument(ctx context.Context, userID, hash string) error {
	if err := s.Delete(ctx, userID, Documents, hash); err != nil {
		return err
	}
	return s.Delete(ctx, userID, Progress, hash)
}

type progress struct {
	Offset int `json:"offset"`
}

// SaveProgress records the byte offset reached in the document with hash.
func (s *Store) SaveProgress(ctx context.Context, userID, hash string, offset int) error {
	return s.putJSON(ctx, userID, Progress, hash, progress{Offset: offset})
}

// LoadProgress returns the saved offset, or 0 when there is none.
func (s *Store) LoadProgress(ctx context.Context, userID, hash string) (int, error) {
	r, err := s.Find(ctx, userID, Progress, hash)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var p progress
	if err := json.Unmarshal(r.Data, &p); err != nil {
		return 0, fmt.Errorf("store: decode progress %s: %w", hash, err)
	}
	return p.Offset, nil
}

func (s *Store) putJSON(ctx context.Context, userID, collection, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", collection, key, err)
	}
	return s.Put(ctx, userID, collection, Record{Key: key, Data: data})
}

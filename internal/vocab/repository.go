package vocab

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/metcalfc/glossr/internal/store"
)

// StoreRepository keeps entries in the store's vocabulary collection.
type StoreRepository struct {
	store *store.Store
}

// NewStoreRepository returns a Repository backed by s.
func NewStoreRepository(s *store.Store) *StoreRepository {
	return &StoreRepository{store: s}
}

func (r *StoreRepository) List(ctx context.Context, userID string) ([]Entry, error) {
	records, err := r.store.Get(ctx, userID, store.Vocabulary)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		var e Entry
		if err := json.Unmarshal(rec.Data, &e); err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", rec.Key, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Save never replaces a stored entry; the first translation saved for a key
// stays.
func (r *StoreRepository) Save(ctx context.Context, userID string, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = r.store.Insert(ctx, userID, store.Vocabulary, store.Record{Key: e.Key(), Data: data})
	return err
}

func (r *StoreRepository) Delete(ctx context.Context, userID, key string) error {
	return r.store.Delete(ctx, userID, store.Vocabulary, key)
}

// Package state keeps device-local session state: the signed-in user, the
// chosen language pair and the last read position of each document.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/metcalfc/glossr/internal/config"
)

const (
	stateFileName = "state.json"
	hashBytes     = 8192 // content identity uses the first 8KB
)

// Languages is the persisted language pair.
type Languages struct {
	Study       string `json:"study"`
	Translation string `json:"translation"`
}

type fileData struct {
	CurrentUser string         `json:"current_user,omitempty"`
	Languages   *Languages     `json:"languages,omitempty"`
	Positions   map[string]int `json:"positions"`
}

// StateStore persists session state as JSON under the state directory.
type StateStore struct {
	path string
	data fileData
	mu   sync.RWMutex
}

// NewStateStore creates or loads state from XDG_STATE_HOME/glossr/.
func NewStateStore() (*StateStore, error) {
	dir := config.StateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	store := &StateStore{
		path: filepath.Join(dir, stateFileName),
		data: fileData{Positions: make(map[string]int)},
	}
	if err := store.load(); err != nil {
		// unreadable state starts over
		store.data = fileData{Positions: make(map[string]int)}
	}
	if store.data.Positions == nil {
		store.data.Positions = make(map[string]int)
	}
	return store, nil
}

// HashText identifies a document by the sha256 of its first 8KB.
func HashText(text string) string {
	b := []byte(text)
	if len(b) > hashBytes {
		b = b[:hashBytes]
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:16])
}

// GetPosition returns the saved byte offset for hash, or 0.
func (s *StateStore) GetPosition(hash string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Positions[hash]
}

// SetPosition saves the byte offset reached in the document with hash.
func (s *StateStore) SetPosition(hash string, offset int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Positions[hash] = offset
	return s.save()
}

// Clear removes the saved position for hash.
func (s *StateStore) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Positions, hash)
	return s.save()
}

// CurrentUser is the id of the user signed in on this device, or "".
func (s *StateStore) CurrentUser() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.CurrentUser
}

// SetCurrentUser records the signed-in user; "" signs out.
func (s *StateStore) SetCurrentUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.CurrentUser = id
	return s.save()
}

// Languages returns the saved pair, if any.
func (s *StateStore) Languages() (Languages, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.Languages == nil {
		return Languages{}, false
	}
	return *s.data.Languages, true
}

// SetLanguages saves the language pair.
func (s *StateStore) SetLanguages(l Languages) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Languages = &l
	return s.save()
}

func (s *StateStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *StateStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

package vocab

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrSignInRequired is returned when an anonymous user tries to change the
// word bank. It is reported to the user as "unavailable", not as a failure.
var ErrSignInRequired = errors.New("sign in to use the word bank")

// Repository persists a user's entries.
type Repository interface {
	List(ctx context.Context, userID string) ([]Entry, error)
	Save(ctx context.Context, userID string, e Entry) error
	Delete(ctx context.Context, userID, key string) error
}

// SaveResult says what a save did.
type SaveResult int

const (
	Saved SaveResult = iota
	AlreadySaved
)

// Service gates word bank changes behind a signed-in user and keeps the
// in-memory bank in step with the repository: memory changes only after the
// write succeeds.
type Service struct {
	repo   Repository
	log    *slog.Logger
	now    func() time.Time
	userID string
	bank   *Bank
}

// NewService returns a service with an empty, anonymous bank.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  logger.With("component", "vocab"),
		now:  time.Now,
		bank: NewBank(nil),
	}
}

// Load switches to userID and loads their entries. An empty userID clears
// the bank. If the entries cannot be read the service is left anonymous.
func (s *Service) Load(ctx context.Context, userID string) error {
	s.userID, s.bank = "", NewBank(nil)
	if userID == "" {
		return nil
	}
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("vocab: load: %w", err)
	}
	s.userID, s.bank = userID, NewBank(entries)
	s.log.DebugContext(ctx, "word bank loaded", slog.Int("entries", s.bank.Len()))
	return nil
}

// Bank is the current user's in-memory bank.
func (s *Service) Bank() *Bank { return s.bank }

// SignedIn reports whether a user is loaded.
func (s *Service) SignedIn() bool { return s.userID != "" }

// Save stores a new entry for the current user. A repeated key is not an
// error; the first translation is kept.
func (s *Service) Save(ctx context.Context, text, translation, sourceLang, targetLang string) (SaveResult, error) {
	if s.userID == "" {
		return 0, ErrSignInRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errors.New("vocab: empty text")
	}
	if s.bank.Contains(text, targetLang) {
		return AlreadySaved, nil
	}
	e := Entry{
		Text:        text,
		Translation: strings.TrimSpace(translation),
		SourceLang:  sourceLang,
		TargetLang:  targetLang,
		Timestamp:   s.now().UTC(),
	}
	if err := s.repo.Save(ctx, s.userID, e); err != nil {
		s.log.ErrorContext(ctx, "save entry failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("vocab: save: %w", err)
	}
	s.bank.TrySave(e)
	return Saved, nil
}

// Remove deletes the entry keyed (text, targetLang) for the current user.
func (s *Service) Remove(ctx context.Context, text, targetLang string) error {
	if s.userID == "" {
		return ErrSignInRequired
	}
	if !s.bank.Contains(text, targetLang) {
		return nil
	}
	if err := s.repo.Delete(ctx, s.userID, Key(text, targetLang)); err != nil {
		s.log.ErrorContext(ctx, "remove entry failed", slog.String("error", err.Error()))
		return fmt.Errorf("vocab: remove: %w", err)
	}
	s.bank.Remove(text, targetLang)
	return nil
}

// Package identity manages local accounts. Passwords are bcrypt hashed and
// kept in the users table of the store database.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyExists      = errors.New("an account with this email already exists")
	ErrValidation         = errors.New("validation failed")
)

// User is a signed-in account.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Service signs users up, in and out. The current user lives in memory;
// callers persist its id if they want sessions to survive restarts.
type Service struct {
	db      *sql.DB
	log     *slog.Logger
	cost    int
	now     func() time.Time
	current *User
}

// NewService returns a service over db, which must carry the users table.
func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:   db,
		log:  logger.With("component", "identity"),
		cost: bcrypt.DefaultCost,
		now:  time.Now,
	}
}

// Current returns the signed-in user, or nil when anonymous.
func (s *Service) Current() *User { return s.current }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validate(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if err := validate(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("identity: hash password: %w", err)
	}

	u := &User{ID: uuid.NewString(), Email: email, CreatedAt: s.now().UTC()}
	query, args, err := sq.Insert("users").
		Columns("id", "email", "password_hash", "created_at").
		Values(u.ID, u.Email, string(hash), u.CreatedAt).
		Suffix("ON CONFLICT (email) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("identity: build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("identity: create user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrAlreadyExists
	}

	s.log.InfoContext(ctx, "account created", slog.String("user_id", u.ID))
	s.current = u
	return u, nil
}

// LogIn checks the credentials and signs the user in.
func (s *Service) LogIn(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	query, args, err := sq.Select("id", "email", "password_hash", "created_at").
		From("users").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("identity: build query: %w", err)
	}

	var u User
	var hash string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &hash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("identity: find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.current = &u
	return &u, nil
}

// Resume signs in the user with id without a password, for sessions
// remembered on this device. A missing user leaves the service anonymous.
func (s *Service) Resume(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, nil
	}
	query, args, err := sq.Select("id", "email", "created_at").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("identity: build query: %w", err)
	}
	var u User
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity: resume: %w", err)
	}
	s.current = &u
	return &u, nil
}

// LogOut signs the current user out.
func (s *Service) LogOut() { s.current = nil }

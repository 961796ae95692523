package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/metcalfc/glossr/internal/config"
)

var (
	// ErrLookup wraps every provider transport or API failure.
	ErrLookup = errors.New("lookup failed")
	// ErrNotFound means the provider answered but knows no translation.
	ErrNotFound = errors.New("no translation found")
)

// Provider translates or defines text. sourceLang is the output language
// and targetLang the language of text, matching Request.
type Provider interface {
	Lookup(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

func (f ProviderFunc) Lookup(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}

// New builds the provider named in cfg.
func New(cfg config.LookupConfig, log *slog.Logger) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "google", "":
		return NewGoogle(log), nil
	case "anthropic":
		return NewAnthropic(cfg.Anthropic, log)
	case "freedict":
		return NewFreeDictWithURL(cfg.FreeDictURL, log), nil
	case "chain":
		// Dictionary definitions for English words, machine translation
		// for everything else.
		return Chain{NewFreeDictWithURL(cfg.FreeDictURL, log), NewGoogle(log)}, nil
	default:
		return nil, fmt.Errorf("lookup: unknown provider %q", cfg.Provider)
	}
}

// Chain asks each provider in turn and returns the first answer.
type Chain []Provider

func (c Chain) Lookup(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var errs []error
	for _, p := range c {
		v, err := p.Lookup(ctx, text, sourceLang, targetLang)
		if err == nil && strings.TrimSpace(v) != "" {
			return v, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return "", ErrNotFound
	}
	if allNotFound(errs) {
		return "", ErrNotFound
	}
	return "", errors.Join(errs...)
}

func allNotFound(errs []error) bool {
	for _, err := range errs {
		if !errors.Is(err, ErrNotFound) {
			return false
		}
	}
	return true
}

func panicError(r any) error {
	return fmt.Errorf("%w: provider panic: %v", ErrLookup, r)
}

package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bregydoc/gtranslate"
)

// Google translates through the public Google Translate endpoint.
type Google struct {
	log       *slog.Logger
	translate func(text string, params gtranslate.TranslationParams) (string, error)
}

// gtranslate keeps package-level state, so calls are serialized.
var googleMu sync.Mutex

// NewGoogle returns a Google Translate provider.
func NewGoogle(logger *slog.Logger) *Google {
	return &Google{
		log:       logger.With("provider", "google"),
		translate: gtranslate.TranslateWithParams,
	}
}

func (g *Google) Lookup(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	from := targetLang
	if from == "" {
		from = "auto"
	}
	params := gtranslate.TranslationParams{From: from, To: sourceLang}

	type answer struct {
		value string
		err   error
	}
	done := make(chan answer, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- answer{err: panicError(r)}
			}
		}()
		googleMu.Lock()
		defer googleMu.Unlock()
		v, err := g.translate(text, params)
		done <- answer{value: v, err: err}
	}()

	g.log.DebugContext(ctx, "google request", slog.String("text", text), slog.String("from", from), slog.String("to", sourceLang))

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-done:
		if a.err != nil {
			g.log.WarnContext(ctx, "google request failed", slog.String("error", a.err.Error()))
			return "", fmt.Errorf("%w: google: %w", ErrLookup, a.err)
		}
		if a.value == "" {
			return "", ErrNotFound
		}
		return a.value, nil
	}
}

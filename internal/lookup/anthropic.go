package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/metcalfc/glossr/internal/config"
)

// Anthropic asks a Claude model for a short translation or gloss.
type Anthropic struct {
	client anthropic.Client
	model  string
	log    *slog.Logger
}

// NewAnthropic builds the provider from cfg. An API key is required.
func NewAnthropic(cfg config.AnthropicConfig, logger *slog.Logger) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("lookup: anthropic provider needs an API key (ANTHROPIC_API_KEY)")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
		log:    logger.With("provider", "anthropic"),
	}, nil
}

func buildPrompt(text, sourceLang, targetLang string) string {
	from := LanguageName(targetLang)
	if from == "" {
		from = "the original language"
	}
	return fmt.Sprintf(
		"Translate this %s word or phrase into %s. Reply with the translation only; "+
			"if it is an idiom, give a very brief definition instead.\n\nText: %q",
		from, LanguageName(sourceLang), text)
}

func (a *Anthropic) Lookup(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	a.log.DebugContext(ctx, "anthropic request", slog.String("text", text), slog.String("model", a.model))

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   256,
		Temperature: anthropic.Float(0.1),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(text, sourceLang, targetLang))),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		a.log.WarnContext(ctx, "anthropic request failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: anthropic: %w", ErrLookup, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}
	out := strings.Trim(strings.TrimSpace(sb.String()), `"`)
	if out == "" {
		return "", ErrNotFound
	}
	return out, nil
}

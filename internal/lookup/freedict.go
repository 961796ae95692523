package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultFreeDictURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// maxSenses caps how many definitions go into one popover.
const maxSenses = 3

// FreeDict defines English words through the Free Dictionary API. It only
// answers when the study language is English.
type FreeDict struct {
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
	log        *slog.Logger
}

// NewFreeDict returns a provider pointed at the public API.
func NewFreeDict(logger *slog.Logger) *FreeDict {
	return NewFreeDictWithURL("", logger)
}

// NewFreeDictWithURL returns a provider for baseURL; empty means the
// public API.
func NewFreeDictWithURL(baseURL string, logger *slog.Logger) *FreeDict {
	if baseURL == "" {
		baseURL = defaultFreeDictURL
	}
	return &FreeDict{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retryDelay: 500 * time.Millisecond,
		log:        logger.With("provider", "freedict"),
	}
}

type dictEntry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func (p *FreeDict) Lookup(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if targetLang != "en" {
		return "", ErrNotFound
	}
	word := strings.ToLower(strings.TrimSpace(text))
	if word == "" || strings.ContainsAny(word, " \t\n") {
		return "", ErrNotFound
	}
	word = strings.Trim(word, `.,;:!?"'()[]`)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+url.PathEscape(word), nil)
	if err != nil {
		return "", fmt.Errorf("%w: freedict: create request: %w", ErrLookup, err)
	}

	resp, err := p.doWithRetry(ctx, req, word)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.log.ErrorContext(ctx, "freedict request failed", slog.String("word", word), slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: freedict: %w", ErrLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: freedict: unexpected status %d", ErrLookup, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: freedict: read body: %w", ErrLookup, err)
	}
	var entries []dictEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", fmt.Errorf("%w: freedict: decode json: %w", ErrLookup, err)
	}

	out := formatSenses(entries)
	if out == "" {
		return "", ErrNotFound
	}
	return out, nil
}

// formatSenses renders up to maxSenses definitions, one per line.
func formatSenses(entries []dictEntry) string {
	var lines []string
	for _, e := range entries {
		for _, m := range e.Meanings {
			for _, d := range m.Definitions {
				if len(lines) == maxSenses {
					return strings.Join(lines, "\n")
				}
				def := strings.TrimSpace(d.Definition)
				if def == "" {
					continue
				}
				if m.PartOfSpeech != "" {
					def = "(" + m.PartOfSpeech + ") " + def
				}
				lines = append(lines, def)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// doWithRetry retries once on a network error or 5xx.
func (p *FreeDict) doWithRetry(ctx context.Context, req *http.Request, word string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)
	if err == nil && resp.StatusCode < 500 {
		return resp, nil
	}
	if ctx.Err() != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, ctx.Err()
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
		resp.Body.Close()
	}
	p.log.WarnContext(ctx, "freedict retry", slog.String("word", word), slog.String("reason", reason))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.retryDelay):
	}
	return p.httpClient.Do(req)
}

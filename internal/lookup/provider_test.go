package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bregydoc/gtranslate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/glossr/internal/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewProvider(t *testing.T) {
	log := newTestLogger()

	p, err := New(config.LookupConfig{Provider: "google"}, log)
	require.NoError(t, err)
	assert.IsType(t, &Google{}, p)

	p, err = New(config.LookupConfig{Provider: "FreeDict"}, log)
	require.NoError(t, err)
	assert.IsType(t, &FreeDict{}, p)

	p, err = New(config.LookupConfig{Provider: "chain"}, log)
	require.NoError(t, err)
	assert.Len(t, p, 2)

	_, err = New(config.LookupConfig{Provider: "anthropic"}, log)
	assert.Error(t, err, "missing API key")

	_, err = New(config.LookupConfig{Provider: "babelfish"}, log)
	assert.Error(t, err)
}

func TestGoogleLookup(t *testing.T) {
	g := NewGoogle(newTestLogger())
	var got gtranslate.TranslationParams
	g.translate = func(text string, params gtranslate.TranslationParams) (string, error) {
		got = params
		return "the cat", nil
	}

	v, err := g.Lookup(context.Background(), "el gato", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "the cat", v)
	assert.Equal(t, "es", got.From)
	assert.Equal(t, "en", got.To)
}

func TestGoogleLookupErrors(t *testing.T) {
	g := NewGoogle(newTestLogger())

	g.translate = func(string, gtranslate.TranslationParams) (string, error) { return "", nil }
	_, err := g.Lookup(context.Background(), "x", "en", "es")
	assert.ErrorIs(t, err, ErrNotFound)

	g.translate = func(string, gtranslate.TranslationParams) (string, error) { return "", errors.New("rate limited") }
	_, err = g.Lookup(context.Background(), "x", "en", "es")
	assert.ErrorIs(t, err, ErrLookup)

	g.translate = func(string, gtranslate.TranslationParams) (string, error) { panic("bad response") }
	_, err = g.Lookup(context.Background(), "x", "en", "es")
	assert.ErrorIs(t, err, ErrLookup)
}

func TestGoogleLookupHonoursContext(t *testing.T) {
	g := NewGoogle(newTestLogger())
	release := make(chan struct{})
	defer close(release)
	g.translate = func(string, gtranslate.TranslationParams) (string, error) {
		<-release
		return "late", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := g.Lookup(ctx, "x", "en", "es")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFreeDictLookup(t *testing.T) {
	body := `[{
		"word": "serendipity",
		"meanings": [
			{"partOfSpeech": "noun", "definitions": [
				{"definition": "A fortunate discovery by accident."},
				{"definition": "The faculty of making such discoveries."}
			]},
			{"partOfSpeech": "adjective", "definitions": [
				{"definition": "Lucky."},
				{"definition": "Never shown."}
			]}
		]
	}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/serendipity", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewFreeDictWithURL(srv.URL, newTestLogger())
	v, err := p.Lookup(context.Background(), "Serendipity.", "es", "en")
	require.NoError(t, err)
	assert.Equal(t,
		"(noun) A fortunate discovery by accident.\n(noun) The faculty of making such discoveries.\n(adjective) Lucky.", v)
}

func TestFreeDictNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewFreeDictWithURL(srv.URL, newTestLogger())
	_, err := p.Lookup(context.Background(), "qwzx", "es", "en")
	assert.ErrorIs(t, err, ErrNotFound)

	// Non-English study languages and phrases are skipped without a request.
	_, err = p.Lookup(context.Background(), "hola", "en", "es")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Lookup(context.Background(), "two words", "es", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFreeDictRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"word":"tea","meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A drink."}]}]}]`))
	}))
	defer srv.Close()

	p := NewFreeDictWithURL(srv.URL, newTestLogger())
	p.retryDelay = time.Millisecond
	v, err := p.Lookup(context.Background(), "tea", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, "(noun) A drink.", v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFreeDictServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewFreeDictWithURL(srv.URL, newTestLogger())
	p.retryDelay = time.Millisecond
	_, err := p.Lookup(context.Background(), "tea", "es", "en")
	assert.ErrorIs(t, err, ErrLookup)
}

func TestAnthropicLookup(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
			prompt = req.Messages[0].Content[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [{"type": "text", "text": "\"the butterfly\""}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 3}
		}`))
	}))
	defer srv.Close()

	p, err := NewAnthropic(config.AnthropicConfig{APIKey: "test", Model: "test-model", BaseURL: srv.URL}, newTestLogger())
	require.NoError(t, err)

	v, err := p.Lookup(context.Background(), "la mariposa", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "the butterfly", v)
	assert.Contains(t, prompt, "Spanish")
	assert.Contains(t, prompt, "English")
	assert.Contains(t, prompt, "la mariposa")
}

func TestAnthropicLookupError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer srv.Close()

	p, err := NewAnthropic(config.AnthropicConfig{APIKey: "test", Model: "nope", BaseURL: srv.URL}, newTestLogger())
	require.NoError(t, err)
	_, err = p.Lookup(context.Background(), "hola", "en", "es")
	assert.ErrorIs(t, err, ErrLookup)
}

func TestChain(t *testing.T) {
	notFound := ProviderFunc(func(context.Context, string, string, string) (string, error) { return "", ErrNotFound })
	broken := ProviderFunc(func(context.Context, string, string, string) (string, error) { return "", errors.New("down") })
	answer := ProviderFunc(func(context.Context, string, string, string) (string, error) { return "yes", nil })

	v, err := Chain{notFound, answer}.Lookup(context.Background(), "x", "en", "es")
	require.NoError(t, err)
	assert.Equal(t, "yes", v)

	_, err = Chain{notFound, notFound}.Lookup(context.Background(), "x", "en", "es")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Chain{notFound, broken}.Lookup(context.Background(), "x", "en", "es")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "down")
}

func TestLanguages(t *testing.T) {
	assert.Equal(t, "Spanish", LanguageName("es"))
	assert.Equal(t, "xx", LanguageName("xx"))
	assert.Equal(t, "es", NextLanguage("en", 1))
	assert.Equal(t, "zh-CN", NextLanguage("en", -1))
	assert.Equal(t, "en", NextLanguage("zh-CN", 1))
	assert.Equal(t, "en", NextLanguage("unknown", 1))
}

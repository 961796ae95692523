package reader

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// HTMLFormat implements Format for saved web pages. The main article is
// isolated with readability before text extraction.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Name() string         { return "HTML" }
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (f *HTMLFormat) Extract(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}
	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		// Pages readability rejects are still readable as plain markup.
		text := extractTextFromHTML(string(data))
		if text == "" {
			return "", fmt.Errorf("%w: no readable text in %s", ErrParse, filename)
		}
		return text, nil
	}

	text := strings.TrimSpace(article.TextContent)
	if title := strings.TrimSpace(article.Title); title != "" && !strings.HasPrefix(text, title) {
		text = title + sectionJoin + text
	}
	return text, nil
}

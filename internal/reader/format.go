package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for files no registered format handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrParse is returned when a file cannot be decoded by its format.
	ErrParse = errors.New("parse error")
)

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string) (string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

func formatFor(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f, nil
			}
		}
	}
	if ext == "" {
		ext = "(none)"
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// ExtractText extracts text from a file using its registered format.
func ExtractText(filename string) (string, error) {
	f, err := formatFor(filename)
	if err != nil {
		return "", err
	}
	return f.Extract(filename)
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		exts := make([]string, 0, len(f.Extensions()))
		for _, e := range f.Extensions() {
			if e != "" {
				exts = append(exts, e)
			}
		}
		out = append(out, f.Name()+" ("+strings.Join(exts, ", ")+")")
	}
	return out
}

// TextFormat implements Format for plain text files.
type TextFormat struct{}

func init() {
	Register(&TextFormat{})
}

func (f *TextFormat) Name() string         { return "Text" }
func (f *TextFormat) Extensions() []string { return []string{".txt", ".text", ""} }

func (f *TextFormat) Extract(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(data), nil
}

package reader

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// MarkdownFormat implements Format for Markdown files. The source is kept
// verbatim; headers only contribute chapter structure.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Extract(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return string(data), nil
}

// headerRegex matches markdown headers (# to ######)
var headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

type mdHeader struct {
	title  string
	level  int
	offset int
	line   int
}

func scanHeaders(text string) ([]mdHeader, []string) {
	lines := strings.SplitAfter(text, "\n")
	var headers []mdHeader
	offset := 0
	for i, line := range lines {
		if m := headerRegex.FindStringSubmatch(strings.TrimRight(line, "\r\n")); m != nil {
			headers = append(headers, mdHeader{
				title:  strings.TrimSpace(m[2]),
				level:  len(m[1]) - 1, // h1 = level 0
				offset: offset,
				line:   i,
			})
		}
		offset += len(line)
	}
	return headers, lines
}

// TOC extracts the table of contents from a Markdown file by parsing headers.
func (f *MarkdownFormat) TOC(filename string) ([]TOCEntry, error) {
	text, err := f.Extract(filename)
	if err != nil {
		return nil, err
	}

	headers, lines := scanHeaders(text)
	entries := make([]TOCEntry, 0, len(headers))
	for _, h := range headers {
		entries = append(entries, TOCEntry{
			Title:   h.title,
			Preview: previewAfter(lines, h.line),
			Level:   h.level,
			Offset:  h.offset,
		})
	}
	return entries, nil
}

// previewAfter returns the first non-empty, non-header line after line.
func previewAfter(lines []string, line int) string {
	for _, l := range lines[line+1:] {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if headerRegex.MatchString(l) {
			return ""
		}
		return l
	}
	return ""
}

// ExtractChapters splits the document at each header. Text before the first
// header becomes an untitled leading chapter.
func (f *MarkdownFormat) ExtractChapters(filename string) (string, []Chapter, error) {
	text, err := f.Extract(filename)
	if err != nil {
		return "", nil, err
	}

	headers, _ := scanHeaders(text)
	if len(headers) == 0 {
		if strings.TrimSpace(text) == "" {
			return text, nil, nil
		}
		return text, []Chapter{{Title: "Document", Offset: 0, End: len(text)}}, nil
	}

	var chapters []Chapter
	if strings.TrimSpace(text[:headers[0].offset]) != "" {
		chapters = append(chapters, Chapter{Title: "Preface", Offset: 0, End: headers[0].offset})
	}
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1].offset
		}
		chapters = append(chapters, Chapter{Title: h.title, Offset: h.offset, End: end})
	}
	return text, chapters, nil
}

package reader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFFormat implements Format for PDF files, one chapter per page.
type PDFFormat struct{}

func init() {
	Register(&PDFFormat{})
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

func (f *PDFFormat) Extract(filename string) (string, error) {
	text, _, err := f.ExtractChapters(filename)
	return text, err
}

func (f *PDFFormat) ExtractChapters(filename string) (text string, chapters []Chapter, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: pdf: %v", ErrParse, r)
		}
	}()

	file, r, err := pdf.Open(filename)
	if err != nil {
		return "", nil, fmt.Errorf("%w: open pdf: %w", ErrParse, err)
	}
	defer file.Close()

	fonts := make(map[string]*pdf.Font)
	var sections []section
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}
		content, err := p.GetPlainText(fonts)
		if err != nil {
			return "", nil, fmt.Errorf("%w: pdf page %d: %w", ErrParse, i, err)
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		sections = append(sections, section{title: fmt.Sprintf("Page %d", i), text: content})
	}

	text, chapters = assemble(sections)
	return text, chapters, nil
}

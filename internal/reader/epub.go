package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }
func (f *EPUBFormat) Extract(filename string) (string, error) {
	text, _, err := f.ExtractChapters(filename)
	return text, err
}

func openEPUB(filename string) (*epub.ReadCloser, *epub.Rootfile, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open epub: %w", ErrParse, err)
	}
	if len(rc.Rootfiles) == 0 {
		rc.Close()
		return nil, nil, fmt.Errorf("%w: no rootfiles found in epub", ErrParse)
	}
	return rc, rc.Rootfiles[0], nil
}

// spineTexts walks the spine in reading order, calling fn with each item's
// href and extracted text. Unreadable items are skipped.
func spineTexts(book *epub.Rootfile, fn func(i int, href, text string)) {
	for i, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		text := extractTextFromHTML(string(data))
		if text == "" {
			continue
		}
		fn(i, ref.Item.HREF, text)
	}
}

// blockElements end a paragraph in extracted text.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Blockquote: true, atom.Pre: true, atom.Tr: true,
}

// extractTextFromHTML returns readable text with one blank line between
// block elements and single spaces inside them.
func extractTextFromHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}

	var paragraphs []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paragraphs = append(paragraphs, strings.Join(cur, " "))
			cur = nil
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Head, atom.Script, atom.Style:
				return
			case atom.Br:
				flush()
				return
			}
		}
		if n.Type == html.TextNode {
			cur = append(cur, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			flush()
		}
	}
	walk(doc)
	flush()

	return strings.Join(paragraphs, sectionJoin)
}

// Package reader turns documents into flat, addressable token sequences.
package reader

import (
	"path/filepath"
	"strings"
)

// Document is an opened document and its token array. The token array is
// rebuilt whenever the displayed document changes.
type Document struct {
	Title  string
	Hash   string
	Text   string
	Tokens []Token

	// Chapter support
	Chapters []Chapter
	TOC      []TOCEntry

	sentenceStarts []int
}

// NewDocument tokenizes text into a Document.
func NewDocument(title, text string, seg Segmenter) *Document {
	tokens := TokenizeWith(text, seg)
	return &Document{
		Title:          title,
		Text:           text,
		Tokens:         tokens,
		sentenceStarts: FindSentenceStarts(tokens),
	}
}

// Open extracts, tokenizes and outlines the document at path.
func Open(path string, seg Segmenter) (*Document, error) {
	f, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	var text string
	var chapters []Chapter
	if ce, ok := f.(ChapterExtractor); ok {
		text, chapters, err = ce.ExtractChapters(path)
	} else {
		text, err = f.Extract(path)
	}
	if err != nil {
		return nil, err
	}

	var toc []TOCEntry
	if tp, ok := f.(TOCProvider); ok {
		// A missing TOC never prevents reading.
		toc, _ = tp.TOC(path)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc := NewDocument(title, text, seg)
	doc.SetChapters(chapters, toc)
	return doc, nil
}

// FindSentenceStarts returns indices of word tokens that start sentences.
func FindSentenceStarts(tokens []Token) []int {
	var starts []int
	boundary := true
	for _, t := range tokens {
		if t.Kind != Word {
			continue
		}
		if boundary {
			starts = append(starts, t.Index)
		}
		last := t.Text[len(t.Text)-1]
		boundary = last == '.' || last == '!' || last == '?' || strings.HasSuffix(t.Text, "。")
	}
	return starts
}

// WordCount returns the number of word tokens.
func (d *Document) WordCount() int {
	n := 0
	for _, t := range d.Tokens {
		if t.Kind == Word {
			n++
		}
	}
	return n
}

// PrevSentence returns the start of the sentence before the one containing
// from, or 0.
func (d *Document) PrevSentence(from int) int {
	for i := len(d.sentenceStarts) - 1; i >= 0; i-- {
		if d.sentenceStarts[i] < from {
			return d.sentenceStarts[i]
		}
	}
	return 0
}

// NextSentence returns the start of the sentence after from, or the last
// token.
func (d *Document) NextSentence(from int) int {
	for _, s := range d.sentenceStarts {
		if s > from {
			return s
		}
	}
	if len(d.Tokens) > 0 {
		return len(d.Tokens) - 1
	}
	return 0
}

// Progress returns the 1-based token position and the token count.
func (d *Document) Progress(index int) (current, total int) {
	return index + 1, len(d.Tokens)
}

// ChapterAt returns the chapter index containing token index, or -1 when
// the document has no chapters.
func (d *Document) ChapterAt(index int) int {
	for i := len(d.Chapters) - 1; i >= 0; i-- {
		if index >= d.Chapters[i].TokenStart {
			return i
		}
	}
	if len(d.Chapters) > 0 {
		return 0
	}
	return -1
}

// ChapterTitle returns the title of the chapter containing token index.
func (d *Document) ChapterTitle(index int) string {
	if i := d.ChapterAt(index); i >= 0 {
		return d.Chapters[i].Title
	}
	return ""
}

// SetChapters attaches outline data, resolving byte offsets to token
// indices.
func (d *Document) SetChapters(chapters []Chapter, toc []TOCEntry) {
	d.Chapters = make([]Chapter, 0, len(chapters))
	for _, c := range chapters {
		c.TokenStart = TokenAtOffset(d.Tokens, c.Offset)
		end := c.End
		if end <= c.Offset || end > len(d.Text) {
			end = len(d.Text)
		}
		c.TokenEnd = TokenAtOffset(d.Tokens, end-1)
		d.Chapters = append(d.Chapters, c)
	}
	d.TOC = make([]TOCEntry, 0, len(toc))
	for _, e := range toc {
		e.TokenIndex = TokenAtOffset(d.Tokens, e.Offset)
		d.TOC = append(d.TOC, e)
	}
}

package reader

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind distinguishes word tokens from whitespace runs.
type Kind int

const (
	Word Kind = iota
	Whitespace
)

func (k Kind) String() string {
	if k == Whitespace {
		return "whitespace"
	}
	return "word"
}

// Token is the smallest addressable unit of document text.
type Token struct {
	Index  int
	Text   string
	Kind   Kind
	Offset int // byte offset into the source text
}

// IsSpace reports whether the token is a whitespace run.
func (t Token) IsSpace() bool { return t.Kind == Whitespace }

// Tokenize splits text into alternating word and whitespace tokens.
// Joining the Text of every returned token reproduces text exactly.
func Tokenize(text string) []Token {
	return TokenizeWith(text, nil)
}

// TokenizeWith is Tokenize with an optional segmenter applied to each word
// token. A nil segmenter leaves words whole.
func TokenizeWith(text string, seg Segmenter) []Token {
	if text == "" {
		return nil
	}

	var tokens []Token
	emit := func(s string, kind Kind, offset int) {
		tokens = append(tokens, Token{Index: len(tokens), Text: s, Kind: kind, Offset: offset})
	}

	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space == inSpace {
			continue
		}
		emitRun(text[start:i], inSpace, start, seg, emit)
		start = i
		inSpace = space
	}
	emitRun(text[start:], inSpace, start, seg, emit)

	return tokens
}

func emitRun(run string, space bool, offset int, seg Segmenter, emit func(string, Kind, int)) {
	if space {
		emit(run, Whitespace, offset)
		return
	}
	parts := segmentWord(run, seg)
	for _, p := range parts {
		emit(p, Word, offset)
		offset += len(p)
	}
}

// segmentWord splits a word with seg, keeping the word whole whenever the
// segments would not reassemble into it.
func segmentWord(word string, seg Segmenter) []string {
	if seg == nil || !utf8.ValidString(word) {
		return []string{word}
	}
	parts := seg.Segment(word)
	if len(parts) < 2 || strings.Join(parts, "") != word {
		return []string{word}
	}
	for _, p := range parts {
		if p == "" {
			return []string{word}
		}
	}
	return parts
}

// Join concatenates the text of tokens[from..to] inclusive, clamping the
// bounds to the slice.
func Join(tokens []Token, from, to int) string {
	if from > to {
		from, to = to, from
	}
	if from < 0 {
		from = 0
	}
	if to >= len(tokens) {
		to = len(tokens) - 1
	}
	var sb strings.Builder
	for i := from; i <= to; i++ {
		sb.WriteString(tokens[i].Text)
	}
	return sb.String()
}

// TokenAtOffset returns the index of the token covering the byte offset.
func TokenAtOffset(tokens []Token, offset int) int {
	if len(tokens) == 0 || offset <= 0 {
		return 0
	}
	lo, hi := 0, len(tokens)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if tokens[mid].Offset <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

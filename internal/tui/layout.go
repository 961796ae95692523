package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/metcalfc/glossr/internal/reader"
)

// span is a piece of one token drawn on one screen line.
type span struct {
	token int
	col   int
	text  string
	width int
}

// layout wraps a token array to a fixed width and maps screen cells back to
// token indices.
type layout struct {
	width     int
	lines     [][]span
	firstLine []int // token index -> first line it appears on
}

func newLayout(tokens []reader.Token, width int) *layout {
	if width < 1 {
		width = 1
	}
	l := &layout{width: width, firstLine: make([]int, len(tokens))}
	line := []span{}
	col := 0

	newline := func() {
		l.lines = append(l.lines, line)
		line = []span{}
		col = 0
	}

	for _, tok := range tokens {
		l.firstLine[tok.Index] = len(l.lines)
		if tok.IsSpace() {
			for i, part := range strings.Split(tok.Text, "\n") {
				if i > 0 {
					newline()
				}
				// Blanks running past the right edge are clipped.
				w := min(blankWidth(part), width-col)
				if w > 0 {
					line = append(line, span{token: tok.Index, col: col, text: strings.Repeat(" ", w), width: w})
					col += w
				}
			}
			continue
		}

		w := runewidth.StringWidth(tok.Text)
		if col > 0 && col+w > width {
			newline()
			l.firstLine[tok.Index] = len(l.lines)
		}
		text := tok.Text
		for w > width-col {
			// Words wider than the screen are hard split.
			head := runewidth.Truncate(text, width-col, "")
			if head == "" {
				head = string([]rune(text)[:1])
			}
			hw := runewidth.StringWidth(head)
			line = append(line, span{token: tok.Index, col: col, text: head, width: hw})
			newline()
			text = text[len(head):]
			w -= hw
		}
		if text != "" {
			line = append(line, span{token: tok.Index, col: col, text: text, width: w})
			col += w
		}
	}
	l.lines = append(l.lines, line)
	return l
}

const tabWidth = 4

func blankWidth(s string) int {
	w := 0
	for _, r := range s {
		switch r {
		case '\t':
			w += tabWidth
		case '\r':
		default:
			w += max(runewidth.RuneWidth(r), 1)
		}
	}
	return w
}

// lineCount is the number of wrapped lines.
func (l *layout) lineCount() int { return len(l.lines) }

// lineOf returns the first line showing token index.
func (l *layout) lineOf(index int) int {
	if index < 0 || index >= len(l.firstLine) {
		return 0
	}
	return l.firstLine[index]
}

// tokenAt returns the token under cell (line, col). exact is false when the
// cell is past the end of a line or outside the text; the nearest token is
// returned then, or -1 for an empty document.
func (l *layout) tokenAt(line, col int) (index int, exact bool) {
	if len(l.firstLine) == 0 {
		return -1, false
	}
	if line < 0 {
		return 0, false
	}
	if line >= len(l.lines) {
		return len(l.firstLine) - 1, false
	}
	// Blank lines resolve to the nearest token before them.
	for ln := line; ln >= 0; ln-- {
		spans := l.lines[ln]
		if len(spans) == 0 {
			continue
		}
		if ln != line {
			return spans[len(spans)-1].token, false
		}
		for _, s := range spans {
			if col >= s.col && col < s.col+s.width {
				return s.token, true
			}
		}
		if col < spans[0].col {
			return spans[0].token, false
		}
		return spans[len(spans)-1].token, false
	}
	return 0, false
}

// plain renders lines [from, to) without styling.
func (l *layout) plain(from, to int) []string {
	return l.render(from, to, func(_ int, text string) string { return text })
}

// render draws lines [from, to), passing every span through style.
func (l *layout) render(from, to int, style func(token int, text string) string) []string {
	from = max(from, 0)
	to = min(to, len(l.lines))
	if to <= from {
		return nil
	}
	out := make([]string, 0, to-from)
	for _, spans := range l.lines[from:to] {
		var sb strings.Builder
		for _, s := range spans {
			sb.WriteString(style(s.token, s.text))
		}
		out = append(out, sb.String())
	}
	return out
}

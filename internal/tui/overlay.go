package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlay draws fg on top of bg with its top-left corner at (top, left).
// Both may contain ANSI styling; bg is padded when fg reaches past it.
func overlay(bg, fg string, top, left int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	for len(bgLines) < top+len(fgLines) {
		bgLines = append(bgLines, "")
	}

	for i, fl := range fgLines {
		row := top + i
		if row < 0 {
			continue
		}
		bl := bgLines[row]
		if w := ansi.StringWidth(bl); w < left {
			bl += strings.Repeat(" ", left-w)
		}
		fw := ansi.StringWidth(fl)
		head := ansi.Truncate(bl, left, "")
		tail := ansi.TruncateLeft(bl, left+fw, "")
		bgLines[row] = head + "\x1b[0m" + fl + "\x1b[0m" + tail
	}
	return strings.Join(bgLines, "\n")
}

package reader

// TOCEntry represents a single entry in a table of contents
type TOCEntry struct {
	Title      string
	Preview    string
	Level      int
	Offset     int // byte offset into the extracted text
	TokenIndex int
}

// Chapter is a titled span of the extracted text. Offset and End are byte
// offsets; TokenStart and TokenEnd are filled in by Document.SetChapters.
type Chapter struct {
	Title      string
	Offset     int
	End        int
	TokenStart int
	TokenEnd   int
}

// TOCProvider is an optional interface for formats that support TOC extraction
type TOCProvider interface {
	TOC(filename string) ([]TOCEntry, error)
}

// ChapterExtractor is an optional interface for chapter-aware extraction.
// The returned text must equal what Extract returns for the same file.
type ChapterExtractor interface {
	ExtractChapters(filename string) (string, []Chapter, error)
}

// sectionJoin separates sections of multi-part formats.
const sectionJoin = "\n\n"

// section is one titled piece of a multi-part document.
type section struct {
	title string
	text  string
}

// assemble joins sections with a blank line, recording each one's span.
func assemble(sections []section) (string, []Chapter) {
	var text []byte
	var chapters []Chapter
	for _, s := range sections {
		if len(text) > 0 {
			text = append(text, sectionJoin...)
		}
		start := len(text)
		text = append(text, s.text...)
		chapters = append(chapters, Chapter{Title: s.title, Offset: start, End: len(text)})
	}
	return string(text), chapters
}

package reader

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// ncxDoc is the subset of toc.ncx that carries the navigation tree.
type ncxDoc struct {
	Points []ncxPoint `xml:"navMap>navPoint"`
}

type ncxPoint struct {
	Label   string `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxPoint `xml:"navPoint"`
}

var errNoNCX = errors.New("epub has no navigation file")

// hrefKeys returns the lookup keys for an href: as written, without its
// fragment, and the fragment-free base name.
func hrefKeys(href string) []string {
	bare := href
	if i := strings.Index(bare, "#"); i != -1 {
		bare = bare[:i]
	}
	return []string{href, bare, path.Base(bare)}
}

// TOC extracts the table of contents from an EPUB file. Entry offsets index
// into the text returned by Extract.
func (f *EPUBFormat) TOC(filename string) ([]TOCEntry, error) {
	rc, book, err := openEPUB(filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	toc, err := parseNCX(filename, book)
	if err != nil {
		return nil, err
	}

	spans := spineSpans(book)
	return flattenNavPoints(toc.Points, spans, 0), nil
}

// ExtractChapters extracts text with one chapter per spine item, titled from
// the NCX when possible.
func (f *EPUBFormat) ExtractChapters(filename string) (string, []Chapter, error) {
	rc, book, err := openEPUB(filename)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	titles := make(map[string]string)
	if toc, err := parseNCX(filename, book); err == nil {
		collectTitles(toc.Points, titles)
	}

	var sections []section
	spineTexts(book, func(i int, href, text string) {
		title := fmt.Sprintf("Section %d", i+1)
		for _, k := range hrefKeys(href) {
			if t, ok := titles[k]; ok {
				title = t
				break
			}
		}
		sections = append(sections, section{title: title, text: text})
	})

	text, chapters := assemble(sections)
	return text, chapters, nil
}

func collectTitles(points []ncxPoint, into map[string]string) {
	for _, np := range points {
		title := strings.TrimSpace(np.Label)
		for _, k := range hrefKeys(np.Content.Src) {
			if _, exists := into[k]; !exists {
				into[k] = title
			}
		}
		collectTitles(np.Children, into)
	}
}

func parseNCX(filename string, book *epub.Rootfile) (*ncxDoc, error) {
	data, err := readNCX(filename, book)
	if err != nil {
		return nil, err
	}
	var toc ncxDoc
	if err := xml.Unmarshal(data, &toc); err != nil {
		return nil, fmt.Errorf("%w: NCX: %w", ErrParse, err)
	}
	return &toc, nil
}

// ncxPath finds the navigation file through the manifest, falling back to
// any .ncx entry in the archive.
func ncxPath(zr *zip.ReadCloser, book *epub.Rootfile) string {
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			return item.HREF
		}
	}
	for _, f := range zr.File {
		if strings.EqualFold(path.Ext(f.Name), ".ncx") {
			return f.Name
		}
	}
	return ""
}

func readNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer zr.Close()

	want := ncxPath(zr, book)
	if want == "" {
		return nil, errNoNCX
	}
	for _, f := range zr.File {
		// manifest hrefs are relative to the OPF directory
		if f.Name == want || strings.HasSuffix(f.Name, "/"+want) || path.Base(f.Name) == path.Base(want) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%w: %s missing from archive", errNoNCX, want)
}

type spineSpan struct {
	offset  int
	preview string
}

// spineSpans maps spine hrefs to where their text starts in the assembled
// document, mirroring the joining done by assemble.
func spineSpans(book *epub.Rootfile) map[string]spineSpan {
	m := make(map[string]spineSpan)
	offset := 0
	first := true

	spineTexts(book, func(_ int, href, text string) {
		if !first {
			offset += len(sectionJoin)
		}
		first = false

		words := strings.Fields(text)
		if len(words) > 10 {
			words = words[:10]
		}
		span := spineSpan{offset: offset, preview: strings.Join(words, " ") + "..."}
		if href != "" {
			m[href] = span
			m[path.Base(href)] = span
		}
		offset += len(text)
	})

	return m
}

func flattenNavPoints(points []ncxPoint, spans map[string]spineSpan, level int) []TOCEntry {
	var entries []TOCEntry

	for _, np := range points {
		entry := TOCEntry{
			Title: strings.TrimSpace(np.Label),
			Level: level,
		}
		for _, k := range hrefKeys(np.Content.Src)[1:] {
			if span, ok := spans[k]; ok {
				entry.Offset = span.offset
				entry.Preview = span.preview
				break
			}
		}
		entries = append(entries, entry)
		entries = append(entries, flattenNavPoints(np.Children, spans, level+1)...)
	}

	return entries
}

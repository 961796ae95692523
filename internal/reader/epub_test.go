package reader

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextFromHTML(t *testing.T) {
	htmlContent := `
	<html>
		<head><title>Test</title><style>p { color: red }</style></head>
		<body>
			<h1>Chapter 1</h1>
			<p>This is the <b>first</b> paragraph.</p>
			<p>
				This is the second paragraph
				with a newline.
			</p>
			<div>Some <span>nested</span> text.</div>
			<script>var ignored = true;</script>
		</body>
	</html>
	`

	want := "Chapter 1\n\n" +
		"This is the first paragraph.\n\n" +
		"This is the second paragraph with a newline.\n\n" +
		"Some nested text."

	got := extractTextFromHTML(htmlContent)
	if got != want {
		t.Errorf("extractTextFromHTML:\n got %q\nwant %q", got, want)
	}
}

// writeEPUB builds a minimal two-chapter EPUB 2 book.
func writeEPUB(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "book.epub")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	files := []struct{ name, body string }{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`},
		{"OEBPS/content.opf", `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Cuentos</dc:title>
    <dc:identifier id="id">test-book</dc:identifier>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="c1" href="one.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="two.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="c1"/>
    <itemref idref="c2"/>
  </spine>
</package>`},
		{"OEBPS/toc.ncx", `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>El gato</text></navLabel>
      <content src="one.xhtml"/>
    </navPoint>
    <navPoint id="n2" playOrder="2">
      <navLabel><text>El perro</text></navLabel>
      <content src="two.xhtml#start"/>
    </navPoint>
  </navMap>
</ncx>`},
		{"OEBPS/one.xhtml", `<html><body><p>El gato duerme.</p></body></html>`},
		{"OEBPS/two.xhtml", `<html><body><p>El perro ladra.</p><p>Fin.</p></body></html>`},
	}
	for _, file := range files {
		w, err := zw.Create(file.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(file.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestEPUBExtractChapters(t *testing.T) {
	path := writeEPUB(t, t.TempDir())

	f := &EPUBFormat{}
	text, chapters, err := f.ExtractChapters(path)
	require.NoError(t, err)

	assert.Equal(t, "El gato duerme.\n\nEl perro ladra.\n\nFin.", text)
	require.Len(t, chapters, 2)
	assert.Equal(t, "El gato", chapters[0].Title)
	assert.Equal(t, "El perro", chapters[1].Title)
	assert.True(t, strings.HasPrefix(text[chapters[1].Offset:], "El perro"))

	plain, err := f.Extract(path)
	require.NoError(t, err)
	assert.Equal(t, text, plain)
}

func TestEPUBTOC(t *testing.T) {
	path := writeEPUB(t, t.TempDir())

	f := &EPUBFormat{}
	toc, err := f.TOC(path)
	require.NoError(t, err)
	require.Len(t, toc, 2)

	text, _, err := f.ExtractChapters(path)
	require.NoError(t, err)
	assert.Equal(t, 0, toc[0].Offset)
	assert.True(t, strings.HasPrefix(text[toc[1].Offset:], "El perro"), "second entry should point at its spine item")
	assert.Equal(t, "El perro ladra. Fin....", toc[1].Preview)
}

func TestOpenEPUBMapsChaptersToTokens(t *testing.T) {
	path := writeEPUB(t, t.TempDir())

	doc, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "book", doc.Title)
	require.Len(t, doc.Chapters, 2)

	second := doc.Chapters[1]
	assert.Equal(t, "El", doc.Tokens[second.TokenStart].Text)
	assert.Equal(t, "El perro", doc.ChapterTitle(second.TokenStart+2))
	assert.Equal(t, "El gato", doc.ChapterTitle(0))
	require.Len(t, doc.TOC, 2)
	assert.Equal(t, second.TokenStart, doc.TOC[1].TokenIndex)
}

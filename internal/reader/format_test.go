package reader

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"plain text", write("cuento.txt", "Hola mundo.\n"), "Hola mundo.\n", nil},
		{"no extension", write("NOTAS", "sin extensión"), "sin extensión", nil},
		{"unsupported", write("hoja.xlsx", "PK"), "", ErrUnsupportedFormat},
		{"missing", filepath.Join(dir, "nada.txt"), "", fs.ErrNotExist},
		{"corrupt epub", write("roto.epub", "not a zip"), "", ErrParse},
		{"corrupt pdf", write("roto.pdf", "%PDF-1.4 garbage"), "", ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	for _, want := range []string{
		"EPUB (.epub)",
		"PDF (.pdf)",
		"Markdown (.md, .markdown)",
		"Text (.txt, .text)",
	} {
		assert.Contains(t, formats, want)
	}
}

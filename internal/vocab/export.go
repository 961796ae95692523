package vocab

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

var exportHeader = []string{"Original Text", "Translation", "Learning Language", "Translation Language", "Saved On"}

// DefaultExportName is the suggested file name for an export made at t.
func DefaultExportName(t time.Time) string {
	return "word_bank_export_" + t.Format("2006-01-02") + ".csv"
}

// Export writes entries as CSV with a header row.
func Export(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("vocab: export: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.Text,
			e.Translation,
			e.TargetLang,
			e.SourceLang,
			e.Timestamp.Local().Format(time.DateTime),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("vocab: export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("vocab: export: %w", err)
	}
	return nil
}

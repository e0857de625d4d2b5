package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// CSVWriter writes statement records as two-column label/value rows.
type CSVWriter struct {
	IncludeHeader bool
}

// Write writes one record per call. When several records go to the same
// stream, only the first call should include the header.
func (w *CSVWriter) Write(out io.Writer, fields models.StatementFields) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		if err := writer.Write([]string{"Field", "Value"}); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	for _, f := range fields.Fields() {
		if err := writer.Write([]string{f.Label, f.Value}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

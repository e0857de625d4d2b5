package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// Format selects an output rendering.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatYAML   Format = "yaml"
	FormatPretty Format = "pretty"
)

// Formats lists the supported formats in the order shown in help text.
var Formats = []Format{FormatPretty, FormatJSON, FormatYAML, FormatCSV}

// ParseFormat accepts a format name case-insensitively. "yml" is an alias
// for yaml and "text" for pretty.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "pretty", "text", "":
		return FormatPretty, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", s, Formats)
}

// Render writes fields to out in the given format.
func Render(out io.Writer, fields models.StatementFields, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(fields)
	case FormatCSV:
		return (&CSVWriter{IncludeHeader: true}).Write(out, fields)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(fields); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatPretty:
		return renderPretty(out, fields)
	}
	return fmt.Errorf("unknown format %q", format)
}

func renderPretty(out io.Writer, fields models.StatementFields) error {
	printer := pp.New()
	printer.SetColoringEnabled(isTerminal(out))
	printer.SetExportedOnly(true)
	_, err := printer.Fprintln(out, fields)
	return err
}

// Colors only go to an interactive terminal.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// WriteToFile renders fields into the file at path, replacing it.
func WriteToFile(path string, fields models.StatementFields, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := Render(f, fields, format); err != nil {
		return err
	}
	return f.Close()
}

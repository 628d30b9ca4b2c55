package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatTable is an aligned table (default).
	FormatTable OutputFormat = "table"
	// FormatText is plain text output, one line per entry.
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// Formats lists the supported output formats.
func Formats() []OutputFormat {
	return []OutputFormat{FormatTable, FormatText, FormatJSON, FormatCSV}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", NewConfigError("format", fmt.Sprintf("unknown output format %q (want table, text, json or csv)", name))
}

// Tabular is data that renders as rows of cells.
type Tabular interface {
	Columns() []string
	Rows() [][]string
}

// Formatter formats command output.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// TextFormatter formats output as plain text. Data implementing
// fmt.Stringer controls its own rendering.
type TextFormatter struct{}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	if s, ok := data.(fmt.Stringer); ok {
		_, err := io.WriteString(w, s.String())
		return err
	}
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats Tabular data as CSV with a header row.
type CSVFormatter struct{}

// FormatTo writes data to writer in CSV format.
func (f *CSVFormatter) FormatTo(w io.Writer, data any) error {
	tab, ok := data.(Tabular)
	if !ok {
		return fmt.Errorf("csv output not supported for %T", data)
	}

	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(tab.Columns()); err != nil {
		return err
	}
	if err := csvWriter.WriteAll(tab.Rows()); err != nil {
		return err
	}
	return csvWriter.Error()
}

// TableFormatter formats Tabular data as an aligned table with upper-case
// headers. Line breaks inside cells are flattened.
type TableFormatter struct{}

// FormatTo writes data to writer as a table.
func (f *TableFormatter) FormatTo(w io.Writer, data any) error {
	tab, ok := data.(Tabular)
	if !ok {
		return (&TextFormatter{}).FormatTo(w, data)
	}

	rows := tab.Rows()
	if len(rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, len(tab.Columns()))
	for i, col := range tab.Columns() {
		header[i] = strings.ToUpper(col)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = flatten(cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// flatten joins the lines of s with single spaces.
func flatten(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.ReplaceAll(l, "\t", " "))
	}
	return strings.Join(lines, " ")
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	case FormatText:
		return &TextFormatter{}
	default:
		return &TableFormatter{}
	}
}

package output

import (
	"fmt"
	"io"
)

// Format represents the output format.
type Format string

// Supported formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format. Unknown formats
// render as a table.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// Printer writes results and messages in one format.
type Printer struct {
	w      io.Writer
	format Format
	f      Formatter
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format, f: NewFormatter(format)}
}

// Print renders data.
func (p *Printer) Print(data any) error {
	return p.f.Format(p.w, data)
}

// Message prints a status line. In JSON and YAML mode it becomes
// {"message": ...} so that output stays machine readable.
func (p *Printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.format == FormatJSON || p.format == FormatYAML {
		return p.f.Format(p.w, map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

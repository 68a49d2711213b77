package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vegasq/jsql/query"
)

// Style selects the document format a PrettyFormatter renders.
type Style int

const (
	StyleMarkdown Style = iota
	StyleHTML
)

// PrettyFormatter outputs rows as a markdown or HTML table
type PrettyFormatter struct {
	writer io.Writer
	style  Style
}

// NewPrettyFormatter creates a formatter rendering the given style
func NewPrettyFormatter(w io.Writer, style Style) *PrettyFormatter {
	return &PrettyFormatter{writer: w, style: style}
}

// SetOutput sets the output writer
func (f *PrettyFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format renders rows as a single table. Nothing is written for an empty
// result.
func (f *PrettyFormatter) Format(rows []query.Row) error {
	columns := Columns(rows)
	if len(columns) == 0 {
		return nil
	}

	t := table.NewWriter()
	t.AppendHeader(toTableRow(columns))
	for _, record := range records(rows, columns) {
		t.AppendRow(toTableRow(record))
	}

	var rendered string
	switch f.style {
	case StyleHTML:
		rendered = t.RenderHTML()
	default:
		rendered = t.RenderMarkdown()
	}

	_, err := fmt.Fprintln(f.writer, rendered)
	return err
}

func toTableRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, val := range cells {
		row[i] = val
	}
	return row
}

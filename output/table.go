package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/jsql/query"
)

// TableFormatter outputs rows as an ASCII grid for terminals
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new ASCII table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (f *TableFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format writes rows as a grid. Nothing is written for an empty result.
func (f *TableFormatter) Format(rows []query.Row) error {
	columns := Columns(rows)
	if len(columns) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(f.writer)
	table.SetHeader(columns)
	// keep column names exactly as selected
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(records(rows, columns))
	table.Render()
	return nil
}

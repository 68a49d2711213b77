// Package output renders query results in various formats.
//
// Supported formats:
//   - jsonl: one JSON object per line
//   - json: a single indented JSON array
//   - csv: comma-separated values with a header row
//   - table: an ASCII grid
//   - markdown (alias md), html: tables for documents and pages
//
// Example usage:
//
//	formatter, err := output.New("table", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(rows); err != nil {
//	    log.Fatal(err)
//	}
package output

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vegasq/jsql/query"
)

// ErrUnknownFormat is returned by New for an unrecognized format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to convert rows to the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []query.Row) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Names lists the accepted format names.
var Names = []string{"jsonl", "json", "csv", "table", "markdown", "html"}

var aliases = map[string]string{"md": "markdown"}

// Canonical maps a format name or alias to its entry in Names, ignoring
// case. It reports false for unknown names.
func Canonical(name string) (string, bool) {
	name = strings.ToLower(name)
	if full, ok := aliases[name]; ok {
		return full, true
	}
	return name, slices.Contains(Names, name)
}

// New returns the formatter registered under name, writing to w.
func New(name string, w io.Writer) (Formatter, error) {
	canonical, _ := Canonical(name)
	switch canonical {
	case "jsonl":
		return NewJSONFormatter(w), nil
	case "json":
		return NewJSONArrayFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	case "markdown":
		return NewPrettyFormatter(w, StyleMarkdown), nil
	case "html":
		return NewPrettyFormatter(w, StyleHTML), nil
	default:
		return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Names, ", "))
	}
}

// Columns returns the union of keys across rows in first-seen order.
// Rows may differ in shape when some fields did not resolve.
func Columns(rows []query.Row) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for _, key := range row.Keys() {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	return columns
}

// records flattens rows into text cells aligned to columns. Missing fields
// and nulls become empty cells, nested records their JSON text.
func records(rows []query.Row, columns []string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := row.Get(col); ok {
				record[i] = v.Text()
			}
		}
		out = append(out, record)
	}
	return out
}

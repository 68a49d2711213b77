package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"

	"github.com/vegasq/jsql/query"
)

// Reader reads parquet files and returns rows as ordered records.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// NewReader creates a new parquet reader for the specified file path.
//
// The file is opened and validated as a parquet file. Returns an error if
// the file doesn't exist or is not a valid parquet file.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// ReadAll reads all rows from the parquet file into memory.
//
// Columns appear in schema order. Nested groups become nested rows, null
// values and repeated columns are left out.
func (r *Reader) ReadAll() ([]query.Row, error) {
	rows := make([]query.Row, 0, r.pqFile.NumRows())
	fields := r.pqFile.Schema().Fields()

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		raw := make(map[string]interface{})
		err := reader.Read(&raw)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row, err := convertGroup(fields, raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Schema returns the parquet file schema.
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// NumRows returns the row count recorded in the file footer.
func (r *Reader) NumRows() int64 {
	return r.pqFile.NumRows()
}

// Close closes the parquet reader and releases associated resources.
// It is safe to call Close multiple times.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// convertGroup walks fields in schema order and picks the matching values
// out of a decoded map.
func convertGroup(fields []parquet.Field, raw map[string]interface{}) (query.Row, error) {
	row := query.NewRow()
	for _, field := range fields {
		if isCollection(field) {
			continue
		}
		v, ok := raw[field.Name()]
		if !ok || v == nil {
			continue
		}

		if children := field.Fields(); len(children) > 0 {
			m, ok := v.(map[string]interface{})
			if !ok {
				return query.Row{}, fmt.Errorf("column %q: expected group, got %T", field.Name(), v)
			}
			nested, err := convertGroup(children, m)
			if err != nil {
				return query.Row{}, err
			}
			row.Set(field.Name(), query.Nested(nested))
			continue
		}

		row.Set(field.Name(), convertLeaf(field, v))
	}
	return row, nil
}

func convertLeaf(field parquet.Field, v interface{}) query.Value {
	if t, ok := v.(time.Time); ok {
		return query.String(t.UTC().Format(time.RFC3339Nano))
	}
	if lt := logicalType(field); lt != nil {
		switch n := v.(type) {
		case int64:
			if lt.Timestamp != nil {
				return query.String(timestampFromUnit(n, lt.Timestamp.Unit).Format(time.RFC3339Nano))
			}
		case int32:
			if lt.Date != nil {
				return query.String(time.Unix(int64(n)*86400, 0).UTC().Format(time.DateOnly))
			}
		}
	}

	val, err := query.FromInterface(v)
	if err != nil {
		// INT96 and other legacy encodings fall back to their printed form.
		return query.String(fmt.Sprint(v))
	}
	return val
}

// isCollection reports whether a field holds repeated values, either as a
// plain repeated column or as a LIST or MAP group.
func isCollection(field parquet.Field) bool {
	if field.Repeated() {
		return true
	}
	lt := logicalType(field)
	return lt != nil && (lt.List != nil || lt.Map != nil)
}

func logicalType(field parquet.Field) *format.LogicalType {
	if field.Type() == nil {
		return nil
	}
	return field.Type().LogicalType()
}

func timestampFromUnit(n int64, unit format.TimeUnit) time.Time {
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(n).UTC()
	case unit.Micros != nil:
		return time.UnixMicro(n).UTC()
	default:
		return time.Unix(0, n).UTC()
	}
}

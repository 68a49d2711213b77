package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/jsql/query"
)

// ColumnInfo describes one queryable column of a table.
//
// Nested columns use dot notation (e.g. "profile.lastName"), which is also
// how they are addressed in a query.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional"`
	Repeated bool   `json:"repeated"`
}

// DescribeFile returns the columns of every table a file provides.
//
// Parquet columns come from the file schema. JSON columns are inferred from
// the records themselves.
func DescribeFile(path string) (map[string][]ColumnInfo, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
	case ".json":
		ds, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		out := make(map[string][]ColumnInfo, len(ds))
		for name, rows := range ds {
			out[name] = InferColumns(rows)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	cols, err := ParquetColumns(path)
	if err != nil {
		return nil, err
	}
	return map[string][]ColumnInfo{TableName(path): cols}, nil
}

// ParquetColumns extracts leaf columns from a parquet file schema.
func ParquetColumns(path string) ([]ColumnInfo, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = r.Close() }()

	var cols []ColumnInfo
	for _, field := range r.Schema().Fields() {
		cols = append(cols, fieldColumns(field, "", false)...)
	}
	return cols, nil
}

// fieldColumns flattens a field into its leaf columns. Repetition is
// inherited from any repeated parent.
func fieldColumns(field parquet.Field, prefix string, parentRepeated bool) []ColumnInfo {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		var cols []ColumnInfo
		for _, child := range children {
			cols = append(cols, fieldColumns(child, name, repeated)...)
		}
		return cols
	}

	return []ColumnInfo{{
		Name:     name,
		Type:     parquetType(field),
		Optional: field.Optional(),
		Repeated: repeated,
	}}
}

// parquetType maps a leaf field onto the value kind it loads as.
func parquetType(field parquet.Field) string {
	if lt := logicalType(field); lt != nil {
		switch {
		case lt.Timestamp != nil, lt.Date != nil:
			return query.KindString.String()
		case lt.UTF8 != nil, lt.Enum != nil:
			return query.KindString.String()
		case lt.Integer != nil, lt.Decimal != nil:
			return query.KindNumber.String()
		}
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return query.KindBool.String()
	case parquet.Int32, parquet.Int64, parquet.Float, parquet.Double:
		return query.KindNumber.String()
	case parquet.ByteArray, parquet.FixedLenByteArray, parquet.Int96:
		return query.KindString.String()
	default:
		return "unknown"
	}
}

// InferColumns derives column descriptions from records. Columns are listed
// in first-seen order. A column whose kind differs between records is
// reported as "mixed"; one missing or null in some record is optional.
func InferColumns(rows []query.Row) []ColumnInfo {
	var order []string
	kinds := make(map[string]string)
	seen := make(map[string]int)

	for _, row := range rows {
		for _, leaf := range flatten(row, "") {
			if _, ok := kinds[leaf.path]; !ok {
				order = append(order, leaf.path)
				kinds[leaf.path] = leaf.kind
			} else if kinds[leaf.path] != leaf.kind {
				kinds[leaf.path] = "mixed"
			}
			seen[leaf.path]++
		}
	}

	cols := make([]ColumnInfo, 0, len(order))
	for _, path := range order {
		cols = append(cols, ColumnInfo{
			Name:     path,
			Type:     kinds[path],
			Optional: seen[path] < len(rows),
		})
	}
	return cols
}

type leafKind struct {
	path string
	kind string
}

// flatten lists each non-null leaf path of a row with its kind, in row order.
func flatten(row query.Row, prefix string) []leafKind {
	var out []leafKind
	for _, key := range row.Keys() {
		v, _ := row.Get(key)
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := v.AsRow(); ok {
			out = append(out, flatten(nested, path)...)
			continue
		}
		if v.IsNull() {
			continue
		}
		out = append(out, leafKind{path, v.Kind().String()})
	}
	return out
}

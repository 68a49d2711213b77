package query

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is one record of a table: an ordered mapping from field name to
// Value. Key order is insertion order, which JSON decoding takes from the
// source document. The zero Row is empty and ready to use.
type Row struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// Dataset maps table names to their rows. The engine never mutates it.
type Dataset map[string][]Row

// NewRow creates an empty row
func NewRow() Row {
	return Row{fields: orderedmap.New[string, Value]()}
}

// Len returns the number of fields in the row
func (r Row) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Get returns the value stored under key
func (r Row) Get(key string) (Value, bool) {
	if r.fields == nil {
		return Value{}, false
	}
	return r.fields.Get(key)
}

// Set stores v under key. An existing key keeps its position.
func (r *Row) Set(key string, v Value) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, Value]()
	}
	r.fields.Set(key, v)
}

// Keys returns field names in row order
func (r Row) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a deep copy of the row
func (r Row) Clone() Row {
	out := NewRow()
	if r.fields == nil {
		return out
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value.clone())
	}
	return out
}

// Interface converts the row into a plain map, recursively
func (r Row) Interface() map[string]interface{} {
	m := make(map[string]interface{}, r.Len())
	if r.fields == nil {
		return m
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value.Interface()
	}
	return m
}

// String renders the row as JSON
func (r Row) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid row: %v>", err)
	}
	return string(data)
}

// MarshalJSON implements json.Marshaler, preserving key order
func (r Row) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler, preserving key order
func (r *Row) UnmarshalJSON(data []byte) error {
	if trimmed := strings.TrimSpace(string(data)); !strings.HasPrefix(trimmed, "{") {
		return fmt.Errorf("row must be a JSON object")
	}
	fields := orderedmap.New[string, Value]()
	if err := fields.UnmarshalJSON(data); err != nil {
		return err
	}
	r.fields = fields
	return nil
}

// DecodeDataset decodes a JSON object mapping table names to arrays of
// row objects.
func DecodeDataset(data []byte) (Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if ds == nil {
		ds = Dataset{}
	}
	return ds, nil
}

// DecodeRows decodes a JSON array of row objects
func DecodeRows(data []byte) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return rows, nil
}

// Resolve walks a dotted field path through nested rows. It reports false
// when any segment is missing, crosses a non-row value, or ends on null.
func Resolve(row Row, path string) (Value, bool) {
	return resolveSegments(row, strings.Split(path, "."))
}

func resolveSegments(row Row, segments []string) (Value, bool) {
	current := row
	for i, seg := range segments {
		v, ok := current.Get(seg)
		if !ok || v.IsNull() {
			return Value{}, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		next, isRow := v.AsRow()
		if !isRow {
			return Value{}, false
		}
		current = next
	}
	return Value{}, false
}

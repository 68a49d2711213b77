package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindRow
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindRow:
		return "row"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a single field value: a number, string, boolean or nested Row.
// The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	row  Row
}

// Null returns the null Value
func Null() Value { return Value{} }

// Number returns a numeric Value
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a string Value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a boolean Value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Nested returns a Value holding a nested Row
func Nested(r Row) Value { return Value{kind: KindRow, row: r} }

// Kind reports the variant held by v
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsNumber returns the numeric payload
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsString returns the string payload
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsBool returns the boolean payload
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsRow returns the nested Row payload
func (v Value) AsRow() (Row, bool) { return v.row, v.kind == KindRow }

// Text returns the string form of v. Numbers use the shortest
// representation that round-trips, rows render as JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindRow:
		return v.row.String()
	default:
		return ""
	}
}

// Interface returns v as a plain Go value (float64, string, bool,
// map[string]interface{} or nil).
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindRow:
		return v.row.Interface()
	default:
		return nil
	}
}

// clone deep-copies nested rows so the result shares nothing with v
func (v Value) clone() Value {
	if v.kind == KindRow {
		return Nested(v.row.Clone())
	}
	return v
}

func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("unsupported number: %v", v.num)
		}
		return []byte(formatNumber(v.num)), nil
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	case KindRow:
		return v.row.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Objects decode into nested
// rows with their key order preserved; arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case 'n':
		*v = Null()
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case '{':
		var r Row
		if err := r.UnmarshalJSON(data); err != nil {
			return err
		}
		*v = Nested(r)
	case '[':
		return fmt.Errorf("arrays are not supported as field values")
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid number %s: %w", data, err)
		}
		*v = Number(f)
	}
	return nil
}

// FromInterface converts a plain Go value into a Value. Maps become nested
// rows with keys in sorted order since Go maps carry no order.
func FromInterface(x interface{}) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return val, nil
	case Row:
		return Nested(val), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case []byte:
		return String(string(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return Number(f), nil
	case time.Time:
		return String(val.Format(time.RFC3339Nano)), nil
	case map[string]interface{}:
		r, err := RowFromMap(val)
		if err != nil {
			return Value{}, err
		}
		return Nested(r), nil
	}

	if f, ok := toFloat64(x); ok {
		return Number(f), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", x)
}

// RowFromMap builds a Row from a Go map. Keys are inserted in sorted order.
func RowFromMap(m map[string]interface{}) (Row, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := NewRow()
	for _, k := range keys {
		v, err := FromInterface(m[k])
		if err != nil {
			return Row{}, fmt.Errorf("field %q: %w", k, err)
		}
		r.Set(k, v)
	}
	return r, nil
}

// toFloat64 converts a value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseNumber parses s as a finite number
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// typeLiteral classifies a literal once: numeric if it parses as a number,
// otherwise a lowercased string.
func typeLiteral(s string) Value {
	if f, ok := parseNumber(s); ok {
		return Number(f)
	}
	return String(strings.ToLower(s))
}

// normalize coerces a resolved field value into the form conditions compare
// against. Strings holding numbers become numbers, other strings are
// lowercased, booleans become "true"/"false". Null and nested rows have no
// comparable form.
func normalize(v Value) (Value, bool) {
	switch v.kind {
	case KindNumber:
		return v, true
	case KindString:
		return typeLiteral(v.str), true
	case KindBool:
		return String(strconv.FormatBool(v.b)), true
	default:
		return Value{}, false
	}
}

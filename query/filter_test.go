package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_Numbers(t *testing.T) {
	tests := []struct {
		name     string
		left     float64
		operator TokenType
		right    float64
		want     bool
	}{
		{"equal", 30, TokenEqual, 30, true},
		{"not equal", 30, TokenNotEqual, 25, true},
		{"less", 25, TokenLess, 30, true},
		{"greater", 35, TokenGreater, 30, true},
		{"less equal same", 30, TokenLessEqual, 30, true},
		{"greater equal same", 30, TokenGreaterEqual, 30, true},
		{"float less", 2.5, TokenLess, 3, true},

		// Negative results
		{"not equal same", 30, TokenNotEqual, 30, false},
		{"less wrong", 35, TokenLess, 30, false},
		{"greater wrong", 25, TokenGreater, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compare(Number(tt.left), tt.operator, Number(tt.right)))
		})
	}
}

func TestCompare_Strings(t *testing.T) {
	tests := []struct {
		name     string
		left     string
		operator TokenType
		right    string
		want     bool
	}{
		{"equal", "alice", TokenEqual, "alice", true},
		{"case insensitive equal", "Alice", TokenEqual, "aLICE", true},
		{"not equal", "alice", TokenNotEqual, "bob", true},
		{"less", "alice", TokenLess, "bob", true},
		{"case insensitive less", "alice", TokenLess, "Bob", true},
		{"greater", "bob", TokenGreater, "alice", true},
		{"not equal same", "alice", TokenNotEqual, "ALICE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compare(String(tt.left), tt.operator, String(tt.right)))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		in     Value
		want   Value
		wantOK bool
	}{
		{"number stays number", Number(4), Number(4), true},
		{"numeric string becomes number", String(" 42 "), Number(42), true},
		{"string is lowercased", String("Poo"), String("poo"), true},
		{"bool becomes string", Bool(true), String("true"), true},
		{"null has no form", Null(), Value{}, false},
		{"row has no form", Nested(NewRow()), Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalize(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCondition_Evaluate(t *testing.T) {
	row := mustRow(t, `{"a": 4, "b": "2", "c": "Poo", "active": true, "profile": {"lastName": "Wood", "age": 40}, "gone": null}`)

	tests := []struct {
		query string
		want  bool
	}{
		// relational
		{"a = 4", true},
		{"a = '4'", true},
		{"a <> 4", false},
		{"a > 3", true},
		{"a < 3", false},
		{"a <= 4", true},
		{"a >= 5", false},
		// numeric coercion of string field
		{"b = 2", true},
		{"b > 10", false},
		{"b < 10", true},
		// case-insensitive strings
		{"c = 'poo'", true},
		{"c = POO", true},
		{"c <> 'poo'", false},
		{"c > 'bum'", true},
		// booleans compare as words
		{"active = true", true},
		{"active = 'false'", false},
		// LIKE
		{"c LIKE '%oo'", true},
		{"c LIKE 'p%'", true},
		{"c LIKE 'o%'", false},
		{"c NOT LIKE 'o%'", true},
		{"a LIKE '4'", true},
		// IN
		{"a IN (2, 3, 4)", true},
		{"a IN (5, 6)", false},
		{"c IN ('fart', 'POO')", true},
		{"a NOT IN (5, 6)", true},
		{"b IN ('2')", true},
		// BETWEEN inclusive
		{"a BETWEEN 4 AND 6", true},
		{"a BETWEEN 1 AND 4", true},
		{"a BETWEEN 5 AND 6", false},
		{"a NOT BETWEEN 5 AND 6", true},
		{"c BETWEEN a AND q", true},
		// nested paths
		{"profile.lastName = 'wood'", true},
		{"profile.age >= 40", true},
		{"profile.missing = 1", false},
		// unresolved paths never match, negated or not
		{"missing = 1", false},
		{"missing <> 1", false},
		{"missing NOT IN (1)", false},
		{"gone = 'null'", false},
		{"a.b = 1", false},
		// nested rows are not comparable
		{"profile = 1", false},
		{"profile <> 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := Parse("SELECT * FROM t WHERE " + tt.query)
			require.NoError(t, err)
			require.Len(t, q.Conditions, 1)
			assert.Equal(t, tt.want, q.Conditions[0].Evaluate(row))
		})
	}
}

func TestCondition_EvaluateWithoutParser(t *testing.T) {
	row := mustRow(t, `{"name": "Alice", "profile": {"city": "Oslo"}}`)

	like := Condition{Field: "name", Comparison: TokenLike, Value1: String("al%")}
	assert.True(t, like.Evaluate(row))

	nested := Condition{Field: "profile.city", Comparison: TokenEqual, Value1: String("oslo")}
	assert.True(t, nested.Evaluate(row))
}

func TestMatches(t *testing.T) {
	row := mustRow(t, `{"a": 5, "b": 1}`)

	assert.True(t, Matches(row, nil), "empty condition list always matches")

	q, err := Parse("SELECT * FROM t WHERE a > 1 AND b = 1")
	require.NoError(t, err)
	assert.True(t, Matches(row, q.Conditions))

	q, err = Parse("SELECT * FROM t WHERE a > 1 AND b = 2")
	require.NoError(t, err)
	assert.False(t, Matches(row, q.Conditions))
}

func TestApplyFilter(t *testing.T) {
	rows := mustRows(t, `[{"a": 5}, {"a": 4}, {"b": 1}, {"a": 3}]`)

	q, err := Parse("SELECT * FROM t WHERE a < 5")
	require.NoError(t, err)

	filtered := ApplyFilter(rows, q.Conditions)
	require.Len(t, filtered, 2)
	assertRowJSON(t, `{"a": 4}`, filtered[0])
	assertRowJSON(t, `{"a": 3}`, filtered[1])

	assert.Len(t, ApplyFilter(rows, nil), len(rows))
}

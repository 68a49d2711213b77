package query

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioData = `{"data": [
	{"a": 5, "b": 1, "c": "fart"},
	{"a": 4, "b": 2, "c": "poo"},
	{"a": 3, "b": 3, "c": "bum"}
]}`

const nestedData = `{"oktaUsers": [
	{"profile": {"lastName": "Fitzgerald"}},
	{"profile": {"lastName": "Wood"}}
]}`

func assertRowsJSON(t *testing.T, want string, rows []Row) {
	t.Helper()
	got, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(got))
}

func TestSelect_Scenarios(t *testing.T) {
	ds := mustDataset(t, scenarioData)
	nested := mustDataset(t, nestedData)
	dated := mustDataset(t, `{"2020data": [{"a": 1}, {"a": 2}]}`)
	reserved := mustDataset(t, `{"data": [{"a": 2, "desc": "two"}, {"a": 1, "desc": "one"}]}`)

	tests := []struct {
		name  string
		query string
		ds    Dataset
		want  string
	}{
		{
			name:  "in, between and like together",
			query: `SELECT * FROM data WHERE a IN (2,3,4) AND b BETWEEN 1 AND 3 AND c LIKE "%oo"`,
			ds:    ds,
			want:  `[{"a": 4, "b": 2, "c": "poo"}]`,
		},
		{
			name:  "field list with two conditions",
			query: "SELECT a, c FROM data WHERE a > 3 AND b = 2",
			ds:    ds,
			want:  `[{"a": 4, "c": "poo"}]`,
		},
		{
			name:  "nested field keyed by leaf",
			query: "SELECT profile.lastName FROM oktaUsers",
			ds:    nested,
			want:  `[{"lastName": "Fitzgerald"}, {"lastName": "Wood"}]`,
		},
		{
			name:  "order by descending",
			query: "SELECT a FROM data ORDER BY a DESC",
			ds:    ds,
			want:  `[{"a": 5}, {"a": 4}, {"a": 3}]`,
		},
		{
			name:  "alias renames output key",
			query: "SELECT c AS label FROM data",
			ds:    ds,
			want:  `[{"label": "bum"}, {"label": "fart"}, {"label": "poo"}]`,
		},
		{
			name:  "default order is first field ascending",
			query: "SELECT a, c FROM data",
			ds:    ds,
			want:  `[{"a": 3, "c": "bum"}, {"a": 4, "c": "poo"}, {"a": 5, "c": "fart"}]`,
		},
		{
			name:  "order by alias",
			query: "SELECT a, c AS label FROM data ORDER BY label DESC",
			ds:    ds,
			want:  `[{"a": 4, "label": "poo"}, {"a": 5, "label": "fart"}, {"a": 3, "label": "bum"}]`,
		},
		{
			name:  "order by nested path uses its output key",
			query: "SELECT profile.lastName FROM oktaUsers ORDER BY profile.lastName DESC",
			ds:    nested,
			want:  `[{"lastName": "Wood"}, {"lastName": "Fitzgerald"}]`,
		},
		{
			name:  "where keyword is optional",
			query: "SELECT a FROM data a < 5 b > 2",
			ds:    ds,
			want:  `[{"a": 3}]`,
		},
		{
			name:  "case insensitive keywords and values",
			query: "select c from data where c = 'POO'",
			ds:    ds,
			want:  `[{"c": "poo"}]`,
		},
		{
			name:  "no matches",
			query: "SELECT a FROM data WHERE a > 100",
			ds:    ds,
			want:  `[]`,
		},
		{
			name:  "limit and offset after sorting",
			query: "SELECT a FROM data ORDER BY a LIMIT 1 OFFSET 1",
			ds:    ds,
			want:  `[{"a": 4}]`,
		},
		{
			name:  "unquoted like pattern",
			query: "SELECT * FROM data WHERE c LIKE %oo",
			ds:    ds,
			want:  `[{"a": 4, "b": 2, "c": "poo"}]`,
		},
		{
			name:  "table name starting with digits",
			query: "SELECT a FROM 2020data WHERE a > 1",
			ds:    dated,
			want:  `[{"a": 2}]`,
		},
		{
			name:  "keyword field names",
			query: "SELECT a, desc FROM data",
			ds:    reserved,
			want:  `[{"a": 1, "desc": "one"}, {"a": 2, "desc": "two"}]`,
		},
		{
			name:  "order by keyword field",
			query: "SELECT desc FROM data ORDER BY desc DESC",
			ds:    reserved,
			want:  `[{"desc": "two"}, {"desc": "one"}]`,
		},
		{
			name:  "not like",
			query: "SELECT c FROM data WHERE c NOT LIKE '%u%'",
			ds:    ds,
			want:  `[{"c": "fart"}, {"c": "poo"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Select(tt.query, tt.ds)
			require.NoError(t, err)
			assertRowsJSON(t, tt.want, rows)
		})
	}
}

func TestSelect_Errors(t *testing.T) {
	ds := mustDataset(t, scenarioData)

	t.Run("missing FROM is a syntax error", func(t *testing.T) {
		rows, err := Select("SELECT a", ds)
		assert.Nil(t, rows)
		assert.ErrorIs(t, err, ErrSyntax)

		var synErr *SyntaxError
		require.ErrorAs(t, err, &synErr)
		assert.Equal(t, ReasonMissingFrom, synErr.Reason)
	})

	t.Run("absent table is a lookup error", func(t *testing.T) {
		rows, err := Select("SELECT a FROM nope", ds)
		assert.Nil(t, rows)
		assert.ErrorIs(t, err, ErrTableNotFound)
		assert.False(t, errors.Is(err, ErrSyntax))

		var lookupErr *LookupError
		require.ErrorAs(t, err, &lookupErr)
		assert.Equal(t, "nope", lookupErr.Table)
	})

	t.Run("syntax is checked before the table", func(t *testing.T) {
		_, err := Select("SELECT a FROM nope WHERE a ~ 1", ds)
		assert.ErrorIs(t, err, ErrSyntax)
	})

	t.Run("table names are case sensitive", func(t *testing.T) {
		_, err := Select("SELECT a FROM DATA", ds)
		assert.ErrorIs(t, err, ErrTableNotFound)
	})
}

func TestSelect_Idempotent(t *testing.T) {
	ds := mustDataset(t, scenarioData)
	query := "SELECT c AS label, a FROM data WHERE b >= 1 ORDER BY a"

	first, err := Select(query, ds)
	require.NoError(t, err)
	second, err := Select(query, ds)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSelect_DoesNotMutateDataset(t *testing.T) {
	ds := mustDataset(t, nestedData)
	before, err := json.Marshal(ds)
	require.NoError(t, err)

	rows, err := Select("SELECT profile FROM oktaUsers", ds)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	v, _ := rows[0].Get("profile")
	nested, _ := v.AsRow()
	nested.Set("lastName", String("changed"))

	after, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestSelect_StarRoundTrip(t *testing.T) {
	ds := mustDataset(t, scenarioData)

	rows, err := Select("SELECT * FROM data", ds)
	require.NoError(t, err)
	require.Len(t, rows, len(ds["data"]))

	firstKeys := ds["data"][0].Keys()
	for _, r := range rows {
		assert.Equal(t, firstKeys, r.Keys())
	}
}

func TestSelect_StarOverEmptyTable(t *testing.T) {
	rows, err := Select("SELECT * FROM empty", mustDataset(t, `{"empty": []}`))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSelect_Properties(t *testing.T) {
	ds := mustDataset(t, `{"people": [
		{"name": "Ann", "age": 31, "team": {"name": "red"}},
		{"name": "bob", "age": "27", "team": {"name": "blue"}},
		{"name": "Cid", "age": 45},
		{"name": "dee", "age": 31, "team": {"name": "Red"}},
		{"name": "Eve", "age": 19, "team": {"name": "green"}},
		{"name": "fay", "age": 31}
	]}`)

	queries := []string{
		"SELECT name, age FROM people WHERE age >= 20 ORDER BY age",
		"SELECT name, team.name AS team FROM people WHERE team.name = 'red' ORDER BY name DESC",
		"SELECT name FROM people WHERE age BETWEEN 20 AND 40 AND name LIKE '%e%'",
		"SELECT age, name FROM people WHERE name NOT IN ('ann', 'BOB')",
	}

	for _, text := range queries {
		t.Run(text, func(t *testing.T) {
			q, err := Parse(text)
			require.NoError(t, err)
			rows, err := q.Execute(ds)
			require.NoError(t, err)

			projections := ExpandSelectList(q.SelectList, ds["people"])
			allowed := map[string]bool{}
			for _, p := range projections {
				allowed[p.Key] = true
			}

			// projection: no keys outside the select list
			for _, r := range rows {
				for _, k := range r.Keys() {
					assert.True(t, allowed[k], "unexpected key %q", k)
				}
			}

			// filter: passing source rows and result rows correspond one to one
			var passing []Row
			for _, src := range ds["people"] {
				if Matches(src, q.Conditions) {
					passing = append(passing, src)
				}
			}
			assert.Len(t, rows, len(passing))

			// order: non-decreasing (or non-increasing) by the order key
			order := q.effectiveOrder(projections)
			require.NotEmpty(t, order)
			key := order[0]
			for i := 1; i < len(rows); i++ {
				cmp := compareNatural(
					sortValue(rows[i-1], key.Column, []string{key.Column}),
					sortValue(rows[i], key.Column, []string{key.Column}),
				)
				if key.Desc {
					assert.GreaterOrEqual(t, cmp, 0)
				} else {
					assert.LessOrEqual(t, cmp, 0)
				}
			}
		})
	}
}

func TestSelect_ConcurrentReaders(t *testing.T) {
	ds := mustDataset(t, scenarioData)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := Select("SELECT a FROM data WHERE b > 1 ORDER BY a DESC", ds)
			if err != nil {
				errs <- err
				return
			}
			if len(rows) != 2 {
				errs <- errors.New("unexpected row count")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

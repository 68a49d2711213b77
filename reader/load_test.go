package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/jsql/query"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTableName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"users.json", "users"},
		{"/data/2024/events.parquet", "events"},
		{"archive.tar.json", "archive.tar"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TableName(tt.path))
		})
	}
}

func TestLoadFile_JSON(t *testing.T) {
	dir := t.TempDir()

	t.Run("object of tables", func(t *testing.T) {
		path := writeFile(t, dir, "doc.json", `{"data": [{"a": 1}], "other": []}`)
		ds, err := LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, ds["data"], 1)
		assert.Contains(t, ds, "other")
	})

	t.Run("bare array named after file", func(t *testing.T) {
		path := writeFile(t, dir, "people.json", "  \n[{\"name\": \"Ann\"}, {\"name\": \"Bob\"}]")
		ds, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, ds, 1)
		assert.Len(t, ds["people"], 2)
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, dir, "bad.json", `{"data": [`)
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("arrays inside records are rejected", func(t *testing.T) {
		path := writeFile(t, dir, "arr.json", `[{"tags": [1]}]`)
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}

func TestLoadFile_Parquet(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "scores.parquet", []profile{
		{LastName: "Wood", Age: 40},
		{LastName: "Fitzgerald", Age: 31},
	})

	ds, err := LoadFile(path)
	require.NoError(t, err)
	require.Contains(t, ds, "scores")

	rows, err := query.Select("SELECT lastName FROM scores WHERE age > 35", ds)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	v, _ := rows[0].Get("lastName")
	assert.Equal(t, "Wood", v.Text())
}

func TestLoadFile_Unsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.csv", "a,b\n1,2\n")
	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[{"x": 1}]`)
	writeFile(t, dir, "b.json", `{"b2": [{"x": 2}], "b3": []}`)
	writeParquet(t, dir, "c.parquet", []profile{{LastName: "Wood"}})

	t.Run("explicit paths", func(t *testing.T) {
		ds, err := LoadFiles(filepath.Join(dir, "a.json"), filepath.Join(dir, "c.parquet"))
		require.NoError(t, err)
		assert.Len(t, ds, 2)
		assert.Contains(t, ds, "a")
		assert.Contains(t, ds, "c")
	})

	t.Run("glob pattern", func(t *testing.T) {
		ds, err := LoadFiles(filepath.Join(dir, "*.json"))
		require.NoError(t, err)
		assert.Len(t, ds, 3)
		assert.Contains(t, ds, "b2")
	})

	t.Run("glob without matches", func(t *testing.T) {
		_, err := LoadFiles(filepath.Join(dir, "*.missing"))
		assert.Error(t, err)
	})

	t.Run("duplicate table", func(t *testing.T) {
		other := t.TempDir()
		dup := writeFile(t, other, "a.json", `[{"x": 3}]`)
		_, err := LoadFiles(filepath.Join(dir, "a.json"), dup)
		assert.ErrorIs(t, err, ErrDuplicateTable)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFiles(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})
}

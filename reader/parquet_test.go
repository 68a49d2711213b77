package reader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeParquet writes rows to dir/name and returns the file path.
func writeParquet[T any](t *testing.T, dir, name string, rows []T) string {
	t.Helper()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	require.NoError(t, err)

	writer := parquet.NewGenericWriter[T](f)
	_, err = writer.Write(rows)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, f.Close())
	return path
}

type profile struct {
	LastName string `parquet:"lastName"`
	Age      int32  `parquet:"age"`
}

type user struct {
	ID      int64     `parquet:"id"`
	Name    string    `parquet:"name"`
	Score   float64   `parquet:"score"`
	Active  bool      `parquet:"active"`
	Nick    *string   `parquet:"nick,optional"`
	Profile profile   `parquet:"profile"`
	Tags    []string  `parquet:"tags"`
	Joined  time.Time `parquet:"joined,timestamp"`
}

func TestReader_ReadAll(t *testing.T) {
	nick := "al"
	joined := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	path := writeParquet(t, t.TempDir(), "users.parquet", []user{
		{ID: 1, Name: "Alice", Score: 9.5, Active: true, Nick: &nick, Profile: profile{LastName: "Wood", Age: 40}, Tags: []string{"a"}, Joined: joined},
		{ID: 2, Name: "Bob", Score: 7, Profile: profile{LastName: "Fitzgerald", Age: 31}, Joined: joined},
	})

	r, err := NewReader(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	assert.EqualValues(t, 2, r.NumRows())

	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"name": "Alice",
		"score": 9.5,
		"active": true,
		"nick": "al",
		"profile": {"lastName": "Wood", "age": 40},
		"joined": "2024-01-02T03:04:05Z"
	}`, string(first))

	// null optional column is omitted, repeated column is never loaded
	assert.NotContains(t, rows[1].Keys(), "nick")
	assert.NotContains(t, rows[0].Keys(), "tags")
}

func TestReader_Close(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "t.parquet", []profile{{LastName: "x"}})

	r, err := NewReader(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.NoError(t, r.Close(), "second close is a no-op")
}

func TestNewReader_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewReader(filepath.Join(dir, "missing.parquet"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.parquet")
	require.NoError(t, os.WriteFile(bad, []byte("not a parquet file"), 0o600))
	_, err = NewReader(bad)
	assert.Error(t, err)
}

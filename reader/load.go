package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vegasq/jsql/query"
)

// MaxFiles caps how many files a single glob pattern may expand to.
const MaxFiles = 1000

// ErrUnsupportedFormat is returned for files that are neither JSON nor parquet.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrDuplicateTable is returned when two inputs define the same table.
var ErrDuplicateTable = errors.New("duplicate table")

// TableName derives a table name from a file path by dropping the directory
// and extension.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFile reads a single JSON or parquet file into a dataset.
//
// A JSON document is either an object mapping table names to record arrays,
// or a bare record array named after the file. A parquet file always yields
// one table named after the file.
func LoadFile(path string) (query.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".parquet", ".pq":
		return loadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFiles reads every file named by the given paths or glob patterns and
// merges them into one dataset.
func LoadFiles(patterns ...string) (query.Dataset, error) {
	ds := make(query.Dataset)
	for _, pattern := range patterns {
		paths, err := expand(pattern)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			loaded, err := LoadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			for name, rows := range loaded {
				if _, exists := ds[name]; exists {
					return nil, fmt.Errorf("%w %q in %s", ErrDuplicateTable, name, path)
				}
				ds[name] = rows
			}
		}
	}
	return ds, nil
}

func expand(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > MaxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), MaxFiles)
	}
	return matches, nil
}

func loadJSON(path string) (query.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		name := TableName(path)
		if err := query.ValidateTableName(name); err != nil {
			return nil, err
		}
		rows, err := query.DecodeRows(trimmed)
		if err != nil {
			return nil, err
		}
		return query.Dataset{name: rows}, nil
	}

	return query.DecodeDataset(trimmed)
}

func loadParquet(path string) (query.Dataset, error) {
	name := TableName(path)
	if err := query.ValidateTableName(name); err != nil {
		return nil, err
	}

	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	rows, readErr := r.ReadAll()
	closeErr := r.Close()

	if readErr != nil {
		return nil, readErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	return query.Dataset{name: rows}, nil
}

// Package reader loads JSON and Apache Parquet files into query datasets.
//
// # Basic Usage
//
// Loading files by path or glob pattern:
//
//	ds, err := reader.LoadFiles("users.json", "events/*.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rows, err := query.Select("SELECT name FROM users", ds)
//
// # Table Names
//
// A JSON file holding an object contributes one table per key. A JSON file
// holding a bare array, and every parquet file, contributes one table named
// after the file without its extension. Two inputs defining the same table
// is an error.
//
// # Parquet Mapping
//
// Columns keep their schema order. Groups become nested records, integers
// and floats become numbers, byte arrays become strings, and timestamps
// and dates become RFC 3339 strings. Null values and repeated columns are
// not loaded.
//
// # Resource Management
//
// Always call Close() when using a Reader directly:
//
//	r, err := reader.NewReader("data.parquet")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
package reader

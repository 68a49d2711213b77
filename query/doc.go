// Package query implements a small SQL-like query engine over in-memory
// tables of records.
//
// A query selects fields from one table, keeps the records that satisfy
// every condition, and returns them ordered. Fields may be nested (dotted
// paths) and renamed with AS:
//
//	SELECT a, profile.lastName AS surname FROM users
//	WHERE a IN (2, 3, 4) AND b BETWEEN 1 AND 3 AND c LIKE '%oo'
//	ORDER BY a DESC
//
// # Basic Usage
//
// Decode a dataset and run a query against it:
//
//	ds, err := query.DecodeDataset([]byte(`{"users": [{"name": "alice", "age": 30}]}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rows, err := query.Select("SELECT name FROM users WHERE age > 25", ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A parsed query can be executed many times:
//
//	q, err := query.Parse("SELECT name FROM users ORDER BY name DESC LIMIT 10")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rows, err := q.Execute(ds)
//
// # Names
//
// A table name is a bare word, a run of digits, or a quoted string. In the
// select list and ORDER BY, keywords other than SELECT, FROM and AS may be
// used as field names. Anywhere else a field that collides with a keyword,
// or holds spaces, must be backquoted:
//
//	SELECT a, desc FROM 2020data WHERE `limit` > 3 ORDER BY desc
//
// # Conditions
//
// Conditions form a flat conjunction. WHERE and AND are optional separators;
// OR and parentheses are rejected. Supported operators:
//
//	=  !=  <>  <  <=  >  >=
//	LIKE / NOT LIKE        '%' matches any run of characters; quotes optional
//	IN / NOT IN            a parenthesized list of literals
//	BETWEEN / NOT BETWEEN  inclusive on both ends
//
// Field values that look like numbers compare numerically; other strings
// compare case-insensitively. A field that is missing, null, or a nested
// record never satisfies a condition, negated or not.
//
// # Ordering
//
// Rows are sorted stably by the ORDER BY keys, or by the first selected
// field ascending when ORDER BY is absent. An ORDER BY key naming a selected
// path sorts by that field's output key.
//
// # Errors
//
// Malformed queries return a *SyntaxError, which matches ErrSyntax with
// errors.Is. A query naming an absent table returns a *LookupError, which
// matches ErrTableNotFound.
//
// # Concurrency
//
// Parsed queries and datasets are never mutated by execution, so a Dataset
// may be queried from several goroutines at once.
package query

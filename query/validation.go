package query

import (
	"errors"
	"fmt"
)

// Input limits enforced by Parse before any data is read.
const (
	// MaxQueryLength caps the query text in bytes.
	MaxQueryLength = 1 << 20

	// MaxTokens caps the token count of a query, EOF included.
	MaxTokens = 1000

	// MaxFieldPathLength caps a dotted field path, alias or ORDER BY key.
	MaxFieldPathLength = 256

	// MaxTableNameLength caps a FROM target. Table names come from file
	// names and JSON keys, so the cap is generous.
	MaxTableNameLength = 4096
)

// Limit violations. Parse wraps them in a *SyntaxError, so errors.Is matches
// both the sentinel and ErrSyntax.
var (
	ErrQueryTooLong     = errors.New("query too long")
	ErrTooManyTokens    = errors.New("too many tokens")
	ErrFieldPathTooLong = errors.New("field path too long")
	ErrTableNameTooLong = errors.New("table name too long")
	ErrEmptyTableName   = errors.New("empty table name")
)

func overLimit(sentinel error, n, limit int, unit string) error {
	if n <= limit {
		return nil
	}
	return fmt.Errorf("%w: %d %s, limit %d", sentinel, n, unit, limit)
}

// ValidateQuery checks the length of the raw query text.
func ValidateQuery(query string) error {
	return overLimit(ErrQueryTooLong, len(query), MaxQueryLength, "bytes")
}

// ValidateTokens checks the token count of a lexed query.
func ValidateTokens(tokens []Token) error {
	return overLimit(ErrTooManyTokens, len(tokens), MaxTokens, "tokens")
}

// ValidateTableName rejects empty and oversized table names. Any other
// text is a valid name.
func ValidateTableName(name string) error {
	if name == "" {
		return ErrEmptyTableName
	}
	return overLimit(ErrTableNameTooLong, len(name), MaxTableNameLength, "bytes")
}

// ValidateFieldPath checks the length of a field path or alias.
func ValidateFieldPath(path string) error {
	return overLimit(ErrFieldPathTooLong, len(path), MaxFieldPathLength, "bytes")
}

func limitError(err error) *SyntaxError {
	return &SyntaxError{Reason: ReasonLimitExceeded, Pos: -1, Err: err}
}

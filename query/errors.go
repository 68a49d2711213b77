package query

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is wrapped by every *SyntaxError
	ErrSyntax = errors.New("syntax error")

	// ErrTableNotFound is wrapped by every *LookupError
	ErrTableNotFound = errors.New("table not found")
)

// Syntax error reasons
const (
	ReasonMissingSelect         = "missing SELECT"
	ReasonMissingFrom           = "missing FROM"
	ReasonMissingTable          = "missing table name"
	ReasonEmptyFieldList        = "empty field list"
	ReasonMalformedField        = "malformed field list"
	ReasonUnrecognizedCondition = "unrecognized condition"
	ReasonMalformedOrderBy      = "malformed ORDER BY"
	ReasonMalformedLimit        = "malformed LIMIT"
	ReasonUnexpectedCharacter   = "unexpected character"
	ReasonLimitExceeded         = "query limit exceeded"
)

// SyntaxError reports a query that could not be parsed. It is returned
// before any row is read.
type SyntaxError struct {
	Reason string
	Pos    int    // byte offset of the offending token, -1 if unknown
	Near   string // text of the offending token
	Err    error  // underlying cause, if any
}

func (e *SyntaxError) Error() string {
	msg := "syntax error: " + e.Reason
	if e.Near != "" {
		msg += fmt.Sprintf(" near %q", e.Near)
	}
	if e.Pos >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Pos)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrSyntax) true for every SyntaxError
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// LookupError reports a FROM clause naming a table absent from the dataset
type LookupError struct {
	Table string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("table %q not found in dataset", e.Table)
}

func (e *LookupError) Unwrap() error {
	return ErrTableNotFound
}

func syntaxErrorAt(reason string, tok Token) *SyntaxError {
	return &SyntaxError{Reason: reason, Pos: tok.Pos, Near: tok.Value}
}

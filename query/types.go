package query

import (
	"fmt"
	"regexp"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenAs
	TokenOrder
	TokenBy
	TokenAsc
	TokenDesc
	TokenLimit
	TokenOffset
	TokenIn
	TokenLike
	TokenBetween
	TokenNot

	// Operators
	TokenEqual        // =
	TokenNotEqual     // <> or !=
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool

	// Delimiters
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )
	TokenStar       // *

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenSelect:       "SELECT",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenAs:           "AS",
	TokenOrder:        "ORDER",
	TokenBy:           "BY",
	TokenAsc:          "ASC",
	TokenDesc:         "DESC",
	TokenLimit:        "LIMIT",
	TokenOffset:       "OFFSET",
	TokenIn:           "IN",
	TokenLike:         "LIKE",
	TokenBetween:      "BETWEEN",
	TokenNot:          "NOT",
	TokenEqual:        "=",
	TokenNotEqual:     "<>",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenBool:         "boolean",
	TokenComma:        ",",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenStar:         "*",
	TokenEOF:          "end of query",
	TokenError:        "invalid token",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset in the query text
}

// Query represents a parsed query. It is built fresh for every call and
// never mutated after parsing.
type Query struct {
	TableName  string
	SelectList []SelectItem
	Conditions []Condition   // implicitly ANDed
	OrderBy    []OrderByItem // empty means default order
	Limit      *int64        // Row limit
	Offset     *int64        // Row offset
}

// SelectItem represents a field in the SELECT list
type SelectItem struct {
	Path  string // dotted field path or "*"
	Alias string // Optional alias (AS name)
}

// OrderByItem represents a key to sort by
type OrderByItem struct {
	Column string // Field path or alias
	Desc   bool   // DESC vs ASC (default)
}

// Condition is one comparison from the WHERE clause. Operands are typed at
// parse time: Number when the literal parses as a number, otherwise a
// lowercased String.
type Condition struct {
	Field      string
	Comparison TokenType // TokenEqual ... TokenGreaterEqual, TokenLike, TokenIn, TokenBetween
	Negate     bool      // NOT LIKE, NOT IN, NOT BETWEEN
	Value1     Value
	Value2     Value   // upper bound, BETWEEN only
	Values     []Value // members, IN only

	segments []string
	pattern  *regexp.Regexp // compiled LIKE pattern
}

func (c Condition) String() string {
	op := c.Comparison.String()
	if c.Negate {
		op = "NOT " + op
	}
	switch c.Comparison {
	case TokenBetween:
		return fmt.Sprintf("%s %s %v AND %v", c.Field, op, c.Value1, c.Value2)
	case TokenIn:
		return fmt.Sprintf("%s %s %v", c.Field, op, c.Values)
	default:
		return fmt.Sprintf("%s %s %v", c.Field, op, c.Value1)
	}
}

package query

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Parser parses token streams into a Query
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens: tokens,
		pos:    0,
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: -1}
	}
	return p.tokens[p.pos]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// Parse parses a query string. It never looks at data, so every syntax
// error surfaces before any row is read.
func Parse(query string) (*Query, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, limitError(err)
	}

	tokens := Tokenize(query)

	if err := ValidateTokens(tokens); err != nil {
		return nil, limitError(err)
	}
	if last := tokens[len(tokens)-1]; last.Type == TokenError {
		return nil, syntaxErrorAt(ReasonUnexpectedCharacter, last)
	}

	parser := NewParser(tokens)
	return parser.parseQuery()
}

// parseQuery parses:
// SELECT items FROM table [WHERE] conditions [ORDER BY keys] [LIMIT n [OFFSET m]]
func (p *Parser) parseQuery() (*Query, error) {
	if p.current().Type != TokenSelect {
		return nil, syntaxErrorAt(ReasonMissingSelect, p.current())
	}
	p.advance()

	selectList, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}

	if p.current().Type != TokenFrom {
		return nil, syntaxErrorAt(ReasonMissingFrom, p.current())
	}
	p.advance()

	tok := p.current()
	switch {
	case tok.Type == TokenIdent, tok.Type == TokenString:
	case tok.Type == TokenNumber && isDigits(tok.Value):
	default:
		return nil, syntaxErrorAt(ReasonMissingTable, tok)
	}
	if err := ValidateTableName(tok.Value); err != nil {
		return nil, &SyntaxError{Reason: ReasonMissingTable, Pos: tok.Pos, Near: tok.Value, Err: err}
	}
	p.advance()

	q := &Query{
		TableName:  tok.Value,
		SelectList: selectList,
	}

	if p.current().Type == TokenWhere {
		p.advance()
		if isClauseEnd(p.current().Type) {
			return nil, syntaxErrorAt(ReasonUnrecognizedCondition, p.current())
		}
	}

	conditions, err := p.parseConditions()
	if err != nil {
		return nil, err
	}
	q.Conditions = conditions

	if p.current().Type == TokenOrder {
		orderBy, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		q.OrderBy = orderBy
	}

	if p.current().Type == TokenLimit {
		if err := p.parseLimitOffset(q); err != nil {
			return nil, err
		}
	}

	if p.current().Type != TokenEOF {
		return nil, syntaxErrorAt(ReasonUnrecognizedCondition, p.current())
	}

	return q, nil
}

// isClauseEnd reports whether tokType ends the condition list
func isClauseEnd(tokType TokenType) bool {
	return tokType == TokenOrder || tokType == TokenLimit || tokType == TokenEOF
}

// parseSelectList parses: item [, item ...] where item is * or path [AS alias]
func (p *Parser) parseSelectList() ([]SelectItem, error) {
	if p.current().Type == TokenFrom {
		return nil, syntaxErrorAt(ReasonEmptyFieldList, p.current())
	}

	var items []SelectItem
	for {
		tok := p.current()
		switch {
		case tok.Type == TokenStar:
			p.advance()
			if p.current().Type == TokenAs {
				return nil, syntaxErrorAt(ReasonMalformedField, p.current())
			}
			items = append(items, SelectItem{Path: "*"})
		case tok.Type == TokenIdent || isFieldKeyword(tok):
			if err := validatePath(tok); err != nil {
				return nil, err
			}
			p.advance()
			item := SelectItem{Path: tok.Value}
			if p.current().Type == TokenAs {
				p.advance()
				alias := p.current()
				if alias.Type != TokenIdent && alias.Type != TokenString && !isFieldKeyword(alias) {
					return nil, syntaxErrorAt(ReasonMalformedField, alias)
				}
				if err := validatePath(alias); err != nil {
					return nil, err
				}
				item.Alias = alias.Value
				p.advance()
			}
			items = append(items, item)
		case tok.Type == TokenEOF:
			return nil, syntaxErrorAt(ReasonMissingFrom, tok)
		default:
			return nil, syntaxErrorAt(ReasonMalformedField, tok)
		}

		if p.current().Type != TokenComma {
			return items, nil
		}
		p.advance()
	}
}

func isDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

// isFieldKeyword reports whether tok is an unquoted keyword that stands for
// a field name where only a field can appear. SELECT, FROM and AS keep their
// meaning.
func isFieldKeyword(tok Token) bool {
	switch tok.Type {
	case TokenSelect, TokenFrom, TokenAs:
		return false
	}
	kw, ok := keywords[strings.ToUpper(tok.Value)]
	return ok && kw == tok.Type
}

// validatePath checks a field path token for length and empty segments
func validatePath(tok Token) error {
	if err := ValidateFieldPath(tok.Value); err != nil {
		return &SyntaxError{Reason: ReasonMalformedField, Pos: tok.Pos, Near: tok.Value, Err: err}
	}
	for _, seg := range strings.Split(tok.Value, ".") {
		if seg == "" {
			return syntaxErrorAt(ReasonMalformedField, tok)
		}
	}
	return nil
}

// parseConditions parses a flat list of conditions. AND between conditions
// is optional; OR and parenthesised grouping are not part of the language.
func (p *Parser) parseConditions() ([]Condition, error) {
	var conditions []Condition
	for !isClauseEnd(p.current().Type) {
		if len(conditions) > 0 && p.current().Type == TokenAnd {
			p.advance()
		}
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}
	return conditions, nil
}

// parseCondition parses: path op literal | path [NOT] LIKE pattern |
// path [NOT] IN (literal, ...) | path [NOT] BETWEEN literal AND literal
func (p *Parser) parseCondition() (Condition, error) {
	field := p.current()
	if field.Type != TokenIdent {
		return Condition{}, syntaxErrorAt(ReasonUnrecognizedCondition, field)
	}
	if err := ValidateFieldPath(field.Value); err != nil {
		return Condition{}, &SyntaxError{Reason: ReasonUnrecognizedCondition, Pos: field.Pos, Near: field.Value, Err: err}
	}
	p.advance()

	cond := Condition{
		Field:    field.Value,
		segments: strings.Split(field.Value, "."),
	}

	if p.current().Type == TokenNot {
		cond.Negate = true
		p.advance()
	}

	op := p.current()
	cond.Comparison = op.Type
	switch op.Type {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		if cond.Negate {
			return Condition{}, syntaxErrorAt(ReasonUnrecognizedCondition, op)
		}
		p.advance()
		raw, err := p.parseLiteral()
		if err != nil {
			return Condition{}, err
		}
		cond.Value1 = typeLiteral(raw)

	case TokenLike:
		p.advance()
		raw, err := p.parseLiteral()
		if err != nil {
			return Condition{}, err
		}
		cond.Value1 = String(strings.ToLower(raw))
		pattern, err := compileLikePattern(raw)
		if err != nil {
			return Condition{}, &SyntaxError{Reason: ReasonUnrecognizedCondition, Pos: op.Pos, Near: raw, Err: err}
		}
		cond.pattern = pattern

	case TokenIn:
		p.advance()
		values, err := p.parseInList()
		if err != nil {
			return Condition{}, err
		}
		cond.Values = values

	case TokenBetween:
		p.advance()
		low, err := p.parseLiteral()
		if err != nil {
			return Condition{}, err
		}
		if p.current().Type != TokenAnd {
			return Condition{}, syntaxErrorAt(ReasonUnrecognizedCondition, p.current())
		}
		p.advance()
		high, err := p.parseLiteral()
		if err != nil {
			return Condition{}, err
		}
		cond.Value1 = typeLiteral(low)
		cond.Value2 = typeLiteral(high)

	default:
		return Condition{}, syntaxErrorAt(ReasonUnrecognizedCondition, op)
	}

	return cond, nil
}

// parseLiteral consumes a literal and returns its raw text with quotes
// stripped. Bare words and booleans are accepted as literals.
func (p *Parser) parseLiteral() (string, error) {
	tok := p.current()
	switch tok.Type {
	case TokenString, TokenNumber, TokenIdent, TokenBool:
		p.advance()
		return tok.Value, nil
	default:
		return "", syntaxErrorAt(ReasonUnrecognizedCondition, tok)
	}
}

// parseInList parses: ( literal [, literal ...] )
func (p *Parser) parseInList() ([]Value, error) {
	if p.current().Type != TokenLeftParen {
		return nil, syntaxErrorAt(ReasonUnrecognizedCondition, p.current())
	}
	p.advance()

	var values []Value
	for {
		raw, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, typeLiteral(raw))

		switch p.current().Type {
		case TokenComma:
			p.advance()
		case TokenRightParen:
			p.advance()
			return values, nil
		default:
			return nil, syntaxErrorAt(ReasonUnrecognizedCondition, p.current())
		}
	}
}

// parseOrderBy parses: ORDER BY key [ASC|DESC] [, key [ASC|DESC] ...]
func (p *Parser) parseOrderBy() ([]OrderByItem, error) {
	p.advance() // ORDER
	if p.current().Type != TokenBy {
		return nil, syntaxErrorAt(ReasonMalformedOrderBy, p.current())
	}
	p.advance()

	var items []OrderByItem
	for {
		tok := p.current()
		if tok.Type != TokenIdent && tok.Type != TokenString && !isFieldKeyword(tok) {
			return nil, syntaxErrorAt(ReasonMalformedOrderBy, tok)
		}
		if err := ValidateFieldPath(tok.Value); err != nil {
			return nil, &SyntaxError{Reason: ReasonMalformedOrderBy, Pos: tok.Pos, Near: tok.Value, Err: err}
		}
		p.advance()

		item := OrderByItem{Column: tok.Value}
		switch p.current().Type {
		case TokenAsc:
			p.advance()
		case TokenDesc:
			item.Desc = true
			p.advance()
		}
		items = append(items, item)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if next := p.current().Type; next != TokenLimit && next != TokenEOF {
		return nil, syntaxErrorAt(ReasonMalformedOrderBy, p.current())
	}
	return items, nil
}

// parseLimitOffset parses: LIMIT n [OFFSET m]
func (p *Parser) parseLimitOffset(q *Query) error {
	p.advance() // LIMIT
	limit, err := p.parseCount()
	if err != nil {
		return err
	}
	q.Limit = &limit

	if p.current().Type == TokenOffset {
		p.advance()
		offset, err := p.parseCount()
		if err != nil {
			return err
		}
		q.Offset = &offset
	}
	return nil
}

// parseCount parses a non-negative integer
func (p *Parser) parseCount() (int64, error) {
	tok := p.current()
	if tok.Type != TokenNumber {
		return 0, syntaxErrorAt(ReasonMalformedLimit, tok)
	}
	n, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil || n < 0 {
		return 0, syntaxErrorAt(ReasonMalformedLimit, tok)
	}
	p.advance()
	return n, nil
}

// compileLikePattern translates a LIKE pattern into a case-insensitive
// regular expression. % matches any sequence of characters; the match is
// anchored at each end that does not carry a %.
func compileLikePattern(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "%")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}

	var expr strings.Builder
	expr.WriteString("(?is)")
	if !strings.HasPrefix(pattern, "%") {
		expr.WriteString("^")
	}
	expr.WriteString(strings.Join(parts, ".*"))
	if !strings.HasSuffix(pattern, "%") {
		expr.WriteString("$")
	}
	return regexp.Compile(expr.String())
}

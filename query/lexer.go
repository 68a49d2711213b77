package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes query strings
type Lexer struct {
	input string
	pos   int // offset of the byte after ch
	start int // offset of ch
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	l.start = l.pos
	if l.pos >= len(l.input) {
		l.ch = 0
		return
	}
	r, width := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.pos += width
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readString reads a quoted string
func (l *Lexer) readString(quote rune) (string, bool) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case 0:
				return result.String(), false
			default:
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.ch != quote {
		return result.String(), false
	}
	l.readChar() // skip closing quote
	return result.String(), true
}

// readNumber reads a number, including a sign, fraction and exponent
func (l *Lexer) readNumber() string {
	var result strings.Builder
	if l.ch == '-' || l.ch == '+' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	for unicode.IsDigit(l.ch) || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if unicode.IsDigit(next) || next == '-' || next == '+' {
			result.WriteRune(l.ch)
			l.readChar()
			result.WriteRune(l.ch)
			l.readChar()
			for unicode.IsDigit(l.ch) {
				result.WriteRune(l.ch)
				l.readChar()
			}
		}
	}
	return result.String()
}

// readIdentifier reads an identifier, keyword or dotted field path
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for isIdentChar(l.ch) || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// isIdentStart reports whether ch may begin a bare word. '%' is allowed so
// that LIKE patterns can be written unquoted.
func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$' || ch == '%'
}

func isIdentChar(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.start}

	switch l.ch {
	case 0:
		tok.Type, tok.Value = TokenEOF, ""
	case '=':
		tok.Type, tok.Value = TokenEqual, "="
		l.readChar()
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Value = TokenNotEqual, "!="
		} else {
			tok.Type, tok.Value = TokenError, "!"
		}
		l.readChar()
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Value = TokenLessEqual, "<="
		case '>':
			l.readChar()
			tok.Type, tok.Value = TokenNotEqual, "<>"
		default:
			tok.Type, tok.Value = TokenLess, "<"
		}
		l.readChar()
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Value = TokenGreaterEqual, ">="
		} else {
			tok.Type, tok.Value = TokenGreater, ">"
		}
		l.readChar()
	case ',':
		tok.Type, tok.Value = TokenComma, ","
		l.readChar()
	case '(':
		tok.Type, tok.Value = TokenLeftParen, "("
		l.readChar()
	case ')':
		tok.Type, tok.Value = TokenRightParen, ")"
		l.readChar()
	case '*':
		tok.Type, tok.Value = TokenStar, "*"
		l.readChar()
	case ';':
		// trailing statement terminator
		l.readChar()
		l.skipWhitespace()
		if l.ch == 0 {
			tok.Type, tok.Value = TokenEOF, ""
		} else {
			tok.Type, tok.Value = TokenError, ";"
		}
	case '\'', '"', '`':
		quote := l.ch
		value, closed := l.readString(quote)
		if !closed {
			tok.Type, tok.Value = TokenError, string(quote)+value
		} else if quote == '`' {
			tok.Type, tok.Value = TokenIdent, value
		} else {
			tok.Type, tok.Value = TokenString, value
		}
	default:
		if unicode.IsDigit(l.ch) || ((l.ch == '-' || l.ch == '+' || l.ch == '.') && unicode.IsDigit(l.peekChar())) {
			leading := unicode.IsDigit(l.ch)
			value := l.readNumber()
			if leading && isIdentStart(l.ch) {
				// a word such as 2020data or 10%
				tok.Type, tok.Value = TokenIdent, value+l.readIdentifier()
			} else {
				tok.Type, tok.Value = TokenNumber, value
			}
		} else if isIdentStart(l.ch) {
			value := l.readIdentifier()
			tok.Type, tok.Value = identifierType(value), value
		} else {
			tok.Type, tok.Value = TokenError, string(l.ch)
			l.readChar()
		}
	}

	return tok
}

var keywords = map[string]TokenType{
	"SELECT":  TokenSelect,
	"FROM":    TokenFrom,
	"WHERE":   TokenWhere,
	"AND":     TokenAnd,
	"OR":      TokenOr,
	"AS":      TokenAs,
	"ORDER":   TokenOrder,
	"BY":      TokenBy,
	"ASC":     TokenAsc,
	"DESC":    TokenDesc,
	"LIMIT":   TokenLimit,
	"OFFSET":  TokenOffset,
	"IN":      TokenIn,
	"LIKE":    TokenLike,
	"BETWEEN": TokenBetween,
	"NOT":     TokenNot,
	"TRUE":    TokenBool,
	"FALSE":   TokenBool,
}

// identifierType determines if an identifier is a keyword. Keywords are
// case-insensitive; dotted paths are never keywords.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToUpper(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input. The last token is TokenEOF
// or TokenError.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}

package lang

//go:generate go tool stringer --linecomment --type TokenKind --output token_string.go

import (
	"strconv"
)

// Position identifies a location in source text.
// Line and Column are 1-based; Column counts runes, not bytes.
type Position struct {
	Offset int // byte offset
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// TokenKind classifies a lexical token.
type TokenKind int

const (
	// TokenEOF terminates every token stream.
	TokenEOF TokenKind = iota // EOF

	// TokenIdentifier is a name: [A-Za-z_]+ excluding keywords and literal words.
	TokenIdentifier // Identifier

	// TokenNumber is a decimal literal with at most one fractional point.
	TokenNumber // Number

	// TokenString is a quoted literal; the lexeme includes both delimiters.
	TokenString // String

	// TokenBoolean is one of the words true or false.
	TokenBoolean // Boolean

	// TokenNone is the word none.
	TokenNone // None

	// TokenKeyword is one of the words let or const.
	TokenKeyword // Keyword

	// TokenOperator is an arithmetic, comparison, logical, or assignment
	// operator.
	TokenOperator // Operator

	// TokenPunctuation is one of ( ) { } : , .
	TokenPunctuation // Punctuation
)

// Token is a classified lexeme and the position of its first character.
type Token struct {
	Lexeme string
	Pos    Position
	Kind   TokenKind
}

// Is reports whether t has the given kind and lexeme.
func (t Token) Is(kind TokenKind, lexeme string) bool {
	return t.Kind == kind && t.Lexeme == lexeme
}

// String returns a short description of the token for diagnostics.
func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}

	return t.Lexeme
}

// Text returns the content of a string token without its delimiters.
// For all other kinds it returns the lexeme unchanged.
func (t Token) Text() string {
	if t.Kind != TokenString || len(t.Lexeme) < 2 {
		return t.Lexeme
	}

	return t.Lexeme[1 : len(t.Lexeme)-1]
}

var keywords = map[string]TokenKind{
	"let":   TokenKeyword,
	"const": TokenKeyword,
	"true":  TokenBoolean,
	"false": TokenBoolean,
	"none":  TokenNone,
}

// IsReserved reports whether word is a keyword or literal word, and thus
// unavailable as an identifier.
func IsReserved(word string) bool {
	_, ok := keywords[word]

	return ok
}

// IsIdentifier reports whether s is a valid, non-reserved identifier.
func IsIdentifier(s string) bool {
	if s == "" || IsReserved(s) {
		return false
	}

	for i := range len(s) {
		if !isIdentifierChar(s[i]) {
			return false
		}
	}

	return true
}

func isIdentifierChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

package lang

import (
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Lexer converts source text into tokens one at a time.
//
// Whitespace and line comments beginning with // are skipped. After the
// final token, Next returns a TokenEOF token on every call. The first
// error encountered is sticky.
type Lexer struct {
	src  string
	err  error
	pos  int
	line int
	col  int
}

// NewLexer returns a lexer positioned at the start of source.
func NewLexer(source string) *Lexer {
	return &Lexer{src: source, line: 1, col: 1}
}

// Tokenize returns all tokens in source, terminated by a TokenEOF token.
// It fails with a *LexError on the first unrecognized input.
func Tokenize(source string) ([]Token, error) {
	tokens := make([]Token, 0, len(source)/2+1)

	for tok, err := range Tokens(source) {
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
	}

	return tokens, nil
}

// Tokens returns an iterator over the tokens in source. The sequence ends
// after yielding either the TokenEOF token or an error. Each range over the
// returned sequence lexes source from the beginning.
func Tokens(source string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l := NewLexer(source)

		for {
			tok, err := l.Next()
			if err != nil {
				yield(Token{Pos: l.position()}, err)

				return
			}

			if !yield(tok, nil) || tok.Kind == TokenEOF {
				return
			}
		}
	}
}

// Next returns the next token in the input.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	tok, err := l.scan()
	if err != nil {
		l.err = err
	}

	return tok, err
}

func (l *Lexer) scan() (Token, error) {
	l.skipWhitespaceAndComments()

	start := l.position()

	if l.eof() {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	c := l.src[l.pos]

	switch {
	case isDigit(c):
		return l.scanNumber(start)

	case isIdentifierChar(c):
		return l.scanWord(start), nil

	case c == '"' || c == '\'':
		return l.scanString(start)
	}

	if op, ok := l.matchOperator(); ok {
		l.advanceN(len(op))

		return Token{Kind: TokenOperator, Lexeme: op, Pos: start}, nil
	}

	if strings.IndexByte("(){}:,.", c) >= 0 {
		l.advance()

		return Token{Kind: TokenPunctuation, Lexeme: string(c), Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

	return Token{}, &LexError{Kind: ErrUnexpectedCharacter, Pos: start, Char: r}
}

// operators lists two-character operators before their one-character
// prefixes so the longest match wins.
var operators = []string{
	"<=", ">=", "==", "!=", "&&", "||",
	"+", "-", "*", "/", "<", ">", "!", "=",
}

func (l *Lexer) matchOperator() (string, bool) {
	rest := l.src[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			return op, true
		}
	}

	return "", false
}

// scanNumber consumes a run of digits and points beginning with a digit.
// A point followed by an identifier character ends the number, so that
// 1.a is member access on 1.
func (l *Lexer) scanNumber(start Position) (Token, error) {
	begin := l.pos
	points := 0

	for !l.eof() {
		c := l.src[l.pos]
		if c == '.' {
			if l.pos+1 < len(l.src) && isIdentifierChar(l.src[l.pos+1]) {
				break
			}

			points++
		} else if !isDigit(c) {
			break
		}

		l.advance()
	}

	lexeme := l.src[begin:l.pos]

	if points > 1 {
		return Token{}, &LexError{Kind: ErrMalformedNumber, Pos: start}
	}

	if _, err := strconv.ParseFloat(lexeme, 64); err != nil {
		return Token{}, &LexError{Kind: ErrMalformedNumber, Pos: start}
	}

	return Token{Kind: TokenNumber, Lexeme: lexeme, Pos: start}, nil
}

// scanWord consumes an identifier, keyword, or literal word.
func (l *Lexer) scanWord(start Position) Token {
	begin := l.pos

	for !l.eof() && isIdentifierChar(l.src[l.pos]) {
		l.advance()
	}

	word := l.src[begin:l.pos]

	kind, ok := keywords[word]
	if !ok {
		kind = TokenIdentifier
	}

	return Token{Kind: kind, Lexeme: word, Pos: start}
}

// scanString consumes a string delimited by matching quotes. Strings have
// no escape sequences and may span lines.
func (l *Lexer) scanString(start Position) (Token, error) {
	begin := l.pos
	quote := l.src[l.pos]

	l.advance()

	for !l.eof() {
		if l.src[l.pos] == quote {
			l.advance()

			return Token{
				Kind:   TokenString,
				Lexeme: l.src[begin:l.pos],
				Pos:    start,
			}, nil
		}

		l.advance()
	}

	return Token{}, &LexError{Kind: ErrUnterminatedString, Pos: start}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()

		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for !l.eof() && l.src[l.pos] != '\n' {
				l.advance()
			}

		default:
			return
		}
	}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

// advance consumes one rune, tracking line and column.
func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) advanceN(n int) {
	for range n {
		l.advance()
	}
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

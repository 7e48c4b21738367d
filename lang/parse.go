package lang

import (
	"context"
	"iter"
	"log/slog"
	"strconv"

	"github.com/ardnew/fns/log"
)

// ParseString parses source into a program.
//
// Results are memoized by source content unless caching is disabled with
// WithCache(false). Cached programs are shared and must not be modified.
func ParseString(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Program, error) {
	o := makeOptions(opts...)
	if o.cache {
		return parseStringCached(ctx, source, o)
	}

	return parse(ctx, Tokens(source), o)
}

// ParseTokens parses a program from a token sequence, such as one returned
// by Tokens. The sequence is consumed up to its TokenEOF token or first
// error. A sequence that ends without TokenEOF is treated as terminated.
func ParseTokens(
	ctx context.Context,
	tokens iter.Seq2[Token, error],
	opts ...Option,
) (*Program, error) {
	return parse(ctx, tokens, makeOptions(opts...))
}

func parse(
	ctx context.Context,
	tokens iter.Seq2[Token, error],
	o options,
) (*Program, error) {
	next, stop := iter.Pull2(tokens)
	defer stop()

	p := &parser{
		next:     next,
		logger:   o.logger,
		maxDepth: o.maxDepth,
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	prog, err := p.parseProgram()
	if err != nil {
		p.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("statement_count", len(prog.Statements)))

	return prog, nil
}

// parser holds the parser state: one token of lookahead pulled from the
// token sequence.
type parser struct {
	next     func() (Token, error, bool)
	logger   log.Logger
	tok      Token
	depth    int
	maxDepth int
}

// advance loads the next token into p.tok.
func (p *parser) advance() error {
	tok, err, ok := p.next()
	if !ok {
		// Sequence ended without TokenEOF; stay at end of input.
		p.tok = Token{Kind: TokenEOF, Pos: p.tok.Pos}

		return nil
	}

	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// enter guards recursion depth; each call must be paired with leave.
func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return &ParseError{
			Kind:  ErrMaxDepthExceeded,
			Pos:   p.tok.Pos,
			Found: p.tok.String(),
		}
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) unexpected(kind *Error, expected string) *ParseError {
	return &ParseError{
		Kind:     kind,
		Pos:      p.tok.Pos,
		Expected: expected,
		Found:    p.tok.String(),
	}
}

// expect consumes the current token if it matches kind and lexeme.
func (p *parser) expect(kind TokenKind, lexeme, expected string) error {
	if !p.tok.Is(kind, lexeme) {
		return p.unexpected(ErrUnexpectedToken, expected)
	}

	return p.advance()
}

// parseProgram parses: Statement* EOF.
func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{Statements: make([]Statement, 0)}

	for p.tok.Kind != TokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		prog.Statements = append(prog.Statements, stmt)
	}

	return prog, nil
}

// parseStatement parses a declaration or an expression statement.
func (p *parser) parseStatement() (Statement, error) {
	if p.tok.Kind == TokenKeyword {
		return p.parseDeclaration()
	}

	if !p.startsExpression() {
		return nil, p.unexpected(ErrUnexpectedToken, "statement")
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ExpressionStatement{Expr: expr}, nil
}

// parseDeclaration parses: ('let' | 'const') Identifier '=' Expression.
func (p *parser) parseDeclaration() (Statement, error) {
	pos := p.tok.Pos
	keyword := p.tok.Lexeme

	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.Kind != TokenIdentifier {
		return nil, p.unexpected(ErrUnexpectedToken, "identifier")
	}

	name := p.tok.Lexeme

	if err := p.advance(); err != nil {
		return nil, err
	}

	if !p.tok.Is(TokenOperator, "=") {
		return nil, p.unexpected(ErrMissingInitializer, `"="`)
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	if !p.startsExpression() {
		return nil, p.unexpected(ErrMissingInitializer, "expression")
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if keyword == "const" {
		return &ConstDeclaration{Name: name, Value: value, Position: pos}, nil
	}

	return &LetDeclaration{Name: name, Value: value, Position: pos}, nil
}

// startsExpression reports whether the current token can begin an
// expression.
func (p *parser) startsExpression() bool {
	switch p.tok.Kind {
	case TokenNumber, TokenString, TokenBoolean, TokenNone, TokenIdentifier:
		return true
	case TokenPunctuation:
		return p.tok.Lexeme == "(" || p.tok.Lexeme == "{"
	case TokenOperator:
		return isUnaryOperator(p.tok.Lexeme)
	default:
		return false
	}
}

func isUnaryOperator(s string) bool { return s == "-" || s == "+" || s == "!" }

// parseExpression parses: Assignment.
func (p *parser) parseExpression() (Expression, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.parseAssignment()
}

// parseAssignment parses: Binary ('=' Assignment)?
//
// The left side is parsed as an ordinary expression and must turn out to
// be a bare identifier.
func (p *parser) parseAssignment() (Expression, error) {
	left, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}

	if !p.tok.Is(TokenOperator, "=") {
		return left, nil
	}

	target, ok := left.(*Identifier)
	if !ok {
		return nil, &ParseError{
			Kind:     ErrInvalidAssignment,
			Pos:      p.tok.Pos,
			Expected: "identifier before \"=\"",
			Found:    left.String(),
		}
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &Assignment{
		Name:     target.Name,
		Value:    value,
		Position: target.Position,
	}, nil
}

// parseBinary implements precedence climbing over the binary operators.
// Every binary operator is left-associative.
func (p *parser) parseBinary(minPrec int) (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.tok.Kind == TokenOperator {
		op := Operator(p.tok.Lexeme)

		prec := op.Precedence()
		if prec == 0 || prec < minPrec {
			break
		}

		pos := p.tok.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}

		left = &Binary{Left: left, Operator: op, Right: right, Position: pos}
	}

	return left, nil
}

// parseUnary parses: ('-' | '+' | '!') Unary | Postfix.
func (p *parser) parseUnary() (Expression, error) {
	if p.tok.Kind != TokenOperator || !isUnaryOperator(p.tok.Lexeme) {
		return p.parsePostfix()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	pos := p.tok.Pos
	op := Operator(p.tok.Lexeme)

	if err := p.advance(); err != nil {
		return nil, err
	}

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &Unary{Operator: op, Operand: operand, Position: pos}, nil
}

// parsePostfix parses: Primary ('.' Identifier)*.
func (p *parser) parsePostfix() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.tok.Is(TokenPunctuation, ".") {
		pos := p.tok.Pos

		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.tok.Kind != TokenIdentifier {
			return nil, p.unexpected(ErrUnexpectedToken, "property name")
		}

		expr = &MemberAccess{Object: expr, Property: p.tok.Lexeme, Position: pos}

		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	return expr, nil
}

// parsePrimary parses a literal, identifier, parenthesized expression, or
// object literal.
func (p *parser) parsePrimary() (Expression, error) {
	tok := p.tok

	var expr Expression

	switch tok.Kind {
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, &LexError{Kind: ErrMalformedNumber, Pos: tok.Pos}
		}

		expr = &NumberLiteral{Value: f, Position: tok.Pos}

	case TokenString:
		expr = &StringLiteral{Value: tok.Text(), Position: tok.Pos}

	case TokenBoolean:
		expr = &BooleanLiteral{Value: tok.Lexeme == "true", Position: tok.Pos}

	case TokenNone:
		expr = &NoneLiteral{Position: tok.Pos}

	case TokenIdentifier:
		expr = &Identifier{Name: tok.Lexeme, Position: tok.Pos}

	case TokenPunctuation:
		switch tok.Lexeme {
		case "(":
			return p.parseGroup()
		case "{":
			return p.parseObject()
		}

		return nil, p.unexpected(ErrUnexpectedToken, "expression")

	default:
		return nil, p.unexpected(ErrUnexpectedToken, "expression")
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	return expr, nil
}

// parseGroup parses: '(' Expression ')'.
// The enclosed expression is parsed from the lowest precedence.
func (p *parser) parseGroup() (Expression, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenPunctuation, ")", `")"`); err != nil {
		return nil, err
	}

	return expr, nil
}

// parseObject parses: '{' (Entry (',' Entry)*)? '}' where
// Entry is Identifier ':' Expression. Trailing commas are not accepted.
func (p *parser) parseObject() (Expression, error) {
	obj := &ObjectLiteral{Position: p.tok.Pos}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.Is(TokenPunctuation, "}") {
		return obj, p.advance()
	}

	seen := make(map[string]struct{})

	for {
		if p.tok.Kind != TokenIdentifier {
			return nil, p.unexpected(ErrUnexpectedToken, "object key")
		}

		key := p.tok

		if _, dup := seen[key.Lexeme]; dup {
			return nil, &ParseError{
				Kind:  ErrDuplicateKey,
				Pos:   key.Pos,
				Found: key.Lexeme,
			}
		}

		seen[key.Lexeme] = struct{}{}

		if err := p.advance(); err != nil {
			return nil, err
		}

		if err := p.expect(TokenPunctuation, ":", `":"`); err != nil {
			return nil, err
		}

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		obj.Entries = append(obj.Entries, ObjectEntry{
			Key:      key.Lexeme,
			Value:    value,
			Position: key.Pos,
		})

		if p.tok.Is(TokenPunctuation, ",") {
			if err := p.advance(); err != nil {
				return nil, err
			}

			continue
		}

		if err := p.expect(TokenPunctuation, "}", `"," or "}"`); err != nil {
			return nil, err
		}

		return obj, nil
	}
}

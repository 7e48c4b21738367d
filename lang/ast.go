package lang

import (
	"context"
	"io"
	"strconv"
	"strings"
)

// Node is implemented by every syntax tree node.
//
// String renders the node as canonical, fully parenthesized source text
// that parses back to an equivalent tree.
type Node interface {
	Pos() Position
	String() string
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a top-level program element.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of a parsed source unit.
type Program struct {
	Statements []Statement
}

// String renders the program with one statement per line.
func (p *Program) String() string {
	var sb strings.Builder

	for i, stmt := range p.Statements {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(stmt.String())
	}

	return sb.String()
}

// Operator is a unary or binary operator symbol.
type Operator string

// Operators recognized by the parser.
const (
	OpAdd          Operator = "+"
	OpSubtract     Operator = "-"
	OpMultiply     Operator = "*"
	OpDivide       Operator = "/"
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpAnd          Operator = "&&"
	OpOr           Operator = "||"
	OpNot          Operator = "!"
)

func (op Operator) String() string { return string(op) }

// Precedence returns the binding strength of a binary operator, or 0 if op
// is not a binary operator. Higher binds tighter.
func (op Operator) Precedence() int {
	switch op {
	case OpOr:
		return 1
	case OpAnd:
		return 2
	case OpEqual, OpNotEqual:
		return 3
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return 4
	case OpAdd, OpSubtract:
		return 5
	case OpMultiply, OpDivide:
		return 6
	default:
		return 0
	}
}

// LetDeclaration binds a mutable name: let Name = Value.
type LetDeclaration struct {
	Value    Expression
	Name     string
	Position Position
}

// ConstDeclaration binds an immutable name: const Name = Value.
type ConstDeclaration struct {
	Value    Expression
	Name     string
	Position Position
}

// ExpressionStatement evaluates an expression for its value.
type ExpressionStatement struct {
	Expr Expression
}

func (*LetDeclaration) statementNode()      {}
func (*ConstDeclaration) statementNode()    {}
func (*ExpressionStatement) statementNode() {}

func (s *LetDeclaration) Pos() Position      { return s.Position }
func (s *ConstDeclaration) Pos() Position    { return s.Position }
func (s *ExpressionStatement) Pos() Position { return s.Expr.Pos() }

func (s *LetDeclaration) String() string {
	return "let " + s.Name + " = " + s.Value.String()
}

func (s *ConstDeclaration) String() string {
	return "const " + s.Name + " = " + s.Value.String()
}

func (s *ExpressionStatement) String() string { return s.Expr.String() }

// NumberLiteral is a decimal number.
type NumberLiteral struct {
	Position Position
	Value    float64
}

// StringLiteral is quoted text without its delimiters.
type StringLiteral struct {
	Value    string
	Position Position
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Position Position
	Value    bool
}

// NoneLiteral is the absent value.
type NoneLiteral struct {
	Position Position
}

// Identifier references a binding by name.
type Identifier struct {
	Name     string
	Position Position
}

// Unary applies a prefix operator: - + or !.
type Unary struct {
	Operand  Expression
	Operator Operator
	Position Position
}

// Binary applies an infix operator to two operands.
type Binary struct {
	Left     Expression
	Right    Expression
	Operator Operator
	Position Position
}

// Assignment rebinds an existing mutable name.
type Assignment struct {
	Value    Expression
	Name     string
	Position Position
}

// ObjectEntry is one key-value pair of an object literal.
type ObjectEntry struct {
	Value    Expression
	Key      string
	Position Position
}

// ObjectLiteral builds an object from entries in source order.
type ObjectLiteral struct {
	Entries  []ObjectEntry
	Position Position
}

// MemberAccess reads a property from an object: Object.Property.
type MemberAccess struct {
	Object   Expression
	Property string
	Position Position
}

func (*NumberLiteral) expressionNode()  {}
func (*StringLiteral) expressionNode()  {}
func (*BooleanLiteral) expressionNode() {}
func (*NoneLiteral) expressionNode()    {}
func (*Identifier) expressionNode()     {}
func (*Unary) expressionNode()          {}
func (*Binary) expressionNode()         {}
func (*Assignment) expressionNode()     {}
func (*ObjectLiteral) expressionNode()  {}
func (*MemberAccess) expressionNode()   {}

func (e *NumberLiteral) Pos() Position  { return e.Position }
func (e *StringLiteral) Pos() Position  { return e.Position }
func (e *BooleanLiteral) Pos() Position { return e.Position }
func (e *NoneLiteral) Pos() Position    { return e.Position }
func (e *Identifier) Pos() Position     { return e.Position }
func (e *Unary) Pos() Position          { return e.Position }
func (e *Binary) Pos() Position         { return e.Position }
func (e *Assignment) Pos() Position     { return e.Position }
func (e *ObjectLiteral) Pos() Position  { return e.Position }
func (e *MemberAccess) Pos() Position   { return e.Position }

func (e *NumberLiteral) String() string { return formatNumber(e.Value) }

func (e *StringLiteral) String() string { return quote(e.Value) }

func (e *BooleanLiteral) String() string { return strconv.FormatBool(e.Value) }

func (*NoneLiteral) String() string { return "none" }

func (e *Identifier) String() string { return e.Name }

func (e *Unary) String() string {
	return "(" + e.Operator.String() + e.Operand.String() + ")"
}

func (e *Binary) String() string {
	return "(" + e.Left.String() + " " + e.Operator.String() + " " +
		e.Right.String() + ")"
}

func (e *Assignment) String() string {
	return "(" + e.Name + " = " + e.Value.String() + ")"
}

func (e *ObjectLiteral) String() string {
	if len(e.Entries) == 0 {
		return "{}"
	}

	parts := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		parts[i] = entry.Key + ": " + entry.Value.String()
	}

	return "{ " + strings.Join(parts, ", ") + " }"
}

func (e *MemberAccess) String() string {
	// A bare number followed by a point would lex as a fractional literal.
	if _, ok := e.Object.(*NumberLiteral); ok {
		return "(" + e.Object.String() + ")." + e.Property
	}

	return e.Object.String() + "." + e.Property
}

// formatNumber renders f with the fewest digits that round-trip, never
// using exponent notation since the lexer does not accept it.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// quote wraps s in whichever delimiter it does not contain.
func quote(s string) string {
	if strings.Contains(s, `"`) {
		return "'" + s + "'"
	}

	return `"` + s + `"`
}

// Walk calls visit for node and each of its descendants in depth-first
// order. If visit returns false, the children of that node are skipped.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}

	switch n := node.(type) {
	case *LetDeclaration:
		Walk(n.Value, visit)
	case *ConstDeclaration:
		Walk(n.Value, visit)
	case *ExpressionStatement:
		Walk(n.Expr, visit)
	case *Unary:
		Walk(n.Operand, visit)
	case *Binary:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *Assignment:
		Walk(n.Value, visit)
	case *ObjectLiteral:
		for _, entry := range n.Entries {
			Walk(entry.Value, visit)
		}
	case *MemberAccess:
		Walk(n.Object, visit)
	}
}

// Print writes an indented tree of the program to w.
func (p *Program) Print(_ context.Context, w io.Writer) {
	write := writer(w)
	for _, stmt := range p.Statements {
		printNode(write, stmt, 0)
	}
}

func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		for _, s := range item {
			_, _ = io.WriteString(w, s)
		}

		_, _ = io.WriteString(w, eol)
	}
}

func printNode(write func(string, ...string), node Node, depth int) {
	pad := strings.Repeat("  ", depth)
	at := " @" + node.Pos().String()

	switch n := node.(type) {
	case *LetDeclaration:
		write("\n", pad, "Let ", n.Name, at)
		printNode(write, n.Value, depth+1)
	case *ConstDeclaration:
		write("\n", pad, "Const ", n.Name, at)
		printNode(write, n.Value, depth+1)
	case *ExpressionStatement:
		write("\n", pad, "Expression", at)
		printNode(write, n.Expr, depth+1)
	case *Unary:
		write("\n", pad, "Unary ", n.Operator.String(), at)
		printNode(write, n.Operand, depth+1)
	case *Binary:
		write("\n", pad, "Binary ", n.Operator.String(), at)
		printNode(write, n.Left, depth+1)
		printNode(write, n.Right, depth+1)
	case *Assignment:
		write("\n", pad, "Assign ", n.Name, at)
		printNode(write, n.Value, depth+1)
	case *ObjectLiteral:
		write("\n", pad, "Object", at)

		for _, entry := range n.Entries {
			write("\n", pad, "  ", entry.Key, ":")
			printNode(write, entry.Value, depth+2)
		}
	case *MemberAccess:
		write("\n", pad, "Member .", n.Property, at)
		printNode(write, n.Object, depth+1)
	default:
		write("\n", pad, nodeType(node), " ", node.String(), at)
	}
}

// nodeType returns the display name of a node's concrete type.
func nodeType(node Node) string {
	switch node.(type) {
	case *LetDeclaration:
		return "Let"
	case *ConstDeclaration:
		return "Const"
	case *ExpressionStatement:
		return "Expression"
	case *NumberLiteral:
		return "Number"
	case *StringLiteral:
		return "String"
	case *BooleanLiteral:
		return "Boolean"
	case *NoneLiteral:
		return "None"
	case *Identifier:
		return "Identifier"
	case *Unary:
		return "Unary"
	case *Binary:
		return "Binary"
	case *Assignment:
		return "Assign"
	case *ObjectLiteral:
		return "Object"
	case *MemberAccess:
		return "Member"
	default:
		return "Unknown"
	}
}

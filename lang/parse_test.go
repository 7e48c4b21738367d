package lang

import (
	"errors"
	"iter"
	"reflect"
	"strings"
	"testing"
)

func parseNoCache(t *testing.T, src string, opts ...Option) (*Program, error) {
	t.Helper()

	return ParseString(t.Context(), src, append(opts, WithCache(false))...)
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"8 / 4 / 2", "((8 / 4) / 2)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{
			"1 + 2 - 3 * 4 / 5 + (6 - 7)",
			"(((1 + 2) - ((3 * 4) / 5)) + (6 - 7))",
		},
		{"((1 + 2) * (3 - (4 / 2)))", "((1 + 2) * (3 - (4 / 2)))"},
		{"-a * b", "((-a) * b)"},
		{"--a", "(-(-a))"},
		{"!x == y", "((!x) == y)"},
		{"+1", "(+1)"},
		{"a || b && c", "(a || (b && c))"},
		{"a && b || c", "((a && b) || c)"},
		{"1 < 2 == true", "((1 < 2) == true)"},
		{"a != b >= c + 1", "(a != (b >= (c + 1)))"},
		{"x = 1 + 2", "(x = (1 + 2))"},
		{"a = b = 1", "(a = (b = 1))"},
		{"x = y || z", "(x = (y || z))"},
		{"(a = 1) + 2", "((a = 1) + 2)"},
		{"-a.b", "(-a.b)"},
		{"a.b.c", "a.b.c"},
		{"(1 + 2).x", "(1 + 2).x"},
		{"{ a: 1 }.a", "{ a: 1 }.a"},
		{"{}", "{}"},
		{"{ a: 1, b: { c: 'q' } }", `{ a: 1, b: { c: "q" } }`},
		{`'say "hi"'`, `'say "hi"'`},
		{"none", "none"},
		{"2.50", "2.5"},
		{"let x = 1", "let x = 1"},
		{"const k = { v: 2 }", "const k = { v: 2 }"},
		{"let a = 1 a", "let a = 1\na"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog, err := parseNoCache(t, tt.input)
			if err != nil {
				t.Fatalf("ParseString(%q) error = %v", tt.input, err)
			}

			if got := prog.String(); got != tt.want {
				t.Errorf("ParseString(%q) = %s, want %s", tt.input, got, tt.want)
			}

			// Canonical output parses back to the same tree.
			again, err := parseNoCache(t, prog.String())
			if err != nil {
				t.Fatalf("reparse %q error = %v", prog.String(), err)
			}

			if again.String() != prog.String() {
				t.Errorf("reparse = %s, want %s", again, prog)
			}
		})
	}
}

func TestParseMemberChainIsLeftAssociative(t *testing.T) {
	prog, err := parseNoCache(t, "a.b.c")
	if err != nil {
		t.Fatal(err)
	}

	outer, ok := prog.Statements[0].(*ExpressionStatement).Expr.(*MemberAccess)
	if !ok || outer.Property != "c" {
		t.Fatalf("outer node = %#v, want member .c", prog.Statements[0])
	}

	inner, ok := outer.Object.(*MemberAccess)
	if !ok || inner.Property != "b" {
		t.Fatalf("inner node = %#v, want member .b", outer.Object)
	}

	if id, ok := inner.Object.(*Identifier); !ok || id.Name != "a" {
		t.Errorf("innermost node = %#v, want identifier a", inner.Object)
	}
}

func TestParseObjectOrder(t *testing.T) {
	prog, err := parseNoCache(t, "{ z: 1, a: 2, m: 3 }")
	if err != nil {
		t.Fatal(err)
	}

	obj := prog.Statements[0].(*ExpressionStatement).Expr.(*ObjectLiteral)

	var keys []string
	for _, e := range obj.Entries {
		keys = append(keys, e.Key)
	}

	if strings.Join(keys, ",") != "z,a,m" {
		t.Errorf("keys = %v, want [z a m]", keys)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  error
		line  int
		col   int
	}{
		{"let without initializer", "let x", ErrMissingInitializer, 1, 6},
		{"let without expression", "let x =", ErrMissingInitializer, 1, 8},
		{"const without expression", "const x = )", ErrMissingInitializer, 1, 11},
		{"let without name", "let = 1", ErrUnexpectedToken, 1, 5},
		{"keyword as name", "let const = 1", ErrUnexpectedToken, 1, 5},
		{"duplicate key", "{ a: 1, a: 2 }", ErrDuplicateKey, 1, 9},
		{"nested duplicate key", "{ a: { b: 1, b: 2 } }", ErrDuplicateKey, 1, 14},
		{"assign to binary", "1 + 2 = 3", ErrInvalidAssignment, 1, 7},
		{"assign to member", "a.b = 1", ErrInvalidAssignment, 1, 5},
		{"unclosed group", "(1 + 2", ErrUnexpectedToken, 1, 7},
		{"trailing comma", "{ a: 1, }", ErrUnexpectedToken, 1, 9},
		{"missing colon", "{ a 1 }", ErrUnexpectedToken, 1, 5},
		{"string key", `{ "a": 1 }`, ErrUnexpectedToken, 1, 3},
		{"missing comma", "{ a: 1 b: 2 }", ErrUnexpectedToken, 1, 8},
		{"stray close", ")", ErrUnexpectedToken, 1, 1},
		{"dangling operator", "1 +", ErrUnexpectedToken, 1, 4},
		{"member needs name", "a.", ErrUnexpectedToken, 1, 3},
		{"member needs identifier", "a.1", ErrUnexpectedToken, 1, 3},
		{"second line", "let x = 1\nlet y = *", ErrMissingInitializer, 2, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseNoCache(t, tt.input)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("ParseString(%q) error = %v, want %v", tt.input, err, tt.kind)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}

			if pe.Pos.Line != tt.line || pe.Pos.Column != tt.col {
				t.Errorf("error at %v, want %d:%d", pe.Pos, tt.line, tt.col)
			}
		})
	}
}

func TestParseParenthesizedTarget(t *testing.T) {
	// Grouping is discarded, so a parenthesized name is a valid target.
	prog, err := parseNoCache(t, "(a) = 1")
	if err != nil {
		t.Fatal(err)
	}

	if prog.String() != "(a = 1)" {
		t.Errorf("ParseString() = %s, want (a = 1)", prog)
	}
}

func TestParseLexErrorPassesThrough(t *testing.T) {
	_, err := parseNoCache(t, "let s = 'open")

	var le *LexError
	if !errors.As(err, &le) || !errors.Is(err, ErrUnterminatedString) {
		t.Fatalf("error = %v, want unterminated string *LexError", err)
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		t.Error("lex error reported as *ParseError")
	}
}

func TestParseMaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)

	if _, err := parseNoCache(t, deep, WithMaxDepth(10)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("error = %v, want %v", err, ErrMaxDepthExceeded)
	}

	if _, err := parseNoCache(t, deep, WithMaxDepth(100)); err != nil {
		t.Errorf("error = %v, want nil", err)
	}

	bangs := strings.Repeat("!", 50) + "x"
	if _, err := parseNoCache(t, bangs, WithMaxDepth(10)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("unary chain error = %v, want %v", err, ErrMaxDepthExceeded)
	}
}

func TestParseIdempotent(t *testing.T) {
	src := "const a = { b: 1 + 2 * 3, c: 'x' }\nlet d = a.b > 6 && !none\nd = -a.b"

	first, err := parseNoCache(t, src)
	if err != nil {
		t.Fatal(err)
	}

	second, err := parseNoCache(t, src)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Fatal("uncached parses returned the same program")
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("parses differ:\n%s\n%s", first, second)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "   \n\t", "// nothing here"} {
		prog, err := parseNoCache(t, src)
		if err != nil {
			t.Fatalf("ParseString(%q) error = %v", src, err)
		}

		if len(prog.Statements) != 0 {
			t.Errorf("ParseString(%q) has %d statements", src, len(prog.Statements))
		}
	}
}

func TestParseTokensWithoutEOF(t *testing.T) {
	toks, err := Tokenize("1 + 2")
	if err != nil {
		t.Fatal(err)
	}

	toks = toks[:len(toks)-1] // drop EOF

	var seq iter.Seq2[Token, error] = func(yield func(Token, error) bool) {
		for _, tok := range toks {
			if !yield(tok, nil) {
				return
			}
		}
	}

	prog, err := ParseTokens(t.Context(), seq)
	if err != nil {
		t.Fatal(err)
	}

	if prog.String() != "(1 + 2)" {
		t.Errorf("ParseTokens() = %s, want (1 + 2)", prog)
	}
}

func TestParseTokensStopsAtError(t *testing.T) {
	_, err := ParseTokens(t.Context(), Tokens("1 + ~"))
	if !errors.Is(err, ErrUnexpectedCharacter) {
		t.Errorf("error = %v, want %v", err, ErrUnexpectedCharacter)
	}
}

func TestWalk(t *testing.T) {
	prog, err := parseNoCache(t, "let x = { a: -b + 1 }.a")
	if err != nil {
		t.Fatal(err)
	}

	var kinds []string

	Walk(prog.Statements[0], func(n Node) bool {
		kinds = append(kinds, nodeType(n))

		return true
	})

	want := "Let Member Object Binary Unary Identifier Number"
	if got := strings.Join(kinds, " "); got != want {
		t.Errorf("Walk visited %q, want %q", got, want)
	}
}

func TestPrint(t *testing.T) {
	prog, err := parseNoCache(t, "x = 1 + 2")
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	prog.Print(t.Context(), &sb)

	want := "Expression @1:1\n" +
		"  Assign x @1:1\n" +
		"    Binary + @1:7\n" +
		"      Number 1 @1:5\n" +
		"      Number 2 @1:9\n"

	if sb.String() != want {
		t.Errorf("Print() =\n%s\nwant\n%s", sb.String(), want)
	}
}

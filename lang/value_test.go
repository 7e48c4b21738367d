package lang

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{None{}, false},
		{nil, false},
		{Boolean(false), false},
		{Boolean(true), true},
		{Number(0), false},
		{Number(-0.0), false},
		{Number(0.1), true},
		{Number(-1), true},
		{String(""), false},
		{String("0"), true},
		{String("false"), true},
		{NewObject(), true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	a := NewObject(
		Entry{Key: "x", Value: Number(1)},
		Entry{Key: "y", Value: NewObject(Entry{Key: "z", Value: String("s")})},
	)
	b := NewObject(
		Entry{Key: "y", Value: NewObject(Entry{Key: "z", Value: String("s")})},
		Entry{Key: "x", Value: Number(1)},
	)
	c := NewObject(
		Entry{Key: "x", Value: Number(1)},
		Entry{Key: "y", Value: NewObject(Entry{Key: "z", Value: String("t")})},
	)

	tests := []struct {
		a, b Value
		want bool
	}{
		{Number(1), Number(1), true},
		{Number(1), Number(2), false},
		{Number(1), String("1"), false},
		{String("a"), String("a"), true},
		{Boolean(true), Boolean(true), true},
		{Boolean(false), None{}, false},
		{None{}, None{}, true},
		{None{}, nil, true},
		{a, b, true},
		{a, c, false},
		{a, NewObject(), false},
		{NewObject(), NewObject(), true},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", Inspect(tt.a), Inspect(tt.b), got, tt.want)
		}
	}
}

func TestObjectOrder(t *testing.T) {
	obj := NewObject(
		Entry{Key: "b", Value: Number(1)},
		Entry{Key: "a", Value: String("x")},
		Entry{Key: "b", Value: Number(2)},
	)

	if got := strings.Join(obj.Keys(), ","); got != "b,a" {
		t.Errorf("Keys() = %s, want b,a", got)
	}

	if v, _ := obj.Get("b"); !Equal(v, Number(2)) {
		t.Errorf("Get(b) = %v, want 2", v)
	}

	if got := obj.String(); got != `{ b: 2, a: "x" }` {
		t.Errorf("String() = %s", got)
	}

	var keys []string
	for k := range obj.All() {
		keys = append(keys, k)

		break
	}

	if len(keys) != 1 || keys[0] != "b" {
		t.Errorf("All() with early break yielded %v", keys)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v       Value
		str     string
		inspect string
	}{
		{Number(3), "3", "3"},
		{Number(-0.25), "-0.25", "-0.25"},
		{Number(1e21), "1000000000000000000000", "1000000000000000000000"},
		{String("hi"), "hi", `"hi"`},
		{String(`say "x"`), `say "x"`, `'say "x"'`},
		{Boolean(true), "true", "true"},
		{None{}, "none", "none"},
		{NewObject(), "{}", "{}"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}

		if got := Inspect(tt.v); got != tt.inspect {
			t.Errorf("Inspect() = %q, want %q", got, tt.inspect)
		}
	}
}

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind fmt.Stringer
		want string
	}{
		{TokenEOF, "EOF"},
		{TokenPunctuation, "Punctuation"},
		{TokenKind(42), "TokenKind(42)"},
		{KindNone, "none"},
		{KindObject, "object"},
		{ValueKind(-1), "ValueKind(-1)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestInspector(t *testing.T) {
	obj := NewObject(
		Entry{Key: "s", Value: String("x")},
		Entry{Key: "n", Value: Number(2)},
	)

	if got := Inspector(obj).LogValue().String(); got != `{ s: "x", n: 2 }` {
		t.Errorf("Inspector(obj) = %s", got)
	}

	if got := Inspector(nil).LogValue().String(); got != "none" {
		t.Errorf("Inspector(nil) = %s", got)
	}
}

func TestFromNative(t *testing.T) {
	v, err := FromNative(map[string]any{
		"port":  8080,
		"name":  "svc",
		"debug": true,
		"tls":   nil,
		"limits": map[string]any{
			"cpu": 1.5,
			"mem": uint64(512),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("FromNative() = %T, want *Object", v)
	}

	if got := strings.Join(obj.Keys(), ","); got != "debug,limits,name,port,tls" {
		t.Errorf("keys = %s, want sorted", got)
	}

	want := `{ debug: true, limits: { cpu: 1.5, mem: 512 }, name: "svc", port: 8080, tls: none }`
	if obj.String() != want {
		t.Errorf("String() = %s\nwant %s", obj, want)
	}
}

func TestFromNativeMapSliceKeepsOrder(t *testing.T) {
	v, err := FromNative(yaml.MapSlice{
		{Key: "z", Value: 1},
		{Key: "a", Value: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(v.(*Object).Keys(), ","); got != "z,a" {
		t.Errorf("keys = %s, want z,a", got)
	}
}

func TestFromNativeRejects(t *testing.T) {
	for _, x := range []any{
		[]any{1, 2},
		math.NaN(),
		math.Inf(1),
		struct{}{},
		map[string]any{"nested": []int{1}},
	} {
		if _, err := FromNative(x); !errors.Is(err, ErrInvalidBinding) {
			t.Errorf("FromNative(%v) error = %v, want %v", x, err, ErrInvalidBinding)
		}
	}
}

func TestToNative(t *testing.T) {
	obj := NewObject(
		Entry{Key: "n", Value: Number(2)},
		Entry{Key: "o", Value: NewObject(Entry{Key: "s", Value: String("x")})},
	)

	ms, ok := ToNative(obj).(yaml.MapSlice)
	if !ok || len(ms) != 2 {
		t.Fatalf("ToNative() = %#v", ToNative(obj))
	}

	if ms[0].Key != "n" || ms[0].Value != float64(2) {
		t.Errorf("first item = %#v", ms[0])
	}

	back, err := FromNative(ms)
	if err != nil {
		t.Fatal(err)
	}

	if !Equal(back, obj) {
		t.Errorf("FromNative(ToNative()) = %s, want %s", back, obj)
	}

	if ToNative(None{}) != nil {
		t.Error("ToNative(None) != nil")
	}
}

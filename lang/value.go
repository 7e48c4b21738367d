package lang

//go:generate go tool stringer --linecomment --type ValueKind --output value_string.go

import (
	"bytes"
	"encoding/json"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Value is a runtime value: Number, String, Boolean, None, or *Object.
type Value interface {
	Kind() ValueKind
	String() string
	value()
}

// ValueKind classifies runtime values.
type ValueKind int

const (
	KindNone    ValueKind = iota // none
	KindNumber                   // number
	KindString                   // string
	KindBoolean                  // boolean
	KindObject                   // object
)

type (
	// Number is a 64-bit floating point value.
	Number float64

	// String is an immutable text value.
	String string

	// Boolean is true or false.
	Boolean bool

	// None is the absent value.
	None struct{}
)

func (Number) value()  {}
func (String) value()  {}
func (Boolean) value() {}
func (None) value()    {}
func (*Object) value() {}

func (Number) Kind() ValueKind  { return KindNumber }
func (String) Kind() ValueKind  { return KindString }
func (Boolean) Kind() ValueKind { return KindBoolean }
func (None) Kind() ValueKind    { return KindNone }
func (*Object) Kind() ValueKind { return KindObject }

func (n Number) String() string  { return formatNumber(float64(n)) }
func (s String) String() string  { return string(s) }
func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (None) String() string      { return "none" }

// MarshalJSON encodes None as null.
func (None) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalYAML encodes None as null.
func (None) MarshalYAML() (any, error) { return nil, nil }

// Object is an ordered mapping from names to values. Keys are unique and
// iterate in insertion order.
type Object struct {
	entries map[string]Value
	keys    []string
}

// Entry is one key-value pair of an Object.
type Entry struct {
	Value Value
	Key   string
}

// NewObject returns an object holding entries in order. A repeated key
// replaces the earlier value but keeps its original position.
func NewObject(entries ...Entry) *Object {
	obj := &Object{
		entries: make(map[string]Value, len(entries)),
		keys:    make([]string, 0, len(entries)),
	}

	for _, e := range entries {
		obj.set(e.Key, e.Value)
	}

	return obj
}

func (o *Object) set(key string, v Value) {
	if _, ok := o.entries[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.entries[key] = v
}

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string { return slices.Clone(o.keys) }

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.entries[key]

	return v, ok
}

// All returns an iterator over entries in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range o.keys {
			if !yield(k, o.entries[k]) {
				return
			}
		}
	}
}

// String renders the object as an object literal.
func (o *Object) String() string {
	if o.Len() == 0 {
		return "{}"
	}

	parts := make([]string, 0, o.Len())
	for k, v := range o.All() {
		parts = append(parts, k+": "+Inspect(v))
	}

	return "{ " + strings.Join(parts, ", ") + " }"
}

// MarshalJSON encodes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(o.entries[k])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalYAML encodes the object as a mapping with keys in insertion order.
func (o *Object) MarshalYAML() (any, error) {
	ms := make(yaml.MapSlice, 0, o.Len())
	for k, v := range o.All() {
		ms = append(ms, yaml.MapItem{Key: k, Value: v})
	}

	return ms, nil
}

// Inspect renders v as source text: strings are quoted, other values are
// rendered as by their String method.
func Inspect(v Value) string {
	if v == nil {
		return "none"
	}

	if s, ok := v.(String); ok {
		return quote(string(s))
	}

	return v.String()
}

// Inspector returns a [slog.LogValuer] that renders v with [Inspect] only
// when a record is written.
func Inspector(v Value) slog.LogValuer { return inspector{v} }

type inspector struct{ v Value }

func (i inspector) LogValue() slog.Value { return slog.StringValue(Inspect(i.v)) }

// Truthy reports whether v counts as true in a condition. The values none,
// false, 0, and the empty string are falsy; everything else is truthy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, None:
		return false
	case Boolean:
		return bool(v)
	case Number:
		return v != 0
	case String:
		return v != ""
	default:
		return true
	}
}

// Equal reports whether a and b are structurally equal. Values of
// different kinds are never equal. Objects are equal when they hold the
// same keys with equal values, regardless of order.
func Equal(a, b Value) bool {
	if a == nil {
		a = None{}
	}

	if b == nil {
		b = None{}
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case Number:
		return a == b.(Number)
	case String:
		return a == b.(String)
	case Boolean:
		return a == b.(Boolean)
	case None:
		return true
	case *Object:
		bo := b.(*Object)
		if a.Len() != bo.Len() {
			return false
		}

		for k, av := range a.All() {
			bv, ok := bo.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

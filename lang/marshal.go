package lang

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"sort"

	"github.com/goccy/go-yaml"
)

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToNative())
}

// ToNative converts the program to a tree of native Go maps and slices.
func (p *Program) ToNative() []any {
	stmts := make([]any, len(p.Statements))
	for i, stmt := range p.Statements {
		stmts[i] = NodeToNative(stmt)
	}

	return stmts
}

// NodeToNative converts a syntax tree node to a native Go map keyed by
// field name, with a "type" entry naming the node.
func NodeToNative(node Node) map[string]any {
	m := map[string]any{
		"type": nodeType(node),
		"line": node.Pos().Line,
		"col":  node.Pos().Column,
	}

	switch n := node.(type) {
	case *LetDeclaration:
		m["name"] = n.Name
		m["value"] = NodeToNative(n.Value)
	case *ConstDeclaration:
		m["name"] = n.Name
		m["value"] = NodeToNative(n.Value)
	case *ExpressionStatement:
		m["expression"] = NodeToNative(n.Expr)
	case *NumberLiteral:
		m["value"] = n.Value
	case *StringLiteral:
		m["value"] = n.Value
	case *BooleanLiteral:
		m["value"] = n.Value
	case *NoneLiteral:
		m["value"] = nil
	case *Identifier:
		m["name"] = n.Name
	case *Unary:
		m["operator"] = n.Operator.String()
		m["operand"] = NodeToNative(n.Operand)
	case *Binary:
		m["operator"] = n.Operator.String()
		m["left"] = NodeToNative(n.Left)
		m["right"] = NodeToNative(n.Right)
	case *Assignment:
		m["name"] = n.Name
		m["value"] = NodeToNative(n.Value)
	case *ObjectLiteral:
		entries := make([]any, len(n.Entries))
		for i, entry := range n.Entries {
			entries[i] = map[string]any{
				"key":   entry.Key,
				"value": NodeToNative(entry.Value),
			}
		}

		m["entries"] = entries
	case *MemberAccess:
		m["object"] = NodeToNative(n.Object)
		m["property"] = n.Property
	}

	return m
}

// ToNative converts a runtime value to a native Go value: float64, string,
// bool, nil, or yaml.MapSlice for objects (preserving key order).
func ToNative(v Value) any {
	switch v := v.(type) {
	case Number:
		return float64(v)
	case String:
		return string(v)
	case Boolean:
		return bool(v)
	case *Object:
		ms := make(yaml.MapSlice, 0, v.Len())
		for k, e := range v.All() {
			ms = append(ms, yaml.MapItem{Key: k, Value: ToNative(e)})
		}

		return ms
	default:
		return nil
	}
}

// FromNative converts a native Go value to a runtime value.
//
// Accepted inputs are nil, bool, string, every integer and floating point
// type, Value, yaml.MapSlice, and maps keyed by strings (or by values
// whose formatted text is a string). Map entries are ordered by key.
// Anything else, including slices, fails with ErrInvalidBinding since the
// language has no array type.
func FromNative(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return None{}, nil
	case Value:
		return x, nil
	case bool:
		return Boolean(x), nil
	case string:
		return String(x), nil
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return Number(x), nil
	case int8:
		return Number(x), nil
	case int16:
		return Number(x), nil
	case int32:
		return Number(x), nil
	case int64:
		return Number(x), nil
	case uint:
		return Number(x), nil
	case uint8:
		return Number(x), nil
	case uint16:
		return Number(x), nil
	case uint32:
		return Number(x), nil
	case uint64:
		return Number(x), nil
	case yaml.MapSlice:
		entries := make([]Entry, 0, len(x))

		for _, item := range x {
			key := fmt.Sprint(item.Key)

			v, err := FromNative(item.Value)
			if err != nil {
				return nil, err
			}

			entries = append(entries, Entry{Key: key, Value: v})
		}

		return NewObject(entries...), nil
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Map {
		return nil, ErrInvalidBinding.With(
			slog.String("type", rv.Type().String()))
	}

	keys := make([]string, 0, rv.Len())
	vals := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		key := fmt.Sprint(iter.Key().Interface())
		keys = append(keys, key)
		vals[key] = iter.Value().Interface()
	}

	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))

	for _, key := range keys {
		v, err := FromNative(vals[key])
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{Key: key, Value: v})
	}

	return NewObject(entries...), nil
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrInvalidBinding.With(slog.Float64("value", f))
	}

	return Number(f), nil
}

// FromNativeMap converts each entry of m with FromNative.
func FromNativeMap(m map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(m))

	for k, x := range m {
		v, err := FromNative(x)
		if err != nil {
			return nil, WrapError(err).With(slog.String("name", k))
		}

		out[k] = v
	}

	return out, nil
}

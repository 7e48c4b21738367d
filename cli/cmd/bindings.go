package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/fns/lang"
	"github.com/ardnew/fns/log"
)

// hostBindings are the flags that seed the global scope of a program with
// values computed on the host.
type hostBindings struct {
	Bindings []string `help:"YAML or JSON mapping of initial bindings (repeatable)." placeholder:"FILE" sep:"none" short:"b" type:"existingfile"`
	Define   []string `help:"Bind NAME to the result of an expr-lang expression (repeatable)." placeholder:"NAME=EXPR" sep:"none" short:"D"`
}

// load returns the bindings described by the flags. Files are read in
// order, then definitions are evaluated in order; later entries replace
// earlier ones, and each definition sees everything bound before it.
func (h hostBindings) load(ctx context.Context) (map[string]lang.Value, error) {
	bindings := make(map[string]lang.Value)

	for _, path := range h.Bindings {
		if err := loadBindingsFile(path, bindings); err != nil {
			return nil, err
		}

		log.DebugContext(ctx, "bindings loaded",
			slog.String("file", path),
			slog.Int("count", len(bindings)))
	}

	for _, def := range h.Define {
		name, v, err := define(def, bindings)
		if err != nil {
			return nil, err
		}

		bindings[name] = v

		log.TraceContext(ctx, "define",
			slog.String("name", name),
			slog.Any("value", lang.Inspector(v)))
	}

	return bindings, nil
}

// loadBindingsFile decodes the mapping in path into dst. YAML is a superset
// of JSON, so either format is accepted. Key order is kept so that nested
// objects display in file order.
func loadBindingsFile(path string, dst map[string]lang.Value) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ErrLoadBindings.With(slog.String("file", path)).Wrap(err)
	}

	var doc yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return ErrLoadBindings.With(slog.String("file", path)).Wrap(err)
	}

	for _, item := range doc {
		name, ok := item.Key.(string)
		if !ok || !lang.IsIdentifier(name) {
			return ErrLoadBindings.
				With(slog.String("file", path), slog.String("key", fmt.Sprint(item.Key))).
				Wrap(lang.ErrInvalidBinding)
		}

		v, err := lang.FromNative(item.Value)
		if err != nil {
			return ErrLoadBindings.
				With(slog.String("file", path), slog.String("key", name)).
				Wrap(err)
		}

		dst[name] = v
	}

	return nil
}

// define evaluates a NAME=EXPR definition with expr-lang. The current
// bindings are visible to the expression under their own names.
func define(def string, bindings map[string]lang.Value) (string, lang.Value, error) {
	name, src, ok := strings.Cut(def, "=")
	name = strings.TrimSpace(name)

	if !ok || !lang.IsIdentifier(name) || strings.TrimSpace(src) == "" {
		return "", nil, ErrDefine.With(slog.String("define", def))
	}

	env := make(map[string]any, len(bindings))
	for k, v := range bindings {
		env[k] = exprValue(v)
	}

	out, err := expr.Eval(src, env)
	if err != nil {
		return "", nil, ErrDefine.With(slog.String("define", def)).Wrap(err)
	}

	v, err := lang.FromNative(out)
	if err != nil {
		return "", nil, ErrDefine.With(slog.String("define", def)).Wrap(err)
	}

	return name, v, nil
}

// exprValue converts v to the plain Go value expr-lang operates on.
// Objects become maps so that member access works in expressions.
func exprValue(v lang.Value) any {
	switch v := v.(type) {
	case lang.Number:
		return float64(v)
	case lang.String:
		return string(v)
	case lang.Boolean:
		return bool(v)
	case *lang.Object:
		m := make(map[string]any, v.Len())
		for k, child := range v.All() {
			m[k] = exprValue(child)
		}

		return m
	default:
		return nil
	}
}

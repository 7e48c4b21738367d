package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fns/lang"
	"github.com/ardnew/fns/log"
	"github.com/ardnew/fns/pkg"
	"github.com/ardnew/fns/profile"
)

// Init generates a configuration file from the current global flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	prog := configProgram(ktx)

	_, err = fmt.Fprintf(file, "// %s configuration (written by %q)\n", pkg.Name, pkg.Name+" init")
	if err == nil {
		err = prog.Format(ctx, file)
	}

	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.Int("settings", len(prog.Statements)))

	return nil
}

// configProgram returns one constant declaration per global flag that has
// a value, named with underscores in place of hyphens.
func configProgram(ktx *kong.Context) *lang.Program {
	prog := new(lang.Program)

	ignore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || hasAnyPrefix(flag.Name, ignore...) {
			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")
		if !lang.IsIdentifier(name) {
			continue
		}

		value := literal(ktx.FlagValue(flag))
		if value == nil {
			continue
		}

		prog.Statements = append(prog.Statements,
			&lang.ConstDeclaration{Name: name, Value: value})
	}

	return prog
}

func hasAnyPrefix(s string, prefix ...string) bool {
	for _, p := range prefix {
		if strings.HasPrefix(s, p) {
			return true
		}
	}

	return false
}

// literal returns the fns literal for a flag value, or nil when the value
// is unset or has no literal form.
func literal(v any) lang.Expression {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return &lang.BooleanLiteral{Value: rv.Bool()}

	case reflect.String:
		s := rv.String()
		// Strings have no escapes, so one of the two quotes must be absent.
		if s == "" || (strings.Contains(s, `"`) && strings.Contains(s, "'")) {
			return nil
		}

		return &lang.StringLiteral{Value: s}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number(float64(rv.Int()))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return number(float64(rv.Uint()))

	case reflect.Float32, reflect.Float64:
		return number(rv.Float())

	default:
		return nil
	}
}

// number returns a literal for f. Negative values are written as a unary
// minus applied to the magnitude, as the parser would produce.
func number(f float64) lang.Expression {
	if f < 0 {
		return &lang.Unary{Operator: lang.OpSubtract, Operand: &lang.NumberLiteral{Value: -f}}
	}

	return &lang.NumberLiteral{Value: f}
}

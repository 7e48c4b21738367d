package lang

import (
	"context"
	"log/slog"
	"math"

	"github.com/ardnew/fns/log"
)

// Evaluate runs prog in a fresh environment configured by opts and returns
// the value of its last statement, or None for an empty program.
func Evaluate(ctx context.Context, prog *Program, opts ...Option) (Value, error) {
	o := makeOptions(opts...)

	env, err := o.environment()
	if err != nil {
		return nil, err
	}

	return env.evaluate(ctx, prog, o.logger)
}

// NewRootEnvironment returns the scope that Evaluate would run a program in,
// for callers that evaluate several programs against the same bindings.
func NewRootEnvironment(opts ...Option) (*Environment, error) {
	return makeOptions(opts...).environment()
}

// EvaluateString parses and evaluates source in a fresh environment.
func EvaluateString(ctx context.Context, source string, opts ...Option) (Value, error) {
	prog, err := ParseString(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	return Evaluate(ctx, prog, opts...)
}

// Evaluate runs prog in e, so bindings made by one program are visible to
// the next. Only WithLogger is consulted from opts.
//
// Statements that complete before a failing statement keep their effects.
func (e *Environment) Evaluate(
	ctx context.Context,
	prog *Program,
	opts ...Option,
) (Value, error) {
	return e.evaluate(ctx, prog, makeOptions(opts...).logger)
}

func (e *Environment) evaluate(
	ctx context.Context,
	prog *Program,
	logger log.Logger,
) (Value, error) {
	ev := &evaluator{env: e, logger: logger}

	var result Value = None{}

	for _, stmt := range prog.Statements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := ev.statement(ctx, stmt)
		if err != nil {
			logger.DebugContext(ctx, "evaluation failed", slog.Any("error", err))

			return nil, err
		}

		result = v
	}

	logger.TraceContext(ctx, "evaluation complete",
		slog.Int("statement_count", len(prog.Statements)),
		slog.String("result_kind", result.Kind().String()))

	return result, nil
}

type evaluator struct {
	env    *Environment
	logger log.Logger
}

func (ev *evaluator) statement(ctx context.Context, stmt Statement) (Value, error) {
	switch s := stmt.(type) {
	case *LetDeclaration:
		return ev.declare(ctx, s.Name, s.Value, false)

	case *ConstDeclaration:
		return ev.declare(ctx, s.Name, s.Value, true)

	case *ExpressionStatement:
		return ev.expression(ctx, s.Expr)

	default:
		return nil, runtimeError(ErrTypeMismatch, stmt.Pos(),
			"unsupported statement %T", stmt)
	}
}

// declare binds name in the current scope. Redeclaring a name replaces the
// earlier binding, constant or not.
func (ev *evaluator) declare(
	ctx context.Context,
	name string,
	expr Expression,
	constant bool,
) (Value, error) {
	v, err := ev.expression(ctx, expr)
	if err != nil {
		return nil, err
	}

	ev.env.Define(name, v, constant)

	ev.logger.TraceContext(ctx, "define",
		slog.String("name", name),
		slog.Bool("constant", constant),
		slog.Any("value", Inspector(v)))

	return v, nil
}

func (ev *evaluator) expression(ctx context.Context, expr Expression) (Value, error) {
	switch e := expr.(type) {
	case *NumberLiteral:
		return Number(e.Value), nil

	case *StringLiteral:
		return String(e.Value), nil

	case *BooleanLiteral:
		return Boolean(e.Value), nil

	case *NoneLiteral:
		return None{}, nil

	case *Identifier:
		v, ok := ev.env.Lookup(e.Name)
		if !ok {
			return nil, runtimeError(ErrUndefinedName, e.Position, "%q", e.Name)
		}

		return v, nil

	case *Unary:
		return ev.unary(ctx, e)

	case *Binary:
		return ev.binary(ctx, e)

	case *Assignment:
		return ev.assign(ctx, e)

	case *ObjectLiteral:
		return ev.object(ctx, e)

	case *MemberAccess:
		return ev.member(ctx, e)

	default:
		return nil, runtimeError(ErrTypeMismatch, expr.Pos(),
			"unsupported expression %T", expr)
	}
}

func (ev *evaluator) unary(ctx context.Context, e *Unary) (Value, error) {
	v, err := ev.expression(ctx, e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case OpNot:
		return Boolean(!Truthy(v)), nil

	case OpSubtract, OpAdd:
		n, ok := v.(Number)
		if !ok {
			return nil, runtimeError(ErrTypeMismatch, e.Position,
				"unary %s requires a number, got %s", e.Operator, v.Kind())
		}

		if e.Operator == OpSubtract {
			return -n, nil
		}

		return n, nil

	default:
		return nil, runtimeError(ErrTypeMismatch, e.Position,
			"unknown unary operator %s", e.Operator)
	}
}

func (ev *evaluator) binary(ctx context.Context, e *Binary) (Value, error) {
	left, err := ev.expression(ctx, e.Left)
	if err != nil {
		return nil, err
	}

	// Logical operators evaluate the right operand only when needed.
	switch e.Operator {
	case OpAnd:
		if !Truthy(left) {
			return Boolean(false), nil
		}

		return ev.truth(ctx, e.Right)

	case OpOr:
		if Truthy(left) {
			return Boolean(true), nil
		}

		return ev.truth(ctx, e.Right)
	}

	right, err := ev.expression(ctx, e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator {
	case OpEqual:
		return Boolean(Equal(left, right)), nil

	case OpNotEqual:
		return Boolean(!Equal(left, right)), nil

	case OpAdd:
		// Concatenation when both sides are strings.
		if ls, ok := left.(String); ok {
			if rs, ok := right.(String); ok {
				return ls + rs, nil
			}
		}
	}

	l, lok := left.(Number)
	r, rok := right.(Number)

	if !lok || !rok {
		return nil, runtimeError(ErrTypeMismatch, e.Position,
			"cannot apply %s to %s and %s", e.Operator, left.Kind(), right.Kind())
	}

	switch e.Operator {
	case OpAdd:
		return finite(e, l, r, l+r)
	case OpSubtract:
		return finite(e, l, r, l-r)
	case OpMultiply:
		return finite(e, l, r, l*r)
	case OpDivide:
		if r == 0 {
			return nil, runtimeError(ErrDivisionByZero, e.Position,
				"%s / 0", l)
		}

		return finite(e, l, r, l/r)
	case OpLess:
		return Boolean(l < r), nil
	case OpLessEqual:
		return Boolean(l <= r), nil
	case OpGreater:
		return Boolean(l > r), nil
	case OpGreaterEqual:
		return Boolean(l >= r), nil
	default:
		return nil, runtimeError(ErrTypeMismatch, e.Position,
			"unknown binary operator %s", e.Operator)
	}
}

// finite returns n, the result of e applied to l and r, unless it is
// infinite or NaN. fns has no literal for either.
func finite(e *Binary, l, r, n Number) (Value, error) {
	f := float64(n)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, runtimeError(ErrNumberRange, e.Position,
			"%s %s %s", l, e.Operator, r)
	}

	return n, nil
}

func (ev *evaluator) truth(ctx context.Context, expr Expression) (Value, error) {
	v, err := ev.expression(ctx, expr)
	if err != nil {
		return nil, err
	}

	return Boolean(Truthy(v)), nil
}

// assign checks the target before evaluating the new value, so a failed
// assignment has no side effects.
func (ev *evaluator) assign(ctx context.Context, e *Assignment) (Value, error) {
	constant, found := ev.env.IsConstant(e.Name)

	switch {
	case !found:
		return nil, runtimeError(ErrUndefinedName, e.Position, "%q", e.Name)
	case constant:
		return nil, runtimeError(ErrReassignConst, e.Position, "%q", e.Name)
	}

	v, err := ev.expression(ctx, e.Value)
	if err != nil {
		return nil, err
	}

	if err := ev.env.Assign(e.Name, v); err != nil {
		kind, _ := err.(*Error)

		return nil, runtimeError(kind, e.Position, "%q", e.Name)
	}

	ev.logger.TraceContext(ctx, "assign",
		slog.String("name", e.Name),
		slog.Any("value", Inspector(v)))

	return v, nil
}

func (ev *evaluator) object(ctx context.Context, e *ObjectLiteral) (Value, error) {
	entries := make([]Entry, len(e.Entries))

	for i, entry := range e.Entries {
		v, err := ev.expression(ctx, entry.Value)
		if err != nil {
			return nil, err
		}

		entries[i] = Entry{Key: entry.Key, Value: v}
	}

	return NewObject(entries...), nil
}

func (ev *evaluator) member(ctx context.Context, e *MemberAccess) (Value, error) {
	v, err := ev.expression(ctx, e.Object)
	if err != nil {
		return nil, err
	}

	obj, ok := v.(*Object)
	if !ok {
		return nil, runtimeError(ErrTypeMismatch, e.Position,
			"cannot read property %q of %s", e.Property, v.Kind())
	}

	prop, ok := obj.Get(e.Property)
	if !ok {
		return nil, runtimeError(ErrUndefinedKey, e.Position, "%q", e.Property)
	}

	return prop, nil
}

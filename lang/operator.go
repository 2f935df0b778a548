package lang

import (
	"log/slog"
	"math"
)

// Operator tables for the expression compiler. Every operator is a pure
// function over primitive values; operands are driven to primitives before
// dispatch, so entities, attributes, and thunks never reach these tables.

// evalUnary applies a unary operator to its evaluated operand.
// Negation and identity require a number; logical not requires a bool.
func evalUnary(op string, v Value) (Value, error) {
	switch op {
	case "-":
		n, ok := v.(Number)
		if !ok {
			return nil, errOperand(op, v)
		}

		return -n, nil

	case "+":
		n, ok := v.(Number)
		if !ok {
			return nil, errOperand(op, v)
		}

		return n, nil

	case "!":
		b, ok := v.(Bool)
		if !ok {
			return nil, errOperand(op, v)
		}

		return !b, nil

	default:
		return nil, ErrMalformedNode.With(slog.String("operator", op))
	}
}

// evalBinary applies an arithmetic or comparison operator to its evaluated
// operands.
//
// Addition is defined for number pairs and string pairs; the remaining
// arithmetic operators require numbers. Equality requires operands of the
// same primitive kind. Ordering requires numbers.
func evalBinary(op string, l, r Value) (Value, error) {
	switch op {
	case "+":
		if ln, ok := l.(Number); ok {
			rn, ok := r.(Number)
			if !ok {
				return nil, errOperands(op, l, r)
			}

			return ln + rn, nil
		}

		if ls, ok := l.(String); ok {
			rs, ok := r.(String)
			if !ok {
				return nil, errOperands(op, l, r)
			}

			return ls + rs, nil
		}

		return nil, errOperands(op, l, r)

	case "-", "*", "/", "%":
		ln, lok := l.(Number)
		rn, rok := r.(Number)

		if !lok || !rok {
			return nil, errOperands(op, l, r)
		}

		switch op {
		case "-":
			return ln - rn, nil

		case "*":
			return ln * rn, nil

		case "/":
			return ln / rn, nil

		default:
			return Number(math.Mod(float64(ln), float64(rn))), nil
		}

	case "==", "!=":
		eq, err := valueEqual(l, r)
		if err != nil {
			return nil, WrapError(err).With(slog.String("operator", op))
		}

		if op == "!=" {
			eq = !eq
		}

		return Bool(eq), nil

	case "<", "<=", ">", ">=":
		ln, lok := l.(Number)
		rn, rok := r.(Number)

		if !lok || !rok {
			return nil, errOperands(op, l, r)
		}

		switch op {
		case "<":
			return Bool(ln < rn), nil

		case "<=":
			return Bool(ln <= rn), nil

		case ">":
			return Bool(ln > rn), nil

		default:
			return Bool(ln >= rn), nil
		}

	default:
		return nil, ErrMalformedNode.With(slog.String("operator", op))
	}
}

// evalLogical applies a logical operator to its evaluated operands and
// returns the combined result. Both operands must be bools.
//
// Operands are evaluated eagerly by the caller, so neither operator
// short-circuits; only the combination happens here.
func evalLogical(op string, l, r Value) (Value, error) {
	lb, lok := l.(Bool)
	rb, rok := r.(Bool)

	if !lok || !rok {
		return nil, errOperands(op, l, r)
	}

	switch op {
	case "&&":
		return lb && rb, nil

	case "||":
		return lb || rb, nil

	default:
		return nil, ErrMalformedNode.With(slog.String("operator", op))
	}
}

// valueEqual compares two primitive values of the same kind.
func valueEqual(l, r Value) (bool, error) {
	switch lt := l.(type) {
	case String:
		rt, ok := r.(String)
		if !ok {
			return false, errOperands("==", l, r)
		}

		return lt == rt, nil

	case Number:
		rt, ok := r.(Number)
		if !ok {
			return false, errOperands("==", l, r)
		}

		return lt == rt, nil

	case Bool:
		rt, ok := r.(Bool)
		if !ok {
			return false, errOperands("==", l, r)
		}

		return lt == rt, nil

	default:
		return false, errOperands("==", l, r)
	}
}

func errOperand(op string, v Value) *Error {
	err := ErrTypeMismatch.With(
		slog.String("operator", op),
		slog.String("operand", v.Kind().String()),
	)

	if u, ok := v.(Undefined); ok && u.Name != "" {
		err = err.With(slog.String("name", u.Name))
	}

	return err
}

func errOperands(op string, l, r Value) *Error {
	err := ErrTypeMismatch.With(
		slog.String("operator", op),
		slog.String("left", l.Kind().String()),
		slog.String("right", r.Kind().String()),
	)

	for _, v := range []Value{l, r} {
		if u, ok := v.(Undefined); ok && u.Name != "" {
			err = err.With(slog.String("name", u.Name))
		}
	}

	return err
}

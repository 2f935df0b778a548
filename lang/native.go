package lang

import (
	"log/slog"
	"strconv"
	"unicode/utf8"
)

// CoreBuiltins returns the locale-independent native functions.
// Callers chain them after a resource so entries shadow builtins:
//
//	ctx := res.Context(globals, lang.CoreBuiltins())
//
// Locale-dependent natives, such as plural category selection, live
// outside this package and join the same chain.
func CoreBuiltins() Builtins {
	return Builtins{
		"len":    nativeLen,
		"number": nativeNumber,
		"string": nativeString,
	}
}

// arity checks the argument count of a native call.
func arity(name string, args []Value, want int) error {
	if len(args) == want {
		return nil
	}
	return ErrTypeMismatch.With(
		slog.String("native", name),
		slog.Int("want", want),
		slog.Int("got", len(args)),
	)
}

// nativeLen returns the number of characters in its string argument.
func nativeLen(args []Value) (Value, error) {
	if err := arity("len", args, 1); err != nil {
		return nil, err
	}
	s, ok := args[0].(String)
	if !ok {
		return nil, ErrTypeMismatch.With(
			slog.String("native", "len"),
			slog.String("want", "string"),
			slog.String("got", describe(args[0])),
		)
	}
	return Number(utf8.RuneCountInString(string(s))), nil
}

// nativeNumber converts its argument to a number. Booleans convert
// to 0 and 1; strings parse as decimal.
func nativeNumber(args []Value) (Value, error) {
	if err := arity("number", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case Number:
		return v, nil
	case Bool:
		if v {
			return Number(1), nil
		}
		return Number(0), nil
	case String:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, ErrTypeMismatch.Wrap(err).With(
				slog.String("native", "number"),
				slog.String("got", string(v)),
			)
		}
		return Number(f), nil
	default:
		return nil, ErrTypeMismatch.With(
			slog.String("native", "number"),
			slog.String("got", describe(args[0])),
		)
	}
}

// nativeString converts its primitive argument to text.
func nativeString(args []Value) (Value, error) {
	if err := arity("string", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case String:
		return v, nil
	case Number:
		return String(v.String()), nil
	case Bool:
		if v {
			return String("true"), nil
		}
		return String("false"), nil
	default:
		return nil, ErrTypeMismatch.With(
			slog.String("native", "string"),
			slog.String("got", describe(args[0])),
		)
	}
}

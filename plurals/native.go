package plurals

import (
	"log/slog"
	"math"

	"github.com/ardnew/lent/lang"
)

// Builtin returns the native plural macro for a language tag, for
// chaining into a resolution context:
//
//	ctx := res.Context(globals, plurals.Builtin("pl"), lang.CoreBuiltins())
//
// The macro takes one number and returns its category name, so hash
// selectors can key branches by plural form. The language binds when
// the chain is built; natives see only their arguments.
func Builtin(tag string) lang.Builtins {
	rule := ForLanguage(tag)

	return lang.Builtins{
		"plural": func(args []lang.Value) (lang.Value, error) {
			if len(args) != 1 {
				return nil, lang.ErrTypeMismatch.With(
					slog.String("native", "plural"),
					slog.Int("want", 1),
					slog.Int("got", len(args)),
				)
			}

			n, ok := args[0].(lang.Number)
			if !ok {
				return nil, lang.ErrTypeMismatch.With(
					slog.String("native", "plural"),
					slog.String("want", "number"),
					slog.String("got", args[0].Kind().String()),
				)
			}

			// Fractional counts take the catch-all category.
			f := float64(n)
			if f != math.Trunc(f) {
				return lang.String(Other), nil
			}

			return lang.String(rule(int(f))), nil
		},
	}
}

package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/lent/lang"
)

// nativeSignatures lists the parameter names of the native functions bound
// into every session context: the core natives plus the plural rule of the
// session locale.
var nativeSignatures = map[string][]string{
	"plural": {"count"},
	"len":    {"string"},
	"number": {"value"},
	"string": {"value"},
}

// nativeNames returns the names of all native functions in sorted order.
func nativeNames() []string {
	return slices.Sorted(maps.Keys(nativeSignatures))
}

// Parameter hint styles; the dim text itself reuses hintStyle.
var (
	hintNameStyle = fg("6").Bold(true)
	hintArgStyle  = fg("11").Bold(true)
)

// callSite locates the cursor within a call's argument list.
type callSite struct {
	name   string // macro or native being called
	arg    int    // argument the cursor is on, zero-based
	inArgs bool   // cursor is between the parens
}

// callAt reports whether the cursor sits inside the argument list of a
// call, and if so which call and which argument. The backward scan tracks
// close parens so a nested call attributes the cursor to the innermost
// unclosed paren.
func callAt(input string, cursor int) callSite {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Find the innermost unclosed '(' left of the cursor.
	depth := 0
	open := -1

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}
	}

	if open < 0 {
		return callSite{}
	}

	// The identifier immediately before the paren names the call.
	start := open

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !identRune(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return callSite{}
	}

	// Top-level commas between the paren and the cursor count arguments.
	index := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				index++
			}
		}
	}

	return callSite{name: name, arg: index, inArgs: true}
}

// identRune reports whether r can appear in a macro or native identifier.
func identRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// signatureParams returns the parameter names of the named callable. Macros
// in the loaded sources shadow natives, matching the lookup order of the
// session context.
func signatureParams(res *lang.Resource, name string) ([]string, bool) {
	if macro, ok := res.Macro(name); ok {
		return macro.Params(), true
	}

	params, ok := nativeSignatures[name]

	return params, ok
}

// signatureHint renders "name(a, b, c)" with the argument under the
// cursor highlighted.
func signatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(hintNameStyle.Render(name))
	b.WriteString(hintStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(hintStyle.Render(", "))
		}

		style := hintStyle
		if i == current {
			style = hintArgStyle
		}

		b.WriteString(style.Render(param))
	}

	b.WriteString(hintStyle.Render(")"))

	return b.String()
}

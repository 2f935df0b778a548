package repl

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/lent/lang"
)

// cmdNames lists the command-mode commands, for completion.
var cmdNames = []string{
	"help", "list", "bindings",
	"set", "global", "locale", "load",
	"edit", "clear", "quit",
}

// boundaryRunes are the word delimiters for completion: whitespace, the
// attribute accessor colon, binding sigils, and expression punctuation.
// Identifiers never contain hyphens, so '-' always binds as the
// arithmetic operator.
const boundaryRunes = " \t.()[]+-*/%<>=!&|,?:;$@"

func isBoundary(r rune) bool {
	return strings.ContainsRune(boundaryRunes, r)
}

// wordAt returns the word under the cursor and its byte bounds within
// input. The word is empty when the cursor sits on a boundary: after a
// space, between accessors, at the start of the line.
func wordAt(input string, cursor int) (word string, start, end int) {
	start = min(cursor, len(input))
	end = start

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isBoundary(r) {
			break
		}

		start -= size
	}

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// attributeOwner returns the entity identifier preceding a '::' accessor
// immediately before the current word. For input "user::gen" with the word
// "gen", the owner is "user". Returns "" when the word is not an attribute
// position.
func attributeOwner(input string, wordStart int) string {
	prefix, ok := strings.CutSuffix(input[:wordStart], "::")
	if !ok {
		return ""
	}

	// Walk backward over the owner identifier.
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if isBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// bindingSigil returns the '$' or '@' sigil immediately preceding the
// current word, or zero when the word is not a binding position.
func bindingSigil(input string, wordStart int) rune {
	r, _ := utf8.DecodeLastRuneInString(input[:wordStart])
	if r == '$' || r == '@' {
		return r
	}

	return 0
}

// entryCandidates returns the completion candidates for a top-level word:
// every entry identifier in the loaded sources plus the native functions.
func (m model) entryCandidates() []string {
	names := make([]string, 0, m.res.Len())

	for id := range m.res.Entries() {
		names = append(names, id)
	}

	return append(names, nativeNames()...)
}

// attributeCandidates returns the attribute names of the named entity.
func (m model) attributeCandidates(owner string) []string {
	ent, ok := m.res.Entity(owner)
	if !ok {
		return nil
	}

	var names []string

	for attr := range ent.Attributes() {
		names = append(names, attr.ID())
	}

	return names
}

// scanWord computes the completion state for the word under the cursor:
// ranked fuzzy matches, the backing candidate list, and the word's byte
// bounds. An empty word completes to nothing at the top level, keeping
// the hint line visible; right after a '::' accessor or a binding sigil
// it instead offers every candidate, so the user can browse.
func (m model) scanWord() (fuzzy.Matches, []string, int, int) {
	input := m.input.Value()

	word, start, end := wordAt(input, m.input.Position())

	var (
		candidates []string
		browse     bool
	)

	if m.mode == modeCmd {
		candidates = cmdNames
	} else {
		owner := attributeOwner(input, start)
		sigil := bindingSigil(input, start)

		switch {
		case owner != "":
			candidates = m.attributeCandidates(owner)
		case sigil == '$':
			candidates = slices.Sorted(maps.Keys(m.vars))
		case sigil == '@':
			candidates = slices.Sorted(maps.Keys(m.globals))
		default:
			candidates = m.entryCandidates()
		}

		browse = owner != "" || sigil != 0
	}

	if len(candidates) == 0 {
		return nil, nil, start, end
	}

	if word == "" {
		if !browse {
			return nil, nil, start, end
		}

		all := make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			all[i] = fuzzy.Match{Str: c, Index: i}
		}

		return all, candidates, start, end
	}

	return fuzzy.Find(word, candidates), candidates, start, end
}

// Highlight styles for matched characters within a candidate.
var (
	matchStyle         = suggestionStyle.Bold(true)
	selectedMatchStyle = selectedStyle.Bold(true)
)

// candidateBar builds the single-line completion bar, ellipsized to
// fit the given terminal width. Each candidate renders with its matched
// characters highlighted; the one under the tab cursor uses the selected
// style.
func candidateBar(
	matches fuzzy.Matches,
	picked int,
	cycling bool,
	width int,
	callable func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		cell := candidateCell(match, cycling && i == picked, callable)

		need := lipgloss.Width(cell)
		if i > 0 {
			need += lipgloss.Width(sep)
		}

		// Keep room for the ellipsis when more candidates follow.
		if i > 0 && used+need+reserve > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(cell)

		used += need
	}

	return b.String()
}

// candidateCell renders one candidate with its matched characters
// highlighted. Callables display a "()" suffix in the bar only; completion
// inserts the bare name.
func candidateCell(
	match fuzzy.Match,
	selected bool,
	callable func(string) bool,
) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		style := base
		if slices.Contains(match.MatchedIndexes, i) {
			style = highlight
		}

		b.WriteString(style.Render(string(r)))
	}

	if callable != nil && callable(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// entryPreview summarizes an entry for the candidate bar and entry list:
// macros show their parameter list, entities what they carry.
func entryPreview(v lang.Value) string {
	switch t := v.(type) {
	case *lang.Macro:
		return "(" + strings.Join(t.Params(), ", ") + ")"

	case *lang.Entity:
		attrs := 0
		for range t.Attributes() {
			attrs++
		}

		switch {
		case t.HasValue() && attrs > 0:
			return fmt.Sprintf("value +%d attrs", attrs)

		case t.HasValue():
			return "value"

		case attrs > 0:
			return fmt.Sprintf("%d attrs", attrs)

		default:
			return "<empty>"
		}

	default:
		return ""
	}
}

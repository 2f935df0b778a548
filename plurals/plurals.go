// Package plurals selects CLDR plural categories for counts, so hash
// entities can key their branches by category:
//
//	<mail[plural($n)] { one: "One message", *other: "{ $n } messages" }>
//
// Rules cover the major language families, keyed by the primary
// subtag of a BCP 47 tag; unknown tags fall back to a generic rule.
package plurals

import "strings"

// Rule maps a count to the plural category its language uses.
type Rule func(n int) string

// CLDR plural categories. Each rule returns a subset; Other is the
// catch-all every language has.
const (
	Zero  = "zero"
	One   = "one"
	Two   = "two"
	Few   = "few"
	Many  = "many"
	Other = "other"
)

// Categories lists every category in CLDR order.
var Categories = []string{Zero, One, Two, Few, Many, Other}

// ForLanguage returns the rule for a BCP 47 tag. Only the primary
// subtag matters: "pt-BR" and "pt" share one rule. Unknown tags get
// the fallback rule.
func ForLanguage(tag string) Rule {
	switch primary(tag) {
	case "en":
		return english

	case "pl", "ru", "cs", "uk", "hr", "sr", "sk", "sl", "bg":
		return slavic

	case "fr", "it", "pt":
		return romance

	case "es":
		return spanish

	case "de", "nl", "sv", "no", "da", "is":
		return germanic

	case "ja", "zh", "ko", "th", "vi", "id", "ms":
		return invariant

	case "ar":
		return arabic

	default:
		return fallback
	}
}

// Forms reports which categories the tag's rule can return, in CLDR
// order. Useful for checking that a hash covers its language.
func Forms(tag string) []string {
	rule := ForLanguage(tag)

	seen := make(map[string]bool)
	for _, n := range probes {
		seen[rule(n)] = true
	}

	var forms []string

	for _, cat := range Categories {
		if seen[cat] {
			forms = append(forms, cat)
		}
	}

	return forms
}

// probes trigger every category of every shipped rule.
var probes = []int{0, 1, 2, 3, 4, 5, 10, 11, 12, 13, 14, 20, 21, 22, 100, 1000, 1000000}

// primary extracts the lowercase primary subtag of a BCP 47 tag.
func primary(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))

	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}

	return tag
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

// english uses a dedicated zero so resources can address an empty
// count directly; a hash without a zero branch falls back as usual.
func english(n int) string {
	switch {
	case n == 0:
		return Zero

	case abs(n) == 1:
		return One
	}

	return Other
}

// slavic covers Polish, Russian, Czech, and kin: a 2-4 paucal except
// the teens, many otherwise.
func slavic(n int) string {
	if n == 0 {
		return Zero
	}

	a := abs(n)
	if a == 1 {
		return One
	}

	mod10, mod100 := a%10, a%100
	if mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14) {
		return Few
	}

	return Many
}

// romance treats both 0 and 1 as singular; French, Italian,
// Portuguese.
func romance(n int) string {
	if n == 0 || abs(n) == 1 {
		return One
	}

	if abs(n) >= 1000000 {
		return Many
	}

	return Other
}

// spanish is romance without the singular zero.
func spanish(n int) string {
	if abs(n) == 1 {
		return One
	}

	if abs(n) >= 1000000 {
		return Many
	}

	return Other
}

func germanic(n int) string {
	if abs(n) == 1 {
		return One
	}

	return Other
}

// invariant serves languages without grammatical number.
func invariant(int) string {
	return Other
}

// arabic uses all six categories: dual at 2, a 3-10 paucal, and an
// 11-99 many bucket, both mod 100.
func arabic(n int) string {
	switch a := abs(n); {
	case n == 0:
		return Zero

	case a == 1:
		return One

	case a == 2:
		return Two

	case a%100 >= 3 && a%100 <= 10:
		return Few

	case a%100 >= 11 && a%100 <= 99:
		return Many
	}

	return Other
}

// fallback distinguishes one, a 2-4 paucal, and a 5-19 many bucket.
// It serves tags with no dedicated rule.
func fallback(n int) string {
	switch a := abs(n); {
	case n == 0:
		return Zero

	case a == 1:
		return One

	case a >= 2 && a <= 4:
		return Few

	case a > 4 && a < 20:
		return Many
	}

	return Other
}

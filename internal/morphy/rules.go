package morphy

import "github.com/Adithya-Monish-Kumar-K/Lexical-Query-Platform/internal/wntypes"

// Rule is one detachment: strip Suffix and append Replacement.
type Rule struct {
	Suffix      string
	Replacement string
}

// Rule tables in the order they are tried.
var (
	nounRules = []Rule{
		{"s", ""},
		{"ses", "s"},
		{"xes", "x"},
		{"zes", "z"},
		{"ches", "ch"},
		{"shes", "sh"},
		{"men", "man"},
		{"ies", "y"},
	}
	verbRules = []Rule{
		{"s", ""},
		{"ies", "y"},
		{"es", "e"},
		{"es", ""},
		{"ed", "e"},
		{"ed", ""},
		{"ing", "e"},
		{"ing", ""},
	}
	adjRules = []Rule{
		{"er", ""},
		{"er", "e"},
		{"est", ""},
		{"est", "e"},
	}
)

// RulesFor returns the detachment rules for pos.
func RulesFor(pos wntypes.Pos) []Rule {
	switch pos {
	case wntypes.Noun:
		return nounRules
	case wntypes.Verb:
		return verbRules
	default:
		return adjRules
	}
}

// apply returns the candidate lemma for surface, or false when the suffix
// does not match. With an empty replacement a trailing doubled letter is
// collapsed, so "runn" becomes "run".
func (r Rule) apply(surface string) (string, bool) {
	if len(surface) < len(r.Suffix) || surface[len(surface)-len(r.Suffix):] != r.Suffix {
		return "", false
	}
	candidate := surface[:len(surface)-len(r.Suffix)] + r.Replacement
	if r.Replacement == "" {
		runes := []rune(candidate)
		if n := len(runes); n >= 2 && runes[n-1] == runes[n-2] {
			candidate = string(runes[:n-1])
		}
	}
	return candidate, true
}

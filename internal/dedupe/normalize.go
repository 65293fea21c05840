// Package dedupe finds probable duplicate franchisee records using
// string-similarity heuristics across several identity fields.
package dedupe

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

var punctReplacer = strings.NewReplacer(
	".", "",
	",", "",
	"-", "",
	"_", "",
)

// NormalizeName standardizes a name or identifier for comparison:
//  1. Trim and lowercase
//  2. Fold diacritics ("Pérez" -> "perez")
//  3. Strip punctuation (periods, commas, dashes, underscores)
//  4. Collapse runs of whitespace
//
// The same normalization applies to tax IDs, so "B-1234567" and "b1234567"
// compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}

	name = punctReplacer.Replace(name)
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

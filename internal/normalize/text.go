// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	wordSplit    = regexp.MustCompile(`[^a-z0-9]+`)
	spaceRun     = regexp.MustCompile(`\s+`)
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Fold lowercases s, strips accents and collapses whitespace, so "Sautéed
// Spinach" and "sauteed  spinach" compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(folded, " "))
}

// Words splits folded text into alphanumeric words.
func Words(s string) []string {
	raw := wordSplit.Split(Fold(s), -1)
	words := raw[:0]
	for _, w := range raw {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// HasTerm reports whether term occurs in text starting at a word boundary.
// "oil" matches "Oil, olive" and "oils" but not "boiled"; "bread" matches
// "breaded". Both arguments are folded first.
func HasTerm(text, term string) bool {
	text, term = Fold(text), Fold(term)
	if term == "" {
		return false
	}
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		i += from
		if i == 0 {
			return true
		}
		prev, _ := utf8.DecodeLastRuneInString(text[:i])
		if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
			return true
		}
		from = i + 1
	}
	return false
}

// HasAnyTerm returns the first term that HasTerm finds in text.
func HasAnyTerm(text string, terms []string) (string, bool) {
	for _, t := range terms {
		if HasTerm(text, t) {
			return t, true
		}
	}
	return "", false
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[Fold(it)] = true
	}
	return set
}

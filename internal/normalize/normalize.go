// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns detected food names into canonical queries.
//
// The Normalizer is built once from the alignment configuration and is safe
// for concurrent use. It never guesses plurals: only whitelisted plural
// words are singularized, and configured compound terms ("sweet potato")
// are kept whole so they never collapse into a different food.
package normalize

import (
	"regexp"
	"strings"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

var qualifierPattern = regexp.MustCompile(`\([^()]*\)`)

// Normalizer cleans detected names into NormalizedQuery values.
type Normalizer struct {
	cfg         *types.AlignmentConfig
	compounds   *compoundIndex
	plurals     map[string]string
	pluralOf    map[string]string
	aliases     map[string]string
	descriptors map[string]bool
	stopWords   map[string]bool
}

// New builds a Normalizer from cfg.
func New(cfg *types.AlignmentConfig) *Normalizer {
	n := &Normalizer{
		cfg:         cfg,
		compounds:   newCompoundIndex(cfg.Normalizer.Compounds),
		plurals:     make(map[string]string, len(cfg.Normalizer.Plurals)),
		pluralOf:    make(map[string]string, len(cfg.Normalizer.Plurals)),
		aliases:     make(map[string]string, len(cfg.Normalizer.MethodAliases)),
		descriptors: toSet(cfg.Normalizer.Descriptors),
		stopWords:   toSet(cfg.Normalizer.StopWords),
	}
	for p, s := range cfg.Normalizer.Plurals {
		p, s = Fold(p), Fold(s)
		n.plurals[p] = s
		if prev, ok := n.pluralOf[s]; !ok || p < prev {
			n.pluralOf[s] = p
		}
	}
	for alias, label := range cfg.Normalizer.MethodAliases {
		n.aliases[Fold(alias)] = Fold(label)
	}
	return n
}

// Normalize cleans name into a canonical query. Ignored names return early
// with Ignored set and no tokens.
func (n *Normalizer) Normalize(name string) types.NormalizedQuery {
	folded := Fold(name)
	q := types.NormalizedQuery{Raw: name}

	for _, rule := range n.cfg.Normalizer.Ignore {
		if containsPhrase(folded, rule.Term) {
			q.CanonicalName = folded
			q.Ignored = true
			q.IgnoreReason = rule.Reason
			return q
		}
	}

	text := collapseQualifiers(folded)
	text = n.extractHints(text, &q)

	words := Words(text)

	// Form and method are captured before descriptors are stripped so a
	// method word is never lost with the rest of the noise.
	kept := words[:0:0]
	for _, w := range words {
		if label, ok := n.aliases[w]; ok {
			n.applyForm(&q, label)
			continue
		}
		if n.descriptors[w] || n.stopWords[w] {
			continue
		}
		kept = append(kept, w)
	}

	q.Terms = n.compounds.group(kept, n.singular)
	q.Tokens = termTokens(q.Terms)
	q.CanonicalName = strings.Join(q.Terms, " ")
	q.Classes = n.classify(q)
	return q
}

// ForFood normalizes f.Name and lets an explicit f.Form override the form
// inferred from the name.
func (n *Normalizer) ForFood(f types.DetectedFood) types.NormalizedQuery {
	q := n.Normalize(f.Name)
	if q.Ignored || strings.TrimSpace(f.Form) == "" {
		return q
	}
	form := Fold(f.Form)
	if label, ok := n.aliases[form]; ok {
		form = label
	}
	q.Form, q.Method = "", ""
	n.applyForm(&q, form)
	return q
}

// Tokens derives the token set of a catalogue name: folded words without
// stop words, singularized through the whitelist. Method and descriptor
// words are kept because they distinguish catalogue entries.
func (n *Normalizer) Tokens(name string) []string {
	words := Words(name)
	tokens := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if n.stopWords[w] {
			continue
		}
		w = n.singular(w)
		if !seen[w] {
			seen[w] = true
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// IsStopWord reports whether w is dropped during tokenization.
func (n *Normalizer) IsStopWord(w string) bool {
	return n.stopWords[Fold(w)]
}

// Singular returns the whitelisted singular of w, or w itself.
func (n *Normalizer) Singular(w string) string {
	return n.singular(Fold(w))
}

// Plural returns the whitelisted plural of a singular word, if any.
func (n *Normalizer) Plural(w string) (string, bool) {
	p, ok := n.pluralOf[Fold(w)]
	return p, ok
}

// MethodLabel resolves a form or method word through the alias table.
func (n *Normalizer) MethodLabel(word string) string {
	w := Fold(word)
	if label, ok := n.aliases[w]; ok {
		return label
	}
	return w
}

func (n *Normalizer) singular(w string) string {
	if s, ok := n.plurals[w]; ok {
		return s
	}
	return w
}

func (n *Normalizer) applyForm(q *types.NormalizedQuery, label string) {
	if label == types.FormRaw {
		if q.Form == "" {
			q.Form = types.FormRaw
		}
		return
	}
	if q.Method == "" {
		q.Method = label
		q.Form = label
	}
}

func (n *Normalizer) extractHints(text string, q *types.NormalizedQuery) string {
	for _, h := range n.cfg.Normalizer.Hints {
		pattern := Fold(h.Pattern)
		if pattern == "" || !containsPhrase(text, pattern) {
			continue
		}
		if q.Hints == nil {
			q.Hints = make(map[string]string)
		}
		if _, set := q.Hints[h.Key]; !set {
			q.Hints[h.Key] = h.Value
		}
		text = removePhrase(text, pattern)
	}
	return text
}

// collapseQualifiers drops repeated bracketed qualifiers: "(raw) (raw)"
// becomes "(raw)".
func collapseQualifiers(s string) string {
	seen := make(map[string]bool)
	out := qualifierPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := strings.Join(Words(m), " ")
		if seen[key] {
			return ""
		}
		seen[key] = true
		return m
	})
	return strings.TrimSpace(spaceRun.ReplaceAllString(out, " "))
}

// containsPhrase reports whether phrase occurs in text as whole words.
func containsPhrase(text, phrase string) bool {
	hay := " " + strings.Join(Words(text), " ") + " "
	needle := " " + strings.Join(Words(phrase), " ") + " "
	return strings.TrimSpace(needle) != "" && strings.Contains(hay, needle)
}

func removePhrase(text, phrase string) string {
	words := Words(text)
	target := Words(phrase)
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		if i+len(target) <= len(words) && strings.Join(words[i:i+len(target)], " ") == strings.Join(target, " ") {
			i += len(target)
			continue
		}
		out = append(out, words[i])
		i++
	}
	return strings.Join(out, " ")
}

func termTokens(terms []string) []string {
	var tokens []string
	for _, t := range terms {
		tokens = append(tokens, strings.Fields(t)...)
	}
	return tokens
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package variants expands a normalized query into the ordered list of
// search strings tried against the candidate store.
package variants

import (
	"strings"

	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Generator produces query variants. Safe for concurrent use.
type Generator struct {
	norm            *normalize.Normalizer
	synonyms        map[string][]string
	pluralPreferred map[types.ClassIntent]bool
}

// New builds a Generator from cfg. The normalizer supplies the plural
// whitelist.
func New(cfg *types.AlignmentConfig, norm *normalize.Normalizer) *Generator {
	g := &Generator{
		norm:            norm,
		synonyms:        make(map[string][]string, len(cfg.Variants.Synonyms)),
		pluralPreferred: make(map[types.ClassIntent]bool),
	}
	for name, syns := range cfg.Variants.Synonyms {
		g.synonyms[normalize.Fold(name)] = syns
	}
	for _, c := range cfg.Variants.PluralPreferredClasses {
		g.pluralPreferred[c] = true
	}
	return g
}

// Generate returns deduplicated query strings in the order they should be
// tried. For classes whose catalogue names are conventionally plural the
// plural form comes first.
func (g *Generator) Generate(q types.NormalizedQuery) []string {
	if q.CanonicalName == "" {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = normalize.Fold(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	plural, hasPlural := g.pluralForm(q)
	preferPlural := hasPlural && g.pluralPreferred[q.PrimaryClass()]

	if preferPlural {
		add(plural)
	}
	add(q.CanonicalName)
	if q.IsCooked() {
		add(q.CanonicalName + " " + q.Method)
	}
	for _, syn := range g.synonyms[q.CanonicalName] {
		add(syn)
	}
	if hasPlural && !preferPlural {
		add(plural)
	}

	// A compound term searched alone keeps "sweet potato" from being
	// reduced to "potato" by store-side tokenization.
	if len(q.Terms) > 1 {
		for _, term := range q.Terms {
			if strings.Contains(term, " ") {
				add(term)
				for _, syn := range g.synonyms[term] {
					add(syn)
				}
			}
		}
	}
	return out
}

// pluralForm pluralizes the last term of the query when the whitelist
// knows its plural.
func (g *Generator) pluralForm(q types.NormalizedQuery) (string, bool) {
	if len(q.Terms) == 0 {
		return "", false
	}
	last := q.Terms[len(q.Terms)-1]
	words := strings.Fields(last)
	p, ok := g.norm.Plural(words[len(words)-1])
	if !ok {
		return "", false
	}
	words[len(words)-1] = p
	terms := append(append([]string{}, q.Terms[:len(q.Terms)-1]...), strings.Join(words, " "))
	return strings.Join(terms, " "), true
}

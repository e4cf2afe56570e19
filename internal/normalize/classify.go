// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// classify returns every configured class whose keywords match q, in
// configuration order, which is also the conflict priority.
func (n *Normalizer) classify(q types.NormalizedQuery) []types.ClassIntent {
	tokens := make(map[string]bool, len(q.Tokens))
	for _, t := range q.Tokens {
		tokens[t] = true
	}
	terms := make(map[string]bool, len(q.Terms))
	for _, t := range q.Terms {
		terms[t] = true
	}

	var classes []types.ClassIntent
	for _, rule := range n.cfg.Classes {
		for _, kw := range rule.Keywords {
			if n.keywordMatches(kw, tokens, terms, q.CanonicalName) {
				classes = append(classes, rule.Name)
				break
			}
		}
	}
	return classes
}

func (n *Normalizer) keywordMatches(keyword string, tokens, terms map[string]bool, canonical string) bool {
	words := Words(keyword)
	switch len(words) {
	case 0:
		return false
	case 1:
		return tokens[n.singular(words[0])]
	}
	phrase := strings.Join(words, " ")
	return terms[phrase] || containsPhrase(canonical, phrase)
}

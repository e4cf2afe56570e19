// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "strings"

// compoundIndex recognizes multi-word food terms by greedy longest match.
type compoundIndex struct {
	phrases map[string]string
	maxLen  int
}

func newCompoundIndex(compounds map[string]string) *compoundIndex {
	idx := &compoundIndex{phrases: make(map[string]string, len(compounds)), maxLen: 1}
	for surface, canonical := range compounds {
		key := strings.Join(Words(surface), " ")
		if key == "" {
			continue
		}
		idx.phrases[key] = strings.Join(Words(canonical), " ")
		if n := len(strings.Fields(key)); n > idx.maxLen {
			idx.maxLen = n
		}
	}
	return idx
}

// group folds words into terms. Recognized phrases become one canonical
// term; every other word is passed to single unchanged.
func (c *compoundIndex) group(words []string, single func(string) string) []string {
	terms := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		n := c.maxLen
		if rem := len(words) - i; n > rem {
			n = rem
		}
		matched := false
		for ; n >= 2; n-- {
			if canonical, ok := c.phrases[strings.Join(words[i:i+n], " ")]; ok {
				terms = append(terms, canonical)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			terms = append(terms, single(words[i]))
			i++
		}
	}
	return terms
}

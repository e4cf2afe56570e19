// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package guardrail removes structurally wrong candidates before scoring.
//
// Each class maps to blocked name terms. A candidate whose name contains a
// blocked term for any of the query's classes is dropped outright; no score
// or bonus can bring it back.
package guardrail

import (
	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Removal records one candidate dropped by a guardrail.
type Removal struct {
	Candidate types.CandidateEntry
	Class     types.ClassIntent
	Term      string
}

// Filter applies class guardrails. Safe for concurrent use.
type Filter struct {
	blocked map[types.ClassIntent][]string
}

// New builds a Filter from the configured guardrail lists.
func New(cfg *types.AlignmentConfig) *Filter {
	return &Filter{blocked: cfg.Guardrails}
}

// Apply splits candidates into those allowed for q and those removed.
// Order is preserved in both slices.
func (f *Filter) Apply(q types.NormalizedQuery, candidates []types.CandidateEntry) ([]types.CandidateEntry, []Removal) {
	rules := f.rules(q)
	if len(rules) == 0 {
		return candidates, nil
	}

	kept := make([]types.CandidateEntry, 0, len(candidates))
	var removed []Removal
	for _, c := range candidates {
		if r, blocked := match(c, rules); blocked {
			r.Candidate = c
			removed = append(removed, r)
			continue
		}
		kept = append(kept, c)
	}
	return kept, removed
}

// Allowed reports whether c passes every guardrail for q.
func (f *Filter) Allowed(q types.NormalizedQuery, c types.CandidateEntry) bool {
	_, blocked := match(c, f.rules(q))
	return !blocked
}

// rules collects blocked terms for every class of q. A term the query
// itself names ("olive oil") is not blocked for that query.
func (f *Filter) rules(q types.NormalizedQuery) []Removal {
	var rules []Removal
	for _, class := range q.Classes {
		for _, term := range f.blocked[class] {
			if normalize.HasTerm(q.CanonicalName, term) {
				continue
			}
			rules = append(rules, Removal{Class: class, Term: term})
		}
	}
	return rules
}

func match(c types.CandidateEntry, rules []Removal) (Removal, bool) {
	for _, r := range rules {
		if normalize.HasTerm(c.Name, r.Term) {
			return r, true
		}
	}
	return Removal{}, false
}

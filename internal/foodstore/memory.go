// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package foodstore

import (
	"context"
	"sort"

	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// MemoryStore searches a fixed slice of entries. Entries match when their
// name contains every query word at a word boundary; when none do, entries
// matching any word are returned, most matched words first.
type MemoryStore struct {
	entries []types.CandidateEntry
}

// NewMemoryStore returns a store over a copy of entries.
func NewMemoryStore(entries []types.CandidateEntry) *MemoryStore {
	return &MemoryStore{entries: append([]types.CandidateEntry(nil), entries...)}
}

// Search implements Store.
func (m *MemoryStore) Search(ctx context.Context, query string, limit int) ([]types.CandidateEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := normalize.Words(query)
	if len(words) == 0 {
		return nil, nil
	}

	type hit struct {
		entry   types.CandidateEntry
		matched int
	}
	var all, some []hit
	for _, e := range m.entries {
		n := 0
		for _, w := range words {
			if normalize.HasTerm(e.Name, w) {
				n++
			}
		}
		switch {
		case n == len(words):
			all = append(all, hit{e, n})
		case n > 0:
			some = append(some, hit{e, n})
		}
	}

	hits := all
	if len(hits) == 0 {
		hits = some
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].matched > hits[j].matched })
	}

	out := make([]types.CandidateEntry, 0, len(hits))
	for _, h := range hits {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, h.entry)
	}
	return out, nil
}

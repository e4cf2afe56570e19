// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package align

import (
	"context"

	"github.com/pdiddy/nutrition-align/internal/score"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// emptyPoolStage records whether anything survived retrieval and
// guardrails. It never accepts; on an empty pool the pool-based stages skip
// and only composite decomposition and the fallback remain.
type emptyPoolStage struct{}

func (emptyPoolStage) ID() types.StageID { return types.StageEmptyPool }

func (emptyPoolStage) Attempt(_ context.Context, in *Input) Outcome {
	out := Outcome{PoolSize: in.Pools.Size()}
	if in.Empty() {
		out.Note = types.NoMatchEmptyPool
	}
	return out
}

// directRawStage matches curated entries without cooked markers. It does
// not apply to cooked queries; a raw entry is never the answer for a
// cooked food without conversion.
type directRawStage struct{ *toolkit }

func (directRawStage) ID() types.StageID { return types.StageDirectRaw }

func (s directRawStage) Attempt(_ context.Context, in *Input) Outcome {
	switch {
	case in.Empty():
		return skip(skipEmptyPool)
	case in.Query.IsCooked():
		return skip("cooked query")
	}

	if len(in.Pools.Curated) == 0 {
		return skip("no curated candidates")
	}

	pool, cooked := s.splitByForm(in.Pools.Curated)
	best, rejected := s.pick(in.Query, pool, s.threshold(in.Query))
	out := Outcome{PoolSize: len(in.Pools.Curated), Rejected: append(rejected, formMismatches(cooked)...)}
	if best != nil {
		out.Match = &Match{Candidate: best.Candidate, Score: best.Score.Total, PerHundred: best.Candidate.Nutrients}
	}
	return out
}

// directCookedStage matches curated entries carrying a cooked marker. When
// the pick is a processed product (breaded, frozen) and the pool holds a
// plain raw entry for the same food, the raw entry replaces it.
type directCookedStage struct{ *toolkit }

func (directCookedStage) ID() types.StageID { return types.StageDirectCooked }

func (s directCookedStage) Attempt(_ context.Context, in *Input) Outcome {
	switch {
	case in.Empty():
		return skip(skipEmptyPool)
	case in.Query.IsRaw():
		return skip("raw query")
	}

	if len(in.Pools.Curated) == 0 {
		return skip("no curated candidates")
	}

	raw, pool := s.splitByForm(in.Pools.Curated)
	best, rejected := s.pick(in.Query, pool, s.threshold(in.Query))
	out := Outcome{PoolSize: len(in.Pools.Curated), Rejected: append(rejected, formMismatches(raw)...)}
	if best == nil {
		return out
	}

	m := &Match{Candidate: best.Candidate, Score: best.Score.Total, PerHundred: best.Candidate.Nutrients}
	if marker, processed := s.hasProcessed(best.Candidate); processed {
		if raw, ok := s.rawSynonym(in, best.Candidate); ok {
			m.RawPreference = &types.RawPreferenceSwitch{
				OriginalID:   best.Candidate.ID,
				OriginalName: best.Candidate.Name,
				FinalID:      raw.Candidate.ID,
				FinalName:    raw.Candidate.Name,
				Marker:       marker,
			}
			m.Candidate = raw.Candidate
			m.Score = raw.Score.Total
			m.PerHundred = raw.Candidate.Nutrients
			out.Note = "raw preference: " + marker
		}
	}
	out.Match = m
	return out
}

// rawSynonym finds the best curated entry naming every query token with no
// cooked or processed marker.
func (s directCookedStage) rawSynonym(in *Input, original types.CandidateEntry) (score.Scored, bool) {
	var pool []types.CandidateEntry
	for _, c := range in.Pools.Curated {
		if c.ID == original.ID || !s.scorer.CoreMatch(in.Query, c) {
			continue
		}
		if _, cooked := s.hasCooked(c); cooked {
			continue
		}
		if _, processed := s.hasProcessed(c); processed {
			continue
		}
		pool = append(pool, c)
	}
	ranked := s.scorer.Rank(in.Query, pool)
	if len(ranked) == 0 {
		return score.Scored{}, false
	}
	return ranked[0], true
}

const skipEmptyPool = "empty pool"

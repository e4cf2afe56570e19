// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package align

import (
	"context"
	"math"

	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/internal/score"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// brandedGate checks the minimum token overlap and score every branded
// match must clear.
func (k *toolkit) brandedGate(q types.NormalizedQuery, sc score.Scored) string {
	if k.scorer.Overlap(q, sc.Candidate) < k.cfg.Branded.MinTokenOverlap {
		return reasonLowOverlap
	}
	if sc.Score.Total < k.cfg.Branded.MinScore {
		return reasonBrandedScore
	}
	return ""
}

// brandedCookedStage accepts a branded entry whose name carries every
// query token and the cooking method itself ("Grilled salmon fillet" for
// "grilled salmon").
type brandedCookedStage struct{ *toolkit }

func (brandedCookedStage) ID() types.StageID { return types.StageBrandedCooked }

func (s brandedCookedStage) Attempt(_ context.Context, in *Input) Outcome {
	q := in.Query
	switch {
	case in.Empty():
		return skip(skipEmptyPool)
	case !q.IsCooked():
		return skip("no cooking method")
	case len(in.Pools.Branded) == 0:
		return skip("no branded candidates")
	}

	best, rejected := s.pick(q, in.Pools.Branded, func(sc score.Scored) string {
		if !s.scorer.CoreMatch(q, sc.Candidate) {
			return reasonNoCoreMatch
		}
		if !s.namesMethod(q.Method, sc.Candidate) {
			return reasonNoMethodText
		}
		return s.brandedGate(q, sc)
	})
	out := Outcome{PoolSize: len(in.Pools.Branded), Rejected: rejected}
	if best != nil {
		out.Match = &Match{Candidate: best.Candidate, Score: best.Score.Total, PerHundred: best.Candidate.Nutrients}
	}
	return out
}

// namesMethod reports whether c's name contains method or one of its aliases.
func (s brandedCookedStage) namesMethod(method string, c types.CandidateEntry) bool {
	for _, w := range normalize.Words(c.Name) {
		if s.norm.MethodLabel(w) == method {
			return true
		}
	}
	return false
}

// brandedEnergyStage accepts, among branded entries clearing the gate, the
// one whose energy density is nearest the expected value for the query.
// Without an expected value the best score wins.
type brandedEnergyStage struct{ *toolkit }

func (brandedEnergyStage) ID() types.StageID { return types.StageBrandedEnergy }

func (s brandedEnergyStage) Attempt(_ context.Context, in *Input) Outcome {
	q := in.Query
	switch {
	case in.Empty():
		return skip(skipEmptyPool)
	case len(in.Pools.Branded) == 0:
		return skip("no branded candidates")
	}

	out := Outcome{PoolSize: len(in.Pools.Branded)}
	var (
		best     *score.Scored
		bestDist = math.Inf(1)
	)
	for _, sc := range s.scorer.Rank(q, in.Pools.Branded) {
		if reason := s.brandedGate(q, sc); reason != "" {
			out.Rejected = append(out.Rejected, rejection(sc, reason))
			continue
		}
		dist := 0.0
		if expected, ok := s.scorer.ExpectedEnergy(q, sc.Candidate); ok {
			dist = math.Abs(sc.Candidate.Nutrients.EnergyKcal - expected)
		}
		if best == nil || dist < bestDist {
			sc := sc
			best, bestDist = &sc, dist
		}
	}
	if best != nil {
		out.Match = &Match{Candidate: best.Candidate, Score: best.Score.Total, PerHundred: best.Candidate.Nutrients}
	}
	return out
}

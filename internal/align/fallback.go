// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package align

import (
	"context"
	"fmt"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// fallbackStage is the last resort. It serves a curated fallback entry
// keyed by canonical food, or failing that an energy-only class proxy.
// It runs only when the pool was empty, every candidate was rejected, or
// the query is a cooked form of an advisory class. Barred classes never
// reach it.
type fallbackStage struct{ *toolkit }

func (fallbackStage) ID() types.StageID { return types.StageFallback }

func (s fallbackStage) Attempt(_ context.Context, in *Input) Outcome {
	q := in.Query
	for _, c := range q.Classes {
		if containsClass(s.cfg.Fallback.BarredClasses, c) {
			return skip(fmt.Sprintf("class %s barred from fallback", c))
		}
	}
	if !s.eligible(in) {
		return skip("not eligible: unscored candidates remain")
	}

	out := Outcome{PoolSize: in.Pools.Size()}
	for _, key := range s.keys(q) {
		e, ok := s.cfg.Fallback.Entries[key]
		if !ok {
			continue
		}
		c := types.CandidateEntry{
			ID:         "fallback:" + key,
			Name:       e.Name,
			SourceType: types.SourceFallback,
			Nutrients:  e.Nutrients,
		}
		if !s.guard.Allowed(q, c) {
			out.Note = "fallback entry " + key + " blocked by guardrail"
			continue
		}
		if !e.EnergyBand.Contains(e.Nutrients.EnergyKcal) {
			out.Note = "fallback entry " + key + " outside its energy band"
			continue
		}
		out.Match = &Match{Candidate: c, PerHundred: e.Nutrients}
		out.Note = "fallback entry " + key
		return out
	}

	for _, class := range q.Classes {
		kcal, ok := s.cfg.Fallback.EnergyProxies[class]
		if !ok {
			continue
		}
		out.Match = &Match{
			Candidate: types.CandidateEntry{
				ID:         "proxy:" + string(class),
				Name:       string(class) + " energy proxy",
				SourceType: types.SourceFallback,
				Nutrients:  types.Nutrients{EnergyKcal: kcal},
			},
			PerHundred: types.Nutrients{EnergyKcal: kcal},
			EnergyOnly: true,
		}
		out.Note = "energy proxy " + string(class)
		return out
	}

	if out.Note == "" {
		out.Note = "no fallback entry or proxy"
	}
	return out
}

func (s fallbackStage) eligible(in *Input) bool {
	if in.Empty() || in.AllRejected() {
		return true
	}
	if !in.Query.IsCooked() {
		return false
	}
	for _, c := range in.Query.Classes {
		if containsClass(s.cfg.Fallback.AdvisoryClasses, c) {
			return true
		}
	}
	return false
}

// keys lists fallback lookup keys, most specific first.
func (s fallbackStage) keys(q types.NormalizedQuery) []string {
	var keys []string
	if q.IsCooked() {
		keys = append(keys, q.Method+" "+q.CanonicalName)
	}
	return append(keys, q.CanonicalName)
}

func containsClass(list []types.ClassIntent, c types.ClassIntent) bool {
	for _, it := range list {
		if it == c {
			return true
		}
	}
	return false
}

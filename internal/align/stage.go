// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package align

import (
	"context"

	"github.com/pdiddy/nutrition-align/internal/convert"
	"github.com/pdiddy/nutrition-align/internal/guardrail"
	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/internal/retrieve"
	"github.com/pdiddy/nutrition-align/internal/score"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Stage is one matching strategy in the cascade. Each stage implements
// this interface per the Strategy pattern; the Aligner runs them in order
// and stops at the first Outcome carrying a Match.
type Stage interface {
	ID() types.StageID
	Attempt(ctx context.Context, in *Input) Outcome
}

// Input is the per-item state a stage reads. Pools has already been
// through the guardrail filter.
type Input struct {
	Item  types.DetectedFood
	Query types.NormalizedQuery
	Pools retrieve.Pools

	// rejected holds ids of candidates scored and rejected by an earlier
	// stage of this cascade.
	rejected map[string]bool
}

func newInput(item types.DetectedFood, q types.NormalizedQuery, pools retrieve.Pools) *Input {
	return &Input{Item: item, Query: q, Pools: pools, rejected: make(map[string]bool)}
}

// Empty reports whether no candidate survived retrieval and guardrails.
func (in *Input) Empty() bool {
	return in.Pools.Size() == 0
}

// AllRejected reports whether every candidate in the pool was scored and
// rejected by some stage.
func (in *Input) AllRejected() bool {
	for _, c := range in.Pools.All() {
		if !in.rejected[c.ID] {
			return false
		}
	}
	return !in.Empty()
}

func (in *Input) reject(rc []types.RejectedCandidate) {
	for _, r := range rc {
		in.rejected[r.ID] = true
	}
}

// Match is an accepted stage result.
type Match struct {
	Candidate types.CandidateEntry
	Score     float64

	// PerHundred is the profile used for calories and macros.
	PerHundred types.Nutrients

	// EnergyOnly suppresses the macro breakdown.
	EnergyOnly bool

	Conversion    *convert.Conversion
	Components    []types.ComponentResult
	RawPreference *types.RawPreferenceSwitch
}

// Outcome is what a stage reports back. A non-empty Skip means the stage
// did not apply and scored nothing.
type Outcome struct {
	Match    *Match
	Skip     string
	PoolSize int
	Rejected []types.RejectedCandidate
	Note     string
}

func skip(reason string) Outcome { return Outcome{Skip: reason} }

// toolkit carries the shared, read-only components stages use.
type toolkit struct {
	cfg    *types.AlignmentConfig
	norm   *normalize.Normalizer
	guard  *guardrail.Filter
	scorer *score.Scorer
	conv   *convert.Engine
}

func (k *toolkit) hasCooked(c types.CandidateEntry) (string, bool) {
	return normalize.HasAnyTerm(c.Name, k.cfg.Markers.Cooked)
}

func (k *toolkit) hasProcessed(c types.CandidateEntry) (string, bool) {
	return normalize.HasAnyTerm(c.Name, k.cfg.Markers.Processed)
}

func (k *toolkit) hasFragment(q types.NormalizedQuery, c types.CandidateEntry) (string, bool) {
	for _, term := range k.cfg.Markers.Fragments {
		if normalize.HasTerm(q.CanonicalName, term) {
			continue
		}
		if normalize.HasTerm(c.Name, term) {
			return term, true
		}
	}
	return "", false
}

// splitByForm partitions curated entries into those without and those
// with a cooked marker.
func (k *toolkit) splitByForm(pool []types.CandidateEntry) (raw, cooked []types.CandidateEntry) {
	for _, c := range pool {
		if _, ok := k.hasCooked(c); ok {
			cooked = append(cooked, c)
		} else {
			raw = append(raw, c)
		}
	}
	return raw, cooked
}

// formMismatches records entries a stage excluded by form, unscored.
func formMismatches(excluded []types.CandidateEntry) []types.RejectedCandidate {
	out := make([]types.RejectedCandidate, 0, len(excluded))
	for _, c := range excluded {
		out = append(out, types.RejectedCandidate{ID: c.ID, Name: c.Name, Reason: reasonFormMismatch})
	}
	return out
}

// pick ranks candidates and returns the first whose check passes. Every
// candidate ranked above the pick, or all of them when nothing passes, is
// returned as rejected with the reason check gave.
func (k *toolkit) pick(q types.NormalizedQuery, candidates []types.CandidateEntry, check func(score.Scored) string) (*score.Scored, []types.RejectedCandidate) {
	var rejected []types.RejectedCandidate
	for _, s := range k.scorer.Rank(q, candidates) {
		reason := check(s)
		if reason == "" {
			s := s
			return &s, rejected
		}
		rejected = append(rejected, rejection(s, reason))
	}
	return nil, rejected
}

// threshold returns a check accepting scores at or above q's class threshold.
func (k *toolkit) threshold(q types.NormalizedQuery) func(score.Scored) string {
	limit := k.scorer.Threshold(q)
	return func(s score.Scored) string {
		if s.Score.Total < limit {
			return reasonBelowThreshold
		}
		return ""
	}
}

func rejection(s score.Scored, reason string) types.RejectedCandidate {
	return types.RejectedCandidate{
		ID:     s.Candidate.ID,
		Name:   s.Candidate.Name,
		Score:  s.Score,
		Reason: reason,
	}
}

// Rejection reasons recorded in telemetry.
const (
	reasonBelowThreshold = "below_threshold"
	reasonFormMismatch   = "form_mismatch"
	reasonNoCoreMatch    = "no_core_match"
	reasonCookedSeed     = "seed_has_cooked_marker"
	reasonProcessedSeed  = "seed_has_processed_marker"
	reasonFragmentSeed   = "ingredient_fragment"
	reasonImplausible    = "implausible_conversion"
	reasonNoMethodText   = "method_not_in_name"
	reasonLowOverlap     = "token_overlap_below_min"
	reasonBrandedScore   = "score_below_branded_min"
)

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score ranks candidate entries against a normalized query.
//
// A score is a weighted sum of token similarity and energy-density
// similarity plus small capped bonuses. Single-term queries ("grape") only
// require the core term and then prefer the simplest candidate name, so a
// verbose catalogue description is not punished for its length.
package score

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/nutrition-align/internal/config"
	"github.com/pdiddy/nutrition-align/internal/convert"
	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Scorer computes candidate scores. Safe for concurrent use.
type Scorer struct {
	cfg     *types.AlignmentConfig
	norm    *normalize.Normalizer
	neutral map[string]bool
	cooked  []string
}

// New builds a Scorer from cfg.
func New(cfg *types.AlignmentConfig, norm *normalize.Normalizer) *Scorer {
	neutral := make(map[string]bool, len(cfg.Scoring.NeutralTokens))
	for _, t := range cfg.Scoring.NeutralTokens {
		neutral[normalize.Fold(t)] = true
	}
	return &Scorer{cfg: cfg, norm: norm, neutral: neutral, cooked: cfg.Markers.Cooked}
}

// Threshold returns the acceptance threshold for q's primary class.
func (s *Scorer) Threshold(q types.NormalizedQuery) float64 {
	return config.Threshold(s.cfg, q.PrimaryClass())
}

// Score computes the breakdown for candidate c against q.
func (s *Scorer) Score(q types.NormalizedQuery, c types.CandidateEntry) types.ScoreBreakdown {
	var b types.ScoreBreakdown

	b.Token = s.TokenSimilarity(q, c)
	if b.Token == 0 {
		return b
	}

	tw, ew := s.cfg.Scoring.TokenWeight, s.cfg.Scoring.EnergyWeight
	base := b.Token
	if expected, ok := s.ExpectedEnergy(q, c); ok && c.Nutrients.EnergyKcal > 0 {
		b.Energy = EnergySimilarity(c.Nutrients.EnergyKcal, expected)
		base = (tw*b.Token + ew*b.Energy) / (tw + ew)
	}

	b.Bonus = s.bonus(q, c)
	b.Total = math.Min(1, base+b.Bonus)
	return b
}

// TokenSimilarity compares query tokens with candidate tokens. Neutral
// tokens and the query's own method word never count against a candidate.
func (s *Scorer) TokenSimilarity(q types.NormalizedQuery, c types.CandidateEntry) float64 {
	cand := s.candidateTokens(q, c)
	if len(q.Terms) == 1 {
		return s.singleTerm(q, cand)
	}

	query := make(map[string]bool, len(q.Tokens))
	for _, t := range q.Tokens {
		if !s.neutral[t] {
			query[t] = true
		}
	}
	if len(query) == 0 {
		return 0
	}
	inter := 0
	for t := range query {
		if cand[t] {
			inter++
		}
	}
	union := len(query) + len(cand) - inter
	if inter == 0 || union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Overlap returns the fraction of query tokens present in c.
func (s *Scorer) Overlap(q types.NormalizedQuery, c types.CandidateEntry) float64 {
	if len(q.Tokens) == 0 {
		return 0
	}
	cand := s.candidateTokens(q, c)
	hit := 0
	for _, t := range q.Tokens {
		if cand[t] {
			hit++
		}
	}
	return float64(hit) / float64(len(q.Tokens))
}

// CoreMatch reports whether every query token appears in c.
func (s *Scorer) CoreMatch(q types.NormalizedQuery, c types.CandidateEntry) bool {
	return len(q.Tokens) > 0 && s.Overlap(q, c) == 1
}

// ExpectedEnergy returns the reference kcal/100 g for q. Food keys win over
// class keys. For a cooked candidate and a cooked query the raw reference
// is carried through the method profile.
func (s *Scorer) ExpectedEnergy(q types.NormalizedQuery, c types.CandidateEntry) (float64, bool) {
	expected, ok := s.cfg.ExpectedEnergy[q.CanonicalName]
	if !ok {
		expected, ok = s.cfg.ExpectedEnergy[string(q.PrimaryClass())]
	}
	if !ok || expected <= 0 {
		return 0, false
	}
	if q.IsCooked() {
		if _, cooked := normalize.HasAnyTerm(c.Name, s.cooked); cooked {
			if p, known := s.cfg.Methods[q.Method]; known {
				expected = convert.CookedEnergy(expected, p)
			}
		}
	}
	return expected, true
}

// EnergySimilarity returns 1 - |a-b| / max(a,b), in [0,1].
func EnergySimilarity(a, b float64) float64 {
	hi := math.Max(a, b)
	if hi <= 0 {
		return 0
	}
	return 1 - math.Abs(a-b)/hi
}

// Rank scores candidates and returns them best first. Ties keep input order.
func (s *Scorer) Rank(q types.NormalizedQuery, candidates []types.CandidateEntry) []Scored {
	out := make([]Scored, len(candidates))
	for i, c := range candidates {
		out[i] = Scored{Candidate: c, Score: s.Score(q, c)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Total > out[j].Score.Total
	})
	return out
}

// Scored pairs a candidate with its breakdown.
type Scored struct {
	Candidate types.CandidateEntry
	Score     types.ScoreBreakdown
}

func (s *Scorer) singleTerm(q types.NormalizedQuery, cand map[string]bool) float64 {
	core := strings.Fields(q.Terms[0])
	for _, t := range core {
		if !cand[t] {
			return 0
		}
	}
	extraneous := len(cand) - len(core)
	if extraneous < 0 {
		extraneous = 0
	}
	return 1 / (1 + s.cfg.Scoring.ExtraneousPenalty*float64(extraneous))
}

// candidateTokens returns the scoring token set of c: stored tokens (or
// derived ones), minus neutral tokens and the query's method word.
func (s *Scorer) candidateTokens(q types.NormalizedQuery, c types.CandidateEntry) map[string]bool {
	tokens := c.Tokens
	if len(tokens) == 0 {
		tokens = s.norm.Tokens(c.Name)
	}
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if s.neutral[t] || (q.Method != "" && t == q.Method) {
			continue
		}
		set[t] = true
	}
	return set
}

func (s *Scorer) bonus(q types.NormalizedQuery, c types.CandidateEntry) float64 {
	var total float64
	for _, rule := range s.cfg.Scoring.Bonuses {
		if len(rule.Methods) > 0 && !contains(rule.Methods, q.Method) {
			continue
		}
		if _, ok := normalize.HasAnyTerm(c.Name, rule.CandidateTerms); ok {
			total += rule.Value
		}
	}
	return math.Min(total, s.cfg.Scoring.MaxBonus)
}

func contains(list []string, v string) bool {
	for _, it := range list {
		if it == v {
			return true
		}
	}
	return false
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package align

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// componentAligner aligns one component of a dish through the direct,
// conversion and branded stages.
type componentAligner func(ctx context.Context, item types.DetectedFood) types.AlignmentResult

// compositeStage decomposes known dishes from the configured table.
type compositeStage struct {
	*toolkit
	align componentAligner
}

func (compositeStage) ID() types.StageID { return types.StageComposite }

func (s compositeStage) Attempt(ctx context.Context, in *Input) Outcome {
	dish, ok := s.lookup(in.Query)
	if !ok {
		return skip("not a known dish")
	}
	return s.decompose(ctx, in, dish.Components, "dish "+dish.Name)
}

func (s compositeStage) lookup(q types.NormalizedQuery) (types.CompositeDef, bool) {
	name := q.CanonicalName
	for _, d := range s.cfg.Composites.Dishes {
		if normalize.Fold(d.Name) == name {
			return d, true
		}
		for _, a := range d.Aliases {
			if normalize.Fold(a) == name {
				return d, true
			}
		}
	}
	return types.CompositeDef{}, false
}

// compositeRuleStage derives components from the name itself: separators
// ("rice and beans") split it into equal shares, and a known base suffix
// ("chicken salad") adds the base components with the rest of the name
// taking the residual share.
type compositeRuleStage struct {
	compositeStage
	separators *regexp.Regexp
}

func newCompositeRuleStage(k *toolkit, align componentAligner) compositeRuleStage {
	s := compositeRuleStage{compositeStage: compositeStage{toolkit: k, align: align}}
	var alts []string
	for _, sep := range k.cfg.Composites.Separators {
		sep = normalize.Fold(sep)
		if sep == "" {
			continue
		}
		if len(normalize.Words(sep)) > 0 {
			alts = append(alts, `\b`+regexp.QuoteMeta(sep)+`\b`)
		} else {
			alts = append(alts, regexp.QuoteMeta(sep))
		}
	}
	if len(alts) > 0 {
		s.separators = regexp.MustCompile(strings.Join(alts, "|"))
	}
	return s
}

func (compositeRuleStage) ID() types.StageID { return types.StageCompositeRule }

func (s compositeRuleStage) Attempt(ctx context.Context, in *Input) Outcome {
	if parts := s.split(in.Query.Raw); len(parts) > 1 {
		defs := make([]types.ComponentDef, len(parts))
		for i, p := range parts {
			defs[i] = types.ComponentDef{Name: p, Form: in.Item.Form, Fraction: 1 / float64(len(parts))}
		}
		return s.decompose(ctx, in, defs, "split on separators")
	}

	terms := in.Query.Terms
	if len(terms) < 2 {
		return skip("no composite rule applies")
	}
	suffix := terms[len(terms)-1]
	base, ok := s.cfg.Composites.RuleBases[suffix]
	if !ok {
		return skip("no composite rule applies")
	}

	defs := append([]types.ComponentDef(nil), base...)
	used := 0.0
	for _, d := range base {
		used += d.Fraction
	}
	if residual := 1 - used; residual > 0 {
		defs = append(defs, types.ComponentDef{
			Name:     strings.Join(terms[:len(terms)-1], " "),
			Form:     in.Item.Form,
			Fraction: residual,
		})
	}
	return s.decompose(ctx, in, defs, "base "+suffix)
}

// split breaks a folded name on the configured separators. Bracketed
// qualifiers are dropped first so "(raw)" never becomes a component.
func (s compositeRuleStage) split(name string) []string {
	if s.separators == nil {
		return nil
	}
	text := qualifiers.ReplaceAllString(normalize.Fold(name), " ")
	var parts []string
	for _, p := range s.separators.Split(text, -1) {
		if p = strings.TrimSpace(p); len(normalize.Words(p)) > 0 {
			parts = append(parts, p)
		}
	}
	return parts
}

var qualifiers = regexp.MustCompile(`\([^()]*\)`)

// decompose apportions the item mass over defs and aligns each component.
// The dish is accepted when at least one component matched; its energy and
// macros are the sums over matched components.
func (s compositeStage) decompose(ctx context.Context, in *Input, defs []types.ComponentDef, note string) Outcome {
	masses := apportion(in.Item.MassG, defs, s.cfg.Composites.MassPrecisionG)

	out := Outcome{PoolSize: len(defs), Note: note}
	components := make([]types.ComponentResult, len(defs))
	var (
		total   types.Nutrients
		matched int
		macros  = true
	)
	for i, d := range defs {
		item := types.DetectedFood{Name: d.Name, Form: d.Form, MassG: masses[i], Confidence: in.Item.Confidence}
		res := s.align(ctx, item)
		components[i] = types.ComponentResult{Name: d.Name, Fraction: d.Fraction, Result: res}
		if !res.Matched() {
			continue
		}
		matched++
		total.EnergyKcal += res.CaloriesKcal
		if res.Macros == nil {
			macros = false
			continue
		}
		total.ProteinG += res.Macros.ProteinG
		total.FatG += res.Macros.FatG
		total.CarbsG += res.Macros.CarbsG
	}

	if matched == 0 {
		out.Note = fmt.Sprintf("%s: no component matched", note)
		return out
	}

	m := &Match{
		Candidate: types.CandidateEntry{
			ID:         "composite:" + in.Query.CanonicalName,
			Name:       in.Query.CanonicalName,
			SourceType: types.SourceFallback,
		},
		Score:      float64(matched) / float64(len(defs)),
		EnergyOnly: !macros,
		Components: components,
	}
	if in.Item.MassG > 0 {
		m.PerHundred = total.Scale(100 / in.Item.MassG)
	}
	out.Match = m
	return out
}

// apportion splits massG by the component fractions, rounded to precision.
// The last component takes the remainder so the parts always sum to the
// whole within one rounding step.
func apportion(massG float64, defs []types.ComponentDef, precision float64) []float64 {
	if len(defs) == 0 {
		return nil
	}
	sum := 0.0
	for _, d := range defs {
		sum += d.Fraction
	}
	if sum <= 0 {
		sum = 1
	}

	round := func(v float64) float64 {
		if precision <= 0 {
			return v
		}
		return math.Round(v/precision) * precision
	}

	masses := make([]float64, len(defs))
	assigned := 0.0
	for i, d := range defs[:len(defs)-1] {
		masses[i] = round(massG * d.Fraction / sum)
		assigned += masses[i]
	}
	masses[len(defs)-1] = round(massG - assigned)
	return masses
}

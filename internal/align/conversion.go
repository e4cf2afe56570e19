// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package align

import (
	"context"
	"errors"

	"github.com/pdiddy/nutrition-align/internal/convert"
	"github.com/pdiddy/nutrition-align/internal/score"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// rawConversionStage converts a clean raw curated entry to the queried
// cooking method. Seeds that already name a cooked or processed form, or
// that are an ingredient fragment of the food (flour, leaves, oil), are
// rejected before scoring matters. A conversion that fails plausibility
// checks falls through to the next stage.
type rawConversionStage struct{ *toolkit }

func (rawConversionStage) ID() types.StageID { return types.StageRawConversion }

func (s rawConversionStage) Attempt(_ context.Context, in *Input) Outcome {
	q := in.Query
	switch {
	case in.Empty():
		return skip(skipEmptyPool)
	case !q.IsCooked():
		return skip("no cooking method")
	}
	if _, ok := s.conv.Profile(q.Method); !ok {
		return skip("no profile for method " + q.Method)
	}
	if len(in.Pools.Curated) == 0 {
		return skip("no curated candidates")
	}

	// Seeds are scored as the raw food.
	seedQuery := q
	seedQuery.Method = ""
	seedQuery.Form = types.FormRaw

	accept := s.threshold(seedQuery)
	best, rejected := s.pick(seedQuery, in.Pools.Curated, func(sc score.Scored) string {
		if _, bad := s.hasFragment(q, sc.Candidate); bad {
			return reasonFragmentSeed
		}
		if _, bad := s.hasCooked(sc.Candidate); bad {
			return reasonCookedSeed
		}
		if _, bad := s.hasProcessed(sc.Candidate); bad {
			return reasonProcessedSeed
		}
		return accept(sc)
	})
	out := Outcome{PoolSize: len(in.Pools.Curated), Rejected: rejected}
	if best == nil {
		return out
	}

	conv, err := s.conv.Convert(best.Candidate.Nutrients, q.Method, in.Item.MassG)
	if err != nil {
		reason := reasonImplausible
		if !errors.Is(err, convert.ErrImplausible) {
			reason = err.Error()
		}
		out.Rejected = append(out.Rejected, rejection(*best, reason))
		out.Note = err.Error()
		return out
	}

	out.Match = &Match{
		Candidate:  best.Candidate,
		Score:      best.Score.Total,
		PerHundred: conv.PerHundred,
		Conversion: &conv,
	}
	return out
}

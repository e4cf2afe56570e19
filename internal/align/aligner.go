// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package align maps detected food items onto nutrition catalogue entries.
//
// An Aligner normalizes the detected name, expands it into query variants,
// retrieves the richest candidate pool, removes guardrail-blocked
// candidates and then runs an ordered list of stages, stopping at the
// first one that accepts:
//
//	0   empty pool bookkeeping
//	1b  direct raw match against curated entries
//	1c  direct cooked match, with the raw-preference override
//	2   raw curated entry plus method conversion
//	3   branded entry naming the cooking method
//	4   branded entry nearest the expected energy density
//	5   known composite dish
//	5B  rule-derived composite
//	Z   curated fallback or energy proxy
//
// Components of a composite dish run stages 0 to 4 with their own
// retrieval. Every result carries a TelemetryRecord describing each stage
// attempted or skipped.
package align

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/nutrition-align/internal/config"
	"github.com/pdiddy/nutrition-align/internal/convert"
	"github.com/pdiddy/nutrition-align/internal/guardrail"
	"github.com/pdiddy/nutrition-align/internal/metrics"
	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/internal/retrieve"
	"github.com/pdiddy/nutrition-align/internal/score"
	"github.com/pdiddy/nutrition-align/internal/telemetry"
	"github.com/pdiddy/nutrition-align/internal/variants"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Mode selects how configuration failures are handled.
type Mode int

const (
	// ModeInteractive degrades every item to StatusUnavailable when the
	// configuration is unusable.
	ModeInteractive Mode = iota

	// ModeBatch fails fast: New returns the configuration error before
	// any item is processed.
	ModeBatch
)

const defaultWorkers = 4

// Options tunes an Aligner.
type Options struct {
	Mode    Mode
	Logger  *zap.Logger
	Metrics metrics.Recorder

	// Retriever bounds candidate store access.
	Retriever types.RetrieverConfig

	// Workers bounds concurrent items in AlignBatch.
	Workers int
}

// Aligner aligns detected foods. It holds only read-only state and is safe
// for concurrent use.
type Aligner struct {
	cfg    *types.AlignmentConfig
	cfgErr error

	kit        *toolkit
	variants   *variants.Generator
	retriever  *retrieve.Retriever
	stages     []Stage
	components []Stage

	workers int
	log     *zap.Logger
	metrics metrics.Recorder
}

// New builds an Aligner over store. Invalid configuration is returned as an
// error wrapping ErrConfigurationUnavailable in ModeBatch; in
// ModeInteractive the returned Aligner reports every item unavailable.
func New(cfg *types.AlignmentConfig, store retrieve.CandidateStore, opts Options) (*Aligner, error) {
	a := &Aligner{
		cfg:     cfg,
		workers: opts.Workers,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.metrics == nil {
		a.metrics = metrics.Nop{}
	}
	if a.workers <= 0 {
		a.workers = defaultWorkers
	}

	if err := config.Validate(cfg); err != nil {
		if opts.Mode == ModeBatch {
			return nil, err
		}
		a.log.Warn("alignment configuration unavailable, items will degrade", zap.Error(err))
		a.cfgErr = err
		return a, nil
	}
	if store == nil {
		return nil, fmt.Errorf("%w: no candidate store configured", ErrCandidateStoreUnavailable)
	}

	norm := normalize.New(cfg)
	a.kit = &toolkit{
		cfg:    cfg,
		norm:   norm,
		guard:  guardrail.New(cfg),
		scorer: score.New(cfg, norm),
		conv:   convert.New(cfg),
	}
	a.variants = variants.New(cfg, norm)
	a.retriever = retrieve.New(store, norm, cfg.Retrieval.MaxResults, retrieve.Options{
		Policy:  opts.Retriever,
		Logger:  a.log,
		Metrics: a.metrics,
	})

	a.components = []Stage{
		emptyPoolStage{},
		directRawStage{a.kit},
		directCookedStage{a.kit},
		rawConversionStage{a.kit},
		brandedCookedStage{a.kit},
		brandedEnergyStage{a.kit},
	}
	a.stages = append(append([]Stage(nil), a.components...),
		compositeStage{toolkit: a.kit, align: a.alignComponent},
		newCompositeRuleStage(a.kit, a.alignComponent),
		fallbackStage{a.kit},
	)
	return a, nil
}

// ConfigVersion returns the content-derived version of the configuration,
// or "" when none is loaded.
func (a *Aligner) ConfigVersion() string {
	if a.cfg == nil {
		return ""
	}
	return a.cfg.Version
}

// Align aligns one detected item. It never returns an error: failures are
// reported through the result status and reason.
func (a *Aligner) Align(ctx context.Context, item types.DetectedFood) types.AlignmentResult {
	res := a.run(ctx, item, a.stages)
	a.metrics.ItemAligned(res.Status, res.Stage)

	fields := []zap.Field{
		zap.String("item", item.Name),
		zap.String("status", string(res.Status)),
		zap.String("stage", string(res.Stage)),
		zap.String("alignment_id", res.Telemetry.AlignmentID),
	}
	if res.Status == types.StatusUnavailable {
		a.log.Warn("item degraded", append(fields, zap.String("reason", res.Reason))...)
	} else {
		if res.Candidate != nil {
			fields = append(fields, zap.String("candidate", res.Candidate.ID), zap.Float64("score", res.Score))
		}
		a.log.Debug("item aligned", fields...)
	}
	return res
}

// AlignBatch aligns items concurrently with at most Workers in flight.
// Results keep input order. A failing item never aborts the batch.
func (a *Aligner) AlignBatch(ctx context.Context, items []types.DetectedFood) types.BatchResult {
	results := make([]types.AlignmentResult, len(items))
	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(i int, item types.DetectedFood) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					a.log.Error("alignment panicked", zap.String("item", item.Name), zap.Any("panic", r))
					results[i] = types.AlignmentResult{
						Item:   item,
						Status: types.StatusUnavailable,
						Reason: fmt.Sprintf("internal error: %v", r),
						MassG:  item.MassG,
					}
				}
			}()
			results[i] = a.Align(ctx, item)
		}(i, item)
	}
	wg.Wait()

	b := types.BatchResult{
		ConfigVersion: a.ConfigVersion(),
		Results:       results,
		Counts:        make(map[types.Status]int),
	}
	for _, r := range results {
		b.Totals.Add(r)
		b.Counts[r.Status]++
	}
	return b
}

func (a *Aligner) alignComponent(ctx context.Context, item types.DetectedFood) types.AlignmentResult {
	return a.run(ctx, item, a.components)
}

// run performs one alignment through stages.
func (a *Aligner) run(ctx context.Context, item types.DetectedFood, stages []Stage) types.AlignmentResult {
	topN := 0
	if a.cfg != nil {
		topN = a.cfg.Retrieval.TopRejected
	}
	rec := telemetry.NewRecorder(a.ConfigVersion(), item, topN)
	res := types.AlignmentResult{Item: item, MassG: item.MassG}

	if a.cfgErr != nil {
		return finish(res, rec, types.StatusUnavailable, a.cfgErr.Error())
	}
	if err := item.Validate(); err != nil {
		return finish(res, rec, types.StatusInvalid, err.Error())
	}

	q := a.kit.norm.ForFood(item)
	rec.Query(q)
	if q.Ignored {
		return finish(res, rec, types.StatusIgnored, q.IgnoreReason)
	}

	vs := a.variants.Generate(q)
	pools, err := a.retriever.Retrieve(ctx, vs)
	rec.Retrieval(vs, pools.Variant, pools.Errors)
	if err != nil {
		if !errors.Is(err, ErrCandidateStoreUnavailable) {
			err = fmt.Errorf("%w: %v", ErrCandidateStoreUnavailable, err)
		}
		return finish(res, rec, types.StatusUnavailable, err.Error())
	}

	pools, removed := a.applyGuardrails(q, pools)
	rec.Pool(pools.Size(), removed)

	in := newInput(item, q, pools)
	for _, st := range stages {
		timer := telemetry.StartTimer()
		out := st.Attempt(ctx, in)
		if out.Skip != "" {
			rec.Skip(st.ID(), out.Skip)
			continue
		}
		elapsed := timer.Elapsed()
		in.reject(out.Rejected)

		attempt := types.StageAttempt{
			Stage:       st.ID(),
			PoolSize:    out.PoolSize,
			Accepted:    out.Match != nil,
			TopRejected: out.Rejected,
			Note:        out.Note,
			Duration:    elapsed,
		}
		if out.Match != nil {
			attempt.CandidateID = out.Match.Candidate.ID
		}
		rec.Attempt(attempt)
		a.metrics.StageAttempt(st.ID(), out.Match != nil, elapsed)

		if out.Match != nil {
			if out.Match.RawPreference != nil {
				rec.RawPreference(*out.Match.RawPreference)
			}
			return matched(res, rec, st.ID(), out.Match)
		}
	}

	reason := types.NoMatchAllRejected
	if in.Empty() {
		reason = types.NoMatchEmptyPool
	}
	res.Status = types.StatusNoMatch
	res.Reason = reason
	res.Telemetry = rec.Finish("", types.StatusNoMatch, reason)
	return res
}

// applyGuardrails filters both subsets and records every removal.
func (a *Aligner) applyGuardrails(q types.NormalizedQuery, pools retrieve.Pools) (retrieve.Pools, []types.RejectedCandidate) {
	var removed []types.RejectedCandidate
	collect := func(rs []guardrail.Removal) {
		for _, r := range rs {
			removed = append(removed, types.RejectedCandidate{
				ID:     r.Candidate.ID,
				Name:   r.Candidate.Name,
				Reason: fmt.Sprintf("guardrail %s: %s", r.Class, r.Term),
			})
		}
	}

	var rs []guardrail.Removal
	pools.Curated, rs = a.kit.guard.Apply(q, pools.Curated)
	collect(rs)
	pools.Branded, rs = a.kit.guard.Apply(q, pools.Branded)
	collect(rs)
	return pools, removed
}

func finish(res types.AlignmentResult, rec *telemetry.Recorder, status types.Status, reason string) types.AlignmentResult {
	res.Status = status
	res.Reason = reason
	res.Telemetry = rec.Finish("", status, "")
	return res
}

func matched(res types.AlignmentResult, rec *telemetry.Recorder, stage types.StageID, m *Match) types.AlignmentResult {
	c := m.Candidate
	res.Status = types.StatusMatched
	res.Stage = stage
	res.Candidate = &c
	res.Score = m.Score
	res.Components = m.Components

	totals := m.PerHundred.ForMass(res.MassG)
	res.CaloriesKcal = totals.EnergyKcal
	if !m.EnergyOnly {
		res.Macros = &types.Macros{ProteinG: totals.ProteinG, FatG: totals.FatG, CarbsG: totals.CarbsG}
	}
	if m.Conversion != nil {
		converted := m.Conversion.PerHundred
		res.Converted = &converted
		res.Conversion = m.Conversion.Summary()
	}

	res.Telemetry = rec.Finish(stage, types.StatusMatched, "")
	return res
}

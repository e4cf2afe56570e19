// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve queries the candidate store for every query variant and
// selects the richest pool.
//
// The store call is the only blocking operation in alignment. The Retriever
// owns its resource policy: a shared concurrency bound, a token-bucket rate
// limit, a per-query timeout and a bounded retry. Variants that fail are
// recorded and skipped; only when every variant fails is the store reported
// unavailable.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/nutrition-align/internal/metrics"
	"github.com/pdiddy/nutrition-align/internal/normalize"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// ErrUnavailable reports that no variant query succeeded.
var ErrUnavailable = errors.New("candidate store unavailable")

// CandidateStore is the text-search contract of the nutrition catalogue.
type CandidateStore interface {
	Search(ctx context.Context, query string, limit int) ([]types.CandidateEntry, error)
}

// Pools is the selected candidate pool split by source trust.
type Pools struct {
	// Variant is the query string whose results were selected.
	Variant string

	// Curated holds foundation and legacy entries.
	Curated []types.CandidateEntry

	// Branded holds commercial entries.
	Branded []types.CandidateEntry

	// Errors lists failed variant queries.
	Errors []string
}

// Size returns the number of candidates across both subsets.
func (p Pools) Size() int {
	return len(p.Curated) + len(p.Branded)
}

// All returns curated then branded candidates.
func (p Pools) All() []types.CandidateEntry {
	out := make([]types.CandidateEntry, 0, p.Size())
	out = append(out, p.Curated...)
	return append(out, p.Branded...)
}

// Options tunes a Retriever.
type Options struct {
	Policy  types.RetrieverConfig
	Logger  *zap.Logger
	Metrics metrics.Recorder
}

// Retriever issues variant queries. One Retriever is shared by all
// concurrent alignments so its limits are process-wide.
type Retriever struct {
	store   CandidateStore
	norm    *normalize.Normalizer
	limit   int
	policy  types.RetrieverConfig
	sem     chan struct{}
	limiter *rate.Limiter
	log     *zap.Logger
	metrics metrics.Recorder
}

// New creates a Retriever over store. limit caps results per query.
func New(store CandidateStore, norm *normalize.Normalizer, limit int, opts Options) *Retriever {
	r := &Retriever{
		store:   store,
		norm:    norm,
		limit:   limit,
		policy:  opts.Policy,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.metrics == nil {
		r.metrics = metrics.Nop{}
	}
	if opts.Policy.MaxConcurrent > 0 {
		r.sem = make(chan struct{}, opts.Policy.MaxConcurrent)
	}
	if opts.Policy.RatePerSecond > 0 {
		burst := opts.Policy.Burst
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(opts.Policy.RatePerSecond), burst)
	}
	return r
}

type variantResult struct {
	entries []types.CandidateEntry
	err     error
}

// Retrieve runs every variant and returns the pool with the most high-trust
// candidates, then the most candidates overall. Earlier variants win ties.
func (r *Retriever) Retrieve(ctx context.Context, variants []string) (Pools, error) {
	if len(variants) == 0 {
		return Pools{}, nil
	}

	results := make([]variantResult, len(variants))
	var wg sync.WaitGroup
	for i, v := range variants {
		wg.Add(1)
		go func(i int, v string) {
			defer wg.Done()
			entries, err := r.query(ctx, v)
			results[i] = variantResult{entries: entries, err: err}
		}(i, v)
	}
	wg.Wait()

	var pools Pools
	best := -1
	bestTrust, bestTotal := -1, -1
	for i, res := range results {
		if res.err != nil {
			pools.Errors = append(pools.Errors, fmt.Sprintf("%s: %v", variants[i], res.err))
			continue
		}
		trust := highTrustCount(res.entries)
		if trust > bestTrust || (trust == bestTrust && len(res.entries) > bestTotal) {
			best, bestTrust, bestTotal = i, trust, len(res.entries)
		}
	}

	if best < 0 {
		return pools, fmt.Errorf("%w: all %d variant queries failed", ErrUnavailable, len(variants))
	}

	pools.Variant = variants[best]
	for _, c := range dedupe(results[best].entries) {
		if len(c.Tokens) == 0 {
			c.Tokens = r.norm.Tokens(c.Name)
		}
		if c.SourceType.HighTrust() {
			pools.Curated = append(pools.Curated, c)
		} else {
			pools.Branded = append(pools.Branded, c)
		}
	}
	return pools, nil
}

// query performs one store search under the retriever's policy.
func (r *Retriever) query(ctx context.Context, q string) ([]types.CandidateEntry, error) {
	if r.sem != nil {
		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var lastErr error
	for attempt := 0; attempt <= r.policy.Retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * r.policy.RetryDelay
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		entries, err := r.search(ctx, q)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.log.Debug("store query failed",
			zap.String("query", q),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, lastErr
}

func (r *Retriever) search(ctx context.Context, q string) ([]types.CandidateEntry, error) {
	qctx := ctx
	if r.policy.QueryTimeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, r.policy.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	entries, err := r.store.Search(qctx, q, r.limit)
	outcome := metrics.QueryOK
	if err != nil {
		outcome = metrics.QueryError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(qctx.Err(), context.DeadlineExceeded) {
			outcome = metrics.QueryTimeout
		}
	}
	r.metrics.StoreQuery(outcome, time.Since(start))
	return entries, err
}

func highTrustCount(entries []types.CandidateEntry) int {
	n := 0
	for _, e := range entries {
		if e.SourceType.HighTrust() {
			n++
		}
	}
	return n
}

func dedupe(entries []types.CandidateEntry) []types.CandidateEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]types.CandidateEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != "" && seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package telemetry builds the per-item diagnosis trail of an alignment and
// persists batch telemetry for offline analysis.
package telemetry

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// namespace scopes alignment ids to this engine.
var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("nutrition-align/alignment"))

// AlignmentID derives a stable id for item under a config version. The same
// input under the same configuration always maps to the same id.
func AlignmentID(configVersion string, item types.DetectedFood) string {
	key := fmt.Sprintf("%s|%s|%s|%.4f|%.4f", configVersion, item.Name, item.Form, item.MassG, item.Confidence)
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

// Recorder accumulates one item's telemetry. It is not safe for concurrent
// use; each alignment owns its own Recorder.
type Recorder struct {
	rec  types.TelemetryRecord
	topN int
}

// NewRecorder starts a record for item. topN caps rejected candidates kept
// per stage.
func NewRecorder(configVersion string, item types.DetectedFood, topN int) *Recorder {
	return &Recorder{
		rec: types.TelemetryRecord{
			AlignmentID:   AlignmentID(configVersion, item),
			ConfigVersion: configVersion,
			Query:         item.Name,
		},
		topN: topN,
	}
}

// Query records the normalized query.
func (r *Recorder) Query(q types.NormalizedQuery) {
	r.rec.Query = q.CanonicalName
	r.rec.Classes = q.Classes
}

// Retrieval records the variants tried and which one was selected.
func (r *Recorder) Retrieval(variants []string, selected string, storeErrors []string) {
	r.rec.Variants = variants
	r.rec.SelectedVariant = selected
	r.rec.StoreErrors = storeErrors
}

// Pool records the pool size after guardrails and what they removed.
func (r *Recorder) Pool(size int, removed []types.RejectedCandidate) {
	r.rec.PoolSize = size
	r.rec.GuardrailRemoved = removed
}

// Attempt appends a stage attempt, trimming its rejected list to topN.
func (r *Recorder) Attempt(a types.StageAttempt) {
	a.TopRejected = Top(a.TopRejected, r.topN)
	r.rec.Attempts = append(r.rec.Attempts, a)
}

// Skip appends a stage that did not apply.
func (r *Recorder) Skip(stage types.StageID, reason string) {
	r.rec.Attempts = append(r.rec.Attempts, types.StageAttempt{Stage: stage, Skipped: true, SkipReason: reason})
}

// RawPreference records a Stage 1c pick replaced by its raw synonym.
func (r *Recorder) RawPreference(sw types.RawPreferenceSwitch) {
	r.rec.RawPreference = &sw
}

// Finish closes the record with the final decision.
func (r *Recorder) Finish(stage types.StageID, decision types.Status, noMatchReason string) types.TelemetryRecord {
	r.rec.FinalStage = stage
	r.rec.Decision = decision
	r.rec.NoMatchReason = noMatchReason
	return r.rec
}

// Top returns the n highest-scoring rejections, best first. Ties keep
// their original order.
func Top(rejected []types.RejectedCandidate, n int) []types.RejectedCandidate {
	if len(rejected) == 0 {
		return nil
	}
	out := append([]types.RejectedCandidate(nil), rejected...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Total > out[j].Score.Total
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Timer measures a stage attempt.
type Timer struct{ start time.Time }

// StartTimer begins timing.
func StartTimer() Timer { return Timer{start: time.Now()} }

// Elapsed returns time since StartTimer.
func (t Timer) Elapsed() time.Duration { return time.Since(t.start) }

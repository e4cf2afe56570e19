// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telemetry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

func TestAlignmentIDDeterministic(t *testing.T) {
	item := types.DetectedFood{Name: "grape", Form: "raw", MassG: 100, Confidence: 0.9}

	a := AlignmentID("v1", item)
	assert.Equal(t, a, AlignmentID("v1", item))
	assert.NotEqual(t, a, AlignmentID("v2", item))

	item.MassG = 120
	assert.NotEqual(t, a, AlignmentID("v1", item))
}

func TestRecorder(t *testing.T) {
	item := types.DetectedFood{Name: "Olives", MassG: 30}
	r := NewRecorder("v1", item, 2)
	r.Query(types.NormalizedQuery{CanonicalName: "olive", Classes: []types.ClassIntent{"olive"}})
	r.Retrieval([]string{"olives", "olive"}, "olives", nil)
	r.Pool(1, []types.RejectedCandidate{{ID: "oil", Reason: "guardrail: oil"}})
	r.Skip(types.StageEmptyPool, "pool not empty")
	r.Attempt(types.StageAttempt{
		Stage:    types.StageDirectRaw,
		PoolSize: 3,
		TopRejected: []types.RejectedCandidate{
			{ID: "a", Score: types.ScoreBreakdown{Total: 0.1}},
			{ID: "b", Score: types.ScoreBreakdown{Total: 0.3}},
			{ID: "c", Score: types.ScoreBreakdown{Total: 0.2}},
		},
	})
	rec := r.Finish(types.StageDirectRaw, types.StatusMatched, "")

	assert.Equal(t, AlignmentID("v1", item), rec.AlignmentID)
	assert.Equal(t, "olive", rec.Query)
	assert.Equal(t, "olives", rec.SelectedVariant)
	assert.Equal(t, []types.StageID{types.StageDirectRaw}, rec.AttemptedStages())
	require.Len(t, rec.Attempts[1].TopRejected, 2)
	assert.Equal(t, "b", rec.Attempts[1].TopRejected[0].ID)
	assert.Equal(t, "c", rec.Attempts[1].TopRejected[1].ID)
	assert.Equal(t, types.StatusMatched, rec.Decision)
}

func TestTopEmpty(t *testing.T) {
	assert.Nil(t, Top(nil, 3))
}

func TestWriteReadFile(t *testing.T) {
	batch := types.BatchResult{
		ConfigVersion: "abc123",
		Results: []types.AlignmentResult{
			{
				Item:         types.DetectedFood{Name: "grape", Form: "raw", MassG: 100},
				Status:       types.StatusMatched,
				Stage:        types.StageDirectRaw,
				Candidate:    &types.CandidateEntry{ID: "fdc-grape", Name: "Grapes, raw"},
				Score:        0.77,
				MassG:        100,
				CaloriesKcal: 69,
				Macros:       &types.Macros{ProteinG: 0.72, FatG: 0.16, CarbsG: 18.1},
			},
			{
				Item:   types.DetectedFood{Name: "beer", MassG: 330},
				Status: types.StatusIgnored,
				Reason: "alcohol",
			},
		},
		Totals: types.Totals{CaloriesKcal: 69, ProteinG: 0.72, FatG: 0.16, CarbsG: 18.1},
		Counts: map[types.Status]int{types.StatusMatched: 1, types.StatusIgnored: 1},
	}

	for _, name := range []string{"run.yaml", "run.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "telemetry", name)
			require.NoError(t, WriteFile(path, batch))

			f, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "abc123", f.ConfigVersion)
			assert.Equal(t, 2, f.Summary.Items)
			assert.Equal(t, 1, f.Summary.Stages[types.StageDirectRaw])
			assert.Equal(t, 1, f.Summary.Counts[types.StatusIgnored])
			require.Len(t, f.Items, 2)
			assert.Equal(t, "fdc-grape", f.Items[0].Candidate.ID)
			assert.Equal(t, "alcohol", f.Items[1].Reason)
			assert.False(t, f.Generated.IsZero())
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

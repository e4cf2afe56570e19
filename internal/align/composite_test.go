// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package align

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nutrition-align/internal/testsupport"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

func TestApportion(t *testing.T) {
	third := 1.0 / 3
	defs := []types.ComponentDef{{Fraction: third}, {Fraction: third}, {Fraction: third}}

	masses := apportion(100, defs, 0.1)

	require.Len(t, masses, 3)
	assert.InDelta(t, 33.3, masses[0], 1e-9)
	assert.InDelta(t, 33.3, masses[1], 1e-9)
	assert.InDelta(t, 33.4, masses[2], 1e-9)
}

func TestApportionNormalizesFractions(t *testing.T) {
	masses := apportion(200, []types.ComponentDef{{Fraction: 2}, {Fraction: 2}}, 0)
	assert.Equal(t, []float64{100, 100}, masses)

	assert.Nil(t, apportion(50, nil, 0.1))
}

func TestCompositeRuleSplit(t *testing.T) {
	a := newAligner(t, nil)
	s := newCompositeRuleStage(a.kit, a.alignComponent)

	tests := []struct {
		name string
		want []string
	}{
		{"grapes and olives", []string{"grapes", "olives"}},
		{"rice & beans", []string{"rice", "beans"}},
		{"toast with butter and jam (raw)", []string{"toast", "butter", "jam"}},
		{"candied almonds", []string{"candied almonds"}},
		{"sandwich", []string{"sandwich"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.split(tt.name))
		})
	}
}

func TestCompositeSeparatorSplit(t *testing.T) {
	a := newAligner(t, testsupport.Catalogue())

	res := a.Align(context.Background(), types.DetectedFood{Name: "grapes and olives", MassG: 200, Confidence: 0.8})

	require.Equal(t, types.StatusMatched, res.Status, res.Reason)
	assert.Equal(t, types.StageCompositeRule, res.Stage)
	require.Len(t, res.Components, 2)
	assert.Equal(t, "fdc-grape", res.Components[0].Result.Candidate.ID)
	assert.Equal(t, "fdc-olive", res.Components[1].Result.Candidate.ID)
	assert.InDelta(t, 100, res.Components[0].Result.MassG, 1e-9)
	assert.InDelta(t, 69+115, res.CaloriesKcal, 1e-6)
}

func TestCompositeRuleBase(t *testing.T) {
	a := newAligner(t, testsupport.Catalogue())

	res := a.Align(context.Background(), types.DetectedFood{Name: "chicken salad", MassG: 200, Confidence: 0.8})

	require.Equal(t, types.StatusMatched, res.Status, res.Reason)
	require.Len(t, res.Components, 2)
	assert.Equal(t, "lettuce", res.Components[0].Name)
	assert.Equal(t, "chicken", res.Components[1].Name)
	assert.InDelta(t, 100, res.Components[0].Result.MassG, 1e-9)
	assert.InDelta(t, 100, res.Components[1].Result.MassG, 1e-9)
	assert.Equal(t, "composite:chicken salad", res.Candidate.ID)
	assert.Greater(t, res.Score, 0.0)
}

func TestCompositePartialComponents(t *testing.T) {
	a := newAligner(t, testsupport.Catalogue())

	res := a.Align(context.Background(), types.DetectedFood{Name: "grapes and durian", MassG: 100, Confidence: 0.8})

	require.Equal(t, types.StatusMatched, res.Status, res.Reason)
	assert.Equal(t, types.StageCompositeRule, res.Stage)
	assert.InDelta(t, 0.5, res.Score, 1e-9)
	assert.Equal(t, types.StatusNoMatch, res.Components[1].Result.Status)
	assert.InDelta(t, 69*0.5, res.CaloriesKcal, 1e-6)
}

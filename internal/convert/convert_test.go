// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nutrition-align/internal/testsupport"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

var chickenRaw = types.Nutrients{EnergyKcal: 120, ProteinG: 22.5, FatG: 2.6, CarbsG: 0}

func TestConvertGrilledChicken(t *testing.T) {
	e := New(testsupport.Config(t))

	c, err := e.Convert(chickenRaw, "grilled", 150)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, c.Yield, 1e-9)
	assert.InDelta(t, 160, c.PerHundred.EnergyKcal, 1e-6)
	assert.InDelta(t, 30, c.PerHundred.ProteinG, 1e-6)
	assert.InDelta(t, 200, c.RawMassG, 1e-6)
	assert.Zero(t, c.OilG)

	gap := math.Abs(c.AtwaterKcal - c.PerHundred.EnergyKcal)
	assert.LessOrEqual(t, gap, 0.15*c.PerHundred.EnergyKcal)
}

func TestConvertAddsOil(t *testing.T) {
	e := New(testsupport.Config(t))

	potato := types.Nutrients{EnergyKcal: 77, ProteinG: 2, FatG: 0.1, CarbsG: 17}
	c, err := e.Convert(potato, "fried", 100)
	require.NoError(t, err)

	// 8 g oil per 100 g cooked, the rest is potato cooked down by 0.8.
	assert.InDelta(t, 8, c.OilG, 1e-9)
	assert.InDelta(t, 77*0.92/0.8+72, c.PerHundred.EnergyKcal, 1e-6)
	assert.InDelta(t, 0.1*0.92/0.8+8, c.PerHundred.FatG, 1e-6)
	assert.InDelta(t, CookedEnergy(77, e.methods["fried"]), c.PerHundred.EnergyKcal, 1e-9)
}

func TestConvertRejections(t *testing.T) {
	e := New(testsupport.Config(t))

	tests := []struct {
		name    string
		raw     types.Nutrients
		method  string
		wantErr error
	}{
		{
			name:    "unknown method",
			raw:     chickenRaw,
			method:  "smoked",
			wantErr: ErrUnknownMethod,
		},
		{
			name:    "macros do not reproduce energy",
			raw:     types.Nutrients{EnergyKcal: 120, ProteinG: 5, FatG: 1, CarbsG: 1},
			method:  "grilled",
			wantErr: ErrAtwaterMismatch,
		},
		{
			name:    "energy above band",
			raw:     types.Nutrients{EnergyKcal: 380, ProteinG: 20, FatG: 30, CarbsG: 5},
			method:  "grilled",
			wantErr: ErrEnergyOutOfBand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Convert(tt.raw, tt.method, 100)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.wantErr != ErrUnknownMethod {
				assert.True(t, errors.Is(err, ErrImplausible))
			}
		})
	}
}

// Any conversion that passes satisfies both plausibility checks for every
// configured method.
func TestConversionPlausibility(t *testing.T) {
	cfg := testsupport.Config(t)
	e := New(cfg)

	profiles := []types.Nutrients{
		chickenRaw,
		{EnergyKcal: 69, ProteinG: 0.7, FatG: 0.2, CarbsG: 18},
		{EnergyKcal: 365, ProteinG: 7, FatG: 0.7, CarbsG: 80},
		{EnergyKcal: 23, ProteinG: 2.9, FatG: 0.4, CarbsG: 3.6},
	}
	for method, p := range cfg.Methods {
		for _, raw := range profiles {
			c, err := e.Convert(raw, method, 100)
			if err != nil {
				assert.ErrorIs(t, err, ErrImplausible)
				continue
			}
			n := c.PerHundred
			allowed := math.Max(cfg.Conversion.AtwaterTolerance*n.EnergyKcal, cfg.Conversion.AtwaterFloorKcal)
			assert.LessOrEqual(t, math.Abs(n.AtwaterKcal()-n.EnergyKcal), allowed, method)
			assert.True(t, p.EnergyBand.Contains(n.EnergyKcal), method)
		}
	}
}

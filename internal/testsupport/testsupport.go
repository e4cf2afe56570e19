// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"testing"

	"github.com/pdiddy/nutrition-align/configs"
	"github.com/pdiddy/nutrition-align/internal/config"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Config returns the reference calibration parsed from configs/alignment.yaml.
func Config(t testing.TB) *types.AlignmentConfig {
	t.Helper()
	cfg, err := config.Parse(configs.Alignment)
	if err != nil {
		t.Fatalf("parsing reference config: %v", err)
	}
	return cfg
}

// Entry builds a catalogue entry with the given per-100 g macros.
// Energy is stated separately so tests can exercise Atwater gaps.
func Entry(id, name string, src types.SourceType, kcal, protein, fat, carbs float64) types.CandidateEntry {
	return types.CandidateEntry{
		ID:         id,
		Name:       name,
		SourceType: src,
		Nutrients: types.Nutrients{
			EnergyKcal: kcal,
			ProteinG:   protein,
			FatG:       fat,
			CarbsG:     carbs,
		},
	}
}

// Catalogue is a small reference catalogue covering the common alignment
// paths: verbose produce names, guarded olive products, raw-only proteins,
// branded cooked items and salad components.
func Catalogue() []types.CandidateEntry {
	return []types.CandidateEntry{
		Entry("fdc-grape", "Grapes, red or green (European type, such as Thompson seedless), raw", types.SourceLegacy, 69, 0.72, 0.16, 18.1),
		Entry("fdc-grape-juice", "Grape juice, canned or bottled, unsweetened", types.SourceLegacy, 60, 0.37, 0.13, 14.8),
		Entry("fdc-olive", "Olives, ripe, canned (small-extra large)", types.SourceLegacy, 115, 0.84, 10.7, 6.3),
		Entry("fdc-olive-oil", "Oil, olive, salad or cooking", types.SourceLegacy, 884, 0, 100, 0),
		Entry("fdc-olive-stuffed", "Olives, green, stuffed", types.SourceLegacy, 145, 1.0, 15.3, 3.8),
		Entry("fdc-chicken-raw", "Chicken, breast, meat only, raw", types.SourceLegacy, 120, 22.5, 2.6, 0),
		Entry("fdc-egg-raw", "Egg, whole, raw, fresh", types.SourceLegacy, 143, 12.6, 9.5, 0.72),
		Entry("fdc-egg-boiled", "Egg, whole, cooked, hard-boiled", types.SourceLegacy, 155, 12.6, 10.6, 1.12),
		Entry("fdc-romaine", "Lettuce, cos or romaine, raw", types.SourceLegacy, 17, 1.23, 0.3, 3.29),
		Entry("fdc-parmesan", "Cheese, parmesan, hard", types.SourceLegacy, 392, 35.8, 25.8, 3.22),
		Entry("fdc-croutons", "Croutons, seasoned", types.SourceLegacy, 465, 10.8, 18.3, 63.5),
		Entry("fdc-caesar", "Salad dressing, caesar dressing, regular", types.SourceLegacy, 542, 2.17, 57.9, 3.3),
		Entry("br-salmon-grilled", "Grilled salmon fillet", types.SourceBranded, 206, 22.1, 12.4, 0),
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StageID identifies one matching strategy in the cascade.
type StageID string

const (
	StageEmptyPool     StageID = "stage0_empty_pool"
	StageDirectRaw     StageID = "stage1b_direct_raw"
	StageDirectCooked  StageID = "stage1c_direct_cooked"
	StageRawConversion StageID = "stage2_raw_conversion"
	StageBrandedCooked StageID = "stage3_branded_cooked"
	StageBrandedEnergy StageID = "stage4_branded_energy"
	StageComposite     StageID = "stage5_composite"
	StageCompositeRule StageID = "stage5b_composite_rule"
	StageFallback      StageID = "stageZ_fallback"
)

// Status is the terminal outcome of aligning one item.
type Status string

const (
	StatusMatched     Status = "matched"
	StatusNoMatch     Status = "no_match"
	StatusIgnored     Status = "ignored"
	StatusUnavailable Status = "unavailable"
	StatusInvalid     Status = "invalid"
)

// No-match reasons recorded in telemetry.
const (
	NoMatchEmptyPool   = "empty_pool"
	NoMatchAllRejected = "all_rejected"
)

// Macros holds macronutrient grams for the aligned mass.
type Macros struct {
	ProteinG float64 `json:"protein_g" yaml:"protein_g"`
	FatG     float64 `json:"fat_g" yaml:"fat_g"`
	CarbsG   float64 `json:"carbs_g" yaml:"carbs_g"`
}

// ConversionSummary describes a raw-to-cooked conversion applied by Stage 2.
type ConversionSummary struct {
	Method string `json:"method" yaml:"method"`

	// Yield is cooked mass per unit raw mass.
	Yield float64 `json:"yield" yaml:"yield"`

	// RawMassG is the raw-equivalent mass of the detected cooked mass.
	RawMassG float64 `json:"raw_mass_g" yaml:"raw_mass_g"`

	// OilUptakeG is the oil absorbed by the detected mass.
	OilUptakeG float64 `json:"oil_uptake_g" yaml:"oil_uptake_g"`

	// AtwaterKcal is protein*4 + carbs*4 + fat*9 per 100 g of the converted profile.
	AtwaterKcal float64 `json:"atwater_kcal" yaml:"atwater_kcal"`
}

// ComponentResult is one decomposed part of a composite dish.
type ComponentResult struct {
	Name     string          `json:"name" yaml:"name"`
	Fraction float64         `json:"fraction" yaml:"fraction"`
	Result   AlignmentResult `json:"result" yaml:"result"`
}

// AlignmentResult is the outcome of aligning one DetectedFood.
type AlignmentResult struct {
	Item   DetectedFood `json:"item" yaml:"item"`
	Status Status       `json:"status" yaml:"status"`

	// Reason explains non-matched statuses (ignore code, store error, ...).
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	Stage     StageID         `json:"stage,omitempty" yaml:"stage,omitempty"`
	Candidate *CandidateEntry `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Score     float64         `json:"score" yaml:"score"`

	// Converted is the per-100 g profile after Stage 2 conversion.
	Converted  *Nutrients         `json:"converted,omitempty" yaml:"converted,omitempty"`
	Conversion *ConversionSummary `json:"conversion,omitempty" yaml:"conversion,omitempty"`

	MassG        float64 `json:"mass_g" yaml:"mass_g"`
	CaloriesKcal float64 `json:"calories_kcal" yaml:"calories_kcal"`

	// Macros is nil for an energy-only fallback.
	Macros *Macros `json:"macros,omitempty" yaml:"macros,omitempty"`

	Components []ComponentResult `json:"components,omitempty" yaml:"components,omitempty"`
	Telemetry  TelemetryRecord   `json:"telemetry" yaml:"telemetry"`
}

// Matched reports whether the item was aligned.
func (r AlignmentResult) Matched() bool {
	return r.Status == StatusMatched
}

// Totals sums calories and macros across a batch.
type Totals struct {
	CaloriesKcal float64 `json:"calories_kcal" yaml:"calories_kcal"`
	ProteinG     float64 `json:"protein_g" yaml:"protein_g"`
	FatG         float64 `json:"fat_g" yaml:"fat_g"`
	CarbsG       float64 `json:"carbs_g" yaml:"carbs_g"`
}

// Add accumulates a matched result.
func (t *Totals) Add(r AlignmentResult) {
	if !r.Matched() {
		return
	}
	t.CaloriesKcal += r.CaloriesKcal
	if r.Macros != nil {
		t.ProteinG += r.Macros.ProteinG
		t.FatG += r.Macros.FatG
		t.CarbsG += r.Macros.CarbsG
	}
}

// BatchResult holds the outcome of aligning a list of items.
type BatchResult struct {
	ConfigVersion string            `json:"config_version" yaml:"config_version"`
	Results       []AlignmentResult `json:"results" yaml:"results"`
	Totals        Totals            `json:"totals" yaml:"totals"`
	Counts        map[Status]int    `json:"counts" yaml:"counts"`
}

// HasFailures reports whether any item was unavailable or invalid.
func (b BatchResult) HasFailures() bool {
	return b.Counts[StatusUnavailable] > 0 || b.Counts[StatusInvalid] > 0
}

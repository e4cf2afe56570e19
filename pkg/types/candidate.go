// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SourceType classifies where a catalogue entry came from.
type SourceType string

const (
	SourceFoundation SourceType = "foundation"
	SourceLegacy     SourceType = "sr_legacy"
	SourceBranded    SourceType = "branded"

	// SourceFallback marks a synthetic entry: a fallback table profile, an
	// energy proxy or a composite dish aggregate. It never comes from the
	// candidate store.
	SourceFallback SourceType = "fallback"
)

// HighTrust reports whether entries of this source are curated reference
// data (foundation or legacy) rather than commercial products.
func (s SourceType) HighTrust() bool {
	return s == SourceFoundation || s == SourceLegacy
}

// Nutrients holds a nutrient profile. Catalogue entries store values per
// 100 g; Scale produces totals for an arbitrary mass.
type Nutrients struct {
	EnergyKcal float64 `json:"energy_kcal" yaml:"energy_kcal"`
	ProteinG   float64 `json:"protein_g" yaml:"protein_g"`
	FatG       float64 `json:"fat_g" yaml:"fat_g"`
	CarbsG     float64 `json:"carbs_g" yaml:"carbs_g"`
	FiberG     float64 `json:"fiber_g,omitempty" yaml:"fiber_g,omitempty"`
	SugarG     float64 `json:"sugar_g,omitempty" yaml:"sugar_g,omitempty"`
	SodiumMg   float64 `json:"sodium_mg,omitempty" yaml:"sodium_mg,omitempty"`
}

// Scale multiplies every nutrient by factor.
func (n Nutrients) Scale(factor float64) Nutrients {
	return Nutrients{
		EnergyKcal: n.EnergyKcal * factor,
		ProteinG:   n.ProteinG * factor,
		FatG:       n.FatG * factor,
		CarbsG:     n.CarbsG * factor,
		FiberG:     n.FiberG * factor,
		SugarG:     n.SugarG * factor,
		SodiumMg:   n.SodiumMg * factor,
	}
}

// ForMass converts a per-100 g profile into totals for massG grams.
func (n Nutrients) ForMass(massG float64) Nutrients {
	return n.Scale(massG / 100)
}

// AtwaterKcal returns protein*4 + carbohydrate*4 + fat*9.
func (n Nutrients) AtwaterKcal() float64 {
	return n.ProteinG*4 + n.CarbsG*4 + n.FatG*9
}

// CandidateEntry is one nutrition-catalogue record returned by a candidate
// store search. Entries are read-only once retrieved.
type CandidateEntry struct {
	// ID is the store's stable identifier (e.g. an FDC id).
	ID string `json:"id" yaml:"id"`

	// Name is the canonical catalogue description, e.g. "Grapes, red or green, raw".
	Name string `json:"name" yaml:"name"`

	// SourceType is foundation, sr_legacy, or branded.
	SourceType SourceType `json:"source_type" yaml:"source_type"`

	// Nutrients is the per-100 g profile.
	Nutrients Nutrients `json:"nutrients" yaml:"nutrients"`

	// Tokens is the derived token set of Name. Filled by the retriever.
	Tokens []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// HasToken reports whether tok is one of the entry's derived tokens.
func (c CandidateEntry) HasToken(tok string) bool {
	for _, t := range c.Tokens {
		if t == tok {
			return true
		}
	}
	return false
}

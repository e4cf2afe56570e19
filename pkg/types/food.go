// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the nutrition-align engine:
// detected items, candidate catalogue entries, normalized queries, alignment
// results, telemetry, and configuration.
package types

import (
	"fmt"
	"math"
	"strings"
)

// FormRaw marks a detected item as uncooked. Any other non-empty Form value
// names a cooking method (e.g. "grilled", "roasted").
const FormRaw = "raw"

// DetectedFood is one item reported by the vision collaborator. It is
// immutable input to alignment.
type DetectedFood struct {
	// Name is the detected food name as reported (e.g. "grapes (raw) (raw)").
	Name string `json:"name" yaml:"name"`

	// Form is "raw", a cooking-method label, or empty when unknown.
	Form string `json:"form,omitempty" yaml:"form,omitempty"`

	// MassG is the estimated mass in grams. Must be positive.
	MassG float64 `json:"mass_g" yaml:"mass_g"`

	// Confidence is the detector confidence between 0.0 and 1.0.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Validate reports whether the item carries the fields alignment needs.
func (d DetectedFood) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("detected food has empty name")
	}
	if !(d.MassG > 0) || math.IsInf(d.MassG, 0) {
		return fmt.Errorf("detected food %q has non-positive or non-finite mass %.2f", d.Name, d.MassG)
	}
	if !(d.Confidence >= 0 && d.Confidence <= 1) {
		return fmt.Errorf("detected food %q has confidence %.2f outside [0,1]", d.Name, d.Confidence)
	}
	return nil
}

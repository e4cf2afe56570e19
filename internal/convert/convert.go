// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert estimates cooked nutrient profiles from raw ones.
//
// A method profile scales a raw per-100 g profile by the method's yield
// (hydration and shrinkage), adds absorbed oil, and then validates the
// result twice: Atwater consistency and the method's energy-density band.
// A conversion that fails either check is reported as ErrImplausible and
// must not be used.
package convert

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

var (
	// ErrUnknownMethod reports a method with no configured profile.
	ErrUnknownMethod = errors.New("no method profile")

	// ErrImplausible reports a converted profile that failed validation.
	ErrImplausible = errors.New("implausible conversion")

	// ErrAtwaterMismatch reports macros that do not reproduce the energy.
	ErrAtwaterMismatch = errors.New("atwater mismatch")

	// ErrEnergyOutOfBand reports energy outside the method's band.
	ErrEnergyOutOfBand = errors.New("energy density out of band")
)

// oilKcalPerG is the energy of absorbed cooking fat.
const oilKcalPerG = 9

// Conversion is the outcome of converting one raw profile.
type Conversion struct {
	Method string

	// PerHundred is the estimated cooked profile per 100 g.
	PerHundred types.Nutrients

	// Yield is cooked mass per unit raw mass, before oil.
	Yield float64

	// MassG is the cooked mass the conversion was computed for.
	MassG float64

	// RawMassG is the raw mass that cooks down to MassG.
	RawMassG float64

	// OilG is oil absorbed by MassG of cooked food.
	OilG float64

	AtwaterKcal float64
}

// Summary returns the telemetry view of c.
func (c Conversion) Summary() *types.ConversionSummary {
	return &types.ConversionSummary{
		Method:      c.Method,
		Yield:       c.Yield,
		RawMassG:    c.RawMassG,
		OilUptakeG:  c.OilG,
		AtwaterKcal: c.AtwaterKcal,
	}
}

// Engine converts raw profiles using configured method profiles.
type Engine struct {
	methods map[string]types.MethodProfile
	tol     types.ConversionConfig
}

// New builds an Engine from cfg.
func New(cfg *types.AlignmentConfig) *Engine {
	return &Engine{methods: cfg.Methods, tol: cfg.Conversion}
}

// Profile returns the configured profile for method.
func (e *Engine) Profile(method string) (types.MethodProfile, bool) {
	p, ok := e.methods[method]
	return p, ok
}

// Convert estimates the cooked profile of raw (per 100 g) for method and
// the detected cooked mass. The Conversion is returned even when validation
// fails so callers can record what was rejected.
func (e *Engine) Convert(raw types.Nutrients, method string, massG float64) (Conversion, error) {
	p, ok := e.methods[method]
	if !ok {
		return Conversion{Method: method}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	yield := Yield(p)
	oilFrac := p.OilUptakeG / 100
	base := raw.Scale((1 - oilFrac) / yield)
	base.FatG += p.OilUptakeG
	base.EnergyKcal += p.OilUptakeG * oilKcalPerG

	c := Conversion{
		Method:      method,
		PerHundred:  base,
		Yield:       yield,
		MassG:       massG,
		RawMassG:    massG * (1 - oilFrac) / yield,
		OilG:        massG * oilFrac,
		AtwaterKcal: base.AtwaterKcal(),
	}

	if err := e.Validate(c.PerHundred, p); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks Atwater consistency and the energy band for a profile
// cooked with p.
func (e *Engine) Validate(n types.Nutrients, p types.MethodProfile) error {
	gap := math.Abs(n.AtwaterKcal() - n.EnergyKcal)
	allowed := math.Max(e.tol.AtwaterTolerance*n.EnergyKcal, e.tol.AtwaterFloorKcal)
	if gap > allowed {
		return fmt.Errorf("%w: %w: computed %.1f kcal vs stated %.1f kcal (allowed %.1f)",
			ErrImplausible, ErrAtwaterMismatch, n.AtwaterKcal(), n.EnergyKcal, allowed)
	}
	if !p.EnergyBand.Contains(n.EnergyKcal) {
		return fmt.Errorf("%w: %w: %.1f kcal/100g outside [%.0f, %.0f]",
			ErrImplausible, ErrEnergyOutOfBand, n.EnergyKcal, p.EnergyBand.Min, p.EnergyBand.Max)
	}
	return nil
}

// Yield returns cooked mass per unit raw mass for p.
func Yield(p types.MethodProfile) float64 {
	return p.HydrationFactor * (1 - p.ShrinkageFactor)
}

// CookedEnergy estimates the cooked kcal/100 g of a food whose raw energy
// is rawKcal.
func CookedEnergy(rawKcal float64, p types.MethodProfile) float64 {
	return rawKcal*(1-p.OilUptakeG/100)/Yield(p) + p.OilUptakeG*oilKcalPerG
}

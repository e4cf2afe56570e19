// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and validates alignment calibration data.
//
// Calibration (thresholds, guardrail lists, synonym tables, method profiles,
// fallback table) is external data. Nothing here supplies default values:
// a missing or malformed file is reported as ErrUnavailable and the caller
// decides whether that is fatal.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// ErrUnavailable reports missing or malformed alignment configuration.
var ErrUnavailable = errors.New("alignment configuration unavailable")

const versionLen = 12

// Load reads the calibration file at path and returns a validated config
// whose Version is derived from the file contents.
func Load(path string) (*types.AlignmentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, path, err)
	}
	return Parse(data)
}

// Parse decodes calibration YAML and validates it.
func Parse(data []byte) (*types.AlignmentConfig, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: empty configuration", ErrUnavailable)
	}

	var cfg types.AlignmentConfig
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing: %v", ErrUnavailable, err)
	}

	cfg.Version = Version(data)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Version returns the content-derived identifier for raw config bytes.
func Version(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:versionLen]
}

// Validate checks the fields the alignment engine cannot run without.
// All problems are reported together.
func Validate(cfg *types.AlignmentConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil configuration", ErrUnavailable)
	}

	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if cfg.Thresholds.Default <= 0 || cfg.Thresholds.Default > 1 {
		add("thresholds.default %.3f outside (0,1]", cfg.Thresholds.Default)
	}
	for class, v := range cfg.Thresholds.Overrides {
		if v <= 0 || v > 1 {
			add("thresholds.overrides[%s] %.3f outside (0,1]", class, v)
		}
	}

	if cfg.Scoring.TokenWeight < 0 || cfg.Scoring.EnergyWeight < 0 {
		add("scoring weights must be non-negative")
	}
	if cfg.Scoring.TokenWeight+cfg.Scoring.EnergyWeight <= 0 {
		add("scoring.token_weight + scoring.energy_weight must be positive")
	}
	if cfg.Scoring.MaxBonus < 0 {
		add("scoring.max_bonus must be non-negative")
	}

	seen := make(map[types.ClassIntent]bool)
	for i, c := range cfg.Classes {
		if c.Name == "" {
			add("classes[%d] has empty name", i)
			continue
		}
		if seen[c.Name] {
			add("class %s declared twice", c.Name)
		}
		seen[c.Name] = true
		if len(c.Keywords) == 0 {
			add("class %s has no keywords", c.Name)
		}
	}
	if len(cfg.Classes) == 0 {
		add("no classes configured")
	}

	for method, p := range cfg.Methods {
		if p.HydrationFactor <= 0 {
			add("methods.%s.hydration_factor must be positive", method)
		}
		if p.ShrinkageFactor < 0 || p.ShrinkageFactor >= 1 {
			add("methods.%s.shrinkage_factor %.3f outside [0,1)", method, p.ShrinkageFactor)
		}
		if p.OilUptakeG < 0 {
			add("methods.%s.oil_uptake_g must be non-negative", method)
		}
		if p.EnergyBand.Max <= p.EnergyBand.Min {
			add("methods.%s.energy_band is empty", method)
		}
	}

	if cfg.Conversion.AtwaterTolerance <= 0 {
		add("conversion.atwater_tolerance must be positive")
	}

	for _, d := range cfg.Composites.Dishes {
		if len(d.Components) == 0 {
			add("composite %q has no components", d.Name)
		}
		for _, c := range d.Components {
			if c.Fraction <= 0 {
				add("composite %q component %q has non-positive fraction", d.Name, c.Name)
			}
		}
	}
	for suffix, base := range cfg.Composites.RuleBases {
		var sum float64
		for _, c := range base {
			sum += c.Fraction
		}
		if sum <= 0 || sum >= 1 {
			add("composites.rule_bases[%s] fractions must sum to (0,1), got %.3f", suffix, sum)
		}
	}

	for key, e := range cfg.Fallback.Entries {
		if e.EnergyBand.Max <= e.EnergyBand.Min {
			add("fallback.entries[%s].energy_band is empty", key)
		}
	}

	if cfg.Retrieval.MaxResults <= 0 {
		add("retrieval.max_results must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrUnavailable, strings.Join(problems, "; "))
	}
	return nil
}

// Threshold returns the acceptance threshold for class.
func Threshold(cfg *types.AlignmentConfig, class types.ClassIntent) float64 {
	if v, ok := cfg.Thresholds.Overrides[class]; ok {
		return v
	}
	return cfg.Thresholds.Default
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nutrition-align/configs"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

func TestParseReferenceConfig(t *testing.T) {
	cfg, err := Parse(configs.Alignment)
	require.NoError(t, err)

	assert.Len(t, cfg.Version, versionLen)
	assert.Equal(t, types.ClassIntent("egg"), cfg.Classes[0].Name)
	assert.Contains(t, cfg.Guardrails["olive"], "oil")
	assert.Contains(t, cfg.Methods, "grilled")
	assert.InDelta(t, 0.30, Threshold(cfg, "produce"), 1e-9)
	assert.InDelta(t, cfg.Thresholds.Default, Threshold(cfg, "protein"), 1e-9)
}

func TestVersionIsContentDerived(t *testing.T) {
	a := Version([]byte("thresholds: {default: 0.5}"))
	b := Version([]byte("thresholds: {default: 0.5}"))
	c := Version([]byte("thresholds: {default: 0.6}"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{name: "empty", data: "  \n", wantMsg: "empty configuration"},
		{name: "malformed yaml", data: "classes: [", wantMsg: "parsing"},
		{name: "unknown field", data: "no_such_section: 1\n", wantMsg: "no_such_section"},
		{
			name:    "missing thresholds and classes",
			data:    "retrieval: {max_results: 5}\nconversion: {atwater_tolerance: 0.1}\nscoring: {token_weight: 1}\n",
			wantMsg: "thresholds.default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnavailable))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg, err := Parse(configs.Alignment)
	require.NoError(t, err)

	cfg.Thresholds.Default = 1.5
	p := cfg.Methods["grilled"]
	p.ShrinkageFactor = 1
	cfg.Methods["grilled"] = p
	cfg.Composites.RuleBases["salad"] = []types.ComponentDef{{Name: "lettuce", Fraction: 1}}

	err = Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "thresholds.default"), msg)
	assert.True(t, strings.Contains(msg, "methods.grilled.shrinkage_factor"), msg)
	assert.True(t, strings.Contains(msg, "rule_bases[salad]"), msg)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alignment.yaml")
	require.NoError(t, os.WriteFile(path, configs.Alignment, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Version(configs.Alignment), cfg.Version)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package foodstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nutrition-align/internal/testsupport"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

func TestCatalogFileRoundTrip(t *testing.T) {
	entries := testsupport.Catalogue()
	for _, name := range []string{"catalog.yaml", "catalog.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, WriteCatalogFile(path, entries))

			got, err := LoadCatalogFile(path)
			require.NoError(t, err)
			assert.Equal(t, entries, got)
		})
	}
}

func TestLoadCatalogFileDefaultSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.yaml")
	data := `source: sr_legacy
entries:
  - id: "1"
    name: Kale, raw
    nutrients: {energy_kcal: 49, protein_g: 4.3, fat_g: 0.9, carbs_g: 8.8}
  - id: "2"
    name: Kale chips
    source_type: branded
    nutrients: {energy_kcal: 480, protein_g: 9, fat_g: 30, carbs_g: 45}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	got, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.SourceLegacy, got[0].SourceType)
	assert.Equal(t, types.SourceBranded, got[1].SourceType)
	assert.InDelta(t, 49, got[0].Nutrients.EnergyKcal, 1e-9)
}

func TestLoadCatalogFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{name: "missing id", data: "entries:\n  - name: Kale\n    source_type: foundation\n", wantMsg: "missing id"},
		{name: "missing source", data: "entries:\n  - id: k\n    name: Kale\n", wantMsg: "no source type"},
		{name: "malformed", data: "entries: [", wantMsg: "parsing catalogue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))
			_, err := LoadCatalogFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestMemoryStoreSearch(t *testing.T) {
	s := NewMemoryStore(testsupport.Catalogue())
	ctx := context.Background()

	got, err := s.Search(ctx, "olives", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fdc-olive", "fdc-olive-stuffed"}, ids(got))

	got, err = s.Search(ctx, "olive", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fdc-olive", "fdc-olive-oil", "fdc-olive-stuffed"}, ids(got))

	got, err = s.Search(ctx, "chicken breast grilled", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fdc-chicken-raw", "br-salmon-grilled"}, ids(got), "falls back to partial matches, most matched first")

	got, err = s.Search(ctx, "grape", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.Search(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore(nil).Search(ctx, "x", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func ids(entries []types.CandidateEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

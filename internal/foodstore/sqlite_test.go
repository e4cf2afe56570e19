// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build sqlite_fts5

package foodstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nutrition-align/internal/testsupport"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

func testStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := types.StoreConfig{
		Backend:    types.StoreSQLite,
		CatalogDir: filepath.Join(dir, "catalog"),
		IndexDir:   filepath.Join(dir, "index"),
	}
	require.NoError(t, os.MkdirAll(cfg.CatalogDir, 0o755))

	s, err := NewSQLiteStore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, cfg.CatalogDir
}

func TestSQLiteIngestAndSearch(t *testing.T) {
	s, catalogDir := testStore(t)
	ctx := context.Background()
	require.NoError(t, WriteCatalogFile(filepath.Join(catalogDir, "reference.yaml"), testsupport.Catalogue()))

	var log bytes.Buffer
	summary, err := s.Ingest(ctx, &log)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, len(testsupport.Catalogue()), summary.Entries)
	assert.Contains(t, log.String(), "indexed reference.yaml")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(testsupport.Catalogue()), n)

	got, err := s.Search(ctx, "grapes", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "fdc-grape", got[0].ID)
	assert.InDelta(t, 69, got[0].Nutrients.EnergyKcal, 1e-9)
	assert.Equal(t, types.SourceLegacy, got[0].SourceType)

	got, err = s.Search(ctx, "olive", 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = s.Search(ctx, "chicken breast grilled", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fdc-chicken-raw", "br-salmon-grilled"}, ids(got))
}

func TestSQLiteIngestIncremental(t *testing.T) {
	s, catalogDir := testStore(t)
	ctx := context.Background()
	path := filepath.Join(catalogDir, "small.json")
	require.NoError(t, WriteCatalogFile(path, testsupport.Catalogue()[:2]))

	_, err := s.Ingest(ctx, &bytes.Buffer{})
	require.NoError(t, err)

	summary, err := s.Ingest(ctx, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)

	require.NoError(t, WriteCatalogFile(path, testsupport.Catalogue()[:1]))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	summary, err = s.Ingest(ctx, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteIngestBadFile(t *testing.T) {
	s, catalogDir := testStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(catalogDir, "bad.yaml"), []byte("entries: ["), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(catalogDir, "notes.txt"), []byte("ignored"), 0o644))

	summary, err := s.Ingest(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Total())
	assert.True(t, summary.HasFailures())
}

func TestSQLiteExport(t *testing.T) {
	s, catalogDir := testStore(t)
	ctx := context.Background()
	require.NoError(t, WriteCatalogFile(filepath.Join(catalogDir, "reference.yaml"), testsupport.Catalogue()))
	_, err := s.Ingest(ctx, &bytes.Buffer{})
	require.NoError(t, err)

	path, err := s.Export(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "export.yaml", filepath.Base(path))

	exported, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Len(t, exported, len(testsupport.Catalogue()))

	jsonPath := filepath.Join(t.TempDir(), "export.json")
	_, err = s.Export(ctx, jsonPath)
	require.NoError(t, err)
	exported, err = LoadCatalogFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, exported, len(testsupport.Catalogue()))
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"chicken"* AND "breast"*`, ftsQuery([]string{"chicken", "breast"}, " AND "))
}

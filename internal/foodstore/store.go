// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package foodstore provides nutrition catalogue backends that satisfy the
// candidate store search contract.
//
// SQLiteStore indexes catalogue files in an FTS5 table, HTTPStore queries a
// remote FoodData-Central-style API, MemoryStore serves a fixed slice, and
// CachedStore wraps any of them with a redis-backed result cache.
package foodstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Store searches the nutrition catalogue.
type Store interface {
	// Search returns at most limit entries matching query, best first.
	Search(ctx context.Context, query string, limit int) ([]types.CandidateEntry, error)
}

// CatalogFile is the on-disk catalogue format ingested by SQLiteStore and
// loaded by MemoryStore.
type CatalogFile struct {
	// Source is the default source type for entries that omit one.
	Source  types.SourceType       `json:"source,omitempty" yaml:"source,omitempty"`
	Entries []types.CandidateEntry `json:"entries" yaml:"entries"`
}

// LoadCatalogFile reads a YAML or JSON catalogue file.
func LoadCatalogFile(path string) ([]types.CandidateEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalogue %s: %w", path, err)
	}

	var cf CatalogFile
	if isJSON(path) {
		err = json.Unmarshal(data, &cf)
	} else {
		err = yaml.Unmarshal(data, &cf)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalogue %s: %w", path, err)
	}

	for i := range cf.Entries {
		e := &cf.Entries[i]
		if e.ID == "" || strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("catalogue %s: entry %d missing id or name", path, i)
		}
		if e.SourceType == "" {
			e.SourceType = cf.Source
		}
		if e.SourceType == "" {
			return nil, fmt.Errorf("catalogue %s: entry %s has no source type", path, e.ID)
		}
	}
	return cf.Entries, nil
}

// WriteCatalogFile writes entries as a YAML or JSON catalogue file.
func WriteCatalogFile(path string, entries []types.CandidateEntry) error {
	cf := CatalogFile{Entries: entries}
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(cf, "", "  ")
	} else {
		data, err = yaml.Marshal(&cf)
	}
	if err != nil {
		return fmt.Errorf("marshaling catalogue: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating catalogue directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func isCatalogFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

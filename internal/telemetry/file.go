// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// File is the on-disk form of one batch run. It can be reloaded for
// offline analysis without re-running alignment.
type File struct {
	Generated     time.Time               `json:"generated" yaml:"generated"`
	ConfigVersion string                  `json:"config_version" yaml:"config_version"`
	Summary       Summary                 `json:"summary" yaml:"summary"`
	Items         []types.AlignmentResult `json:"items" yaml:"items"`
}

// Summary holds batch statistics.
type Summary struct {
	Items  int                   `json:"items" yaml:"items"`
	Counts map[types.Status]int  `json:"counts" yaml:"counts"`
	Stages map[types.StageID]int `json:"stages,omitempty" yaml:"stages,omitempty"`
	Totals types.Totals          `json:"totals" yaml:"totals"`
}

// NewFile builds the file form of a batch result.
func NewFile(b types.BatchResult, generated time.Time) File {
	stages := make(map[types.StageID]int)
	for _, r := range b.Results {
		if r.Matched() {
			stages[r.Stage]++
		}
	}
	return File{
		Generated:     generated,
		ConfigVersion: b.ConfigVersion,
		Summary: Summary{
			Items:  len(b.Results),
			Counts: b.Counts,
			Stages: stages,
			Totals: b.Totals,
		},
		Items: b.Results,
	}
}

// WriteFile saves a batch result to path. A .json extension writes JSON;
// anything else writes YAML.
func WriteFile(path string, b types.BatchResult) error {
	f := NewFile(b, time.Now().UTC())

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(f, "", "  ")
	} else {
		data, err = yaml.Marshal(&f)
	}
	if err != nil {
		return fmt.Errorf("marshaling telemetry file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating telemetry directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a telemetry file written by WriteFile.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading telemetry file: %w", err)
	}
	var f File
	if isJSON(path) {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing telemetry file: %w", err)
	}
	return &f, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

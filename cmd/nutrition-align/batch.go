// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutrition-align/internal/align"
	"github.com/pdiddy/nutrition-align/internal/telemetry"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <items-file>",
	Short: "Align a file of detected food items",
	Long: `Batch aligns every item in a YAML or JSON list of detected foods and writes
the results with per-item telemetry to the telemetry directory.

Unlike align, batch fails before processing any item when the alignment
configuration is missing or invalid. Individual item failures never abort
the batch; the command exits non-zero when any item was unavailable or
invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		metricsFile, _ := cmd.Flags().GetString("metrics-file")
		quiet, _ := cmd.Flags().GetBool("quiet")

		items, err := readItems(args[0])
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		a, cleanup, err := newAligner(cmd.Context(), align.ModeBatch, reg)
		if err != nil {
			return err
		}
		defer cleanup()

		start := time.Now()
		b := a.AlignBatch(cmd.Context(), items)
		logger.Info("batch aligned",
			zap.Int("items", len(items)),
			zap.Int("matched", b.Counts[types.StatusMatched]),
			zap.Duration("elapsed", time.Since(start)))

		if out == "" {
			rc, err := runtimeConfig()
			if err != nil {
				return err
			}
			out = filepath.Join(rc.TelemetryDir, fmt.Sprintf("batch-%s.yaml", time.Now().UTC().Format("20060102T150405Z")))
		}
		if err := telemetry.WriteFile(out, b); err != nil {
			return err
		}
		if metricsFile != "" {
			if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
				return fmt.Errorf("writing metrics: %w", err)
			}
		}

		if !quiet {
			fmt.Println(renderResults(b.Results))
			fmt.Printf("Totals: %.0f kcal, protein %.1f g, fat %.1f g, carbs %.1f g\n",
				b.Totals.CaloriesKcal, b.Totals.ProteinG, b.Totals.FatG, b.Totals.CarbsG)
		}
		fmt.Fprintf(os.Stderr, "Telemetry written to %s\n", out)

		if b.HasFailures() {
			return fmt.Errorf("%d unavailable, %d invalid of %d items",
				b.Counts[types.StatusUnavailable], b.Counts[types.StatusInvalid], len(items))
		}
		return nil
	},
}

// readItems decodes a YAML or JSON list of detected foods.
func readItems(path string) ([]types.DetectedFood, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	var items []types.DetectedFood
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing items %s: %w", path, err)
	}
	return items, nil
}

func init() {
	batchCmd.Flags().StringP("output", "o", "", "telemetry output file (.yaml or .json; default: <telemetry_dir>/batch-<time>.yaml)")
	batchCmd.Flags().String("metrics-file", "", "write Prometheus text metrics to this file")
	batchCmd.Flags().BoolP("quiet", "q", false, "do not print the result table")

	rootCmd.AddCommand(batchCmd)
}

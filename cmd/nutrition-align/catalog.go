// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutrition-align/internal/foodstore"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local nutrition catalogue",
	Long: `Catalog builds and queries the SQLite catalogue index. Catalogue files are
YAML or JSON lists of entries under the catalogue directory.`,
}

var catalogIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index catalogue files into SQLite",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSQLite()
		if err != nil {
			return err
		}
		defer s.Close()

		sum, err := s.Ingest(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d files: %d indexed, %d updated, %d skipped, %d failed (%d entries)\n",
			sum.Total(), sum.Indexed, sum.Updated, sum.Skipped, sum.Failed, sum.Entries)
		if sum.HasFailures() {
			return fmt.Errorf("%d catalogue files failed", sum.Failed)
		}
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the configured candidate store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rc, err := runtimeConfig()
		if err != nil {
			return err
		}
		store, cleanup, err := openStore(cmd.Context(), rc)
		if err != nil {
			return err
		}
		defer cleanup()

		entries, err := store.Search(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		rows := make([][]string, len(entries))
		for i, e := range entries {
			rows[i] = []string{
				e.ID,
				e.Name,
				string(e.SourceType),
				fmt.Sprintf("%.0f", e.Nutrients.EnergyKcal),
				fmt.Sprintf("%.1f", e.Nutrients.ProteinG),
				fmt.Sprintf("%.1f", e.Nutrients.FatG),
				fmt.Sprintf("%.1f", e.Nutrients.CarbsG),
			}
		}
		fmt.Println(renderTable([]string{"ID", "Name", "Source", "kcal/100g", "Protein", "Fat", "Carbs"}, rows, 4, 5, 6, 7))
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the SQLite catalogue to YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		s, err := openSQLite()
		if err != nil {
			return err
		}
		defer s.Close()

		path, err := s.Export(cmd.Context(), out)
		if err != nil {
			return err
		}
		n, err := s.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d entries to %s\n", n, path)
		return nil
	},
}

func openSQLite() (*foodstore.SQLiteStore, error) {
	rc, err := runtimeConfig()
	if err != nil {
		return nil, err
	}
	if rc.Store.Backend != types.StoreSQLite && rc.Store.Backend != "" {
		return nil, fmt.Errorf("catalogue maintenance needs the sqlite backend, configured %q", rc.Store.Backend)
	}
	return foodstore.NewSQLiteStore(rc.Store)
}

func init() {
	catalogSearchCmd.Flags().Int("limit", 25, "maximum number of results")
	catalogExportCmd.Flags().StringP("output", "o", "", "output file (default: <index_dir>/export.yaml)")

	catalogCmd.AddCommand(catalogIngestCmd, catalogSearchCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutrition-align/internal/align"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

var alignCmd = &cobra.Command{
	Use:   "align <name>",
	Short: "Align one detected food item",
	Long: `Align runs the matching cascade for one detected item and prints the
selected catalogue entry, the calories and macros for the given mass, and
the stage-by-stage telemetry.

Configuration problems degrade the item to "unavailable" rather than
failing the command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, _ := cmd.Flags().GetString("form")
		mass, _ := cmd.Flags().GetFloat64("mass")
		confidence, _ := cmd.Flags().GetFloat64("confidence")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, cleanup, err := newAligner(cmd.Context(), align.ModeInteractive, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		res := a.Align(cmd.Context(), types.DetectedFood{
			Name:       args[0],
			Form:       form,
			MassG:      mass,
			Confidence: confidence,
		})

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		fmt.Println(renderResults([]types.AlignmentResult{res}))
		for _, c := range res.Components {
			fmt.Printf("  component %s (%.0f%%): %s\n", c.Name, c.Fraction*100, c.Result.Status)
		}
		if res.Conversion != nil {
			fmt.Printf("Converted from raw: %s, yield %.2f, raw mass %.0f g\n",
				res.Conversion.Method, res.Conversion.Yield, res.Conversion.RawMassG)
		}
		if sw := res.Telemetry.RawPreference; sw != nil {
			fmt.Printf("Raw preference: %s -> %s (%s)\n", sw.OriginalName, sw.FinalName, sw.Marker)
		}
		fmt.Println(renderAttempts(res.Telemetry))
		fmt.Printf("Alignment %s, config %s\n", res.Telemetry.AlignmentID, res.Telemetry.ConfigVersion)
		return nil
	},
}

func init() {
	alignCmd.Flags().String("form", "", `"raw" or a cooking method (grilled, roasted, ...)`)
	alignCmd.Flags().Float64("mass", 100, "detected mass in grams")
	alignCmd.Flags().Float64("confidence", 1, "detector confidence between 0 and 1")
	alignCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(alignCmd)
}

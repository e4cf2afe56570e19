// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutrition-align/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the alignment calibration",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the alignment calibration and print its version",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := runtimeConfig()
		if err != nil {
			return err
		}
		cfg, err := loadAlignment(rc)
		if err != nil {
			return err
		}

		source := rc.AlignmentFile
		if source == "" {
			source = "built-in reference"
		}
		fmt.Printf("Calibration %s is valid (version %s)\n", source, cfg.Version)

		var rows [][]string
		for _, c := range cfg.Classes {
			guards := append([]string(nil), cfg.Guardrails[c.Name]...)
			sort.Strings(guards)
			rows = append(rows, []string{
				string(c.Name),
				fmt.Sprint(len(c.Keywords)),
				fmt.Sprintf("%.2f", config.Threshold(cfg, c.Name)),
				fmt.Sprint(guards),
			})
		}
		fmt.Println(renderTable([]string{"Class", "Keywords", "Threshold", "Guardrail terms"}, rows, 2, 3))
		return nil
	},
}

var configVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the content-derived calibration version",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := runtimeConfig()
		if err != nil {
			return err
		}
		cfg, err := loadAlignment(rc)
		if err != nil {
			return err
		}
		fmt.Println(cfg.Version)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configCheckCmd, configVersionCmd)
	rootCmd.AddCommand(configCmd)
}

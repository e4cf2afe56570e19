// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nutrition-align CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/nutrition-align/internal/logging"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from the runtime config before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the nutrition-align CLI.
var rootCmd = &cobra.Command{
	Use:   "nutrition-align",
	Short: "Align detected foods with nutrition catalogue entries",
	Long: `nutrition-align maps food items reported by a vision detector onto entries
of a nutrition catalogue and computes calories and macros for the detected
mass.

Alignment runs a fixed cascade of matching stages; every result carries a
telemetry record explaining which stages ran and why candidates were
rejected. The catalogue is a local SQLite index built from YAML/JSON files
or a remote FoodData Central style API, optionally cached in redis.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rc, err := runtimeConfig()
		if err != nil {
			return err
		}
		l, err := logging.New(logging.FromRuntime(rc.Logging))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nutrition-align.yaml or ~/.config/nutrition-align/config.yaml)")
	rootCmd.PersistentFlags().String("alignment", "", "alignment calibration file (default: built-in reference calibration)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store", "", "candidate store backend (sqlite, http)")

	viper.BindPFlag("alignment_file", rootCmd.PersistentFlags().Lookup("alignment"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nutrition-align")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nutrition-align"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("NUTRITION_ALIGN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("store.backend", string(types.StoreSQLite))
	viper.SetDefault("store.catalog_dir", "data/catalog")
	viper.SetDefault("store.index_dir", "data/index")
	viper.SetDefault("store.timeout", "30s")
	viper.SetDefault("store.user_agent", "nutrition-align/"+version)
	viper.SetDefault("store.max_retries", 3)

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.addr", "localhost:6379")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.prefix", "nutrition-align")

	viper.SetDefault("retriever.max_concurrent", 8)
	viper.SetDefault("retriever.query_timeout", "10s")
	viper.SetDefault("retriever.retries", 1)
	viper.SetDefault("retriever.retry_delay", "200ms")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	viper.SetDefault("workers", 4)
	viper.SetDefault("telemetry_dir", "data/telemetry")
	viper.SetDefault("secrets_dir", ".secrets")
}

// runtimeConfig decodes the merged file, environment and flag settings.
func runtimeConfig() (types.RuntimeConfig, error) {
	var rc types.RuntimeConfig
	if err := viper.Unmarshal(&rc); err != nil {
		return rc, fmt.Errorf("decoding runtime config: %w", err)
	}
	return rc, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

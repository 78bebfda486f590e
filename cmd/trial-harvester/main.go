// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the trial-harvester CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the trial-harvester CLI.
var rootCmd = &cobra.Command{
	Use:   "trial-harvester",
	Short: "Harvest structured clinical-trial records from the EU register",
	Long: `trial-harvester retrieves clinical-trial records from the EU Clinical
Trials Register, which publishes data only as paginated HTML. It fetches
search pages, per-trial protocol documents, and results documents with
retry and caching, merges the three sources into one flat record per
trial, and persists the records to a local SQLite store alongside raw
per-trial artifacts.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./trial-harvester.yaml or ~/.config/trial-harvester/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trial-harvester")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "trial-harvester"))
		}
	}

	viper.SetEnvPrefix("TRIAL_HARVESTER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

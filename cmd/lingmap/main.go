// Package main provides the lingmap CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	// gazetteerFlag overrides the configured gazetteer table
	gazetteerFlag string
	noCache       bool
)

// logger is built once in PersistentPreRunE.
var logger = zap.NewNop()

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		exit(exitCodeFor(err))
	}
	flushLogger()
}

// exit flushes buffered log entries, which os.Exit would drop, then exits.
func exit(code int) {
	flushLogger()
	os.Exit(code)
}

func flushLogger() {
	// Sync on a terminal stderr reports EINVAL on Linux; nothing to do about it.
	_ = logger.Sync()
}

var rootCmd = &cobra.Command{
	Use:   "lingmap",
	Short: "Interactive maps of linguistic features",
	Long: `lingmap draws interactive maps of languages and their features.

Core features:
  - Render YAML map descriptions bound to CSV data
  - Quick maps straight from the command line
  - Fetch typological data from WALS, AUTOTYP, AfBo, SAILS and PHOIBLE
  - Look up languages in a Glottolog-style gazetteer
  - Elevation of languages via an Open-Elevation service

Maps are self-contained HTML pages built on Leaflet.
All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&gazetteerFlag, "gazetteer", "", "Gazetteer table (default: gazetteer_path from config)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Do not read or write the download cache")
	rootCmd.Version = Version
}

func setup(cmd *cobra.Command, args []string) error {
	// Load .env file if present
	_ = godotenv.Load()

	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.Encoding = "console"
		logger, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	return nil
}

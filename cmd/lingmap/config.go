package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/lingmap/internal/config"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configInitCmd.Flags().StringVar(&configInitGazetteer, "gazetteer-path", "", "Gazetteer table to record in the config")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configInitGazetteer string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration: the config file merged with LINGMAP_*
environment variables and defaults.

Usage:
  lingmap config              # Show all config
  lingmap config init         # Write a config file with the defaults

Keys:
  gazetteer_path        Glottolog-style languoid table (LINGMAP_GAZETTEER)
  cache_path            Download cache database (LINGMAP_CACHE)
  cache_ttl             How long downloads stay fresh (LINGMAP_CACHE_TTL)
  http_timeout          Per-request timeout (LINGMAP_HTTP_TIMEOUT)
  rate_limit            Requests per second (LINGMAP_RATE_LIMIT)
  elevation_url         Open-Elevation lookup endpoint (LINGMAP_ELEVATION_URL)
  autotyp_mapping_path  AUTOTYP LID to glottocode mapping (LINGMAP_AUTOTYP_MAPPING)`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Args:  cobra.NoArgs,
	Run:   runConfigInit,
}

// ConfigResponse is the response for config.
type ConfigResponse struct {
	Path   string               `json:"path"`
	Exists bool                 `json:"exists"`
	Config *config.GlobalConfig `json:"config"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

func runConfig(cmd *cobra.Command, args []string) {
	cfg := mustLoadGlobalConfig()
	path := config.GlobalConfigPath()
	_, err := os.Stat(path)

	if !humanOutput {
		outputJSON(ConfigResponse{Path: path, Exists: err == nil, Config: cfg})
		return
	}
	outputHuman("config file:          %s", path)
	if err != nil {
		outputHuman(" (not found)")
	}
	outputHuman("\n")
	outputHuman("gazetteer_path:       %s\n", cfg.GazetteerPath)
	outputHuman("cache_path:           %s\n", cfg.CachePath)
	outputHuman("cache_ttl:            %s\n", cfg.CacheTTL)
	outputHuman("http_timeout:         %s\n", cfg.HTTPTimeout)
	outputHuman("rate_limit:           %g\n", cfg.RateLimit)
	outputHuman("wals_url:             %s\n", cfg.WalsURL)
	outputHuman("autotyp_url:          %s\n", cfg.AutotypURL)
	outputHuman("afbo_url:             %s\n", cfg.AfboURL)
	outputHuman("sails_url:            %s\n", cfg.SailsURL)
	outputHuman("phoible_url:          %s\n", cfg.PhoibleURL)
	outputHuman("phoible_raw_url:      %s\n", cfg.PhoibleRawURL)
	outputHuman("elevation_url:        %s\n", cfg.ElevationURL)
	outputHuman("autotyp_mapping_path: %s\n", cfg.AutotypMappingPath)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path := config.GlobalConfigPath()
	if _, err := os.Stat(path); err == nil && !configInitForce {
		exitWithError(ExitConfigError, "%s already exists (use --force to overwrite)", path)
	}

	cfg := mustLoadGlobalConfig()
	if configInitGazetteer != "" {
		cfg.GazetteerPath = config.ExpandPath(configInitGazetteer)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Config written to %s\n", path)
	} else {
		outputJSON(StatusResponse{Status: "written", Path: path})
	}
}

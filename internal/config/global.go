package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// GlobalConfig represents configuration stored in ~/.config/lingmap/config.yml.
// Environment variables take precedence over the file; env-default fills
// whatever neither sets.
type GlobalConfig struct {
	GazetteerPath      string        `yaml:"gazetteer_path,omitempty"       json:"gazetteer_path"       env:"LINGMAP_GAZETTEER"`
	CachePath          string        `yaml:"cache_path,omitempty"           json:"cache_path"           env:"LINGMAP_CACHE"`
	CacheTTL           time.Duration `yaml:"cache_ttl,omitempty"            json:"cache_ttl"            env:"LINGMAP_CACHE_TTL"     env-default:"168h"`
	HTTPTimeout        time.Duration `yaml:"http_timeout,omitempty"         json:"http_timeout"         env:"LINGMAP_HTTP_TIMEOUT"  env-default:"60s"`
	RateLimit          float64       `yaml:"rate_limit,omitempty"           json:"rate_limit"           env:"LINGMAP_RATE_LIMIT"    env-default:"5"`
	WalsURL            string        `yaml:"wals_url,omitempty"             json:"wals_url"             env:"LINGMAP_WALS_URL"      env-default:"https://wals.info/feature/"`
	AutotypURL         string        `yaml:"autotyp_url,omitempty"          json:"autotyp_url"          env:"LINGMAP_AUTOTYP_URL"   env-default:"https://raw.githubusercontent.com/autotyp/autotyp-data/master/data/"`
	AfboURL            string        `yaml:"afbo_url,omitempty"             json:"afbo_url"             env:"LINGMAP_AFBO_URL"      env-default:"https://cdstar.shh.mpg.de/bitstreams/EAEA0-59C8-38F2-28DC-0/afbo_pair.csv.zip"`
	SailsURL           string        `yaml:"sails_url,omitempty"            json:"sails_url"            env:"LINGMAP_SAILS_URL"     env-default:"https://cdstar.shh.mpg.de/bitstreams/EAEA0-0A75-A1F1-F344-0/SAILS_dataset.cldf.zip"`
	PhoibleURL         string        `yaml:"phoible_url,omitempty"          json:"phoible_url"          env:"LINGMAP_PHOIBLE_URL"   env-default:"https://phoible.org/"`
	PhoibleRawURL      string        `yaml:"phoible_raw_url,omitempty"      json:"phoible_raw_url"      env:"LINGMAP_PHOIBLE_RAW_URL" env-default:"https://raw.githubusercontent.com/phoible/dev/master/data/phoible.csv"`
	ElevationURL       string        `yaml:"elevation_url,omitempty"        json:"elevation_url"        env:"LINGMAP_ELEVATION_URL" env-default:"http://127.0.0.1:8080/api/v1/lookup"`
	AutotypMappingPath string        `yaml:"autotyp_mapping_path,omitempty" json:"autotyp_mapping_path" env:"LINGMAP_AUTOTYP_MAPPING"`
}

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// LoadGlobalConfig loads the global configuration file and environment.
// A missing file is not an error: the result then comes from the
// environment and defaults alone.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := ReadGlobalConfig(GlobalConfigPath())
	if err != nil {
		return nil, err
	}

	globalConfigCache = cfg
	return cfg, nil
}

// ReadGlobalConfig reads the configuration at path without caching.
func ReadGlobalConfig(path string) (*GlobalConfig, error) {
	var cfg GlobalConfig

	if _, err := os.Stat(path); path != "" && err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading global config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading global config from environment: %w", err)
	}

	cfg.GazetteerPath = ExpandPath(cfg.GazetteerPath)
	cfg.AutotypMappingPath = ExpandPath(cfg.AutotypMappingPath)
	if cfg.CachePath == "" {
		cfg.CachePath = DefaultCachePath()
	}
	cfg.CachePath = ExpandPath(cfg.CachePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *GlobalConfig) Validate() error {
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive, got %g", c.RateLimit)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ErrGazetteerNotConfigured is returned when no gazetteer table is set.
var ErrGazetteerNotConfigured = errors.New("gazetteer_path not configured")

// ErrGazetteerNotExist is returned when the configured gazetteer table doesn't exist.
var ErrGazetteerNotExist = errors.New("gazetteer_path does not exist")

// ResolveGazetteerPath picks the gazetteer table: override when non-empty,
// else the configured path. The file must exist.
func ResolveGazetteerPath(override string) (string, error) {
	path := ExpandPath(override)
	if path == "" {
		cfg, err := LoadGlobalConfig()
		if err != nil {
			return "", err
		}
		path = cfg.GazetteerPath
	}
	if path == "" {
		return "", ErrGazetteerNotConfigured
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrGazetteerNotExist, path)
	}
	return path, nil
}

// HelpfulConfigMessage returns a helpful message when gazetteer_path is not configured.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No gazetteer table configured.

Tip: download languoid.csv from Glottolog and point %s at it:
  mkdir -p %s
  echo 'gazetteer_path: /path/to/languoid.csv' > %s

or set LINGMAP_GAZETTEER, or pass --gazetteer.`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}

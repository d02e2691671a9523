package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/matsen/lingmap/internal/cache"
	"github.com/matsen/lingmap/internal/config"
	"github.com/matsen/lingmap/internal/dataset"
	"github.com/matsen/lingmap/internal/gazetteer"
)

// mustLoadGlobalConfig loads configuration, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// loadGazetteer opens the gazetteer table. With optional set, a missing
// configuration yields nil instead of an error.
func loadGazetteer(optional bool) (*gazetteer.Table, error) {
	path, err := config.ResolveGazetteerPath(gazetteerFlag)
	if err != nil {
		if optional && errors.Is(err, config.ErrGazetteerNotConfigured) {
			return nil, nil
		}
		return nil, err
	}
	t, err := gazetteer.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("gazetteer loaded")
	return t, nil
}

// mustLoadGazetteer loads the gazetteer table, exits on error.
func mustLoadGazetteer() *gazetteer.Table {
	t, err := loadGazetteer(false)
	if errors.Is(err, config.ErrGazetteerNotConfigured) {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		exit(ExitConfigError)
	}
	if err != nil {
		fail(err)
	}
	return t
}

// newFetcher returns a fetcher configured from cfg. The returned function
// closes the cache.
func newFetcher(cfg *config.GlobalConfig) (*dataset.Fetcher, func()) {
	opts := []dataset.Option{
		dataset.WithTimeout(cfg.HTTPTimeout),
		dataset.WithRateLimit(cfg.RateLimit),
		dataset.WithLogger(logger),
	}
	closer := func() {}
	if !noCache {
		c, err := cache.Open(cfg.CachePath)
		if err != nil {
			logger.Sugar().Warnf("cache disabled: %v", err)
		} else {
			opts = append(opts, dataset.WithCache(c, cfg.CacheTTL))
			closer = func() { c.Close() }
		}
	}
	return dataset.NewFetcher(opts...), closer
}

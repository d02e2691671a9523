package main

import (
	"errors"

	"github.com/matsen/lingmap/internal/config"
	"github.com/matsen/lingmap/internal/dataset"
	"github.com/matsen/lingmap/internal/encode"
	"github.com/matsen/lingmap/internal/gazetteer"
	"github.com/matsen/lingmap/internal/lingmap"
)

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (missing gazetteer, invalid map description)
	ExitDataError    = 3 // Data error (malformed table, feature cannot be encoded)
	ExitNoData       = 4 // A dataset returned no rows
	ExitNetworkError = 5 // Remote service unreachable or refused the request
)

// exitCodeFor classifies err.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case lingmap.IsConfigError(err),
		errors.Is(err, config.ErrGazetteerNotConfigured),
		errors.Is(err, config.ErrGazetteerNotExist):
		return ExitConfigError
	case errors.Is(err, encode.ErrEncoding),
		errors.Is(err, gazetteer.ErrMalformedTable),
		errors.Is(err, dataset.ErrInvalidResponse):
		return ExitDataError
	case errors.Is(err, dataset.ErrNoData):
		return ExitNoData
	case dataset.IsNetworkError(err), dataset.IsNotFound(err):
		return ExitNetworkError
	}
	return ExitError
}

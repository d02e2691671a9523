package dataset

import (
	"errors"
	"fmt"
)

// Common errors returned by the fetcher and the adapters.
var (
	// ErrNotFound indicates the remote resource does not exist.
	ErrNotFound = errors.New("dataset resource not found")

	// ErrRateLimited indicates the remote server refused with 429.
	ErrRateLimited = errors.New("dataset server rate limit exceeded")

	// ErrRemote indicates any other HTTP error status.
	ErrRemote = errors.New("dataset server error")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error fetching dataset")

	// ErrInvalidResponse indicates a body that could not be parsed.
	ErrInvalidResponse = errors.New("invalid dataset response")

	// ErrNoData indicates that nothing usable was retrieved.
	ErrNoData = errors.New("no data retrieved")
)

// FetchError is a failed HTTP request.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
}

// Unwrap classifies the status code.
func (e *FetchError) Unwrap() error {
	switch {
	case e.StatusCode == 404:
		return ErrNotFound
	case e.StatusCode == 429:
		return ErrRateLimited
	default:
		return ErrRemote
	}
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsNetworkError returns true if the error is a transport failure or HTTP error.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetworkError) || errors.Is(err, ErrRemote) || IsRateLimited(err)
}

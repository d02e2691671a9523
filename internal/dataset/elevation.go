package dataset

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matsen/lingmap/internal/geo"
)

const (
	// DefaultElevationURL is a locally running Open-Elevation server.
	DefaultElevationURL = "http://127.0.0.1:8080/api/v1/lookup"
	// DefaultChunkSize is the number of locations sent per request.
	DefaultChunkSize = 1000
)

// Elevation queries an Open-Elevation compatible lookup service.
type Elevation struct {
	Fetcher   *Fetcher
	URL       string
	ChunkSize int
}

type elevationLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type elevationRequest struct {
	Locations []elevationLocation `json:"locations"`
}

type elevationResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// Lookup returns the elevation in metres of each location, in order.
func (e *Elevation) Lookup(ctx context.Context, coords []geo.Coordinates) ([]float64, error) {
	url := e.URL
	if url == "" {
		url = DefaultElevationURL
	}
	size := e.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	out := make([]float64, 0, len(coords))
	for start := 0; start < len(coords); start += size {
		end := min(start+size, len(coords))
		req := elevationRequest{Locations: make([]elevationLocation, 0, end-start)}
		for _, c := range coords[start:end] {
			req.Locations = append(req.Locations, elevationLocation{Latitude: c.Lat, Longitude: c.Lon})
		}

		var resp elevationResponse
		if err := e.Fetcher.PostJSON(ctx, url, req, &resp); err != nil {
			return nil, fmt.Errorf("elevation lookup for locations %d-%d: %w", start, end-1, err)
		}
		if len(resp.Results) != end-start {
			return nil, fmt.Errorf("%w: %d elevations for %d locations", ErrInvalidResponse, len(resp.Results), end-start)
		}
		for _, r := range resp.Results {
			out = append(out, r.Elevation)
		}
		e.Fetcher.Logger().Debug("elevation chunk", zap.Int("from", start), zap.Int("to", end))
	}
	return out, nil
}

// Package geo provides the coordinate type shared by the lookup, encoding and rendering layers.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Coordinates is a (latitude, longitude) pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether both components are finite and inside the WGS84 range.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Point converts to an orb.Point, which stores longitude first.
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// Pair returns the coordinates in [lat, lon] order, the order Leaflet expects.
func (c Coordinates) Pair() [2]float64 {
	return [2]float64{c.Lat, c.Lon}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%g, %g)", c.Lat, c.Lon)
}

// FromPoint converts an orb.Point back to Coordinates.
func FromPoint(p orb.Point) Coordinates {
	return Coordinates{Lat: p.Lat(), Lon: p.Lon()}
}

// Parse reads latitude and longitude from their textual forms.
// Empty or non-numeric input is an error; range is checked separately with Valid.
func Parse(lat, lon string) (Coordinates, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parsing latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parsing longitude %q: %w", lon, err)
	}
	return Coordinates{Lat: la, Lon: lo}, nil
}

// Bound returns the bounding box of the valid coordinates.
// The zero orb.Bound is returned when none are valid.
func Bound(coords []Coordinates) orb.Bound {
	var mp orb.MultiPoint
	for _, c := range coords {
		if c.Valid() {
			mp = append(mp, c.Point())
		}
	}
	if len(mp) == 0 {
		return orb.Bound{}
	}
	return mp.Bound()
}

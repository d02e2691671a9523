package viz

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matsen/lingmap/internal/geo"
)

func TestGeoJSON(t *testing.T) {
	doc := sampleDocument()
	doc.Rectangles = []Rectangle{{Corners: [2]geo.Coordinates{{Lat: 0, Lon: 0}, {Lat: 10, Lon: 20}}}}
	doc.Lines = []Line{{Locations: []geo.Coordinates{{Lat: 0, Lon: 0}, {Lat: 5, Lon: 5}}, Color: "red"}}

	data, err := GeoJSON(doc)
	if err != nil {
		t.Fatalf("GeoJSON() error = %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("UnmarshalFeatureCollection() error = %v", err)
	}

	// The ring primitive is skipped, only the inner disc is exported.
	if len(fc.Features) != 3 {
		t.Fatalf("len(Features) = %d, want 3", len(fc.Features))
	}

	pt, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok {
		t.Fatalf("first feature geometry = %T, want orb.Point", fc.Features[0].Geometry)
	}
	if pt.Lon() != 39.33 || pt.Lat() != 44 {
		t.Errorf("point = %v, want lon 39.33 lat 44", pt)
	}
	if got := fc.Features[0].Properties.MustString("group"); got != "SOV" {
		t.Errorf("group = %q", got)
	}
	if got := fc.Features[0].Properties.MustString("popup"); got != "Adyghe" {
		t.Errorf("popup = %q", got)
	}

	if _, ok := fc.Features[1].Geometry.(orb.Polygon); !ok {
		t.Errorf("rectangle geometry = %T, want orb.Polygon", fc.Features[1].Geometry)
	}
	if got := fc.Features[2].Properties.MustString("stroke"); got != "red" {
		t.Errorf("line stroke = %q", got)
	}
}

func TestGeoJSON_Nil(t *testing.T) {
	if _, err := GeoJSON(nil); err == nil {
		t.Error("GeoJSON(nil) should fail")
	}
}

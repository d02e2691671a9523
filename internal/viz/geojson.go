package viz

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matsen/lingmap/internal/marker"
)

// GeoJSON exports the document as a FeatureCollection: one Point per
// top-layer marker, a Polygon per rectangle and a LineString per line.
func GeoJSON(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	fc := geojson.NewFeatureCollection()

	for _, l := range doc.Layers {
		for _, m := range l.Markers {
			if m.Layer != marker.LayerInner {
				continue
			}
			f := geojson.NewFeature(m.Location.Point())
			f.Properties["kind"] = string(m.Kind)
			if l.Name != "" {
				f.Properties["group"] = l.Name
			}
			if m.FillColor != "" && m.Kind == marker.KindCircle {
				f.Properties["fill"] = m.FillColor
			}
			if m.Glyph != "" {
				f.Properties["glyph"] = m.Glyph
			}
			if m.Tooltip != "" {
				f.Properties["tooltip"] = m.Tooltip
			}
			if m.Popup != nil {
				f.Properties["popup"] = m.Popup.HTML
			}
			fc.Append(f)
		}
	}

	for _, r := range doc.Rectangles {
		b := orb.MultiPoint{r.Corners[0].Point(), r.Corners[1].Point()}.Bound()
		f := geojson.NewFeature(b.ToPolygon())
		f.Properties["stroke"] = shapeColor(r.Color)
		if r.Tooltip != "" {
			f.Properties["tooltip"] = r.Tooltip
		}
		fc.Append(f)
	}

	for _, l := range doc.Lines {
		ls := make(orb.LineString, 0, len(l.Locations))
		for _, c := range l.Locations {
			ls = append(ls, c.Point())
		}
		f := geojson.NewFeature(ls)
		f.Properties["stroke"] = shapeColor(l.Color)
		if l.Tooltip != "" {
			f.Properties["tooltip"] = l.Tooltip
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	return data, nil
}

// Package marker composes the drawing primitives that make up one map marker.
//
// A composite marker has up to four stacked circles. From bottom to top:
//
//	outer-stroke ring -> outer (stroke feature) disc -> inner-stroke ring -> inner disc
//
// Renderers must draw every LayerOuterStroke primitive of the map before any
// LayerOuter primitive and so on, so that inner discs always sit on top.
package marker

import (
	"fmt"
	"html"

	"github.com/matsen/lingmap/internal/geo"
)

// Layer is the z-order slot of a primitive. Lower layers are drawn first.
type Layer int

const (
	LayerOuterStroke Layer = iota
	LayerOuter
	LayerInnerStroke
	LayerInner
)

func (l Layer) String() string {
	switch l {
	case LayerOuterStroke:
		return "outer-stroke"
	case LayerOuter:
		return "outer"
	case LayerInnerStroke:
		return "inner-stroke"
	case LayerInner:
		return "inner"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Kind is the shape of a primitive.
type Kind string

const (
	KindCircle Kind = "circle"
	KindGlyph  Kind = "glyph"
	KindIcon   Kind = "icon"
)

// Black fills the stroke rings.
const Black = "#000000"

// DefaultFill is used for points without a primary feature.
const DefaultFill = "#DEB887"

// StrokeScale is the ring radius relative to the disc it outlines.
const StrokeScale = 1.15

// Primitive is one drawable element.
type Primitive struct {
	Layer       Layer           `json:"layer"`
	Kind        Kind            `json:"kind"`
	Location    geo.Coordinates `json:"location"`
	Radius      float64         `json:"radius,omitempty"`
	Stroke      bool            `json:"stroke"`
	Weight      float64         `json:"weight,omitempty"`
	Color       string          `json:"color,omitempty"`
	FillColor   string          `json:"fillColor,omitempty"`
	FillOpacity float64         `json:"fillOpacity"`
	Glyph       string          `json:"glyph,omitempty"`
	// HTML is the icon body for KindGlyph and KindIcon.
	HTML   string     `json:"html,omitempty"`
	Anchor [2]float64 `json:"anchor,omitempty"`
}

// Config holds the marker geometry shared by all points of a map.
type Config struct {
	Radius        float64
	StrokeRadius  float64
	Opacity       float64
	StrokeOpacity float64
	// Stroked draws a thin outline on discs when Unstroked is false.
	Stroked bool
	// Unstroked draws separate black rings behind discs instead of outlines.
	Unstroked bool
	UseShapes bool
}

// DefaultConfig returns the default marker geometry.
func DefaultConfig() Config {
	return Config{
		Radius:        7,
		StrokeRadius:  12,
		Opacity:       1,
		StrokeOpacity: 1,
		Stroked:       true,
		Unstroked:     true,
	}
}

func circle(layer Layer, at geo.Coordinates, radius, opacity float64, fill string, stroke bool) Primitive {
	return Primitive{
		Layer:       layer,
		Kind:        KindCircle,
		Location:    at,
		Radius:      radius,
		Stroke:      stroke,
		Weight:      1,
		Color:       Black,
		FillColor:   fill,
		FillOpacity: opacity,
	}
}

func ring(layer Layer, at geo.Coordinates, radius, opacity float64) Primitive {
	return circle(layer, at, radius*StrokeScale, opacity, Black, true)
}

// Compose returns the primitives for one point in bottom-to-top order.
//
// primary is a colour, or a glyph when cfg.UseShapes is set. stroke is the
// stroke-feature colour, nil when the map has no stroke features. When both
// shapes and stroke features are requested, stroke features win and primary
// is drawn as a disc.
func Compose(at geo.Coordinates, primary string, stroke *string, cfg Config) []Primitive {
	if stroke != nil {
		if cfg.Unstroked {
			return []Primitive{
				ring(LayerOuterStroke, at, cfg.StrokeRadius, cfg.StrokeOpacity),
				circle(LayerOuter, at, cfg.StrokeRadius, cfg.StrokeOpacity, *stroke, false),
				ring(LayerInnerStroke, at, cfg.Radius, cfg.Opacity),
				circle(LayerInner, at, cfg.Radius, cfg.Opacity, primary, false),
			}
		}
		return []Primitive{
			circle(LayerOuter, at, cfg.StrokeRadius, cfg.StrokeOpacity, *stroke, cfg.Stroked),
			circle(LayerInner, at, cfg.Radius, cfg.Opacity, primary, cfg.Stroked),
		}
	}

	if cfg.UseShapes {
		return []Primitive{Glyph(at, primary, cfg.Opacity)}
	}
	if cfg.Unstroked {
		return []Primitive{
			ring(LayerInnerStroke, at, cfg.Radius, cfg.Opacity),
			circle(LayerInner, at, cfg.Radius, cfg.Opacity, primary, false),
		}
	}
	return []Primitive{circle(LayerInner, at, cfg.Radius, cfg.Opacity, primary, cfg.Stroked)}
}

// Glyph returns a text marker showing shape.
func Glyph(at geo.Coordinates, shape string, opacity float64) Primitive {
	return Primitive{
		Layer:       LayerInner,
		Kind:        KindGlyph,
		Location:    at,
		FillColor:   Black,
		FillOpacity: opacity,
		Glyph:       shape,
		HTML:        `<div style="font-size: 170%">` + html.EscapeString(shape) + `</div>`,
	}
}

// Concentric draws one disc per colour, largest first, for points carrying
// several overlapping features. A single colour gets a disc of radius; n
// colours start at n*increment and shrink by increment each step.
func Concentric(at geo.Coordinates, colors []string, radius, increment float64, cfg Config) []Primitive {
	r := radius
	if len(colors) > 1 {
		r = float64(len(colors)) * increment
	}
	out := make([]Primitive, 0, len(colors))
	for _, c := range colors {
		out = append(out, circle(LayerInner, at, r, cfg.Opacity, c, cfg.Stroked))
		r -= increment
	}
	return out
}

// Icon places a trusted HTML fragment such as an inline SVG chart.
func Icon(at geo.Coordinates, body string, anchor [2]float64) Primitive {
	return Primitive{
		Layer:       LayerInner,
		Kind:        KindIcon,
		Location:    at,
		FillOpacity: 1,
		HTML:        body,
		Anchor:      anchor,
	}
}

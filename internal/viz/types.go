// Package viz renders a map Document to a self-contained Leaflet HTML page.
package viz

import (
	"github.com/matsen/lingmap/internal/encode"
	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/marker"
)

// Document contains everything needed to render one map.
type Document struct {
	ID           string
	Center       geo.Coordinates
	Zoom         int
	ControlScale bool
	PreferCanvas bool
	Title        string

	// Layers are added to the map in order. Markers inside a layer are drawn in order.
	Layers       []Layer
	LayerControl *LayerControl
	Legends      []Legend

	// Heatmap is drawn when non-empty.
	Heatmap    []geo.Coordinates
	Minimap    *Minimap
	Rectangles []Rectangle
	Lines      []Line
}

// Layer is a toggleable group of markers. The default layer has no name.
type Layer struct {
	Name    string
	Markers []Marker
}

// Marker is a drawing primitive with optional popup and tooltip.
type Marker struct {
	marker.Primitive
	Popup   *Popup
	Tooltip string
}

// Popup content. HTML is trusted markup; IFrame renders it in an isolated frame.
type Popup struct {
	HTML   string
	IFrame bool
}

// LayerControl is the layer toggle widget.
type LayerControl struct {
	Position  string
	Collapsed bool
}

// Legend is one key box on the map.
type Legend struct {
	ID       string
	Title    string
	Position string
	Shapes   bool
	encode.Legend
}

// Minimap is an inset overview map.
type Minimap struct {
	Position        string `json:"position" yaml:"position"`
	Width           int    `json:"width" yaml:"width"`
	Height          int    `json:"height" yaml:"height"`
	CollapsedWidth  int    `json:"collapsedWidth" yaml:"collapsed_width"`
	CollapsedHeight int    `json:"collapsedHeight" yaml:"collapsed_height"`
	ZoomAnimation   bool   `json:"zoomAnimation" yaml:"zoom_animation"`
}

// DefaultMinimap returns the stock minimap geometry.
func DefaultMinimap() Minimap {
	return Minimap{
		Position:        "bottomleft",
		Width:           150,
		Height:          150,
		CollapsedWidth:  25,
		CollapsedHeight: 25,
		ZoomAnimation:   true,
	}
}

// Rectangle is an outlined box given by two opposite corners.
type Rectangle struct {
	Corners [2]geo.Coordinates `yaml:"corners"`
	Tooltip string             `yaml:"tooltip"`
	Popup   string             `yaml:"popup"`
	Color   string             `yaml:"color"`
}

// Line is a polyline.
type Line struct {
	Locations    []geo.Coordinates `yaml:"locations"`
	Tooltip      string            `yaml:"tooltip"`
	Popup        string            `yaml:"popup"`
	Color        string            `yaml:"color"`
	SmoothFactor float64           `yaml:"smooth_factor"`
}

// IsEmpty reports whether the document draws nothing but the base map.
func (d *Document) IsEmpty() bool {
	for _, l := range d.Layers {
		if len(l.Markers) > 0 {
			return false
		}
	}
	return len(d.Heatmap) == 0 && len(d.Rectangles) == 0 && len(d.Lines) == 0
}

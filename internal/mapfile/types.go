// Package mapfile reads YAML map descriptions and turns them into map builders.
package mapfile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/matsen/lingmap/internal/encode"
	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/viz"
)

// File is one map description.
type File struct {
	Title string `yaml:"title"`

	// Data is a CSV table, relative to the map file, that columns refer to.
	Data            string `yaml:"data"`
	Separator       string `yaml:"separator"`
	LanguageColumn  string `yaml:"language_column"`
	LatitudeColumn  string `yaml:"latitude_column"`
	LongitudeColumn string `yaml:"longitude_column"`
	// Languages lists languages inline instead of reading them from Data.
	Languages []string `yaml:"languages"`

	Features       *Feature     `yaml:"features"`
	StrokeFeatures *Feature     `yaml:"stroke_features"`
	Popups         *Popups      `yaml:"popups"`
	Tooltips       *Column      `yaml:"tooltips"`
	Minicharts     *Minicharts  `yaml:"minicharts"`
	Overlapping    *Overlapping `yaml:"overlapping"`

	StartLocation *Location `yaml:"start_location"`
	StartZoom     *int      `yaml:"start_zoom"`

	Legend            *Legend `yaml:"legend"`
	StrokeLegend      *Legend `yaml:"stroke_legend"`
	ControlPosition   string  `yaml:"control_position"`
	LanguagesInPopups *bool   `yaml:"languages_in_popups"`
	Stroked           *bool   `yaml:"stroked"`
	Unstroked         *bool   `yaml:"unstroked"`
	ControlScale      *bool   `yaml:"control_scale"`
	PreferCanvas      bool    `yaml:"prefer_canvas"`

	Heatmap    *Heatmap        `yaml:"heatmap"`
	Minimap    *Minimap        `yaml:"minimap"`
	Rectangles []viz.Rectangle `yaml:"rectangles"`
	Lines      []viz.Line      `yaml:"lines"`

	Colormap *encode.Gradient `yaml:"colormap"`
	Palettes *Palettes        `yaml:"palettes"`
	Seed     *int64           `yaml:"seed"`

	baseDir string
}

// Column takes per-language values either from a data column or inline.
type Column struct {
	Column string   `yaml:"column"`
	Values []string `yaml:"values"`
}

// Feature is a marker feature with its display options.
type Feature struct {
	Column  `yaml:",inline"`
	Numeric bool    `yaml:"numeric"`
	Control bool    `yaml:"control"`
	Shapes  bool    `yaml:"shapes"`
	Radius  float64 `yaml:"radius"`
	Opacity float64 `yaml:"opacity"`
}

// Popups are popup bodies. HTML bodies are shown in an iframe.
type Popups struct {
	Column `yaml:",inline"`
	HTML   bool `yaml:"html"`
}

// Legend overrides one legend box. Unset fields keep their defaults.
type Legend struct {
	Show     *bool  `yaml:"show"`
	Title    string `yaml:"title"`
	Position string `yaml:"position"`
}

// Heatmap adds a density layer.
type Heatmap struct {
	Enabled bool `yaml:"enabled"`
	// Only draws the heatmap and nothing else.
	Only   bool       `yaml:"only"`
	Points []Location `yaml:"points"`
}

// Minicharts replaces markers with charts built from numeric columns.
type Minicharts struct {
	Type       string   `yaml:"type"`
	Columns    []string `yaml:"columns"`
	Colors     []string `yaml:"colors"`
	Size       float64  `yaml:"size"`
	Labels     bool     `yaml:"labels"`
	StartAngle float64  `yaml:"start_angle"`
}

// Overlapping draws concentric discs from a column of separated values.
type Overlapping struct {
	Column    string            `yaml:"column"`
	Separator string            `yaml:"separator"`
	Values    [][]string        `yaml:"values"`
	Radius    float64           `yaml:"radius"`
	Increment float64           `yaml:"increment"`
	Mapping   map[string]string `yaml:"mapping"`
}

// Palettes replaces the default colour and shape lists.
type Palettes struct {
	Colors       []string `yaml:"colors"`
	StrokeColors []string `yaml:"stroke_colors"`
	Shapes       []string `yaml:"shapes"`
}

// Location is either a region shortcut or a point. In YAML it is written as
// a string, a [lat, lon] sequence or a {lat, lon} mapping.
type Location struct {
	Shortcut string
	Point    geo.Coordinates
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Location) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		l.Shortcut = value.Value
		return nil
	case yaml.SequenceNode:
		var pair []float64
		if err := value.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: location needs [lat, lon], got %d numbers", value.Line, len(pair))
		}
		l.Point = geo.Coordinates{Lat: pair[0], Lon: pair[1]}
		return nil
	case yaml.MappingNode:
		return value.Decode(&l.Point)
	}
	return fmt.Errorf("line %d: cannot read location", value.Line)
}

// Minimap is an inset overview map. `minimap: true` uses the defaults;
// a mapping overrides individual fields.
type Minimap struct {
	Enabled bool
	viz.Minimap
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Minimap) UnmarshalYAML(value *yaml.Node) error {
	m.Minimap = viz.DefaultMinimap()
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&m.Enabled)
	}
	m.Enabled = true
	return value.Decode(&m.Minimap)
}

package lingmap

import (
	"sort"

	"github.com/matsen/lingmap/internal/encode"
	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/marker"
	"github.com/matsen/lingmap/internal/viz"
)

// Config is the validated description of one map. Obtain it from
// Builder.Config; a Config is never modified afterwards and may be shared
// between goroutines and builds.
type Config struct {
	Languages []string

	Features       *FeatureSet
	StrokeFeatures *FeatureSet
	Popups         *Popups
	Tooltips       []string
	HasTooltips    bool
	// Coordinates overrides gazetteer lookups when non-nil. Aligned with Languages.
	Coordinates []geo.Coordinates

	Heatmap     *Heatmap
	HeatmapOnly bool
	Minicharts  *Minicharts
	Overlapping *Overlapping

	Minimap    *viz.Minimap
	Rectangles []viz.Rectangle
	Lines      []viz.Line
	Title      string

	StartLocation geo.Coordinates
	StartZoom     int
	ControlScale  bool
	PreferCanvas  bool

	Legend          LegendOptions
	StrokeLegend    LegendOptions
	ControlPosition string

	LanguagesInPopups bool
	Markers           marker.Config
	Palettes          Palettes
	Colormap          encode.Gradient
	Seed              int64
}

// FeatureSet is one feature value per language.
type FeatureSet struct {
	Values  []string
	Numeric bool
	// Control puts each distinct value in its own toggleable layer.
	Control bool
}

// Popups is one popup body per language.
type Popups struct {
	Values []string
	// HTML renders values as raw markup in an iframe instead of escaped text.
	HTML bool
}

// Heatmap is a density layer. Points are drawn in addition to the resolved
// gazetteer coordinates of the languages.
type Heatmap struct {
	Points []geo.Coordinates
}

// LegendOptions controls one legend box.
type LegendOptions struct {
	Show     bool
	Title    string
	Position string
}

// Palettes overrides the default token lists.
type Palettes struct {
	Colors       []string
	StrokeColors []string
	Shapes       []string
}

// choose picks the token list for a feature. Stroke features are always coloured.
func (p Palettes) choose(useShapes, isStroke bool) ([]string, encode.Kind) {
	switch {
	case isStroke:
		return p.StrokeColors, encode.KindColor
	case useShapes:
		return p.Shapes, encode.KindShape
	default:
		return p.Colors, encode.KindColor
	}
}

// Minicharts replaces markers with small inline charts.
type Minicharts struct {
	Type  string
	Names []string
	// Series[k][i] is the value of series k for language i.
	Series     [][]float64
	Colors     []string
	Size       float64
	Labels     bool
	StartAngle float64
}

// Overlapping draws concentric discs, one per value a language carries.
type Overlapping struct {
	Groups    [][]string
	Radius    float64
	Increment float64
	// Mapping assigns colours to values. Nil assigns palette colours in first-occurrence order.
	Mapping map[string]string
}

// StartLocation is a named region with its view.
type StartLocation struct {
	Center geo.Coordinates
	Zoom   int
}

// StartLocations are the region shortcuts accepted by SetStartLocationShortcut.
var StartLocations = map[string]StartLocation{
	"Central Europe":      {geo.Coordinates{Lat: 50, Lon: 0}, 4},
	"Caucasus":            {geo.Coordinates{Lat: 43, Lon: 42}, 6},
	"Australia & Oceania": {geo.Coordinates{Lat: -16, Lon: 159}, 3},
	"Papua New Guinea":    {geo.Coordinates{Lat: -5, Lon: 141}, 6},
	"Africa":              {geo.Coordinates{Lat: 3, Lon: 22}, 3},
	"Asia":                {geo.Coordinates{Lat: 36, Lon: 100}, 3},
	"North America":       {geo.Coordinates{Lat: 51, Lon: -102}, 3},
	"Central America":     {geo.Coordinates{Lat: 19, Lon: -81}, 4},
	"South America":       {geo.Coordinates{Lat: -27, Lon: -49}, 3},
}

// StartLocationNames returns the shortcut names, sorted.
func StartLocationNames() []string {
	names := make([]string, 0, len(StartLocations))
	for n := range StartLocations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

const (
	// DefaultLegendTitle is used for both legends.
	DefaultLegendTitle = "Legend"

	// DefaultMinichartSize is the chart edge in pixels.
	DefaultMinichartSize = 44
)

// Legend settings of a new Builder.
var (
	DefaultLegend       = LegendOptions{Show: true, Title: DefaultLegendTitle, Position: "bottomright"}
	DefaultStrokeLegend = LegendOptions{Show: true, Title: DefaultLegendTitle, Position: "topright"}
)

func defaultConfig(languages []string) Config {
	return Config{
		Languages:         languages,
		HeatmapOnly:       len(languages) == 0,
		StartZoom:         2,
		ControlScale:      true,
		Legend:            DefaultLegend,
		StrokeLegend:      DefaultStrokeLegend,
		ControlPosition:   "topright",
		LanguagesInPopups: true,
		Markers:           marker.DefaultConfig(),
		Palettes: Palettes{
			Colors:       encode.DefaultColors,
			StrokeColors: encode.DefaultStrokeColors,
			Shapes:       encode.DefaultShapes,
		},
		Colormap: encode.DefaultGradient,
		Seed:     encode.DefaultSeed,
	}
}

// validate checks cross-field rules. Config values may be written by hand,
// so every per-language array is checked again here.
func (c *Config) validate() error {
	if len(c.Languages) == 0 && !c.HeatmapOnly {
		return configErrorf("languages", "no languages given")
	}
	if c.HeatmapOnly && c.Heatmap == nil {
		return configErrorf("heatmap", "no languages and no heatmap: nothing to draw")
	}
	if err := c.checkLengths(); err != nil {
		return err
	}
	if c.Popups != nil && c.Popups.HTML && c.LanguagesInPopups {
		return configErrorf("popups", "HTML popups cannot be combined with language links; disable languages in popups")
	}
	if err := viz.ValidatePosition(c.Legend.Position, viz.ValidPositions); err != nil {
		return configErrorf("legend", "%v", err)
	}
	if err := viz.ValidatePosition(c.StrokeLegend.Position, viz.ValidPositions); err != nil {
		return configErrorf("stroke_legend", "%v", err)
	}
	if err := viz.ValidatePosition(c.ControlPosition, viz.ValidControlPositions); err != nil {
		return configErrorf("control_position", "%v", err)
	}
	if err := c.Colormap.Validate(); err != nil {
		return configErrorf("colormap", "%v", err)
	}
	if len(c.Palettes.Colors) == 0 || len(c.Palettes.StrokeColors) == 0 || len(c.Palettes.Shapes) == 0 {
		return configErrorf("palettes", "palettes must not be empty")
	}
	if c.Markers.Radius <= 0 || c.Markers.StrokeRadius <= 0 {
		return configErrorf("markers", "radius must be positive")
	}
	return nil
}

func (c *Config) checkLength(field string, n int) error {
	if n != len(c.Languages) {
		return configErrorf(field, "length %d does not match %d languages", n, len(c.Languages))
	}
	return nil
}

func (c *Config) checkLengths() error {
	if c.Features != nil {
		if err := c.checkLength("features", len(c.Features.Values)); err != nil {
			return err
		}
	}
	if c.StrokeFeatures != nil {
		if err := c.checkLength("stroke_features", len(c.StrokeFeatures.Values)); err != nil {
			return err
		}
	}
	if c.Popups != nil {
		if err := c.checkLength("popups", len(c.Popups.Values)); err != nil {
			return err
		}
	}
	if c.HasTooltips {
		if err := c.checkLength("tooltips", len(c.Tooltips)); err != nil {
			return err
		}
	}
	if c.Coordinates != nil {
		if err := c.checkLength("custom_coordinates", len(c.Coordinates)); err != nil {
			return err
		}
	}
	if c.Overlapping != nil {
		if err := c.checkLength("overlapping_features", len(c.Overlapping.Groups)); err != nil {
			return err
		}
	}
	if m := c.Minicharts; m != nil {
		if len(m.Names) != len(m.Series) {
			return configErrorf("minicharts", "%d names for %d series", len(m.Names), len(m.Series))
		}
		for k, s := range m.Series {
			if len(s) != len(c.Languages) {
				return configErrorf("minicharts", "series %q: length %d does not match %d languages", m.Names[k], len(s), len(c.Languages))
			}
		}
	}
	return nil
}

// clone returns a deep copy so that Builder and Config never share backing arrays.
func (c Config) clone() Config {
	out := c
	out.Languages = cloneSlice(c.Languages)
	out.Tooltips = cloneSlice(c.Tooltips)
	out.Coordinates = cloneSlice(c.Coordinates)
	out.Rectangles = cloneSlice(c.Rectangles)
	out.Lines = make([]viz.Line, len(c.Lines))
	for i, l := range c.Lines {
		l.Locations = cloneSlice(l.Locations)
		out.Lines[i] = l
	}
	if c.Lines == nil {
		out.Lines = nil
	}
	out.Palettes = Palettes{
		Colors:       cloneSlice(c.Palettes.Colors),
		StrokeColors: cloneSlice(c.Palettes.StrokeColors),
		Shapes:       cloneSlice(c.Palettes.Shapes),
	}
	if c.Features != nil {
		f := *c.Features
		f.Values = cloneSlice(f.Values)
		out.Features = &f
	}
	if c.StrokeFeatures != nil {
		f := *c.StrokeFeatures
		f.Values = cloneSlice(f.Values)
		out.StrokeFeatures = &f
	}
	if c.Popups != nil {
		p := *c.Popups
		p.Values = cloneSlice(p.Values)
		out.Popups = &p
	}
	if c.Heatmap != nil {
		out.Heatmap = &Heatmap{Points: cloneSlice(c.Heatmap.Points)}
	}
	if c.Minimap != nil {
		m := *c.Minimap
		out.Minimap = &m
	}
	if c.Minicharts != nil {
		m := *c.Minicharts
		m.Names = cloneSlice(m.Names)
		m.Colors = cloneSlice(m.Colors)
		m.Series = make([][]float64, len(c.Minicharts.Series))
		for i, s := range c.Minicharts.Series {
			m.Series[i] = cloneSlice(s)
		}
		out.Minicharts = &m
	}
	if c.Overlapping != nil {
		o := *c.Overlapping
		o.Groups = make([][]string, len(c.Overlapping.Groups))
		for i, g := range c.Overlapping.Groups {
			o.Groups[i] = cloneSlice(g)
		}
		if c.Overlapping.Mapping != nil {
			o.Mapping = make(map[string]string, len(c.Overlapping.Mapping))
			for k, v := range c.Overlapping.Mapping {
				o.Mapping[k] = v
			}
		}
		out.Overlapping = &o
	}
	return out
}

func cloneSlice[T any](xs []T) []T {
	if xs == nil {
		return nil
	}
	return append([]T(nil), xs...)
}

package lingmap

import (
	"github.com/matsen/lingmap/internal/encode"
	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/viz"
)

// Builder accumulates map settings. Every setter validates its input against
// the language list and leaves the builder untouched when it returns an error.
// A Builder must not be used from more than one goroutine.
type Builder struct {
	cfg Config
}

// NewBuilder starts a map for the given languages. With no languages the map
// is heatmap-only.
func NewBuilder(languages ...string) *Builder {
	return &Builder{cfg: defaultConfig(cloneSlice(languages))}
}

// Config validates cross-field rules and returns an independent copy of the settings.
func (b *Builder) Config() (Config, error) {
	if err := b.cfg.validate(); err != nil {
		return Config{}, err
	}
	return b.cfg.clone(), nil
}

func (b *Builder) checkLength(field string, n int) error {
	return b.cfg.checkLength(field, n)
}

// FeatureOption adjusts AddFeatures and AddStrokeFeatures.
type FeatureOption func(*featureOptions)

type featureOptions struct {
	numeric   bool
	control   bool
	useShapes bool
	radius    float64
	opacity   float64
}

// Numeric places values on a colormap instead of a palette.
func Numeric() FeatureOption { return func(o *featureOptions) { o.numeric = true } }

// Control adds a layer toggle per distinct value.
func Control() FeatureOption { return func(o *featureOptions) { o.control = true } }

// UseShapes draws glyphs instead of coloured discs.
func UseShapes() FeatureOption { return func(o *featureOptions) { o.useShapes = true } }

// Radius sets the disc radius in pixels.
func Radius(r float64) FeatureOption { return func(o *featureOptions) { o.radius = r } }

// Opacity sets the fill opacity.
func Opacity(op float64) FeatureOption { return func(o *featureOptions) { o.opacity = op } }

func applyFeatureOptions(opts []FeatureOption) featureOptions {
	var o featureOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func checkMarkerOptions(field string, o featureOptions) error {
	if o.radius < 0 {
		return configErrorf(field, "radius must be positive, got %g", o.radius)
	}
	if o.opacity < 0 || o.opacity > 1 {
		return configErrorf(field, "opacity must be within [0, 1], got %g", o.opacity)
	}
	return nil
}

// AddFeatures sets the primary feature, one value per language.
func (b *Builder) AddFeatures(values []string, opts ...FeatureOption) error {
	if err := b.checkLength("features", len(values)); err != nil {
		return err
	}
	o := applyFeatureOptions(opts)
	if err := checkMarkerOptions("features", o); err != nil {
		return err
	}
	b.cfg.Features = &FeatureSet{Values: cloneSlice(values), Numeric: o.numeric, Control: o.control}
	b.cfg.Markers.UseShapes = o.useShapes
	if o.radius > 0 {
		b.cfg.Markers.Radius = o.radius
	}
	if o.opacity > 0 {
		b.cfg.Markers.Opacity = o.opacity
	}
	return nil
}

// AddStrokeFeatures sets the secondary feature drawn as an outer disc.
// Stroke features are always discrete.
func (b *Builder) AddStrokeFeatures(values []string, opts ...FeatureOption) error {
	if err := b.checkLength("stroke_features", len(values)); err != nil {
		return err
	}
	o := applyFeatureOptions(opts)
	if o.numeric {
		return configErrorf("stroke_features", "stroke features cannot be numeric")
	}
	if o.useShapes {
		return configErrorf("stroke_features", "stroke features cannot use shapes")
	}
	if err := checkMarkerOptions("stroke_features", o); err != nil {
		return err
	}
	b.cfg.StrokeFeatures = &FeatureSet{Values: cloneSlice(values), Control: o.control}
	if o.radius > 0 {
		b.cfg.Markers.StrokeRadius = o.radius
	}
	if o.opacity > 0 {
		b.cfg.Markers.StrokeOpacity = o.opacity
	}
	return nil
}

// AddPopups sets one popup per language. With html set, values are raw markup.
func (b *Builder) AddPopups(values []string, html bool) error {
	if err := b.checkLength("popups", len(values)); err != nil {
		return err
	}
	b.cfg.Popups = &Popups{Values: cloneSlice(values), HTML: html}
	return nil
}

// AddTooltips sets one hover text per language.
func (b *Builder) AddTooltips(values []string) error {
	if err := b.checkLength("tooltips", len(values)); err != nil {
		return err
	}
	b.cfg.Tooltips = cloneSlice(values)
	b.cfg.HasTooltips = true
	return nil
}

// AddCustomCoordinates replaces gazetteer lookups with explicit positions.
func (b *Builder) AddCustomCoordinates(coords []geo.Coordinates) error {
	if err := b.checkLength("custom_coordinates", len(coords)); err != nil {
		return err
	}
	b.cfg.Coordinates = cloneSlice(coords)
	return nil
}

// AddHeatmap enables the density layer with extra points.
func (b *Builder) AddHeatmap(points []geo.Coordinates) error {
	for i, p := range points {
		if !p.Valid() {
			return configErrorf("heatmap", "point %d %v is out of range", i, p)
		}
	}
	b.cfg.Heatmap = &Heatmap{Points: cloneSlice(points)}
	return nil
}

// SetHeatmapOnly skips all markers and draws only the heatmap.
func (b *Builder) SetHeatmapOnly(only bool) {
	b.cfg.HeatmapOnly = only
}

// AddMinimap adds an inset overview map.
func (b *Builder) AddMinimap(m viz.Minimap) error {
	if err := viz.ValidatePosition(m.Position, viz.ValidControlPositions); err != nil {
		return configErrorf("minimap", "%v", err)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return configErrorf("minimap", "width and height must be positive")
	}
	b.cfg.Minimap = &m
	return nil
}

// AddRectangle draws a box between two corners.
func (b *Builder) AddRectangle(r viz.Rectangle) error {
	for _, c := range r.Corners {
		if !c.Valid() {
			return configErrorf("rectangle", "corner %v is out of range", c)
		}
	}
	b.cfg.Rectangles = append(b.cfg.Rectangles, r)
	return nil
}

// AddLine draws a polyline.
func (b *Builder) AddLine(l viz.Line) error {
	if len(l.Locations) < 2 {
		return configErrorf("line", "need at least two locations, got %d", len(l.Locations))
	}
	for _, c := range l.Locations {
		if !c.Valid() {
			return configErrorf("line", "location %v is out of range", c)
		}
	}
	l.Locations = cloneSlice(l.Locations)
	if l.SmoothFactor == 0 {
		l.SmoothFactor = 1
	}
	b.cfg.Lines = append(b.cfg.Lines, l)
	return nil
}

// AddMinicharts replaces markers with pie or bar charts.
func (b *Builder) AddMinicharts(m Minicharts) error {
	switch m.Type {
	case "":
		m.Type = "pie"
	case "pie", "bar":
	default:
		return configErrorf("minicharts", "%s: unknown type of chart, use pie or bar", m.Type)
	}
	if len(m.Series) == 0 {
		return configErrorf("minicharts", "no data series")
	}
	if len(m.Names) != len(m.Series) {
		return configErrorf("minicharts", "%d names for %d series", len(m.Names), len(m.Series))
	}
	for k, s := range m.Series {
		if len(s) != len(b.cfg.Languages) {
			return configErrorf("minicharts", "series %q: length %d does not match %d languages", m.Names[k], len(s), len(b.cfg.Languages))
		}
		for _, v := range s {
			if v < 0 {
				return configErrorf("minicharts", "series %q: negative value %g", m.Names[k], v)
			}
		}
	}
	if m.Size <= 0 {
		m.Size = DefaultMinichartSize
	}
	if m.StartAngle == 0 {
		m.StartAngle = 90
	}
	c := m
	c.Names = cloneSlice(m.Names)
	c.Colors = cloneSlice(m.Colors)
	c.Series = make([][]float64, len(m.Series))
	for i, s := range m.Series {
		c.Series[i] = cloneSlice(s)
	}
	b.cfg.Minicharts = &c
	return nil
}

// AddOverlappingFeatures draws one concentric disc per value of each language.
func (b *Builder) AddOverlappingFeatures(groups [][]string, radius, increment float64, mapping map[string]string) error {
	if err := b.checkLength("overlapping_features", len(groups)); err != nil {
		return err
	}
	if radius <= 0 || increment <= 0 {
		return configErrorf("overlapping_features", "radius and increment must be positive")
	}
	for i, g := range groups {
		if len(g) == 0 {
			return configErrorf("overlapping_features", "language %q has no values", b.cfg.Languages[i])
		}
		if mapping == nil {
			continue
		}
		for _, v := range g {
			if _, ok := mapping[v]; !ok {
				return configErrorf("overlapping_features", "no colour mapped for value %q", v)
			}
		}
	}
	o := &Overlapping{Groups: make([][]string, len(groups)), Radius: radius, Increment: increment}
	for i, g := range groups {
		o.Groups[i] = cloneSlice(g)
	}
	if mapping != nil {
		o.Mapping = make(map[string]string, len(mapping))
		for k, v := range mapping {
			o.Mapping[k] = v
		}
	}
	b.cfg.Overlapping = o
	return nil
}

// SetTitle sets the floating title box.
func (b *Builder) SetTitle(title string) { b.cfg.Title = title }

// SetStartLocation centres the initial view.
func (b *Builder) SetStartLocation(c geo.Coordinates) error {
	if !c.Valid() {
		return configErrorf("start_location", "%v is out of range", c)
	}
	b.cfg.StartLocation = c
	return nil
}

// SetStartLocationShortcut centres and zooms on a named region.
func (b *Builder) SetStartLocationShortcut(name string) error {
	loc, ok := StartLocations[name]
	if !ok {
		return configErrorf("start_location", "no such start location shortcut %q", name)
	}
	b.cfg.StartLocation = loc.Center
	b.cfg.StartZoom = loc.Zoom
	return nil
}

// SetStartZoom sets the initial zoom level.
func (b *Builder) SetStartZoom(zoom int) error {
	if zoom < 0 || zoom > 18 {
		return configErrorf("start_zoom", "zoom %d is outside [0, 18]", zoom)
	}
	b.cfg.StartZoom = zoom
	return nil
}

// SetLegend configures the primary legend.
func (b *Builder) SetLegend(l LegendOptions) { b.cfg.Legend = l }

// SetStrokeLegend configures the stroke-feature legend.
func (b *Builder) SetStrokeLegend(l LegendOptions) { b.cfg.StrokeLegend = l }

// SetControlPosition places the layer toggle widget.
func (b *Builder) SetControlPosition(pos string) { b.cfg.ControlPosition = pos }

// SetLanguagesInPopups prefixes popups with a Glottolog link.
func (b *Builder) SetLanguagesInPopups(on bool) { b.cfg.LanguagesInPopups = on }

// SetStroked draws outlines on discs when rings are disabled.
func (b *Builder) SetStroked(on bool) { b.cfg.Markers.Stroked = on }

// SetUnstroked draws separate black rings behind discs.
func (b *Builder) SetUnstroked(on bool) { b.cfg.Markers.Unstroked = on }

// SetPalettes overrides the token lists. Empty lists keep the defaults.
func (b *Builder) SetPalettes(p Palettes) {
	if len(p.Colors) > 0 {
		b.cfg.Palettes.Colors = cloneSlice(p.Colors)
	}
	if len(p.StrokeColors) > 0 {
		b.cfg.Palettes.StrokeColors = cloneSlice(p.StrokeColors)
	}
	if len(p.Shapes) > 0 {
		b.cfg.Palettes.Shapes = cloneSlice(p.Shapes)
	}
}

// SetColormap sets the gradient for numeric features.
func (b *Builder) SetColormap(g encode.Gradient) error {
	if err := g.Validate(); err != nil {
		return configErrorf("colormap", "%v", err)
	}
	b.cfg.Colormap = g
	return nil
}

// SetSeed seeds the colours generated once a palette runs out.
func (b *Builder) SetSeed(seed int64) { b.cfg.Seed = seed }

// SetPreferCanvas renders markers on a canvas instead of SVG.
func (b *Builder) SetPreferCanvas(on bool) { b.cfg.PreferCanvas = on }

// SetControlScale toggles the scale bar.
func (b *Builder) SetControlScale(on bool) { b.cfg.ControlScale = on }

package lingmap

import (
	"fmt"
	"html"
	"math/rand"
	"net/url"
	"sort"

	"go.uber.org/zap"

	"github.com/matsen/lingmap/internal/encode"
	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/marker"
	"github.com/matsen/lingmap/internal/viz"
)

// Stage is a step of the build state machine.
type Stage string

const (
	StageInit                Stage = "INIT"
	StageCoordinatesResolved Stage = "COORDINATES_RESOLVED"
	StageFeaturesEncoded     Stage = "FEATURES_ENCODED"
	StageMarkersComposed     Stage = "MARKERS_COMPOSED"
	StageLayersAssembled     Stage = "LAYERS_ASSEMBLED"
	StageLegendsAttached     Stage = "LEGENDS_ATTACHED"
	StageHeatmap             Stage = "HEATMAP"
	StageDone                Stage = "DONE"
	StageFailed              Stage = "FAILED"
)

// GlottologURL is the languoid page prefixed to popups.
const GlottologURL = "https://glottolog.org/resource/languoid/id/"

// Gazetteer resolves language names. *gazetteer.Table satisfies it.
type Gazetteer interface {
	Coordinates(name string) (geo.Coordinates, bool)
	GlotID(name string) (string, bool)
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	logger *zap.Logger
}

// WithLogger sets the logger for build progress and skipped points.
func WithLogger(l *zap.Logger) BuildOption {
	return func(o *buildOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// PlacedPoint describes one language that made it onto the map, in draw order.
type PlacedPoint struct {
	Language    string          `json:"language"`
	Coordinates geo.Coordinates `json:"coordinates"`
	Value       string          `json:"value,omitempty"`
	Token       string          `json:"token,omitempty"`
	Group       string          `json:"group,omitempty"`
	StrokeValue string          `json:"strokeValue,omitempty"`
	StrokeToken string          `json:"strokeToken,omitempty"`
}

// Artifact is the result of a successful build.
type Artifact struct {
	HTML        string
	Document    *viz.Document
	Points      []PlacedPoint
	Diagnostics []string
	Stage       Stage
}

// GeoJSON exports the markers and shapes of the map.
func (a *Artifact) GeoJSON() ([]byte, error) {
	return viz.GeoJSON(a.Document)
}

// Build renders cfg. gaz may be nil when every language has custom coordinates.
// Languages without coordinates are skipped and reported in Diagnostics. On
// error no artifact is returned.
func Build(cfg Config, gaz Gazetteer, opts ...BuildOption) (*Artifact, error) {
	o := buildOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &run{cfg: cfg, gaz: gaz, log: o.logger, stage: StageInit}
	if err := cfg.validate(); err != nil {
		return nil, r.fail(err)
	}
	art, err := r.execute()
	if err != nil {
		return nil, r.fail(err)
	}
	return art, nil
}

// run holds the working state of one build. Arrays are aligned and, after
// encoding, in draw order.
type run struct {
	cfg   Config
	gaz   Gazetteer
	log   *zap.Logger
	stage Stage
	rng   *rand.Rand

	doc      *viz.Document
	langs    []string
	coords   []*geo.Coordinates
	popups   []string
	tooltips []string
	heat     []geo.Coordinates
	points   []PlacedPoint
	diags    []string
}

func (r *run) advance(s Stage) {
	r.log.Debug("map build stage", zap.String("stage", string(s)))
	r.stage = s
}

func (r *run) fail(err error) error {
	failedAt := r.stage
	r.stage = StageFailed
	r.log.Error("map build failed", zap.String("stage", string(failedAt)), zap.Error(err))
	return &BuildError{Stage: failedAt, Err: err}
}

func (r *run) diag(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	// Callers report Diagnostics themselves.
	r.log.Debug(msg)
	r.diags = append(r.diags, msg)
}

func (r *run) execute() (*Artifact, error) {
	r.rng = rand.New(rand.NewSource(r.cfg.Seed))
	r.doc = r.baseDocument()

	if r.cfg.HeatmapOnly {
		r.advance(StageHeatmap)
		r.doc.Heatmap = cloneSlice(r.cfg.Heatmap.Points)
		return r.finish()
	}

	if err := r.resolveCoordinates(); err != nil {
		return nil, err
	}
	r.advance(StageCoordinatesResolved)

	var err error
	switch {
	case r.cfg.Minicharts != nil:
		err = r.buildMinicharts()
	case r.cfg.Overlapping != nil:
		err = r.buildOverlapping()
	default:
		err = r.buildFeatures()
	}
	if err != nil {
		return nil, err
	}

	if r.cfg.Heatmap != nil {
		r.doc.Heatmap = append(cloneSlice(r.cfg.Heatmap.Points), r.heat...)
	}
	return r.finish()
}

func (r *run) finish() (*Artifact, error) {
	out, err := viz.Render(r.doc)
	if err != nil {
		return nil, err
	}
	r.advance(StageDone)
	return &Artifact{
		HTML:        out,
		Document:    r.doc,
		Points:      r.points,
		Diagnostics: r.diags,
		Stage:       StageDone,
	}, nil
}

func (r *run) baseDocument() *viz.Document {
	doc := viz.NewDocument()
	doc.Center = r.cfg.StartLocation
	doc.Zoom = r.cfg.StartZoom
	doc.ControlScale = r.cfg.ControlScale
	doc.PreferCanvas = r.cfg.PreferCanvas
	doc.Title = r.cfg.Title
	if r.cfg.Minimap != nil {
		m := *r.cfg.Minimap
		doc.Minimap = &m
	}
	doc.Rectangles = cloneSlice(r.cfg.Rectangles)
	doc.Lines = cloneSlice(r.cfg.Lines)
	return doc
}

// resolveCoordinates fills r.coords; nil marks a skipped language.
// Gazetteer hits also feed the heatmap.
func (r *run) resolveCoordinates() error {
	if r.cfg.Coordinates == nil && r.gaz == nil {
		return configErrorf("gazetteer", "no gazetteer loaded and no custom coordinates given")
	}

	r.langs = cloneSlice(r.cfg.Languages)
	r.coords = make([]*geo.Coordinates, len(r.langs))
	if r.cfg.Popups != nil {
		r.popups = cloneSlice(r.cfg.Popups.Values)
	}
	if r.cfg.HasTooltips {
		r.tooltips = cloneSlice(r.cfg.Tooltips)
	}

	for i, lang := range r.langs {
		if r.cfg.Coordinates != nil {
			c := r.cfg.Coordinates[i]
			if !c.Valid() {
				r.diag("custom coordinates %v for %s are out of range; skipped", c, lang)
				continue
			}
			r.coords[i] = &c
			continue
		}
		c, ok := r.gaz.Coordinates(lang)
		if !ok || !c.Valid() {
			r.diag("coordinates for %s not found; skipped", lang)
			continue
		}
		r.coords[i] = &c
		r.heat = append(r.heat, c)
	}
	return nil
}

// permute reorders every per-language array.
func (r *run) permute(perm []int) {
	r.langs = encode.Apply(perm, r.langs)
	r.coords = encode.Apply(perm, r.coords)
	r.popups = encode.Apply(perm, r.popups)
	r.tooltips = encode.Apply(perm, r.tooltips)
}

func (r *run) buildFeatures() error {
	cfg := r.cfg
	mcfg := cfg.Markers
	hasStroke := cfg.StrokeFeatures != nil
	numeric := cfg.Features != nil && cfg.Features.Numeric
	if mcfg.UseShapes && (hasStroke || numeric) {
		r.diag("shapes ignored: colours are used with stroke features and numeric features")
		mcfg.UseShapes = false
	}

	var primary, stroke *encode.Encoding
	if cfg.Features != nil {
		palette, kind := cfg.Palettes.choose(mcfg.UseShapes, false)
		enc, err := encode.Encode(cfg.Features.Values, encode.Options{
			Numeric:  numeric,
			Kind:     kind,
			Palette:  palette,
			Gradient: cfg.Colormap,
			Rand:     r.rng,
		})
		if err != nil {
			return err
		}
		primary = enc
		if enc.Permutation != nil {
			r.permute(enc.Permutation)
		}
	}
	if hasStroke {
		values := cfg.StrokeFeatures.Values
		if primary != nil {
			values = encode.Apply(primary.Permutation, values)
		}
		palette, kind := cfg.Palettes.choose(false, true)
		enc, err := encode.Encode(values, encode.Options{Kind: kind, Palette: palette, Rand: r.rng})
		if err != nil {
			return err
		}
		stroke = enc
	}
	r.advance(StageFeaturesEncoded)

	controlPrimary := primary != nil && !numeric && cfg.Features.Control
	controlStroke := !controlPrimary && stroke != nil && cfg.StrokeFeatures.Control

	byGroup := make(map[string][]viz.Marker)
	for i, lang := range r.langs {
		c := r.coords[i]
		if c == nil {
			continue
		}
		pt := PlacedPoint{Language: lang, Coordinates: *c, Token: marker.DefaultFill}
		if primary != nil {
			pt.Value = primary.Values[i]
			pt.Token = primary.Assignments[i].Token
			pt.Group = primary.Assignments[i].Group
		}
		var strokeToken *string
		if stroke != nil {
			pt.StrokeValue = stroke.Values[i]
			pt.StrokeToken = stroke.Assignments[i].Token
			strokeToken = &pt.StrokeToken
		}

		prims := marker.Compose(*c, pt.Token, strokeToken, mcfg)
		ms := make([]viz.Marker, len(prims))
		for k, p := range prims {
			ms[k] = viz.Marker{Primitive: p}
		}
		top := &ms[len(ms)-1]
		top.Popup = r.popup(i, "")
		top.Tooltip = r.tooltip(i)

		var group string
		switch {
		case controlPrimary:
			group = primary.Assignments[i].Group
		case controlStroke:
			group = stroke.Assignments[i].Group
		}
		byGroup[group] = append(byGroup[group], ms...)
		r.points = append(r.points, pt)
	}
	r.advance(StageMarkersComposed)

	var groups []encode.Group
	switch {
	case controlPrimary:
		groups = primary.Groups
	case controlStroke:
		groups = stroke.Groups
	}
	if groups != nil {
		for _, g := range groups {
			r.doc.Layers = append(r.doc.Layers, viz.Layer{Name: g.Name, Markers: sortByLayer(byGroup[g.Name])})
		}
		r.doc.LayerControl = &viz.LayerControl{Position: cfg.ControlPosition}
	} else {
		r.doc.Layers = []viz.Layer{{Markers: sortByLayer(byGroup[""])}}
	}
	r.advance(StageLayersAssembled)

	if primary != nil && cfg.Legend.Show {
		r.addLegend(cfg.Legend, primary.Legend, mcfg.UseShapes)
	}
	if stroke != nil && cfg.StrokeLegend.Show {
		r.addLegend(cfg.StrokeLegend, stroke.Legend, false)
	}
	r.advance(StageLegendsAttached)
	return nil
}

func (r *run) buildMinicharts() error {
	m := r.cfg.Minicharts
	colors := m.Colors
	if len(colors) == 0 {
		colors = r.cfg.Palettes.Colors
	}
	r.advance(StageFeaturesEncoded)

	var markers []viz.Marker
	values := make([]float64, len(m.Series))
	for i, lang := range r.langs {
		c := r.coords[i]
		if c == nil {
			continue
		}
		for k := range m.Series {
			values[k] = m.Series[k][i]
		}
		p := marker.Icon(*c, chartSVG(m, values, colors), [2]float64{m.Size / 2, m.Size / 2})
		markers = append(markers, viz.Marker{
			Primitive: p,
			Popup:     r.popup(i, chartPopup(m.Names, values)),
			Tooltip:   r.tooltip(i),
		})
		r.points = append(r.points, PlacedPoint{Language: lang, Coordinates: *c})
	}
	r.advance(StageMarkersComposed)

	r.doc.Layers = []viz.Layer{{Markers: markers}}
	r.advance(StageLayersAssembled)

	if r.cfg.Legend.Show {
		entries := make([]encode.LegendEntry, len(m.Names))
		for k, n := range m.Names {
			entries[k] = encode.LegendEntry{Label: n, Token: colors[k%len(colors)]}
		}
		r.addLegend(r.cfg.Legend, encode.Legend{Kind: encode.LegendDiscrete, Entries: entries}, false)
	}
	r.advance(StageLegendsAttached)
	return nil
}

func (r *run) buildOverlapping() error {
	o := r.cfg.Overlapping
	mapping := o.Mapping
	var entries []encode.LegendEntry
	if mapping == nil {
		var flat []string
		for _, g := range o.Groups {
			flat = append(flat, g...)
		}
		enc, err := encode.Encode(flat, encode.Options{Palette: r.cfg.Palettes.Colors, Rand: r.rng})
		if err != nil {
			return err
		}
		mapping = make(map[string]string, len(enc.Groups))
		for _, g := range enc.Groups {
			mapping[g.Name] = g.Token
			entries = append(entries, encode.LegendEntry{Label: g.Name, Token: g.Token})
		}
	} else {
		keys := make([]string, 0, len(mapping))
		for k := range mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, encode.LegendEntry{Label: k, Token: mapping[k]})
		}
	}
	r.advance(StageFeaturesEncoded)

	var markers []viz.Marker
	for i, lang := range r.langs {
		c := r.coords[i]
		if c == nil {
			continue
		}
		colors := make([]string, len(o.Groups[i]))
		for k, v := range o.Groups[i] {
			colors[k] = mapping[v]
		}
		popup, tooltip := r.popup(i, ""), r.tooltip(i)
		for _, p := range marker.Concentric(*c, colors, o.Radius, o.Increment, r.cfg.Markers) {
			markers = append(markers, viz.Marker{Primitive: p, Popup: popup, Tooltip: tooltip})
		}
		r.points = append(r.points, PlacedPoint{Language: lang, Coordinates: *c})
	}
	r.advance(StageMarkersComposed)

	r.doc.Layers = []viz.Layer{{Markers: markers}}
	r.advance(StageLayersAssembled)

	if r.cfg.Legend.Show {
		r.addLegend(r.cfg.Legend, encode.Legend{Kind: encode.LegendDiscrete, Entries: entries}, false)
	}
	r.advance(StageLegendsAttached)
	return nil
}

func (r *run) addLegend(opts LegendOptions, l encode.Legend, shapes bool) {
	r.doc.Legends = append(r.doc.Legends, viz.Legend{
		ID:       fmt.Sprintf("%s-%d", r.doc.ID, len(r.doc.Legends)),
		Title:    opts.Title,
		Position: opts.Position,
		Shapes:   shapes,
		Legend:   l,
	})
}

// popup builds the popup for language i: an optional Glottolog link, the
// user's popup and any extra trusted markup. Nil when there is nothing to show.
func (r *run) popup(i int, extra string) *viz.Popup {
	var body string
	if r.popups != nil {
		body = r.popups[i]
		if r.cfg.Popups.HTML && extra == "" {
			return &viz.Popup{HTML: body, IFrame: true}
		}
		if !r.cfg.Popups.HTML {
			body = html.EscapeString(body)
		}
	}
	body += extra
	if r.cfg.LanguagesInPopups {
		body = r.languageLink(r.langs[i]) + body
	}
	if body == "" {
		return nil
	}
	return &viz.Popup{HTML: body}
}

func (r *run) languageLink(lang string) string {
	var id string
	ok := false
	if r.gaz != nil {
		id, ok = r.gaz.GlotID(lang)
	}
	if !ok {
		r.diag("glottocode for %s not found; popup has no link", lang)
		return html.EscapeString(lang) + "<br>"
	}
	return fmt.Sprintf(`<a href="%s%s" onclick="this.target='_blank';">%s</a><br>`,
		GlottologURL, url.PathEscape(id), html.EscapeString(lang))
}

func (r *run) tooltip(i int) string {
	if r.tooltips == nil {
		return ""
	}
	return html.EscapeString(r.tooltips[i])
}

// sortByLayer orders markers so that every ring of a layer sits below every
// disc of the next one. The sort is stable, so points keep their order.
func sortByLayer(ms []viz.Marker) []viz.Marker {
	sort.SliceStable(ms, func(a, b int) bool { return ms[a].Layer < ms[b].Layer })
	return ms
}

package mapfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/matsen/lingmap/internal/dataset"
	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/lingmap"
)

// DefaultLanguageColumn is read from Data when LanguageColumn is unset.
const DefaultLanguageColumn = "language"

// Disc geometry for overlapping features when the file leaves it unset.
const (
	defaultOverlapRadius    = 7
	defaultOverlapIncrement = 5
)

// Load reads and parses the map description at path. Data paths are
// resolved relative to the file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a map description. Unknown keys are rejected.
func Parse(data []byte, baseDir string) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	f.baseDir = baseDir
	return &f, nil
}

// DataPath returns the data table path, or "" when there is none.
func (f *File) DataPath() string {
	if f.Data == "" || filepath.IsAbs(f.Data) {
		return f.Data
	}
	return filepath.Join(f.baseDir, f.Data)
}

func (f *File) table() (*dataset.Table, error) {
	path := f.DataPath()
	if path == "" {
		return nil, nil
	}
	sep := ','
	if f.Separator != "" {
		r, size := utf8.DecodeRuneInString(f.Separator)
		if size != len(f.Separator) {
			return nil, fmt.Errorf("separator must be a single character, got %q", f.Separator)
		}
		sep = r
	} else if ext := strings.ToLower(filepath.Ext(path)); ext == ".tsv" || ext == ".tab" {
		sep = '\t'
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening data: %w", err)
	}
	defer in.Close()
	t, err := dataset.ReadCSV(in, sep)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t.Source = filepath.Base(path)
	return t, nil
}

// values resolves c against the data table.
func (c *Column) values(field string, t *dataset.Table) ([]string, error) {
	switch {
	case c.Column != "" && len(c.Values) > 0:
		return nil, fmt.Errorf("%s: give either column or values, not both", field)
	case c.Column != "":
		if t == nil {
			return nil, fmt.Errorf("%s: column %q needs a data table", field, c.Column)
		}
		v, ok := t.Column(c.Column)
		if !ok {
			return nil, fmt.Errorf("%s: no column %q in %s", field, c.Column, t.Source)
		}
		return v, nil
	default:
		return c.Values, nil
	}
}

func column(field, name string, t *dataset.Table) ([]string, error) {
	c := Column{Column: name}
	return c.values(field, t)
}

// Builder returns a map builder configured from the file.
func (f *File) Builder() (*lingmap.Builder, error) {
	t, err := f.table()
	if err != nil {
		return nil, err
	}

	languages := f.Languages
	if len(languages) == 0 && t != nil {
		name := f.LanguageColumn
		if name == "" {
			name = DefaultLanguageColumn
		}
		if languages, err = column("language_column", name, t); err != nil {
			return nil, err
		}
	}
	b := lingmap.NewBuilder(languages...)

	if f.LatitudeColumn != "" || f.LongitudeColumn != "" {
		coords, err := f.coordinates(t)
		if err != nil {
			return nil, err
		}
		if err := b.AddCustomCoordinates(coords); err != nil {
			return nil, err
		}
	}

	if f.Features != nil {
		v, err := f.Features.values("features", t)
		if err != nil {
			return nil, err
		}
		if err := b.AddFeatures(v, f.Features.options()...); err != nil {
			return nil, err
		}
	}
	if f.StrokeFeatures != nil {
		v, err := f.StrokeFeatures.values("stroke_features", t)
		if err != nil {
			return nil, err
		}
		if err := b.AddStrokeFeatures(v, f.StrokeFeatures.options()...); err != nil {
			return nil, err
		}
	}
	if f.Popups != nil {
		v, err := f.Popups.values("popups", t)
		if err != nil {
			return nil, err
		}
		if err := b.AddPopups(v, f.Popups.HTML); err != nil {
			return nil, err
		}
	}
	if f.Tooltips != nil {
		v, err := f.Tooltips.values("tooltips", t)
		if err != nil {
			return nil, err
		}
		if err := b.AddTooltips(v); err != nil {
			return nil, err
		}
	}
	if f.Minicharts != nil {
		m, err := f.Minicharts.resolve(t)
		if err != nil {
			return nil, err
		}
		if err := b.AddMinicharts(m); err != nil {
			return nil, err
		}
	}
	if f.Overlapping != nil {
		groups, err := f.Overlapping.groups(t)
		if err != nil {
			return nil, err
		}
		radius, inc := f.Overlapping.Radius, f.Overlapping.Increment
		if radius == 0 {
			radius = defaultOverlapRadius
		}
		if inc == 0 {
			inc = defaultOverlapIncrement
		}
		if err := b.AddOverlappingFeatures(groups, radius, inc, f.Overlapping.Mapping); err != nil {
			return nil, err
		}
	}

	if err := f.applyView(b); err != nil {
		return nil, err
	}
	if err := f.applyExtras(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (f *File) coordinates(t *dataset.Table) ([]geo.Coordinates, error) {
	if f.LatitudeColumn == "" || f.LongitudeColumn == "" {
		return nil, fmt.Errorf("latitude_column and longitude_column must be given together")
	}
	lats, err := column("latitude_column", f.LatitudeColumn, t)
	if err != nil {
		return nil, err
	}
	lons, err := column("longitude_column", f.LongitudeColumn, t)
	if err != nil {
		return nil, err
	}
	coords := make([]geo.Coordinates, len(lats))
	for i := range lats {
		c, err := geo.Parse(lats[i], lons[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		coords[i] = c
	}
	return coords, nil
}

func (ft *Feature) options() []lingmap.FeatureOption {
	var opts []lingmap.FeatureOption
	if ft.Numeric {
		opts = append(opts, lingmap.Numeric())
	}
	if ft.Control {
		opts = append(opts, lingmap.Control())
	}
	if ft.Shapes {
		opts = append(opts, lingmap.UseShapes())
	}
	if ft.Radius != 0 {
		opts = append(opts, lingmap.Radius(ft.Radius))
	}
	if ft.Opacity != 0 {
		opts = append(opts, lingmap.Opacity(ft.Opacity))
	}
	return opts
}

func (m *Minicharts) resolve(t *dataset.Table) (lingmap.Minicharts, error) {
	out := lingmap.Minicharts{
		Type:       m.Type,
		Names:      m.Columns,
		Colors:     m.Colors,
		Size:       m.Size,
		Labels:     m.Labels,
		StartAngle: m.StartAngle,
	}
	for _, name := range m.Columns {
		raw, err := column("minicharts", name, t)
		if err != nil {
			return out, err
		}
		series := make([]float64, len(raw))
		for i, s := range raw {
			if series[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				return out, fmt.Errorf("minicharts: column %q row %d: %q is not a number", name, i+1, s)
			}
		}
		out.Series = append(out.Series, series)
	}
	return out, nil
}

func (o *Overlapping) groups(t *dataset.Table) ([][]string, error) {
	if o.Column == "" {
		return o.Values, nil
	}
	if len(o.Values) > 0 {
		return nil, fmt.Errorf("overlapping: give either column or values, not both")
	}
	raw, err := column("overlapping", o.Column, t)
	if err != nil {
		return nil, err
	}
	sep := o.Separator
	if sep == "" {
		sep = ";"
	}
	groups := make([][]string, len(raw))
	for i, cell := range raw {
		for _, v := range strings.Split(cell, sep) {
			if v = strings.TrimSpace(v); v != "" {
				groups[i] = append(groups[i], v)
			}
		}
	}
	return groups, nil
}

func (f *File) applyView(b *lingmap.Builder) error {
	b.SetTitle(f.Title)
	if l := f.StartLocation; l != nil {
		var err error
		if l.Shortcut != "" {
			err = b.SetStartLocationShortcut(l.Shortcut)
		} else {
			err = b.SetStartLocation(l.Point)
		}
		if err != nil {
			return err
		}
	}
	if f.StartZoom != nil {
		if err := b.SetStartZoom(*f.StartZoom); err != nil {
			return err
		}
	}

	if f.Legend != nil {
		b.SetLegend(f.Legend.merge(lingmap.DefaultLegend))
	}
	if f.StrokeLegend != nil {
		b.SetStrokeLegend(f.StrokeLegend.merge(lingmap.DefaultStrokeLegend))
	}
	if f.ControlPosition != "" {
		b.SetControlPosition(f.ControlPosition)
	}
	if f.LanguagesInPopups != nil {
		b.SetLanguagesInPopups(*f.LanguagesInPopups)
	}
	if f.Stroked != nil {
		b.SetStroked(*f.Stroked)
	}
	if f.Unstroked != nil {
		b.SetUnstroked(*f.Unstroked)
	}
	if f.ControlScale != nil {
		b.SetControlScale(*f.ControlScale)
	}
	b.SetPreferCanvas(f.PreferCanvas)
	return nil
}

func (l *Legend) merge(def lingmap.LegendOptions) lingmap.LegendOptions {
	if l.Show != nil {
		def.Show = *l.Show
	}
	if l.Title != "" {
		def.Title = l.Title
	}
	if l.Position != "" {
		def.Position = l.Position
	}
	return def
}

func (f *File) applyExtras(b *lingmap.Builder) error {
	if h := f.Heatmap; h != nil && (h.Enabled || h.Only) {
		points := make([]geo.Coordinates, len(h.Points))
		for i, p := range h.Points {
			if p.Shortcut != "" {
				return fmt.Errorf("heatmap: point %d must be coordinates, got %q", i+1, p.Shortcut)
			}
			points[i] = p.Point
		}
		if err := b.AddHeatmap(points); err != nil {
			return err
		}
		if h.Only {
			b.SetHeatmapOnly(true)
		}
	}
	if f.Minimap != nil && f.Minimap.Enabled {
		if err := b.AddMinimap(f.Minimap.Minimap); err != nil {
			return err
		}
	}
	for _, r := range f.Rectangles {
		if err := b.AddRectangle(r); err != nil {
			return err
		}
	}
	for _, l := range f.Lines {
		if err := b.AddLine(l); err != nil {
			return err
		}
	}
	if f.Colormap != nil {
		if err := b.SetColormap(*f.Colormap); err != nil {
			return err
		}
	}
	if p := f.Palettes; p != nil {
		b.SetPalettes(lingmap.Palettes{Colors: p.Colors, StrokeColors: p.StrokeColors, Shapes: p.Shapes})
	}
	if f.Seed != nil {
		b.SetSeed(*f.Seed)
	}
	return nil
}

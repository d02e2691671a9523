package lingmap

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matsen/lingmap/internal/encode"
	"github.com/matsen/lingmap/internal/gazetteer"
	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/marker"
	"github.com/matsen/lingmap/internal/viz"
)

const caucasusTable = `ID,Name,Latitude,Longitude
adyg1241,Adyghe,44.0,39.33
russ1263,Russian,59.0,50.0
kaba1278,Kabardian,43.5,43.5
abkh1244,Abkhaz,43.0,41.0
`

func testGazetteer(t *testing.T) *gazetteer.Table {
	t.Helper()
	tbl, err := gazetteer.Parse(strings.NewReader(caucasusTable))
	require.NoError(t, err)
	return tbl
}

func mustBuild(t *testing.T, b *Builder, gaz Gazetteer) *Artifact {
	t.Helper()
	cfg, err := b.Config()
	require.NoError(t, err)
	art, err := Build(cfg, gaz)
	require.NoError(t, err)
	require.Equal(t, StageDone, art.Stage)
	return art
}

func layerSequence(ms []viz.Marker) []marker.Layer {
	out := make([]marker.Layer, len(ms))
	for i, m := range ms {
		out[i] = m.Layer
	}
	return out
}

func TestBuild_FeaturesFirstOccurrenceOrder(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian", "Kabardian", "Abkhaz")
	require.NoError(t, b.AddFeatures([]string{"x", "y", "x", "z"}, Control()))
	art := mustBuild(t, b, testGazetteer(t))

	doc := art.Document
	require.Len(t, doc.Layers, 3)
	assert.Equal(t, "x", doc.Layers[0].Name)
	assert.Equal(t, "y", doc.Layers[1].Name)
	assert.Equal(t, "z", doc.Layers[2].Name)
	require.NotNil(t, doc.LayerControl)
	assert.Equal(t, "topright", doc.LayerControl.Position)

	assert.Equal(t,
		[]marker.Layer{marker.LayerInnerStroke, marker.LayerInnerStroke, marker.LayerInner, marker.LayerInner},
		layerSequence(doc.Layers[0].Markers))

	require.Len(t, doc.Legends, 1)
	entries := doc.Legends[0].Entries
	require.Len(t, entries, 3)
	for i, want := range []string{"x", "y", "z"} {
		assert.Equal(t, want, entries[i].Label)
		assert.Equal(t, encode.DefaultColors[i], entries[i].Token)
	}

	require.Len(t, art.Points, 4)
	assert.Equal(t, art.Points[0].Token, art.Points[2].Token)
	assert.Contains(t, art.HTML, "leaflet")
}

func TestBuild_NumericKeepsArraysAligned(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian", "Kabardian")
	require.NoError(t, b.AddFeatures([]string{"3", "1", "2"}, Numeric(), Control()))
	require.NoError(t, b.AddTooltips([]string{"ady", "rus", "kbd"}))
	art := mustBuild(t, b, testGazetteer(t))

	var langs, values []string
	for _, p := range art.Points {
		langs = append(langs, p.Language)
		values = append(values, p.Value)
	}
	assert.Equal(t, []string{"Russian", "Kabardian", "Adyghe"}, langs)
	assert.Equal(t, []string{"1", "2", "3"}, values)

	doc := art.Document
	assert.Nil(t, doc.LayerControl, "numeric features have no layer control")
	require.Len(t, doc.Layers, 1)
	inner := doc.Layers[0].Markers[3:]
	assert.Equal(t, "rus", inner[0].Tooltip)
	assert.Equal(t, "kbd", inner[1].Tooltip)
	assert.Equal(t, "ady", inner[2].Tooltip)
	assert.Equal(t, "#ffffff", inner[0].FillColor)
	assert.Equal(t, "#4a008f", inner[2].FillColor)

	require.Len(t, doc.Legends, 1)
	l := doc.Legends[0]
	assert.Equal(t, encode.LegendColormap, l.Kind)
	assert.Equal(t, 1.0, l.Min)
	assert.Equal(t, 3.0, l.Max)
}

func TestBuild_SkipsUnresolvedLanguages(t *testing.T) {
	b := NewBuilder("Adyghe", "Klingon")
	require.NoError(t, b.AddFeatures([]string{"x", "y"}))
	art := mustBuild(t, b, testGazetteer(t))

	require.Len(t, art.Points, 1)
	assert.Equal(t, "Adyghe", art.Points[0].Language)
	require.NotEmpty(t, art.Diagnostics)
	assert.Contains(t, strings.Join(art.Diagnostics, "\n"), "Klingon")
	// The legend still lists every value.
	assert.Len(t, art.Document.Legends[0].Entries, 2)
}

func TestBuild_DiagnosticsNotLoggedAsWarnings(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b := NewBuilder("Adyghe", "Klingon")
	require.NoError(t, b.AddFeatures([]string{"x", "y"}))
	cfg, err := b.Config()
	require.NoError(t, err)

	art, err := Build(cfg, testGazetteer(t), WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.Len(t, art.Diagnostics, 1)

	assert.Zero(t, logs.FilterLevelExact(zap.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage(art.Diagnostics[0]).Len())
}

func TestBuild_InvalidCustomCoordinatesSkipped(t *testing.T) {
	b := NewBuilder("a", "b")
	require.NoError(t, b.AddCustomCoordinates([]geo.Coordinates{{Lat: 10, Lon: 10}, {Lat: 100, Lon: 0}}))
	b.SetLanguagesInPopups(false)
	art := mustBuild(t, b, nil)

	assert.Len(t, art.Points, 1)
	assert.Len(t, art.Diagnostics, 1)
}

func TestBuild_NoGazetteer(t *testing.T) {
	cfg, err := NewBuilder("Adyghe").Config()
	require.NoError(t, err)

	art, err := Build(cfg, nil)
	assert.Nil(t, art)
	var berr *BuildError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, StageInit, berr.Stage)
	assert.True(t, IsConfigError(err))
}

func TestBuild_InvalidConfigLiteral(t *testing.T) {
	_, err := Build(Config{Languages: []string{"a"}}, nil)
	assert.True(t, IsConfigError(err))
}

func TestBuild_ConfigLiteralLengthMismatch(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(c *Config)
	}{
		{"features", "features", func(c *Config) {
			c.Features = &FeatureSet{Values: []string{"x", "y"}}
		}},
		{"stroke features", "stroke_features", func(c *Config) {
			c.StrokeFeatures = &FeatureSet{Values: []string{"x"}}
		}},
		{"popups", "popups", func(c *Config) {
			c.Popups = &Popups{Values: []string{"a", "b"}}
		}},
		{"tooltips", "tooltips", func(c *Config) {
			c.Tooltips = []string{"a"}
			c.HasTooltips = true
		}},
		{"custom coordinates", "custom_coordinates", func(c *Config) {
			c.Coordinates = []geo.Coordinates{{Lat: 1, Lon: 2}}
		}},
		{"overlapping groups", "overlapping_features", func(c *Config) {
			c.Overlapping = &Overlapping{Groups: [][]string{{"a"}}, Radius: 7, Increment: 5}
		}},
		{"minichart series", "minicharts", func(c *Config) {
			c.Minicharts = &Minicharts{Type: "pie", Names: []string{"s"}, Series: [][]float64{{1, 2}}, Size: 44}
		}},
		{"minichart names", "minicharts", func(c *Config) {
			c.Minicharts = &Minicharts{Type: "pie", Series: [][]float64{{1, 2, 3}}, Size: 44}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewBuilder("Adyghe", "Russian", "Kabardian").Config()
			require.NoError(t, err)
			tt.mutate(&cfg)

			var art *Artifact
			require.NotPanics(t, func() {
				art, err = Build(cfg, testGazetteer(t))
			})
			assert.Nil(t, art)
			require.True(t, IsConfigError(err))

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.field, cerr.Field)

			var berr *BuildError
			require.True(t, errors.As(err, &berr))
			assert.Equal(t, StageInit, berr.Stage)
		})
	}
}

func TestBuild_PopupWithLanguageLink(t *testing.T) {
	b := NewBuilder("Adyghe")
	require.NoError(t, b.AddPopups([]string{"x < y"}, false))
	art := mustBuild(t, b, testGazetteer(t))

	top := art.Document.Layers[0].Markers[1]
	require.NotNil(t, top.Popup)
	assert.Equal(t,
		`<a href="https://glottolog.org/resource/languoid/id/adyg1241" onclick="this.target='_blank';">Adyghe</a><br>x &lt; y`,
		top.Popup.HTML)
	assert.False(t, top.Popup.IFrame)
	assert.Nil(t, art.Document.Layers[0].Markers[0].Popup, "only the top primitive carries the popup")
}

func TestBuild_PopupWithoutGlottocode(t *testing.T) {
	b := NewBuilder("Adyghe")
	require.NoError(t, b.AddCustomCoordinates([]geo.Coordinates{{Lat: 44, Lon: 39}}))
	art := mustBuild(t, b, nil)

	top := art.Document.Layers[0].Markers[1]
	assert.Equal(t, "Adyghe<br>", top.Popup.HTML)
	assert.Contains(t, strings.Join(art.Diagnostics, "\n"), "glottocode")
}

func TestBuild_HTMLPopupsUseIFrame(t *testing.T) {
	b := NewBuilder("Adyghe")
	b.SetLanguagesInPopups(false)
	require.NoError(t, b.AddPopups([]string{"<b>bold</b>"}, true))
	art := mustBuild(t, b, testGazetteer(t))

	top := art.Document.Layers[0].Markers[1]
	assert.Equal(t, &viz.Popup{HTML: "<b>bold</b>", IFrame: true}, top.Popup)
}

func TestBuild_NoPopupsWithoutLinksOrValues(t *testing.T) {
	b := NewBuilder("Adyghe")
	b.SetLanguagesInPopups(false)
	art := mustBuild(t, b, testGazetteer(t))
	for _, m := range art.Document.Layers[0].Markers {
		assert.Nil(t, m.Popup)
	}
}

func TestBuild_StrokeDrawOrder(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian")
	require.NoError(t, b.AddFeatures([]string{"x", "y"}))
	require.NoError(t, b.AddStrokeFeatures([]string{"a", "b"}))
	art := mustBuild(t, b, testGazetteer(t))

	require.Len(t, art.Document.Layers, 1)
	assert.Equal(t, []marker.Layer{
		marker.LayerOuterStroke, marker.LayerOuterStroke,
		marker.LayerOuter, marker.LayerOuter,
		marker.LayerInnerStroke, marker.LayerInnerStroke,
		marker.LayerInner, marker.LayerInner,
	}, layerSequence(art.Document.Layers[0].Markers))

	require.Len(t, art.Document.Legends, 2)
	assert.Equal(t, "topright", art.Document.Legends[1].Position)
	assert.Equal(t, encode.DefaultStrokeColors[0], art.Document.Legends[1].Entries[0].Token)
	assert.Equal(t, "a", art.Points[0].StrokeValue)
}

func TestBuild_StrokeControl(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian")
	require.NoError(t, b.AddFeatures([]string{"x", "y"}))
	require.NoError(t, b.AddStrokeFeatures([]string{"a", "a"}, Control()))
	art := mustBuild(t, b, testGazetteer(t))

	require.Len(t, art.Document.Layers, 1)
	assert.Equal(t, "a", art.Document.Layers[0].Name)
	assert.NotNil(t, art.Document.LayerControl)
}

func TestBuild_Shapes(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian")
	require.NoError(t, b.AddFeatures([]string{"x", "y"}, UseShapes()))
	art := mustBuild(t, b, testGazetteer(t))

	markers := art.Document.Layers[0].Markers
	require.Len(t, markers, 2)
	assert.Equal(t, marker.KindGlyph, markers[0].Kind)
	assert.Equal(t, encode.DefaultShapes[0], markers[0].Glyph)
	assert.True(t, art.Document.Legends[0].Shapes)
}

func TestBuild_ShapesIgnoredWithStrokeFeatures(t *testing.T) {
	b := NewBuilder("Adyghe")
	require.NoError(t, b.AddFeatures([]string{"x"}, UseShapes()))
	require.NoError(t, b.AddStrokeFeatures([]string{"a"}))
	art := mustBuild(t, b, testGazetteer(t))

	for _, m := range art.Document.Layers[0].Markers {
		assert.Equal(t, marker.KindCircle, m.Kind)
	}
	assert.False(t, art.Document.Legends[0].Shapes)
	assert.Contains(t, strings.Join(art.Diagnostics, "\n"), "shapes ignored")
}

func TestBuild_LegendHidden(t *testing.T) {
	b := NewBuilder("Adyghe")
	require.NoError(t, b.AddFeatures([]string{"x"}))
	b.SetLegend(LegendOptions{Show: false, Position: "bottomright"})
	art := mustBuild(t, b, testGazetteer(t))
	assert.Empty(t, art.Document.Legends)
}

func TestBuild_HeatmapOnly(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddHeatmap([]geo.Coordinates{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}))
	b.SetTitle("Density")
	mm := viz.DefaultMinimap()
	require.NoError(t, b.AddMinimap(mm))
	art := mustBuild(t, b, nil)

	assert.Empty(t, art.Document.Layers)
	assert.Len(t, art.Document.Heatmap, 2)
	assert.Empty(t, art.Points)
	assert.NotNil(t, art.Document.Minimap)
	assert.Contains(t, art.HTML, "Density")
	assert.Contains(t, art.HTML, "leaflet-heat.js")
}

func TestBuild_HeatmapAddsResolvedLanguages(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian")
	require.NoError(t, b.AddHeatmap([]geo.Coordinates{{Lat: 1, Lon: 2}}))
	art := mustBuild(t, b, testGazetteer(t))

	assert.Len(t, art.Document.Heatmap, 3)
	assert.Len(t, art.Points, 2)
}

func TestBuild_Minicharts(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian")
	require.NoError(t, b.AddMinicharts(Minicharts{
		Names:  []string{"a", "b"},
		Series: [][]float64{{1, 0}, {2, 3}},
	}))
	art := mustBuild(t, b, testGazetteer(t))

	markers := art.Document.Layers[0].Markers
	require.Len(t, markers, 2)
	assert.Equal(t, marker.KindIcon, markers[0].Kind)
	assert.True(t, strings.HasPrefix(markers[0].HTML, "<svg"))
	assert.Equal(t, [2]float64{22, 22}, markers[0].Anchor)
	assert.Contains(t, markers[0].Popup.HTML, "Adyghe</a><br><br>a: 1<br>b: 2<br>")

	entries := art.Document.Legends[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, encode.LegendEntry{Label: "a", Token: encode.DefaultColors[0]}, entries[0])
	assert.Equal(t, encode.LegendEntry{Label: "b", Token: encode.DefaultColors[1]}, entries[1])
}

func TestBuild_Overlapping(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian")
	require.NoError(t, b.AddOverlappingFeatures([][]string{{"x", "y"}, {"y"}}, 7, 5, nil))
	require.NoError(t, b.AddTooltips([]string{"ady", "rus"}))
	art := mustBuild(t, b, testGazetteer(t))

	markers := art.Document.Layers[0].Markers
	require.Len(t, markers, 3)
	assert.Equal(t, 10.0, markers[0].Radius)
	assert.Equal(t, 5.0, markers[1].Radius)
	assert.Equal(t, 7.0, markers[2].Radius)
	assert.Equal(t, markers[1].FillColor, markers[2].FillColor)
	for _, m := range markers {
		assert.NotNil(t, m.Popup)
		assert.NotEmpty(t, m.Tooltip)
	}

	entries := art.Document.Legends[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "x", entries[0].Label)
	assert.Equal(t, "y", entries[1].Label)
}

func TestBuild_OverlappingCustomMapping(t *testing.T) {
	b := NewBuilder("Adyghe")
	mapping := map[string]string{"y": "#00ff00", "x": "#ff0000"}
	require.NoError(t, b.AddOverlappingFeatures([][]string{{"y"}}, 7, 5, mapping))
	art := mustBuild(t, b, testGazetteer(t))

	assert.Equal(t, "#00ff00", art.Document.Layers[0].Markers[0].FillColor)
	entries := art.Document.Legends[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "x", entries[0].Label, "custom mappings are listed by key")
}

func TestBuild_DeterministicWithSeed(t *testing.T) {
	build := func() []string {
		b := NewBuilder("Adyghe", "Russian", "Kabardian")
		require.NoError(t, b.AddFeatures([]string{"x", "y", "z"}))
		b.SetPalettes(Palettes{Colors: []string{"#000000"}})
		b.SetSeed(42)
		art := mustBuild(t, b, testGazetteer(t))
		var tokens []string
		for _, p := range art.Points {
			tokens = append(tokens, p.Token)
		}
		return tokens
	}
	first := build()
	assert.Equal(t, first, build())
	assert.Equal(t, "#000000", first[0])
	assert.NotEqual(t, first[1], first[2])
}

func TestArtifact_GeoJSON(t *testing.T) {
	b := NewBuilder("Adyghe", "Russian")
	require.NoError(t, b.AddFeatures([]string{"x", "y"}))
	art := mustBuild(t, b, testGazetteer(t))

	data, err := art.GeoJSON()
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), `"Point"`))
}

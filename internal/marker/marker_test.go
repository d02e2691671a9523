package marker

import (
	"testing"

	"github.com/matsen/lingmap/internal/geo"
)

var here = geo.Coordinates{Lat: 44.5, Lon: 40.1}

func layers(ps []Primitive) []Layer {
	out := make([]Layer, len(ps))
	for i, p := range ps {
		out[i] = p.Layer
	}
	return out
}

func equalLayers(a, b []Layer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCompose(t *testing.T) {
	red := "#ff0000"
	unstroked := DefaultConfig()
	stroked := DefaultConfig()
	stroked.Unstroked = false
	shapes := DefaultConfig()
	shapes.UseShapes = true

	tests := []struct {
		name   string
		stroke *string
		cfg    Config
		want   []Layer
	}{
		{"stroke features unstroked", &red, unstroked, []Layer{LayerOuterStroke, LayerOuter, LayerInnerStroke, LayerInner}},
		{"stroke features stroked", &red, stroked, []Layer{LayerOuter, LayerInner}},
		{"shapes", nil, shapes, []Layer{LayerInner}},
		{"plain unstroked", nil, unstroked, []Layer{LayerInnerStroke, LayerInner}},
		{"plain stroked", nil, stroked, []Layer{LayerInner}},
		{"stroke wins over shapes", &red, shapes, []Layer{LayerOuterStroke, LayerOuter, LayerInnerStroke, LayerInner}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(here, "#00ff00", tt.stroke, tt.cfg)
			if !equalLayers(layers(got), tt.want) {
				t.Errorf("Compose() layers = %v, want %v", layers(got), tt.want)
			}
			for _, p := range got {
				if p.Location != here {
					t.Errorf("primitive %v at %v, want %v", p.Layer, p.Location, here)
				}
				if p.Kind == KindGlyph && tt.stroke != nil {
					t.Error("glyph emitted alongside stroke features")
				}
			}
		})
	}
}

func TestCompose_Geometry(t *testing.T) {
	red := "#ff0000"
	cfg := DefaultConfig()
	got := Compose(here, "#00ff00", &red, cfg)

	if got[0].Radius != cfg.StrokeRadius*StrokeScale || got[0].FillColor != Black || !got[0].Stroke {
		t.Errorf("outer ring = %+v", got[0])
	}
	if got[1].Radius != 12 || got[1].FillColor != red || got[1].Stroke {
		t.Errorf("outer disc = %+v", got[1])
	}
	if got[2].Radius != cfg.Radius*StrokeScale || got[2].FillColor != Black {
		t.Errorf("inner ring = %+v", got[2])
	}
	if got[3].Radius != 7 || got[3].FillColor != "#00ff00" {
		t.Errorf("inner disc = %+v", got[3])
	}
}

func TestCompose_StrokedOutline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Unstroked = false
	cfg.Stroked = false
	got := Compose(here, "#00ff00", nil, cfg)
	if len(got) != 1 || got[0].Stroke {
		t.Errorf("Compose() = %+v, want one disc without outline", got)
	}
}

func TestGlyph_EscapesShape(t *testing.T) {
	g := Glyph(here, "<b>", 1)
	if g.HTML != `<div style="font-size: 170%">&lt;b&gt;</div>` {
		t.Errorf("Glyph().HTML = %q", g.HTML)
	}
	if g.Glyph != "<b>" {
		t.Errorf("Glyph().Glyph = %q", g.Glyph)
	}
}

func TestConcentric(t *testing.T) {
	cfg := DefaultConfig()
	got := Concentric(here, []string{"a", "b", "c"}, 7, 4, cfg)
	want := []float64{12, 8, 4}
	if len(got) != len(want) {
		t.Fatalf("Concentric() returned %d primitives, want %d", len(got), len(want))
	}
	for i, p := range got {
		if p.Radius != want[i] {
			t.Errorf("ring %d radius = %v, want %v", i, p.Radius, want[i])
		}
	}

	single := Concentric(here, []string{"a"}, 7, 4, cfg)
	if len(single) != 1 || single[0].Radius != 7 {
		t.Errorf("Concentric(single) = %+v", single)
	}
}

func TestIcon(t *testing.T) {
	p := Icon(here, "<svg></svg>", [2]float64{10, 10})
	if p.Kind != KindIcon || p.HTML != "<svg></svg>" || p.Anchor != [2]float64{10, 10} {
		t.Errorf("Icon() = %+v", p)
	}
}

func TestLayerString(t *testing.T) {
	if LayerOuterStroke.String() != "outer-stroke" || Layer(9).String() != "layer(9)" {
		t.Error("unexpected Layer.String()")
	}
}

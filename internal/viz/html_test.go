package viz

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matsen/lingmap/internal/encode"
	"github.com/matsen/lingmap/internal/geo"
	"github.com/matsen/lingmap/internal/marker"
)

func sampleDocument() *Document {
	doc := NewDocument()
	doc.Center = geo.Coordinates{Lat: 43, Lon: 42}
	doc.Zoom = 6
	doc.Title = "Word order"
	at := geo.Coordinates{Lat: 44, Lon: 39.33}
	doc.Layers = []Layer{{
		Name: "SOV",
		Markers: []Marker{
			{Primitive: marker.Compose(at, "#e6194b", nil, marker.DefaultConfig())[0]},
			{
				Primitive: marker.Compose(at, "#e6194b", nil, marker.DefaultConfig())[1],
				Popup:     &Popup{HTML: "Adyghe"},
				Tooltip:   "ady",
			},
		},
	}}
	doc.LayerControl = &LayerControl{Position: "topright"}
	doc.Legends = []Legend{{
		Title:    "Legend",
		Position: "bottomright",
		Legend: encode.Legend{
			Kind:    encode.LegendDiscrete,
			Entries: []encode.LegendEntry{{Label: "SOV", Token: "#e6194b"}},
		},
	}}
	return doc
}

func TestRender(t *testing.T) {
	html, err := Render(sampleDocument())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"leaflet@1.9.4/dist/leaflet.js",
		`<div class="lingmap-title">Word order</div>`,
		`<li><span style="background: #e6194b;opacity:0.7;"></span>SOV</li>`,
		"lingmap-legend-bottomright",
		`"name":"SOV"`,
		`"tooltip":"ady"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Render() output missing %q", want)
		}
	}
	if strings.Contains(html, "leaflet-heat.js") {
		t.Error("heatmap plugin loaded without heatmap points")
	}
	if strings.Contains(html, "Control.MiniMap") {
		t.Error("minimap plugin loaded without minimap")
	}
}

func TestRender_HeatmapAndMinimap(t *testing.T) {
	doc := NewDocument()
	doc.Heatmap = []geo.Coordinates{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}
	mm := DefaultMinimap()
	doc.Minimap = &mm

	html, err := Render(doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(html, "leaflet-heat.js") || !strings.Contains(html, "Control.MiniMap.min.js") {
		t.Error("plugins missing from output")
	}
	if !strings.Contains(html, `"heatmap":[[1,2],[3,4]]`) {
		t.Error("heatmap points missing from payload")
	}
}

func TestRender_InvalidPositions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
	}{
		{"legend", func(d *Document) { d.Legends[0].Position = "middle" }},
		{"control", func(d *Document) { d.LayerControl.Position = "right" }},
		{"minimap", func(d *Document) { d.Minimap = &Minimap{Position: "nowhere"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			tt.mutate(doc)
			if _, err := Render(doc); err == nil {
				t.Error("Render() should reject the position")
			}
		})
	}
}

func TestRender_Nil(t *testing.T) {
	if _, err := Render(nil); err == nil {
		t.Error("Render(nil) should fail")
	}
}

func TestRender_EscapesTitle(t *testing.T) {
	doc := NewDocument()
	doc.Title = "<script>alert(1)</script>"
	html, err := Render(doc)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("title was not escaped")
	}
}

func TestRenderLegend_Shapes(t *testing.T) {
	frag, err := RenderLegend(Legend{
		ID:       "x",
		Title:    "Shapes",
		Position: "left",
		Shapes:   true,
		Legend: encode.Legend{
			Kind:    encode.LegendDiscrete,
			Entries: []encode.LegendEntry{{Label: "a", Token: "▲"}},
		},
	})
	if err != nil {
		t.Fatalf("RenderLegend() error = %v", err)
	}
	want := `<li><span style="color: #000000; text-align: center; opacity:0.7;">▲</span>a</li>`
	if !strings.Contains(string(frag), want) {
		t.Errorf("RenderLegend() = %s, want %s", frag, want)
	}
}

func TestRenderLegend_Colormap(t *testing.T) {
	g := encode.Gradient{Start: "white", End: "#4a008f"}
	frag, err := RenderLegend(Legend{
		ID:       "x",
		Title:    "Count",
		Position: "bottomright",
		Legend: encode.Legend{
			Kind:     encode.LegendColormap,
			Gradient: &g,
			Entries:  []encode.LegendEntry{{Label: "1", Token: "#ffffff"}},
		},
	})
	if err != nil {
		t.Fatalf("RenderLegend() error = %v", err)
	}
	if !strings.Contains(string(frag), "linear-gradient(to right, #ffffff, #4a008f)") {
		t.Errorf("RenderLegend() = %s, want gradient bar", frag)
	}
}

func TestValidatePosition(t *testing.T) {
	for _, p := range ValidPositions {
		if err := ValidatePosition(p, ValidPositions); err != nil {
			t.Errorf("ValidatePosition(%q) error = %v", p, err)
		}
	}
	if err := ValidatePosition("right", ValidControlPositions); err == nil {
		t.Error("right is not a control corner")
	}
}

func TestToLeafletJSON_IconAnchor(t *testing.T) {
	doc := NewDocument()
	doc.Layers = []Layer{{Markers: []Marker{
		{Primitive: marker.Icon(geo.Coordinates{Lat: 1, Lon: 2}, "<svg/>", [2]float64{5, 6})},
		{Primitive: marker.Glyph(geo.Coordinates{Lat: 1, Lon: 2}, "▲", 1)},
	}}}
	out, err := doc.ToLeafletJSON()
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		Layers []struct {
			Markers []map[string]any `json:"markers"`
		} `json:"layers"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatal(err)
	}
	ms := payload.Layers[0].Markers
	if _, ok := ms[0]["anchor"]; !ok {
		t.Error("icon marker lost its anchor")
	}
	if _, ok := ms[1]["anchor"]; ok {
		t.Error("glyph marker should not carry an anchor")
	}
}

func TestIsEmpty(t *testing.T) {
	if !NewDocument().IsEmpty() {
		t.Error("new document should be empty")
	}
	if sampleDocument().IsEmpty() {
		t.Error("sample document should not be empty")
	}
}

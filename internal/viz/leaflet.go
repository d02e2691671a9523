package viz

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/matsen/lingmap/internal/marker"
)

// leafletPayload is the JSON handed to the page script.
type leafletPayload struct {
	Center       [2]float64     `json:"center"`
	Zoom         int            `json:"zoom"`
	ControlScale bool           `json:"controlScale"`
	PreferCanvas bool           `json:"preferCanvas"`
	Layers       []leafletLayer `json:"layers"`
	Control      *LayerControl  `json:"control,omitempty"`
	Heatmap      [][2]float64   `json:"heatmap,omitempty"`
	Minimap      *Minimap       `json:"minimap,omitempty"`
	Rectangles   []leafletShape `json:"rectangles,omitempty"`
	Lines        []leafletShape `json:"lines,omitempty"`
}

type leafletLayer struct {
	Name    string          `json:"name,omitempty"`
	Markers []leafletMarker `json:"markers"`
}

type leafletMarker struct {
	Kind        marker.Kind `json:"kind"`
	LatLng      [2]float64  `json:"latlng"`
	Radius      float64     `json:"radius,omitempty"`
	Stroke      bool        `json:"stroke"`
	Weight      float64     `json:"weight,omitempty"`
	Color       string      `json:"color,omitempty"`
	FillColor   string      `json:"fillColor,omitempty"`
	FillOpacity float64     `json:"fillOpacity"`
	HTML        string      `json:"html,omitempty"`
	Anchor      *[2]float64 `json:"anchor,omitempty"`
	Popup       *Popup      `json:"popup,omitempty"`
	Tooltip     string      `json:"tooltip,omitempty"`
}

type leafletShape struct {
	LatLngs      [][2]float64 `json:"latlngs"`
	Color        string       `json:"color"`
	Tooltip      string       `json:"tooltip,omitempty"`
	Popup        *Popup       `json:"popup,omitempty"`
	SmoothFactor float64      `json:"smoothFactor,omitempty"`
}

// MarshalJSON lets Popup serialize with lower-case keys for the page script.
func (p Popup) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		HTML   string `json:"html"`
		IFrame bool   `json:"iframe"`
	}{p.HTML, p.IFrame})
}

// MarshalJSON lets LayerControl serialize with lower-case keys for the page script.
func (c LayerControl) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Position  string `json:"position"`
		Collapsed bool   `json:"collapsed"`
	}{c.Position, c.Collapsed})
}

// ToLeafletJSON converts the document to the JSON consumed by the page script.
func (d *Document) ToLeafletJSON() (string, error) {
	p := leafletPayload{
		Center:       d.Center.Pair(),
		Zoom:         d.Zoom,
		ControlScale: d.ControlScale,
		PreferCanvas: d.PreferCanvas,
		Layers:       make([]leafletLayer, 0, len(d.Layers)),
		Control:      d.LayerControl,
		Minimap:      d.Minimap,
	}

	for _, l := range d.Layers {
		ll := leafletLayer{Name: l.Name, Markers: make([]leafletMarker, 0, len(l.Markers))}
		for _, m := range l.Markers {
			lm := leafletMarker{
				Kind:        m.Kind,
				LatLng:      m.Location.Pair(),
				Radius:      m.Radius,
				Stroke:      m.Stroke,
				Weight:      m.Weight,
				Color:       m.Color,
				FillColor:   m.FillColor,
				FillOpacity: m.FillOpacity,
				HTML:        m.HTML,
				Popup:       m.Popup,
				Tooltip:     m.Tooltip,
			}
			if m.Kind == marker.KindIcon {
				anchor := m.Anchor
				lm.Anchor = &anchor
			}
			ll.Markers = append(ll.Markers, lm)
		}
		p.Layers = append(p.Layers, ll)
	}

	for _, c := range d.Heatmap {
		p.Heatmap = append(p.Heatmap, c.Pair())
	}
	for _, r := range d.Rectangles {
		p.Rectangles = append(p.Rectangles, leafletShape{
			LatLngs: [][2]float64{r.Corners[0].Pair(), r.Corners[1].Pair()},
			Color:   shapeColor(r.Color),
			Tooltip: html.EscapeString(r.Tooltip),
			Popup:   textPopup(r.Popup),
		})
	}
	for _, l := range d.Lines {
		s := leafletShape{
			Color:        shapeColor(l.Color),
			Tooltip:      html.EscapeString(l.Tooltip),
			Popup:        textPopup(l.Popup),
			SmoothFactor: l.SmoothFactor,
		}
		for _, c := range l.Locations {
			s.LatLngs = append(s.LatLngs, c.Pair())
		}
		p.Lines = append(p.Lines, s)
	}

	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshaling Leaflet payload to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

func shapeColor(c string) string {
	if c == "" {
		return "black"
	}
	return c
}

// textPopup escapes plain popup text; nil when empty.
func textPopup(s string) *Popup {
	if s == "" {
		return nil
	}
	return &Popup{HTML: html.EscapeString(s)}
}

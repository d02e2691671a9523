package viz

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/google/uuid"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// DefaultTileURL is the OpenStreetMap tile server used for the base and mini maps.
const DefaultTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

const tileAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`

// NewDocument returns an empty document with a fresh element id.
func NewDocument() *Document {
	return &Document{
		ID:           uuid.NewString(),
		Zoom:         2,
		ControlScale: true,
	}
}

// Render generates a self-contained HTML page for the document.
func Render(doc *Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document cannot be nil")
	}
	if err := validate(doc); err != nil {
		return "", err
	}
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}

	payload, err := doc.ToLeafletJSON()
	if err != nil {
		return "", err
	}

	legends := make([]template.HTML, 0, len(doc.Legends))
	for i, l := range doc.Legends {
		if l.ID == "" {
			l.ID = fmt.Sprintf("%s-%d", id, i)
		}
		frag, err := RenderLegend(l)
		if err != nil {
			return "", fmt.Errorf("legend %q: %w", l.Title, err)
		}
		legends = append(legends, frag)
	}

	data := templateData{
		ID:          "map-" + id,
		Title:       doc.Title,
		Legends:     legends,
		MapJSON:     template.JS(payload),
		TileURL:     DefaultTileURL,
		Attribution: template.JS(fmt.Sprintf("%q", tileAttribution)),
		Heatmap:     len(doc.Heatmap) > 0,
		Minimap:     doc.Minimap != nil,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func validate(doc *Document) error {
	if doc.LayerControl != nil {
		if err := ValidatePosition(doc.LayerControl.Position, ValidControlPositions); err != nil {
			return fmt.Errorf("layer control: %w", err)
		}
	}
	if doc.Minimap != nil {
		if err := ValidatePosition(doc.Minimap.Position, ValidControlPositions); err != nil {
			return fmt.Errorf("minimap: %w", err)
		}
	}
	return nil
}

// templateData holds data for the HTML template.
type templateData struct {
	ID          string
	Title       string
	Legends     []template.HTML
	MapJSON     template.JS
	TileURL     string
	Attribution template.JS
	Heatmap     bool
	Minimap     bool
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{if .Title}}{{.Title}}{{else}}Map{{end}}</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  {{- if .Heatmap}}
  <script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
  {{- end}}
  {{- if .Minimap}}
  <link rel="stylesheet" href="https://unpkg.com/leaflet-minimap@3.6.1/dist/Control.MiniMap.min.css">
  <script src="https://unpkg.com/leaflet-minimap@3.6.1/dist/Control.MiniMap.min.js"></script>
  {{- end}}
  <style>
    html, body {
      width: 100%;
      height: 100%;
      margin: 0;
      padding: 0;
    }
    .lingmap {
      position: absolute;
      top: 0;
      bottom: 0;
      left: 0;
      right: 0;
    }
    .lingmap-icon {
      background: none;
      border: none;
    }
    .lingmap-title {
      position: absolute;
      z-index: 9999;
      border: 2px solid grey;
      background-color: rgba(255, 255, 255, 0.8);
      border-radius: 6px;
      padding: 10px;
      font-size: 20px;
      top: 20px;
      left: 50%;
    }
    .lingmap-legend {
      position: absolute;
      z-index: 9999;
      border: 2px solid grey;
      background-color: rgba(255, 255, 255, 0.8);
      border-radius: 6px;
      padding: 10px;
      font-size: 14px;
    }
    .lingmap-legend-right { top: 50%; right: 10px; }
    .lingmap-legend-left { top: 50%; left: 10px; }
    .lingmap-legend-top { top: 10px; left: 50%; }
    .lingmap-legend-bottom { bottom: 20px; left: 50%; }
    .lingmap-legend-bottomright { bottom: 20px; right: 10px; }
    .lingmap-legend-bottomleft { bottom: 20px; left: 10px; }
    .lingmap-legend-topright { top: 10px; right: 10px; }
    .lingmap-legend-topleft { top: 10px; left: 10px; }
    .lingmap-legend .legend-title {
      text-align: left;
      margin-bottom: 5px;
      font-weight: bold;
      font-size: 90%;
    }
    .lingmap-legend .legend-scale ul {
      margin: 0;
      padding: 0;
      float: left;
      list-style: none;
    }
    .lingmap-legend .legend-scale ul li {
      font-size: 80%;
      list-style: none;
      margin-left: 0;
      line-height: 18px;
      margin-bottom: 2px;
    }
    .lingmap-legend ul.legend-labels li span {
      display: block;
      float: left;
      height: 16px;
      width: 30px;
      margin-right: 5px;
      margin-left: 0;
      border: 1px solid #999;
    }
    .lingmap-legend .legend-gradient {
      height: 12px;
      width: 100%;
      margin-bottom: 6px;
      border: 1px solid #999;
    }
  </style>
</head>
<body>
  <div id="{{.ID}}" class="lingmap"></div>
  {{- if .Title}}
  <div class="lingmap-title">{{.Title}}</div>
  {{- end}}
  {{- range .Legends}}
  {{.}}
  {{- end}}
  <script>
    (function() {
      const data = {{.MapJSON}};
      const tiles = "{{.TileURL}}";
      const attribution = {{.Attribution}};

      const map = L.map("{{.ID}}", {
        center: data.center,
        zoom: data.zoom,
        preferCanvas: data.preferCanvas
      });
      L.tileLayer(tiles, {attribution: attribution, maxZoom: 18}).addTo(map);
      if (data.controlScale) {
        L.control.scale().addTo(map);
      }

      function iframePopup(html) {
        const frame = document.createElement('iframe');
        frame.setAttribute('srcdoc', html);
        frame.style.width = '300px';
        frame.style.height = '150px';
        frame.style.border = 'none';
        return frame;
      }

      function decorate(layer, m) {
        if (m.popup) {
          layer.bindPopup(m.popup.iframe ? iframePopup(m.popup.html) : m.popup.html, {maxWidth: 400});
        }
        if (m.tooltip) {
          layer.bindTooltip(m.tooltip);
        }
        return layer;
      }

      function buildMarker(m) {
        if (m.kind === 'circle') {
          return L.circleMarker(m.latlng, {
            radius: m.radius,
            stroke: m.stroke,
            weight: m.weight,
            color: m.color,
            fill: true,
            fillColor: m.fillColor,
            fillOpacity: m.fillOpacity
          });
        }
        const icon = {html: m.html, className: 'lingmap-icon'};
        if (m.anchor) {
          icon.iconAnchor = m.anchor;
        }
        return L.marker(m.latlng, {icon: L.divIcon(icon), opacity: m.fillOpacity});
      }

      const overlays = {};
      data.layers.forEach(function(layer) {
        const group = L.featureGroup();
        layer.markers.forEach(function(m) {
          decorate(buildMarker(m), m).addTo(group);
        });
        group.addTo(map);
        if (layer.name) {
          overlays[layer.name] = group;
        }
      });
      if (data.control) {
        L.control.layers(null, overlays, {
          collapsed: data.control.collapsed,
          position: data.control.position
        }).addTo(map);
      }

      (data.rectangles || []).forEach(function(r) {
        decorate(L.rectangle(r.latlngs, {color: r.color}), r).addTo(map);
      });
      (data.lines || []).forEach(function(l) {
        decorate(L.polyline(l.latlngs, {color: l.color, smoothFactor: l.smoothFactor || 1.0}), l).addTo(map);
      });

      if (data.heatmap && data.heatmap.length) {
        L.heatLayer(data.heatmap).addTo(map);
      }

      if (data.minimap) {
        new L.Control.MiniMap(L.tileLayer(tiles, {attribution: attribution}), {
          position: data.minimap.position,
          width: data.minimap.width,
          height: data.minimap.height,
          collapsedWidth: data.minimap.collapsedWidth,
          collapsedHeight: data.minimap.collapsedHeight,
          zoomAnimation: data.minimap.zoomAnimation,
          toggleDisplay: true
        }).addTo(map);
      }
    })();
  </script>
</body>
</html>`

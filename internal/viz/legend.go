package viz

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/matsen/lingmap/internal/encode"
)

// ValidPositions lists legend positions.
var ValidPositions = []string{"right", "left", "top", "bottom", "bottomright", "bottomleft", "topright", "topleft"}

// ValidControlPositions lists Leaflet control corners.
var ValidControlPositions = []string{"topleft", "topright", "bottomleft", "bottomright"}

// ValidatePosition checks pos against allowed.
func ValidatePosition(pos string, allowed []string) error {
	for _, p := range allowed {
		if pos == p {
			return nil
		}
	}
	return fmt.Errorf("invalid position %q: must be one of %s", pos, strings.Join(allowed, ", "))
}

var compiledLegend *template.Template

func init() {
	compiledLegend = template.Must(template.New("legend").Parse(legendTemplate))
}

type legendData struct {
	ID       string
	Title    string
	Position string
	Shapes   bool
	Gradient template.CSS
	Entries  []encode.LegendEntry
}

// RenderLegend renders the legend box as an HTML fragment.
func RenderLegend(l Legend) (template.HTML, error) {
	if err := ValidatePosition(l.Position, ValidPositions); err != nil {
		return "", err
	}
	data := legendData{
		ID:       l.ID,
		Title:    l.Title,
		Position: l.Position,
		Shapes:   l.Shapes,
		Entries:  l.Entries,
	}
	if l.Kind == encode.LegendColormap && l.Gradient != nil {
		css, err := gradientCSS(*l.Gradient)
		if err != nil {
			return "", err
		}
		data.Gradient = css
	}

	var buf bytes.Buffer
	if err := compiledLegend.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// gradientCSS builds the background of the colormap bar. Colours are
// normalized to #rrggbb so that nothing else reaches the style attribute.
func gradientCSS(g encode.Gradient) (template.CSS, error) {
	if err := g.Validate(); err != nil {
		return "", err
	}
	start, end := encode.NormalizeColor(g.Start), encode.NormalizeColor(g.End)
	return template.CSS(fmt.Sprintf("background: linear-gradient(to right, %s, %s);", start, end)), nil
}

const legendTemplate = `<div id="legend-{{.ID}}" class="lingmap-legend lingmap-legend-{{.Position}}">
  <div class="legend-title">{{.Title}}</div>
  <div class="legend-scale">
    {{- if .Gradient}}
    <div class="legend-gradient" style="{{.Gradient}}"></div>
    {{- end}}
    <ul class="legend-labels">
    {{- if .Shapes}}
    {{- range .Entries}}
      <li><span style="color: #000000; text-align: center; opacity:0.7;">{{.Token}}</span>{{.Label}}</li>
    {{- end}}
    {{- else}}
    {{- range .Entries}}
      <li><span style="background: {{.Token}};opacity:0.7;"></span>{{.Label}}</li>
    {{- end}}
    {{- end}}
    </ul>
  </div>
</div>`

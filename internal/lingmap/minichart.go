package lingmap

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

// chartSVG draws one language's values as an inline SVG pie or bar chart.
func chartSVG(m *Minicharts, values []float64, colors []string) string {
	size := m.Size
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(size), num(size), num(size), num(size))
	if m.Type == "bar" {
		barChart(&b, values, colors, size)
	} else {
		pieChart(&b, values, colors, size, m.StartAngle, m.Labels)
	}
	b.WriteString(`</svg>`)
	return b.String()
}

// pieChart draws slices counter-clockwise from startAngle degrees, the
// usual plotting convention. Zero values are skipped.
func pieChart(b *strings.Builder, values []float64, colors []string, size, startAngle float64, labels bool) {
	c := size / 2
	r := size/2 - 1

	var total float64
	nonZero := 0
	for _, v := range values {
		total += v
		if v > 0 {
			nonZero++
		}
	}
	if total <= 0 {
		fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="#999999"/>`, num(c), num(c), num(r))
		return
	}

	angle := startAngle * math.Pi / 180
	for i, v := range values {
		if v <= 0 {
			continue
		}
		color := html.EscapeString(colors[i%len(colors)])
		sweep := v / total * 2 * math.Pi
		if nonZero == 1 {
			fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s"/>`, num(c), num(c), num(r), color)
		} else {
			x1, y1 := c+r*math.Cos(angle), c-r*math.Sin(angle)
			end := angle + sweep
			x2, y2 := c+r*math.Cos(end), c-r*math.Sin(end)
			large := 0
			if sweep > math.Pi {
				large = 1
			}
			fmt.Fprintf(b, `<path d="M%s,%s L%s,%s A%s,%s 0 %d 0 %s,%s Z" fill="%s"/>`,
				num(c), num(c), num(x1), num(y1), num(r), num(r), large, num(x2), num(y2), color)
		}
		if labels {
			mid := angle + sweep/2
			fmt.Fprintf(b, `<text x="%s" y="%s" font-size="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`,
				num(c+0.6*r*math.Cos(mid)), num(c-0.6*r*math.Sin(mid)), num(size/5), num(v))
		}
		angle += sweep
	}
}

// barChart draws one bar per value scaled to the largest value.
func barChart(b *strings.Builder, values []float64, colors []string, size float64) {
	var peak float64
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak <= 0 || len(values) == 0 {
		return
	}
	w := size / float64(len(values))
	for i, v := range values {
		h := v / peak * size
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
			num(float64(i)*w), num(size-h), num(w), num(h), html.EscapeString(colors[i%len(colors)]))
	}
}

// chartPopup lists the values shown in a chart, one "name: value" per line.
func chartPopup(names []string, values []float64) string {
	var b strings.Builder
	b.WriteString("<br>")
	for i, n := range names {
		fmt.Fprintf(&b, "%s: %s<br>", html.EscapeString(n), num(values[i]))
	}
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

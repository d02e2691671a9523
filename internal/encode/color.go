package encode

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// hexColorPattern matches the tokens produced by generated colours and Hex().
var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHexColor reports whether s is a #rrggbb colour token.
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// ParseColor accepts #rgb, #rrggbb or a CSS colour name.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		return c, nil
	}
	rgba, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return colorful.Color{}, fmt.Errorf("unknown colour name %q", s)
	}
	c, _ := colorful.MakeColor(rgba)
	return c, nil
}

// NormalizeColor returns the #rrggbb form of a colour, or the input unchanged if it cannot be parsed.
func NormalizeColor(s string) string {
	c, err := ParseColor(s)
	if err != nil {
		return s
	}
	return c.Hex()
}

// Gradient is a two-colour linear gradient.
type Gradient struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultGradient runs from white to deep purple.
var DefaultGradient = Gradient{Start: "#ffffff", End: "#4a008f"}

// Validate checks that both ends parse.
func (g Gradient) Validate() error {
	if _, err := ParseColor(g.Start); err != nil {
		return fmt.Errorf("gradient start: %w", err)
	}
	if _, err := ParseColor(g.End); err != nil {
		return fmt.Errorf("gradient end: %w", err)
	}
	return nil
}

// At returns the colour at position t, clamped to [0, 1].
func (g Gradient) At(t float64) string {
	start, err := ParseColor(g.Start)
	if err != nil {
		return g.Start
	}
	end, err := ParseColor(g.End)
	if err != nil {
		return g.Start
	}
	switch {
	case math.IsNaN(t) || t <= 0:
		return start.Hex()
	case t >= 1:
		return end.Hex()
	}
	return start.BlendRgb(end, t).Clamped().Hex()
}

// Colormap places values of [Min, Max] on a gradient.
type Colormap struct {
	Gradient Gradient
	Min      float64
	Max      float64
}

// Color returns the interpolated colour for v. A degenerate range yields the start colour.
func (c Colormap) Color(v float64) string {
	if c.Max <= c.Min {
		return c.Gradient.At(0)
	}
	return c.Gradient.At((v - c.Min) / (c.Max - c.Min))
}

// tokenSet tracks used tokens case-insensitively.
type tokenSet map[string]bool

func (s tokenSet) add(tok string)      { s[strings.ToLower(tok)] = true }
func (s tokenSet) has(tok string) bool { return s[strings.ToLower(tok)] }

// randomColor draws #rrggbb tokens until one is not in used.
func randomColor(rng *rand.Rand, used tokenSet) string {
	for {
		tok := fmt.Sprintf("#%06x", rng.Intn(1<<24))
		if !used.has(tok) {
			return tok
		}
	}
}

// geometricShapes is the Unicode Geometric Shapes block (U+25A0..U+25FF).
const (
	geometricShapesFirst = 0x25A0
	geometricShapesLast  = 0x25FF
)

// nextShape returns the first geometric shape not yet used, then numbered markers.
func nextShape(used tokenSet) string {
	for r := rune(geometricShapesFirst); r <= geometricShapesLast; r++ {
		tok := string(r)
		if !used.has(tok) {
			return tok
		}
	}
	for n := 1; ; n++ {
		tok := fmt.Sprintf("%d", n)
		if !used.has(tok) {
			return tok
		}
	}
}

// Package encode turns per-language feature values into visual tokens
// (palette colours, shape glyphs or colormap colours) and legend models.
package encode

import (
	"errors"
	"math/rand"
	"sort"
	"strconv"
)

// DefaultSeed seeds the generator used for palette exhaustion when none is supplied,
// so repeated builds produce the same colours.
const DefaultSeed = 1

// LegendTicks is the number of samples drawn on a colormap legend.
const LegendTicks = 10

// Options controls a single Encode call.
type Options struct {
	Numeric  bool
	Kind     Kind
	Palette  []string
	Gradient Gradient
	// Rand draws replacement colours once Palette is exhausted. Nil means DefaultSeed.
	Rand *rand.Rand
}

// Assignment is the visual token given to one point, plus the name of the
// toggle group it belongs to (empty for numeric features).
type Assignment struct {
	Group string `json:"group,omitempty"`
	Token string `json:"token"`
}

// Group is one distinct discrete value and its token.
type Group struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// LegendKind distinguishes swatch legends from colormap legends.
type LegendKind string

const (
	LegendDiscrete LegendKind = "discrete"
	LegendColormap LegendKind = "colormap"
)

// LegendEntry pairs a label with a token.
type LegendEntry struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Legend is the key for one encoded feature.
type Legend struct {
	Kind      LegendKind    `json:"kind"`
	TokenKind Kind          `json:"-"`
	Entries   []LegendEntry `json:"entries"`
	Gradient  *Gradient     `json:"gradient,omitempty"`
	Min       float64       `json:"min,omitempty"`
	Max       float64       `json:"max,omitempty"`
}

// Encoding is the result of Encode.
type Encoding struct {
	// Assignments are aligned with Values, i.e. with the input after Permutation.
	Assignments []Assignment
	// Groups lists the distinct discrete values in first-occurrence order.
	Groups []Group
	Legend Legend
	// Permutation maps output position to input index. Nil means identity.
	Permutation []int
	// Values holds the display form of each value in output order.
	Values []string
	// Generated counts tokens created after the palette ran out.
	Generated int
}

// Encode assigns a token to every value.
//
// Discrete values receive palette tokens in first-occurrence order. Numeric
// values are sorted ascending; the caller must reorder every parallel array
// with Apply(enc.Permutation, ...) to stay aligned with Assignments.
func Encode(values []string, opts Options) (*Encoding, error) {
	if len(values) == 0 {
		return nil, errors.New("no feature values to encode")
	}
	if opts.Numeric {
		return encodeNumeric(values, opts)
	}
	return encodeDiscrete(values, opts), nil
}

func encodeDiscrete(values []string, opts Options) *Encoding {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(DefaultSeed))
	}

	used := make(tokenSet)
	for _, tok := range opts.Palette {
		used.add(tok)
	}

	enc := &Encoding{
		Assignments: make([]Assignment, len(values)),
		Values:      append([]string(nil), values...),
	}
	tokens := make(map[string]string)
	for _, v := range values {
		if _, seen := tokens[v]; seen {
			continue
		}
		var tok string
		if i := len(enc.Groups); i < len(opts.Palette) {
			tok = opts.Palette[i]
		} else {
			if opts.Kind == KindShape {
				tok = nextShape(used)
			} else {
				tok = randomColor(rng, used)
			}
			used.add(tok)
			enc.Generated++
		}
		tokens[v] = tok
		enc.Groups = append(enc.Groups, Group{Name: v, Token: tok})
	}

	for i, v := range values {
		enc.Assignments[i] = Assignment{Group: v, Token: tokens[v]}
	}

	enc.Legend = Legend{
		Kind:      LegendDiscrete,
		TokenKind: opts.Kind,
		Entries:   sortedEntries(enc.Groups),
	}
	return enc
}

// sortedEntries orders legend entries numerically when every label is a
// number and lexically otherwise.
func sortedEntries(groups []Group) []LegendEntry {
	entries := make([]LegendEntry, len(groups))
	nums := make([]float64, len(groups))
	allNumeric := true
	for i, g := range groups {
		entries[i] = LegendEntry{Label: g.Name, Token: g.Token}
		if allNumeric {
			f, err := strconv.ParseFloat(g.Name, 64)
			if err != nil {
				allNumeric = false
				continue
			}
			nums[i] = f
		}
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	if allNumeric {
		sort.SliceStable(idx, func(a, b int) bool { return nums[idx[a]] < nums[idx[b]] })
	} else {
		sort.SliceStable(idx, func(a, b int) bool { return entries[idx[a]].Label < entries[idx[b]].Label })
	}
	return Apply(idx, entries)
}

// Apply returns a copy of xs reordered so that result[i] = xs[perm[i]].
// A nil perm copies xs unchanged; a nil xs stays nil.
func Apply[T any](perm []int, xs []T) []T {
	if xs == nil {
		return nil
	}
	out := make([]T, len(xs))
	if perm == nil {
		copy(out, xs)
		return out
	}
	for i, j := range perm {
		out[i] = xs[j]
	}
	return out
}

package encode

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// parseNumbers parses every value as an int, falling back to float. The
// returned flag reports whether all values are integral and can be shown as ints.
func parseNumbers(values []string) ([]float64, bool, error) {
	nums := make([]float64, len(values))
	integral := true
	for i, raw := range values {
		s := strings.TrimSpace(raw)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			nums[i] = float64(n)
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false, &EncodingError{Value: raw, Index: i}
		}
		nums[i] = f
		if f != math.Trunc(f) {
			integral = false
		}
	}
	return nums, integral, nil
}

func formatNumber(f float64, integral bool) string {
	if integral {
		if f == 0 {
			return "0"
		}
		// FormatInt would overflow past the int64 range.
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// NiceFloor rounds v down at its leading decimal digit: 137 -> 100, -0.42 -> -0.5.
func NiceFloor(v float64) float64 {
	return niceRound(v, math.Floor)
}

// NiceCeil rounds v up at its leading decimal digit: 137 -> 200, 0.42 -> 0.5.
func NiceCeil(v float64) float64 {
	return niceRound(v, math.Ceil)
}

func niceRound(v float64, round func(float64) float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	mag := math.Pow(10, math.Floor(math.Log10(math.Abs(v))))
	return cleanFloat(round(v/mag) * mag)
}

// cleanFloat strips binary noise such as 0.30000000000000004.
func cleanFloat(f float64) float64 {
	c, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', 12, 64), 64)
	if err != nil {
		return f
	}
	return c
}

func encodeNumeric(values []string, opts Options) (*Encoding, error) {
	grad := opts.Gradient
	if grad == (Gradient{}) {
		grad = DefaultGradient
	}
	if err := grad.Validate(); err != nil {
		return nil, err
	}

	nums, integral, err := parseNumbers(values)
	if err != nil {
		return nil, err
	}

	perm := make([]int, len(nums))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool { return nums[perm[a]] < nums[perm[b]] })
	sorted := Apply(perm, nums)

	rawMin, rawMax := sorted[0], sorted[len(sorted)-1]
	cmap := Colormap{Gradient: grad, Min: rawMin, Max: rawMax}
	if rawMax > rawMin {
		cmap.Min, cmap.Max = NiceFloor(rawMin), NiceCeil(rawMax)
	}

	enc := &Encoding{
		Assignments: make([]Assignment, len(sorted)),
		Permutation: perm,
		Values:      make([]string, len(sorted)),
	}
	for i, f := range sorted {
		enc.Assignments[i] = Assignment{Token: cmap.Color(f)}
		enc.Values[i] = formatNumber(f, integral)
	}

	enc.Legend = Legend{
		Kind:      LegendColormap,
		TokenKind: KindColor,
		Gradient:  &grad,
		Min:       cmap.Min,
		Max:       cmap.Max,
		Entries:   colormapTicks(cmap, integral),
	}
	return enc, nil
}

// colormapTicks samples the colormap at LegendTicks evenly spaced points,
// or once when the range is degenerate.
func colormapTicks(cmap Colormap, integral bool) []LegendEntry {
	if cmap.Max <= cmap.Min {
		return []LegendEntry{{Label: formatNumber(cmap.Min, integral), Token: cmap.Color(cmap.Min)}}
	}
	entries := make([]LegendEntry, LegendTicks)
	step := (cmap.Max - cmap.Min) / float64(LegendTicks-1)
	for i := range entries {
		v := cleanFloat(cmap.Min + float64(i)*step)
		if i == LegendTicks-1 {
			v = cmap.Max
		}
		entries[i] = LegendEntry{Label: formatNumber(v, integral && v == math.Trunc(v)), Token: cmap.Color(v)}
	}
	return entries
}

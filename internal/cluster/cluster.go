// Package cluster turns quantized image colors into a short list of candidate
// pigments.
//
// Process runs the full pipeline: near-white and near-black swatches are
// dropped (the user keeps those as base pigments), the rest are grouped by
// perceptual similarity, a few colors are picked from every group, and the
// picks are ordered for display.
//
// Grouping is greedy and depends on input order. A color joins the group that
// holds its nearest already-placed neighbor, so two groups that a later color
// would bridge are never merged.
package cluster

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/ironsheep/pigment-mcp/internal/analysis"
	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/metric"
	"github.com/ironsheep/pigment-mcp/internal/quantize"
)

// Method selects how colors are picked from a group.
type Method string

const (
	// Representative keeps the extremes of each group: darkest, lightest,
	// most saturated, and for larger groups the temperature extremes.
	Representative Method = "representative"
	// Dominant keeps the single most populous color of each group.
	Dominant Method = "dominant"
)

// ParseMethod accepts "representative" or "dominant" in any case. The empty
// string means Representative.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return Representative, nil
	case Representative, Dominant:
		return m, nil
	}
	return "", fmt.Errorf("unknown selection method %q", s)
}

// Options tunes Process.
type Options struct {
	// SimilarityThreshold is the CIEDE2000 distance below which two colors
	// belong to the same group.
	SimilarityThreshold float64
	// AchromaticThreshold is the saturation below which a color is sorted
	// with the grays.
	AchromaticThreshold float64
	Method              Method
}

// DefaultOptions returns a similarity threshold of 20, an achromatic
// threshold of 10 and representative selection.
func DefaultOptions() Options {
	return Options{SimilarityThreshold: 20, AchromaticThreshold: 10, Method: Representative}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = def.SimilarityThreshold
	}
	if o.AchromaticThreshold < 0 {
		o.AchromaticThreshold = def.AchromaticThreshold
	}
	if o.Method == "" {
		o.Method = def.Method
	}
	return o
}

// Process runs exclusion, grouping, selection and sorting over swatches.
// Swatches with malformed hex values are skipped.
func Process(swatches []quantize.Swatch, opts Options) []colormodel.Color {
	opts = opts.normalized()

	colors := Exclude(FromSwatches(swatches))
	if len(colors) == 0 {
		return nil
	}

	groups := Group(colors, opts.SimilarityThreshold)

	var picked []colormodel.Color
	for _, g := range groups {
		if opts.Method == Dominant {
			picked = append(picked, SelectDominant(g))
			continue
		}
		picked = append(picked, SelectRepresentative(g)...)
	}
	return SortForPresentation(picked, opts.AchromaticThreshold)
}

// FromSwatches builds colors carrying each swatch's population.
func FromSwatches(swatches []quantize.Swatch) []colormodel.Color {
	out := make([]colormodel.Color, 0, len(swatches))
	for _, s := range swatches {
		c, err := colormodel.FromHex(s.Hex, colormodel.WithPopulation(s.Population))
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsNearWhite reports lightness of at least 94, or above 80 with saturation
// under 15.
func IsNearWhite(c colormodel.Color) bool {
	return c.HSL.L >= 94 || (c.HSL.L > 80 && c.HSL.S < 15)
}

// IsNearBlack reports lightness under 6, or under 18 with saturation under 12.
func IsNearBlack(c colormodel.Color) bool {
	return c.HSL.L < 6 || (c.HSL.L < 18 && c.HSL.S < 12)
}

// Exclude drops near-white and near-black colors.
func Exclude(colors []colormodel.Color) []colormodel.Color {
	return lo.Filter(colors, func(c colormodel.Color, _ int) bool {
		return !IsNearWhite(c) && !IsNearBlack(c)
	})
}

// Group places each color, in order, into the existing group holding its
// nearest member when that member is closer than threshold. Otherwise the
// color starts a new group.
func Group(colors []colormodel.Color, threshold float64) [][]colormodel.Color {
	var groups [][]colormodel.Color
	for _, c := range colors {
		best, bestDist := -1, math.Inf(1)
		for gi, g := range groups {
			for _, member := range g {
				d := metric.DeltaE2000(c.LAB, member.LAB)
				if d < threshold && d < bestDist {
					best, bestDist = gi, d
				}
			}
		}
		if best < 0 {
			groups = append(groups, []colormodel.Color{c})
			continue
		}
		groups[best] = append(groups[best], c)
	}
	return groups
}

// SelectRepresentative picks the darkest, the lightest and the most saturated
// member. Groups of four or more also give their coolest and warmest member,
// and the least saturated one when it is more than 15 points grayer than the
// most saturated. Each member appears at most once, in the order it was
// picked.
func SelectRepresentative(group []colormodel.Color) []colormodel.Color {
	switch len(group) {
	case 0:
		return nil
	case 1:
		return []colormodel.Color{group[0]}
	}

	byLightness := sortedIndices(group, func(a, b colormodel.Color) int { return cmp.Compare(a.HSL.L, b.HSL.L) })
	bySaturation := sortedIndices(group, func(a, b colormodel.Color) int { return cmp.Compare(b.HSL.S, a.HSL.S) })

	var picks []int
	pick := func(i int) {
		if !slices.Contains(picks, i) {
			picks = append(picks, i)
		}
	}

	pick(byLightness[0])
	pick(byLightness[len(byLightness)-1])
	mostSaturated := bySaturation[0]
	pick(mostSaturated)

	if len(group) >= 4 {
		score := make([]float64, len(group))
		for i, c := range group {
			score[i] = analysis.ClassifyTemperature(c).Score
		}
		byTemperature := make([]int, len(group))
		for i := range byTemperature {
			byTemperature[i] = i
		}
		slices.SortStableFunc(byTemperature, func(a, b int) int { return cmp.Compare(score[a], score[b]) })
		pick(byTemperature[0])
		pick(byTemperature[len(byTemperature)-1])

		leastSaturated := bySaturation[len(bySaturation)-1]
		if group[leastSaturated].HSL.S < group[mostSaturated].HSL.S-15 {
			pick(leastSaturated)
		}
	}

	return lo.Map(picks, func(i int, _ int) colormodel.Color { return group[i] })
}

// SelectDominant returns the member with the largest population. Ties go to
// the earlier member.
func SelectDominant(group []colormodel.Color) colormodel.Color {
	best := group[0]
	for _, c := range group[1:] {
		if c.Population > best.Population {
			best = c
		}
	}
	return best
}

// SortForPresentation orders chromatic colors by hue, with colors whose hues
// are within 10 degrees ordered lightest first. Colors with saturation under
// achromaticThreshold follow, lightest first. The input is not modified.
//
// The hue comparison is not transitive, so the chromatic order of a run of
// close hues depends on input order.
func SortForPresentation(colors []colormodel.Color, achromaticThreshold float64) []colormodel.Color {
	chromatic, achromatic := lo.FilterReject(colors, func(c colormodel.Color, _ int) bool {
		return c.HSL.S >= achromaticThreshold
	})
	slices.SortStableFunc(chromatic, func(a, b colormodel.Color) int {
		if math.Abs(a.HSL.H-b.HSL.H) > 10 {
			return cmp.Compare(a.HSL.H, b.HSL.H)
		}
		return cmp.Compare(b.HSL.L, a.HSL.L)
	})
	slices.SortStableFunc(achromatic, func(a, b colormodel.Color) int {
		return cmp.Compare(b.HSL.L, a.HSL.L)
	})
	return append(chromatic, achromatic...)
}

// Hexes returns the hex strings of colors.
func Hexes(colors []colormodel.Color) []string {
	return lo.Map(colors, func(c colormodel.Color, _ int) string { return c.Hex })
}

func sortedIndices(group []colormodel.Color, less func(a, b colormodel.Color) int) []int {
	idx := make([]int, len(group))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return less(group[a], group[b]) })
	return idx
}

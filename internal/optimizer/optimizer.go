// Package optimizer finds a pigment recipe that approximates a target color.
//
// FindRecipe performs an exhaustive grid search: every multiset of up to four
// palette colors is blended at every proportion on a fixed percentage grid,
// and the blend closest to the target (by perceptual distance) wins. The
// search stops early once a blend is indistinguishable from the target.
//
// The result is always a usable recipe. A target that the palette cannot
// approach is reported through an unreachable warning attached to the best
// effort, not through an error.
package optimizer

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/ironsheep/pigment-mcp/internal/analysis"
	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/metric"
	"github.com/ironsheep/pigment-mcp/internal/mixing"
	"github.com/ironsheep/pigment-mcp/internal/palette"
	"github.com/ironsheep/pigment-mcp/internal/recipe"
)

var (
	ErrEmptyPalette                 = errors.New("palette is empty")
	ErrInsufficientPalette          = errors.New("palette needs at least 2 colors")
	ErrInsufficientChromaticPalette = errors.New("fewer than 2 usable colors remain after removing black pigments")
)

// Result is the outcome of FindRecipe.
type Result struct {
	Recipe       recipe.Recipe          `json:"recipe"`
	Analysis     analysis.ColorAnalysis `json:"analysis"`
	Warnings     []recipe.Warning       `json:"warnings"`
	IsExactMatch bool                   `json:"isExactMatch"`
	Distance     float64                `json:"distance"`
	// Suggestion is a pigment worth adding when the target is unreachable
	// and darker than the best mix. It is nil otherwise.
	Suggestion *colormodel.Color `json:"suggestion,omitempty"`
	// Sequential reports that adding ingredients one at a time, in order,
	// gets closer to the target than mixing them all at once.
	Sequential bool `json:"sequential"`
	// Evaluated is the number of blends scored during the search.
	Evaluated int `json:"evaluated"`
}

// FindRecipe searches p for the mixture closest to target.
//
// The palette is only read. When the target is chromatic, black pigments are
// left out of the search because black dirties rather than darkens; white is
// always kept.
//
// Returns:
//   - ErrEmptyPalette or ErrInsufficientPalette for palettes with fewer than 2 colors
//   - ErrInsufficientChromaticPalette when removing black leaves fewer than 2 colors
func FindRecipe(target colormodel.Color, p palette.Palette, opts Options) (*Result, error) {
	opts = opts.normalized()

	switch {
	case p.Len() == 0:
		return nil, ErrEmptyPalette
	case p.Len() < palette.MinColors:
		return nil, fmt.Errorf("%w: have %d", ErrInsufficientPalette, p.Len())
	}

	nearest := lo.MinBy(p.Colors, func(a, b colormodel.Color) bool {
		return metric.Distance(target, a, opts.Metric) < metric.Distance(target, b, opts.Metric)
	})
	if d := metric.Distance(target, nearest, opts.Metric); d < opts.ExactMatchThreshold {
		ingredients := []recipe.Ingredient{{ColorID: nearest.ID, Proportion: 1}}
		rgb, distance, err := blend(ingredients, p, target, opts.Metric)
		if err != nil {
			return nil, err
		}
		result, err := colormodel.FromRGB(rgb)
		if err != nil {
			return nil, err
		}
		return finish(target, p, nil, ingredients, result, distance, false, 0, opts), nil
	}

	usable := p.Colors
	if colormodel.IsChromatic(target) {
		usable = lo.Filter(p.Colors, func(c colormodel.Color, _ int) bool { return !colormodel.IsBlackPigment(c) })
	}
	if len(usable) < palette.MinColors {
		return nil, fmt.Errorf("%w: %d usable of %d", ErrInsufficientChromaticPalette, len(usable), p.Len())
	}

	s := newSearch(target, usable, opts)
	best := s.run()

	ingredients := orderIngredients(mergeIngredients(best, usable), p, target, opts.Metric)

	// The grid blend used integer percents over unmerged entries; the
	// reported color must be the blend of the ingredients as returned.
	simRGB, simDistance, err := blend(ingredients, p, target, opts.Metric)
	if err != nil {
		return nil, err
	}
	resultRGB, distance, sequential, err := sequentialRecheck(ingredients, p, target, simRGB, simDistance, opts.Metric)
	if err != nil {
		return nil, err
	}
	result, err := colormodel.FromRGB(resultRGB)
	if err != nil {
		return nil, err
	}

	return finish(target, p, usable, ingredients, result, distance, sequential, s.evaluated, opts), nil
}

func finish(target colormodel.Color, p palette.Palette, usable []colormodel.Color, ingredients []recipe.Ingredient,
	result colormodel.Color, distance float64, sequential bool, evaluated int, opts Options) *Result {

	r := recipe.New(target, result, ingredients)
	a, warnings := analysis.Analyze(r, p)

	res := &Result{
		Recipe:       r,
		Analysis:     a,
		IsExactMatch: distance < opts.ExactMatchThreshold,
		Distance:     distance,
		Sequential:   sequential,
		Evaluated:    evaluated,
	}
	if distance > opts.UnreachableThreshold {
		w, suggestion := unreachable(target, result, usable, distance)
		warnings = append(warnings, w)
		res.Suggestion = suggestion
	}
	res.Warnings = warnings
	if res.Warnings == nil {
		res.Warnings = []recipe.Warning{}
	}
	return res
}

// mergeIngredients turns the winning candidate into ingredients, folding
// repeated palette entries into one ingredient with the summed proportion.
func mergeIngredients(best candidate, usable []colormodel.Color) []recipe.Ingredient {
	var out []recipe.Ingredient
	for i, idx := range best.indices {
		id := usable[idx].ID
		share := float64(best.percents[i]) / 100
		if j := slices.IndexFunc(out, func(ing recipe.Ingredient) bool { return ing.ColorID == id }); j >= 0 {
			out[j].Proportion += share
			continue
		}
		out = append(out, recipe.Ingredient{ColorID: id, Proportion: share})
	}
	return out
}

// orderIngredients sorts by descending proportion. Equal proportions put the
// color closer to the target first.
func orderIngredients(ingredients []recipe.Ingredient, lookup recipe.ColorLookup, target colormodel.Color, m metric.Metric) []recipe.Ingredient {
	dist := make(map[string]float64, len(ingredients))
	for _, ing := range ingredients {
		if c, ok := lookup.ColorByID(ing.ColorID); ok {
			dist[ing.ColorID] = metric.Distance(target, c, m)
		}
	}
	out := slices.Clone(ingredients)
	slices.SortStableFunc(out, func(a, b recipe.Ingredient) int {
		if c := cmp.Compare(b.Proportion, a.Proportion); c != 0 {
			return c
		}
		return cmp.Compare(dist[a.ColorID], dist[b.ColorID])
	})
	return out
}

// blend mixes ingredients all at once and scores the result against target.
func blend(ingredients []recipe.Ingredient, lookup recipe.ColorLookup, target colormodel.Color, m metric.Metric) (colormodel.RGB, float64, error) {
	rgb, err := mixing.Simultaneous(ingredients, lookup)
	if err != nil {
		return colormodel.RGB{}, 0, err
	}
	return rgb, metric.LabDistance(target.LAB, colormodel.RGBToLab(rgb), m), nil
}

// sequentialRecheck blends the ordered ingredients one at a time and keeps
// that result only when it is strictly closer to the target.
func sequentialRecheck(ingredients []recipe.Ingredient, lookup recipe.ColorLookup, target colormodel.Color,
	simRGB colormodel.RGB, simDistance float64, m metric.Metric) (colormodel.RGB, float64, bool, error) {

	seqRGB, err := mixing.Sequential(ingredients, lookup)
	if err != nil {
		return colormodel.RGB{}, 0, false, err
	}
	seqDistance := metric.LabDistance(target.LAB, colormodel.RGBToLab(seqRGB), m)
	if seqDistance < simDistance {
		return seqRGB, seqDistance, true, nil
	}
	return simRGB, simDistance, false, nil
}

// Gaps between target and best result that explain why a target is out of
// reach.
const (
	saturationGap   = 20
	lightnessGap    = 20
	hueGap          = 30
	suggestionHue   = 30 // a palette hue this close to the complement counts as present
	suggestSatMin   = 40
	suggestSatMax   = 90
	suggestLightMin = 20
	suggestLightMax = 40
)

// unreachable builds the warning for a target the palette cannot approach.
//
// For a chromatic target darker than the best result it also proposes a
// pigment near the complementary hue, which darkens by neutralising instead
// of by adding black. The proposal is skipped when the usable palette already
// has a chromatic color within 30 degrees of that hue.
func unreachable(target, result colormodel.Color, usable []colormodel.Color, distance float64) (recipe.Warning, *colormodel.Color) {
	var reasons []string
	if target.HSL.S > result.HSL.S+saturationGap {
		reasons = append(reasons, "the target is more saturated than any mix of the palette")
	}
	switch {
	case target.HSL.L > result.HSL.L+lightnessGap:
		reasons = append(reasons, "the target is lighter than any mix of the palette")
	case target.HSL.L < result.HSL.L-lightnessGap:
		reasons = append(reasons, "the target is darker than any mix of the palette")
	}
	if colormodel.HueDistance(target.HSL.H, result.HSL.H) > hueGap {
		reasons = append(reasons, "the palette lacks the target's hue")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "The target is out of reach with this palette (distance %.1f)", distance)
	if len(reasons) > 0 {
		msg.WriteString(": " + strings.Join(reasons, "; "))
	}
	msg.WriteString(". The closest mix is shown.")

	var suggestion *colormodel.Color
	if colormodel.IsChromatic(target) && target.HSL.L < result.HSL.L {
		suggestion = complementSuggestion(target, usable)
		if suggestion != nil {
			fmt.Fprintf(&msg, " Consider adding a pigment near %s (hue %.0f) to darken through the complement instead of black.",
				suggestion.Hex, suggestion.HSL.H)
		}
	}

	return recipe.Warning{Type: recipe.WarningUnreachable, Message: msg.String(), Severity: recipe.SeverityHigh}, suggestion
}

func complementSuggestion(target colormodel.Color, usable []colormodel.Color) *colormodel.Color {
	hue := target.HSL.H + 180
	if hue >= 360 {
		hue -= 360
	}
	present := lo.ContainsBy(usable, func(c colormodel.Color) bool {
		return c.HSL.S >= colormodel.NearGraySaturation && colormodel.HueDistance(c.HSL.H, hue) <= suggestionHue
	})
	if present {
		return nil
	}
	c, err := colormodel.FromHSL(colormodel.HSL{
		H: hue,
		S: lo.Clamp(target.HSL.S, suggestSatMin, suggestSatMax),
		L: lo.Clamp(target.HSL.L, suggestLightMin, suggestLightMax),
	}, colormodel.WithName("complementary darkener"))
	if err != nil {
		return nil
	}
	return &c
}

// Package analysis applies rule-based quality checks to a mixed recipe.
//
// The rules come from practical pigment work: low-saturation mid-tones read
// as muddy, black dirties chromatic mixes instead of darkening them, and
// near-complementary pairs in similar amounts cancel into gray. Everything
// here is a pure function of a recipe and a color lookup.
package analysis

import (
	"fmt"
	"math"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/recipe"
)

// Rule thresholds.
const (
	DirtySaturation      = 25 // S below this with a mid lightness is muddy
	DirtyLightnessMin    = 20
	DirtyLightnessMax    = 80
	GrayishSaturation    = 15
	ComplementaryMinDiff = 150 // circular hue difference in degrees; a pair must exceed it
	ComplementaryRatio   = 0.7 // min/max proportion ratio above which a pair is "similar"
)

const (
	blackAlternative = "Darken with the complementary color or a deeper shade of the base pigments instead of black."
	cleanFallback    = "The color looks clean and should hold up well."
)

// ColorAnalysis summarises the rule results for one recipe.
type ColorAnalysis struct {
	IsClean      bool        `json:"isClean"`
	IsDirty      bool        `json:"isDirty"`
	IsWarm       bool        `json:"isWarm"`
	IsCool       bool        `json:"isCool"`
	Temperature  Temperature `json:"temperature"`
	Warnings     []string    `json:"warnings"`
	Explanations []string    `json:"explanations"`
}

// Analyze runs every rule over r and aggregates the outcome.
//
// Explanations are ordered cleanliness, black usage (followed by the
// suggested alternative), complementary risk, temperature. When no rule
// raised a warning a closing "looks clean" line is added.
func Analyze(r recipe.Recipe, lookup recipe.ColorLookup) (ColorAnalysis, []recipe.Warning) {
	var (
		warnings     []recipe.Warning
		explanations []string
	)

	dirty := Cleanliness(r.ResultColor)
	if dirty != nil {
		warnings = append(warnings, *dirty)
		explanations = append(explanations, "The color has low saturation or a grayish cast and may lose its chroma once applied.")
	}

	black := BlackUsage(r, lookup)
	if black != nil {
		warnings = append(warnings, *black)
		explanations = append(explanations,
			"Black is not recommended for darkening chromatic colors: it dirties the mix instead of deepening it.",
			blackAlternative)
	}

	complementary := ComplementaryRisks(r, lookup)
	if len(complementary) > 0 {
		warnings = append(warnings, complementary...)
		explanations = append(explanations, "Mixing complementary colors in similar amounts can produce a gray tone.")
	}

	temp := ClassifyTemperature(r.ResultColor)
	explanations = append(explanations, temp.Explanation)

	if len(warnings) == 0 {
		explanations = append(explanations, cleanFallback)
	}

	messages := make([]string, len(warnings))
	for i, w := range warnings {
		messages[i] = w.Message
	}

	return ColorAnalysis{
		IsClean:      dirty == nil && black == nil,
		IsDirty:      dirty != nil || black != nil,
		IsWarm:       temp.Kind == Warm,
		IsCool:       temp.Kind == Cool,
		Temperature:  temp,
		Warnings:     messages,
		Explanations: explanations,
	}, warnings
}

// Cleanliness flags a muddy color. A low-saturation mid-tone is high
// severity; a merely grayish color is medium. It returns nil for clean colors.
func Cleanliness(c colormodel.Color) *recipe.Warning {
	s, l := c.HSL.S, c.HSL.L

	if s < DirtySaturation && l >= DirtyLightnessMin && l <= DirtyLightnessMax {
		return &recipe.Warning{
			Type:     recipe.WarningDirty,
			Message:  fmt.Sprintf("Low saturation (%d%%) at a mid lightness can lose its chroma once applied.", int(math.Round(s))),
			Severity: recipe.SeverityHigh,
		}
	}
	if s < GrayishSaturation {
		return &recipe.Warning{
			Type:     recipe.WarningDirty,
			Message:  "The color has a grayish cast and can look dirty once applied.",
			Severity: recipe.SeverityMedium,
		}
	}
	return nil
}

// BlackUsage flags a black pigment in a recipe whose target is chromatic.
// Any amount is high severity. It returns nil when the target is achromatic
// or no ingredient is black.
func BlackUsage(r recipe.Recipe, lookup recipe.ColorLookup) *recipe.Warning {
	if !colormodel.IsChromatic(r.TargetColor) {
		return nil
	}
	for _, ing := range r.Ingredients {
		c, ok := lookup.ColorByID(ing.ColorID)
		if !ok || !colormodel.IsBlackPigment(c) {
			continue
		}
		return &recipe.Warning{
			Type: recipe.WarningBlackUsage,
			Message: fmt.Sprintf("Using black (%s, %d%%) to darken a chromatic color dirties it.",
				c, int(math.Round(ing.Proportion*100))),
			Severity: recipe.SeverityHigh,
		}
	}
	return nil
}

// ComplementaryRisks returns one medium warning for every pair of chromatic
// ingredients whose hues are more than 150 degrees apart and whose proportions
// are within 30% of each other. Achromatic ingredients have no meaningful hue
// and are skipped.
func ComplementaryRisks(r recipe.Recipe, lookup recipe.ColorLookup) []recipe.Warning {
	type resolved struct {
		color      colormodel.Color
		proportion float64
	}
	var items []resolved
	for _, ing := range r.Ingredients {
		c, ok := lookup.ColorByID(ing.ColorID)
		if !ok || c.HSL.S < colormodel.NearGraySaturation {
			continue
		}
		items = append(items, resolved{c, ing.Proportion})
	}

	var out []recipe.Warning
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]
			if colormodel.HueDistance(a.color.HSL.H, b.color.HSL.H) <= ComplementaryMinDiff {
				continue
			}
			hi := math.Max(a.proportion, b.proportion)
			if hi <= 0 || math.Min(a.proportion, b.proportion)/hi <= ComplementaryRatio {
				continue
			}
			out = append(out, recipe.Warning{
				Type:     recipe.WarningDirty,
				Message:  fmt.Sprintf("%s and %s are near-complementary in similar amounts and may gray out.", a.color, b.color),
				Severity: recipe.SeverityMedium,
			})
		}
	}
	return out
}

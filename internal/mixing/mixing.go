// Package mixing approximates how pigments combine.
//
// Paint is subtractive: yellow and blue make green, where averaging RGB would
// give gray. Each ingredient is converted to CMYK, the ink channels are
// averaged by proportion and the result is converted back to RGB. This is an
// approximation and not a spectral (Kubelka-Munk) simulation.
package mixing

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/recipe"
)

var (
	ErrNoIngredients     = errors.New("no ingredients to mix")
	ErrZeroWeightMixture = errors.New("total ingredient weight is zero")
	ErrColorNotFound     = errors.New("ingredient color not found")
	ErrNegativeWeight    = errors.New("ingredient proportion is negative")
)

// Normalize prepares ingredients for storage: zero proportions are dropped,
// repeated ids are merged in first-seen order and the proportions are scaled
// to sum to one.
//
// Returns:
//   - ErrNoIngredients for an empty list
//   - ErrNegativeWeight when any proportion is below zero
//   - ErrZeroWeightMixture when nothing positive remains
func Normalize(ingredients []recipe.Ingredient) ([]recipe.Ingredient, error) {
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}
	var (
		out   []recipe.Ingredient
		total float64
	)
	for _, ing := range ingredients {
		switch {
		case ing.Proportion < 0:
			return nil, fmt.Errorf("%w: %s %v", ErrNegativeWeight, ing.ColorID, ing.Proportion)
		case ing.Proportion == 0:
			continue
		}
		total += ing.Proportion
		if j := slices.IndexFunc(out, func(o recipe.Ingredient) bool { return o.ColorID == ing.ColorID }); j >= 0 {
			out[j].Proportion += ing.Proportion
			continue
		}
		out = append(out, ing)
	}
	if total <= 0 {
		return nil, ErrZeroWeightMixture
	}
	for i := range out {
		out[i].Proportion /= total
	}
	return out, nil
}

// Simultaneous blends all ingredients at once.
//
// Negative proportions count as zero. Proportions need not sum to one; they
// are normalized by their total.
//
// Returns:
//   - ErrNoIngredients for an empty list
//   - ErrColorNotFound when an id is missing from lookup
//   - ErrZeroWeightMixture when no ingredient has positive weight
func Simultaneous(ingredients []recipe.Ingredient, lookup recipe.ColorLookup) (colormodel.RGB, error) {
	inks, weights, err := resolve(ingredients, lookup)
	if err != nil {
		return colormodel.RGB{}, err
	}
	return BlendCMYK(inks, weights)
}

// Sequential folds ingredients in order. After each step the running mixture,
// weighted by the cumulative proportion so far, is re-blended with the next
// ingredient weighted by its own proportion. The running mixture is held as
// 8-bit RGB between steps, as a physical intermediate would be.
//
// Errors match Simultaneous.
func Sequential(ingredients []recipe.Ingredient, lookup recipe.ColorLookup) (colormodel.RGB, error) {
	inks, weights, err := resolve(ingredients, lookup)
	if err != nil {
		return colormodel.RGB{}, err
	}
	return SequentialCMYK(inks, weights)
}

// BlendCMYK averages inks channel by channel using weights, clamps each
// channel to 0-100 and converts the result back to RGB. inks and weights
// must have the same length.
func BlendCMYK(inks []colormodel.CMYK, weights []float64) (colormodel.RGB, error) {
	if len(inks) == 0 {
		return colormodel.RGB{}, ErrNoIngredients
	}
	var sum colormodel.CMYK
	total := 0.0
	for i, ink := range inks {
		w := max(weights[i], 0)
		sum.C += ink.C * w
		sum.M += ink.M * w
		sum.Y += ink.Y * w
		sum.K += ink.K * w
		total += w
	}
	if total <= 0 {
		return colormodel.RGB{}, ErrZeroWeightMixture
	}
	return colormodel.CMYKToRGB(colormodel.CMYK{
		C: clampPct(sum.C / total),
		M: clampPct(sum.M / total),
		Y: clampPct(sum.Y / total),
		K: clampPct(sum.K / total),
	}), nil
}

// SequentialCMYK is Sequential over already-resolved inks.
func SequentialCMYK(inks []colormodel.CMYK, weights []float64) (colormodel.RGB, error) {
	if len(inks) == 0 {
		return colormodel.RGB{}, ErrNoIngredients
	}

	var (
		running    colormodel.RGB
		cumulative float64
		started    bool
	)
	for i, ink := range inks {
		w := max(weights[i], 0)
		if w == 0 {
			continue
		}
		if !started {
			running = colormodel.CMYKToRGB(ink)
			cumulative = w
			started = true
			continue
		}
		mixed, err := BlendCMYK(
			[]colormodel.CMYK{colormodel.RGBToCMYK(running), ink},
			[]float64{cumulative, w},
		)
		if err != nil {
			return colormodel.RGB{}, err
		}
		running = mixed
		cumulative += w
	}
	if !started {
		return colormodel.RGB{}, ErrZeroWeightMixture
	}
	return running, nil
}

func resolve(ingredients []recipe.Ingredient, lookup recipe.ColorLookup) ([]colormodel.CMYK, []float64, error) {
	if len(ingredients) == 0 {
		return nil, nil, ErrNoIngredients
	}
	inks := make([]colormodel.CMYK, len(ingredients))
	weights := make([]float64, len(ingredients))
	for i, ing := range ingredients {
		c, ok := lookup.ColorByID(ing.ColorID)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrColorNotFound, ing.ColorID)
		}
		inks[i] = c.CMYK()
		weights[i] = ing.Proportion
	}
	return inks, weights, nil
}

func clampPct(v float64) float64 {
	return min(max(v, 0), 100)
}

package recipe

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
)

// Style selects how Format renders proportions.
type Style string

const (
	StyleParts       Style = "parts"
	StylePercentages Style = "percentages"
	StyleRatio       Style = "ratio"
)

const noIngredients = "no ingredients"

// Format renders r as a one-line mixing instruction, e.g.
// "Mix: 3 parts Red, 2 parts Blue".
func Format(r Recipe, lookup ColorLookup, style Style) string {
	var body string
	switch style {
	case StylePercentages:
		body = FormatPercentages(r.Ingredients, lookup)
	case StyleRatio:
		body = FormatRatio(r.Ingredients)
	default:
		body = FormatParts(r.Ingredients, lookup)
	}
	return "Mix: " + body
}

// FormatParts expresses proportions as the smallest whole-number parts,
// e.g. 0.6/0.4 becomes "3 parts Red, 2 parts Blue".
func FormatParts(ingredients []Ingredient, lookup ColorLookup) string {
	if len(ingredients) == 0 {
		return noIngredients
	}
	parts := wholeParts(ingredients)
	out := lo.Map(ingredients, func(ing Ingredient, i int) string {
		word := "parts"
		if parts[i] == 1 {
			word = "part"
		}
		return fmt.Sprintf("%d %s %s", parts[i], word, displayName(ing.ColorID, lookup))
	})
	return strings.Join(out, ", ")
}

// FormatPercentages expresses proportions as rounded percentages.
func FormatPercentages(ingredients []Ingredient, lookup ColorLookup) string {
	if len(ingredients) == 0 {
		return noIngredients
	}
	out := lo.Map(ingredients, func(ing Ingredient, _ int) string {
		return fmt.Sprintf("%d%% %s", percent(ing.Proportion), displayName(ing.ColorID, lookup))
	})
	return strings.Join(out, ", ")
}

// FormatRatio expresses proportions as a colon-separated whole-number ratio
// such as "3:2". An empty list renders as "0:0".
func FormatRatio(ingredients []Ingredient) string {
	if len(ingredients) == 0 {
		return "0:0"
	}
	return strings.Join(lo.Map(wholeParts(ingredients), func(p int, _ int) string {
		return fmt.Sprint(p)
	}), ":")
}

// wholeParts reduces rounded percentages by their greatest common divisor.
func wholeParts(ingredients []Ingredient) []int {
	pcts := lo.Map(ingredients, func(ing Ingredient, _ int) int { return max(percent(ing.Proportion), 1) })
	g := lo.Reduce(pcts, func(acc int, p int, _ int) int { return gcd(acc, p) }, 0)
	return lo.Map(pcts, func(p int, _ int) int { return p / g })
}

func percent(p float64) int {
	return int(math.Round(p * 100))
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func displayName(id string, lookup ColorLookup) string {
	if lookup != nil {
		if c, ok := lookup.ColorByID(id); ok {
			return c.String()
		}
	}
	return "color " + id
}

// Package recipe holds the value types shared by the mixing engine, the
// analyzer and the storage layer: ingredients, recipes and warnings.
package recipe

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

// ProportionTolerance is the allowed drift of a recipe's proportion sum from 1.
const ProportionTolerance = 1e-6

// Ingredient is one palette color and its share of the mixture.
type Ingredient struct {
	ColorID    string  `json:"colorId"`
	Proportion float64 `json:"proportion"` // share of the whole, in (0, 1]
}

// ColorLookup resolves palette colors by id.
type ColorLookup interface {
	ColorByID(id string) (colormodel.Color, bool)
}

// LookupFunc adapts a plain function to ColorLookup.
type LookupFunc func(id string) (colormodel.Color, bool)

// ColorByID calls f(id).
func (f LookupFunc) ColorByID(id string) (colormodel.Color, bool) { return f(id) }

// Recipe is a mixing instruction for reaching TargetColor.
//
// Ingredients are listed in the recommended order of addition. ResultColor is
// always the blended output of Ingredients, never a copy of the target.
type Recipe struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	TargetColor colormodel.Color `json:"targetColor"`
	ResultColor colormodel.Color `json:"resultColor"`
	Ingredients []Ingredient     `json:"ingredients"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// New stamps a fresh id and creation time on a recipe.
func New(target, result colormodel.Color, ingredients []Ingredient) Recipe {
	now := time.Now().UTC()
	return Recipe{
		ID:          NewID(),
		TargetColor: target,
		ResultColor: result,
		Ingredients: ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewID returns a fresh recipe id.
func NewID() string {
	return "recipe-" + uuid.NewString()
}

// TotalProportion sums the proportions of all ingredients.
func (r Recipe) TotalProportion() float64 {
	return lo.SumBy(r.Ingredients, func(i Ingredient) float64 { return i.Proportion })
}

// IsNormalized reports whether the proportions sum to 1 within
// ProportionTolerance.
func (r Recipe) IsNormalized() bool {
	return math.Abs(r.TotalProportion()-1) <= ProportionTolerance
}

// ColorIDs returns the ingredient color ids in recipe order.
func (r Recipe) ColorIDs() []string {
	return lo.Map(r.Ingredients, func(i Ingredient, _ int) string { return i.ColorID })
}

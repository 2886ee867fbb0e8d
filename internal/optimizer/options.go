package optimizer

import "github.com/ironsheep/pigment-mcp/internal/metric"

// MaxIngredientsLimit caps the search depth. The candidate count grows with
// the fourth power of the palette size at this depth.
const MaxIngredientsLimit = 4

// Options tunes FindRecipe. The zero value is usable: unset fields take the
// values from DefaultOptions.
type Options struct {
	// MaxIngredients is the largest ingredient count tried, 1 through 4.
	MaxIngredients int
	// ExactMatchThreshold is the distance below which a result counts as an
	// exact match and the search stops.
	ExactMatchThreshold float64
	// UnreachableThreshold is the distance above which the result carries an
	// unreachable warning.
	UnreachableThreshold float64
	// ProportionSteps maps an ingredient count to its grid step in percent.
	// Counts without an entry use 10.
	ProportionSteps map[int]int
	// Metric selects the color-difference formula.
	Metric metric.Metric
}

// DefaultOptions returns the standard engine settings.
func DefaultOptions() Options {
	return Options{
		MaxIngredients:       MaxIngredientsLimit,
		ExactMatchThreshold:  metric.ExactMatchThreshold,
		UnreachableThreshold: metric.UnreachableThreshold,
		ProportionSteps:      map[int]int{2: 5, 3: 5, 4: 10},
		Metric:               metric.CIEDE2000,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.MaxIngredients <= 0 {
		o.MaxIngredients = def.MaxIngredients
	}
	o.MaxIngredients = min(o.MaxIngredients, MaxIngredientsLimit)
	if o.ExactMatchThreshold <= 0 {
		o.ExactMatchThreshold = def.ExactMatchThreshold
	}
	if o.UnreachableThreshold <= 0 {
		o.UnreachableThreshold = def.UnreachableThreshold
	}
	if len(o.ProportionSteps) == 0 {
		o.ProportionSteps = def.ProportionSteps
	}
	if o.Metric == "" {
		o.Metric = def.Metric
	}
	return o
}

// step returns the proportion grid step, in percent, for k ingredients.
func (o Options) step(k int) int {
	if s, ok := o.ProportionSteps[k]; ok && s > 0 && s <= 100/k {
		return s
	}
	return 10
}

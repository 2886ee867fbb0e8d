package optimizer

import (
	"math"
	"slices"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/metric"
	"github.com/ironsheep/pigment-mcp/internal/mixing"
)

// candidate is one point of the search space: which palette entries (by index
// into the usable list, repetition allowed) in which integer percentages.
type candidate struct {
	indices  []int
	percents []int
	distance float64
}

// search enumerates multiset combinations of the usable palette and, for each,
// a grid of proportions that sum to 100 percent. The blend of every grid
// point is scored against the target and the lowest distance wins; ties keep
// the first candidate seen.
type search struct {
	target colormodel.LAB
	inks   []colormodel.CMYK
	opts   Options

	// Many grid points blend to the same 8-bit color.
	cache map[colormodel.RGB]float64

	inkBuf    []colormodel.CMYK
	weightBuf []float64

	best      candidate
	evaluated int
}

func newSearch(target colormodel.Color, usable []colormodel.Color, opts Options) *search {
	inks := make([]colormodel.CMYK, len(usable))
	for i, c := range usable {
		inks[i] = c.CMYK()
	}
	return &search{
		target:    target.LAB,
		inks:      inks,
		opts:      opts,
		cache:     make(map[colormodel.RGB]float64),
		inkBuf:    make([]colormodel.CMYK, 0, MaxIngredientsLimit),
		weightBuf: make([]float64, 0, MaxIngredientsLimit),
		best:      candidate{distance: math.Inf(1)},
	}
}

// run searches ingredient counts 1 through MaxIngredients and stops as soon
// as any candidate is an exact match.
func (s *search) run() candidate {
	for k := 1; k <= s.opts.MaxIngredients; k++ {
		combo := make([]int, k)
		if s.combinations(combo, 0, 0) {
			break
		}
	}
	return s.best
}

// combinations fills combo[pos:] with non-decreasing palette indices starting
// at from. It reports true once the search should stop.
func (s *search) combinations(combo []int, pos, from int) bool {
	if pos == len(combo) {
		return s.proportions(combo)
	}
	for i := from; i < len(s.inks); i++ {
		combo[pos] = i
		if s.combinations(combo, pos+1, i) {
			return true
		}
	}
	return false
}

func (s *search) proportions(combo []int) bool {
	if len(combo) == 1 {
		return s.evaluate(combo, []int{100})
	}
	pct := make([]int, len(combo))
	return s.fill(combo, pct, 0, 100, s.opts.step(len(combo)))
}

// fill walks the proportion grid. Every slot but the last takes a multiple of
// step, leaving at least step for each later slot; the last slot receives the
// remainder.
func (s *search) fill(combo, pct []int, pos, remaining, step int) bool {
	last := len(pct) - 1
	if pos == last {
		if remaining < step {
			return false
		}
		pct[pos] = remaining
		return s.evaluate(combo, pct)
	}
	for p := step; p <= remaining-step*(last-pos); p += step {
		pct[pos] = p
		if s.fill(combo, pct, pos+1, remaining-p, step) {
			return true
		}
	}
	return false
}

func (s *search) evaluate(combo, pct []int) bool {
	s.evaluated++
	s.inkBuf = s.inkBuf[:0]
	s.weightBuf = s.weightBuf[:0]
	for i, idx := range combo {
		s.inkBuf = append(s.inkBuf, s.inks[idx])
		s.weightBuf = append(s.weightBuf, float64(pct[i]))
	}

	rgb, err := mixing.BlendCMYK(s.inkBuf, s.weightBuf)
	if err != nil {
		// Every grid weight is positive, so this cannot happen.
		panic(err)
	}

	d, ok := s.cache[rgb]
	if !ok {
		d = metric.LabDistance(s.target, colormodel.RGBToLab(rgb), s.opts.Metric)
		s.cache[rgb] = d
	}

	if d < s.best.distance {
		s.best = candidate{
			indices:  slices.Clone(combo),
			percents: slices.Clone(pct),
			distance: d,
		}
	}
	return s.best.distance < s.opts.ExactMatchThreshold
}

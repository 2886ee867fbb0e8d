// Package quantize reduces the colors of an image to a small set of
// centroids with K-means clustering in RGB space.
//
// Seeding is random. Pass a seeded *rand.Rand in Options for reproducible
// results; otherwise two runs over the same pixels may cluster differently.
package quantize

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kovidgoyal/go-parallel"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

var (
	ErrNoPixels            = errors.New("no pixels to quantize")
	ErrInvalidClusterCount = errors.New("cluster count must be positive")
)

// Options tunes Quantize.
type Options struct {
	// MaxIterations bounds the number of assign/update rounds.
	MaxIterations int
	// ConvergenceThreshold stops iteration once no centroid moves further
	// than this (Euclidean RGB units) in a round.
	ConvergenceThreshold float64
	// Rand drives seeding and the re-seeding of empty clusters. Nil means a
	// time-seeded generator.
	Rand *rand.Rand
	// Workers is the number of goroutines for pixel assignment; 0 picks one
	// per CPU.
	Workers int
}

// DefaultOptions returns 20 iterations and a convergence threshold of 1.
func DefaultOptions() Options {
	return Options{MaxIterations: 20, ConvergenceThreshold: 1}
}

// NewRand returns a generator for seed, or a time-seeded one when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// Swatch is one output color and the number of pixels it stands for.
type Swatch struct {
	Hex        string `json:"hex"`
	Population int    `json:"population"`
}

// Result holds the swatches and how the iteration ended.
type Result struct {
	Swatches []Swatch `json:"swatches"`
	// Iterations is the number of assign/update rounds run; 0 when the
	// unique colors were returned directly.
	Iterations int `json:"iterations"`
	// Converged is true when the last round moved no centroid further than
	// the threshold.
	Converged bool `json:"converged"`
	// LastMovement is the largest centroid shift of the final round.
	LastMovement float64 `json:"lastMovement"`
}

// TotalPopulation sums the swatch populations.
func (r *Result) TotalPopulation() int {
	n := 0
	for _, s := range r.Swatches {
		n += s.Population
	}
	return n
}

// Quantize clusters pixels into at most k colors.
//
// When k is larger than the number of distinct pixel colors, the distinct
// colors are returned in first-seen order with exact counts. Otherwise
// K-means runs until convergence or MaxIterations. Centroids that end with no
// pixels are dropped, so fewer than k swatches may come back; populations
// always sum to len(pixels).
func Quantize(pixels []colormodel.RGB, k int, opts Options) (*Result, error) {
	if len(pixels) == 0 {
		return nil, ErrNoPixels
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidClusterCount, k)
	}
	opts = opts.normalized()

	if unique := uniqueColors(pixels); k > len(unique) {
		return &Result{Swatches: unique, Converged: true}, nil
	}

	centroids := initialCentroids(pixels, k, opts.Rand)
	assignments := make([]int, len(pixels))
	res := &Result{}

	for res.Iterations < opts.MaxIterations {
		res.Iterations++
		if err := assign(pixels, centroids, assignments, opts.Workers); err != nil {
			return nil, fmt.Errorf("assign pixels: %w", err)
		}
		next := updateCentroids(pixels, assignments, k, opts.Rand)
		res.LastMovement = maxMovement(centroids, next)
		centroids = next
		if res.LastMovement <= opts.ConvergenceThreshold {
			res.Converged = true
			break
		}
	}

	populations := make([]int, k)
	for _, a := range assignments {
		populations[a]++
	}
	for i, c := range centroids {
		if populations[i] == 0 {
			continue
		}
		res.Swatches = append(res.Swatches, Swatch{Hex: colormodel.RGBToHex(c), Population: populations[i]})
	}
	return res, nil
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = def.MaxIterations
	}
	if o.ConvergenceThreshold < 0 {
		o.ConvergenceThreshold = def.ConvergenceThreshold
	}
	if o.Rand == nil {
		o.Rand = NewRand(0)
	}
	if o.Workers < 0 {
		o.Workers = 0
	}
	return o
}

func uniqueColors(pixels []colormodel.RGB) []Swatch {
	index := make(map[colormodel.RGB]int)
	var out []Swatch
	for _, p := range pixels {
		if i, ok := index[p]; ok {
			out[i].Population++
			continue
		}
		index[p] = len(out)
		out = append(out, Swatch{Hex: colormodel.RGBToHex(p), Population: 1})
	}
	return out
}

// initialCentroids samples k distinct pixel indices and pads with random
// colors if there are fewer pixels than k.
func initialCentroids(pixels []colormodel.RGB, k int, r *rand.Rand) []colormodel.RGB {
	centroids := make([]colormodel.RGB, 0, k)
	used := make(map[int]struct{}, k)
	for len(centroids) < k && len(centroids) < len(pixels) {
		i := r.IntN(len(pixels))
		if _, dup := used[i]; dup {
			continue
		}
		used[i] = struct{}{}
		centroids = append(centroids, pixels[i])
	}
	for len(centroids) < k {
		centroids = append(centroids, randomColor(r))
	}
	return centroids
}

// assign stores the index of the nearest centroid for every pixel. Ties go to
// the lower index.
func assign(pixels, centroids []colormodel.RGB, out []int, workers int) error {
	return parallel.Run_in_parallel_over_range(workers, func(start, limit int) {
		for i := start; i < limit; i++ {
			best, bestDist := 0, math.MaxInt
			for j, c := range centroids {
				if d := sqDist(pixels[i], c); d < bestDist {
					best, bestDist = j, d
				}
			}
			out[i] = best
		}
	}, 0, len(pixels))
}

// updateCentroids moves each centroid to the rounded mean of its pixels.
// Empty clusters are re-seeded with a random color.
func updateCentroids(pixels []colormodel.RGB, assignments []int, k int, r *rand.Rand) []colormodel.RGB {
	type acc struct{ r, g, b, n int }
	sums := make([]acc, k)
	for i, p := range pixels {
		s := &sums[assignments[i]]
		s.r += p.R
		s.g += p.G
		s.b += p.B
		s.n++
	}
	next := make([]colormodel.RGB, k)
	for i, s := range sums {
		if s.n == 0 {
			next[i] = randomColor(r)
			continue
		}
		n := float64(s.n)
		next[i] = colormodel.RGB{
			R: int(math.Round(float64(s.r) / n)),
			G: int(math.Round(float64(s.g) / n)),
			B: int(math.Round(float64(s.b) / n)),
		}
	}
	return next
}

func maxMovement(prev, next []colormodel.RGB) float64 {
	m := 0.0
	for i := range prev {
		m = math.Max(m, math.Sqrt(float64(sqDist(prev[i], next[i]))))
	}
	return m
}

func sqDist(a, b colormodel.RGB) int {
	dr, dg, db := a.R-b.R, a.G-b.G, a.B-b.B
	return dr*dr + dg*dg + db*db
}

func randomColor(r *rand.Rand) colormodel.RGB {
	return colormodel.RGB{R: r.IntN(256), G: r.IntN(256), B: r.IntN(256)}
}

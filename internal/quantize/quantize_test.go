package quantize

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

func TestQuantize_Errors(t *testing.T) {
	if _, err := Quantize(nil, 3, DefaultOptions()); !errors.Is(err, ErrNoPixels) {
		t.Errorf("empty pixels error = %v", err)
	}
	px := []colormodel.RGB{{R: 1, G: 2, B: 3}}
	for _, k := range []int{0, -1} {
		if _, err := Quantize(px, k, DefaultOptions()); !errors.Is(err, ErrInvalidClusterCount) {
			t.Errorf("k=%d error = %v", k, err)
		}
	}
}

func TestQuantize_FewerUniqueColorsThanK(t *testing.T) {
	px := []colormodel.RGB{
		{R: 255}, {B: 255}, {R: 255}, {G: 255}, {R: 255},
	}
	res, err := Quantize(px, 5, DefaultOptions())
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	want := []Swatch{
		{Hex: "#FF0000", Population: 3},
		{Hex: "#0000FF", Population: 1},
		{Hex: "#00FF00", Population: 1},
	}
	if diff := cmp.Diff(want, res.Swatches); diff != "" {
		t.Errorf("swatches mismatch (-want +got):\n%s", diff)
	}
	if res.Iterations != 0 || !res.Converged {
		t.Errorf("iterations = %d, converged = %v", res.Iterations, res.Converged)
	}
}

func twoGroups() []colormodel.RGB {
	var px []colormodel.RGB
	for i := 0; i < 50; i++ {
		px = append(px, colormodel.RGB{R: 255 - i, B: i % 5})
	}
	for i := 0; i < 50; i++ {
		px = append(px, colormodel.RGB{G: i % 5, B: 255 - i})
	}
	return px
}

func TestQuantize_SeparatesGroups(t *testing.T) {
	opts := DefaultOptions()
	opts.Rand = NewRand(7)

	res, err := Quantize(twoGroups(), 2, opts)
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	if len(res.Swatches) != 2 {
		t.Fatalf("swatches = %+v, want 2", res.Swatches)
	}
	var reds, blues int
	for _, s := range res.Swatches {
		if s.Population != 50 {
			t.Errorf("population of %s = %d, want 50", s.Hex, s.Population)
		}
		rgb, err := colormodel.HexToRGB(s.Hex)
		if err != nil {
			t.Fatalf("bad swatch hex %q: %v", s.Hex, err)
		}
		switch {
		case rgb.R > 200 && rgb.B < 10:
			reds++
		case rgb.B > 200 && rgb.R < 10:
			blues++
		}
	}
	if reds != 1 || blues != 1 {
		t.Errorf("swatches = %+v, want one red and one blue", res.Swatches)
	}
	if !res.Converged {
		t.Errorf("expected convergence, last movement %v", res.LastMovement)
	}
}

func randomImage(seed uint64, n int) []colormodel.RGB {
	r := NewRand(seed)
	px := make([]colormodel.RGB, n)
	for i := range px {
		px[i] = randomColor(r)
	}
	return px
}

func TestQuantize_SameSeedSameResult(t *testing.T) {
	px := randomImage(99, 2000)

	run := func() *Result {
		opts := DefaultOptions()
		opts.Rand = NewRand(42)
		res, err := Quantize(px, 6, opts)
		if err != nil {
			t.Fatalf("Quantize failed: %v", err)
		}
		return res
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("seeded runs differ (-first +second):\n%s", diff)
	}
}

func TestQuantize_PopulationsCoverAllPixels(t *testing.T) {
	px := randomImage(3, 1500)
	for _, workers := range []int{0, 1, 4} {
		opts := DefaultOptions()
		opts.Rand = NewRand(5)
		opts.Workers = workers

		res, err := Quantize(px, 8, opts)
		if err != nil {
			t.Fatalf("workers=%d: Quantize failed: %v", workers, err)
		}
		if got := res.TotalPopulation(); got != len(px) {
			t.Errorf("workers=%d: total population %d, want %d", workers, got, len(px))
		}
		if len(res.Swatches) == 0 || len(res.Swatches) > 8 {
			t.Errorf("workers=%d: %d swatches", workers, len(res.Swatches))
		}
		if res.Iterations < 1 || res.Iterations > opts.MaxIterations {
			t.Errorf("workers=%d: iterations %d", workers, res.Iterations)
		}
		for _, s := range res.Swatches {
			if s.Population <= 0 {
				t.Errorf("workers=%d: empty swatch %+v", workers, s)
			}
		}
	}
}

func TestQuantize_NilRand(t *testing.T) {
	res, err := Quantize(twoGroups(), 2, Options{})
	if err != nil {
		t.Fatalf("Quantize failed: %v", err)
	}
	if res.TotalPopulation() != 100 {
		t.Errorf("total population %d", res.TotalPopulation())
	}
}

func TestAssign_TiesGoToLowerIndex(t *testing.T) {
	px := []colormodel.RGB{{R: 10}, {R: 20}}
	centroids := []colormodel.RGB{{R: 15}, {R: 15}}
	out := make([]int, len(px))
	if err := assign(px, centroids, out, 1); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if out[0] != 0 || out[1] != 0 {
		t.Errorf("assignments = %v, want [0 0]", out)
	}
}

func TestUpdateCentroids_RoundsMean(t *testing.T) {
	px := []colormodel.RGB{{R: 0, G: 1, B: 2}, {R: 1, G: 2, B: 2}}
	got := updateCentroids(px, []int{0, 0}, 1, NewRand(1))
	want := colormodel.RGB{R: 1, G: 2, B: 2}
	if got[0] != want {
		t.Errorf("centroid = %+v, want %+v", got[0], want)
	}
}

// Package metric measures perceptual differences between colors.
//
// Both formulas work on the LAB value cached in colormodel.Color, so a color
// is never converted twice. CIEDE2000 is the default for every engine
// decision; CIE76 remains available for comparison and for callers that need
// a cheap Euclidean distance.
package metric

import (
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

// Engine-wide thresholds on CIEDE2000 distance.
const (
	// ExactMatchThreshold is the distance below which two colors are
	// indistinguishable to a typical observer.
	ExactMatchThreshold = 2.0
	// UnreachableThreshold is the distance above which a recipe is not
	// considered a useful approximation of its target.
	UnreachableThreshold = 15.0
)

// Metric names a color-difference formula.
type Metric string

const (
	CIE76     Metric = "cie76"
	CIEDE2000 Metric = "ciede2000"
)

// ParseMetric maps a case-insensitive name to a Metric. The empty string
// selects CIEDE2000.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(CIEDE2000), "de2000", "delta-e-2000":
		return CIEDE2000, nil
	case string(CIE76), "de76", "delta-e-76":
		return CIE76, nil
	}
	return "", fmt.Errorf("unknown metric %q (use cie76 or ciede2000)", s)
}

// Distance returns the difference between a and b using m. Unknown metrics
// fall back to CIEDE2000.
func Distance(a, b colormodel.Color, m Metric) float64 {
	return LabDistance(a.LAB, b.LAB, m)
}

// LabDistance is Distance over bare LAB values.
func LabDistance(x, y colormodel.LAB, m Metric) float64 {
	if m == CIE76 {
		return DeltaE76(x, y)
	}
	return DeltaE2000(x, y)
}

// DeltaE76 is the Euclidean distance in LAB space.
func DeltaE76(x, y colormodel.LAB) float64 {
	dl := x.L - y.L
	da := x.A - y.A
	db := x.B - y.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// DeltaE2000 implements the CIEDE2000 color difference with unit weighting
// factors (kL = kC = kH = 1).
func DeltaE2000(x, y colormodel.LAB) float64 {
	const pow25to7 = 6103515625.0 // 25^7

	c1 := math.Hypot(x.A, x.B)
	c2 := math.Hypot(y.A, y.B)
	cBar7 := math.Pow((c1+c2)/2, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25to7)))

	a1 := (1 + g) * x.A
	a2 := (1 + g) * y.A
	c1p := math.Hypot(a1, x.B)
	c2p := math.Hypot(a2, y.B)
	h1p := hueAngle(a1, x.B)
	h2p := hueAngle(a2, y.B)

	dLp := y.L - x.L
	dCp := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(dhp/2))

	lBarP := (x.L + y.L) / 2
	cBarP := (c1p + c2p) / 2

	var hBarP float64
	switch {
	case c1p*c2p == 0:
		hBarP = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hBarP = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hBarP = (h1p + h2p + 360) / 2
	default:
		hBarP = (h1p + h2p - 360) / 2
	}

	t := 1 -
		0.17*math.Cos(radians(hBarP-30)) +
		0.24*math.Cos(radians(2*hBarP)) +
		0.32*math.Cos(radians(3*hBarP+6)) -
		0.20*math.Cos(radians(4*hBarP-63))

	dTheta := 30 * math.Exp(-math.Pow((hBarP-275)/25, 2))
	cBarP7 := math.Pow(cBarP, 7)
	rc := 2 * math.Sqrt(cBarP7/(cBarP7+pow25to7))
	lBar50 := (lBarP - 50) * (lBarP - 50)
	sl := 1 + 0.015*lBar50/math.Sqrt(20+lBar50)
	sc := 1 + 0.045*cBarP
	sh := 1 + 0.015*cBarP*t
	rt := -math.Sin(radians(2*dTheta)) * rc

	fl := dLp / sl
	fc := dCp / sc
	fh := dHp / sh
	return math.Sqrt(fl*fl + fc*fc + fh*fh + rt*fc*fh)
}

// hueAngle returns atan2(b, a) in degrees within [0, 360).
func hueAngle(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

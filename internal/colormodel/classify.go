package colormodel

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// Thresholds for telling chromatic colors apart from near-black, near-white
// and near-gray ones.
const (
	NearBlackLightness  = 30 // L below this reads as black
	NearWhiteLightness  = 70 // L above this with low S reads as white
	NearWhiteSaturation = 20
	NearGraySaturation  = 10 // S below this reads as gray

	blackPigmentLightness  = 15
	blackPigmentSaturation = 5
)

// blackNames are matched against case-folded pigment names.
var blackNames = []string{"black", "чёрный", "черный"}

// IsChromatic reports whether c carries a meaningful hue, i.e. it is not
// near-black, near-white or near-gray.
func IsChromatic(c Color) bool {
	switch {
	case c.HSL.L < NearBlackLightness:
		return false
	case c.HSL.L > NearWhiteLightness && c.HSL.S < NearWhiteSaturation:
		return false
	case c.HSL.S < NearGraySaturation:
		return false
	}
	return true
}

// IsBlackPigment reports whether c should be treated as a black paint.
//
// A color qualifies either by strict HSL thresholds (lightness < 15 and
// saturation < 5) or because its name mentions black in English or Russian.
func IsBlackPigment(c Color) bool {
	if c.HSL.L < blackPigmentLightness && c.HSL.S < blackPigmentSaturation {
		return true
	}
	if c.Name == "" {
		return false
	}
	folded := cases.Fold().String(c.Name)
	for _, n := range blackNames {
		if strings.Contains(folded, n) {
			return true
		}
	}
	return false
}

// HueDistance returns the circular distance between two hues, in 0-180.
func HueDistance(h1, h2 float64) float64 {
	d := math.Mod(math.Abs(h1-h2), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

package analysis

import (
	"math"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

// NeutralSaturation is the saturation below which a color has no temperature.
const NeutralSaturation = 20

// TemperatureKind buckets a color as warm, cool or neutral.
type TemperatureKind string

const (
	Warm    TemperatureKind = "warm"
	Cool    TemperatureKind = "cool"
	Neutral TemperatureKind = "neutral"
)

// Temperature describes the perceived warmth of a color.
//
// Score is continuous: warm colors land in [0.3, 1], cool colors in
// [-1, -0.5] and neutral colors at 0. Pure red scores 1 and cyan -1.
type Temperature struct {
	Kind        TemperatureKind `json:"kind"`
	Score       float64         `json:"score"`
	Explanation string          `json:"explanation"`
}

// ClassifyTemperature places c on the warm/cool axis.
//
// Hues from 270 through 360 and 0 through 90 are warm, the rest cool. Each
// half is normalized separately, which is why the ranges are asymmetric.
func ClassifyTemperature(c colormodel.Color) Temperature {
	h, s := c.HSL.H, c.HSL.S

	if s < NeutralSaturation {
		return Temperature{
			Kind:        Neutral,
			Explanation: "The color is neutral, close to gray. Low saturation leaves it without a clear temperature.",
		}
	}

	if h >= 270 || h <= 90 {
		var score float64
		if h >= 270 {
			score = 0.5 + (h-270)/90*0.5
		} else {
			score = 1 - h/90*0.7
		}
		return Temperature{Kind: Warm, Score: clamp(score, 0.3, 1), Explanation: warmExplanation(h)}
	}

	score := -(1 - math.Abs(h-180)/90*0.5)
	return Temperature{Kind: Cool, Score: clamp(score, -1, -0.5), Explanation: coolExplanation(h)}
}

func warmExplanation(h float64) string {
	switch {
	case h >= 330 || h <= 30:
		return "The color is warm, dominated by red tones."
	case h <= 60:
		return "The color is warm, dominated by orange tones."
	case h <= 90:
		return "The color is warm, dominated by yellow tones."
	default:
		return "The color is warm, dominated by red-violet tones."
	}
}

func coolExplanation(h float64) string {
	switch {
	case h < 150:
		return "The color is cool, dominated by green tones."
	case h < 210:
		return "The color is cool, dominated by blue tones."
	default:
		return "The color is cool, dominated by violet tones."
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

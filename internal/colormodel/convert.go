package colormodel

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var hexPattern = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// HexToRGB parses a 6-digit hex color with an optional leading "#".
//
// Shorthand forms ("#FFF") and alpha ("#RRGGBBAA") are rejected with
// ErrInvalidHex.
func HexToRGB(hex string) (RGB, error) {
	if !hexPattern.MatchString(hex) {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %v", ErrInvalidHex, hex, err)
	}
	return RGB{R: int(v >> 16 & 0xFF), G: int(v >> 8 & 0xFF), B: int(v & 0xFF)}, nil
}

// RGBToHex formats rgb as "#RRGGBB". Components are clamped to 0-255.
func RGBToHex(rgb RGB) string {
	rgb = NormalizeRGB(rgb)
	return fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B)
}

// NormalizeHex validates hex and returns it as "#" followed by uppercase digits.
func NormalizeHex(hex string) (string, error) {
	if !hexPattern.MatchString(hex) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	return "#" + strings.ToUpper(strings.TrimPrefix(hex, "#")), nil
}

// ValidateRGB reports ErrInvalidRGB when a component lies outside 0-255.
func ValidateRGB(rgb RGB) error {
	for _, v := range [3]int{rgb.R, rgb.G, rgb.B} {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: (%d,%d,%d)", ErrInvalidRGB, rgb.R, rgb.G, rgb.B)
		}
	}
	return nil
}

// ValidateHSL reports ErrInvalidHSL for NaN or out-of-range values.
// Hue 360 is accepted as an alias of 0.
func ValidateHSL(hsl HSL) error {
	bad := math.IsNaN(hsl.H) || math.IsNaN(hsl.S) || math.IsNaN(hsl.L) ||
		hsl.H < 0 || hsl.H > 360 ||
		hsl.S < 0 || hsl.S > 100 ||
		hsl.L < 0 || hsl.L > 100
	if bad {
		return fmt.Errorf("%w: (%g,%g,%g)", ErrInvalidHSL, hsl.H, hsl.S, hsl.L)
	}
	return nil
}

// NormalizeRGB clamps every component into 0-255.
func NormalizeRGB(rgb RGB) RGB {
	return RGB{R: clampInt(rgb.R, 0, 255), G: clampInt(rgb.G, 0, 255), B: clampInt(rgb.B, 0, 255)}
}

// Parse accepts "#RRGGBB", "RRGGBB", "rgb(r, g, b)" or "r, g, b".
// RGB strings are clamped into range; hex strings must be exact.
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if hexPattern.MatchString(s) {
		return HexToRGB(s)
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(lower, ")") {
		s = s[4 : len(s)-1]
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidRGB, s)
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidRGB, s)
		}
		vals[i] = v
	}
	return NormalizeRGB(RGB{R: vals[0], G: vals[1], B: vals[2]}), nil
}

// RGBToHSL converts 8-bit RGB to HSL using the standard cylindrical transform.
//
// Returns HSL with:
//   - H: 0-360 (degrees on color wheel, 360 wraps to 0)
//   - S: 0-100 (percentage)
//   - L: 0-100 (percentage)
func RGBToHSL(rgb RGB) HSL {
	h, s, l := toColorful(rgb).Hsl()
	h = round2(h)
	if h >= 360 {
		h -= 360
	}
	return HSL{H: h, S: round2(s * 100), L: round2(l * 100)}
}

// HSLToRGB converts HSL back to 8-bit RGB with round-half-up per channel.
func HSLToRGB(hsl HSL) RGB {
	return fromColorful(colorful.Hsl(math.Mod(hsl.H, 360), hsl.S/100, hsl.L/100))
}

// RGBToLab converts sRGB to CIELAB through linear RGB and XYZ (D65).
// L is clamped to 0-100, a and b to -128..127.
func RGBToLab(rgb RGB) LAB {
	l, a, b := toColorful(rgb).Lab()
	return LAB{
		L: clampFloat(l*100, 0, 100),
		A: clampFloat(a*100, -128, 127),
		B: clampFloat(b*100, -128, 127),
	}
}

// LabToRGB is the inverse of RGBToLab. Out-of-gamut results are clamped to the
// sRGB cube before gamma re-encoding is rounded to 0-255.
func LabToRGB(lab LAB) RGB {
	return fromColorful(colorful.Lab(lab.L/100, lab.A/100, lab.B/100).Clamped())
}

// RGBToCMYK extracts the key (black) channel and scales the remaining inks.
// Pure black short-circuits to K=100 to avoid dividing by zero.
func RGBToCMYK(rgb RGB) CMYK {
	r := float64(rgb.R) / 255
	g := float64(rgb.G) / 255
	b := float64(rgb.B) / 255

	k := 1 - math.Max(r, math.Max(g, b))
	if k >= 1 {
		return CMYK{K: 100}
	}
	return CMYK{
		C: (1 - r - k) / (1 - k) * 100,
		M: (1 - g - k) / (1 - k) * 100,
		Y: (1 - b - k) / (1 - k) * 100,
		K: k * 100,
	}
}

// CMYKToRGB converts ink percentages back to 8-bit RGB, rounding and clamping
// each channel.
func CMYKToRGB(cmyk CMYK) RGB {
	k := cmyk.K / 100
	channel := func(ink float64) int {
		return clampInt(int(math.Round(255*(1-ink/100)*(1-k))), 0, 255)
	}
	return RGB{R: channel(cmyk.C), G: channel(cmyk.M), B: channel(cmyk.Y)}
}

// CMYK returns the subtractive form of the color.
func (c Color) CMYK() CMYK {
	return RGBToCMYK(c.RGB)
}

func toColorful(rgb RGB) colorful.Color {
	return colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: int(r), G: int(g), B: int(b)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

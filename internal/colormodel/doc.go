// Package colormodel defines the Color value shared by every part of the pigment
// engine and the conversions between its representations.
//
// A Color is built once from a canonical 8-bit RGB triple. Its HSL, HEX and
// CIELAB forms are derived eagerly at construction time and never recomputed,
// so a Color can be copied and shared freely.
//
// # Representations
//
//   - RGB: integer components 0-255
//   - HSL: Hue 0-360 (exclusive), Saturation 0-100, Lightness 0-100
//   - HEX: "#RRGGBB", uppercase
//   - LAB: CIELAB relative to D65 (L 0-100, a and b clamped to -128..127)
//   - CMYK: percentages 0-100, computed on demand for subtractive mixing
//
// sRGB decoding, the XYZ matrix and the D65 white point (0.95047, 1.0, 1.08883)
// come from github.com/lucasb-eyer/go-colorful.
//
// # Errors
//
// Malformed input is rejected before any Color is built. Callers classify the
// failure with errors.Is against ErrInvalidHex, ErrInvalidRGB or ErrInvalidHSL.
package colormodel

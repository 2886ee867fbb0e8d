package colormodel

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validation failures. Wrapped errors carry the offending input.
var (
	ErrInvalidHex = errors.New("invalid hex color")
	ErrInvalidRGB = errors.New("invalid rgb color")
	ErrInvalidHSL = errors.New("invalid hsl color")
)

// RGB represents an RGB color with 8-bit components stored as ints (0-255).
type RGB struct {
	R int `json:"r"` // Red component (0-255)
	G int `json:"g"` // Green component (0-255)
	B int `json:"b"` // Blue component (0-255)
}

// HSL represents a color in HSL (Hue, Saturation, Lightness) color space.
//
// Values are kept at two decimal places so that converting back to RGB lands
// on the original channels.
type HSL struct {
	H float64 `json:"h"` // Hue: 0-360 degrees, 360 excluded (0=red, 120=green, 240=blue)
	S float64 `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L float64 `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// LAB is a CIELAB color relative to the D65 white point.
type LAB struct {
	L float64 `json:"l"` // Lightness 0-100
	A float64 `json:"a"` // green(-) to red(+), clamped to -128..127
	B float64 `json:"b"` // blue(-) to yellow(+), clamped to -128..127
}

// CMYK holds subtractive ink coverage as percentages (0-100).
type CMYK struct {
	C float64 `json:"c"`
	M float64 `json:"m"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Color is an immutable color value with all representations precomputed.
//
// Build one with FromHex, FromRGB or FromHSL. The LAB field is the cached
// perceptual form used by every distance computation; it is filled once at
// construction.
type Color struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	RGB        RGB    `json:"rgb"`
	HSL        HSL    `json:"hsl"`
	Hex        string `json:"hex"`
	LAB        LAB    `json:"lab"`
	Population int    `json:"population,omitempty"`
}

// Option customizes a Color under construction.
type Option func(*Color)

// WithID sets a caller-chosen id. Persisted colors keep their id this way.
func WithID(id string) Option {
	return func(c *Color) {
		if id != "" {
			c.ID = id
		}
	}
}

// WithName attaches a display name such as "Cadmium Red".
func WithName(name string) Option {
	return func(c *Color) { c.Name = name }
}

// WithPopulation records how many image pixels a color stands for.
func WithPopulation(n int) Option {
	return func(c *Color) { c.Population = n }
}

// NewID returns a fresh color id.
func NewID() string {
	return "color-" + uuid.NewString()
}

// FromRGB validates rgb and builds a fully populated Color.
func FromRGB(rgb RGB, opts ...Option) (Color, error) {
	if err := ValidateRGB(rgb); err != nil {
		return Color{}, err
	}
	return build(rgb, opts...), nil
}

// FromHex parses "#RRGGBB" or "RRGGBB" and builds a Color.
func FromHex(hex string, opts ...Option) (Color, error) {
	rgb, err := HexToRGB(hex)
	if err != nil {
		return Color{}, err
	}
	return build(rgb, opts...), nil
}

// FromHSL validates hsl, converts it to RGB and builds a Color. The stored HSL
// is re-derived from the resulting RGB so all representations agree.
func FromHSL(hsl HSL, opts ...Option) (Color, error) {
	if err := ValidateHSL(hsl); err != nil {
		return Color{}, err
	}
	return build(HSLToRGB(hsl), opts...), nil
}

// MustHex is FromHex for literals known to be valid. It panics otherwise.
func MustHex(hex string, opts ...Option) Color {
	c, err := FromHex(hex, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func build(rgb RGB, opts ...Option) Color {
	c := Color{
		RGB: rgb,
		HSL: RGBToHSL(rgb),
		Hex: RGBToHex(rgb),
		LAB: RGBToLab(rgb),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.ID == "" {
		c.ID = NewID()
	}
	return c
}

// String returns the name when present, otherwise the hex code.
func (c Color) String() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Hex
}

// UnmarshalJSON rebuilds the derived representations from the stored hex (or
// RGB when hex is absent) so that decoded colors are always consistent. The id
// is kept as stored.
func (c *Color) UnmarshalJSON(data []byte) error {
	type stored Color
	var s stored
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	opts := []Option{WithID(s.ID), WithName(s.Name), WithPopulation(s.Population)}
	var (
		built Color
		err   error
	)
	if s.Hex != "" {
		built, err = FromHex(s.Hex, opts...)
	} else {
		built, err = FromRGB(s.RGB, opts...)
	}
	if err != nil {
		return fmt.Errorf("decode color %q: %w", s.ID, err)
	}
	*c = built
	return nil
}

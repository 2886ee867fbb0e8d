// Package palette models the set of pigments a user owns.
//
// A Palette is a plain value: every method that changes it returns a new
// Palette and leaves the receiver untouched, so a palette handed to the
// optimizer can never be modified underneath it.
package palette

import (
	"fmt"
	"math"
	"slices"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

const (
	// MinColors is the smallest palette the optimizer accepts.
	MinColors = 2
	// DuplicateThreshold is the Euclidean RGB distance below which two
	// palette colors are reported as near-duplicates.
	DuplicateThreshold = 5.0
)

// Palette is an ordered list of pigment colors with unique ids.
type Palette struct {
	Colors []colormodel.Color `json:"colors"`
}

// New returns a palette over a copy of colors.
func New(colors ...colormodel.Color) Palette {
	return Palette{Colors: slices.Clone(colors)}
}

// Default returns the starter palette: three primaries, magenta for violets,
// and white and black for tinting and shading.
func Default() Palette {
	return New(
		colormodel.MustHex("#FF0000", colormodel.WithID("red-1"), colormodel.WithName("Red")),
		colormodel.MustHex("#0000FF", colormodel.WithID("blue-1"), colormodel.WithName("Blue")),
		colormodel.MustHex("#FFFF00", colormodel.WithID("yellow-1"), colormodel.WithName("Yellow")),
		colormodel.MustHex("#FF00FF", colormodel.WithID("magenta-1"), colormodel.WithName("Magenta")),
		colormodel.MustHex("#FFFFFF", colormodel.WithID("white-1"), colormodel.WithName("White")),
		colormodel.MustHex("#000000", colormodel.WithID("black-1"), colormodel.WithName("Black")),
	)
}

// Len returns the number of colors.
func (p Palette) Len() int { return len(p.Colors) }

// ColorByID implements recipe.ColorLookup.
func (p Palette) ColorByID(id string) (colormodel.Color, bool) {
	i := slices.IndexFunc(p.Colors, func(c colormodel.Color) bool { return c.ID == id })
	if i < 0 {
		return colormodel.Color{}, false
	}
	return p.Colors[i], true
}

// Add returns a palette with c appended. Adding an id that is already present
// is an error.
func (p Palette) Add(c colormodel.Color) (Palette, error) {
	if _, ok := p.ColorByID(c.ID); ok {
		return p, fmt.Errorf("color id %q already in palette", c.ID)
	}
	return Palette{Colors: append(slices.Clone(p.Colors), c)}, nil
}

// Remove returns a palette without the color id. The boolean reports whether
// the id was present.
func (p Palette) Remove(id string) (Palette, bool) {
	i := slices.IndexFunc(p.Colors, func(c colormodel.Color) bool { return c.ID == id })
	if i < 0 {
		return p, false
	}
	return Palette{Colors: slices.Delete(slices.Clone(p.Colors), i, i+1)}, true
}

// Duplicate is a pair of palette colors that are nearly identical.
type Duplicate struct {
	First    colormodel.Color `json:"first"`
	Second   colormodel.Color `json:"second"`
	Distance float64          `json:"distance"`
}

// ValidationResult collects blocking errors and advisory warnings.
type ValidationResult struct {
	IsValid    bool        `json:"isValid"`
	Errors     []string    `json:"errors"`
	Warnings   []string    `json:"warnings"`
	Duplicates []Duplicate `json:"duplicates,omitempty"`
}

// Validate checks the palette size and looks for near-duplicate colors.
// Only the size check makes a palette invalid; duplicates are warnings.
func (p Palette) Validate() ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	if len(p.Colors) < MinColors {
		res.Errors = append(res.Errors, fmt.Sprintf("palette needs at least %d colors, has %d", MinColors, len(p.Colors)))
	}

	for i := 0; i < len(p.Colors); i++ {
		for j := i + 1; j < len(p.Colors); j++ {
			a, b := p.Colors[i], p.Colors[j]
			d := rgbDistance(a.RGB, b.RGB)
			if d < DuplicateThreshold {
				res.Duplicates = append(res.Duplicates, Duplicate{First: a, Second: b, Distance: d})
				res.Warnings = append(res.Warnings, fmt.Sprintf("similar colors: %s and %s (distance %.1f)", a, b, d))
			}
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

func rgbDistance(a, b colormodel.RGB) float64 {
	dr := float64(a.R - b.R)
	dg := float64(a.G - b.G)
	db := float64(a.B - b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

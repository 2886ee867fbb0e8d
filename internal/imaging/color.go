package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

// Sample is a color read from an image.
type Sample struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Radius int `json:"radius"`

	// Alpha is the mean 8-bit alpha of the sampled pixels.
	Alpha uint8 `json:"alpha"`

	// Pixels is the number of pixels averaged.
	Pixels int `json:"pixels"`

	Color colormodel.Color `json:"color"`
}

// SampleColor reads the color at (x, y).
//
// With radius > 0 it averages the square of side 2*radius+1 centred on the
// point, clipped to the image, which steadies a target picked from a noisy
// photo. Channels are averaged in non-premultiplied 8-bit space; fully
// transparent pixels do not contribute unless every pixel is transparent.
func SampleColor(img image.Image, x, y, radius int) (*Sample, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	if radius < 0 {
		return nil, fmt.Errorf("radius must be non-negative, got %d", radius)
	}

	area := image.Rect(x-radius, y-radius, x+radius+1, y+radius+1).Intersect(bounds)

	var sumR, sumG, sumB, sumA float64
	var opaque, total int
	var rawR, rawG, rawB float64
	for py := area.Min.Y; py < area.Max.Y; py++ {
		for px := area.Min.X; px < area.Max.X; px++ {
			r, g, b, a := img.At(px, py).RGBA()
			total++
			sumA += float64(a >> 8)
			rawR += float64(r >> 8)
			rawG += float64(g >> 8)
			rawB += float64(b >> 8)
			if a == 0 {
				continue
			}
			opaque++
			// RGBA() is premultiplied; undo it to get the painted color.
			sumR += float64(r) * 0xFF / float64(a)
			sumG += float64(g) * 0xFF / float64(a)
			sumB += float64(b) * 0xFF / float64(a)
		}
	}

	n := float64(opaque)
	if opaque == 0 {
		sumR, sumG, sumB, n = rawR, rawG, rawB, float64(total)
	}
	rgb := colormodel.RGB{
		R: int(math.Round(sumR / n)),
		G: int(math.Round(sumG / n)),
		B: int(math.Round(sumB / n)),
	}
	c, err := colormodel.FromRGB(colormodel.NormalizeRGB(rgb))
	if err != nil {
		return nil, err
	}

	return &Sample{
		X:      x,
		Y:      y,
		Radius: radius,
		Alpha:  uint8(math.Round(sumA / float64(total))),
		Pixels: total,
		Color:  c,
	}, nil
}

package imaging

import (
	"errors"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

const (
	// DefaultMaxDimension is the long-side limit applied before extraction.
	DefaultMaxDimension = 150

	// MinOpaqueAlpha is the alpha below which a pixel is skipped.
	MinOpaqueAlpha = 128
)

// ErrNoOpaquePixels is returned when every pixel of the processed image is
// transparent.
var ErrNoOpaquePixels = errors.New("image has no opaque pixels")

// PixelOptions controls ExtractPixels.
type PixelOptions struct {
	// MaxDimension bounds the long side after downscaling. 0 means
	// DefaultMaxDimension; a negative value disables downscaling.
	MaxDimension int `json:"max_dimension"`

	// BlurRadius applies a Gaussian blur before reading pixels, which
	// suppresses sensor noise and JPEG artifacts. 0 disables it.
	BlurRadius float64 `json:"blur_radius"`

	// Region restricts extraction to part of the original image.
	Region *Region `json:"region,omitempty"`
}

// DefaultPixelOptions downscales to 150 pixels without blurring.
func DefaultPixelOptions() PixelOptions {
	return PixelOptions{MaxDimension: DefaultMaxDimension}
}

// PixelSet is the result of ExtractPixels.
type PixelSet struct {
	Pixels []colormodel.RGB `json:"-"`

	// Width and Height are the dimensions after cropping and downscaling.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Skipped counts pixels dropped for transparency.
	Skipped int `json:"skipped"`
}

// ExtractPixels crops, downscales and optionally blurs img, then returns its
// opaque pixels in row-major order.
//
// Semi-transparent pixels at or above MinOpaqueAlpha are un-premultiplied, so
// they report their own color rather than a blend with black.
func ExtractPixels(img image.Image, opts PixelOptions) (*PixelSet, error) {
	src := img
	if opts.Region != nil {
		cropped, err := Crop(src, *opts.Region)
		if err != nil {
			return nil, err
		}
		src = cropped
	}

	maxDim := opts.MaxDimension
	if maxDim == 0 {
		maxDim = DefaultMaxDimension
	}
	if maxDim > 0 {
		src = imaging.Fit(src, maxDim, maxDim, imaging.Box)
	}

	var rgba *image.RGBA
	if opts.BlurRadius > 0 {
		rgba = blur.Gaussian(src, opts.BlurRadius)
	} else {
		rgba = clone.AsRGBA(src)
	}

	b := rgba.Bounds()
	set := &PixelSet{
		Pixels: make([]colormodel.RGB, 0, b.Dx()*b.Dy()),
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := rgba.Pix[(y-b.Min.Y)*rgba.Stride:]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+4]
			a := int(p[3])
			if a < MinOpaqueAlpha {
				set.Skipped++
				continue
			}
			set.Pixels = append(set.Pixels, colormodel.RGB{
				R: unpremultiply(p[0], a),
				G: unpremultiply(p[1], a),
				B: unpremultiply(p[2], a),
			})
		}
	}

	if len(set.Pixels) == 0 {
		return nil, ErrNoOpaquePixels
	}
	return set, nil
}

func unpremultiply(v uint8, a int) int {
	if a == 255 {
		return int(v)
	}
	return min(255, (int(v)*255+a/2)/a)
}

// FitDimensions returns the size of a w x h image scaled down, keeping its
// aspect ratio, so neither side exceeds maxDim. Images that already fit are
// unchanged.
func FitDimensions(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		return maxDim, max(1, int(float64(h)*float64(maxDim)/float64(w)+0.5))
	}
	return max(1, int(float64(w)*float64(maxDim)/float64(h)+0.5)), maxDim
}

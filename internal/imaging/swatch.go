package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
)

// EncodedImage is a PNG ready to embed in a tool response.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Part is one ingredient band of a recipe preview.
type Part struct {
	Color      colormodel.Color
	Proportion float64
}

// RenderRecipe draws a preview of a recipe as a width x height PNG.
//
// The top half shows the target on the left and the mixed result on the
// right. The bottom half is a strip of the ingredients, each band as wide as
// its share of the mix. Bands for ingredients with no positive proportion are
// omitted.
func RenderRecipe(target, result colormodel.Color, parts []Part, width, height int) (*EncodedImage, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("preview must be at least 2x2, got %dx%d", width, height)
	}

	canvas := imaging.New(width, height, color.White)
	half := height / 2

	canvas = imaging.Paste(canvas, imaging.New(width/2, half, toNRGBA(target)), image.Pt(0, 0))
	canvas = imaging.Paste(canvas, imaging.New(width-width/2, half, toNRGBA(result)), image.Pt(width/2, 0))

	var total float64
	for _, p := range parts {
		if p.Proportion > 0 {
			total += p.Proportion
		}
	}
	if total > 0 {
		x := 0
		var acc float64
		for _, p := range parts {
			if p.Proportion <= 0 {
				continue
			}
			acc += p.Proportion
			end := int(acc / total * float64(width))
			if end > x {
				canvas = imaging.Paste(canvas, imaging.New(end-x, height-half, toNRGBA(p.Color)), image.Pt(x, half))
			}
			x = end
		}
	}

	return encodePNG(canvas)
}

// RenderPalette draws one square of side cell per color, left to right.
func RenderPalette(colors []colormodel.Color, cell int) (*EncodedImage, error) {
	if len(colors) == 0 {
		return nil, errors.New("no colors to render")
	}
	if cell < 1 {
		return nil, fmt.Errorf("cell size must be positive, got %d", cell)
	}
	canvas := imaging.New(cell*len(colors), cell, color.White)
	for i, c := range colors {
		canvas = imaging.Paste(canvas, imaging.New(cell, cell, toNRGBA(c)), image.Pt(i*cell, 0))
	}
	return encodePNG(canvas)
}

func encodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func toNRGBA(c colormodel.Color) color.NRGBA {
	rgb := colormodel.NormalizeRGB(c.RGB)
	return color.NRGBA{R: uint8(rgb.R), G: uint8(rgb.G), B: uint8(rgb.B), A: 0xFF}
}

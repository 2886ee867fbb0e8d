package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/imaging"
	"github.com/ironsheep/pigment-mcp/internal/recipe"
	"github.com/ironsheep/pigment-mcp/internal/worker"
)

// Preview sizes.
const (
	defaultPreviewWidth  = 300
	defaultPreviewHeight = 200
	maxPreviewSide       = 2000
	paletteCell          = 40
)

func renderPalette(colors []colormodel.Color) (*imaging.EncodedImage, error) {
	return imaging.RenderPalette(colors, paletteCell)
}

// === Recipe preview ===

type recipePreviewArgs struct {
	ID      string   `json:"id,omitempty"`
	Target  string   `json:"target,omitempty"`
	Palette []string `json:"palette,omitempty"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
}

// PreviewResult is a rendered recipe swatch.
type PreviewResult struct {
	*imaging.EncodedImage
	RecipeID    string `json:"recipe_id,omitempty"`
	TargetHex   string `json:"target_hex"`
	ResultHex   string `json:"result_hex"`
	Description string `json:"description"`
}

func (s *Server) handleRecipePreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a recipePreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Width == 0 {
		a.Width = defaultPreviewWidth
	}
	if a.Height == 0 {
		a.Height = defaultPreviewHeight
	}
	if a.Width > maxPreviewSide || a.Height > maxPreviewSide {
		return nil, fmt.Errorf("preview is limited to %dx%d", maxPreviewSide, maxPreviewSide)
	}

	var (
		r      recipe.Recipe
		lookup recipe.ColorLookup
	)
	switch {
	case a.ID != "":
		if s.store == nil {
			return nil, errNoStore
		}
		saved, err := s.store.Recipe(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		p, err := s.store.Palette(ctx)
		if err != nil {
			return nil, err
		}
		r, lookup = saved, p
	case a.Target != "":
		target, err := parseColor("target", a.Target, colormodel.WithID("target"))
		if err != nil {
			return nil, err
		}
		p, err := s.paletteFrom(ctx, a.Palette)
		if err != nil {
			return nil, err
		}
		res, err := s.findRecipe(target, p, 0, "")
		if err != nil {
			return nil, err
		}
		r, lookup = res.Recipe, p
	default:
		return nil, errors.New("id or target is required")
	}

	// Ingredients whose color left the palette are not drawn.
	parts := make([]imaging.Part, 0, len(r.Ingredients))
	for _, in := range r.Ingredients {
		if c, ok := lookup.ColorByID(in.ColorID); ok {
			parts = append(parts, imaging.Part{Color: c, Proportion: in.Proportion})
		}
	}

	img, err := imaging.RenderRecipe(r.TargetColor, r.ResultColor, parts, a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	return PreviewResult{
		EncodedImage: img,
		RecipeID:     a.ID,
		TargetHex:    r.TargetColor.Hex,
		ResultHex:    r.ResultColor.Hex,
		Description:  recipe.Format(r, lookup, recipe.StyleParts),
	}, nil
}

// === Image handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path           string `json:"path"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Radius         int    `json:"radius"`
	FindRecipe     bool   `json:"find_recipe"`
	MaxIngredients int    `json:"max_ingredients,omitempty"`
}

// SampleResult is a sampled color, with a recipe for it when requested.
type SampleResult struct {
	*imaging.Sample
	Details ColorDetails  `json:"details"`
	Recipe  *RecipeResult `json:"recipe,omitempty"`
}

func (s *Server) handleImageSampleColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	sample, err := imaging.SampleColor(img, a.X, a.Y, a.Radius)
	if err != nil {
		return nil, err
	}
	out := SampleResult{Sample: sample, Details: details(sample.Color)}

	if a.FindRecipe {
		p, err := s.palette(ctx)
		if err != nil {
			return nil, err
		}
		res, err := s.findRecipe(sample.Color, p, a.MaxIngredients, "")
		if err != nil {
			return nil, err
		}
		out.Recipe = &RecipeResult{Result: res, Formatted: formatRecipe(res.Recipe, p)}
	}
	return out, nil
}

type imageExtractArgs struct {
	Path                string          `json:"path"`
	ColorCount          int             `json:"color_count,omitempty"`
	Method              string          `json:"method,omitempty"`
	SimilarityThreshold *float64        `json:"similarity_threshold,omitempty"`
	AchromaticThreshold *float64        `json:"achromatic_threshold,omitempty"`
	NamedRegion         string          `json:"named_region,omitempty"`
	Region              *imaging.Region `json:"region,omitempty"`
	BlurRadius          *float64        `json:"blur_radius,omitempty"`
	MaxDimension        int             `json:"max_dimension,omitempty"`
	Preview             bool            `json:"preview"`
	AddToPalette        bool            `json:"add_to_palette"`
}

// ExtractResult lists the candidate pigments of an image.
type ExtractResult struct {
	Colors  []string       `json:"colors"`
	Details []ColorDetails `json:"details"`
	// Width and Height are the dimensions actually analyzed.
	Width   int                   `json:"width"`
	Height  int                   `json:"height"`
	Pixels  int                   `json:"pixels"`
	Skipped int                   `json:"skipped"`
	Preview *imaging.EncodedImage `json:"preview,omitempty"`
	Added   []colormodel.Color    `json:"added,omitempty"`
}

// ExtractPigments runs the image pipeline for path: pixel extraction here,
// quantization and clustering in the worker. The MCP tool and the CLI share
// it.
func (s *Server) ExtractPigments(ctx context.Context, path string, count int, method string) (*ExtractResult, error) {
	args, err := json.Marshal(imageExtractArgs{Path: path, ColorCount: count, Method: method})
	if err != nil {
		return nil, err
	}
	return s.extract(ctx, args)
}

func (s *Server) handleImageExtractPigments(ctx context.Context, args json.RawMessage) (interface{}, error) {
	return s.extract(ctx, args)
}

func (s *Server) extract(ctx context.Context, args json.RawMessage) (*ExtractResult, error) {
	var a imageExtractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.analyzer == nil {
		return nil, errors.New("no pigment analyzer configured")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	opts := s.cfg.PixelOptions()
	if a.MaxDimension > 0 {
		opts.MaxDimension = a.MaxDimension
	}
	if a.BlurRadius != nil {
		opts.BlurRadius = *a.BlurRadius
	}
	switch {
	case a.Region != nil:
		opts.Region = a.Region
	case a.NamedRegion != "":
		r, err := imaging.NamedRegion(img.Bounds(), strings.ToLower(a.NamedRegion))
		if err != nil {
			return nil, err
		}
		opts.Region = &r
	}

	set, err := imaging.ExtractPixels(img, opts)
	if err != nil {
		return nil, err
	}

	count := a.ColorCount
	if count <= 0 {
		count = s.cfg.Cluster.ColorCount
	}
	method := a.Method
	if method == "" {
		method = s.cfg.Cluster.SelectionMethod
	}

	resp, err := s.analyzer.Analyze(ctx, worker.Request{
		Pixels:              set.Pixels,
		ColorCount:          count,
		SelectionMethod:     method,
		SimilarityThreshold: a.SimilarityThreshold,
		AchromaticThreshold: a.AchromaticThreshold,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("pigment extraction failed: %s", resp.Error)
	}
	s.logger.Debug("pigments extracted", "path", a.Path, "pixels", len(set.Pixels), "colors", len(resp.Colors))

	out := &ExtractResult{
		Colors:  resp.Colors,
		Details: make([]ColorDetails, 0, len(resp.Colors)),
		Width:   set.Width,
		Height:  set.Height,
		Pixels:  len(set.Pixels),
		Skipped: set.Skipped,
	}
	colors := make([]colormodel.Color, 0, len(resp.Colors))
	for _, hex := range resp.Colors {
		c, err := colormodel.FromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("worker returned %q: %w", hex, err)
		}
		colors = append(colors, c)
		out.Details = append(out.Details, details(c))
	}

	if a.Preview && len(colors) > 0 {
		if out.Preview, err = renderPalette(colors); err != nil {
			return nil, err
		}
	}

	if a.AddToPalette {
		if s.store == nil {
			return nil, errNoStore
		}
		for _, c := range colors {
			stored, err := s.store.AddColor(ctx, c)
			if err != nil {
				return nil, err
			}
			out.Added = append(out.Added, stored)
		}
	}
	return out, nil
}

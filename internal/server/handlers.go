package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ironsheep/pigment-mcp/internal/analysis"
	"github.com/ironsheep/pigment-mcp/internal/colormodel"
	"github.com/ironsheep/pigment-mcp/internal/metric"
	"github.com/ironsheep/pigment-mcp/internal/mixing"
	"github.com/ironsheep/pigment-mcp/internal/optimizer"
	"github.com/ironsheep/pigment-mcp/internal/palette"
	"github.com/ironsheep/pigment-mcp/internal/recipe"
)

// errNoStore is returned by tools that persist data when the server runs
// without a store.
var errNoStore = errors.New("no palette store configured")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "recipe_find", "palette_list").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Info("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Color details
	case "color_convert":
		return s.handleColorConvert(args)
	case "color_distance":
		return s.handleColorDistance(args)
	case "color_mix":
		return s.handleColorMix(ctx, args)

	// Palette
	case "palette_list":
		return s.handlePaletteList(ctx, args)
	case "palette_add_color":
		return s.handlePaletteAddColor(ctx, args)
	case "palette_remove_color":
		return s.handlePaletteRemoveColor(ctx, args)
	case "palette_reset":
		return s.handlePaletteReset(ctx)
	case "palette_validate":
		return s.handlePaletteValidate(ctx)

	// Recipes
	case "recipe_find":
		return s.handleRecipeFind(ctx, args)
	case "recipe_save":
		return s.handleRecipeSave(ctx, args)
	case "recipe_list":
		return s.handleRecipeList(ctx)
	case "recipe_get":
		return s.handleRecipeGet(ctx, args)
	case "recipe_delete":
		return s.handleRecipeDelete(ctx, args)
	case "recipe_preview":
		return s.handleRecipePreview(ctx, args)

	// Images
	case "image_load":
		return s.handleImageLoad(args)
	case "image_sample_color":
		return s.handleImageSampleColor(ctx, args)
	case "image_extract_pigments":
		return s.handleImageExtractPigments(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Absent arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func parseColor(field, s string, opts ...colormodel.Option) (colormodel.Color, error) {
	if strings.TrimSpace(s) == "" {
		return colormodel.Color{}, fmt.Errorf("%s is required", field)
	}
	rgb, err := colormodel.Parse(s)
	if err != nil {
		return colormodel.Color{}, fmt.Errorf("%s: %w", field, err)
	}
	return colormodel.FromRGB(rgb, opts...)
}

// palette returns the stored palette, or the starter palette when the
// server has no store.
func (s *Server) palette(ctx context.Context) (palette.Palette, error) {
	if s.store == nil {
		return palette.Default(), nil
	}
	return s.store.Palette(ctx)
}

// paletteFrom builds an ad-hoc palette from color strings, or falls back to
// the stored palette when none are given.
func (s *Server) paletteFrom(ctx context.Context, colors []string) (palette.Palette, error) {
	if len(colors) == 0 {
		return s.palette(ctx)
	}
	out := make([]colormodel.Color, 0, len(colors))
	for i, str := range colors {
		c, err := parseColor(fmt.Sprintf("palette[%d]", i), str, colormodel.WithID(fmt.Sprintf("p%d", i+1)))
		if err != nil {
			return palette.Palette{}, err
		}
		out = append(out, c)
	}
	return palette.New(out...), nil
}

// === Color detail handlers ===

type colorArgs struct {
	Color string `json:"color"`
}

// ColorDetails is every representation of one color.
type ColorDetails struct {
	Hex          string               `json:"hex"`
	RGB          colormodel.RGB       `json:"rgb"`
	HSL          colormodel.HSL       `json:"hsl"`
	LAB          colormodel.LAB       `json:"lab"`
	CMYK         colormodel.CMYK      `json:"cmyk"`
	Temperature  analysis.Temperature `json:"temperature"`
	IsChromatic  bool                 `json:"isChromatic"`
	BlackPigment bool                 `json:"isBlackPigment"`
}

func details(c colormodel.Color) ColorDetails {
	return ColorDetails{
		Hex:          c.Hex,
		RGB:          c.RGB,
		HSL:          c.HSL,
		LAB:          c.LAB,
		CMYK:         c.CMYK(),
		Temperature:  analysis.ClassifyTemperature(c),
		IsChromatic:  colormodel.IsChromatic(c),
		BlackPigment: colormodel.IsBlackPigment(c),
	}
}

func (s *Server) handleColorConvert(args json.RawMessage) (interface{}, error) {
	var a colorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	c, err := parseColor("color", a.Color)
	if err != nil {
		return nil, err
	}
	return details(c), nil
}

type colorDistanceArgs struct {
	Color1 string `json:"color1"`
	Color2 string `json:"color2"`
}

// DistanceResult compares two colors under both metrics. Interpretation and
// the match flags use CIEDE2000.
type DistanceResult struct {
	Color1         string      `json:"color1"`
	Color2         string      `json:"color2"`
	CIE76          float64     `json:"cie76"`
	CIEDE2000      float64     `json:"ciede2000"`
	Interpretation metric.Band `json:"interpretation"`
	IsExactMatch   bool        `json:"isExactMatch"`
	IsUnreachable  bool        `json:"isUnreachable"`
}

func (s *Server) handleColorDistance(args json.RawMessage) (interface{}, error) {
	var a colorDistanceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	c1, err := parseColor("color1", a.Color1)
	if err != nil {
		return nil, err
	}
	c2, err := parseColor("color2", a.Color2)
	if err != nil {
		return nil, err
	}
	de := metric.DeltaE2000(c1.LAB, c2.LAB)
	return DistanceResult{
		Color1:         c1.Hex,
		Color2:         c2.Hex,
		CIE76:          metric.DeltaE76(c1.LAB, c2.LAB),
		CIEDE2000:      de,
		Interpretation: metric.Interpret(de),
		IsExactMatch:   metric.IsExactMatch(de),
		IsUnreachable:  metric.IsUnreachable(de),
	}, nil
}

type mixIngredientArgs struct {
	ColorID    string  `json:"colorId,omitempty"`
	Color      string  `json:"color,omitempty"`
	Proportion float64 `json:"proportion"`
}

type colorMixArgs struct {
	Ingredients []mixIngredientArgs `json:"ingredients"`
	Sequential  bool                `json:"sequential"`
}

// MixResult is the blend of a list of ingredients.
type MixResult struct {
	Color       ColorDetails        `json:"color"`
	Sequential  bool                `json:"sequential"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Formatted   string              `json:"formatted"`
}

// resolveIngredients maps tool ingredients onto recipe ingredients and a
// lookup covering both palette ids and literal colors.
func resolveIngredients(in []mixIngredientArgs, p palette.Palette) ([]recipe.Ingredient, recipe.ColorLookup, error) {
	if len(in) == 0 {
		return nil, nil, mixing.ErrNoIngredients
	}
	literals := map[string]colormodel.Color{}
	out := make([]recipe.Ingredient, 0, len(in))
	for i, ing := range in {
		id := ing.ColorID
		switch {
		case ing.Color != "":
			c, err := parseColor(fmt.Sprintf("ingredients[%d].color", i), ing.Color, colormodel.WithID(fmt.Sprintf("mix-%d", i+1)))
			if err != nil {
				return nil, nil, err
			}
			literals[c.ID] = c
			id = c.ID
		case id == "":
			return nil, nil, fmt.Errorf("ingredients[%d]: colorId or color is required", i)
		}
		out = append(out, recipe.Ingredient{ColorID: id, Proportion: ing.Proportion})
	}
	lookup := recipe.LookupFunc(func(id string) (colormodel.Color, bool) {
		if c, ok := literals[id]; ok {
			return c, true
		}
		return p.ColorByID(id)
	})
	return out, lookup, nil
}

func (s *Server) handleColorMix(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a colorMixArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := s.palette(ctx)
	if err != nil {
		return nil, err
	}
	ingredients, lookup, err := resolveIngredients(a.Ingredients, p)
	if err != nil {
		return nil, err
	}

	mix := mixing.Simultaneous
	if a.Sequential {
		mix = mixing.Sequential
	}
	rgb, err := mix(ingredients, lookup)
	if err != nil {
		return nil, err
	}
	c, err := colormodel.FromRGB(rgb)
	if err != nil {
		return nil, err
	}
	return MixResult{
		Color:       details(c),
		Sequential:  a.Sequential,
		Ingredients: ingredients,
		Formatted:   recipe.FormatParts(ingredients, lookup),
	}, nil
}

// === Palette handlers ===

type paletteListArgs struct {
	Preview bool `json:"preview"`
}

// PaletteResult lists the palette, optionally with a swatch strip.
type PaletteResult struct {
	Colors  []colormodel.Color `json:"colors"`
	Count   int                `json:"count"`
	Preview interface{}        `json:"preview,omitempty"`
}

func (s *Server) handlePaletteList(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a paletteListArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := s.palette(ctx)
	if err != nil {
		return nil, err
	}
	res := PaletteResult{Colors: p.Colors, Count: p.Len()}
	if a.Preview && p.Len() > 0 {
		img, err := renderPalette(p.Colors)
		if err != nil {
			return nil, err
		}
		res.Preview = img
	}
	return res, nil
}

type paletteAddArgs struct {
	Color string `json:"color"`
	Name  string `json:"name"`
	ID    string `json:"id"`
}

func (s *Server) handlePaletteAddColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var a paletteAddArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	c, err := parseColor("color", a.Color, colormodel.WithID(a.ID), colormodel.WithName(a.Name))
	if err != nil {
		return nil, err
	}
	stored, err := s.store.AddColor(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("palette color added", "id", stored.ID, "hex", stored.Hex)
	return stored, nil
}

type idArgs struct {
	ID string `json:"id"`
}

func (a idArgs) validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("id is required")
	}
	return nil
}

func (s *Server) handlePaletteRemoveColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if err := s.store.RemoveColor(ctx, a.ID); err != nil {
		return nil, err
	}
	p, err := s.store.Palette(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"removed": a.ID, "remaining": p.Len()}, nil
}

func (s *Server) handlePaletteReset(ctx context.Context) (interface{}, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	p, err := s.store.ResetPalette(ctx)
	if err != nil {
		return nil, err
	}
	return PaletteResult{Colors: p.Colors, Count: p.Len()}, nil
}

func (s *Server) handlePaletteValidate(ctx context.Context) (interface{}, error) {
	p, err := s.palette(ctx)
	if err != nil {
		return nil, err
	}
	return p.Validate(), nil
}

// === Recipe handlers ===

type recipeFindArgs struct {
	Target         string   `json:"target"`
	Palette        []string `json:"palette,omitempty"`
	MaxIngredients int      `json:"max_ingredients,omitempty"`
	Metric         string   `json:"metric,omitempty"`
	Save           bool     `json:"save"`
	Name           string   `json:"name,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// RecipeResult is an optimizer result with its human-readable forms.
type RecipeResult struct {
	*optimizer.Result
	Formatted   FormattedRecipe `json:"formatted"`
	Saved       bool            `json:"saved"`
	Unreachable bool            `json:"unreachable"`
}

// FormattedRecipe renders a recipe three ways.
type FormattedRecipe struct {
	Parts       string `json:"parts"`
	Percentages string `json:"percentages"`
	Ratio       string `json:"ratio"`
}

func formatRecipe(r recipe.Recipe, lookup recipe.ColorLookup) FormattedRecipe {
	return FormattedRecipe{
		Parts:       recipe.Format(r, lookup, recipe.StyleParts),
		Percentages: recipe.Format(r, lookup, recipe.StylePercentages),
		Ratio:       recipe.Format(r, lookup, recipe.StyleRatio),
	}
}

// findRecipe runs the optimizer with the configured options, overridden by
// the per-call maximum and metric when set.
func (s *Server) findRecipe(target colormodel.Color, p palette.Palette, maxIngredients int, metricName string) (*optimizer.Result, error) {
	opts := s.cfg.OptimizerOptions()
	if maxIngredients > 0 {
		opts.MaxIngredients = lo.Clamp(maxIngredients, 1, optimizer.MaxIngredientsLimit)
	}
	if metricName != "" {
		m, err := metric.ParseMetric(metricName)
		if err != nil {
			return nil, err
		}
		opts.Metric = m
	}
	return optimizer.FindRecipe(target, p, opts)
}

func (s *Server) handleRecipeFind(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a recipeFindArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	target, err := parseColor("target", a.Target, colormodel.WithID("target"))
	if err != nil {
		return nil, err
	}
	p, err := s.paletteFrom(ctx, a.Palette)
	if err != nil {
		return nil, err
	}
	res, err := s.findRecipe(target, p, a.MaxIngredients, a.Metric)
	if err != nil {
		return nil, err
	}
	res.Recipe.Name = a.Name
	res.Recipe.Notes = a.Notes

	out := RecipeResult{
		Result:    res,
		Formatted: formatRecipe(res.Recipe, p),
		Unreachable: lo.ContainsBy(res.Warnings, func(w recipe.Warning) bool {
			return w.Type == recipe.WarningUnreachable
		}),
	}
	if a.Save {
		if s.store == nil {
			return nil, errNoStore
		}
		saved, err := s.store.SaveRecipe(ctx, res.Recipe)
		if err != nil {
			return nil, err
		}
		out.Recipe = saved
		out.Saved = true
	}
	return out, nil
}

type recipeSaveArgs struct {
	ID          string              `json:"id,omitempty"`
	Name        string              `json:"name"`
	Notes       string              `json:"notes"`
	Target      string              `json:"target"`
	Ingredients []mixIngredientArgs `json:"ingredients"`
	Sequential  bool                `json:"sequential"`
}

func (s *Server) handleRecipeSave(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var a recipeSaveArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	// Renaming or annotating an existing recipe needs only its id.
	if a.ID != "" && a.Target == "" && len(a.Ingredients) == 0 {
		r, err := s.store.Recipe(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		r.Name, r.Notes = a.Name, a.Notes
		return s.store.SaveRecipe(ctx, r)
	}

	target, err := parseColor("target", a.Target, colormodel.WithID("target"))
	if err != nil {
		return nil, err
	}
	p, err := s.store.Palette(ctx)
	if err != nil {
		return nil, err
	}
	if lo.ContainsBy(a.Ingredients, func(in mixIngredientArgs) bool { return in.ColorID == "" }) {
		return nil, errors.New("saved recipe ingredients must reference palette colorIds")
	}
	ingredients, lookup, err := resolveIngredients(a.Ingredients, p)
	if err != nil {
		return nil, err
	}
	if ingredients, err = mixing.Normalize(ingredients); err != nil {
		return nil, err
	}
	mix := mixing.Simultaneous
	if a.Sequential {
		mix = mixing.Sequential
	}
	rgb, err := mix(ingredients, lookup)
	if err != nil {
		return nil, err
	}
	result, err := colormodel.FromRGB(rgb)
	if err != nil {
		return nil, err
	}

	r := recipe.New(target, result, ingredients)
	if a.ID != "" {
		r.ID = a.ID
	}
	r.Name, r.Notes = a.Name, a.Notes
	return s.store.SaveRecipe(ctx, r)
}

func (s *Server) handleRecipeList(ctx context.Context) (interface{}, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	recipes, err := s.store.Recipes(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"recipes": recipes, "count": len(recipes)}, nil
}

// SavedRecipe is a stored recipe with its analysis against the current
// palette.
type SavedRecipe struct {
	recipe.Recipe
	Formatted FormattedRecipe        `json:"formatted"`
	Analysis  analysis.ColorAnalysis `json:"analysis"`
	Warnings  []recipe.Warning       `json:"warnings"`
	// Missing lists ingredient ids no longer in the palette.
	Missing []string `json:"missing,omitempty"`
}

func (s *Server) handleRecipeGet(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	r, err := s.store.Recipe(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Palette(ctx)
	if err != nil {
		return nil, err
	}
	an, warnings := analysis.Analyze(r, p)
	return SavedRecipe{
		Recipe:    r,
		Formatted: formatRecipe(r, p),
		Analysis:  an,
		Warnings:  warnings,
		Missing: lo.Filter(r.ColorIDs(), func(id string, _ int) bool {
			_, ok := p.ColorByID(id)
			return !ok
		}),
	}, nil
}

func (s *Server) handleRecipeDelete(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	if err := s.store.DeleteRecipe(ctx, a.ID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted": a.ID}, nil
}

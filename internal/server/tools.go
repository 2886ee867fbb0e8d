package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func schema(props map[string]interface{}, required ...string) map[string]interface{} {
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

const colorFormats = "Color as #RRGGBB, RRGGBB, rgb(r, g, b) or r, g, b"

func ingredientsProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Ingredients to blend. Each names a palette colorId or a literal color.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"colorId":    prop("string", "Id of a palette color"),
				"color":      prop("string", colorFormats),
				"proportion": prop("number", "Share of the mix; proportions are normalized by their total"),
			},
			"required": []string{"proportion"},
		},
	}
}

func paletteOverrideProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": "Optional ad-hoc palette of colors to mix from instead of the stored palette",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Color details
		{
			Name:        "color_convert",
			Description: "Describe a color in hex, RGB, HSL, LAB and CMYK, with its warm/cool/neutral temperature.",
			InputSchema: schema(map[string]interface{}{
				"color": prop("string", colorFormats),
			}, "color"),
		},
		{
			Name:        "color_distance",
			Description: "Perceptual distance between two colors (CIE76 and CIEDE2000) and how different they look.",
			InputSchema: schema(map[string]interface{}{
				"color1": prop("string", colorFormats),
				"color2": prop("string", colorFormats),
			}, "color1", "color2"),
		},
		{
			Name:        "color_mix",
			Description: "Predict the color of a paint mixture using a subtractive (CMYK) model.",
			InputSchema: schema(map[string]interface{}{
				"ingredients": ingredientsProp(),
				"sequential":  prop("boolean", "Add ingredients one at a time in order instead of all at once"),
			}, "ingredients"),
		},

		// Palette
		{
			Name:        "palette_list",
			Description: "List the colors of the stored palette.",
			InputSchema: schema(map[string]interface{}{
				"preview": prop("boolean", "Include a PNG swatch strip as base64"),
			}),
		},
		{
			Name:        "palette_add_color",
			Description: "Add a paint color to the stored palette.",
			InputSchema: schema(map[string]interface{}{
				"color": prop("string", colorFormats),
				"name":  prop("string", "Display name, e.g. Cadmium Red"),
				"id":    prop("string", "Optional id; generated when omitted"),
			}, "color"),
		},
		{
			Name:        "palette_remove_color",
			Description: "Remove a color from the stored palette by id.",
			InputSchema: schema(map[string]interface{}{
				"id": prop("string", "Palette color id"),
			}, "id"),
		},
		{
			Name:        "palette_reset",
			Description: "Replace the stored palette with the starter palette: red, blue, yellow, magenta, white and black.",
			InputSchema: schema(map[string]interface{}{}),
		},
		{
			Name:        "palette_validate",
			Description: "Check that the palette has enough colors and report near-duplicate colors.",
			InputSchema: schema(map[string]interface{}{}),
		},

		// Recipes
		{
			Name:        "recipe_find",
			Description: "Find the mix of up to four palette colors that best approximates a target color, with cleanliness, temperature and reachability analysis.",
			InputSchema: schema(map[string]interface{}{
				"target":          prop("string", colorFormats),
				"palette":         paletteOverrideProp(),
				"max_ingredients": prop("integer", "Largest number of ingredients to try (1-4)"),
				"metric":          map[string]interface{}{"type": "string", "enum": []string{"ciede2000", "cie76"}, "description": "Color difference formula"},
				"save":            prop("boolean", "Store the recipe"),
				"name":            prop("string", "Recipe name when saving"),
				"notes":           prop("string", "Recipe notes when saving"),
			}, "target"),
		},
		{
			Name:        "recipe_save",
			Description: "Save a recipe from a target color and palette ingredients, or rename/annotate a saved recipe by id.",
			InputSchema: schema(map[string]interface{}{
				"id":          prop("string", "Existing recipe id to update"),
				"name":        prop("string", "Recipe name"),
				"notes":       prop("string", "Free-form notes"),
				"target":      prop("string", colorFormats),
				"ingredients": ingredientsProp(),
				"sequential":  prop("boolean", "The ingredients are added one at a time, in order (as reported by recipe_find)"),
			}),
		},
		{
			Name:        "recipe_list",
			Description: "List saved recipes, newest first.",
			InputSchema: schema(map[string]interface{}{}),
		},
		{
			Name:        "recipe_get",
			Description: "Get a saved recipe with its formatted proportions and analysis against the current palette.",
			InputSchema: schema(map[string]interface{}{
				"id": prop("string", "Recipe id"),
			}, "id"),
		},
		{
			Name:        "recipe_delete",
			Description: "Delete a saved recipe.",
			InputSchema: schema(map[string]interface{}{
				"id": prop("string", "Recipe id"),
			}, "id"),
		},
		{
			Name:        "recipe_preview",
			Description: "Render a PNG swatch of a recipe: target and result side by side over bands of the ingredients. Give a saved recipe id or a target to solve.",
			InputSchema: schema(map[string]interface{}{
				"id":      prop("string", "Saved recipe id"),
				"target":  prop("string", colorFormats),
				"palette": paletteOverrideProp(),
				"width":   prop("integer", "Image width in pixels. Default 300"),
				"height":  prop("integer", "Image height in pixels. Default 200"),
			}),
		},

		// Images
		{
			Name:        "image_load",
			Description: "Load an image file (PNG, JPEG, GIF, WebP, BMP) and return its dimensions, format and the size used for pigment extraction.",
			InputSchema: schema(map[string]interface{}{
				"path": prop("string", "Absolute path to the image file"),
			}, "path"),
		},
		{
			Name:        "image_sample_color",
			Description: "Average color around a pixel of an image. Optionally find a palette recipe for it.",
			InputSchema: schema(map[string]interface{}{
				"path":            prop("string", "Absolute path to the image file"),
				"x":               prop("integer", "X coordinate (0-based, from left)"),
				"y":               prop("integer", "Y coordinate (0-based, from top)"),
				"radius":          prop("integer", "Half-size of the square window to average. Default 0 (single pixel)"),
				"find_recipe":     prop("boolean", "Solve the sampled color against the stored palette"),
				"max_ingredients": prop("integer", "Largest number of ingredients when solving"),
			}, "path", "x", "y"),
		},
		{
			Name:        "image_extract_pigments",
			Description: "Extract the candidate pigment colors of an image by K-means quantization and perceptual clustering.",
			InputSchema: schema(map[string]interface{}{
				"path":                 prop("string", "Absolute path to the image file"),
				"color_count":          prop("integer", "Number of K-means clusters. Default 12"),
				"method":               map[string]interface{}{"type": "string", "enum": []string{"representative", "dominant"}, "description": "Keep the extremes of each color group, or only its most common color"},
				"similarity_threshold": prop("number", "CIEDE2000 distance below which colors are grouped. Default 20"),
				"achromatic_threshold": prop("number", "Saturation below which colors sort with the grays. Default 10"),
				"named_region": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"full", "top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
					"description": "Analyze only part of the image",
				},
				"region": map[string]interface{}{
					"type":        "object",
					"description": "Explicit region; (x1,y1) inclusive, (x2,y2) exclusive",
					"properties": map[string]interface{}{
						"x1": prop("integer", "Left edge"),
						"y1": prop("integer", "Top edge"),
						"x2": prop("integer", "Right edge"),
						"y2": prop("integer", "Bottom edge"),
					},
					"required": []string{"x1", "y1", "x2", "y2"},
				},
				"blur_radius":    prop("number", "Gaussian blur applied before sampling; 0 disables"),
				"max_dimension":  prop("integer", "Long side after downscaling. Default 150"),
				"preview":        prop("boolean", "Include a PNG swatch strip of the result"),
				"add_to_palette": prop("boolean", "Add the extracted colors to the stored palette"),
			}, "path"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

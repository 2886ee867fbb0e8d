// Package server implements the MCP (Model Context Protocol) server for
// pigment mixing.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0, one message per
// line. Supported methods are initialize, notifications/initialized,
// tools/list, tools/call and ping.
//
// # Tools
//
// Color details:
//   - color_convert: hex, RGB, HSL, LAB, CMYK and temperature of a color
//   - color_distance: CIE76 and CIEDE2000 distance with an interpretation
//   - color_mix: blend palette colors or literal colors at given proportions
//
// Palette (persisted):
//   - palette_list, palette_add_color, palette_remove_color
//   - palette_reset: restore the six-color starter palette
//   - palette_validate: size check and near-duplicate warnings
//
// Recipes:
//   - recipe_find: search the palette for the closest mix to a target
//   - recipe_save, recipe_list, recipe_get, recipe_delete
//   - recipe_preview: PNG swatch of target, result and ingredient bands
//
// Images:
//   - image_load: metadata of an image file
//   - image_sample_color: average color around a pixel, optionally solved
//     as a recipe target
//   - image_extract_pigments: candidate pigments of an image via the
//     quantize and cluster worker
//
// # Errors
//
// Malformed tools/call params yield -32602. A tool failure yields -32000
// with the Go error string as data. Unknown methods yield -32601.
package server

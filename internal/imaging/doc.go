// Package imaging loads photographs and turns them into data the color
// pipeline can use.
//
// It covers the steps between a file on disk and a list of pixels: decoding
// (PNG, JPEG, GIF, WebP, BMP), caching, cropping to a region of interest,
// downscaling, optional smoothing, and pixel extraction. It also samples single
// colors for use as mixing targets and renders recipe previews as PNG.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner:
//   - X increases rightward, Y increases downward
//   - For regions, (X1,Y1) is inclusive (top-left), (X2,Y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless and
// never modify the images passed to them.
//
// # Downscaling
//
// Color extraction runs K-means over every pixel, so images are shrunk to at
// most DefaultMaxDimension pixels on their long side first. Small details
// average out, which is usually what a painter wants from a reference photo.
package imaging

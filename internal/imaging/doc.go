// Package imaging turns image files into buffers for attention features.
//
// It sits between decoded images (image.Image) and the attention package,
// which knows nothing about files or color models. The steps are:
//
//  1. Load: decode a PNG, JPEG or GIF file, cached by path (ImageCache)
//  2. Crop: optionally restrict to a rectangular Region
//  3. Downscale: optionally bound the longest side (MaxDimension)
//  4. Convert: extract gray, RGB or CIE L*a*b* channels as float64 values
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. For regions, (x1,y1) is
// inclusive and (x2,y2) is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Converted buffers returned by the
// cache are shared and must be treated as read-only.
package imaging

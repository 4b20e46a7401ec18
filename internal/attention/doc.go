// Package attention computes rule-based visual attention maps for a single image.
//
// An attention map is a 2D grid of per-pixel saliency scores in [0, 1] with the
// same height and width as the source image. Scores come from simple,
// deterministic heuristics rather than a learned model, so every value can be
// explained in terms of the pixels that produced it.
//
// # Features
//
// Four features are provided:
//   - CenterBias: radial falloff from the geometric center of the pixel grid
//   - Contrast: absolute deviation from the global mean intensity
//   - EdgeDensity: central-difference gradient magnitude
//   - CenterSurround: Difference-of-Gaussians band-pass response
//
// Every feature implements RawComputer, which produces an unnormalized map.
// The Compute driver wraps a RawComputer with the shared pipeline:
//
//  1. Validate the input image (axes, buffer length, finiteness)
//  2. Run the raw computation
//  3. Min-max normalize the raw map to [0, 1] (a constant map becomes all zero)
//  4. Validate the output shape against the image's first two axes
//
// # Coordinate System
//
// Images and maps are stored row-major. Map.At(y, x) addresses row y and
// column x; (0, 0) is the top-left pixel. Multi-channel images keep their
// channels on the last axis.
//
// # Thread Safety
//
// Features hold only immutable configuration set at construction time. A single
// feature value may be used from many goroutines at once on different images.
// The driver never writes to the input image.
//
// # Error Handling
//
// Errors wrap one of three sentinels and should be matched with errors.Is:
//   - ErrInvalidInput: the caller passed a malformed image or fusion arguments
//   - ErrInvalidConfiguration: a feature was constructed with bad parameters
//   - ErrContractViolation: a raw computation produced an unusable map (a bug)
package attention

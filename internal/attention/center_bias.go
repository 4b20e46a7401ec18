package attention

import (
	"fmt"
	"math"
)

// CenterBias scores pixels by their closeness to the image center.
//
// The raw score is 1 - d/dmax, where d is the Euclidean distance from the
// center of the pixel-index grid ((h-1)/2, (w-1)/2) and dmax is the largest
// such distance in the image. The center scores highest, the corners lowest.
//
// A 1x1 image has dmax == 0. Its single pixel is the center, and Compute
// returns [[1]] for it rather than the all-zero map the generic normalizer
// produces for constant input.
type CenterBias struct{}

// NewCenterBias returns a CenterBias feature.
func NewCenterBias() CenterBias { return CenterBias{} }

// Name returns "center_bias".
func (CenterBias) Name() string { return NameCenterBias }

// Compute returns the normalized center-bias map for img.
func (f CenterBias) Compute(img *Image) (*Map, error) { return Compute(f, img) }

// RawCompute returns the unnormalized radial falloff. Zero-area images are
// rejected with ErrInvalidInput.
func (CenterBias) RawCompute(img *Image) (*Map, error) {
	h, w := img.H(), img.W()
	if h == 0 || w == 0 {
		return nil, fmt.Errorf("%w: image must have non-zero height and width", ErrInvalidInput)
	}

	cy := float64(h-1) / 2
	cx := float64(w-1) / 2

	dist := NewMap(h, w)
	for y := 0; y < h; y++ {
		dy := float64(y) - cy
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dist.Set(y, x, math.Sqrt(dy*dy+dx*dx))
		}
	}

	maxDist := dist.Max()
	if maxDist == 0 {
		return Filled(h, w, 1), nil
	}
	for i, d := range dist.Data {
		dist.Data[i] = 1 - d/maxDist
	}
	return dist, nil
}

// normalize keeps the all-ones map of a 1x1 image and defers to Normalize
// otherwise.
func (CenterBias) normalize(raw *Map) (*Map, error) {
	if raw != nil && raw.Height == 1 && raw.Width == 1 && len(raw.Data) == 1 {
		return raw.Clone(), nil
	}
	return Normalize(raw)
}

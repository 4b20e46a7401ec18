package attention

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Default sigmas used by NewDefaultCenterSurround.
const (
	DefaultSigmaCenter   = 1.0
	DefaultSigmaSurround = 2.5
)

// CenterSurround computes a Difference-of-Gaussians response.
//
// The grayscale image is blurred twice, once at SigmaCenter and once at
// SigmaSurround, and the raw score is the absolute difference of the two
// blurred fields. This highlights local contrast at scales between the two
// sigmas, much like the center-surround receptive fields of early vision.
//
// Both sigmas are fixed at construction.
type CenterSurround struct {
	sigmaCenter   float64
	sigmaSurround float64
}

// NewCenterSurround returns a CenterSurround feature.
//
// Parameters:
//   - sigmaCenter: standard deviation of the narrow (center) blur. Must be > 0.
//   - sigmaSurround: standard deviation of the wide (surround) blur. Must be
//     > 0 and strictly greater than sigmaCenter.
//
// Returns an error wrapping ErrInvalidConfiguration if either constraint is
// violated.
func NewCenterSurround(sigmaCenter, sigmaSurround float64) (CenterSurround, error) {
	if !(sigmaCenter > 0) || !(sigmaSurround > 0) || math.IsInf(sigmaCenter, 0) || math.IsInf(sigmaSurround, 0) {
		return CenterSurround{}, fmt.Errorf("%w: sigma values must be positive and finite (got %v, %v)",
			ErrInvalidConfiguration, sigmaCenter, sigmaSurround)
	}
	if sigmaSurround <= sigmaCenter {
		return CenterSurround{}, fmt.Errorf("%w: sigma_surround (%v) must be greater than sigma_center (%v)",
			ErrInvalidConfiguration, sigmaSurround, sigmaCenter)
	}
	return CenterSurround{sigmaCenter: sigmaCenter, sigmaSurround: sigmaSurround}, nil
}

// NewDefaultCenterSurround returns a CenterSurround with sigmas 1.0 and 2.5.
func NewDefaultCenterSurround() CenterSurround {
	return CenterSurround{sigmaCenter: DefaultSigmaCenter, sigmaSurround: DefaultSigmaSurround}
}

// SigmaCenter returns the center blur sigma.
func (f CenterSurround) SigmaCenter() float64 { return f.sigmaCenter }

// SigmaSurround returns the surround blur sigma.
func (f CenterSurround) SigmaSurround() float64 { return f.sigmaSurround }

// Name returns "center_surround".
func (CenterSurround) Name() string { return NameCenterSurround }

// Compute returns the normalized center-surround map for img.
func (f CenterSurround) Compute(img *Image) (*Map, error) { return Compute(f, img) }

// RawCompute returns |blur(gray, sigmaCenter) - blur(gray, sigmaSurround)|.
// Images with other than 2 or 3 axes are rejected with ErrInvalidInput.
func (f CenterSurround) RawCompute(img *Image) (*Map, error) {
	if f.sigmaCenter <= 0 || f.sigmaSurround <= f.sigmaCenter {
		// zero value, not built by a constructor
		return nil, fmt.Errorf("%w: center-surround sigmas not set", ErrInvalidConfiguration)
	}

	gray, err := Grayscale(img)
	if err != nil {
		return nil, err
	}

	center := GaussianBlur(gray, f.sigmaCenter)
	surround := GaussianBlur(gray, f.sigmaSurround)
	for i := range center.Data {
		center.Data[i] = math.Abs(center.Data[i] - surround.Data[i])
	}
	return center, nil
}

// GaussianKernel returns a normalized 1D Gaussian kernel for sigma.
//
// The radius is floor(3*sigma), at least 1, and the weights are
// exp(-x²/(2σ²)) for x in [-radius, radius], divided by their sum. If the sum
// underflows (zero or not a number) the kernel falls back to the single
// weight {1}.
func GaussianKernel(sigma float64) []float64 {
	radius := int(3 * sigma)
	if radius < 1 {
		radius = 1
	}

	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
	}

	sum := floats.Sum(kernel)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return []float64{1}
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlur applies a separable Gaussian blur to m and returns a new map.
//
// The same kernel runs along rows and then along columns. Each pass reads
// edge-replicated samples beyond the border, so the output has exactly the
// input's size.
func GaussianBlur(m *Map, sigma float64) *Map {
	kernel := GaussianKernel(sigma)
	radius := len(kernel) / 2
	h, w := m.Height, m.Width

	rows := NewMap(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k, wt := range kernel {
				sum += m.At(y, clamp(x+k-radius, 0, w-1)) * wt
			}
			rows.Set(y, x, sum)
		}
	}

	out := NewMap(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k, wt := range kernel {
				sum += rows.At(clamp(y+k-radius, 0, h-1), x) * wt
			}
			out.Set(y, x, sum)
		}
	}
	return out
}

package fusion

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/attention-mcp/internal/attention"
)

// Fuse combines features into a single attention map using a weighted sum.
//
// Parameters:
//   - features: non-empty, ordered list of features to evaluate.
//   - img: the image every feature is computed on.
//   - weights: one non-negative weight per feature, or nil for equal weights.
//
// Returns:
//   - *attention.Map: the fused map, shape (img.H(), img.W()), values in [0, 1].
//   - error: wraps attention.ErrInvalidInput for an empty feature list, a
//     weight count that differs from the feature count, negative or
//     non-finite weights, or weights that do not sum to a positive value.
//     Errors from the individual features are returned unchanged.
//
// Features are evaluated and accumulated in order; no partial result is
// returned on error.
func Fuse(features []attention.Feature, img *attention.Image, weights []float64) (*attention.Map, error) {
	norm, err := prepare(features, img, weights)
	if err != nil {
		return nil, err
	}

	maps := make([]*attention.Map, len(features))
	for i, f := range features {
		m, err := computeOne(f, img)
		if err != nil {
			return nil, err
		}
		maps[i] = m
	}
	return accumulate(img, maps, norm), nil
}

// FuseConcurrent is Fuse with the features evaluated in parallel.
//
// At most GOMAXPROCS features run at once. The weighted sum is still built in
// feature order, so the result is bit-identical to Fuse. If ctx is cancelled
// before all features have started, the context error is returned.
func FuseConcurrent(ctx context.Context, features []attention.Feature, img *attention.Image, weights []float64) (*attention.Map, error) {
	norm, err := prepare(features, img, weights)
	if err != nil {
		return nil, err
	}

	maps := make([]*attention.Map, len(features))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range features {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := computeOne(f, img)
			if err != nil {
				return err
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return accumulate(img, maps, norm), nil
}

// NormalizeWeights validates weights for n features and rescales them to sum
// to 1. A nil slice means equal weights.
func NormalizeWeights(n int, weights []float64) ([]float64, error) {
	if n == 0 {
		return nil, fmt.Errorf("%w: features must be a non-empty sequence", attention.ErrInvalidInput)
	}

	w := make([]float64, n)
	if weights == nil {
		for i := range w {
			w[i] = 1
		}
	} else {
		if len(weights) != n {
			return nil, fmt.Errorf("%w: weights must match the number of features (got %d weights for %d features)",
				attention.ErrInvalidInput, len(weights), n)
		}
		for i, v := range weights {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: weight %d is not finite", attention.ErrInvalidInput, i)
			}
			if v < 0 {
				return nil, fmt.Errorf("%w: weight %d is negative (%v)", attention.ErrInvalidInput, i, v)
			}
		}
		copy(w, weights)
	}

	total := floats.Sum(w)
	if total <= 0 {
		return nil, fmt.Errorf("%w: weights must sum to a positive value", attention.ErrInvalidInput)
	}
	for i := range w {
		w[i] /= total
	}
	return w, nil
}

func prepare(features []attention.Feature, img *attention.Image, weights []float64) ([]float64, error) {
	norm, err := NormalizeWeights(len(features), weights)
	if err != nil {
		return nil, err
	}
	for i, f := range features {
		if f == nil {
			return nil, fmt.Errorf("%w: feature %d is nil", attention.ErrInvalidInput, i)
		}
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return norm, nil
}

// computeOne runs f and checks that its output fits img.
func computeOne(f attention.Feature, img *attention.Image) (*attention.Map, error) {
	m, err := f.Compute(img)
	if err != nil {
		return nil, fmt.Errorf("feature %s: %w", f.Name(), err)
	}
	if m == nil || m.Height != img.H() || m.Width != img.W() || len(m.Data) != img.H()*img.W() {
		return nil, fmt.Errorf("%w: feature %s returned a map that does not match the image",
			attention.ErrContractViolation, f.Name())
	}
	return m, nil
}

func accumulate(img *attention.Image, maps []*attention.Map, weights []float64) *attention.Map {
	fused := attention.NewMap(img.H(), img.W())
	for i, m := range maps {
		floats.AddScaled(fused.Data, weights[i], m.Data)
	}
	for i, v := range fused.Data {
		fused.Data[i] = math.Min(1, math.Max(0, v))
	}
	return fused
}

package attention

import "fmt"

// RawComputer produces an unnormalized attention map for an image.
//
// Implementations must be deterministic, must not modify img, and must
// return a map whose height and width equal img's first two axes. Values may
// have any finite range; Compute normalizes them.
type RawComputer interface {
	RawCompute(img *Image) (*Map, error)
}

// Feature maps an image to a normalized attention map.
//
// Compute always returns a fresh map of shape (img.H(), img.W()) with values
// in [0, 1], or an error and no map.
type Feature interface {
	Name() string
	Compute(img *Image) (*Map, error)
}

// normalizer is implemented by raw computations that need to override the
// generic min-max step for some geometries.
type normalizer interface {
	normalize(raw *Map) (*Map, error)
}

// Compute runs the shared feature pipeline around rc:
//
//  1. img.Validate()
//  2. rc.RawCompute(img)
//  3. Normalize (min-max to [0, 1], constant maps become all zero)
//  4. Output shape check against img's first two axes
//
// Errors from validation wrap ErrInvalidInput; errors from RawCompute are
// returned as-is; a wrongly shaped or non-finite raw map yields
// ErrContractViolation.
func Compute(rc RawComputer, img *Image) (*Map, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	raw, err := rc.RawCompute(img)
	if err != nil {
		return nil, err
	}

	var out *Map
	if n, ok := rc.(normalizer); ok {
		out, err = n.normalize(raw)
	} else {
		out, err = Normalize(raw)
	}
	if err != nil {
		return nil, err
	}

	if out.Height != img.H() || out.Width != img.W() {
		return nil, fmt.Errorf("%w: attention map must match image height and width: got %dx%d, want %dx%d",
			ErrContractViolation, out.Height, out.Width, img.H(), img.W())
	}
	return out, nil
}

// Define turns a raw computation into a named Feature that runs through the
// Compute pipeline.
func Define(name string, rc RawComputer) Feature {
	return definedFeature{name: name, rc: rc}
}

type definedFeature struct {
	name string
	rc   RawComputer
}

func (f definedFeature) Name() string { return f.name }

func (f definedFeature) Compute(img *Image) (*Map, error) { return Compute(f.rc, img) }

// RawFunc adapts a plain function to the RawComputer interface.
type RawFunc func(img *Image) (*Map, error)

// RawCompute calls f(img).
func (f RawFunc) RawCompute(img *Image) (*Map, error) { return f(img) }

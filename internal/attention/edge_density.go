package attention

import "math"

// EdgeDensity scores pixels by local gradient magnitude.
//
// The grayscale image is padded by one pixel with edge replication, then
//
//	gx = (right - left) / 2
//	gy = (down - up) / 2
//	raw = sqrt(gx² + gy²)
//
// Images narrower or shorter than 2 pixels have no defined gradient and
// produce an all-zero map.
type EdgeDensity struct{}

// NewEdgeDensity returns an EdgeDensity feature.
func NewEdgeDensity() EdgeDensity { return EdgeDensity{} }

// Name returns "edge_density".
func (EdgeDensity) Name() string { return NameEdgeDensity }

// Compute returns the normalized edge-density map for img.
func (f EdgeDensity) Compute(img *Image) (*Map, error) { return Compute(f, img) }

// RawCompute returns the central-difference gradient magnitude.
func (EdgeDensity) RawCompute(img *Image) (*Map, error) {
	gray, err := Grayscale(img)
	if err != nil {
		return nil, err
	}

	h, w := gray.Height, gray.Width
	out := NewMap(h, w)
	if h < 2 || w < 2 {
		return out, nil
	}

	for y := 0; y < h; y++ {
		up := clamp(y-1, 0, h-1)
		down := clamp(y+1, 0, h-1)
		for x := 0; x < w; x++ {
			left := clamp(x-1, 0, w-1)
			right := clamp(x+1, 0, w-1)
			gx := (gray.At(y, right) - gray.At(y, left)) * 0.5
			gy := (gray.At(down, x) - gray.At(up, x)) * 0.5
			out.Set(y, x, math.Sqrt(gx*gx+gy*gy))
		}
	}
	return out, nil
}

// clamp constrains an integer value to the range [min, max].
// Index clamping is equivalent to edge-replicated padding.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

package attention

import (
	"fmt"
	"math"
)

// Image is a decoded pixel buffer handed to features.
//
// Shape lists the axis lengths: (height, width) for single-channel images or
// (height, width, channels) for multi-channel images. Data holds the values
// row-major with the channel axis varying fastest. Features treat an Image as
// read-only.
type Image struct {
	Shape []int
	Data  []float64
}

// NewGray wraps a single-channel height x width buffer.
//
// The data slice is used directly, not copied. Use Validate (or any feature's
// Compute) to check that the buffer length matches the shape.
func NewGray(height, width int, data []float64) *Image {
	return &Image{Shape: []int{height, width}, Data: data}
}

// NewImage wraps a buffer with an arbitrary shape.
//
// Parameters:
//   - shape: axis lengths, e.g. {h, w} or {h, w, c}. The slice is copied.
//   - data: row-major values, channels last. Used directly, not copied.
func NewImage(shape []int, data []float64) *Image {
	s := make([]int, len(shape))
	copy(s, shape)
	return &Image{Shape: s, Data: data}
}

// NDim returns the number of axes.
func (img *Image) NDim() int { return len(img.Shape) }

// H returns the image height (first axis).
func (img *Image) H() int { return img.Shape[0] }

// W returns the image width (second axis).
func (img *Image) W() int { return img.Shape[1] }

// Channels returns the number of values stored per pixel: the product of all
// axes after the first two, or 1 for a 2-axis image.
func (img *Image) Channels() int {
	c := 1
	for _, n := range img.Shape[2:] {
		c *= n
	}
	return c
}

// At returns channel c of the pixel at row y, column x.
func (img *Image) At(y, x, c int) float64 {
	ch := img.Channels()
	return img.Data[(y*img.W()+x)*ch+c]
}

// Validate checks that img is a well-formed numeric buffer with at least two
// axes and only finite values.
//
// Returns an error wrapping ErrInvalidInput when:
//   - img is nil
//   - img has fewer than 2 axes
//   - an axis length is negative
//   - len(Data) differs from the product of Shape
//   - any value is NaN or ±Inf
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: image is nil", ErrInvalidInput)
	}
	if len(img.Shape) < 2 {
		return fmt.Errorf("%w: image must have at least 2 dimensions, got %d", ErrInvalidInput, len(img.Shape))
	}
	size := 1
	for i, n := range img.Shape {
		if n < 0 {
			return fmt.Errorf("%w: axis %d has negative length %d", ErrInvalidInput, i, n)
		}
		size *= n
	}
	if len(img.Data) != size {
		return fmt.Errorf("%w: buffer holds %d values, shape %v needs %d", ErrInvalidInput, len(img.Data), img.Shape, size)
	}
	for i, v := range img.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: image must contain only finite values (index %d is %v)", ErrInvalidInput, i, v)
		}
	}
	return nil
}

// Grayscale reduces img to a single-channel map.
//
// A 2-axis image passes through unchanged (copied). A 3-axis image becomes the
// arithmetic mean over its channel axis, summed in channel order and then
// divided by the channel count. Any other number of axes is rejected with
// ErrInvalidInput.
//
// Contrast, EdgeDensity and CenterSurround share this helper so their
// grayscale values are identical for the same image.
func Grayscale(img *Image) (*Map, error) {
	h, w := img.H(), img.W()
	switch img.NDim() {
	case 2:
		m := NewMap(h, w)
		copy(m.Data, img.Data)
		return m, nil
	case 3:
		c := img.Shape[2]
		if c == 0 {
			// mean over an empty axis is undefined
			return nil, fmt.Errorf("%w: image has zero channels", ErrInvalidInput)
		}
		m := NewMap(h, w)
		for i := range m.Data {
			var sum float64
			for k := 0; k < c; k++ {
				sum += img.Data[i*c+k]
			}
			m.Data[i] = sum / float64(c)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: image must be 2D or 3D (H, W) or (H, W, C), got %d axes", ErrInvalidInput, img.NDim())
	}
}

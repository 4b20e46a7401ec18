package attention

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Contrast scores pixels by how far their intensity lies from the global mean.
//
// Color images are reduced to grayscale with Grayscale first. A uniform image
// normalizes to an all-zero map.
type Contrast struct{}

// NewContrast returns a Contrast feature.
func NewContrast() Contrast { return Contrast{} }

// Name returns "contrast".
func (Contrast) Name() string { return NameContrast }

// Compute returns the normalized contrast map for img.
func (f Contrast) Compute(img *Image) (*Map, error) { return Compute(f, img) }

// RawCompute returns |gray - mean(gray)| per pixel.
func (Contrast) RawCompute(img *Image) (*Map, error) {
	gray, err := Grayscale(img)
	if err != nil {
		return nil, err
	}
	if len(gray.Data) == 0 {
		return gray, nil
	}

	mean := stat.Mean(gray.Data, nil)
	for i, v := range gray.Data {
		gray.Data[i] = math.Abs(v - mean)
	}
	return gray, nil
}

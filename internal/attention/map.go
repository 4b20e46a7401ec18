package attention

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Map is a 2D grid of float64 scores stored row-major.
//
// Features return raw Maps with unconstrained values; Compute returns
// normalized Maps whose values all lie in [0, 1].
type Map struct {
	Height int
	Width  int
	Data   []float64
}

// NewMap allocates a zero-filled height x width map.
func NewMap(height, width int) *Map {
	return &Map{Height: height, Width: width, Data: make([]float64, height*width)}
}

// Filled allocates a height x width map with every cell set to v.
func Filled(height, width int, v float64) *Map {
	m := NewMap(height, width)
	for i := range m.Data {
		m.Data[i] = v
	}
	return m
}

// At returns the value at row y, column x.
func (m *Map) At(y, x int) float64 { return m.Data[y*m.Width+x] }

// Set stores v at row y, column x.
func (m *Map) Set(y, x int, v float64) { m.Data[y*m.Width+x] = v }

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := NewMap(m.Height, m.Width)
	copy(c.Data, m.Data)
	return c
}

// Min returns the smallest value, or 0 for an empty map.
func (m *Map) Min() float64 {
	if len(m.Data) == 0 {
		return 0
	}
	return floats.Min(m.Data)
}

// Max returns the largest value, or 0 for an empty map.
func (m *Map) Max() float64 {
	if len(m.Data) == 0 {
		return 0
	}
	return floats.Max(m.Data)
}

// Normalize rescales a raw map to [0, 1] with min-max normalization.
//
// Given raw values R, the result is clip((R - min) / (max - min), 0, 1). When
// max == min (a constant map, including a single cell) the result is all
// zero. An empty map normalizes to an empty map. The input is not modified.
//
// Returns an error wrapping ErrContractViolation if raw is nil, its buffer
// length disagrees with its dimensions, or it holds NaN or ±Inf values.
func Normalize(raw *Map) (*Map, error) {
	if err := raw.check(); err != nil {
		return nil, err
	}

	out := NewMap(raw.Height, raw.Width)
	if len(raw.Data) == 0 {
		return out, nil
	}

	lo, hi := floats.Min(raw.Data), floats.Max(raw.Data)
	if hi == lo {
		return out, nil
	}
	span := hi - lo
	for i, v := range raw.Data {
		out.Data[i] = clip01((v - lo) / span)
	}
	return out, nil
}

// check verifies that m is usable as a raw attention map.
func (m *Map) check() error {
	if m == nil {
		return fmt.Errorf("%w: attention map is nil", ErrContractViolation)
	}
	if m.Height < 0 || m.Width < 0 || len(m.Data) != m.Height*m.Width {
		return fmt.Errorf("%w: attention map %dx%d holds %d values", ErrContractViolation, m.Height, m.Width, len(m.Data))
	}
	for _, v := range m.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: attention map must contain only finite values", ErrContractViolation)
		}
	}
	return nil
}

// clip01 constrains v to [0, 1].
func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

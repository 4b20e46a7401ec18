package attention

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses an attention map into a few descriptive numbers.
type Summary struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`

	// PeakX and PeakY locate the first (row-major) cell holding Max.
	PeakX int `json:"peak_x"`
	PeakY int `json:"peak_y"`
}

// Summarize returns the summary of m. An empty map summarizes to zeros.
func Summarize(m *Map) Summary {
	s := Summary{Width: m.Width, Height: m.Height}
	if len(m.Data) == 0 {
		return s
	}
	idx := floats.MaxIdx(m.Data)
	s.Min = floats.Min(m.Data)
	s.Max = m.Data[idx]
	s.Mean = stat.Mean(m.Data, nil)
	s.PeakY, s.PeakX = idx/m.Width, idx%m.Width
	return s
}

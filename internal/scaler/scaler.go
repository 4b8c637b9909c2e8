package scaler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrDimension is returned when a vector does not match the fitted width
var ErrDimension = errors.New("feature count does not match scaler")

// MinMax rescales features with bounds fitted on training data.
// Each value is transformed as x*Scale[i] + Min[i].
type MinMax struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`

	// Optional fitted bounds, kept for display
	DataMin []float64 `json:"data_min,omitempty"`
	DataMax []float64 `json:"data_max,omitempty"`
}

// Standard centres features on the training mean and unit variance
type Standard struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadMinMax decodes a JSON min-max scaler
func LoadMinMax(r io.Reader) (*MinMax, error) {
	var s MinMax
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse min-max scaler: %w", err)
	}
	if len(s.Min) == 0 || len(s.Min) != len(s.Scale) {
		return nil, fmt.Errorf("min-max scaler: min has %d values, scale has %d", len(s.Min), len(s.Scale))
	}
	return &s, nil
}

// LoadStandard decodes a JSON standard scaler
func LoadStandard(r io.Reader) (*Standard, error) {
	var s Standard
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse standard scaler: %w", err)
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("standard scaler: mean has %d values, scale has %d", len(s.Mean), len(s.Scale))
	}
	return &s, nil
}

// FitMinMax builds a scaler mapping [dataMin, dataMax] onto [0, 1]
func FitMinMax(dataMin, dataMax []float64) (*MinMax, error) {
	if len(dataMin) != len(dataMax) {
		return nil, ErrDimension
	}
	s := &MinMax{
		Min:     make([]float64, len(dataMin)),
		Scale:   make([]float64, len(dataMin)),
		DataMin: append([]float64(nil), dataMin...),
		DataMax: append([]float64(nil), dataMax...),
	}
	for i := range dataMin {
		span := dataMax[i] - dataMin[i]
		if span == 0 {
			span = 1
		}
		s.Scale[i] = 1 / span
		s.Min[i] = -dataMin[i] * s.Scale[i]
	}
	return s, nil
}

// Dim returns the number of features the scaler was fitted on
func (s *MinMax) Dim() int { return len(s.Scale) }

// Transform returns a scaled copy of x
func (s *MinMax) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Scale) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(x), len(s.Scale))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v*s.Scale[i] + s.Min[i]
	}
	return out, nil
}

// Dim returns the number of features the scaler was fitted on
func (s *Standard) Dim() int { return len(s.Scale) }

// Transform returns a standardized copy of x
func (s *Standard) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Scale) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(x), len(s.Scale))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

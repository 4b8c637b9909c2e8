package scaler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitMinMaxTransform(t *testing.T) {
	s, err := FitMinMax([]float64{0, 5, -10}, []float64{140, 145, 10})
	require.NoError(t, err)

	out, err := s.Transform([]float64{70, 5, 10})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0, 1}, out, 1e-9)
}

func TestMinMaxConstantColumn(t *testing.T) {
	s, err := FitMinMax([]float64{3}, []float64{3})
	require.NoError(t, err)

	out, err := s.Transform([]float64{3})
	require.NoError(t, err)
	assert.InDelta(t, 0, out[0], 1e-9)
}

func TestMinMaxDimensionMismatch(t *testing.T) {
	s := &MinMax{Min: []float64{0, 0}, Scale: []float64{1, 1}}
	_, err := s.Transform([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimension)
}

func TestLoadMinMax(t *testing.T) {
	s, err := LoadMinMax(strings.NewReader(`{"min":[-0.5,0],"scale":[0.1,0.5]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Dim())

	out, err := s.Transform([]float64{5, 2})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1}, out, 1e-9)

	_, err = LoadMinMax(strings.NewReader(`{"min":[1],"scale":[]}`))
	assert.Error(t, err)

	_, err = LoadMinMax(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestStandardTransform(t *testing.T) {
	s, err := LoadStandard(strings.NewReader(`{"mean":[10,0],"scale":[2,0]}`))
	require.NoError(t, err)

	out, err := s.Transform([]float64{14, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 3}, out, 1e-9)
}

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lottosim/internal/model"
)

func TestSpreadIncludesMissingNumbers(t *testing.T) {
	spec := model.RangeSpec{Min: 1, Max: 4, Count: 1}
	s, err := Spread(FrequencyTable{1: 4, 2: 4}, spec)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.0, s.StdDev, 1e-9)
	assert.InDelta(t, 0.0, s.Min, 1e-9)
	assert.InDelta(t, 4.0, s.Max, 1e-9)
}

func TestSpreadEmptyRange(t *testing.T) {
	_, err := Spread(FrequencyTable{}, model.RangeSpec{Min: 2, Max: 1, Count: 1})
	assert.Error(t, err)
}

func TestUniformityTest(t *testing.T) {
	spec := model.RangeSpec{Min: 1, Max: 4, Count: 1}
	even := UniformityTest(FrequencyTable{1: 25, 2: 25, 3: 25, 4: 25}, spec)
	assert.Equal(t, 3, even.DegreesOfFreedom)
	assert.InDelta(t, 0.0, even.ChiSquare, 1e-9)
	assert.InDelta(t, 1.0, even.PValue, 1e-9)

	skewed := UniformityTest(FrequencyTable{1: 100}, spec)
	assert.InDelta(t, 300.0, skewed.ChiSquare, 1e-9)
	assert.Less(t, skewed.PValue, 0.001)

	empty := UniformityTest(FrequencyTable{}, spec)
	assert.Equal(t, 1.0, empty.PValue)
}

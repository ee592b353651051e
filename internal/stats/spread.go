package stats

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/verte-zerg/lottosim/internal/model"
)

// countsOver lists the count of every number in spec, zero for absent ones.
func countsOver(freq FrequencyTable, spec model.RangeSpec) []float64 {
	out := make([]float64, 0, spec.Size())
	for n := spec.Min; n <= spec.Max; n++ {
		out = append(out, float64(freq[n]))
	}
	return out
}

// Spread summarizes the per-number counts of a pool.
func Spread(freq FrequencyTable, spec model.RangeSpec) (model.Spread, error) {
	data := countsOver(freq, spec)
	if len(data) == 0 {
		return model.Spread{}, fmt.Errorf("empty range %d..%d", spec.Min, spec.Max)
	}
	mean, err := mstats.Mean(data)
	if err != nil {
		return model.Spread{}, err
	}
	stdDev, err := mstats.StandardDeviation(data)
	if err != nil {
		return model.Spread{}, err
	}
	minVal, err := mstats.Min(data)
	if err != nil {
		return model.Spread{}, err
	}
	maxVal, err := mstats.Max(data)
	if err != nil {
		return model.Spread{}, err
	}
	return model.Spread{Mean: mean, StdDev: stdDev, Min: minVal, Max: maxVal}, nil
}

// UniformityTest runs a chi-square goodness-of-fit of the pool counts
// against equal expected counts. It is descriptive only.
func UniformityTest(freq FrequencyTable, spec model.RangeSpec) model.Uniformity {
	data := countsOver(freq, spec)
	if len(data) < 2 {
		return model.Uniformity{PValue: 1}
	}
	total, err := mstats.Sum(data)
	if err != nil || total == 0 {
		return model.Uniformity{DegreesOfFreedom: len(data) - 1, PValue: 1}
	}
	expected := total / float64(len(data))
	chi := 0.0
	for _, observed := range data {
		diff := observed - expected
		chi += diff * diff / expected
	}
	dof := len(data) - 1
	dist := distuv.ChiSquared{K: float64(dof)}
	return model.Uniformity{
		ChiSquare:        chi,
		DegreesOfFreedom: dof,
		PValue:           dist.Survival(chi),
	}
}

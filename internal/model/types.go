// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// RangeSpec describes how many unique values to draw from an inclusive range.
type RangeSpec struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

// Size returns the number of distinct values in the range.
func (r RangeSpec) Size() int {
	if r.Max < r.Min {
		return 0
	}
	return r.Max - r.Min + 1
}

// Contains reports whether n lies within the range bounds.
func (r RangeSpec) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// Validate checks that the range can supply Count unique values.
func (r RangeSpec) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("min %d is greater than max %d", r.Min, r.Max)
	}
	if r.Count <= 0 {
		return fmt.Errorf("count must be > 0, got %d", r.Count)
	}
	if r.Count > r.Size() {
		return fmt.Errorf("cannot draw %d unique values from %d..%d", r.Count, r.Min, r.Max)
	}
	return nil
}

// Draw is one simulated trial.
type Draw struct {
	SequenceID  int       `json:"sequenceId"`
	MainNumbers []int     `json:"mainNumbers"`
	BonusNumber int       `json:"bonusNumber"`
	Timestamp   time.Time `json:"timestamp"`
	Checksum    int       `json:"checksum"`
}

// RankedCombination is one derived candidate with its heuristic score.
type RankedCombination struct {
	Rank           string `json:"rank"`
	MainNumbers    []int  `json:"mainNumbers"`
	BonusNumber    int    `json:"bonusNumber"`
	FrequencyScore int    `json:"frequencyScore"`
}

// Spread summarizes how evenly counts are spread over a pool.
type Spread struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Uniformity holds a chi-square goodness-of-fit against a uniform pool.
type Uniformity struct {
	ChiSquare        float64 `json:"chiSquare"`
	DegreesOfFreedom int     `json:"degreesOfFreedom"`
	PValue           float64 `json:"pValue"`
}

// SimulationStatistics is the final output of a completed run.
type SimulationStatistics struct {
	TotalSimulations   int                 `json:"totalSimulations"`
	ProcessingTimeMs   int64               `json:"processingTimeMs"`
	MostFrequentMain   []int               `json:"mostFrequentMain"`
	MostFrequentBonus  int                 `json:"mostFrequentBonus"`
	AverageSum         int                 `json:"averageSum"`
	RankedCombinations []RankedCombination `json:"rankedCombinations"`

	MainFrequency  map[int]int `json:"mainFrequency,omitempty"`
	BonusFrequency map[int]int `json:"bonusFrequency,omitempty"`
	MainSpread     Spread      `json:"mainSpread"`
	Uniformity     Uniformity  `json:"uniformity"`
}

// ProcessingTime returns the elapsed run time as a duration.
func (s SimulationStatistics) ProcessingTime() time.Duration {
	return time.Duration(s.ProcessingTimeMs) * time.Millisecond
}

// ProgressEvent reports the completed share of a run.
type ProgressEvent struct {
	CompletedFraction float64 `json:"completedFraction"`
}

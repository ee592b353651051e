// Package stats contains frequency accumulation, ranking and reporting.
package stats

import "github.com/verte-zerg/lottosim/internal/model"

// FrequencyTable maps a number to its occurrence count.
type FrequencyTable map[int]int

// Total returns the sum of all counts.
func (t FrequencyTable) Total() int {
	total := 0
	for _, c := range t {
		total += c
	}
	return total
}

// Clone returns an independent copy of the table.
func (t FrequencyTable) Clone() FrequencyTable {
	out := make(FrequencyTable, len(t))
	for n, c := range t {
		out[n] = c
	}
	return out
}

// Accumulator folds draws into running frequency tables.
type Accumulator struct {
	Main     FrequencyTable
	Bonus    FrequencyTable
	SumTotal int64
	Trials   int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	a := &Accumulator{}
	a.Reset()
	return a
}

// Reset clears all counts.
func (a *Accumulator) Reset() {
	a.Main = FrequencyTable{}
	a.Bonus = FrequencyTable{}
	a.SumTotal = 0
	a.Trials = 0
}

// Fold adds one draw to the tables. Each draw must be folded exactly once.
func (a *Accumulator) Fold(d model.Draw) {
	sum := 0
	for _, n := range d.MainNumbers {
		a.Main[n]++
		sum += n
	}
	a.Bonus[d.BonusNumber]++
	a.SumTotal += int64(sum)
	a.Trials++
}

// AverageSum returns the mean per-trial main-number sum.
func (a *Accumulator) AverageSum() float64 {
	if a.Trials == 0 {
		return 0
	}
	return float64(a.SumTotal) / float64(a.Trials)
}

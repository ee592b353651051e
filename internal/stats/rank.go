package stats

import (
	"math"
	"sort"

	"github.com/verte-zerg/lottosim/internal/model"
)

const rankedCombinationCount = 3

var (
	rankLabels  = [rankedCombinationCount]string{"1st", "2nd", "3rd"}
	rankWeights = [rankedCombinationCount]float64{1.0, 0.85, 0.70}
)

// Ranking is the result of ranking frequency tables.
type Ranking struct {
	MostFrequentMain   []int
	MostFrequentBonus  int
	BonusOrder         []int
	RankedCombinations []model.RankedCombination
}

// Rank derives the most frequent numbers and three ranked combinations.
// Ties are broken by ascending number.
func Rank(mainFreq, bonusFreq FrequencyTable, totalIterations int, mainSpec, bonusSpec model.RangeSpec) Ranking {
	candidates := make([]int, 0, mainSpec.Size())
	for n := mainSpec.Min; n <= mainSpec.Max; n++ {
		candidates = append(candidates, n)
	}
	ordered := sortByFrequency(candidates, mainFreq)
	k := mainSpec.Count
	if k > len(ordered) {
		k = len(ordered)
	}
	top := append([]int(nil), ordered[:k]...)
	topCount := 0
	if len(top) > 0 {
		topCount = mainFreq[top[0]]
	}
	sort.Ints(top)

	bonusSeen := make([]int, 0, len(bonusFreq))
	for n, c := range bonusFreq {
		if c > 0 {
			bonusSeen = append(bonusSeen, n)
		}
	}
	bonusOrder := sortByFrequency(bonusSeen, bonusFreq)

	mostBonus := bonusSpec.Min
	if len(bonusOrder) > 0 {
		mostBonus = bonusOrder[0]
	}

	return Ranking{
		MostFrequentMain:   top,
		MostFrequentBonus:  mostBonus,
		BonusOrder:         bonusOrder,
		RankedCombinations: rankedCombinations(top, bonusOrder, mostBonus, topCount, totalIterations, bonusSpec),
	}
}

// FrequencyScore converts the top main count into a 0-100 score.
func FrequencyScore(topCount, totalIterations int) int {
	if totalIterations <= 0 || topCount <= 0 {
		return 0
	}
	score := int(math.Round(float64(topCount) / float64(totalIterations) * 100))
	if score > 100 {
		score = 100
	}
	return score
}

func rankedCombinations(mainNumbers, bonusOrder []int, topBonus, topCount, total int, bonusSpec model.RangeSpec) []model.RankedCombination {
	bonuses := pickBonuses(bonusOrder, topBonus, bonusSpec)
	base := FrequencyScore(topCount, total)
	out := make([]model.RankedCombination, 0, rankedCombinationCount)
	for i := 0; i < rankedCombinationCount; i++ {
		out = append(out, model.RankedCombination{
			Rank:           rankLabels[i],
			MainNumbers:    append([]int(nil), mainNumbers...),
			BonusNumber:    bonuses[i],
			FrequencyScore: int(math.Round(float64(base) * rankWeights[i])),
		})
	}
	return out
}

// pickBonuses takes the leading bonus values and fills missing slots by
// stepping up from the top value, wrapping at the range maximum.
func pickBonuses(bonusOrder []int, topBonus int, bonusSpec model.RangeSpec) [rankedCombinationCount]int {
	var out [rankedCombinationCount]int
	used := map[int]bool{}
	filled := 0
	for _, b := range bonusOrder {
		if filled == rankedCombinationCount {
			break
		}
		out[filled] = b
		used[b] = true
		filled++
	}
	next := topBonus
	for filled < rankedCombinationCount {
		next = wrapNext(next, bonusSpec)
		if used[next] && len(used) < bonusSpec.Size() {
			continue
		}
		out[filled] = next
		used[next] = true
		filled++
	}
	return out
}

func wrapNext(n int, spec model.RangeSpec) int {
	if n >= spec.Max || n < spec.Min {
		return spec.Min
	}
	return n + 1
}

func sortByFrequency(numbers []int, freq FrequencyTable) []int {
	out := append([]int(nil), numbers...)
	sort.Slice(out, func(i, j int) bool {
		ci, cj := freq[out[i]], freq[out[j]]
		if ci == cj {
			return out[i] < out[j]
		}
		return ci > cj
	})
	return out
}

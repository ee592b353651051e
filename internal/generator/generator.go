// Package generator produces randomized lottery draws.
package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/lottosim/internal/model"
)

// ErrInvalidRange is returned when a range cannot supply the requested values.
var ErrInvalidRange = errors.New("invalid range")

// Source yields uniformly distributed integers in [min, max].
type Source interface {
	NextInRange(min, max int) int
}

type randSource struct {
	rnd *rand.Rand
}

// NewSource returns a math/rand backed Source. A zero seed uses the current time.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *randSource) NextInRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rnd.Intn(max-min+1)
}

// Generator produces draws from a Source.
type Generator struct {
	src  Source
	seen map[int]struct{}
}

// New returns a Generator reading from src.
func New(src Source) *Generator {
	return &Generator{src: src, seen: map[int]struct{}{}}
}

// Draw produces one trial with sequence id seq.
func (g *Generator) Draw(main, bonus model.RangeSpec, seq int) (model.Draw, error) {
	if err := Validate(main, bonus); err != nil {
		return model.Draw{}, err
	}

	clear(g.seen)
	numbers := make([]int, 0, main.Count)
	sum := 0
	for len(numbers) < main.Count {
		n := g.src.NextInRange(main.Min, main.Max)
		if _, dup := g.seen[n]; dup {
			continue
		}
		g.seen[n] = struct{}{}
		numbers = append(numbers, n)
		sum += n
	}
	sort.Ints(numbers)

	bonusNumber := g.src.NextInRange(bonus.Min, bonus.Max)
	return model.Draw{
		SequenceID:  seq,
		MainNumbers: numbers,
		BonusNumber: bonusNumber,
		Timestamp:   time.Now(),
		Checksum:    sum * bonusNumber,
	}, nil
}

// Validate checks both pools before any sampling happens.
func Validate(main, bonus model.RangeSpec) error {
	if err := main.Validate(); err != nil {
		return fmt.Errorf("main range: %w: %v", ErrInvalidRange, err)
	}
	if err := bonus.Validate(); err != nil {
		return fmt.Errorf("bonus range: %w: %v", ErrInvalidRange, err)
	}
	return nil
}

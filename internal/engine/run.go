package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/verte-zerg/lottosim/internal/generator"
	"github.com/verte-zerg/lottosim/internal/model"
	"github.com/verte-zerg/lottosim/internal/stats"
)

const (
	// TrailingWindowSize is the number of individual draws kept for display.
	TrailingWindowSize = 50

	workerBatch      = 4096
	cooperativeBatch = 1000
)

// Job is one run handed to an execution path.
type Job struct {
	ID         string
	Iterations int
	Main       model.RangeSpec
	Bonus      model.RangeSpec
	Seed       int64
	// NewSource builds the random source for the run; nil uses generator.NewSource.
	NewSource func(seed int64) generator.Source
}

func (j Job) source() generator.Source {
	if j.NewSource != nil {
		return j.NewSource(j.Seed)
	}
	return generator.NewSource(j.Seed)
}

// EmitFunc delivers a message and reports whether delivery succeeded.
type EmitFunc func(model.Message) bool

// Execute runs the trial loop for j. Progress goes through emit; the
// completion message is returned, never emitted. Every batch trials the
// context is checked and yield, when set, is called.
func Execute(ctx context.Context, j Job, batch int, yield func(), emit EmitFunc) (model.Message, error) {
	if batch < 1 {
		batch = 1
	}
	gen := generator.New(j.source())
	acc := stats.NewAccumulator()
	win := newWindow(TrailingWindowSize)
	reporter := stats.NewProgressReporter(j.Iterations)
	started := time.Now()

	for i := 1; i <= j.Iterations; i++ {
		d, err := gen.Draw(j.Main, j.Bonus, i)
		if err != nil {
			return model.Message{}, fmt.Errorf("draw %d: %w", i, err)
		}
		acc.Fold(d)
		win.push(d)

		if ev, ok := reporter.Due(i); ok {
			msg := model.Message{
				Type:              model.MessageProgress,
				RunID:             j.ID,
				CompletedFraction: ev.CompletedFraction,
			}
			if !emit(msg) {
				return model.Message{}, contextErr(ctx)
			}
		}
		if i%batch == 0 {
			if err := ctx.Err(); err != nil {
				return model.Message{}, err
			}
			if yield != nil {
				yield()
			}
		}
	}
	if acc.Trials != j.Iterations {
		return model.Message{}, fmt.Errorf("accumulated %d trials, expected %d", acc.Trials, j.Iterations)
	}

	statistics, err := buildStatistics(acc, j, time.Since(started))
	if err != nil {
		return model.Message{}, err
	}
	return model.Message{
		Type:          model.MessageComplete,
		RunID:         j.ID,
		TrailingDraws: win.snapshot(),
		Statistics:    &statistics,
	}, nil
}

func buildStatistics(acc *stats.Accumulator, j Job, elapsed time.Duration) (model.SimulationStatistics, error) {
	ranking := stats.Rank(acc.Main, acc.Bonus, acc.Trials, j.Main, j.Bonus)
	spread, err := stats.Spread(acc.Main, j.Main)
	if err != nil {
		return model.SimulationStatistics{}, fmt.Errorf("failed to summarize counts: %w", err)
	}
	return model.SimulationStatistics{
		TotalSimulations:   acc.Trials,
		ProcessingTimeMs:   elapsed.Milliseconds(),
		MostFrequentMain:   ranking.MostFrequentMain,
		MostFrequentBonus:  ranking.MostFrequentBonus,
		AverageSum:         int(math.Round(acc.AverageSum())),
		RankedCombinations: ranking.RankedCombinations,
		MainFrequency:      acc.Main.Clone(),
		BonusFrequency:     acc.Bonus.Clone(),
		MainSpread:         spread,
		Uniformity:         stats.UniformityTest(acc.Main, j.Main),
	}, nil
}

func errorMessage(runID string, err error) model.Message {
	execErr := &ExecutionError{RunID: runID, Err: err}
	return model.Message{
		Type:    model.MessageError,
		RunID:   runID,
		Message: execErr.Error(),
		Err:     execErr,
	}
}

func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}

package engine

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lottosim/internal/generator"
	"github.com/verte-zerg/lottosim/internal/model"
)

var (
	mainSpec  = model.RangeSpec{Min: 1, Max: 31, Count: 6}
	bonusSpec = model.RangeSpec{Min: 1, Max: 12, Count: 1}
)

func collect(t *testing.T, ch <-chan model.Message) []model.Message {
	t.Helper()
	var msgs []model.Message
	timeout := time.After(30 * time.Second)
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return msgs
			}
			msgs = append(msgs, m)
		case <-timeout:
			t.Fatalf("timed out waiting for messages, got %d", len(msgs))
		}
	}
}

func requireProtocol(t *testing.T, msgs []model.Message) model.Message {
	t.Helper()
	require.NotEmpty(t, msgs)
	last := 0.0
	for i, m := range msgs[:len(msgs)-1] {
		require.Equal(t, model.MessageProgress, m.Type, "message %d", i)
		require.GreaterOrEqual(t, m.CompletedFraction, last)
		require.LessOrEqual(t, m.CompletedFraction, 1.0)
		last = m.CompletedFraction
	}
	terminal := msgs[len(msgs)-1]
	require.True(t, terminal.IsTerminal(), "last message must be terminal, got %s", terminal.Type)
	return terminal
}

func requireStatistics(t *testing.T, terminal model.Message, iterations int) {
	t.Helper()
	require.Equal(t, model.MessageComplete, terminal.Type, terminal.Message)
	s := terminal.Statistics
	require.NotNil(t, s)
	assert.Equal(t, iterations, s.TotalSimulations)
	require.Len(t, s.MostFrequentMain, 6)
	assert.True(t, sort.IntsAreSorted(s.MostFrequentMain))
	for _, n := range s.MostFrequentMain {
		assert.True(t, mainSpec.Contains(n))
	}
	assert.True(t, bonusSpec.Contains(s.MostFrequentBonus))
	require.Len(t, s.RankedCombinations, 3)
	for i, c := range s.RankedCombinations {
		assert.Equal(t, s.MostFrequentMain, c.MainNumbers)
		if i > 0 {
			assert.GreaterOrEqual(t, s.RankedCombinations[i-1].FrequencyScore, c.FrequencyScore)
		}
	}

	mainTotal, bonusTotal := 0, 0
	for _, c := range s.MainFrequency {
		mainTotal += c
	}
	for _, c := range s.BonusFrequency {
		bonusTotal += c
	}
	assert.Equal(t, 6*iterations, mainTotal)
	assert.Equal(t, iterations, bonusTotal)

	wantWindow := iterations
	if wantWindow > TrailingWindowSize {
		wantWindow = TrailingWindowSize
	}
	require.Len(t, terminal.TrailingDraws, wantWindow)
	assert.Equal(t, iterations, terminal.TrailingDraws[len(terminal.TrailingDraws)-1].SequenceID)
}

func TestStartCompletesScenario(t *testing.T) {
	e := New()
	ch, err := e.Start(context.Background(), model.NewStartMessage(1000, mainSpec, bonusSpec, 0))
	require.NoError(t, err)

	msgs := collect(t, ch)
	terminal := requireProtocol(t, msgs)
	requireStatistics(t, terminal, 1000)
	assert.Len(t, msgs, 11, "ten progress messages and one completion")
	assert.NotEmpty(t, terminal.RunID)
	for _, m := range msgs {
		assert.Equal(t, terminal.RunID, m.RunID)
	}
	assert.Equal(t, StateCompleted, e.State())
}

func TestStartRejectsImpossibleRange(t *testing.T) {
	var calls atomic.Int64
	e := New(WithSourceFactory(func(seed int64) generator.Source {
		calls.Add(1)
		return generator.NewSource(seed)
	}))
	msg := model.NewStartMessage(1000, model.RangeSpec{Min: 1, Max: 5, Count: 6}, bonusSpec, 0)
	ch, err := e.Start(context.Background(), msg)
	require.Error(t, err)
	assert.Nil(t, ch)
	assert.True(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, generator.ErrInvalidRange)
	assert.Zero(t, calls.Load(), "no trial may run")
	assert.Equal(t, StateIdle, e.State())
}

func TestStartRejectsZeroIterations(t *testing.T) {
	e := New()
	_, err := e.Start(context.Background(), model.NewStartMessage(0, mainSpec, bonusSpec, 0))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.ErrorIs(t, err, ErrInvalidIterations)
}

func TestStartRejectsUnknownMessageType(t *testing.T) {
	msg := model.NewStartMessage(10, mainSpec, bonusSpec, 0)
	msg.Type = model.MessageProgress
	_, err := New().Start(context.Background(), msg)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestSeededRunsAreReproducible(t *testing.T) {
	run := func() *model.SimulationStatistics {
		e := New()
		ch, err := e.Start(context.Background(), model.NewStartMessage(500, mainSpec, bonusSpec, 1234))
		require.NoError(t, err)
		terminal := requireProtocol(t, collect(t, ch))
		require.NotNil(t, terminal.Statistics)
		return terminal.Statistics
	}
	a, b := run(), run()
	assert.Equal(t, a.MostFrequentMain, b.MostFrequentMain)
	assert.Equal(t, a.MainFrequency, b.MainFrequency)
	assert.Equal(t, a.RankedCombinations, b.RankedCombinations)
}

type blockingTransport struct {
	release chan struct{}
}

func (t blockingTransport) Launch(ctx context.Context, j Job) (<-chan model.Message, error) {
	out := make(chan model.Message)
	go func() {
		defer close(out)
		select {
		case <-t.release:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func TestStartRejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	e := New(WithTransport(blockingTransport{release: release}))
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := e.Start(ctx, model.NewStartMessage(10, mainSpec, bonusSpec, 0))
	require.NoError(t, err)
	assert.Equal(t, StateRunning, e.State())

	_, err = e.Start(context.Background(), model.NewStartMessage(10, mainSpec, bonusSpec, 0))
	assert.ErrorIs(t, err, ErrBusy)

	cancel()
	close(release)
	collect(t, ch)
	assert.Equal(t, StateCancelled, e.State())

	ch, err = e.Start(context.Background(), model.NewStartMessage(10, mainSpec, bonusSpec, 0))
	require.NoError(t, err, "a new run may start once the previous one ended")
	requireProtocol(t, collect(t, ch))
}

func TestCancelMidRunClosesStream(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := e.Start(ctx, model.NewStartMessage(1_000_000, mainSpec, bonusSpec, 0))
	require.NoError(t, err)

	first, ok := <-ch
	require.True(t, ok)
	cancel()
	rest := collect(t, ch)
	msgs := append([]model.Message{first}, rest...)
	for _, m := range msgs {
		if m.Type == model.MessageError {
			t.Fatalf("cancellation must not produce an error message: %s", m.Message)
		}
	}
	assert.Contains(t, []State{StateCancelled, StateCompleted}, e.State())
}

type failingTransport struct{}

func (failingTransport) Launch(context.Context, Job) (<-chan model.Message, error) {
	return nil, ErrTransport
}

func TestFallbackWhenWorkerUnavailable(t *testing.T) {
	e := New(WithTransport(failingTransport{}), WithCooperativeBatch(100))
	ch, err := e.Start(context.Background(), model.NewStartMessage(1000, mainSpec, bonusSpec, 0))
	require.NoError(t, err)

	// The fallback ran on this goroutine, so the stream is already complete.
	msgs := collect(t, ch)
	terminal := requireProtocol(t, msgs)
	requireStatistics(t, terminal, 1000)
	assert.Equal(t, StateCompleted, e.State())
}

// crashingTransport reports some progress and then dies without a result.
type crashingTransport struct{}

func (crashingTransport) Launch(ctx context.Context, j Job) (<-chan model.Message, error) {
	out := make(chan model.Message, 4)
	go func() {
		defer close(out)
		for _, f := range []float64{0.1, 0.2, 0.3} {
			out <- model.Message{Type: model.MessageProgress, RunID: j.ID, CompletedFraction: f}
		}
	}()
	return out, nil
}

func TestFallbackWhenWorkerCrashes(t *testing.T) {
	e := New(WithTransport(crashingTransport{}))
	ch, err := e.Start(context.Background(), model.NewStartMessage(1000, mainSpec, bonusSpec, 0))
	require.NoError(t, err)

	msgs := collect(t, ch)
	terminal := requireProtocol(t, msgs)
	requireStatistics(t, terminal, 1000)
	// 0.1-0.3 from the worker, 0.4-1.0 from the fallback; repeats are dropped.
	assert.Len(t, msgs, 11)
}

type panickingSource struct{}

func (panickingSource) NextInRange(int, int) int {
	panic("entropy exhausted")
}

func TestExecutionFailureWhenFallbackFails(t *testing.T) {
	e := New(WithSourceFactory(func(int64) generator.Source { return panickingSource{} }))
	ch, err := e.Start(context.Background(), model.NewStartMessage(100, mainSpec, bonusSpec, 0))
	require.NoError(t, err)

	msgs := collect(t, ch)
	require.Len(t, msgs, 1)
	terminal := msgs[0]
	assert.Equal(t, model.MessageError, terminal.Type)
	assert.Nil(t, terminal.Statistics)
	assert.Empty(t, terminal.TrailingDraws)
	assert.Contains(t, terminal.Message, "entropy exhausted")
	var execErr *ExecutionError
	require.True(t, errors.As(terminal.Err, &execErr))
	assert.Equal(t, terminal.RunID, execErr.RunID)
	assert.Equal(t, StateFailed, e.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "cancelled", StateCancelled.String())
	assert.Equal(t, "state(42)", State(42).String())
}

package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/lottosim/internal/engine"
	"github.com/verte-zerg/lottosim/internal/model"
)

var testStart = model.NewStartMessage(4,
	model.RangeSpec{Min: 1, Max: 10, Count: 6},
	model.RangeSpec{Min: 1, Max: 3, Count: 1}, 7)

type scriptedStarter struct {
	msgs   []model.Message
	err    error
	starts int
	ctx    context.Context
}

func (s *scriptedStarter) Start(ctx context.Context, _ model.StartMessage) (<-chan model.Message, error) {
	s.starts++
	s.ctx = ctx
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan model.Message, len(s.msgs))
	for _, m := range s.msgs {
		ch <- m
	}
	close(ch)
	return ch, nil
}

func completedRun() []model.Message {
	draws := []model.Draw{
		{SequenceID: 3, MainNumbers: []int{1, 2, 3, 4, 5, 6}, BonusNumber: 2, Checksum: 42},
		{SequenceID: 4, MainNumbers: []int{2, 3, 4, 5, 6, 7}, BonusNumber: 1, Checksum: 27},
	}
	return []model.Message{
		{Type: model.MessageProgress, RunID: "0123456789ab", CompletedFraction: 0.5},
		{Type: model.MessageProgress, RunID: "0123456789ab", CompletedFraction: 1},
		{
			Type:          model.MessageComplete,
			RunID:         "0123456789ab",
			TrailingDraws: draws,
			Statistics: &model.SimulationStatistics{
				TotalSimulations:  4,
				MostFrequentMain:  []int{2, 3, 4, 5, 6, 7},
				MostFrequentBonus: 2,
				AverageSum:        25,
				RankedCombinations: []model.RankedCombination{
					{Rank: "1st", MainNumbers: []int{2, 3, 4, 5, 6, 7}, BonusNumber: 2, FrequencyScore: 100},
					{Rank: "2nd", MainNumbers: []int{2, 3, 4, 5, 6, 7}, BonusNumber: 1, FrequencyScore: 85},
					{Rank: "3rd", MainNumbers: []int{2, 3, 4, 5, 6, 7}, BonusNumber: 3, FrequencyScore: 70},
				},
				MainFrequency:  map[int]int{1: 1, 2: 4, 3: 4, 4: 4, 5: 4, 6: 4, 7: 3},
				BonusFrequency: map[int]int{1: 1, 2: 3},
			},
		},
	}
}

// drive runs commands until the stream is drained.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 100, "stream did not close")
		_, cmd = m.Update(cmd())
	}
}

func TestModelConsumesRun(t *testing.T) {
	starter := &scriptedStarter{msgs: completedRun()}
	m := NewModel(context.Background(), starter, testStart)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drive(t, m, m.Init())

	assert.Equal(t, engine.StateCompleted, m.phase)
	assert.Equal(t, 1.0, m.fraction)
	assert.Nil(t, m.stream)
	require.NotNil(t, m.result)

	view := m.View()
	for _, want := range []string{"Summary", "Frequencies", "Draws", "Run 01234567", "completed", "seed 7", "1st", "85%"} {
		assert.Contains(t, view, want)
	}
}

func TestModelTabsAndDraws(t *testing.T) {
	m := NewModel(context.Background(), &scriptedStarter{msgs: completedRun()}, testStart)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drive(t, m, m.Init())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabFrequencies, m.activeTab)
	assert.Contains(t, m.View(), "Main numbers")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabDraws, m.activeTab)
	view := m.View()
	assert.Contains(t, view, "Checksum")
	assert.Contains(t, view, "2 3 4 5 6 7")

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, tabDraws, m.activeTab)
}

func TestModelStreamClosedWithoutResult(t *testing.T) {
	starter := &scriptedStarter{msgs: completedRun()[:1]}
	m := NewModel(context.Background(), starter, testStart)
	drive(t, m, m.Init())
	assert.Equal(t, engine.StateCancelled, m.phase)
	assert.Equal(t, 0.5, m.fraction)
	assert.Nil(t, m.result)
}

func TestModelShowsErrorMessage(t *testing.T) {
	starter := &scriptedStarter{msgs: []model.Message{
		{Type: model.MessageError, RunID: "run", Message: "run run failed: boom"},
	}}
	m := NewModel(context.Background(), starter, testStart)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	drive(t, m, m.Init())
	assert.Equal(t, engine.StateFailed, m.phase)
	assert.Contains(t, m.View(), "boom")
}

func TestModelStartFailure(t *testing.T) {
	starter := &scriptedStarter{err: errors.New("engine is busy")}
	m := NewModel(context.Background(), starter, testStart)
	assert.Nil(t, m.Init())
	assert.Equal(t, engine.StateFailed, m.phase)
	assert.Equal(t, "engine is busy", m.errMsg)
}

func TestModelRerunAndQuit(t *testing.T) {
	starter := &scriptedStarter{msgs: completedRun()}
	m := NewModel(context.Background(), starter, testStart)
	drive(t, m, m.Init())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.Equal(t, 2, starter.starts)
	assert.Equal(t, engine.StateRunning, m.phase)

	// Rerun is ignored while the stream is open.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, 2, starter.starts)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, starter.ctx.Err(), context.Canceled)
}

func TestModelIgnoresStaleStream(t *testing.T) {
	m := NewModel(context.Background(), &scriptedStarter{msgs: completedRun()}, testStart)
	m.Init()
	stale := make(chan model.Message)
	m.Update(engineMsg{stream: stale, msg: model.Message{Type: model.MessageError, Message: "old"}})
	assert.Equal(t, engine.StateRunning, m.phase)
	assert.Empty(t, m.errMsg)
}

func TestTruncateLine(t *testing.T) {
	assert.Equal(t, "abc", truncateLine("abc", 5))
	assert.Equal(t, "ab...", truncateLine("abcdefgh", 5))
	assert.Equal(t, "ab", truncateLine("abcdefgh", 2))
}

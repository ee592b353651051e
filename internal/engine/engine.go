// Package engine drives simulation runs and reports them as messages.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/verte-zerg/lottosim/internal/generator"
	"github.com/verte-zerg/lottosim/internal/model"
)

// At most ten progress messages and one terminal message per run.
const outputBuffer = 12

// State is the lifecycle state of the engine's current run.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine runs one simulation at a time.
type Engine struct {
	mu        sync.Mutex
	state     State
	transport Transport
	logger    *log.Logger
	newSource func(seed int64) generator.Source
	batch     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithTransport replaces the worker transport.
func WithTransport(t Transport) Option {
	return func(e *Engine) {
		e.transport = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithSourceFactory sets how random sources are built from seeds.
func WithSourceFactory(f func(seed int64) generator.Source) Option {
	return func(e *Engine) {
		e.newSource = f
	}
}

// WithCooperativeBatch sets how many trials the fallback runs between yields.
func WithCooperativeBatch(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batch = n
		}
	}
}

// New returns an idle Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: log.New(io.Discard),
		batch:  cooperativeBatch,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.transport == nil {
		e.transport = WorkerTransport{Logger: e.logger}
	}
	return e
}

// State returns the state of the current or last run.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ValidateStart checks a start command. Failures are ConfigurationErrors.
func ValidateStart(msg model.StartMessage) error {
	if msg.Type != "" && msg.Type != model.MessageStart {
		return &ConfigurationError{Err: fmt.Errorf("%w: %q", ErrInvalidMessage, msg.Type)}
	}
	if msg.Iterations <= 0 {
		return &ConfigurationError{Err: fmt.Errorf("%w, got %d", ErrInvalidIterations, msg.Iterations)}
	}
	if err := generator.Validate(msg.MainRangeSpec, msg.BonusRangeSpec); err != nil {
		return &ConfigurationError{Err: err}
	}
	return nil
}

// Start begins a run and returns its message stream. The stream carries zero
// or more progress messages, then exactly one complete or error message, and
// is then closed. Cancelling ctx abandons the run; the stream is closed and a
// terminal message is not guaranteed.
//
// If the worker cannot be launched the run executes cooperatively on the
// calling goroutine before Start returns; the messages stay buffered.
func (e *Engine) Start(ctx context.Context, msg model.StartMessage) (<-chan model.Message, error) {
	if err := ValidateStart(msg); err != nil {
		return nil, err
	}
	if !e.begin() {
		return nil, ErrBusy
	}

	j := Job{
		ID:         uuid.NewString(),
		Iterations: msg.Iterations,
		Main:       msg.MainRangeSpec,
		Bonus:      msg.BonusRangeSpec,
		Seed:       msg.Seed,
		NewSource:  e.newSource,
	}
	e.logger.Info("simulation started", "run", j.ID, "iterations", j.Iterations,
		"main", fmt.Sprintf("%d of %d..%d", j.Main.Count, j.Main.Min, j.Main.Max),
		"bonus", fmt.Sprintf("%d..%d", j.Bonus.Min, j.Bonus.Max))

	out := make(chan model.Message, outputBuffer)
	in, err := e.transport.Launch(ctx, j)
	if err != nil {
		e.logger.Warn("worker unavailable, running cooperatively", "run", j.ID, "err", err)
		f := newForwarder(ctx, out)
		e.runCooperative(ctx, j, f)
		close(out)
		return out, nil
	}
	go e.supervise(ctx, j, in, out)
	return out, nil
}

func (e *Engine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		return false
	}
	e.state = StateRunning
	return true
}

func (e *Engine) finish(runID string, state State) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
	e.logger.Info("simulation finished", "run", runID, "state", state)
}

func (e *Engine) supervise(ctx context.Context, j Job, in <-chan model.Message, out chan<- model.Message) {
	defer close(out)
	f := newForwarder(ctx, out)
	for m := range in {
		f.send(m)
	}
	if f.terminal != nil {
		e.finishWith(j.ID, *f.terminal)
		return
	}
	if ctx.Err() != nil {
		e.finish(j.ID, StateCancelled)
		return
	}
	e.logger.Warn("worker exited without a result, running cooperatively", "run", j.ID,
		"err", ErrTransport, "progress", f.last)
	e.runCooperative(ctx, j, f)
}

func (e *Engine) runCooperative(ctx context.Context, j Job, f *forwarder) {
	msg, err := e.executeCooperative(ctx, j, f.send)
	switch {
	case err == nil:
		f.send(msg)
		e.finishWith(j.ID, msg)
	case ctx.Err() != nil:
		e.finish(j.ID, StateCancelled)
	default:
		failure := errorMessage(j.ID, err)
		f.send(failure)
		e.finishWith(j.ID, failure)
	}
}

func (e *Engine) executeCooperative(ctx context.Context, j Job, emit EmitFunc) (msg model.Message, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cooperative run panicked: %v", r)
		}
	}()
	return Execute(ctx, j, e.batch, runtime.Gosched, emit)
}

func (e *Engine) finishWith(runID string, terminal model.Message) {
	if terminal.Type == model.MessageComplete {
		e.finish(runID, StateCompleted)
		return
	}
	e.logger.Error("simulation failed", "run", runID, "err", terminal.Message)
	e.finish(runID, StateFailed)
}

// forwarder enforces ordering on the caller's stream: progress never goes
// backwards and nothing follows the terminal message.
type forwarder struct {
	ctx      context.Context
	out      chan<- model.Message
	last     float64
	terminal *model.Message
}

func newForwarder(ctx context.Context, out chan<- model.Message) *forwarder {
	return &forwarder{ctx: ctx, out: out}
}

func (f *forwarder) send(m model.Message) bool {
	if f.terminal != nil {
		return true
	}
	if m.Type == model.MessageProgress {
		if m.CompletedFraction <= f.last {
			return true
		}
	}
	select {
	case f.out <- m:
	case <-f.ctx.Done():
		return false
	}
	if m.IsTerminal() {
		f.terminal = &m
	} else {
		f.last = m.CompletedFraction
	}
	return true
}

// IsConfigurationError reports whether err rejected a start.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

package engine

import (
	"context"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/lottosim/internal/model"
)

// Transport launches a job on an isolated execution context. The returned
// channel is closed when the job ends; a job that dies sends no terminal
// message before the close.
type Transport interface {
	Launch(ctx context.Context, j Job) (<-chan model.Message, error)
}

// WorkerTransport runs each job on its own goroutine pinned to an OS thread.
// The worker shares nothing with the caller; it only sends messages.
type WorkerTransport struct {
	Logger *log.Logger
}

// Launch implements Transport.
func (t WorkerTransport) Launch(ctx context.Context, j Job) (<-chan model.Message, error) {
	out := make(chan model.Message, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(out)
		defer func() {
			if r := recover(); r != nil && t.Logger != nil {
				t.Logger.Error("worker crashed", "run", j.ID, "panic", r)
			}
		}()

		emit := func(m model.Message) bool {
			select {
			case out <- m:
				return true
			case <-ctx.Done():
				return false
			}
		}
		msg, err := Execute(ctx, j, workerBatch, nil, emit)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			emit(errorMessage(j.ID, err))
			return
		}
		emit(msg)
	}()
	return out, nil
}

package stats

import "github.com/verte-zerg/lottosim/internal/model"

const progressSteps = 10

// ProgressReporter decides when a run should emit progress.
type ProgressReporter struct {
	total int
	block int
}

// NewProgressReporter returns a reporter emitting once per ceil(total/10) trials.
func NewProgressReporter(total int) ProgressReporter {
	block := (total + progressSteps - 1) / progressSteps
	if block < 1 {
		block = 1
	}
	return ProgressReporter{total: total, block: block}
}

// Block returns the number of trials between notifications.
func (r ProgressReporter) Block() int {
	return r.block
}

// Due reports whether completed trials close a block, and the event to emit.
func (r ProgressReporter) Due(completed int) (model.ProgressEvent, bool) {
	if r.total <= 0 || completed <= 0 || completed > r.total {
		return model.ProgressEvent{}, false
	}
	if completed%r.block != 0 {
		return model.ProgressEvent{}, false
	}
	return model.ProgressEvent{CompletedFraction: float64(completed) / float64(r.total)}, true
}

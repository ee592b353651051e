package engine

import "github.com/verte-zerg/lottosim/internal/model"

// window keeps the most recent draws, evicting the oldest first.
type window struct {
	buf   []model.Draw
	start int
	size  int
}

func newWindow(capacity int) *window {
	if capacity < 1 {
		capacity = 1
	}
	return &window{buf: make([]model.Draw, capacity)}
}

func (w *window) push(d model.Draw) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = d
		w.size++
		return
	}
	w.buf[w.start] = d
	w.start = (w.start + 1) % len(w.buf)
}

// snapshot returns the retained draws, oldest first.
func (w *window) snapshot() []model.Draw {
	out := make([]model.Draw, 0, w.size)
	for i := 0; i < w.size; i++ {
		out = append(out, w.buf[(w.start+i)%len(w.buf)])
	}
	return out
}

package buffer

import "errors"

// Window is a fixed-capacity ring buffer holding the most recent N
// samples of one channel. Pushing never fails; once full, the oldest
// value is overwritten. Mean is defined as soon as one value has been
// pushed.
type Window struct {
	values []float64
	index  int
	count  int
}

// NewWindow creates a ring buffer with the given capacity.
func NewWindow(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, errors.New("buffer: capacity must be > 0")
	}
	return &Window{values: make([]float64, capacity)}, nil
}

// Push appends a sample, overwriting the oldest entry once at capacity.
func (w *Window) Push(v float64) {
	w.values[w.index] = v
	w.index = (w.index + 1) % len(w.values)
	if w.count < len(w.values) {
		w.count++
	}
}

// Mean returns the arithmetic mean of the currently held samples.
// Before the first push it returns 0.
func (w *Window) Mean() float64 {
	if w.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < w.count; i++ {
		sum += w.values[i]
	}
	return sum / float64(w.count)
}

// Len returns the number of samples currently held.
func (w *Window) Len() int { return w.count }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.values) }

// Full reports whether the window holds a complete set of samples.
func (w *Window) Full() bool { return w.count == len(w.values) }

package telemetry

// window is a bounded FIFO of samples. Appending to a full window
// drops the single oldest entry. Not safe for concurrent use on its
// own; the Store serializes access.
type window[T any] struct {
	capacity int
	entries  []T
}

func newWindow[T any](capacity int) *window[T] {
	return &window[T]{
		capacity: capacity,
		entries:  make([]T, 0, capacity),
	}
}

func (w *window[T]) append(entry T) {
	if len(w.entries) >= w.capacity {
		// Shift in place so the backing array never regrows.
		copy(w.entries, w.entries[1:])
		w.entries[len(w.entries)-1] = entry

		return
	}

	w.entries = append(w.entries, entry)
}

// snapshot returns an independent copy of the current contents, never
// an alias of the backing slice.
func (w *window[T]) snapshot() []T {
	out := make([]T, len(w.entries))
	copy(out, w.entries)

	return out
}

func (w *window[T]) len() int {
	return len(w.entries)
}

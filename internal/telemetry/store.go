package telemetry

import (
	"sort"
	"sync"
)

// Store is the single shared mutable structure in the process. The
// device sampler writes device keys, the host sampler writes the host
// window, and snapshot readers poll concurrently. A snapshot taken
// during an append observes either the pre- or post-append contents of
// that window, never a partially inserted element.
type Store struct {
	mu       sync.RWMutex
	capacity int
	devices  map[int]*window[DeviceSample]
	host     *window[HostSample]
}

// NewStore creates a store whose windows each retain at most capacity
// samples. Values below one fall back to DefaultHistory.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultHistory
	}

	return &Store{
		capacity: capacity,
		devices:  make(map[int]*window[DeviceSample]),
		host:     newWindow[HostSample](capacity),
	}
}

// AppendDevice records a sample for the given device id, creating the
// window on first use and evicting the oldest sample when full.
func (s *Store) AppendDevice(id int, sample DeviceSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.devices[id]
	if !ok {
		w = newWindow[DeviceSample](s.capacity)
		s.devices[id] = w
	}
	w.append(sample)
}

// AppendHost records a sample in the host window.
func (s *Store) AppendHost(sample HostSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.host.append(sample)
}

// DeviceSnapshot returns a copy of the device's current history, in
// insertion order. An unknown id yields an empty snapshot.
func (s *Store) DeviceSnapshot(id int) []DeviceSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.devices[id]
	if !ok {
		return nil
	}

	return w.snapshot()
}

// HostSnapshot returns a copy of the host history, in insertion order.
func (s *Store) HostSnapshot() []HostSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.host.snapshot()
}

// DeviceIDs returns the ids that currently have at least one sample,
// sorted ascending.
func (s *Store) DeviceIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.devices))
	for id, w := range s.devices {
		if w.len() > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	return ids
}

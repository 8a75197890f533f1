// Package monitor is the read side of the store: a poll-driven
// consumer that takes point-in-time snapshots and turns them into
// presentation values. It never sees sampler errors; the worst it can
// observe is an empty or short history.
package monitor

import (
	"context"
	"time"

	"codeberg.org/mutker/gpumond/internal/device"
	"codeberg.org/mutker/gpumond/internal/logger"
	"codeberg.org/mutker/gpumond/internal/telemetry"
)

const defaultPollInterval = 1000 * time.Millisecond

// Reader exposes read-only, instant-in-time copies of the sample
// histories together with the static device list.
type Reader struct {
	devices map[int]device.Device
	order   []device.Device
	store   *telemetry.Store
}

func NewReader(devices []device.Device, store *telemetry.Store) *Reader {
	byID := make(map[int]device.Device, len(devices))
	for _, dev := range devices {
		byID[dev.ID] = dev
	}

	return &Reader{
		devices: byID,
		order:   devices,
		store:   store,
	}
}

// Devices returns the enumerated devices in listing order.
func (r *Reader) Devices() []device.Device {
	out := make([]device.Device, len(r.order))
	copy(out, r.order)

	return out
}

// Keys returns the device ids that currently have samples.
func (r *Reader) Keys() []int {
	return r.store.DeviceIDs()
}

// DeviceHistory returns a snapshot of the device's rolling window. An
// empty or short history is normal during ramp-up.
func (r *Reader) DeviceHistory(id int) []telemetry.DeviceSample {
	return r.store.DeviceSnapshot(id)
}

// HostHistory returns a snapshot of the host rolling window.
func (r *Reader) HostHistory() []telemetry.HostSample {
	return r.store.HostSnapshot()
}

// PowerPercent reports a sample's power draw as a percentage of its
// device's max power limit, or 0 when the limit is unknown.
func (r *Reader) PowerPercent(id int, sample telemetry.DeviceSample) float64 {
	dev, ok := r.devices[id]
	if !ok {
		return 0
	}

	return dev.PowerPercent(sample.PowerDraw)
}

// Monitor periodically logs the latest snapshot of every window. It
// stands where an external presentation layer would poll. With verbose
// off the status lines drop to debug level.
type Monitor struct {
	reader   *Reader
	interval time.Duration
	verbose  bool
}

func New(reader *Reader, verbose bool) *Monitor {
	return &Monitor{
		reader:   reader,
		interval: defaultPollInterval,
		verbose:  verbose,
	}
}

// Run polls until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.logSnapshot()
		}
	}
}

func (m *Monitor) statusEvent() *logger.LogEvent {
	if m.verbose {
		return logger.Info()
	}

	return logger.Debug()
}

func (m *Monitor) logSnapshot() {
	for _, id := range m.reader.Keys() {
		history := m.reader.DeviceHistory(id)
		if len(history) == 0 {
			continue
		}

		latest := history[len(history)-1]
		dev := m.reader.devices[id]
		m.statusEvent().
			Int("gpu", id).
			Str("name", dev.Name).
			Str("sampled_at", latest.Timestamp).
			Float64("power_draw_w", latest.PowerDraw).
			Float64("power_pct", dev.PowerPercent(latest.PowerDraw)).
			Float64("memory_used_mb", latest.MemoryUsed).
			Float64("temperature_c", latest.Temperature).
			Str("thermal", ThermalStatus(latest.Temperature)).
			Float64("gpu_util_pct", latest.GPUUtil).
			Float64("mem_util_pct", latest.MemUtil).
			Msg("")
	}

	host := m.reader.HostHistory()
	if len(host) == 0 {
		return
	}

	latest := host[len(host)-1]
	m.statusEvent().
		Time("sampled_at", latest.Timestamp).
		Float64("cpu_util_pct", latest.CPUUtil).
		Float64("ram_util_pct", latest.RAMUtil).
		Msg("")
}

// Package telemetry holds the in-memory sample history shared between
// the sampling loops and the snapshot readers. Each monitored entity
// (one window per GPU, one for the host) keeps a bounded FIFO of its
// most recent samples; appends evict the oldest entry once the window
// is full.
package telemetry

import "time"

// DefaultHistory is the number of samples retained per entity.
const DefaultHistory = 15

// DeviceSample is one data point read from the device stream. The
// timestamp is kept verbatim as emitted by the tool.
type DeviceSample struct {
	Timestamp   string
	PowerDraw   float64 // watts
	MemoryUsed  float64 // MB
	Temperature float64 // Celsius
	GPUUtil     float64 // percent
	MemUtil     float64 // percent
}

// HostSample is one data point read from the OS accounting interface.
type HostSample struct {
	Timestamp time.Time
	CPUUtil   float64 // percent
	RAMUtil   float64 // percent
}

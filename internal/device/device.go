// Package device discovers the monitored GPUs once at startup. The
// device list is immutable afterwards and shared read-only with the
// sampler and the snapshot readers; there is no hot-plug support.
package device

// Device is the identity and static capability of one GPU, assigned by
// position in the listing output.
type Device struct {
	ID   int
	Name string
	// MaxPowerLimit is the hardware power limit in watts. Nil means the
	// capability query did not yield a parsable value; callers must not
	// confuse that with a limit of zero.
	MaxPowerLimit *float64
}

// PowerPercent reports drawWatts as a percentage of the device's max
// power limit. Without a known positive limit it returns 0 so the
// value stays renderable.
func (d Device) PowerPercent(drawWatts float64) float64 {
	if d.MaxPowerLimit == nil || *d.MaxPowerLimit <= 0 {
		return 0
	}

	return drawWatts / *d.MaxPowerLimit * 100
}

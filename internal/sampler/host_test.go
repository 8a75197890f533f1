package sampler

import (
	"context"
	"io"
	"testing"
	"time"

	"codeberg.org/mutker/gpumond/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostSamplerAppendsSamples(t *testing.T) {
	store := telemetry.NewStore(15)

	s := NewHostSampler(store)
	s.interval = time.Millisecond
	s.probe = func(context.Context) (float64, float64, error) {
		return 42.5, 61.0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	snapshot := store.HostSnapshot()
	require.NotEmpty(t, snapshot)
	assert.LessOrEqual(t, len(snapshot), 15)

	last := snapshot[len(snapshot)-1]
	assert.Equal(t, 42.5, last.CPUUtil)
	assert.Equal(t, 61.0, last.RAMUtil)
	assert.False(t, last.Timestamp.IsZero())
}

func TestHostSamplerSkipsFailedTicks(t *testing.T) {
	store := telemetry.NewStore(15)

	s := NewHostSampler(store)
	s.interval = time.Millisecond
	s.probe = func(context.Context) (float64, float64, error) {
		return 0, 0, io.ErrClosedPipe
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.Empty(t, store.HostSnapshot(), "failed probes must not produce samples")
}

func TestHostSamplerRecoversAfterFailedTick(t *testing.T) {
	store := telemetry.NewStore(15)

	failures := 3
	s := NewHostSampler(store)
	s.interval = time.Millisecond
	s.probe = func(context.Context) (float64, float64, error) {
		if failures > 0 {
			failures--
			return 0, 0, io.ErrClosedPipe
		}

		return 10.0, 20.0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	snapshot := store.HostSnapshot()
	require.NotEmpty(t, snapshot, "sampler should resume after transient failures")
	assert.Equal(t, 10.0, snapshot[0].CPUUtil)
}

package sampler

import (
	"context"
	"time"

	"codeberg.org/mutker/gpumond/internal/errors"
	"codeberg.org/mutker/gpumond/internal/logger"
	"codeberg.org/mutker/gpumond/internal/telemetry"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const defaultHostInterval = time.Second

// HostProbe reads the instantaneous CPU and RAM utilization percentages.
type HostProbe func(ctx context.Context) (cpuUtil, ramUtil float64, err error)

// HostSampler appends one host sample per tick. It is the single
// writer for the host key.
type HostSampler struct {
	store    *telemetry.Store
	interval time.Duration
	probe    HostProbe
}

func NewHostSampler(store *telemetry.Store) *HostSampler {
	return &HostSampler{
		store:    store,
		interval: defaultHostInterval,
		probe:    readHostMetrics,
	}
}

// Run samples until ctx is cancelled. A failed OS query skips that
// tick's sample and is never fatal.
func (s *HostSampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cpuUtil, ramUtil, err := s.probe(ctx)
			if err != nil {
				logger.ErrorWithCode(errors.New().Wrap(ErrHostRead, err)).
					Msg("Skipping host sample")

				continue
			}

			s.store.AppendHost(telemetry.HostSample{
				Timestamp: time.Now(),
				CPUUtil:   cpuUtil,
				RAMUtil:   ramUtil,
			})
		}
	}
}

func readHostMetrics(ctx context.Context) (float64, float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, 0, err
	}
	if len(percents) == 0 {
		return 0, 0, errors.New().WithMessage(ErrHostRead, "no CPU utilization reported")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}

	return percents[0], vm.UsedPercent, nil
}

package sampler

import (
	"bufio"
	"context"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/gpumond/internal/device"
	"codeberg.org/mutker/gpumond/internal/errors"
	"codeberg.org/mutker/gpumond/internal/logger"
	"codeberg.org/mutker/gpumond/internal/telemetry"
)

const (
	sampleFieldCount = 6

	// pollSlice keeps the read loop responsive to cancellation without
	// busy-spinning; the effective cadence is governed by the stream.
	defaultPollSlice = 100 * time.Millisecond

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// DeviceSampler reads one line per known device per tick from the
// telemetry stream and appends the parsed samples to the store. It is
// the single writer for all device keys.
type DeviceSampler struct {
	devices   []device.Device
	store     *telemetry.Store
	source    StreamSource
	pollSlice time.Duration
}

func NewDeviceSampler(devices []device.Device, store *telemetry.Store, source StreamSource) *DeviceSampler {
	return &DeviceSampler{
		devices:   devices,
		store:     store,
		source:    source,
		pollSlice: defaultPollSlice,
	}
}

// Run samples until ctx is cancelled. A dead stream is logged and
// relaunched with exponential backoff; the backoff resets once a full
// tick has been read.
func (s *DeviceSampler) Run(ctx context.Context) {
	backoff := initialBackoff

	for ctx.Err() == nil {
		healthy, err := s.stream(ctx)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			logger.ErrorWithCode(errors.New().Wrap(ErrStreamRead, err)).
				Msg("Telemetry stream ended; restarting")
		} else {
			logger.Warn().Msg("Telemetry stream closed; restarting")
		}

		if healthy {
			backoff = initialBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// stream consumes one subprocess lifetime. It reports whether at least
// one full tick was read, and the stream error if it ended abnormally.
func (s *DeviceSampler) stream(ctx context.Context) (bool, error) {
	out, err := s.source.Start(ctx)
	if err != nil {
		return false, errors.New().Wrap(ErrStreamStart, err)
	}
	defer out.Close()

	healthy := false
	scanner := bufio.NewScanner(out)

	for {
		for _, dev := range s.devices {
			if !scanner.Scan() {
				// Short read: no sample this tick for the remaining
				// devices. Reap the subprocess and report upward.
				readErr := scanner.Err()
				if waitErr := s.source.Wait(); readErr == nil {
					readErr = waitErr
				}

				return healthy, readErr
			}

			sample, err := ParseSample(scanner.Text())
			if err != nil {
				logger.Warn().
					Int("device", dev.ID).
					Str("line", scanner.Text()).
					Err(err).
					Msg("Skipping unparsable sample")

				continue
			}

			s.store.AppendDevice(dev.ID, sample)
		}
		healthy = true

		select {
		case <-ctx.Done():
			_ = s.source.Wait()
			return healthy, nil
		case <-time.After(s.pollSlice):
		}
	}
}

// ParseSample parses one streamed line of the form
// "timestamp, power.draw, memory.used, temperature, gpu_util, mem_util".
// Any missing or non-numeric field fails the whole sample; the caller
// drops it without affecting other devices in the same tick.
func ParseSample(line string) (telemetry.DeviceSample, error) {
	errFactory := errors.New()

	fields := strings.Split(line, ",")
	if len(fields) != sampleFieldCount {
		return telemetry.DeviceSample{}, errFactory.WithData(ErrParse, line)
	}

	values := make([]float64, sampleFieldCount-1)
	for i := range values {
		field := strings.TrimSpace(fields[i+1])

		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return telemetry.DeviceSample{}, errFactory.Wrap(ErrParse, err)
		}
		values[i] = value
	}

	return telemetry.DeviceSample{
		Timestamp:   strings.TrimSpace(fields[0]),
		PowerDraw:   values[0],
		MemoryUsed:  values[1],
		Temperature: values[2],
		GPUUtil:     values[3],
		MemUtil:     values[4],
	}, nil
}

package device

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"codeberg.org/mutker/gpumond/internal/errors"
	"codeberg.org/mutker/gpumond/internal/logger"
)

// Enumerator runs the one-time device discovery against the listing
// and capability queries of the external tool.
type Enumerator struct {
	smiPath string
	run     func(ctx context.Context, path string, args ...string) ([]byte, error)
}

func NewEnumerator(smiPath string) *Enumerator {
	return &Enumerator{
		smiPath: smiPath,
		run:     runCommand,
	}
}

func runCommand(ctx context.Context, path string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, path, args...).Output()
}

// Enumerate invokes the listing and capability queries exactly once
// and returns the devices in listing order. The streaming sampler
// assumes its per-tick line order matches this order.
func (e *Enumerator) Enumerate(ctx context.Context) ([]Device, error) {
	errFactory := errors.New()

	listing, err := e.run(ctx, e.smiPath, "-L")
	if err != nil {
		return nil, errFactory.Wrap(ErrEnumerationFailed, err)
	}

	names := parseListing(string(listing))
	if len(names) == 0 {
		return nil, errFactory.WithMessage(ErrEnumerationFailed, "no devices reported by listing query")
	}

	limits := e.queryPowerLimits(ctx, len(names))

	devices := make([]Device, len(names))
	for i, name := range names {
		devices[i] = Device{
			ID:            i,
			Name:          name,
			MaxPowerLimit: limits[i],
		}
		logger.Info().
			Int("id", i).
			Str("name", name).
			Msg("Detected GPU")
	}

	return devices, nil
}

// queryPowerLimits reads one max-power-limit line per device, in
// listing order. Any failure degrades to an unknown limit; a missing
// capability must never surface as a limit of zero.
func (e *Enumerator) queryPowerLimits(ctx context.Context, count int) []*float64 {
	limits := make([]*float64, count)

	out, err := e.run(ctx, e.smiPath, "--query-gpu=power.max_limit", "--format=csv,noheader,nounits")
	if err != nil {
		logger.Warn().Err(err).Msg("Power limit query failed; limits unknown")
		return limits
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := 0; i < count && i < len(lines); i++ {
		field := strings.TrimSpace(lines[i])
		if field == "" {
			continue
		}

		limit, err := strconv.ParseFloat(field, 64)
		if err != nil || limit < 0 {
			logger.Warn().
				Int("id", i).
				Str("value", field).
				Msg("Could not parse max power limit; treating as unknown")

			continue
		}

		limits[i] = &limit
	}

	return limits
}

// parseListing extracts display names from listing lines of the form
// "GPU 0: NVIDIA GeForce RTX 3080 (UUID: GPU-...)".
func parseListing(out string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name := line
		if _, after, ok := strings.Cut(line, ":"); ok {
			name = after
		}
		if before, _, ok := strings.Cut(name, "("); ok {
			name = before
		}

		names = append(names, strings.TrimSpace(name))
	}

	return names
}

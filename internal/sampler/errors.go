package sampler

import "codeberg.org/mutker/gpumond/internal/errors"

const (
	// Parse errors are recovered per device per tick.
	ErrParse = errors.ErrorCode("telemetry_parse_failed")

	// Stream errors stop the current subprocess; the sampler restarts
	// it with backoff.
	ErrStreamStart = errors.ErrorCode("stream_start_failed")
	ErrStreamRead  = errors.ErrorCode("stream_read_failed")

	// Host read errors skip a single tick.
	ErrHostRead = errors.ErrorCode("host_read_failed")
)

package sampler

import (
	"context"
	"io"
	"os/exec"
	"strconv"
)

// deviceQueryFields is the field order of every streamed line. The
// sampler's parser and the store's DeviceSample mirror it.
const deviceQueryFields = "timestamp,power.draw,memory.used,temperature.gpu,utilization.gpu,utilization.memory"

// StreamSource produces the long-lived per-tick telemetry stream. The
// production implementation spawns nvidia-smi; tests substitute an
// in-memory reader.
type StreamSource interface {
	// Start launches the stream. The returned reader emits one line
	// per device per tick. Cancelling ctx must terminate the stream.
	Start(ctx context.Context) (io.ReadCloser, error)

	// Wait releases the underlying stream resources after the reader
	// is exhausted and reports how the stream ended.
	Wait() error
}

// SMIStream launches the monitoring tool in streaming mode. The child
// process is bound to the context passed to Start, so cancellation
// kills it and leaves no orphan.
type SMIStream struct {
	path     string
	interval int
	cmd      *exec.Cmd
}

func NewSMIStream(path string, intervalSeconds int) *SMIStream {
	if intervalSeconds < 1 {
		intervalSeconds = 1
	}

	return &SMIStream{
		path:     path,
		interval: intervalSeconds,
	}
}

func (s *SMIStream) Start(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, s.path,
		"--query-gpu="+deviceQueryFields,
		"--format=csv,noheader,nounits",
		"-l", strconv.Itoa(s.interval))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	s.cmd = cmd

	return stdout, nil
}

func (s *SMIStream) Wait() error {
	if s.cmd == nil {
		return nil
	}

	err := s.cmd.Wait()
	s.cmd = nil

	return err
}

package device

import (
	"context"
	"io"
	"testing"

	"codeberg.org/mutker/gpumond/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRunner(outputs map[string]string, err error) func(context.Context, string, ...string) ([]byte, error) {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		if err != nil {
			return nil, err
		}

		return []byte(outputs[args[0]]), nil
	}
}

func TestEnumerate(t *testing.T) {
	e := NewEnumerator("nvidia-smi")
	e.run = fakeRunner(map[string]string{
		"-L": "GPU 0: NVIDIA GeForce RTX 3080 (UUID: GPU-11111111)\n" +
			"GPU 1: NVIDIA GeForce RTX 3090 (UUID: GPU-22222222)\n",
		"--query-gpu=power.max_limit": "320.00\n350.00\n",
	}, nil)

	devices, err := e.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, 0, devices[0].ID)
	assert.Equal(t, "NVIDIA GeForce RTX 3080", devices[0].Name)
	require.NotNil(t, devices[0].MaxPowerLimit)
	assert.Equal(t, 320.0, *devices[0].MaxPowerLimit)

	assert.Equal(t, 1, devices[1].ID)
	assert.Equal(t, "NVIDIA GeForce RTX 3090", devices[1].Name)
	require.NotNil(t, devices[1].MaxPowerLimit)
	assert.Equal(t, 350.0, *devices[1].MaxPowerLimit)
}

func TestEnumerateUnparsableLimitIsUnknown(t *testing.T) {
	e := NewEnumerator("nvidia-smi")
	e.run = fakeRunner(map[string]string{
		"-L":                          "GPU 0: NVIDIA T4 (UUID: GPU-33333333)\n",
		"--query-gpu=power.max_limit": "[N/A]\n",
	}, nil)

	devices, err := e.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)

	assert.Nil(t, devices[0].MaxPowerLimit, "unparsable limit must stay unknown, not become zero")
	assert.Equal(t, 0.0, devices[0].PowerPercent(70.0))
}

func TestEnumerateMissingLimitLines(t *testing.T) {
	e := NewEnumerator("nvidia-smi")
	e.run = fakeRunner(map[string]string{
		"-L": "GPU 0: NVIDIA A100 (UUID: GPU-44444444)\n" +
			"GPU 1: NVIDIA A100 (UUID: GPU-55555555)\n",
		"--query-gpu=power.max_limit": "400.00\n",
	}, nil)

	devices, err := e.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	require.NotNil(t, devices[0].MaxPowerLimit)
	assert.Nil(t, devices[1].MaxPowerLimit)
}

func TestEnumerateNoDevicesIsFatal(t *testing.T) {
	e := NewEnumerator("nvidia-smi")
	e.run = fakeRunner(map[string]string{"-L": "\n"}, nil)

	_, err := e.Enumerate(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrEnumerationFailed, errors.CodeOf(err))
}

func TestEnumerateToolUnreachableIsFatal(t *testing.T) {
	e := NewEnumerator("nvidia-smi")
	e.run = fakeRunner(nil, io.ErrUnexpectedEOF)

	_, err := e.Enumerate(context.Background())
	require.Error(t, err)
	assert.Equal(t, ErrEnumerationFailed, errors.CodeOf(err))
}

func TestPowerPercent(t *testing.T) {
	maxLimit := 250.0
	dev := Device{ID: 0, MaxPowerLimit: &maxLimit}

	assert.Equal(t, 50.0, dev.PowerPercent(125.0))
	assert.Equal(t, 0.0, Device{ID: 1}.PowerPercent(125.0))
}

func TestParseListingWithoutDecoration(t *testing.T) {
	names := parseListing("bare device name\n")
	require.Len(t, names, 1)
	assert.Equal(t, "bare device name", names[0])
}

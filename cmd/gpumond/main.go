package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"codeberg.org/mutker/gpumond/internal/config"
	"codeberg.org/mutker/gpumond/internal/device"
	"codeberg.org/mutker/gpumond/internal/errors"
	"codeberg.org/mutker/gpumond/internal/logger"
	"codeberg.org/mutker/gpumond/internal/monitor"
	"codeberg.org/mutker/gpumond/internal/pid"
	"codeberg.org/mutker/gpumond/internal/sampler"
	"codeberg.org/mutker/gpumond/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		applyLogLevel(cfg.LogLevel)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	devices, err := device.NewEnumerator(cfg.SMIPath).Enumerate(ctx)
	if err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrInitApp, err)).
			Msg("Device enumeration failed; cannot start samplers")
		os.Exit(1)
	}

	store := telemetry.NewStore(cfg.History)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		stream := sampler.NewSMIStream(cfg.SMIPath, cfg.Interval)
		sampler.NewDeviceSampler(devices, store, stream).Run(ctx)
	}()

	go func() {
		defer wg.Done()
		sampler.NewHostSampler(store).Run(ctx)
	}()

	reader := monitor.NewReader(devices, store)
	monitor.New(reader, cfg.Monitor || cfg.Verbose).Run(ctx)

	wg.Wait()
	logger.Info().Msg("Exiting...")
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func applyLogLevel(level string) {
	switch config.LogLevel(level) {
	case config.LogLevelDebug:
		logger.SetLogLevel(logger.DebugLevel)
	case config.LogLevelInfo:
		logger.SetLogLevel(logger.InfoLevel)
	case config.LogLevelWarning:
		logger.SetLogLevel(logger.WarnLevel)
	case config.LogLevelError:
		logger.SetLogLevel(logger.ErrorLevel)
	}
}

package config

import (
	"os"

	"codeberg.org/mutker/gpumond/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval = 1
	defaultHistory  = 15
	defaultSMIPath  = "nvidia-smi"

	configEnvVar   = "GPUMOND_CONFIG"
	configName     = "gpumond"
	configType     = "toml"
	systemConfDir  = "/etc"
	currentConfDir = "."
)

type Config struct {
	Interval int    `mapstructure:"interval"`
	History  int    `mapstructure:"history"`
	SMIPath  string `mapstructure:"smi_path"`
	Monitor  bool   `mapstructure:"monitor"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the config file, environment and
// command-line flags. Flags override file values, which override
// defaults. The config file path can be forced via GPUMOND_CONFIG.
func Load() (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("gpumond", pflag.ContinueOnError)
	// Tolerate flags owned by other packages (e.g. the test binary's).
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Int("interval", defaultInterval, "Seconds between telemetry samples")
	fs.Int("history", defaultHistory, "Number of samples retained per device")
	fs.String("smi-path", defaultSMIPath, "Path to the nvidia-smi binary")
	fs.Bool("monitor", false, "Log the latest snapshot on every poll")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("history", defaultHistory)
	v.SetDefault("smi_path", defaultSMIPath)
	v.SetDefault("log_level", DefaultLogLevel)

	bindings := map[string]string{
		"interval":  "interval",
		"history":   "history",
		"smi_path":  "smi-path",
		"monitor":   "monitor",
		"debug":     "debug",
		"verbose":   "verbose",
		"log_level": "log-level",
	}
	for key, flagName := range bindings {
		flag := fs.Lookup(flagName)
		if flag.Changed {
			v.Set(key, flag.Value.String())
		}
	}

	if path := os.Getenv(configEnvVar); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(systemConfDir)
		v.AddConfigPath(currentConfDir)
	}

	v.SetEnvPrefix("GPUMOND")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded configuration for values the samplers
// cannot operate with.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if c.History <= 0 {
		return errFactory.WithData(errors.ErrInvalidHistory, c.History)
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

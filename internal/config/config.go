package config

import (
	"os"
	"strings"

	"codeberg.org/mutker/hwmon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval    = 5
	DefaultGPUInterval = 10
	DefaultLogLevel    = "info"

	configName = "hwmon"
	configType = "toml"
	envConfig  = "HWMON_CONFIG"
)

type Config struct {
	Interval     int    `mapstructure:"interval"`
	GPUInterval  int    `mapstructure:"gpu_interval"`
	Monitor      bool   `mapstructure:"monitor"`
	TestMode     bool   `mapstructure:"test_mode"`
	InjectErrors bool   `mapstructure:"inject_errors"`
	SelfTest     bool   `mapstructure:"self_test"`
	LogLevel     string `mapstructure:"log_level"`
	Debug        bool   `mapstructure:"debug"`
	Verbose      bool   `mapstructure:"verbose"`
}

// Load reads configuration from defaults, an optional TOML config file and
// the given command line arguments, in increasing order of precedence. The
// config file is looked up in /etc and the working directory unless
// HWMON_CONFIG points at an explicit path.
func Load(args ...string) (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("gpu_interval", DefaultGPUInterval)
	v.SetDefault("monitor", false)
	v.SetDefault("test_mode", false)
	v.SetDefault("inject_errors", false)
	v.SetDefault("self_test", false)
	v.SetDefault("log_level", DefaultLogLevel)

	flags := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	flags.Int("interval", DefaultInterval, "Seconds between hardware polling cycles")
	flags.Int("gpu-interval", DefaultGPUInterval, "Seconds between GPU polling cycles")
	flags.Bool("monitor", false, "Log every reading instead of state changes only")
	flags.Bool("test-mode", false, "Use deterministic fixture data instead of querying the system")
	flags.Bool("inject-errors", false, "Force every telemetry fetch to fail deterministically")
	flags.Bool("self-test", false, "Run the diagnostics suite and exit")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.Bool("debug", false, "Enable debugging mode")
	flags.Bool("verbose", false, "Enable verbose logging")

	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetConfigType(configType)
	if path := os.Getenv(envConfig); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	}

	// Flags set on the command line win over file values
	flags.Visit(func(f *pflag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.GPUInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.GPUInterval)
	}
	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

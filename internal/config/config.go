// Package config loads launch settings from configs/config.yml, LAUNCH_*
// environment variables and command-line flags, in rising precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"launch_control/internal/logger"
	"launch_control/internal/sequencer"
	"launch_control/internal/service"
	"launch_control/internal/transport"

	"github.com/spf13/viper"
)

const (
	KeySerialPort      = "serial.port"
	KeySerialBaud      = "serial.baud"
	KeySerialDryRun    = "serial.dry_run"
	KeyDurationSeconds = "countdown.duration_s"
	KeyPulseHundredths = "igniter.pulse_hundredths"
	KeyLogLevel        = "log.level"
	KeyJournalQueue    = "journal.queue"

	EnvPrefix = "LAUNCH"
)

var (
	ErrInvalidBaud     = errors.New("serial baud must be positive")
	ErrInvalidLogLevel = errors.New("unknown log level")
	ErrInvalidQueue    = errors.New("journal queue must be positive")
)

type Config struct {
	Serial struct {
		Port   string `mapstructure:"port"`
		Baud   int    `mapstructure:"baud"`
		DryRun bool   `mapstructure:"dry_run"`
	} `mapstructure:"serial"`

	Countdown struct {
		DurationS int `mapstructure:"duration_s"`
	} `mapstructure:"countdown"`

	Igniter struct {
		PulseHundredths int `mapstructure:"pulse_hundredths"`
	} `mapstructure:"igniter"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Journal struct {
		Queue int `mapstructure:"queue"`
	} `mapstructure:"journal"`
}

// SetDefaults registers the built-in values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySerialPort, transport.DefaultPort)
	v.SetDefault(KeySerialBaud, transport.DefaultBaud)
	v.SetDefault(KeySerialDryRun, false)
	v.SetDefault(KeyDurationSeconds, 10)
	v.SetDefault(KeyPulseHundredths, 100)
	v.SetDefault(KeyLogLevel, logger.InfoLevel)
	v.SetDefault(KeyJournalQueue, service.DefaultJournalQueue)
}

// Load reads path into v and decodes the result. With an empty path the
// file is looked up as configs/config.yml and may be absent.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBaud, c.Serial.Baud)
	}
	switch c.Log.Level {
	case logger.DebugLevel, logger.InfoLevel, logger.WarnLevel, logger.ErrorLevel:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if c.Journal.Queue <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQueue, c.Journal.Queue)
	}
	if _, err := c.Sequence(); err != nil {
		return err
	}
	return nil
}

// Sequence builds the initial sequencer configuration.
func (c *Config) Sequence() (sequencer.Configuration, error) {
	return sequencer.NewConfiguration(c.Countdown.DurationS, c.Igniter.PulseHundredths)
}

// SerialConfig returns the port settings for the igniter link.
func (c *Config) SerialConfig() transport.SerialConfig {
	return transport.SerialConfig{Port: c.Serial.Port, Baud: c.Serial.Baud}
}

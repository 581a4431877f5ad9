// Package config loads hatbox configuration. Values are layered: built-in
// defaults, then a YAML file, then HATBOX_* environment variables, then
// command-line flags the user set explicitly.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hatbox-go/hatbox/internal/logging"
	"github.com/hatbox-go/hatbox/pkg/client"
	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/transport"
	"github.com/hatbox-go/hatbox/pkg/wire"
	"github.com/hatbox-go/hatbox/pkg/wrangler"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "HATBOX_"

// Config is the nfc-wrangler configuration.
type Config struct {
	Broker  BrokerConfig  `yaml:"broker" envPrefix:"BROKER_"`
	Devices DevicesConfig `yaml:"devices" envPrefix:"DEVICES_"`
	Loop    LoopConfig    `yaml:"loop" envPrefix:"LOOP_"`
	Token   TokenConfig   `yaml:"token" envPrefix:"TOKEN_"`
	Effects EffectsConfig `yaml:"effects" envPrefix:"EFFECTS_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
}

// BrokerConfig locates the broker.
type BrokerConfig struct {
	Endpoint    string        `yaml:"endpoint" env:"ENDPOINT"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
}

// DevicesConfig holds the device ids the wrangler talks to.
type DevicesConfig struct {
	NFCReader uint8 `yaml:"nfc_reader" env:"NFC_READER"`
	Neopixel  uint8 `yaml:"neopixel" env:"NEOPIXEL"`
}

// LoopConfig tunes the request loop.
type LoopConfig struct {
	Yield       time.Duration `yaml:"yield" env:"YIELD"`
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	MaxBackoff  time.Duration `yaml:"max_backoff" env:"MAX_BACKOFF"`
}

// EffectsConfig controls tag-triggered light effects.
type EffectsConfig struct {
	Enabled          bool   `yaml:"enabled" env:"ENABLED"`
	Color            string `yaml:"color" env:"COLOR"`
	Duration         int    `yaml:"duration" env:"DURATION"`
	Frequency        int    `yaml:"frequency" env:"FREQUENCY"`
	RainbowFrequency int    `yaml:"rainbow_frequency" env:"RAINBOW_FREQUENCY"`
}

// LogConfig controls operational and protocol logging.
type LogConfig struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Format      string `yaml:"format" env:"FORMAT"`
	ProtocolLog string `yaml:"protocol_log" env:"PROTOCOL_LOG"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Endpoint:    transport.DefaultSocketPath,
			Timeout:     client.DefaultTimeout,
			DialTimeout: client.DefaultDialTimeout,
		},
		Devices: DevicesConfig{
			NFCReader: uint8(wire.DeviceNFC),
			Neopixel:  uint8(wire.DeviceNeopixel),
		},
		Loop: LoopConfig{
			Yield:       wrangler.DefaultYield,
			ReadTimeout: wrangler.DefaultReadTimeout,
			MaxBackoff:  wrangler.DefaultMaxBackoff,
		},
		Token: TokenConfig{
			Source: TokenSourceBlake3,
		},
		Effects: EffectsConfig{
			Enabled:          true,
			Color:            command.White.String(),
			Duration:         wrangler.DefaultEffectDuration,
			Frequency:        command.DefaultBlinkFrequency,
			RainbowFrequency: command.DefaultRainbowWaveFrequency,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overlays HATBOX_* environment variables onto target.
func ParseEnv(target any) error {
	return parseEnvPrefix(target, "")
}

func parseEnvPrefix(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix + prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func decodeFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, target); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Decode overlays YAML data onto target. Unknown keys are errors.
func Decode(data []byte, target any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if _, err := transport.ParseEndpoint(c.Broker.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("broker.endpoint: %w", err))
	}
	if c.Broker.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("broker.timeout must be positive, got %s", c.Broker.Timeout))
	}
	if c.Broker.DialTimeout <= 0 {
		errs = append(errs, fmt.Errorf("broker.dial_timeout must be positive, got %s", c.Broker.DialTimeout))
	}
	if c.Devices.NFCReader == 0 {
		errs = append(errs, errors.New("devices.nfc_reader must not be 0"))
	}
	if c.Devices.Neopixel == 0 {
		errs = append(errs, errors.New("devices.neopixel must not be 0"))
	}
	if c.Devices.NFCReader == c.Devices.Neopixel {
		errs = append(errs, fmt.Errorf("devices: nfc_reader and neopixel share id %d", c.Devices.NFCReader))
	}
	if c.Loop.Yield <= 0 {
		errs = append(errs, fmt.Errorf("loop.yield must be positive, got %s", c.Loop.Yield))
	}
	if c.Loop.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("loop.read_timeout must not be negative, got %s", c.Loop.ReadTimeout))
	}
	if c.Loop.ReadTimeout >= c.Broker.Timeout {
		errs = append(errs, fmt.Errorf("loop.read_timeout %s must be shorter than broker.timeout %s", c.Loop.ReadTimeout, c.Broker.Timeout))
	}
	if c.Loop.MaxBackoff < c.Loop.Yield {
		errs = append(errs, fmt.Errorf("loop.max_backoff %s is shorter than loop.yield %s", c.Loop.MaxBackoff, c.Loop.Yield))
	}
	if err := c.Token.validate(); err != nil {
		errs = append(errs, fmt.Errorf("token: %w", err))
	}
	if _, err := c.Effects.Wrangler(); err != nil {
		errs = append(errs, fmt.Errorf("effects: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	return errors.Join(errs...)
}

// Wrangler converts the effects section.
func (e EffectsConfig) Wrangler() (wrangler.EffectsConfig, error) {
	color, err := command.ParseColor(e.Color)
	if err != nil {
		return wrangler.EffectsConfig{}, err
	}
	duration := e.Duration
	out := wrangler.EffectsConfig{
		Enabled:          e.Enabled,
		Color:            &color,
		Duration:         &duration,
		Frequency:        e.Frequency,
		RainbowFrequency: e.RainbowFrequency,
	}
	for _, name := range wrangler.EffectNames {
		if _, err := out.Command(name); err != nil {
			return wrangler.EffectsConfig{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	return out, nil
}

// Validate checks the level and format names.
func (l LogConfig) Validate() error {
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return err
	}
	switch l.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", l.Format)
	}
}

// WranglerConfig builds the daemon configuration. The token source is
// resolved here, so secret files are read once.
func (c *Config) WranglerConfig() (wrangler.Config, error) {
	src, err := c.Token.NewSource()
	if err != nil {
		return wrangler.Config{}, err
	}
	effects, err := c.Effects.Wrangler()
	if err != nil {
		return wrangler.Config{}, err
	}
	return wrangler.Config{
		NFC:         wire.DeviceID(c.Devices.NFCReader),
		Neopixel:    wire.DeviceID(c.Devices.Neopixel),
		ReadTimeout: c.Loop.ReadTimeout,
		Yield:       c.Loop.Yield,
		MaxBackoff:  c.Loop.MaxBackoff,
		Token:       src,
		Effects:     effects,
	}, nil
}

// ClientConfig builds the protocol client configuration.
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		Timeout:     c.Broker.Timeout,
		DialTimeout: c.Broker.DialTimeout,
	}
}

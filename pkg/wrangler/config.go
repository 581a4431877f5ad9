package wrangler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/connection"
	"github.com/hatbox-go/hatbox/pkg/token"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Defaults.
const (
	DefaultYield       = 500 * time.Millisecond
	DefaultReadTimeout = 5 * time.Second
	DefaultMaxBackoff  = connection.MaxBackoff

	// DefaultEffectDuration is how long tag-triggered effects run, in
	// seconds.
	DefaultEffectDuration = 5
)

// Config configures a Daemon.
type Config struct {
	// NFC is the reader's device id (default 1).
	NFC wire.DeviceID

	// Neopixel is the light strip's device id (default 2).
	Neopixel wire.DeviceID

	// ReadTimeout is sent with every ReadData. Zero asks the broker to
	// wait without a timeout, leaving the client's send timeout to bound
	// the read.
	ReadTimeout time.Duration

	// Yield is the pause between iterations (default 500ms). It is also the
	// first backoff step after a timed out read.
	Yield time.Duration

	// MaxBackoff caps the pause after consecutive timeouts (default 30s).
	MaxBackoff time.Duration

	// Token derives the access token. Required.
	Token token.Source

	// Effects controls tag-triggered light effects.
	Effects EffectsConfig

	// Logger for operational logging (default slog.Default()).
	Logger *slog.Logger
}

// EffectsConfig parameterizes the light effects a tag can name.
type EffectsConfig struct {
	Enabled bool

	// Color for solid, blink and pulse (default white).
	Color *command.Color

	// Duration in seconds (default 5). Zero runs the effect until the
	// next one replaces it.
	Duration *int

	// Frequency for blink and pulse (default 2).
	Frequency int

	// RainbowFrequency for rainbow and rainbow_wave (default 10).
	RainbowFrequency int
}

// DefaultConfig returns a configuration with every default filled in and
// effects enabled. Token is left nil.
func DefaultConfig() Config {
	cfg := Config{Effects: EffectsConfig{Enabled: true}}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.NFC == 0 {
		c.NFC = wire.DeviceNFC
	}
	if c.Neopixel == 0 {
		c.Neopixel = wire.DeviceNeopixel
	}
	if c.Yield <= 0 {
		c.Yield = DefaultYield
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Effects.Color == nil {
		white := command.White
		c.Effects.Color = &white
	}
	if c.Effects.Duration == nil {
		d := DefaultEffectDuration
		c.Effects.Duration = &d
	}
	if c.Effects.Frequency == 0 {
		c.Effects.Frequency = command.DefaultBlinkFrequency
	}
	if c.Effects.RainbowFrequency == 0 {
		c.Effects.RainbowFrequency = command.DefaultRainbowWaveFrequency
	}
}

// Validate reports configuration errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Token == nil {
		errs = append(errs, token.ErrNoSource)
	}
	if c.NFC == c.Neopixel {
		errs = append(errs, fmt.Errorf("nfc and neopixel share device id %d", c.NFC))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("read timeout %s is negative", c.ReadTimeout))
	}
	if c.MaxBackoff < c.Yield {
		errs = append(errs, fmt.Errorf("max backoff %s is shorter than yield %s", c.MaxBackoff, c.Yield))
	}
	for _, name := range EffectNames {
		if _, err := c.Effects.Command(name); err != nil {
			errs = append(errs, fmt.Errorf("effect %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

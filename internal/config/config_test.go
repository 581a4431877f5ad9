package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatbox-go/hatbox/pkg/broker"
	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/token"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	cfg := Default()
	cfg.Token.Secret = "hunter2"
	return cfg
}

func TestDefaultNeedsSecret(t *testing.T) {
	err := Default().Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, token.ErrNoSecret)
	assert.NoError(t, validConfig().Validate())
}

func TestLoadLayers(t *testing.T) {
	path := writeFile(t, "wrangler.yaml", `
broker:
  endpoint: tcp://127.0.0.1:7000
  timeout: 3s
loop:
  yield: 250ms
  read_timeout: 2s
token:
  source: static
  static: ABCDEFGHIJ
effects:
  enabled: false
  color: "#ff0000"
`)
	t.Setenv("HATBOX_LOOP_YIELD", "100ms")
	t.Setenv("HATBOX_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://127.0.0.1:7000", cfg.Broker.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Broker.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Loop.Yield)
	assert.Equal(t, 2*time.Second, cfg.Loop.ReadTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Effects.Enabled)
	// Untouched values keep their defaults.
	assert.Equal(t, uint8(wire.DeviceNeopixel), cfg.Devices.Neopixel)
	require.NoError(t, cfg.Validate())

	wc, err := cfg.WranglerConfig()
	require.NoError(t, err)
	assert.Equal(t, token.Static("ABCDEFGHIJ"), wc.Token)
	assert.Equal(t, command.Color{R: 255}, *wc.Effects.Color)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "bad.yaml", "broker:\n  endpiont: /tmp/x\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("HATBOX_BROKER_TIMEOUT", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "parse env:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad endpoint", func(c *Config) { c.Broker.Endpoint = "http://x" }},
		{"zero timeout", func(c *Config) { c.Broker.Timeout = 0 }},
		{"same device ids", func(c *Config) { c.Devices.Neopixel = c.Devices.NFCReader }},
		{"zero nfc device", func(c *Config) { c.Devices.NFCReader = 0 }},
		{"zero neopixel device", func(c *Config) { c.Devices.Neopixel = 0 }},
		{"zero yield", func(c *Config) { c.Loop.Yield = 0 }},
		{"read outlasts send", func(c *Config) { c.Loop.ReadTimeout = c.Broker.Timeout }},
		{"backoff below yield", func(c *Config) { c.Loop.MaxBackoff = time.Millisecond }},
		{"unknown source", func(c *Config) { c.Token.Source = "magic" }},
		{"short static", func(c *Config) { c.Token.Source, c.Token.Static = "static", "abc" }},
		{"bad color", func(c *Config) { c.Effects.Color = "red" }},
		{"negative duration", func(c *Config) { c.Effects.Duration = -1 }},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestUntimedEffectsReachWrangler(t *testing.T) {
	cfg := validConfig()
	cfg.Effects.Duration = 0
	require.NoError(t, cfg.Validate())

	wcfg, err := cfg.WranglerConfig()
	require.NoError(t, err)
	require.NotNil(t, wcfg.Effects.Duration)
	assert.Equal(t, 0, *wcfg.Effects.Duration)

	cmd, err := wcfg.Effects.Command("blink")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cmd.(command.BlinkCommand).Duration)
}

func TestTokenSources(t *testing.T) {
	secretFile := writeFile(t, "secret", "s3cret\n")

	hkdfSrc, err := TokenConfig{Source: TokenSourceHKDF, Secret: "s3cret", Salt: "salt"}.NewSource()
	require.NoError(t, err)
	assert.Equal(t, token.HKDF{Secret: []byte("s3cret"), Salt: []byte("salt")}, hkdfSrc)

	b3, err := TokenConfig{Source: TokenSourceBlake3, SecretFile: secretFile, Secret: "ignored"}.NewSource()
	require.NoError(t, err)
	assert.Equal(t, token.Blake3{Secret: []byte("s3cret")}, b3)

	_, err = TokenConfig{Source: TokenSourceBlake3, SecretFile: writeFile(t, "empty", "\n")}.NewSource()
	assert.Error(t, err)

	_, err = TokenConfig{Source: TokenSourceHKDF}.NewSource()
	assert.ErrorIs(t, err, token.ErrNoSecret)
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	t.Setenv("HATBOX_BROKER_ENDPOINT", "/tmp/env.sock")
	t.Setenv("HATBOX_TOKEN_SECRET", "from-env")
	t.Setenv("HATBOX_LOOP_YIELD", "2s")

	var flags Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--endpoint", "tcp://10.0.0.2:9000", "--effects=false"}))

	cfg, err := flags.Resolve(fs)
	require.NoError(t, err)

	assert.Equal(t, "tcp://10.0.0.2:9000", cfg.Broker.Endpoint)
	assert.False(t, cfg.Effects.Enabled)
	// --yield was not given, so its default must not mask the environment.
	assert.Equal(t, 2*time.Second, cfg.Loop.Yield)
	assert.Equal(t, "from-env", cfg.Token.Secret)
}

func TestServerConfig(t *testing.T) {
	cfg, err := LoadServer("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Devices, 4)

	path := writeFile(t, "broker.yaml", `
listen: tcp://127.0.0.1:7001
devices:
  - {id: 1, kind: nfc, name: reader}
  - {id: 9, kind: neopixel, name: strip}
`)
	t.Setenv("HATBOX_BROKER_PRINT_DELAY", "50ms")
	cfg, err = LoadServer(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "tcp://127.0.0.1:7001", cfg.Listen)
	assert.Len(t, cfg.Devices, 2)
	assert.Equal(t, 50*time.Millisecond, cfg.DeviceOptions().PrintDelay)

	cfg.Devices = append(cfg.Devices, cfg.Devices[0])
	assert.Error(t, cfg.Validate())

	cfg.Devices = []broker.DeviceSpec{{ID: 5, Kind: "toaster", Name: "t"}}
	assert.Error(t, cfg.Validate())
}

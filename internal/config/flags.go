package config

import (
	"github.com/spf13/pflag"
)

// Flags binds command-line overrides for Config. Only flags the user set
// are applied, so defaults never mask file or environment values.
type Flags struct {
	ConfigPath string

	values Config
}

// AddFlags registers the wrangler flags on fs.
func (f *Flags) AddFlags(fs *pflag.FlagSet) {
	d := Default()
	v := &f.values

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "path to YAML config file")
	fs.StringVar(&v.Broker.Endpoint, "endpoint", d.Broker.Endpoint, "broker endpoint (path, unix://path or tcp://host:port)")
	fs.DurationVar(&v.Broker.Timeout, "timeout", d.Broker.Timeout, "bound on each broker round trip")
	fs.DurationVar(&v.Broker.DialTimeout, "dial-timeout", d.Broker.DialTimeout, "bound on connecting to the broker")
	fs.Uint8Var(&v.Devices.NFCReader, "nfc-device", d.Devices.NFCReader, "NFC reader device id")
	fs.Uint8Var(&v.Devices.Neopixel, "neopixel-device", d.Devices.Neopixel, "neopixel device id")
	fs.DurationVar(&v.Loop.Yield, "yield", d.Loop.Yield, "pause between reads")
	fs.DurationVar(&v.Loop.ReadTimeout, "read-timeout", d.Loop.ReadTimeout, "ReadData timeout sent to the broker (0 waits for the send timeout)")
	fs.DurationVar(&v.Loop.MaxBackoff, "max-backoff", d.Loop.MaxBackoff, "longest pause after repeated timeouts")
	fs.StringVar(&v.Token.Source, "token-source", d.Token.Source, "access token source: static, hkdf or blake3")
	fs.StringVar(&v.Token.SecretFile, "token-secret-file", "", "file holding the token secret")
	fs.BoolVar(&v.Effects.Enabled, "effects", d.Effects.Enabled, "start light effects named by tags")
	fs.StringVar(&v.Log.Level, "log-level", d.Log.Level, "log level: debug, info, warn or error")
	fs.StringVar(&v.Log.Format, "log-format", d.Log.Format, "log format: text or json")
	fs.StringVar(&v.Log.ProtocolLog, "protocol-log", "", "write a CBOR protocol capture to this file")
}

// Apply copies every flag set on fs into cfg.
func (f *Flags) Apply(fs *pflag.FlagSet, cfg *Config) {
	v := &f.values
	setters := map[string]func(){
		"endpoint":          func() { cfg.Broker.Endpoint = v.Broker.Endpoint },
		"timeout":           func() { cfg.Broker.Timeout = v.Broker.Timeout },
		"dial-timeout":      func() { cfg.Broker.DialTimeout = v.Broker.DialTimeout },
		"nfc-device":        func() { cfg.Devices.NFCReader = v.Devices.NFCReader },
		"neopixel-device":   func() { cfg.Devices.Neopixel = v.Devices.Neopixel },
		"yield":             func() { cfg.Loop.Yield = v.Loop.Yield },
		"read-timeout":      func() { cfg.Loop.ReadTimeout = v.Loop.ReadTimeout },
		"max-backoff":       func() { cfg.Loop.MaxBackoff = v.Loop.MaxBackoff },
		"token-source":      func() { cfg.Token.Source = v.Token.Source },
		"token-secret-file": func() { cfg.Token.SecretFile = v.Token.SecretFile },
		"effects":           func() { cfg.Effects.Enabled = v.Effects.Enabled },
		"log-level":         func() { cfg.Log.Level = v.Log.Level },
		"log-format":        func() { cfg.Log.Format = v.Log.Format },
		"protocol-log":      func() { cfg.Log.ProtocolLog = v.Log.ProtocolLog },
	}
	fs.Visit(func(fl *pflag.Flag) {
		if set, ok := setters[fl.Name]; ok {
			set()
		}
	})
}

// Resolve loads the file named by --config and the environment, then
// applies the flags.
func (f *Flags) Resolve(fs *pflag.FlagSet) (*Config, error) {
	cfg, err := Load(f.ConfigPath)
	if err != nil {
		return nil, err
	}
	f.Apply(fs, cfg)
	return cfg, cfg.Validate()
}

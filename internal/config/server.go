package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/hatbox-go/hatbox/pkg/broker"
	"github.com/hatbox-go/hatbox/pkg/transport"
)

// ServerConfig is the simulated broker's configuration. Its environment
// variables use the HATBOX_BROKER_ prefix.
type ServerConfig struct {
	Listen           string              `yaml:"listen" env:"LISTEN"`
	HandshakeTimeout time.Duration       `yaml:"handshake_timeout" env:"HANDSHAKE_TIMEOUT"`
	PrintDelay       time.Duration       `yaml:"print_delay" env:"PRINT_DELAY"`
	NFCQueue         int                 `yaml:"nfc_queue" env:"NFC_QUEUE"`
	Devices          []broker.DeviceSpec `yaml:"devices"`
	Log              LogConfig           `yaml:"log" envPrefix:"LOG_"`
}

// DefaultServer returns the built-in broker configuration.
func DefaultServer() *ServerConfig {
	return &ServerConfig{
		Listen:           transport.DefaultSocketPath,
		HandshakeTimeout: broker.DefaultHandshakeTimeout,
		NFCQueue:         16,
		Devices:          broker.DefaultDevices(),
		Log:              LogConfig{Level: "info", Format: "text"},
	}
}

// LoadServer returns the broker defaults overlaid with the YAML file at
// path and the environment. A file that lists devices replaces the default
// device set.
func LoadServer(path string) (*ServerConfig, error) {
	cfg := DefaultServer()
	if path != "" {
		cfg.Devices = nil
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
		if cfg.Devices == nil {
			cfg.Devices = broker.DefaultDevices()
		}
	}
	if err := parseEnvPrefix(cfg, "BROKER_"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *ServerConfig) Validate() error {
	var errs []error
	if _, err := transport.ParseEndpoint(c.Listen); err != nil {
		errs = append(errs, fmt.Errorf("listen: %w", err))
	}
	if c.HandshakeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("handshake_timeout must be positive, got %s", c.HandshakeTimeout))
	}
	if c.PrintDelay < 0 {
		errs = append(errs, fmt.Errorf("print_delay must not be negative, got %s", c.PrintDelay))
	}
	if len(c.Devices) == 0 {
		errs = append(errs, errors.New("devices: none configured"))
	}
	seen := make(map[uint8]string, len(c.Devices))
	for _, d := range c.Devices {
		if d.ID == 0 {
			errs = append(errs, fmt.Errorf("devices: %s has id 0", d.Name))
		}
		if prev, dup := seen[d.ID]; dup {
			errs = append(errs, fmt.Errorf("devices: %s and %s share id %d", prev, d.Name, d.ID))
		}
		seen[d.ID] = d.Name
		if _, err := broker.NewDevice(d.Kind, broker.DeviceOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("devices: %s: %w", d.Name, err))
		}
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	return errors.Join(errs...)
}

// DeviceOptions returns the options for building the configured devices.
func (c *ServerConfig) DeviceOptions() broker.DeviceOptions {
	return broker.DeviceOptions{PrintDelay: c.PrintDelay, NFCQueue: c.NFCQueue}
}

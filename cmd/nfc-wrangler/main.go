// nfc-wrangler reads NFC tags through the hatbox broker and reacts to them
// on the hat's neopixel strip.
//
// Each tag's printable prefix is compared against the access token derived
// from the configured secret; a match blinks the strip white. With effects
// enabled, a tag reading "solid", "blink", "pulse", "rainbow" or
// "rainbow_wave" starts that effect.
//
// Configuration is read from --config (YAML), then HATBOX_* environment
// variables, then flags. SIGINT or SIGTERM stops the loop after the current
// read; losing the broker connection exits with status 1.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/hatbox-go/hatbox/internal/config"
	"github.com/hatbox-go/hatbox/internal/logging"
	"github.com/hatbox-go/hatbox/pkg/wrangler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var flags config.Flags
	flagSet := pflag.NewFlagSet("nfc-wrangler", pflag.ContinueOnError)
	flags.AddFlags(flagSet)

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	cfg, err := flags.Resolve(flagSet)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	protocolLogger, closeProtocol, err := logging.Protocol(cfg.Log.ProtocolLog, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeProtocol(); err != nil {
			logger.Warn("close protocol log", "error", err)
		}
	}()

	wcfg, err := cfg.WranglerConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	wcfg.Logger = logger

	ccfg := cfg.ClientConfig()
	ccfg.Logger = protocolLogger

	daemon, err := wrangler.New(wrangler.ClientDialer(cfg.Broker.Endpoint, ccfg), wcfg)
	if err != nil {
		return err
	}
	stopSignals := daemon.NotifySignals(os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger.Info("starting nfc-wrangler",
		"endpoint", cfg.Broker.Endpoint,
		"token_source", cfg.Token.Source,
		"effects", cfg.Effects.Enabled,
	)
	return daemon.Run(context.Background())
}

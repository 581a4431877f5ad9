// hatbox-broker is a simulated hat broker. It serves the hatbox protocol on
// a local socket and drives simulated devices: an NFC reader, a neopixel
// strip, a switch and a printer by default.
//
// Every line read from stdin is presented to the NFC reader as one tag
// scan, so
//
//	printf 'rainbow\n' | hatbox-broker --listen /tmp/hatbox.socket
//
// answers the next ReadData with "rainbow".
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/hatbox-go/hatbox/internal/config"
	"github.com/hatbox-go/hatbox/internal/logging"
	"github.com/hatbox-go/hatbox/pkg/broker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		listen      string
		logLevel    string
		protocolLog string
		noStdin     bool
	)
	flagSet := pflag.NewFlagSet("hatbox-broker", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to YAML broker config")
	flagSet.StringVar(&listen, "listen", "", "endpoint to listen on (path, unix://path or tcp://host:port)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flagSet.StringVar(&protocolLog, "protocol-log", "", "write a CBOR protocol capture to this file")
	flagSet.BoolVar(&noStdin, "no-stdin", false, "do not read tag scans from stdin")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("listen") {
		cfg.Listen = listen
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flagSet.Changed("protocol-log") {
		cfg.Log.ProtocolLog = protocolLog
	}
	if err := cfg.Validate(); err != nil {
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
	defer closeProtocol()

	srv := broker.NewServer(broker.ServerConfig{
		Endpoint:         cfg.Listen,
		HandshakeTimeout: cfg.HandshakeTimeout,
		Logger:           logger,
		ProtocolLogger:   protocolLogger,
	})
	if err := srv.RegisterSpecs(cfg.Devices, cfg.DeviceOptions()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !noStdin {
		if reader, ok := srv.NFCReader(); ok {
			go feedTags(ctx, os.Stdin, reader, logger)
		}
	}

	return srv.Serve(ctx)
}

// feedTags presents each line of r to the reader as a tag scan.
func feedTags(ctx context.Context, r io.Reader, reader *broker.NFCReader, logger *slog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() && ctx.Err() == nil {
		line := scanner.Bytes()
		if !reader.Present(line) {
			logger.Warn("tag queue full, scan dropped", "data", string(line))
			continue
		}
		logger.Info("tag presented", "len", len(line), "pending", reader.Pending())
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("stop reading tags", "error", err)
	}
}

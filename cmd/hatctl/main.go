// hatctl sends commands to the hatbox broker.
//
// Usage:
//
//	hatctl send <device> <command> [args...]
//	hatctl shell
//	hatctl demo
//
// Devices are addressed by id or by the names of the default layout
// (nfc, neopixel, switch, printer).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/hatbox-go/hatbox/internal/logging"
	"github.com/hatbox-go/hatbox/pkg/client"
	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/transport"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

type options struct {
	endpoint    string
	timeout     time.Duration
	protocolLog string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("hatctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.StringVar(&opts.endpoint, "endpoint", "unix://"+transport.DefaultSocketPath, "broker endpoint")
	fs.DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "per-command timeout")
	fs.StringVar(&opts.protocolLog, "protocol-log", "", "write protocol events to this file")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hatctl [flags] send <device> <command> [args...] | shell | demo")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing subcommand")
	}

	sub, rest := fs.Arg(0), fs.Args()[1:]
	switch sub {
	case "send":
		if len(rest) < 2 {
			return fmt.Errorf("send: want <device> <command> [args...]")
		}
	case "shell", "demo":
	default:
		return fmt.Errorf("unknown subcommand %q", sub)
	}

	logger := logging.FromEnv(slog.LevelWarn)
	protocolLogger, closeProtocol, err := logging.Protocol(opts.protocolLog, logger)
	if err != nil {
		return err
	}
	defer closeProtocol()

	ctx := context.Background()
	conn, err := client.Connect(ctx, opts.endpoint, client.Config{
		Timeout: opts.timeout,
		Logger:  protocolLogger,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	switch sub {
	case "shell":
		return shell(ctx, conn)
	case "demo":
		return demo(ctx, conn, out)
	}
	return send(ctx, conn, out, rest)
}

func send(ctx context.Context, conn *client.Conn, out io.Writer, args []string) error {
	device, err := parseDevice(args[0])
	if err != nil {
		return err
	}
	cmd, err := parseCommand(args[1], args[2:])
	if err != nil {
		return err
	}
	resp, err := conn.Send(ctx, device, cmd)
	if err != nil {
		return err
	}
	defer resp.Release()
	printResponse(out, device, cmd, resp)
	return nil
}

func printResponse(out io.Writer, device wire.DeviceID, cmd command.Command, resp *client.Response) {
	if resp.Len() == 0 {
		fmt.Fprintf(out, "%s -> device %d: ok\n", cmd, device)
		return
	}
	fmt.Fprintf(out, "%s -> device %d: %q\n", cmd, device, resp.Payload())
}

// demo walks through every device of the default layout once.
func demo(ctx context.Context, conn *client.Conn, out io.Writer) error {
	steps := []struct {
		device string
		name   string
		args   []string
	}{
		{"switch", "enable", nil},
		{"neopixel", "solid", []string{"#00ff00"}},
		{"neopixel", "blink", []string{"3", "#ffffff", "2"}},
		{"neopixel", "rainbow", []string{"3", "10"}},
		{"printer", "print", []string{"HELLO", "WORLD"}},
		{"nfc", "read", []string{"2s"}},
		{"switch", "disable", nil},
	}
	for _, s := range steps {
		err := send(ctx, conn, out, append([]string{s.device, s.name}, s.args...))
		switch {
		case err == nil:
		case client.IsNoData(err):
			fmt.Fprintln(out, "no tag presented")
		case errors.Is(err, client.ErrConnection):
			return err
		default:
			fmt.Fprintf(out, "%s %s: %v\n", s.device, s.name, err)
		}
	}
	return nil
}

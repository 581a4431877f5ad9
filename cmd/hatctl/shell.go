package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/hatbox-go/hatbox/pkg/client"
)

func shell(ctx context.Context, conn *client.Conn) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "hatbox> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	fmt.Fprintf(out, "Connected to %s (broker %s). Type 'help' for commands.\n", conn.Endpoint(), conn.BrokerID())

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "help", "?":
			printHelp(out)
			continue
		case "quit", "exit", "q":
			return nil
		}

		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: <device> <command> [args...]")
			continue
		}
		if err := send(ctx, conn, out, fields); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			if errors.Is(err, client.ErrConnection) {
				return err
			}
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Usage: <device> <command> [args...]

Devices: nfc, neopixel, switch, printer, or a numeric id

Commands:
  enable | disable | toggle
  solid <#rrggbb>
  blink <duration> <#rrggbb> [frequency]
  pulse <duration> <#rrggbb> <frequency> [blanks]
  rainbow <duration> <frequency>
  rainbow_wave <duration> <frequency>
  read [timeout]
  print <text...>

  help               - Show this help
  quit               - Exit`)
}

// Command hatbox-log views and analyzes hatbox protocol capture files.
//
// Captures are written by nfc-wrangler, hatbox-broker and hatctl when run
// with --protocol-log.
//
// Usage:
//
//	hatbox-log <command> [flags] <file.hlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View broker-side wire events
//	hatbox-log view --role broker --layer wire broker.hlog
//
//	# Export requests to the neopixel as CSV
//	hatbox-log export --format csv --device 2 wrangler.hlog
//
//	# Keep one connection
//	hatbox-log filter --conn-id abc12345-... -o one.hlog broker.hlog
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/hatbox-go/hatbox/cmd/hatbox-log/commands"
)

const usage = `hatbox-log - hatbox protocol log analyzer

Usage:
  hatbox-log <command> [flags] <file.hlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "hatbox-log <command> --help" for more information about a command.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("command required")
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "view":
		return runView(args)
	case "export":
		return runExport(args)
	case "filter":
		return runFilter(args)
	case "stats":
		return runStats(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func newFlagSet(name, synopsis string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "hatbox-log %s - %s\n\nUsage:\n  hatbox-log %s [flags] <file.hlog>\n\nFlags:\n", name, synopsis, name)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and returns the single capture path.
func parse(fs *pflag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", errors.New("log file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string) error {
	fs := newFlagSet("view", "view log file in human-readable format")
	var sel commands.FilterFlags
	sel.AddFlags(fs)

	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	filter, err := sel.Filter()
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func runExport(args []string) error {
	fs := newFlagSet("export", "export log file to JSONL or CSV format")
	format := fs.String("format", "jsonl", "output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "output file (default: stdout)")
	var sel commands.FilterFlags
	sel.AddFlags(fs)

	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	filter, err := sel.Filter()
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output, filter)
}

func runFilter(args []string) error {
	fs := newFlagSet("filter", "filter log file and write to new file")
	output := fs.StringP("output", "o", "", "output file (required)")
	var sel commands.FilterFlags
	sel.AddFlags(fs)

	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return errors.New("output file (-o) required")
	}
	filter, err := sel.Filter()
	if err != nil {
		return err
	}
	return commands.RunFilter(path, *output, filter, os.Stdout)
}

func runStats(args []string) error {
	fs := newFlagSet("stats", "show statistics about the log file")
	path, err := parse(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}

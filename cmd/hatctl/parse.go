package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// deviceNames maps the broker's default device layout.
var deviceNames = map[string]wire.DeviceID{
	"nfc":      1,
	"neopixel": 2,
	"switch":   3,
	"printer":  4,
}

func parseDevice(s string) (wire.DeviceID, error) {
	if id, ok := deviceNames[strings.ToLower(s)]; ok {
		return id, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid device %q: want a name (nfc, neopixel, switch, printer) or id 1-255", s)
	}
	return wire.DeviceID(n), nil
}

// parseCommand builds a command from its name and positional arguments.
// Optional trailing arguments fall back to the protocol defaults.
func parseCommand(name string, args []string) (command.Command, error) {
	switch strings.ToLower(name) {
	case "enable", "on", "disable", "off", "toggle":
		if err := nargs(name, args, 0, 0); err != nil {
			return nil, err
		}
		switch strings.ToLower(name) {
		case "enable", "on":
			return command.Enable(), nil
		case "disable", "off":
			return command.Disable(), nil
		}
		return command.Toggle(), nil

	case "solid":
		if err := nargs(name, args, 1, 1); err != nil {
			return nil, err
		}
		c, err := command.ParseColor(args[0])
		if err != nil {
			return nil, err
		}
		return command.SolidColor(c), nil

	case "blink":
		if err := nargs(name, args, 2, 3); err != nil {
			return nil, err
		}
		d, c, err := durationAndColor(args)
		if err != nil {
			return nil, err
		}
		f, err := optInt(args, 2, command.DefaultBlinkFrequency)
		if err != nil {
			return nil, err
		}
		return command.Blink(d, c, f)

	case "pulse":
		if err := nargs(name, args, 3, 4); err != nil {
			return nil, err
		}
		d, c, err := durationAndColor(args)
		if err != nil {
			return nil, err
		}
		f, err := atoi("frequency", args[2])
		if err != nil {
			return nil, err
		}
		b, err := optInt(args, 3, command.DefaultPulseBlanks)
		if err != nil {
			return nil, err
		}
		return command.Pulse(d, c, f, b)

	case "rainbow", "rainbow_wave", "wave":
		if err := nargs(name, args, 2, 2); err != nil {
			return nil, err
		}
		d, err := atoi("duration", args[0])
		if err != nil {
			return nil, err
		}
		f, err := atoi("frequency", args[1])
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(name, "rainbow") {
			return command.Rainbow(d, f)
		}
		return command.RainbowWave(d, f)

	case "read":
		if err := nargs(name, args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return command.ReadData(), nil
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return nil, fmt.Errorf("read: invalid timeout %q: %w", args[0], err)
		}
		return command.ReadDataTimeout(d)

	case "print":
		if len(args) == 0 {
			return nil, fmt.Errorf("print: missing text")
		}
		return command.Print(strings.Join(args, " "))
	}
	return nil, fmt.Errorf("unknown command %q", name)
}

func nargs(name string, args []string, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return fmt.Errorf("%s: expected %d argument(s), got %d", name, lo, len(args))
		}
		return fmt.Errorf("%s: expected %d to %d arguments, got %d", name, lo, hi, len(args))
	}
	return nil
}

func durationAndColor(args []string) (int, command.Color, error) {
	d, err := atoi("duration", args[0])
	if err != nil {
		return 0, command.Color{}, err
	}
	c, err := command.ParseColor(args[1])
	if err != nil {
		return 0, command.Color{}, err
	}
	return d, c, nil
}

func optInt(args []string, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	return atoi("argument", args[i])
}

func atoi(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, s)
	}
	return n, nil
}

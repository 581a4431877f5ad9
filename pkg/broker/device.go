package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Device errors, mapped to response statuses.
var (
	ErrUnsupported = errors.New("command not supported by device")
	ErrNoData      = errors.New("no data")
)

// Device is a simulated hat device.
type Device interface {
	// Kind returns the device class ("nfc", "neopixel", "printer", "switch").
	Kind() string

	// Supports reports whether the device understands commands of kind k.
	Supports(k wire.CommandKind) bool

	// Handle executes cmd. Returned bytes become the response payload for
	// synchronous commands.
	Handle(ctx context.Context, cmd command.Command) ([]byte, error)
}

// Expirer is implemented by devices whose timed effects end on their own.
type Expirer interface {
	// Expire ends effect if it is still running.
	Expire(effect command.Command)
}

func unsupported(d Device, cmd command.Command) error {
	return fmt.Errorf("%w: %s cannot %s", ErrUnsupported, d.Kind(), cmd.Kind())
}

// statusFor maps a device error to a response status.
func statusFor(err error) wire.Status {
	switch {
	case err == nil:
		return wire.StatusSuccess
	case errors.Is(err, ErrUnsupported):
		return wire.StatusUnsupportedCommand
	case errors.Is(err, ErrNoData):
		return wire.StatusNoData
	default:
		return wire.StatusDeviceFailure
	}
}

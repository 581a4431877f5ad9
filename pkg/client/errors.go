package client

import (
	"errors"
	"fmt"

	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Error classes returned by Connect and Send.
var (
	ErrConnection = errors.New("connection error")
	ErrProtocol   = errors.New("protocol error")
	ErrDevice     = errors.New("device error")
	ErrTimeout    = errors.New("timeout")
)

// ErrClosed is wrapped together with ErrConnection after Close.
var ErrClosed = errors.New("connection closed by caller")

// DeviceError is the broker's report that a device rejected or failed
// a command.
type DeviceError struct {
	Device  wire.DeviceID
	Kind    wire.CommandKind
	Status  wire.Status
	Message string
}

func (e *DeviceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("device %s: %s: %s", e.Device, e.Kind, e.Status)
	}
	return fmt.Sprintf("device %s: %s: %s: %s", e.Device, e.Kind, e.Status, e.Message)
}

// Is reports whether target is ErrDevice.
func (e *DeviceError) Is(target error) bool {
	return target == ErrDevice
}

// IsNoData reports whether err is a read that finished without a tag.
func IsNoData(err error) bool {
	var de *DeviceError
	return errors.As(err, &de) && de.Status == wire.StatusNoData
}

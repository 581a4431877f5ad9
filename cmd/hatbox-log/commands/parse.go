// Package commands implements the hatbox-log CLI commands.
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/hatbox-go/hatbox/pkg/log"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// FilterFlags are the event selection flags shared by view, export and
// filter.
type FilterFlags struct {
	ConnID    string
	Device    string
	Role      string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// AddFlags registers the selection flags on fs.
func (f *FilterFlags) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConnID, "conn-id", "", "filter by connection ID")
	fs.StringVar(&f.Device, "device", "", "filter by target device id (request events)")
	fs.StringVar(&f.Role, "role", "", "filter by logging side (client, broker)")
	fs.StringVar(&f.TimeStart, "time-start", "", "filter by start time (RFC3339)")
	fs.StringVar(&f.TimeEnd, "time-end", "", "filter by end time (RFC3339)")
	fs.StringVar(&f.Layer, "layer", "", "filter by layer (transport, wire, device)")
	fs.StringVar(&f.Direction, "direction", "", "filter by direction (in, out)")
	fs.StringVar(&f.Category, "category", "", "filter by category (message, state, error)")
}

// Filter converts the flags into a log.Filter.
func (f *FilterFlags) Filter() (log.Filter, error) {
	filter := log.Filter{ConnectionID: f.ConnID}

	if f.Device != "" {
		n, err := strconv.ParseUint(f.Device, 10, 8)
		if err != nil {
			return filter, fmt.Errorf("invalid device: %s", f.Device)
		}
		id := wire.DeviceID(n)
		filter.Device = &id
	}
	if f.Role != "" {
		r, err := parseRole(f.Role)
		if err != nil {
			return filter, err
		}
		filter.Role = &r
	}
	if f.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, f.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if f.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, f.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if f.Layer != "" {
		l, err := parseLayer(f.Layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if f.Direction != "" {
		d, err := parseDirection(f.Direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if f.Category != "" {
		c, err := parseCategory(f.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	return filter, nil
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "device":
		return log.LayerDevice, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or device)", s)
	}
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}

func parseRole(s string) (log.Role, error) {
	switch strings.ToLower(s) {
	case "client":
		return log.RoleClient, nil
	case "broker":
		return log.RoleBroker, nil
	default:
		return 0, fmt.Errorf("invalid role: %s (must be client or broker)", s)
	}
}

package transport

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSocketPath is where the broker listens unless configured otherwise.
const DefaultSocketPath = "/var/run/hatbox.socket"

// ErrInvalidEndpoint indicates an endpoint string that cannot be parsed.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Endpoint is a parsed broker address.
type Endpoint struct {
	Network string // "unix" or "tcp"
	Address string
}

// ParseEndpoint accepts a socket path, unix:///path or tcp://host:port.
// An empty string yields the default socket path.
func ParseEndpoint(s string) (Endpoint, error) {
	switch {
	case s == "":
		return Endpoint{Network: "unix", Address: DefaultSocketPath}, nil
	case strings.HasPrefix(s, "unix://"):
		path := strings.TrimPrefix(s, "unix://")
		if path == "" {
			return Endpoint{}, fmt.Errorf("%w: %q: empty path", ErrInvalidEndpoint, s)
		}
		return Endpoint{Network: "unix", Address: path}, nil
	case strings.HasPrefix(s, "tcp://"):
		addr := strings.TrimPrefix(s, "tcp://")
		if !strings.Contains(addr, ":") {
			return Endpoint{}, fmt.Errorf("%w: %q: want host:port", ErrInvalidEndpoint, s)
		}
		return Endpoint{Network: "tcp", Address: addr}, nil
	case strings.Contains(s, "://"):
		return Endpoint{}, fmt.Errorf("%w: %q: unsupported scheme", ErrInvalidEndpoint, s)
	default:
		return Endpoint{Network: "unix", Address: s}, nil
	}
}

// String returns the endpoint in URL form.
func (e Endpoint) String() string {
	return e.Network + "://" + e.Address
}

package transport

import (
	"fmt"
	"net"
	"os"
)

// Listen opens a listener on ep. For unix endpoints any stale socket file is
// removed first, and the returned cleanup removes the socket again.
func Listen(ep Endpoint) (net.Listener, func(), error) {
	if ep.Network == "unix" {
		if err := os.Remove(ep.Address); err != nil && !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("removing stale socket %s: %w", ep.Address, err)
		}
	}

	ln, err := net.Listen(ep.Network, ep.Address)
	if err != nil {
		return nil, nil, fmt.Errorf("listening on %s: %w", ep, err)
	}

	cleanup := func() {
		ln.Close()
		if ep.Network == "unix" {
			os.Remove(ep.Address)
		}
	}
	return ln, cleanup, nil
}

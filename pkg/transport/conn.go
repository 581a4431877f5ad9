package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hatbox-go/hatbox/pkg/log"
)

// ErrConnectionClosed indicates use of a closed Conn.
var ErrConnectionClosed = errors.New("connection closed")

// Conn is a framed stream connection. Sends and receives are serialized
// separately, so one goroutine may read while another writes.
type Conn struct {
	conn   net.Conn
	framer *Framer
	id     string

	closeCh   chan struct{}
	closeOnce sync.Once
	writeMu   sync.Mutex
	readMu    sync.Mutex
}

// ConnConfig configures a Conn.
type ConnConfig struct {
	// MaxMessageSize bounds frame bodies in both directions (default 4096).
	MaxMessageSize uint32

	// Logger receives frame events. Nil disables frame logging.
	Logger log.Logger

	// Role tags logged events with the local side.
	Role log.Role
}

// NewConn wraps an established net.Conn. Each Conn gets a fresh UUID used
// to correlate its protocol log events.
func NewConn(nc net.Conn, cfg ConnConfig) *Conn {
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	c := &Conn{
		conn:    nc,
		framer:  NewFramerWithMaxSize(nc, cfg.MaxMessageSize),
		id:      uuid.New().String(),
		closeCh: make(chan struct{}),
	}
	if cfg.Logger != nil {
		c.framer.SetLogger(cfg.Logger, c.id, cfg.Role)
	}
	return c
}

// Dial connects to ep. When ctx has no deadline, timeout bounds the dial.
func Dial(ctx context.Context, ep Endpoint, timeout time.Duration, cfg ConnConfig) (*Conn, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var dialer net.Dialer
	nc, err := dialer.DialContext(ctx, ep.Network, ep.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", ep, err)
	}
	return NewConn(nc, cfg), nil
}

// ID returns the connection's UUID.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send writes one frame. A zero deadline means no deadline.
func (c *Conn) Send(data []byte, deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.isClosed() {
		return ErrConnectionClosed
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return c.framer.WriteFrame(data)
}

// Receive reads one frame. A zero deadline means no deadline.
func (c *Conn) Receive(deadline time.Time) ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if c.isClosed() {
		return nil, ErrConnectionClosed
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	return c.framer.ReadFrame()
}

// Close closes the connection. Safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

// Interrupt expires any pending deadline so a blocked Send or Receive
// returns promptly. Later calls set their own deadlines again.
func (c *Conn) Interrupt() {
	past := time.Unix(1, 0)
	c.conn.SetReadDeadline(past)
	c.conn.SetWriteDeadline(past)
}

// Done is closed when Close is called.
func (c *Conn) Done() <-chan struct{} {
	return c.closeCh
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

// IsTimeout reports whether err is a deadline expiry that left the stream
// usable.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) && !errors.Is(err, ErrPartialFrame)
}

// IsBroken reports whether a Send or Receive error leaves the stream
// unusable. Every failure except a clean timeout does.
func IsBroken(err error) bool {
	return err != nil && !IsTimeout(err)
}

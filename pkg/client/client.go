package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/log"
	"github.com/hatbox-go/hatbox/pkg/transport"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Defaults.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultDialTimeout = 5 * time.Second

	// maxAbandoned bounds the set of timed-out message ids kept for
	// discarding late responses.
	maxAbandoned = 64
)

// Config configures a client connection.
type Config struct {
	// Timeout bounds each Send and the handshake (default 10s).
	Timeout time.Duration

	// DialTimeout bounds connection establishment (default 5s).
	DialTimeout time.Duration

	// MaxMessageSize bounds frame bodies (default 4096).
	MaxMessageSize uint32

	// ClientID is announced in the handshake (default: random UUID).
	ClientID string

	// Logger receives protocol events. Nil disables protocol logging.
	Logger log.Logger
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = wire.MaxMessageSize
	}
	if c.ClientID == "" {
		c.ClientID = uuid.New().String()
	}
}

// Conn is a connection to the broker. Send calls are serialized.
type Conn struct {
	tc       *transport.Conn
	endpoint transport.Endpoint
	config   Config
	logger   log.Logger
	brokerID string

	mu        sync.Mutex
	lastID    uint32
	abandoned map[uint32]struct{}

	dead      atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Connect dials the broker at endpoint and performs the handshake.
// All failures wrap ErrConnection.
func Connect(ctx context.Context, endpoint string, config Config) (*Conn, error) {
	config.applyDefaults()

	ep, err := transport.ParseEndpoint(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	tc, err := transport.Dial(ctx, ep, config.DialTimeout, transport.ConnConfig{
		MaxMessageSize: config.MaxMessageSize,
		Logger:         config.Logger,
		Role:           log.RoleClient,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	c := &Conn{
		tc:        tc,
		endpoint:  ep,
		config:    config,
		logger:    log.OrNoop(config.Logger),
		abandoned: make(map[uint32]struct{}),
	}

	if err := c.handshake(ctx); err != nil {
		tc.Close()
		c.logState("HANDSHAKE", "CLOSED", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	c.logState("HANDSHAKE", "CONNECTED", "")
	return c, nil
}

func (c *Conn) handshake(ctx context.Context) error {
	deadline := c.deadline(ctx)

	data, err := wire.EncodeHello(&wire.Hello{
		Magic:    wire.Magic,
		Version:  wire.ProtocolVersion,
		ClientID: c.config.ClientID,
	})
	if err != nil {
		return err
	}
	if err := c.tc.Send(data, deadline); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}
	c.logMessage(log.DirectionOut, &log.MessageEvent{Type: log.MessageTypeHello})

	data, err = c.tc.Receive(deadline)
	if err != nil {
		return fmt.Errorf("receive hello ack: %w", err)
	}
	ack, err := wire.DecodeHelloAck(data)
	if err != nil {
		return err
	}
	status := ack.Status
	c.logMessage(log.DirectionIn, &log.MessageEvent{Type: log.MessageTypeHelloAck, Status: &status})

	if !ack.Status.IsSuccess() {
		return fmt.Errorf("broker rejected handshake: %s: %s", ack.Status, ack.Message)
	}
	c.brokerID = ack.BrokerID
	return nil
}

// ID returns the connection id used in protocol logs.
func (c *Conn) ID() string {
	return c.tc.ID()
}

// Endpoint returns the broker endpoint.
func (c *Conn) Endpoint() string {
	return c.endpoint.String()
}

// BrokerID returns the id the broker announced in the handshake.
func (c *Conn) BrokerID() string {
	return c.brokerID
}

// Dead reports whether the transport was lost.
func (c *Conn) Dead() bool {
	return c.dead.Load()
}

// Send issues cmd to device and waits for the broker's response. The wait
// is bounded by the earlier of ctx's deadline and Config.Timeout.
func (c *Conn) Send(ctx context.Context, device wire.DeviceID, cmd command.Command) (*Response, error) {
	if cmd == nil {
		return nil, &command.ValidationError{Command: "Send", Field: "cmd", Value: nil, Reason: "nil command"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil, fmt.Errorf("%w: %w", ErrConnection, ErrClosed)
	}
	if c.dead.Load() {
		return nil, fmt.Errorf("%w: connection is dead", ErrConnection)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	stop := context.AfterFunc(ctx, c.tc.Interrupt)
	defer stop()

	deadline := c.deadline(ctx)
	id := c.nextID()
	req := wire.Request{MessageID: id, DeviceID: device, Command: cmd.Encode()}
	start := time.Now()

	data, err := wire.EncodeRequest(&req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	if err := c.tc.Send(data, deadline); err != nil {
		switch {
		case errors.Is(err, transport.ErrMessageTooLarge):
			return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
		case transport.IsTimeout(err):
			return nil, c.timeoutError(ctx, err)
		default:
			return nil, c.fail(err)
		}
	}
	kind := req.Command.Kind
	c.logMessage(log.DirectionOut, &log.MessageEvent{
		Type:      log.MessageTypeRequest,
		MessageID: id,
		Device:    &device,
		Kind:      &kind,
	})

	for {
		data, err := c.tc.Receive(deadline)
		if err != nil {
			if transport.IsTimeout(err) {
				c.abandon(id)
				return nil, c.timeoutError(ctx, err)
			}
			if errors.Is(err, transport.ErrMessageTooLarge) ||
				errors.Is(err, transport.ErrMessageEmpty) ||
				errors.Is(err, transport.ErrFrameTruncated) {
				c.dead.Store(true)
				c.logState("CONNECTED", "DEAD", err.Error())
				return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
			}
			return nil, c.fail(err)
		}

		respID, err := wire.PeekMessageID(data)
		if err != nil {
			c.abandon(id)
			return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		if _, late := c.abandoned[respID]; late {
			delete(c.abandoned, respID)
			c.logMessage(log.DirectionIn, &log.MessageEvent{
				Type:      log.MessageTypeResponse,
				MessageID: respID,
				Discarded: true,
			})
			continue
		}
		if respID != id {
			c.abandon(id)
			return nil, fmt.Errorf("%w: unexpected message id %d, want %d", ErrProtocol, respID, id)
		}

		resp, err := wire.DecodeResponse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
		}

		elapsed := time.Since(start)
		status := resp.Status
		c.logMessage(log.DirectionIn, &log.MessageEvent{
			Type:           log.MessageTypeResponse,
			MessageID:      id,
			Device:         &device,
			Status:         &status,
			PayloadSize:    len(resp.Payload),
			ProcessingTime: &elapsed,
		})

		return c.classify(device, kind, resp)
	}
}

func (c *Conn) classify(device wire.DeviceID, kind wire.CommandKind, resp *wire.Response) (*Response, error) {
	switch resp.Status {
	case wire.StatusSuccess:
		return &Response{Status: resp.Status, Message: resp.Message, payload: resp.Payload}, nil
	case wire.StatusMalformedRequest, wire.StatusVersionMismatch:
		return nil, fmt.Errorf("%w: broker answered %s: %s", ErrProtocol, resp.Status, resp.Message)
	case wire.StatusInvalidDevice, wire.StatusUnsupportedCommand, wire.StatusDeviceFailure, wire.StatusNoData:
		return nil, &DeviceError{Device: device, Kind: kind, Status: resp.Status, Message: resp.Message}
	default:
		return nil, fmt.Errorf("%w: unknown status %d", ErrProtocol, resp.Status)
	}
}

// Close releases the connection. Safe to call more than once; later Sends
// fail with ErrConnection.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.tc.Close()
		c.logState("CONNECTED", "CLOSED", "closed by caller")
	})
	return c.closeErr
}

func (c *Conn) nextID() uint32 {
	c.lastID++
	if c.lastID == 0 {
		c.lastID = 1
	}
	return c.lastID
}

func (c *Conn) abandon(id uint32) {
	if len(c.abandoned) >= maxAbandoned {
		clear(c.abandoned)
	}
	c.abandoned[id] = struct{}{}
}

func (c *Conn) deadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		return d
	}
	return deadline
}

func (c *Conn) timeoutError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrTimeout, ctxErr)
	}
	return fmt.Errorf("%w: no response within %s: %w", ErrTimeout, c.config.Timeout, err)
}

// fail marks the connection dead after a transport failure.
func (c *Conn) fail(err error) error {
	if c.dead.CompareAndSwap(false, true) {
		c.logState("CONNECTED", "DEAD", err.Error())
	}
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

func (c *Conn) logMessage(dir log.Direction, msg *log.MessageEvent) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.tc.ID(),
		Direction:    dir,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		LocalRole:    log.RoleClient,
		RemoteAddr:   c.endpoint.String(),
		PeerID:       c.brokerID,
		Message:      msg,
	})
}

func (c *Conn) logState(oldState, newState, reason string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.tc.ID(),
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		LocalRole:    log.RoleClient,
		RemoteAddr:   c.endpoint.String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

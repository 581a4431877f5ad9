package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/duration"
	"github.com/hatbox-go/hatbox/pkg/log"
	"github.com/hatbox-go/hatbox/pkg/transport"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// DefaultHandshakeTimeout bounds how long a new connection may take to
// send its Hello.
const DefaultHandshakeTimeout = 5 * time.Second

// ServerConfig configures a broker server.
type ServerConfig struct {
	// Endpoint to listen on (default /var/run/hatbox.socket).
	Endpoint string

	// HandshakeTimeout bounds the Hello exchange (default 5s).
	HandshakeTimeout time.Duration

	// MaxMessageSize bounds frame bodies (default 4096).
	MaxMessageSize uint32

	// Logger for operational logging (default slog.Default()).
	Logger *slog.Logger

	// ProtocolLogger receives protocol events (optional).
	ProtocolLogger log.Logger
}

type registered struct {
	dev Device
	mu  sync.Mutex
}

// Server accepts client connections and dispatches their commands to
// registered devices.
type Server struct {
	config   ServerConfig
	logger   *slog.Logger
	plog     log.Logger
	brokerID string

	devicesMu sync.RWMutex
	devices   map[wire.DeviceID]*registered

	listener net.Listener
	cleanup  func()

	conns   map[*transport.Conn]struct{}
	connsMu sync.Mutex

	timers *duration.Manager

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a broker with no devices.
func NewServer(config ServerConfig) *Server {
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = wire.MaxMessageSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:   config,
		logger:   logger,
		plog:     log.OrNoop(config.ProtocolLogger),
		brokerID: uuid.New().String(),
		devices:  make(map[wire.DeviceID]*registered),
		conns:    make(map[*transport.Conn]struct{}),
		timers:   duration.NewManager(),
	}
	s.timers.OnExpiry(s.expireEffect)
	return s
}

// Register adds dev under id. Registering an id twice is an error.
func (s *Server) Register(id wire.DeviceID, dev Device) error {
	s.devicesMu.Lock()
	defer s.devicesMu.Unlock()

	if _, exists := s.devices[id]; exists {
		return fmt.Errorf("device %s already registered", id)
	}
	s.devices[id] = &registered{dev: dev}
	s.logger.Info("registered device", "id", uint8(id), "kind", dev.Kind())
	return nil
}

// Device returns the device registered under id.
func (s *Server) Device(id wire.DeviceID) (Device, bool) {
	s.devicesMu.RLock()
	defer s.devicesMu.RUnlock()
	r, ok := s.devices[id]
	if !ok {
		return nil, false
	}
	return r.dev, true
}

// ID returns the id announced to clients.
func (s *Server) ID() string {
	return s.brokerID
}

// Start listens and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}

	ep, err := transport.ParseEndpoint(s.config.Endpoint)
	if err != nil {
		return err
	}
	ln, cleanup, err := transport.Listen(ep)
	if err != nil {
		return err
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.listener = ln
	s.cleanup = cleanup
	s.running.Store(true)

	s.logger.Info("broker listening", "endpoint", ep.String(), "broker_id", s.brokerID)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Serve runs the server until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Stop closes the listener and every connection, and waits for in-flight
// commands to finish.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.cancel()
	s.cleanup()
	s.timers.CancelAll()

	s.connsMu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	s.logger.Info("broker stopped")
	return nil
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		nc, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(nc)
	}
}

func (s *Server) handleConnection(nc net.Conn) {
	defer s.wg.Done()

	conn := transport.NewConn(nc, transport.ConnConfig{
		MaxMessageSize: s.config.MaxMessageSize,
		Logger:         s.config.ProtocolLogger,
		Role:           log.RoleBroker,
	})
	defer conn.Close()

	s.connsMu.Lock()
	if !s.running.Load() {
		s.connsMu.Unlock()
		return
	}
	s.conns[conn] = struct{}{}
	s.connsMu.Unlock()

	defer func() {
		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()
	}()

	logger := s.logger.With("conn_id", conn.ID())

	clientID, err := s.handshake(conn)
	if err != nil {
		logger.Warn("handshake failed", "error", err)
		s.logState(conn, "", "", "REJECTED", err.Error())
		return
	}
	logger = logger.With("client_id", clientID)
	logger.Info("client connected")
	s.logState(conn, clientID, "", "CONNECTED", "")

	reason := s.serveConn(conn, clientID, logger)

	logger.Info("client disconnected", "reason", reason)
	s.logState(conn, clientID, "CONNECTED", "DISCONNECTED", reason)
}

func (s *Server) handshake(conn *transport.Conn) (string, error) {
	data, err := conn.Receive(time.Now().Add(s.config.HandshakeTimeout))
	if err != nil {
		return "", fmt.Errorf("receive hello: %w", err)
	}

	ack := wire.HelloAck{Version: wire.ProtocolVersion, BrokerID: s.brokerID}
	hello, err := wire.DecodeHello(data)
	switch {
	case err != nil:
		ack.Status = wire.StatusMalformedRequest
		ack.Message = err.Error()
	case hello.Version != wire.ProtocolVersion:
		ack.Status = wire.StatusVersionMismatch
		ack.Message = fmt.Sprintf("broker speaks version %d, client sent %d", wire.ProtocolVersion, hello.Version)
		err = errors.New(ack.Message)
	}

	out, encErr := wire.EncodeHelloAck(&ack)
	if encErr != nil {
		return "", encErr
	}
	if sendErr := conn.Send(out, time.Now().Add(s.config.HandshakeTimeout)); sendErr != nil {
		return "", fmt.Errorf("send hello ack: %w", sendErr)
	}
	if err != nil {
		return "", err
	}
	return hello.ClientID, nil
}

// serveConn handles requests until the connection ends and returns why.
func (s *Server) serveConn(conn *transport.Conn, clientID string, logger *slog.Logger) string {
	for {
		data, err := conn.Receive(time.Time{})
		if err != nil {
			if errors.Is(err, transport.ErrConnectionClosed) || !s.running.Load() {
				return "broker stopping"
			}
			return err.Error()
		}

		start := time.Now()
		resp := s.handleRequest(conn, clientID, data, logger)

		out, err := wire.EncodeResponse(resp)
		if err != nil {
			logger.Error("encode response", "error", err)
			continue
		}
		if err := conn.Send(out, time.Now().Add(s.config.HandshakeTimeout)); err != nil {
			return fmt.Sprintf("send response: %v", err)
		}

		elapsed := time.Since(start)
		status := resp.Status
		s.logMessage(conn, clientID, log.DirectionOut, &log.MessageEvent{
			Type:           log.MessageTypeResponse,
			MessageID:      resp.MessageID,
			Status:         &status,
			PayloadSize:    len(resp.Payload),
			ProcessingTime: &elapsed,
		})
	}
}

func (s *Server) handleRequest(conn *transport.Conn, clientID string, data []byte, logger *slog.Logger) *wire.Response {
	req, err := wire.DecodeRequest(data)
	if err != nil {
		id, _ := wire.PeekMessageID(data)
		logger.Warn("malformed request", "msg_id", id, "error", err)
		return &wire.Response{MessageID: id, Status: wire.StatusMalformedRequest, Message: err.Error()}
	}

	kind := req.Command.Kind
	s.logMessage(conn, clientID, log.DirectionIn, &log.MessageEvent{
		Type:      log.MessageTypeRequest,
		MessageID: req.MessageID,
		Device:    &req.DeviceID,
		Kind:      &kind,
	})

	cmd, err := command.Decode(req.Command)
	if err != nil {
		logger.Warn("malformed command", "msg_id", req.MessageID, "error", err)
		return &wire.Response{MessageID: req.MessageID, Status: wire.StatusMalformedRequest, Message: err.Error()}
	}

	s.devicesMu.RLock()
	reg, ok := s.devices[req.DeviceID]
	s.devicesMu.RUnlock()
	if !ok {
		return &wire.Response{
			MessageID: req.MessageID,
			Status:    wire.StatusInvalidDevice,
			Message:   fmt.Sprintf("no device %s", req.DeviceID),
		}
	}

	if command.IsAsync(cmd) {
		if err := s.runAsync(reg, req.DeviceID, cmd, logger); err != nil {
			return &wire.Response{MessageID: req.MessageID, Status: statusFor(err), Message: err.Error()}
		}
		return &wire.Response{MessageID: req.MessageID, Status: wire.StatusSuccess}
	}

	reg.mu.Lock()
	payload, err := reg.dev.Handle(s.ctx, cmd)
	reg.mu.Unlock()
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			logger.Warn("command failed", "device", req.DeviceID.String(), "command", cmd.String(), "error", err)
		}
		return &wire.Response{MessageID: req.MessageID, Status: statusFor(err), Message: err.Error()}
	}
	return &wire.Response{MessageID: req.MessageID, Status: wire.StatusSuccess, Payload: payload}
}

// runAsync checks that the device supports cmd, then runs it in the
// background under the device lock.
func (s *Server) runAsync(reg *registered, id wire.DeviceID, cmd command.Command, logger *slog.Logger) error {
	if !reg.dev.Supports(cmd.Kind()) {
		return unsupported(reg.dev, cmd)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		reg.mu.Lock()
		defer reg.mu.Unlock()

		if _, err := reg.dev.Handle(s.ctx, cmd); err != nil {
			logger.Warn("async command failed", "device", id.String(), "command", cmd.String(), "error", err)
			return
		}
		s.trackEffect(reg, id, cmd)
		s.plog.Log(log.Event{
			Timestamp: time.Now(),
			Layer:     log.LayerDevice,
			Category:  log.CategoryState,
			LocalRole: log.RoleBroker,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityDevice,
				NewState: cmd.String(),
				Reason:   id.String(),
			},
		})
	}()
	return nil
}

// trackEffect starts or cancels the expiry timer for an effect the device
// just accepted.
func (s *Server) trackEffect(reg *registered, id wire.DeviceID, cmd command.Command) {
	if _, ok := reg.dev.(Expirer); !ok {
		return
	}
	if d := duration.Of(cmd); d > 0 {
		s.timers.SetTimer(id, d, cmd)
		return
	}
	s.timers.CancelTimer(id)
}

func (s *Server) expireEffect(id wire.DeviceID, effect command.Command) {
	s.devicesMu.RLock()
	reg, ok := s.devices[id]
	s.devicesMu.RUnlock()
	if !ok {
		return
	}
	exp, ok := reg.dev.(Expirer)
	if !ok {
		return
	}

	reg.mu.Lock()
	exp.Expire(effect)
	reg.mu.Unlock()

	s.logger.Debug("effect expired", "device", id.String(), "command", effect.String())
	s.plog.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerDevice,
		Category:  log.CategoryState,
		LocalRole: log.RoleBroker,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDevice,
			OldState: effect.String(),
			NewState: "idle",
			Reason:   id.String(),
		},
	})
}

func (s *Server) logMessage(conn *transport.Conn, clientID string, dir log.Direction, msg *log.MessageEvent) {
	s.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: conn.ID(),
		Direction:    dir,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		LocalRole:    log.RoleBroker,
		PeerID:       clientID,
		Message:      msg,
	})
}

func (s *Server) logState(conn *transport.Conn, clientID, oldState, newState, reason string) {
	s.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: conn.ID(),
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		LocalRole:    log.RoleBroker,
		RemoteAddr:   conn.RemoteAddr().String(),
		PeerID:       clientID,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

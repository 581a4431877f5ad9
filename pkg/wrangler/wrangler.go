package wrangler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hatbox-go/hatbox/pkg/client"
	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/connection"
	"github.com/hatbox-go/hatbox/pkg/tagdata"
	"github.com/hatbox-go/hatbox/pkg/token"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Sender is the daemon's view of a broker connection. *client.Conn
// implements it.
type Sender interface {
	Send(ctx context.Context, device wire.DeviceID, cmd command.Command) (*client.Response, error)
	Close() error
}

// Dialer opens the broker connection.
type Dialer func(ctx context.Context) (Sender, error)

// ClientDialer returns a Dialer that connects with client.Connect.
func ClientDialer(endpoint string, cfg client.Config) Dialer {
	return func(ctx context.Context) (Sender, error) {
		conn, err := client.Connect(ctx, endpoint, cfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// State is the daemon's lifecycle state.
type State int32

const (
	// StateIdle is a daemon that has not been run yet.
	StateIdle State = iota

	// StateRunning means Run is connected and reading tags.
	StateRunning

	// StateStopping is entered on a stop request or a fatal error.
	StateStopping

	// StateStopped means the connection has been released.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("STATE_%d", int32(s))
	}
}

// iteration holds the buffers of one loop pass. Both are zeroed at the
// start of every pass.
type iteration struct {
	card  tagdata.CardBuffer
	token token.Buffer
}

func (it *iteration) reset() {
	it.card.Reset()
	it.token.Reset()
}

// Daemon is the NFC request loop.
type Daemon struct {
	config Config
	dial   Dialer
	logger *slog.Logger
	read   command.Command
	match  command.Command

	state atomic.Int32
	stop  atomic.Bool
	wake  chan struct{}
}

// New creates a daemon that connects with dial.
func New(dial Dialer, config Config) (*Daemon, error) {
	if dial == nil {
		return nil, errors.New("wrangler: nil dialer")
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("wrangler: %w", err)
	}

	var read command.Command = command.ReadData()
	if config.ReadTimeout > 0 {
		rd, err := command.ReadDataTimeout(config.ReadTimeout)
		if err != nil {
			return nil, fmt.Errorf("wrangler: %w", err)
		}
		read = rd
	}

	return &Daemon{
		config: config,
		dial:   dial,
		logger: config.Logger,
		read:   read,
		match:  MatchEffect(),
		wake:   make(chan struct{}, 1),
	}, nil
}

// State returns the current lifecycle state.
func (d *Daemon) State() State {
	return State(d.state.Load())
}

// Stop asks the loop to finish after the current iteration. It never
// blocks and is safe to call from any goroutine, any number of times.
func (d *Daemon) Stop() {
	d.stop.Store(true)
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Stopped reports whether Stop has been called.
func (d *Daemon) Stopped() bool {
	return d.stop.Load()
}

// Run connects to the broker and wrangles tags until Stop is called or
// ctx is done, in which case it returns nil. Failing to connect or losing
// the connection returns an error matching client.ErrConnection. Run may
// be called once.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return errors.New("wrangler: already started")
	}

	conn, err := d.dial(ctx)
	if err != nil {
		d.state.Store(int32(StateStopped))
		if !errors.Is(err, client.ErrConnection) {
			err = fmt.Errorf("%w: %w", client.ErrConnection, err)
		}
		d.logger.Error("failed to connect to broker", "error", err)
		return err
	}
	d.logger.Info("connected to broker")

	var it iteration
	clean := false
	defer func() { d.shutdown(conn, &it, clean) }()

	// Sleeps end early on Stop; sends only on ctx.
	sleepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-d.wake:
			cancel()
		case <-sleepCtx.Done():
		}
	}()

	backoff := connection.NewBackoffWithConfig(connection.BackoffConfig{
		Initial: d.config.Yield,
		Max:     d.config.MaxBackoff,
		Jitter:  connection.JitterFactor,
	})

	for !d.stop.Load() && ctx.Err() == nil {
		delay, err := d.iterate(ctx, conn, &it, backoff)
		if err != nil {
			d.state.Store(int32(StateStopping))
			d.logger.Error("lost broker connection", "error", err)
			return err
		}
		if err := connection.Sleep(sleepCtx, delay); err != nil {
			break
		}
	}

	d.state.Store(int32(StateStopping))
	clean = true
	return nil
}

// shutdown releases the connection and clears the buffers. It runs once,
// on every exit path of Run.
func (d *Daemon) shutdown(conn Sender, it *iteration, clean bool) {
	if err := conn.Close(); err != nil {
		d.logger.Warn("close broker connection", "error", err)
	}
	it.reset()
	d.state.Store(int32(StateStopped))
	if clean {
		d.logger.Info("wrangling completed")
	}
}

// iterate runs one read-sanitize-compare-dispatch pass and returns how
// long to pause before the next. A non-nil error is fatal.
func (d *Daemon) iterate(ctx context.Context, conn Sender, it *iteration, backoff *connection.Backoff) (time.Duration, error) {
	it.reset()

	d.logger.Debug("awaiting tag")
	resp, err := conn.Send(ctx, d.config.NFC, d.read)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrConnection):
			return 0, err
		case errors.Is(err, client.ErrTimeout):
			delay := backoff.Next()
			d.logger.Warn("tag read timed out", "error", err, "attempts", backoff.Attempts(), "retry_in", delay)
			return delay, nil
		case client.IsNoData(err):
			backoff.Reset()
			d.logger.Debug("no tag presented")
		default:
			backoff.Reset()
			d.logger.Warn("tag read failed", "error", err)
		}
		return d.config.Yield, nil
	}
	backoff.Reset()

	n := tagdata.Sanitize(resp.Payload(), &it.card)
	raw := resp.Len()
	resp.Release()
	d.logger.Info("received tag data", "data", it.card.String(), "len", n, "raw_len", raw)

	if err := token.Derive(d.config.Token, &it.token); err != nil {
		d.logger.Error("derive access token", "error", err)
	} else if token.Equal(it.card.Window(token.Size), &it.token) {
		d.logger.Info("access token matched")
		if err := d.dispatch(ctx, conn, d.match); err != nil {
			return 0, err
		}
	}

	if d.config.Effects.Enabled {
		if err := d.runEffect(ctx, conn, &it.card); err != nil {
			return 0, err
		}
	}
	return d.config.Yield, nil
}

// runEffect starts the effect the card names, if any.
func (d *Daemon) runEffect(ctx context.Context, conn Sender, card *tagdata.CardBuffer) error {
	if card.Len() == 0 {
		d.logger.Debug("tag carries no printable data")
		return nil
	}

	cmd, err := d.config.Effects.Command(card.String())
	if err != nil {
		d.logger.Warn("received invalid command", "data", card.String())
		return nil
	}
	return d.dispatch(ctx, conn, cmd)
}

// dispatch sends cmd to the neopixel. Only connection loss is returned.
func (d *Daemon) dispatch(ctx context.Context, conn Sender, cmd command.Command) error {
	resp, err := conn.Send(ctx, d.config.Neopixel, cmd)
	if err != nil {
		if errors.Is(err, client.ErrConnection) {
			return err
		}
		d.logger.Warn("effect failed", "command", cmd.String(), "error", err)
		return nil
	}
	resp.Release()
	d.logger.Info("effect started", "command", cmd.String())
	return nil
}

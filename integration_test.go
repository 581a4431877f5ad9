package hatbox_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatbox-go/hatbox/pkg/broker"
	"github.com/hatbox-go/hatbox/pkg/client"
	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/token"
	"github.com/hatbox-go/hatbox/pkg/wire"
	"github.com/hatbox-go/hatbox/pkg/wrangler"
)

const e2eToken = "K3yT0k3nZZ"

type e2e struct {
	srv      *broker.Server
	reader   *broker.NFCReader
	neopixel *broker.Neopixel
	daemon   *wrangler.Daemon
	done     chan error
}

func startE2E(t *testing.T) *e2e {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir, err := os.MkdirTemp("", "hb")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	endpoint := filepath.Join(dir, "b.sock")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := broker.NewServer(broker.ServerConfig{Endpoint: endpoint, Logger: logger})
	require.NoError(t, srv.RegisterSpecs(broker.DefaultDevices(), broker.DeviceOptions{PrinterOut: io.Discard}))
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Stop() })

	reader, ok := srv.NFCReader()
	require.True(t, ok)
	dev, ok := srv.Device(wire.DeviceNeopixel)
	require.True(t, ok)

	cfg := wrangler.DefaultConfig()
	cfg.Token = token.Static(e2eToken)
	cfg.ReadTimeout = 200 * time.Millisecond
	cfg.Yield = 10 * time.Millisecond
	cfg.Logger = logger

	daemon, err := wrangler.New(wrangler.ClientDialer(endpoint, client.Config{Timeout: 2 * time.Second}), cfg)
	require.NoError(t, err)

	e := &e2e{
		srv:      srv,
		reader:   reader,
		neopixel: dev.(*broker.Neopixel),
		daemon:   daemon,
		done:     make(chan error, 1),
	}
	go func() { e.done <- daemon.Run(context.Background()) }()
	t.Cleanup(func() {
		daemon.Stop()
		select {
		case <-e.done:
		case <-time.After(5 * time.Second):
			t.Error("wrangler did not stop")
		}
	})
	return e
}

func (e *e2e) nextEffect(t *testing.T) command.Command {
	t.Helper()
	select {
	case cmd := <-e.neopixel.Effects():
		return cmd
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for an effect")
		return nil
	}
}

func TestE2E_TokenTagBlinks(t *testing.T) {
	e := startE2E(t)

	require.True(t, e.reader.Present([]byte(e2eToken+"\n\x00trailing")))

	want, err := command.Blink(5, command.White, command.DefaultBlinkFrequency)
	require.NoError(t, err)
	assert.Equal(t, want, e.nextEffect(t))
}

func TestE2E_EffectTag(t *testing.T) {
	e := startE2E(t)

	require.True(t, e.reader.Present([]byte("rainbow_wave")))

	cmd := e.nextEffect(t)
	assert.Equal(t, wire.KindRainbowWave, cmd.Kind())

	require.True(t, e.reader.Present([]byte("solid")))
	assert.Equal(t, command.SolidColor(command.White), e.nextEffect(t))
}

func TestE2E_BrokerLossStopsWrangler(t *testing.T) {
	e := startE2E(t)

	require.Eventually(t, func() bool { return e.srv.ConnectionCount() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, e.srv.Stop())

	select {
	case err := <-e.done:
		assert.True(t, errors.Is(err, client.ErrConnection), "got %v", err)
		e.done <- err
	case <-time.After(5 * time.Second):
		t.Fatal("wrangler kept running after the broker stopped")
	}
	assert.Equal(t, wrangler.StateStopped, e.daemon.State())
}

package broker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatbox-go/hatbox/pkg/client"
	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/transport"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startBroker(t *testing.T, printerOut io.Writer) (*Server, string) {
	t.Helper()

	// Unix socket paths are length-limited; keep the directory short.
	dir, err := os.MkdirTemp("", "hb")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	endpoint := filepath.Join(dir, "b.sock")

	srv := NewServer(ServerConfig{
		Endpoint: endpoint,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, srv.RegisterSpecs(DefaultDevices(), DeviceOptions{PrinterOut: printerOut}))
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Stop() })
	return srv, endpoint
}

func dial(t *testing.T, endpoint string) *client.Conn {
	t.Helper()
	c, err := client.Connect(context.Background(), endpoint, client.Config{Timeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNeopixelEffect(t *testing.T) {
	srv, endpoint := startBroker(t, io.Discard)
	c := dial(t, endpoint)

	dev, _ := srv.Device(wire.DeviceNeopixel)
	neo := dev.(*Neopixel)

	blink, err := command.Blink(5, command.White, command.DefaultBlinkFrequency)
	require.NoError(t, err)

	resp, err := c.Send(context.Background(), wire.DeviceNeopixel, blink)
	require.NoError(t, err)
	assert.Empty(t, resp.Payload())

	select {
	case got := <-neo.Effects():
		assert.Equal(t, command.Command(blink), got)
	case <-time.After(2 * time.Second):
		t.Fatal("effect never started")
	}
	assert.Equal(t, command.Command(blink), neo.Current())
	assert.Equal(t, srv.ID(), c.BrokerID())
}

func TestTimedEffectExpires(t *testing.T) {
	srv, endpoint := startBroker(t, io.Discard)
	c := dial(t, endpoint)

	dev, _ := srv.Device(wire.DeviceNeopixel)
	neo := dev.(*Neopixel)

	blink, err := command.Blink(1, command.White, command.DefaultBlinkFrequency)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), wire.DeviceNeopixel, blink)
	require.NoError(t, err)
	<-neo.Effects()

	assert.Equal(t, command.Command(blink), neo.Current())
	assert.Eventually(t, func() bool { return neo.Current() == nil }, 3*time.Second, 20*time.Millisecond)
	assert.Len(t, neo.History(), 1)
}

func TestUntimedEffectOutlivesTimer(t *testing.T) {
	srv, endpoint := startBroker(t, io.Discard)
	c := dial(t, endpoint)

	dev, _ := srv.Device(wire.DeviceNeopixel)
	neo := dev.(*Neopixel)

	blink, err := command.Blink(1, command.White, command.DefaultBlinkFrequency)
	require.NoError(t, err)
	solid := command.SolidColor(command.Color{R: 0xff})

	_, err = c.Send(context.Background(), wire.DeviceNeopixel, blink)
	require.NoError(t, err)
	<-neo.Effects()
	_, err = c.Send(context.Background(), wire.DeviceNeopixel, solid)
	require.NoError(t, err)
	<-neo.Effects()

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, command.Command(solid), neo.Current())
}

func TestReadDataDeliversTag(t *testing.T) {
	srv, endpoint := startBroker(t, io.Discard)
	c := dial(t, endpoint)

	reader, ok := srv.NFCReader()
	require.True(t, ok)
	require.True(t, reader.Present([]byte("rainbow")))

	read, _ := command.ReadDataTimeout(time.Second)
	resp, err := c.Send(context.Background(), wire.DeviceNFC, read)
	require.NoError(t, err)
	assert.Equal(t, "rainbow", string(resp.Payload()))
	assert.Zero(t, reader.Pending())
}

func TestReadDataNoTag(t *testing.T) {
	_, endpoint := startBroker(t, io.Discard)
	c := dial(t, endpoint)

	read, _ := command.ReadDataTimeout(50 * time.Millisecond)
	_, err := c.Send(context.Background(), wire.DeviceNFC, read)
	require.ErrorIs(t, err, client.ErrDevice)
	assert.True(t, client.IsNoData(err))
}

func TestDeviceErrors(t *testing.T) {
	_, endpoint := startBroker(t, io.Discard)
	c := dial(t, endpoint)

	printCmd, _ := command.Print("hi")

	tests := []struct {
		name   string
		device wire.DeviceID
		cmd    command.Command
		status wire.Status
	}{
		{"unknown device", 42, command.Enable(), wire.StatusInvalidDevice},
		{"print on neopixel", wire.DeviceNeopixel, printCmd, wire.StatusUnsupportedCommand},
		{"toggle on reader", wire.DeviceNFC, command.Toggle(), wire.StatusUnsupportedCommand},
		{"read on switch", 3, command.ReadData(), wire.StatusUnsupportedCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Send(context.Background(), tt.device, tt.cmd)
			var de *client.DeviceError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, tt.status, de.Status)
		})
	}
}

func TestSwitchAndPrinter(t *testing.T) {
	out := &syncBuffer{}
	srv, endpoint := startBroker(t, out)
	c := dial(t, endpoint)

	_, err := c.Send(context.Background(), 3, command.Toggle())
	require.NoError(t, err)
	printCmd, _ := command.Print("HELLO WORLD")
	_, err = c.Send(context.Background(), 4, printCmd)
	require.NoError(t, err)

	dev, _ := srv.Device(3)
	sw := dev.(*Switch)
	assert.Eventually(t, sw.On, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return out.String() == "HELLO WORLD\n" }, 2*time.Second, 10*time.Millisecond)
}

func TestHandshakeVersionMismatch(t *testing.T) {
	_, endpoint := startBroker(t, io.Discard)

	ep, _ := transport.ParseEndpoint(endpoint)
	tc, err := transport.Dial(context.Background(), ep, time.Second, transport.ConnConfig{})
	require.NoError(t, err)
	defer tc.Close()

	hello, _ := wire.EncodeHello(&wire.Hello{Magic: wire.Magic, Version: 9})
	require.NoError(t, tc.Send(hello, time.Now().Add(time.Second)))

	data, err := tc.Receive(time.Now().Add(time.Second))
	require.NoError(t, err)
	ack, err := wire.DecodeHelloAck(data)
	require.NoError(t, err)
	assert.Equal(t, wire.StatusVersionMismatch, ack.Status)

	_, err = tc.Receive(time.Now().Add(time.Second))
	assert.True(t, transport.IsBroken(err), "broker should hang up, got %v", err)
}

func TestMalformedCommand(t *testing.T) {
	_, endpoint := startBroker(t, io.Discard)

	ep, _ := transport.ParseEndpoint(endpoint)
	tc, err := transport.Dial(context.Background(), ep, time.Second, transport.ConnConfig{})
	require.NoError(t, err)
	defer tc.Close()

	hello, _ := wire.EncodeHello(&wire.Hello{Magic: wire.Magic, Version: wire.ProtocolVersion})
	require.NoError(t, tc.Send(hello, time.Time{}))
	_, err = tc.Receive(time.Now().Add(time.Second))
	require.NoError(t, err)

	// ENABLE must not carry a color.
	req, _ := wire.EncodeRequest(&wire.Request{
		MessageID: 7,
		DeviceID:  3,
		Command:   wire.Command{Kind: wire.KindEnable, Color: []byte{1, 2, 3}},
	})
	require.NoError(t, tc.Send(req, time.Time{}))

	data, err := tc.Receive(time.Now().Add(time.Second))
	require.NoError(t, err)
	resp, err := wire.DecodeResponse(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), resp.MessageID)
	assert.Equal(t, wire.StatusMalformedRequest, resp.Status)
}

func TestRegisterDuplicate(t *testing.T) {
	srv := NewServer(ServerConfig{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, srv.Register(5, NewSwitch()))
	assert.Error(t, srv.Register(5, NewSwitch()))

	_, err := NewDevice("toaster", DeviceOptions{})
	assert.Error(t, err)
}

func TestStopRemovesSocket(t *testing.T) {
	srv, endpoint := startBroker(t, io.Discard)
	c := dial(t, endpoint)

	require.NoError(t, srv.Stop())
	_, err := os.Stat(endpoint)
	assert.True(t, os.IsNotExist(err))

	_, err = c.Send(context.Background(), wire.DeviceNFC, command.ReadData())
	assert.ErrorIs(t, err, client.ErrConnection)
	assert.NoError(t, srv.Stop())
}

func TestStopInterruptsPendingRead(t *testing.T) {
	srv, endpoint := startBroker(t, io.Discard)
	c := dial(t, endpoint)

	done := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), wire.DeviceNFC, command.ReadData())
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		srv.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a pending read")
	}
	assert.Error(t, <-done)
}

package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/hatbox-go/hatbox/pkg/wire"
)

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	var called bool
	l := OrNoop(LoggerFunc(func(Event) { called = true }))
	l.Log(Event{})
	if !called {
		t.Error("LoggerFunc not called")
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	var a, b int
	m := NewMultiLogger(LoggerFunc(func(Event) { a++ }), nil, LoggerFunc(func(Event) { b++ }))
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	m.Log(Event{})
	m.Log(Event{})
	if a != 2 || b != 2 {
		t.Errorf("a=%d b=%d, want 2 and 2", a, b)
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	adapter := NewSlogAdapter(logger)

	dev := wire.DeviceNeopixel
	kind := wire.KindBlink
	adapter.Log(Event{
		ConnectionID: "conn-9",
		Direction:    DirectionOut,
		Layer:        LayerWire,
		Message:      &MessageEvent{Type: MessageTypeRequest, MessageID: 5, Device: &dev, Kind: &kind},
	})

	out := buf.String()
	for _, want := range []string{"conn_id=conn-9", "msg_type=REQUEST", "device=NEOPIXEL", "kind=BLINK", "direction=OUT"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapterSkipsWhenDebugDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	NewSlogAdapter(logger).Log(Event{ConnectionID: "x", Frame: &FrameEvent{Size: 4}})
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %s", buf.String())
	}
}

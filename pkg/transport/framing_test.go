package transport

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/hatbox-go/hatbox/pkg/log"
)

// countingWriter records each Write call.
type countingWriter struct {
	bytes.Buffer
	calls int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.calls++
	return w.Buffer.Write(p)
}

func TestFrameRoundTrip(t *testing.T) {
	var buf countingWriter
	fw := NewFrameWriter(&buf)

	messages := [][]byte{{0x01}, []byte("hello"), bytes.Repeat([]byte{0xab}, DefaultMaxMessageSize)}
	for _, m := range messages {
		if err := fw.WriteFrame(m); err != nil {
			t.Fatalf("WriteFrame failed: %v", err)
		}
	}
	if buf.calls != len(messages) {
		t.Errorf("Write called %d times, want one per frame (%d)", buf.calls, len(messages))
	}

	fr := NewFrameReader(&buf)
	for i, want := range messages {
		got, err := fr.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d failed: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d mismatch", i)
		}
	}
	if _, err := fr.ReadFrame(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestFrameWriterLimits(t *testing.T) {
	fw := NewFrameWriter(io.Discard)
	if err := fw.WriteFrame(nil); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("empty: got %v", err)
	}
	if err := fw.WriteFrame(make([]byte, DefaultMaxMessageSize+1)); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("oversized: got %v", err)
	}
}

func TestFrameReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr error
	}{
		{"truncated prefix", []byte{0x00, 0x00}, ErrFrameTruncated},
		{"truncated body", []byte{0x00, 0x00, 0x00, 0x05, 'a', 'b'}, ErrFrameTruncated},
		{"zero length", []byte{0x00, 0x00, 0x00, 0x00}, ErrMessageEmpty},
		{"oversized", []byte{0x00, 0x00, 0x10, 0x01}, ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := NewFrameReader(bytes.NewReader(tt.input))
			_, err := fr.ReadFrame()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

type shortWriter struct{ max int }

func (w shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.max {
		return w.max, io.ErrShortWrite
	}
	return len(p), nil
}

func TestFrameWriterPartialWrite(t *testing.T) {
	fw := NewFrameWriter(shortWriter{max: 3})
	err := fw.WriteFrame([]byte("hello"))
	if !errors.Is(err, ErrPartialFrame) {
		t.Fatalf("got %v, want ErrPartialFrame", err)
	}
	if !IsBroken(err) {
		t.Error("partial write should break the stream")
	}
}

func TestFrameReaderTimeoutBeforeData(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	client.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
	_, err := NewFrameReader(client).ReadFrame()
	if !IsTimeout(err) {
		t.Fatalf("got %v, want clean timeout", err)
	}
	if IsBroken(err) {
		t.Error("clean timeout should not break the stream")
	}
}

func TestFrameReaderTimeoutMidFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go server.Write([]byte{0x00, 0x00, 0x00, 0x08, 'a'})

	client.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	_, err := NewFrameReader(client).ReadFrame()
	if !errors.Is(err, ErrPartialFrame) {
		t.Fatalf("got %v, want ErrPartialFrame", err)
	}
	if IsTimeout(err) {
		t.Error("mid-frame timeout must not count as a clean timeout")
	}
}

func TestFramerLogsFrames(t *testing.T) {
	var events []log.Event
	logger := log.LoggerFunc(func(e log.Event) { events = append(events, e) })

	var buf bytes.Buffer
	f := NewFramer(&buf)
	f.SetLogger(logger, "conn-1", log.RoleClient)

	if err := f.WriteFrame(bytes.Repeat([]byte{1}, MaxLogFrameDataSize+10)); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if _, err := f.ReadFrame(); err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	out, in := events[0], events[1]
	if out.Direction != log.DirectionOut || in.Direction != log.DirectionIn {
		t.Errorf("directions: %s, %s", out.Direction, in.Direction)
	}
	if !out.Frame.Truncated || len(out.Frame.Data) != MaxLogFrameDataSize {
		t.Errorf("frame data not truncated: %d bytes", len(out.Frame.Data))
	}
	if out.Frame.Size != FrameSize(MaxLogFrameDataSize+10) {
		t.Errorf("Size = %d", out.Frame.Size)
	}
	if out.ConnectionID != "conn-1" || out.LocalRole != log.RoleClient {
		t.Errorf("event metadata: %+v", out)
	}
}

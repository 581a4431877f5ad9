package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hatbox-go/hatbox/pkg/log"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize is the default maximum frame body size.
	DefaultMaxMessageSize = wire.MaxMessageSize

	// MaxLogFrameDataSize is the maximum frame data size to include in logs.
	MaxLogFrameDataSize = 512
)

// Framing errors.
var (
	// ErrMessageTooLarge indicates the message exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates an empty message.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrFrameTruncated indicates the peer closed the stream mid-frame.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrPartialFrame indicates part of a frame crossed the socket before
	// a failure. The stream is unusable afterwards.
	ErrPartialFrame = errors.New("partial frame")

	// ErrTimeout indicates a deadline expired with the stream still in sync.
	ErrTimeout = errors.New("i/o timeout")
)

// FrameWriter writes length-prefixed frames to an underlying writer.
type FrameWriter struct {
	w              io.Writer
	maxMessageSize uint32
	mu             sync.Mutex
	buf            []byte

	logger log.Logger
	connID string
	role   log.Role
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return NewFrameWriterWithMaxSize(w, DefaultMaxMessageSize)
}

// NewFrameWriterWithMaxSize creates a frame writer with a custom max size.
func NewFrameWriterWithMaxSize(w io.Writer, maxSize uint32) *FrameWriter {
	return &FrameWriter{
		w:              w,
		maxMessageSize: maxSize,
	}
}

// SetLogger configures logging for this writer.
// Pass nil to disable logging.
func (fw *FrameWriter) SetLogger(logger log.Logger, connID string, role log.Role) {
	fw.logger = logger
	fw.connID = connID
	fw.role = role
}

// WriteFrame writes the length prefix and data with one Write call.
// Thread-safe: can be called from multiple goroutines.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if uint32(len(data)) > fw.maxMessageSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), fw.maxMessageSize)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	fw.buf = binary.BigEndian.AppendUint32(fw.buf[:0], uint32(len(data)))
	fw.buf = append(fw.buf, data...)

	n, err := fw.w.Write(fw.buf)
	if err != nil {
		return classify(err, n, "write frame")
	}
	if n != len(fw.buf) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrPartialFrame, n, len(fw.buf))
	}

	if fw.logger != nil {
		fw.logger.Log(makeFrameEvent(data, log.DirectionOut, fw.connID, fw.role))
	}
	return nil
}

// FrameReader reads length-prefixed frames from an underlying reader.
type FrameReader struct {
	r              io.Reader
	maxMessageSize uint32
	lengthBuf      [LengthPrefixSize]byte

	logger log.Logger
	connID string
	role   log.Role
}

// NewFrameReader creates a new frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return NewFrameReaderWithMaxSize(r, DefaultMaxMessageSize)
}

// NewFrameReaderWithMaxSize creates a frame reader with a custom max size.
func NewFrameReaderWithMaxSize(r io.Reader, maxSize uint32) *FrameReader {
	return &FrameReader{
		r:              r,
		maxMessageSize: maxSize,
	}
}

// SetLogger configures logging for this reader.
// Pass nil to disable logging.
func (fr *FrameReader) SetLogger(logger log.Logger, connID string, role log.Role) {
	fr.logger = logger
	fr.connID = connID
	fr.role = role
}

// ReadFrame reads a length-prefixed frame and returns its body.
//
// io.EOF is returned unwrapped when the peer closed between frames.
// An oversized length prefix is reported as ErrMessageTooLarge; the body
// is not consumed, so the stream is out of sync afterwards.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	n, err := io.ReadFull(fr.r, fr.lengthBuf[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, classify(err, n, "read length prefix")
	}

	length := binary.BigEndian.Uint32(fr.lengthBuf[:])
	if length == 0 {
		return nil, ErrMessageEmpty
	}
	if length > fr.maxMessageSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, fr.maxMessageSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrFrameTruncated
		}
		// The prefix is already consumed, so any failure here is partial.
		return nil, classify(err, LengthPrefixSize, "read payload")
	}

	if fr.logger != nil {
		fr.logger.Log(makeFrameEvent(payload, log.DirectionIn, fr.connID, fr.role))
	}
	return payload, nil
}

// SetMaxMessageSize updates the maximum message size.
func (fr *FrameReader) SetMaxMessageSize(size uint32) {
	fr.maxMessageSize = size
}

// classify wraps err with ErrPartialFrame when n bytes of a frame already
// moved, and with ErrTimeout when a deadline expired before any did.
func classify(err error, n int, op string) error {
	switch {
	case n > 0:
		return fmt.Errorf("%w: %s after %d bytes: %w", ErrPartialFrame, op, n, err)
	case errors.Is(err, os.ErrDeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

func makeFrameEvent(data []byte, direction log.Direction, connID string, role log.Role) log.Event {
	frameData := data
	truncated := false
	if len(data) > MaxLogFrameDataSize {
		frameData = data[:MaxLogFrameDataSize]
		truncated = true
	}

	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		LocalRole:    role,
		Frame: &log.FrameEvent{
			Size:      LengthPrefixSize + len(data),
			Data:      frameData,
			Truncated: truncated,
		},
	}
}

// Framer combines frame reading and writing.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a new framer for bidirectional communication.
func NewFramer(rw io.ReadWriter) *Framer {
	return NewFramerWithMaxSize(rw, DefaultMaxMessageSize)
}

// NewFramerWithMaxSize creates a framer with a custom max message size.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize uint32) *Framer {
	return &Framer{
		FrameReader: NewFrameReaderWithMaxSize(rw, maxSize),
		FrameWriter: NewFrameWriterWithMaxSize(rw, maxSize),
	}
}

// SetLogger configures logging for both reader and writer.
func (f *Framer) SetLogger(logger log.Logger, connID string, role log.Role) {
	f.FrameReader.SetLogger(logger, connID, role)
	f.FrameWriter.SetLogger(logger, connID, role)
}

// FrameSize returns the total frame size including the length prefix.
func FrameSize(payloadSize int) int {
	return LengthPrefixSize + payloadSize
}

package broker

import (
	"context"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// NFCReader simulates the tag reader. Tags are queued with Present and
// consumed by ReadData in order.
type NFCReader struct {
	tags chan []byte
}

// NewNFCReader creates a reader that queues up to depth tags.
func NewNFCReader(depth int) *NFCReader {
	if depth <= 0 {
		depth = 16
	}
	return &NFCReader{tags: make(chan []byte, depth)}
}

// Kind implements Device.
func (r *NFCReader) Kind() string { return "nfc" }

// Present queues a tag scan. It returns false when the queue is full.
func (r *NFCReader) Present(data []byte) bool {
	select {
	case r.tags <- append([]byte(nil), data...):
		return true
	default:
		return false
	}
}

// Pending returns the number of queued tags.
func (r *NFCReader) Pending() int {
	return len(r.tags)
}

// Supports implements Device.
func (r *NFCReader) Supports(k wire.CommandKind) bool {
	return k == wire.KindReadData
}

// Handle implements Device. ReadData waits for a tag until its timeout (or
// ctx) expires; without a timeout it waits until ctx is done.
func (r *NFCReader) Handle(ctx context.Context, cmd command.Command) ([]byte, error) {
	read, ok := cmd.(command.ReadDataCommand)
	if !ok {
		return nil, unsupported(r, cmd)
	}

	if timeout, has := read.Timeout(); has {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case data := <-r.tags:
		return data, nil
	default:
	}

	select {
	case data := <-r.tags:
		return data, nil
	case <-ctx.Done():
		return nil, ErrNoData
	}
}


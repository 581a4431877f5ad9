package broker

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Printer simulates the receipt printer by writing lines to an io.Writer.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	delay time.Duration
}

// NewPrinter writes printed text to out after delay, which stands in for
// the physical printer's warm-up.
func NewPrinter(out io.Writer, delay time.Duration) *Printer {
	return &Printer{out: out, delay: delay}
}

// Kind implements Device.
func (p *Printer) Kind() string { return "printer" }

// Supports implements Device.
func (p *Printer) Supports(k wire.CommandKind) bool {
	return k == wire.KindPrint
}

// Handle implements Device.
func (p *Printer) Handle(ctx context.Context, cmd command.Command) ([]byte, error) {
	pc, ok := cmd.(command.PrintCommand)
	if !ok {
		return nil, unsupported(p, cmd)
	}

	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(p.out, pc.Text()); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	return nil, nil
}

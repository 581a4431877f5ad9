package broker

import (
	"context"
	"sync"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Neopixel simulates the light strip by recording the running effect.
type Neopixel struct {
	mu      sync.Mutex
	current command.Command
	history []command.Command
	notify  chan command.Command
}

// NewNeopixel creates a dark strip.
func NewNeopixel() *Neopixel {
	return &Neopixel{notify: make(chan command.Command, 16)}
}

// Kind implements Device.
func (n *Neopixel) Kind() string { return "neopixel" }

// Supports implements Device.
func (n *Neopixel) Supports(k wire.CommandKind) bool {
	switch k {
	case wire.KindSolidColor, wire.KindBlink, wire.KindPulse, wire.KindRainbow, wire.KindRainbowWave:
		return true
	}
	return false
}

// Handle implements Device.
func (n *Neopixel) Handle(_ context.Context, cmd command.Command) ([]byte, error) {
	if !n.Supports(cmd.Kind()) {
		return nil, unsupported(n, cmd)
	}

	n.mu.Lock()
	n.current = cmd
	n.history = append(n.history, cmd)
	n.mu.Unlock()

	select {
	case n.notify <- cmd:
	default:
	}
	return nil, nil
}

// Expire implements Expirer. The strip goes dark unless a newer effect
// has replaced effect.
func (n *Neopixel) Expire(effect command.Command) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == effect {
		n.current = nil
	}
}

// Current returns the running effect, or nil when the strip is dark.
func (n *Neopixel) Current() command.Command {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// History returns every effect started so far.
func (n *Neopixel) History() []command.Command {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]command.Command(nil), n.history...)
}

// Effects delivers effects as they start. Effects are dropped when nobody
// is receiving.
func (n *Neopixel) Effects() <-chan command.Command {
	return n.notify
}

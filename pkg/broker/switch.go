package broker

import (
	"context"
	"sync"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Switch simulates an on/off device such as the headlamp.
type Switch struct {
	mu sync.Mutex
	on bool
}

// NewSwitch creates a switch in the off state.
func NewSwitch() *Switch {
	return &Switch{}
}

// Kind implements Device.
func (s *Switch) Kind() string { return "switch" }

// On reports the switch state.
func (s *Switch) On() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// Supports implements Device.
func (s *Switch) Supports(k wire.CommandKind) bool {
	return k == wire.KindEnable || k == wire.KindDisable || k == wire.KindToggle
}

// Handle implements Device.
func (s *Switch) Handle(_ context.Context, cmd command.Command) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.(type) {
	case command.EnableCommand:
		s.on = true
	case command.DisableCommand:
		s.on = false
	case command.ToggleCommand:
		s.on = !s.on
	default:
		return nil, unsupported(s, cmd)
	}
	return nil, nil
}

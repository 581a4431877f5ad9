package duration

import (
	"errors"
	"sync"
	"time"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

// Duration timer errors.
var (
	ErrTimerNotFound   = errors.New("timer not found")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Of returns how long cmd runs, or zero for commands that run until
// replaced.
func Of(cmd command.Command) time.Duration {
	var secs uint32
	switch c := cmd.(type) {
	case command.BlinkCommand:
		secs = c.Duration
	case command.PulseCommand:
		secs = c.Duration
	case command.RainbowCommand:
		secs = c.Duration
	case command.RainbowWaveCommand:
		secs = c.Duration
	}
	return time.Duration(secs) * time.Second
}

// Timer represents an active effect timer.
type Timer struct {
	// Device running the effect
	Device wire.DeviceID

	// StartTime is when the broker accepted the effect
	StartTime time.Time

	// Duration is the timer duration
	Duration time.Duration

	// Effect is the command that ends on expiry
	Effect command.Command

	timer *time.Timer
}

// ExpiresAt returns when the timer will expire.
func (t *Timer) ExpiresAt() time.Time {
	return t.StartTime.Add(t.Duration)
}

// RemainingTime returns time until expiry.
func (t *Timer) RemainingTime() time.Duration {
	remaining := t.Duration - time.Since(t.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired returns true if the timer has expired.
func (t *Timer) IsExpired() bool {
	return time.Since(t.StartTime) >= t.Duration
}

func (t *Timer) snapshot() *Timer {
	return &Timer{
		Device:    t.Device,
		StartTime: t.StartTime,
		Duration:  t.Duration,
		Effect:    t.Effect,
	}
}

// Manager tracks effect timers by device.
type Manager struct {
	mu       sync.RWMutex
	timers   map[wire.DeviceID]*Timer
	onExpiry func(device wire.DeviceID, effect command.Command)
}

// NewManager creates a new timer manager.
func NewManager() *Manager {
	return &Manager{
		timers: make(map[wire.DeviceID]*Timer),
	}
}

// SetTimer starts a timer for effect on device, replacing any running one.
func (m *Manager) SetTimer(device wire.DeviceID, d time.Duration, effect command.Command) error {
	if d <= 0 {
		return ErrInvalidDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.timers[device]; ok {
		existing.timer.Stop()
	}

	t := &Timer{
		Device:    device,
		StartTime: time.Now(),
		Duration:  d,
		Effect:    effect,
	}
	t.timer = time.AfterFunc(d, func() {
		m.expire(device, t)
	})
	m.timers[device] = t
	return nil
}

// CancelTimer cancels the device's timer without running the expiry
// callback.
func (m *Manager) CancelTimer(device wire.DeviceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[device]
	if !ok {
		return ErrTimerNotFound
	}
	t.timer.Stop()
	delete(m.timers, device)
	return nil
}

// CancelAll cancels every timer.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for device, t := range m.timers {
		t.timer.Stop()
		delete(m.timers, device)
	}
}

// GetTimer returns a copy of the device's timer, or nil if none is running.
func (m *Manager) GetTimer(device wire.DeviceID) *Timer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if t, ok := m.timers[device]; ok {
		return t.snapshot()
	}
	return nil
}

// Count returns the number of running timers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.timers)
}

// OnExpiry sets the callback run when a timer fires.
func (m *Manager) OnExpiry(fn func(device wire.DeviceID, effect command.Command)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpiry = fn
}

func (m *Manager) expire(device wire.DeviceID, t *Timer) {
	m.mu.Lock()
	// A replaced timer may fire before Stop takes effect.
	if m.timers[device] != t {
		m.mu.Unlock()
		return
	}
	delete(m.timers, device)
	callback := m.onExpiry
	m.mu.Unlock()

	if callback != nil {
		callback(device, t.Effect)
	}
}

package duration

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hatbox-go/hatbox/pkg/command"
	"github.com/hatbox-go/hatbox/pkg/wire"
)

func blink(t *testing.T, secs int) command.Command {
	t.Helper()
	c, err := command.Blink(secs, command.White, command.DefaultBlinkFrequency)
	if err != nil {
		t.Fatalf("Blink() error = %v", err)
	}
	return c
}

func TestOf(t *testing.T) {
	pulse, _ := command.Pulse(3, command.White, 2, 0)
	rainbow, _ := command.Rainbow(7, 10)
	wave, _ := command.RainbowWave(0, 10)

	tests := []struct {
		name string
		cmd  command.Command
		want time.Duration
	}{
		{"Blink", blink(t, 5), 5 * time.Second},
		{"Pulse", pulse, 3 * time.Second},
		{"Rainbow", rainbow, 7 * time.Second},
		{"UntimedWave", wave, 0},
		{"Solid", command.SolidColor(command.White), 0},
		{"Enable", command.Enable(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of(tt.cmd); got != tt.want {
				t.Errorf("Of() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimerBasic(t *testing.T) {
	timer := &Timer{
		Device:    wire.DeviceNeopixel,
		StartTime: time.Now(),
		Duration:  60 * time.Second,
	}

	if timer.IsExpired() {
		t.Error("Timer should not be expired immediately")
	}

	remaining := timer.RemainingTime()
	if remaining < 59*time.Second || remaining > 60*time.Second {
		t.Errorf("RemainingTime() = %v, expected ~60s", remaining)
	}

	if got, want := timer.ExpiresAt(), timer.StartTime.Add(timer.Duration); got != want {
		t.Errorf("ExpiresAt() = %v, want %v", got, want)
	}
}

func TestTimerExpired(t *testing.T) {
	timer := &Timer{
		Device:    wire.DeviceNeopixel,
		StartTime: time.Now().Add(-2 * time.Second),
		Duration:  1 * time.Second,
	}

	if !timer.IsExpired() {
		t.Error("Timer should be expired")
	}
	if timer.RemainingTime() != 0 {
		t.Errorf("RemainingTime() = %v, want 0 for expired timer", timer.RemainingTime())
	}
}

func TestManagerSetTimer(t *testing.T) {
	m := NewManager()
	effect := blink(t, 5)

	if err := m.SetTimer(wire.DeviceNeopixel, 5*time.Second, effect); err != nil {
		t.Fatalf("SetTimer() error = %v", err)
	}
	defer m.CancelAll()

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	timer := m.GetTimer(wire.DeviceNeopixel)
	if timer == nil {
		t.Fatal("GetTimer() returned nil")
	}
	if timer.Effect != effect {
		t.Errorf("Timer effect = %v, want %v", timer.Effect, effect)
	}
	if m.GetTimer(wire.DeviceNFC) != nil {
		t.Error("GetTimer() for a device without a timer should be nil")
	}
}

func TestManagerInvalidDuration(t *testing.T) {
	m := NewManager()

	for _, d := range []time.Duration{0, -time.Second} {
		if err := m.SetTimer(wire.DeviceNeopixel, d, blink(t, 0)); err != ErrInvalidDuration {
			t.Errorf("SetTimer(%v) error = %v, want ErrInvalidDuration", d, err)
		}
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestManagerTimerReplacement(t *testing.T) {
	m := NewManager()
	defer m.CancelAll()

	m.SetTimer(wire.DeviceNeopixel, 10*time.Second, blink(t, 10))
	second := blink(t, 20)
	m.SetTimer(wire.DeviceNeopixel, 20*time.Second, second)

	if m.Count() != 1 {
		t.Errorf("Count() = %d after replacement, want 1", m.Count())
	}

	timer := m.GetTimer(wire.DeviceNeopixel)
	if timer == nil {
		t.Fatal("GetTimer() returned nil")
	}
	if timer.Effect != second {
		t.Errorf("Timer effect = %v after replacement, want %v", timer.Effect, second)
	}
	if timer.Duration != 20*time.Second {
		t.Errorf("Timer duration = %v after replacement, want 20s", timer.Duration)
	}
}

func TestManagerCancelTimer(t *testing.T) {
	m := NewManager()

	m.SetTimer(wire.DeviceNeopixel, 5*time.Second, blink(t, 5))

	if err := m.CancelTimer(wire.DeviceNeopixel); err != nil {
		t.Fatalf("CancelTimer() error = %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after cancel, want 0", m.Count())
	}

	if err := m.CancelTimer(wire.DeviceNeopixel); err != ErrTimerNotFound {
		t.Errorf("CancelTimer non-existent error = %v, want ErrTimerNotFound", err)
	}
}

func TestManagerCancelAll(t *testing.T) {
	m := NewManager()

	var called atomic.Bool
	m.OnExpiry(func(wire.DeviceID, command.Command) { called.Store(true) })

	m.SetTimer(2, 20*time.Millisecond, blink(t, 1))
	m.SetTimer(5, 20*time.Millisecond, blink(t, 1))
	m.CancelAll()

	if m.Count() != 0 {
		t.Errorf("Count() = %d after CancelAll, want 0", m.Count())
	}

	time.Sleep(50 * time.Millisecond)
	if called.Load() {
		t.Error("Expiry callback ran for a cancelled timer")
	}
}

func TestManagerTimerExpiry(t *testing.T) {
	m := NewManager()
	effect := blink(t, 1)

	var mu sync.Mutex
	var expiredDevice wire.DeviceID
	var expiredEffect command.Command

	m.OnExpiry(func(device wire.DeviceID, e command.Command) {
		mu.Lock()
		expiredDevice = device
		expiredEffect = e
		mu.Unlock()
	})

	m.SetTimer(wire.DeviceNeopixel, 50*time.Millisecond, effect)
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if expiredDevice != wire.DeviceNeopixel {
		t.Errorf("Expired device = %v, want %v", expiredDevice, wire.DeviceNeopixel)
	}
	if expiredEffect != effect {
		t.Errorf("Expired effect = %v, want %v", expiredEffect, effect)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after expiry, want 0", m.Count())
	}
}

func TestManagerDevicesIndependent(t *testing.T) {
	m := NewManager()
	defer m.CancelAll()

	var mu sync.Mutex
	var expired []wire.DeviceID

	m.OnExpiry(func(device wire.DeviceID, _ command.Command) {
		mu.Lock()
		expired = append(expired, device)
		mu.Unlock()
	})

	m.SetTimer(2, 50*time.Millisecond, blink(t, 1))
	m.SetTimer(5, 150*time.Millisecond, blink(t, 1))

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if len(expired) != 1 || expired[0] != 2 {
		t.Errorf("After 100ms: expected only device 2 expired, got %v", expired)
	}
	mu.Unlock()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if len(expired) != 2 {
		t.Errorf("After 200ms: expected 2 expirations, got %d", len(expired))
	}
	mu.Unlock()
}

func TestTimerReplacementCancelsCallback(t *testing.T) {
	m := NewManager()

	var mu sync.Mutex
	var expirations []command.Command

	m.OnExpiry(func(_ wire.DeviceID, e command.Command) {
		mu.Lock()
		expirations = append(expirations, e)
		mu.Unlock()
	})

	first, second := blink(t, 1), blink(t, 2)
	m.SetTimer(wire.DeviceNeopixel, 100*time.Millisecond, first)

	time.Sleep(50 * time.Millisecond)
	m.SetTimer(wire.DeviceNeopixel, 100*time.Millisecond, second)

	// Past the first timer's expiry.
	time.Sleep(70 * time.Millisecond)

	mu.Lock()
	if len(expirations) != 0 {
		t.Errorf("First timer should have been cancelled, got expirations: %v", expirations)
	}
	mu.Unlock()

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(expirations) != 1 {
		t.Fatalf("Expected 1 expiration from replacement timer, got %d", len(expirations))
	}
	if expirations[0] != second {
		t.Errorf("Expired effect = %v, want %v", expirations[0], second)
	}
}

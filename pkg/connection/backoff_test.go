package connection

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Run("initial value", func(t *testing.T) {
		b := NewBackoff()
		if b.Current() != InitialBackoff {
			t.Errorf("expected %v, got %v", InitialBackoff, b.Current())
		}
		if b.Attempts() != 0 {
			t.Errorf("expected 0 attempts, got %d", b.Attempts())
		}
	})

	t.Run("exponential increase", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: time.Second, Max: 8 * time.Second})

		want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second}
		for i, w := range want {
			if got := b.Next(); got != w {
				t.Errorf("step %d: expected %v, got %v", i, w, got)
			}
		}
		if b.Attempts() != len(want) {
			t.Errorf("expected %d attempts, got %d", len(want), b.Attempts())
		}
	})

	t.Run("jitter bounds", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: time.Second, Jitter: JitterFactor})
		for i := 0; i < 50; i++ {
			d := b.Peek()
			if d < time.Second || d > time.Second+time.Second/4 {
				t.Fatalf("jittered delay %v out of range", d)
			}
		}
	})

	t.Run("reset", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: 100 * time.Millisecond})
		b.Next()
		b.Next()
		b.Reset()
		if b.Current() != 100*time.Millisecond || b.Attempts() != 0 {
			t.Errorf("after reset: current=%v attempts=%d", b.Current(), b.Attempts())
		}
	})

	t.Run("max below initial", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{Initial: time.Second, Max: time.Millisecond})
		b.Next()
		if b.Current() != time.Second {
			t.Errorf("expected max raised to initial, got %v", b.Current())
		}
	})
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep returned %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Sleep not interrupted")
	}

	if err := Sleep(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("zero sleep on canceled ctx: %v", err)
	}
}

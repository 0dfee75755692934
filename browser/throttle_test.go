package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewThrottleUnlimited(t *testing.T) {
	th := NewThrottle(0)
	if th != nil {
		t.Fatalf("NewThrottle(0) = %v, want nil", th)
	}
	for i := 0; i < 100; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() on nil throttle = %v", err)
		}
	}
	if th.Interval() != 0 {
		t.Errorf("Interval() = %v, want 0", th.Interval())
	}
}

func TestThrottleSpacesActions(t *testing.T) {
	th := NewThrottle(20) // 50ms apart
	if th.Interval() != 50*time.Millisecond {
		t.Fatalf("Interval() = %v, want 50ms", th.Interval())
	}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	// first token is free, the next two wait ~50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 actions took %v, want at least ~100ms", elapsed)
	}
}

func TestThrottleCanceled(t *testing.T) {
	th := NewThrottle(0.01) // one action every 100s
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := th.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Wait() did not honour the context deadline")
	}
}

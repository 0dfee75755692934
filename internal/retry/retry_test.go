package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordSleep returns a Sleep func that records requested durations without blocking.
func recordSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func TestDo_Success(t *testing.T) {
	attempts := 0
	var waits []time.Duration
	cfg := Config{MaxRetries: 3, Cooldown: time.Second, Sleep: recordSleep(&waits)}

	err := Do(context.Background(), cfg, nil, func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Do() returned error = %v, want nil", err)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
	if len(waits) != 0 {
		t.Errorf("Do() slept %v, want no sleeps", waits)
	}
}

func TestDo_PermanentError(t *testing.T) {
	attempts := 0
	var waits []time.Duration
	permanentErr := errors.New("permanent")
	cfg := Config{MaxRetries: 3, Cooldown: time.Second, Sleep: recordSleep(&waits)}

	classifier := func(err error) bool {
		return !errors.Is(err, permanentErr)
	}

	err := Do(context.Background(), cfg, classifier, func(ctx context.Context) error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Errorf("Do() returned error = %v, want %v", err, permanentErr)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
	if len(waits) != 0 {
		t.Errorf("Do() slept %v before a permanent error, want none", waits)
	}
}

func TestDo_PermanentMarker(t *testing.T) {
	attempts := 0
	base := errors.New("missing")

	err := Do(context.Background(), Config{MaxRetries: 5}, nil, func(ctx context.Context) error {
		attempts++
		return Permanent(base)
	})

	if !errors.Is(err, base) {
		t.Errorf("Do() returned error = %v, want wrapping %v", err, base)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestDo_RetryableError(t *testing.T) {
	attempts := 0
	successAfter := 2
	var waits []time.Duration
	cfg := Config{MaxRetries: 5, Cooldown: time.Second, Multiplier: 1, Sleep: recordSleep(&waits)}

	err := Do(context.Background(), cfg, IsRetryable, func(ctx context.Context) error {
		attempts++
		if attempts < successAfter {
			return errors.New("temporary")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() returned error = %v, want nil", err)
	}
	if attempts != successAfter {
		t.Errorf("Do() made %d attempts, want %d", attempts, successAfter)
	}
	if len(waits) != 1 || waits[0] != time.Second {
		t.Errorf("Do() waits = %v, want [1s]", waits)
	}
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	attempts := 0
	maxRetries := 3
	tempErr := errors.New("temporary")
	var waits []time.Duration
	var retries []int
	cfg := Config{
		MaxRetries: maxRetries,
		Cooldown:   time.Second,
		Multiplier: 1,
		Sleep:      recordSleep(&waits),
		OnRetry:    func(n int, err error) { retries = append(retries, n) },
	}

	err := Do(context.Background(), cfg, IsRetryable, func(ctx context.Context) error {
		attempts++
		return tempErr
	})

	var retryErr *RetryableError
	if !errors.As(err, &retryErr) {
		t.Fatalf("Do() returned %v, want *RetryableError", err)
	}
	if retryErr.Retries != maxRetries {
		t.Errorf("RetryableError.Retries = %d, want %d", retryErr.Retries, maxRetries)
	}
	if !errors.Is(err, tempErr) {
		t.Errorf("Do() error does not wrap %v", tempErr)
	}
	if attempts != maxRetries+1 {
		t.Errorf("Do() made %d attempts, want %d", attempts, maxRetries+1)
	}
	if len(waits) != maxRetries {
		t.Errorf("Do() slept %d times, want %d", len(waits), maxRetries)
	}
	for i, w := range waits {
		if w != time.Second {
			t.Errorf("wait %d = %v, want fixed 1s cooldown", i, w)
		}
	}
	if len(retries) != 3 || retries[0] != 1 || retries[2] != 3 {
		t.Errorf("OnRetry calls = %v, want [1 2 3]", retries)
	}
}

func TestDo_ZeroRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{MaxRetries: 0}, nil, func(ctx context.Context) error {
		attempts++
		return errors.New("temporary")
	})
	if err == nil {
		t.Fatal("Do() returned nil, want error")
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestDo_GrowingCooldown(t *testing.T) {
	var waits []time.Duration
	cfg := Config{
		MaxRetries:  4,
		Cooldown:    10 * time.Millisecond,
		MaxCooldown: 50 * time.Millisecond,
		Multiplier:  2,
		Sleep:       recordSleep(&waits),
	}

	_ = Do(context.Background(), cfg, nil, func(ctx context.Context) error {
		return errors.New("temporary")
	})

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 50 * time.Millisecond}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait %d = %v, want %v", i, waits[i], want[i])
		}
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	attempts := 0
	cfg := Config{MaxRetries: 5, Cooldown: 100 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())

	err := Do(ctx, cfg, IsRetryable, func(ctx context.Context) error {
		attempts++
		cancel()
		return errors.New("temporary")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() returned error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Sleep() = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep() did not return promptly on a canceled context")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"permanent", Permanent(errors.New("gone")), false},
		{"generic error", errors.New("generic"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxRetries != 3 {
		t.Errorf("DefaultConfig().MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.Cooldown != 1*time.Second {
		t.Errorf("DefaultConfig().Cooldown = %v, want 1s", cfg.Cooldown)
	}
	if cfg.Multiplier != 1.0 {
		t.Errorf("DefaultConfig().Multiplier = %f, want 1.0", cfg.Multiplier)
	}
}

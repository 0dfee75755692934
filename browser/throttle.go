package browser

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out raw DevTools actions using a token bucket with a
// burst of one. A nil Throttle never waits.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle returns a Throttle allowing actionsPerSecond actions.
// Zero or negative means unlimited and yields nil.
func NewThrottle(actionsPerSecond float64) *Throttle {
	if actionsPerSecond <= 0 {
		return nil
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(actionsPerSecond), 1)}
}

// Wait blocks until the next action is allowed or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}

	if t.limiter.Allow() {
		return nil
	}

	reservation := t.limiter.Reserve()
	if !reservation.OK() {
		return fmt.Errorf("throttle: cannot reserve token")
	}

	timer := time.NewTimer(reservation.Delay())
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	}
}

// Interval returns the minimum spacing between actions, or zero if unlimited.
func (t *Throttle) Interval() time.Duration {
	if t == nil {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(t.limiter.Limit()))
}

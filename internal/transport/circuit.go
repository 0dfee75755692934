package transport

import (
	"sync"
	"time"
)

// CircuitState is the state of a Breaker.
type CircuitState int

const (
	// CircuitClosed lets requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen holds requests back until the recovery timeout passes.
	CircuitOpen
	// CircuitHalfOpen lets a single probe request through.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 30 * time.Second
)

// Breaker opens after FailureThreshold consecutive failures. While open,
// Allow reports how long callers should hold off.
type Breaker struct {
	threshold int
	recovery  time.Duration
	now       func() time.Time

	mu          sync.Mutex
	state       CircuitState
	consecutive int
	openedAt    time.Time
	probing     bool
}

// NewBreaker returns a closed Breaker. Non-positive arguments take defaults.
func NewBreaker(threshold int, recovery time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if recovery <= 0 {
		recovery = DefaultRecoveryTimeout
	}
	return &Breaker{threshold: threshold, recovery: recovery, now: time.Now}
}

// Allow returns zero when a request may go out now, or the time left before
// the circuit will accept a probe.
func (b *Breaker) Allow() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitOpen:
		left := b.recovery - b.now().Sub(b.openedAt)
		if left > 0 {
			return left
		}
		b.state = CircuitHalfOpen
		b.probing = true
		return 0
	case CircuitHalfOpen:
		if b.probing {
			// one probe at a time
			return b.recovery
		}
		b.probing = true
		return 0
	default:
		return 0
	}
}

// RecordSuccess closes the circuit.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = CircuitClosed
	b.consecutive = 0
	b.probing = false
}

// RecordFailure counts a transient failure and opens the circuit at the
// threshold. A failed probe reopens it at once.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutive++
	b.probing = false
	if b.state == CircuitHalfOpen || b.consecutive >= b.threshold {
		b.state = CircuitOpen
		b.openedAt = b.now()
	}
}

// Abandon gives back a probe slot taken by Allow when the request never
// produced a result, so the next caller can probe instead.
func (b *Breaker) Abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitHalfOpen {
		b.probing = false
	}
}

// State returns the current state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

package peers

import (
	"sync"
	"time"
)

// BreakerState is the circuit state for one peer service.
type BreakerState string

const (
	StateClosed BreakerState = "closed"
	StateOpen   BreakerState = "open"
)

// StateChange reports a transition caused by a recorded outcome.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker is a consecutive-failure circuit breaker. After failureThreshold
// consecutive failures the circuit opens and calls short-circuit to the
// failure policy; successThreshold consecutive successes close it again.
// Counts reset on the opposite outcome, so intermittent flapping never trips.
type Breaker struct {
	mu   sync.Mutex
	name string

	failureThreshold int
	successThreshold int
	retryAfter       time.Duration

	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
}

type BreakerOption func(*Breaker)

func WithFailureThreshold(n int) BreakerOption {
	return func(b *Breaker) { b.failureThreshold = n }
}

func WithSuccessThreshold(n int) BreakerOption {
	return func(b *Breaker) { b.successThreshold = n }
}

func WithRetryAfter(d time.Duration) BreakerOption {
	return func(b *Breaker) { b.retryAfter = d }
}

// NewBreaker creates a closed breaker named after the peer service it guards.
func NewBreaker(name string, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 1,
		retryAfter:       30 * time.Second,
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Allow reports whether a call may proceed. While open, one probe window
// opens after retryAfter so the breaker can discover recovery; a probe
// success then closes the circuit through RecordSuccess.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	return time.Since(b.openedAt) >= b.retryAfter
}

// RecordFailure notes a failed call. It returns whether callers should skip
// the primary path, and whether this outcome opened the circuit.
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	if b.state == StateOpen {
		// A failed probe restarts the cool-down.
		b.openedAt = time.Now()
		return true, StateChange{}
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		b.failures = 0
		b.openedAt = time.Now()
		return true, StateChange{Opened: true}
	}
	return false, StateChange{}
}

// RecordSuccess notes a successful call. It returns whether the primary path
// is usable, and whether this outcome closed the circuit.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateClosed {
		return true, StateChange{}
	}

	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.successes = 0
		return true, StateChange{Closed: true}
	}
	return false, StateChange{}
}

// Reset forces the breaker closed and clears all counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}

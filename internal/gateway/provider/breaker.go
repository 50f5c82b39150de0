package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"braintrust/internal/logger"
)

// ErrCircuitOpen is returned without contacting the upstream while the
// breaker is open.
var ErrCircuitOpen = errors.New("upstream circuit open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker opens after threshold consecutive upstream failures and lets a
// single probe through once cooldown has elapsed.
type Breaker struct {
	mu          sync.Mutex
	state       BreakerState
	failures    int
	threshold   int
	cooldown    time.Duration
	lastFailure time.Time
	probing     bool
	name        string
	now         func() time.Time
}

func NewBreaker(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 1
	}
	return &Breaker{name: name, threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may proceed. In the half-open state only one
// probe is admitted until it reports back.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) < b.cooldown {
			return false
		}
		b.transition(BreakerHalfOpen)
		b.probing = true
		return true
	case BreakerHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	if b.state != BreakerClosed {
		b.transition(BreakerClosed)
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
	b.probing = false
	switch b.state {
	case BreakerClosed:
		if b.failures >= b.threshold {
			b.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.transition(BreakerOpen)
	}
}

// release frees a half-open probe slot without judging the upstream.
func (b *Breaker) release() {
	b.mu.Lock()
	b.probing = false
	b.mu.Unlock()
}

func (b *Breaker) transition(to BreakerState) {
	from := b.state
	b.state = to
	logger.Warnf("circuit %s: %s -> %s (failures=%d/%d, cooldown=%s)",
		b.name, from, to, b.failures, b.threshold, b.cooldown)
}

// Guarded wraps a provider with a Breaker. Only upstream trouble counts as a
// failure: retryable statuses, transport errors and empty replies. Client
// errors and caller cancellation leave the breaker alone.
type Guarded struct {
	ModelProvider
	breaker *Breaker
}

func NewGuarded(p ModelProvider, b *Breaker) *Guarded {
	return &Guarded{ModelProvider: p, breaker: b}
}

func (g *Guarded) Breaker() *Breaker { return g.breaker }

func (g *Guarded) Call(ctx context.Context, payload ChatPayload) (Completion, error) {
	if !g.breaker.Allow() {
		return Completion{}, fmt.Errorf("%w: %s", ErrCircuitOpen, g.ID())
	}
	out, err := g.ModelProvider.Call(ctx, payload)
	switch {
	case err == nil:
		g.breaker.RecordSuccess()
	case upstreamFailure(ctx, err):
		g.breaker.RecordFailure()
	default:
		g.breaker.release()
	}
	return out, err
}

func upstreamFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}

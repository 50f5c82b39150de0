package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"braintrust/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	errs  []error
	calls int
}

func (s *scriptedProvider) ID() string    { return "scripted" }
func (s *scriptedProvider) Model() string { return "m" }

func (s *scriptedProvider) Call(ctx context.Context, _ ChatPayload) (Completion, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return Completion{}, s.errs[i]
	}
	return Completion{Content: "ok", Model: "m"}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestBreaker_OpensAndRecovers(t *testing.T) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	b := NewBreaker("test", 2, time.Minute)
	b.now = clk.now

	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, BreakerClosed, b.State())
	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())

	clk.t = clk.t.Add(2 * time.Minute)
	assert.True(t, b.Allow(), "one probe after cooldown")
	assert.Equal(t, BreakerHalfOpen, b.State())
	assert.False(t, b.Allow(), "second probe waits for the first")

	b.RecordSuccess()
	assert.Equal(t, BreakerClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	b := NewBreaker("test", 1, time.Second)
	b.now = clk.now

	b.RecordFailure()
	require.Equal(t, BreakerOpen, b.State())
	clk.t = clk.t.Add(2 * time.Second)
	require.True(t, b.Allow())
	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())
}

func TestGuarded_CountsOnlyUpstreamFailures(t *testing.T) {
	inner := &scriptedProvider{errs: []error{
		&APIError{StatusCode: 401, Message: "bad key"},
		&APIError{StatusCode: 400, Message: "bad request"},
		&APIError{StatusCode: 503, Message: "overloaded"},
		errors.New("connection reset"),
	}}
	g := NewGuarded(inner, NewBreaker("scripted", 2, time.Hour))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.Call(ctx, ChatPayload{})
		require.Error(t, err)
		assert.Equal(t, BreakerClosed, g.Breaker().State())
	}
	_, err := g.Call(ctx, ChatPayload{})
	require.Error(t, err)
	assert.Equal(t, BreakerOpen, g.Breaker().State())

	_, err = g.Call(ctx, ChatPayload{})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 4, inner.calls, "open circuit does not reach the upstream")
}

func TestGuarded_CancelledCallerIsNotAFailure(t *testing.T) {
	inner := &scriptedProvider{errs: []error{context.Canceled}}
	g := NewGuarded(inner, NewBreaker("scripted", 1, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Call(ctx, ChatPayload{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BreakerClosed, g.Breaker().State())
}

func TestBuild(t *testing.T) {
	cfg := config.LLMConfig{BaseURL: "http://localhost", Model: "m"}
	_, plain := Build(cfg).(*OpenAIChatClient)
	assert.True(t, plain)

	cfg.BreakerThreshold = 3
	cfg.BreakerCooldownSeconds = 10
	g, ok := Build(cfg).(*Guarded)
	require.True(t, ok)
	assert.Equal(t, "openai-compatible:m", g.ID())
	assert.Equal(t, 3, g.Breaker().threshold)
	assert.Equal(t, 10*time.Second, g.Breaker().cooldown)
}

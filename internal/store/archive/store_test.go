package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"braintrust/internal/council"
	"braintrust/internal/gateway/provider"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func session(id string, started time.Time) *council.Session {
	return &council.Session{
		ID:        id,
		Question:  "Should we hire a CFO?",
		Model:     "anthropic/claude-3.5-sonnet",
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Advisors: []council.AdvisorResult{
			{PersonaID: "risk_officer", DisplayName: "Risk Officer", Output: "Yes, soon.", Scratchpad: "cash runway",
				Exemplars: []string{"Ray Dalio"}, Usage: provider.Usage{PromptTokens: 10, CompletionTokens: 2}, Elapsed: time.Second},
			{PersonaID: "strategist", DisplayName: "Strategist", Error: "advisor strategist: status=500: boom"},
		},
		Summary: council.Summary{Status: council.SummaryOK, Text: "Hire.", Dissent: []string{"timing"}},
		Usage:   provider.Usage{PromptTokens: 50, CompletionTokens: 9},
		Cost:    &council.Cost{Currency: "USD", Total: decimal.RequireFromString("0.000285")},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, session("a1", started)))

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Should we hire a CFO?", got.Question)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	require.Len(t, got.Advisors, 2)
	assert.Equal(t, "risk_officer", got.Advisors[0].PersonaID)
	assert.Equal(t, []string{"Ray Dalio"}, got.Advisors[0].Exemplars)
	assert.Equal(t, 12, got.Advisors[0].Usage.Total())
	assert.Equal(t, "cash runway", got.Advisors[0].Scratchpad)
	assert.False(t, got.Advisors[1].OK())
	assert.Equal(t, []string{"timing"}, got.Summary.Dissent)
	assert.Equal(t, council.SummaryOK, got.Summary.Status)
	assert.Equal(t, 59, got.Usage.Total())
	require.NotNil(t, got.Cost)
	assert.True(t, got.Cost.Total.Equal(decimal.RequireFromString("0.000285")))
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.Save(ctx, session(id, base.Add(time.Duration(i)*time.Hour))))
	}

	entries, err := s.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].ID)
	assert.Equal(t, "mid", entries[1].ID)
	assert.Equal(t, 2, entries[0].Advisors)
	assert.Equal(t, 1, entries[0].Failed)
	assert.Equal(t, 59, entries[0].Usage.Total())

	entries, err = s.List(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "old", entries[0].ID)
}

func TestAfterDeliberate_SavesAndSwallowsErrors(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.AfterDeliberate(ctx, session("obs", time.Now().UTC()))
	_, err := s.Get(context.Background(), "obs")
	require.NoError(t, err, "a cancelled caller context does not drop the archive write")

	// Duplicate IDs fail inside the store but never surface to the caller.
	assert.NotPanics(t, func() { s.AfterDeliberate(context.Background(), session("obs", time.Now().UTC())) })
}

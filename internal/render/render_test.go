package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"braintrust/internal/council"
	"braintrust/internal/gateway/provider"
	"braintrust/internal/persona"
	"braintrust/internal/store/archive"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleSession() *council.Session {
	return &council.Session{
		ID:       "sess-1",
		Question: "Should we open a Berlin office?",
		Advisors: []council.AdvisorResult{
			{PersonaID: "strategist", DisplayName: "Strategist", Output: "Open it next year.", Scratchpad: "market is warm",
				Usage: provider.Usage{PromptTokens: 10, CompletionTokens: 4}},
			{PersonaID: "risk_officer", DisplayName: "Risk Officer", Error: "advisor risk_officer: status=503: overloaded"},
		},
		Summary: council.Summary{
			Status:  council.SummaryOK,
			Text:    "Proceed carefully.",
			Dissent: []string{"timing of the launch"},
		},
		Usage:    provider.Usage{PromptTokens: 60, CompletionTokens: 14},
		Duration: 2 * time.Second,
		Cost:     &council.Cost{Currency: "USD", Total: decimal.RequireFromString("0.00042")},
	}
}

func TestSession_Panels(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, persona.Default(), Options{Plain: true, Width: 80})
	r.Session(sampleSession())
	out := buf.String()

	assert.Contains(t, out, "Executive Summary")
	assert.Contains(t, out, "Proceed carefully.")
	assert.Contains(t, out, "Key Disagreements")
	assert.Contains(t, out, "• timing of the launch")
	assert.Contains(t, out, "Open it next year.")
	assert.Contains(t, out, "✗ advisor risk_officer: status=503: overloaded")
	assert.NotContains(t, out, "market is warm", "scratchpads only appear in verbose mode")
	assert.NotContains(t, out, "Verbose Output")

	// Summary panels precede advisors; advisors keep selection order.
	assert.Less(t, strings.Index(out, "Executive Summary"), strings.Index(out, "Strategist"))
	assert.Less(t, strings.Index(out, "Strategist"), strings.Index(out, "Risk Officer"))
}

func TestSession_Skipped(t *testing.T) {
	s := sampleSession()
	s.Summary = council.Summary{Status: council.SummarySkipped}

	var buf bytes.Buffer
	New(&buf, persona.Default(), Options{Plain: true}).Session(s)
	out := buf.String()
	assert.NotContains(t, out, "Executive Summary")
	assert.NotContains(t, out, "Key Disagreements")
	assert.Contains(t, out, "Open it next year.")
}

func TestSession_SummaryFailed(t *testing.T) {
	s := sampleSession()
	s.Summary = council.Summary{Status: council.SummaryFailed, Error: "summarizer: timeout"}

	var buf bytes.Buffer
	New(&buf, persona.Default(), Options{Plain: true}).Session(s)
	out := buf.String()
	assert.Contains(t, out, "Summary unavailable: summarizer: timeout")
	assert.NotContains(t, out, "Key Disagreements")
	assert.Contains(t, out, "Open it next year.")
}

func TestSession_NoDissentPanelWhenEmpty(t *testing.T) {
	s := sampleSession()
	s.Summary.Dissent = nil

	var buf bytes.Buffer
	New(&buf, persona.Default(), Options{Plain: true}).Session(s)
	assert.NotContains(t, buf.String(), "Key Disagreements")
}

func TestTranscript(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, persona.Default(), Options{Plain: true, Verbose: true}).Session(sampleSession())
	out := buf.String()

	assert.Contains(t, out, "Verbose Output")
	assert.Contains(t, out, "=== Strategist ===")
	assert.Contains(t, out, "Private Scratchpad:")
	assert.Contains(t, out, "market is warm")
	assert.Contains(t, out, "=== Summarizer ===")
	assert.Contains(t, out, "Disagreements:")
	assert.Contains(t, out, "74 tokens (prompt 60, completion 14)")
	assert.Contains(t, out, "cost 0.000420 USD")
}

func TestMarkdownFallsBackToRaw(t *testing.T) {
	r := New(&bytes.Buffer{}, nil, Options{Plain: true})
	assert.Equal(t, "**bold**", r.markdown("**bold**"))

	r = New(&bytes.Buffer{}, nil, Options{Width: 60})
	out := r.markdown("**Brief answer:** expand")
	assert.Contains(t, out, "Brief answer:")
}

func TestStatusLines(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil, Options{Plain: true})
	r.Question("Why?")
	r.Success("Deliberation complete")
	r.Failure("Configuration error", errors.New("OPENROUTER_API_KEY is not set"))
	out := buf.String()

	assert.Contains(t, out, "Question")
	assert.Contains(t, out, "Why?")
	assert.Contains(t, out, "✓ Deliberation complete")
	assert.Contains(t, out, "✗ Configuration error: OPENROUTER_API_KEY is not set")
}

func TestPersonasListing(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, nil, Options{Plain: true}).Personas(persona.Default())
	out := buf.String()
	assert.Contains(t, out, "devils_advocate")
	assert.Contains(t, out, "Devil's Advocate")
	assert.Contains(t, out, "Summarizer (summarizer)")
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("14"), colorFor("Cyan"))
	assert.Equal(t, lipgloss.Color("12"), colorFor(""))
	assert.Equal(t, lipgloss.Color("#ff8800"), colorFor("#FF8800"))
}

func TestHistory(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, nil, Options{Plain: true})
	r.History(nil)
	assert.Contains(t, buf.String(), "No archived sessions.")

	buf.Reset()
	r.History([]archive.Entry{{
		ID:            "0b5c",
		Question:      "Should we open a Berlin office?",
		SummaryStatus: council.SummaryOK,
		Advisors:      5,
		Failed:        1,
		StartedAt:     time.Now(),
	}})
	out := buf.String()
	assert.Contains(t, out, "0b5c")
	assert.Contains(t, out, "4/5 ok")
	assert.Contains(t, out, "Berlin office?")
}

package council

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"braintrust/internal/gateway/provider"
	"braintrust/internal/logger"
	"braintrust/internal/persona"
)

const (
	summaryMarker = "=== SUMMARY ==="
	dissentMarker = "=== DISSENT ==="
)

// ErrNothingToSummarize is recorded when every advisor failed.
var ErrNothingToSummarize = errors.New("no advisor responses to summarize")

// ComposeSummaryPrompt builds the summarizer's user prompt. Only successful
// advisor outputs are quoted; scratchpads never are. Failed advisors are
// listed so the synthesis can mention the gap.
func ComposeSummaryPrompt(question string, results []AdvisorResult) string {
	var responses strings.Builder
	var gaps []string
	for _, r := range results {
		if !r.OK() {
			gaps = append(gaps, fmt.Sprintf("- %s (%s): %s", r.DisplayName, r.PersonaID, r.Error))
			continue
		}
		fmt.Fprintf(&responses, "\n\n=== %s (%s) ===\n%s\n", r.DisplayName, r.PersonaID, r.Output)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nAdvisor Responses:\n%s\n", question, responses.String())
	if len(gaps) > 0 {
		b.WriteString("\nThe following advisors did not respond and are missing from this synthesis:\n")
		b.WriteString(strings.Join(gaps, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(`
Please provide your synthesis following the structure in your system prompt.

IMPORTANT: Your response should include two parts:
1. Your summary (executive summary, convergences, divergences, next actions)
2. A list of disagreements (one per line, starting with "- ")

Format your response as:
` + summaryMarker + `
[your summary here]

` + dissentMarker + `
- [disagreement 1]
- [disagreement 2]
- [disagreement 3]
...`)
	return b.String()
}

// ParseSummaryResponse splits a response into the summary text and the list
// of disagreements. Without both markers the whole text is the summary.
func ParseSummaryResponse(text string) (summary string, dissent []string) {
	if !strings.Contains(text, summaryMarker) || !strings.Contains(text, dissentMarker) {
		return text, nil
	}
	before, after, _ := strings.Cut(text, dissentMarker)
	summary = strings.TrimSpace(strings.ReplaceAll(before, summaryMarker, ""))
	after, _, _ = strings.Cut(after, dissentMarker)
	for _, line := range strings.Split(after, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- "):
			if item := strings.TrimSpace(line[2:]); item != "" {
				dissent = append(dissent, item)
			}
		case line != "" && !strings.HasPrefix(line, "-"):
			dissent = append(dissent, line)
		}
	}
	return summary, dissent
}

// Summarizer synthesizes advisor outputs with one completion request.
type Summarizer struct {
	Provider provider.ModelProvider
	Persona  persona.Persona
}

func NewSummarizer(p provider.ModelProvider, sp persona.Persona) *Summarizer {
	return &Summarizer{Provider: p, Persona: sp}
}

func (s *Summarizer) Summarize(ctx context.Context, question string, results []AdvisorResult) Summary {
	out := Summary{Status: SummaryOK}
	if s == nil || s.Provider == nil {
		out.fail(fmt.Errorf("no completion provider configured"))
		return out
	}
	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	if ok == 0 {
		out.fail(ErrNothingToSummarize)
		return out
	}
	out.SystemPrompt = s.Persona.SystemPrompt
	out.UserPrompt = ComposeSummaryPrompt(question, results)
	out.Model = s.Provider.Model()
	logger.LogLLMRequest(s.Persona.ID, out.Model, out.SystemPrompt, out.UserPrompt)

	start := time.Now()
	resp, err := s.Provider.Call(ctx, provider.ChatPayload{System: out.SystemPrompt, User: out.UserPrompt, Tag: s.Persona.ID})
	out.Elapsed = time.Since(start)
	out.Usage = resp.Usage
	if resp.Model != "" {
		out.Model = resp.Model
	}
	logger.LogLLMResponse(s.Persona.ID, out.Model, resp.Content, err)
	if err != nil {
		logger.Warnf("summarizer failed elapsed=%s err=%v", out.Elapsed.Truncate(time.Millisecond), err)
		out.fail(fmt.Errorf("summarizer: %w", err))
		return out
	}
	out.Text, out.Dissent = ParseSummaryResponse(resp.Content)
	return out
}

func skippedSummary() Summary {
	return Summary{Status: SummarySkipped}
}

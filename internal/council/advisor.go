package council

import (
	"context"
	"fmt"
	"strings"
	"time"

	"braintrust/internal/exemplar"
	"braintrust/internal/gateway/provider"
	"braintrust/internal/logger"
	"braintrust/internal/persona"
)

const (
	advisorOutputMarker = "=== ADVISOR OUTPUT ==="
	scratchpadMarker    = "=== SCRATCHPAD ==="
)

// ComposeAdvisorPrompts builds the system and user prompts for one advisor.
// The exemplar block is appended to the persona template only when names exist.
func ComposeAdvisorPrompts(p persona.Persona, question string, exemplars []string) (system, user string) {
	system = p.SystemPrompt
	if block := exemplar.FormatBlock(exemplars); block != "" {
		system += "\n\n" + block
	}
	user = fmt.Sprintf(`Question: %s

Your private scratchpad (for your reasoning only, do not include in your final response):
[Empty - start fresh]

Please provide your analysis following the structure in your system prompt.

IMPORTANT: Your response should include two parts:
1. Your advisor output (the structured response as specified in your system prompt)
2. Your updated scratchpad (your private reasoning notes)

Format your response as:
%s
[your structured advisor response here]

%s
[your updated private reasoning notes here]`, question, advisorOutputMarker, scratchpadMarker)
	return system, user
}

// ParseAdvisorResponse splits a response into the advisor output and the
// private scratchpad. Without both markers the whole text is the output.
func ParseAdvisorResponse(text string) (output, scratchpad string) {
	if !strings.Contains(text, advisorOutputMarker) || !strings.Contains(text, scratchpadMarker) {
		return text, ""
	}
	before, after, _ := strings.Cut(text, scratchpadMarker)
	output = strings.TrimSpace(strings.ReplaceAll(before, advisorOutputMarker, ""))
	// A repeated marker ends the scratchpad.
	after, _, _ = strings.Cut(after, scratchpadMarker)
	scratchpad = strings.TrimSpace(after)
	return output, scratchpad
}

// AdvisorInvoker runs one persona against the question.
type AdvisorInvoker interface {
	Invoke(ctx context.Context, p persona.Persona, question string, exemplars []string) AdvisorResult
}

// Advisor issues exactly one completion request per invocation.
type Advisor struct {
	Provider provider.ModelProvider
}

func NewAdvisor(p provider.ModelProvider) *Advisor {
	return &Advisor{Provider: p}
}

func (a *Advisor) Invoke(ctx context.Context, p persona.Persona, question string, exemplars []string) AdvisorResult {
	system, user := ComposeAdvisorPrompts(p, question, exemplars)
	res := AdvisorResult{
		PersonaID:    p.ID,
		DisplayName:  p.DisplayName,
		Exemplars:    exemplars,
		SystemPrompt: system,
		UserPrompt:   user,
	}
	if a == nil || a.Provider == nil {
		res.fail(fmt.Errorf("no completion provider configured"))
		return res
	}
	res.Model = a.Provider.Model()
	logger.LogLLMRequest(p.ID, res.Model, system, user)

	start := time.Now()
	out, err := a.Provider.Call(ctx, provider.ChatPayload{System: system, User: user, Tag: p.ID})
	res.Elapsed = time.Since(start)
	res.Usage = out.Usage
	if out.Model != "" {
		res.Model = out.Model
	}
	logger.LogLLMResponse(p.ID, res.Model, out.Content, err)
	if err != nil {
		logger.Warnf("advisor %s failed elapsed=%s err=%v", p.ID, res.Elapsed.Truncate(time.Millisecond), err)
		res.fail(fmt.Errorf("advisor %s: %w", p.ID, err))
		return res
	}
	res.Output, res.Scratchpad = ParseAdvisorResponse(out.Content)
	logger.Debugf("advisor %s answered elapsed=%s tokens=%d", p.ID, res.Elapsed.Truncate(time.Millisecond), out.Usage.Total())
	return res
}

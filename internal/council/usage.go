package council

import (
	"braintrust/internal/config"
	"braintrust/internal/gateway/provider"

	"github.com/shopspring/decimal"
)

var perMillion = decimal.NewFromInt(1_000_000)

// Pricing converts token counts into money.
type Pricing struct {
	PromptPerMillion     decimal.Decimal
	CompletionPerMillion decimal.Decimal
	Currency             string
}

// NewPricing returns a zero Pricing when nothing is configured.
func NewPricing(cfg config.PricingConfig) Pricing {
	if !cfg.Enabled() {
		return Pricing{}
	}
	return Pricing{
		PromptPerMillion:     decimal.NewFromFloat(cfg.PromptPerMillion),
		CompletionPerMillion: decimal.NewFromFloat(cfg.CompletionPerMillion),
		Currency:             cfg.Currency,
	}
}

func (p Pricing) Enabled() bool {
	return p.PromptPerMillion.IsPositive() || p.CompletionPerMillion.IsPositive()
}

// Cost is rounded to six decimal places.
type Cost struct {
	Currency   string          `json:"currency"`
	Prompt     decimal.Decimal `json:"prompt"`
	Completion decimal.Decimal `json:"completion"`
	Total      decimal.Decimal `json:"total"`
}

// Cost returns nil when pricing is disabled.
func (p Pricing) Cost(u provider.Usage) *Cost {
	if !p.Enabled() {
		return nil
	}
	prompt := decimal.NewFromInt(int64(u.PromptTokens)).Mul(p.PromptPerMillion).Div(perMillion).Round(6)
	completion := decimal.NewFromInt(int64(u.CompletionTokens)).Mul(p.CompletionPerMillion).Div(perMillion).Round(6)
	return &Cost{
		Currency:   p.Currency,
		Prompt:     prompt,
		Completion: completion,
		Total:      prompt.Add(completion),
	}
}

// totalUsage sums every advisor call and the summarizer call.
func totalUsage(s *Session) provider.Usage {
	var u provider.Usage
	for _, r := range s.Advisors {
		u = u.Add(r.Usage)
	}
	return u.Add(s.Summary.Usage)
}

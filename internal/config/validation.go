package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingAPIKey is returned when no completion API key could be resolved.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY environment variable is required but not set; set it in your environment or .env file")

func validate(c *Config, requireKey bool) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.LLM.validate(requireKey); err != nil {
		return err
	}
	if c.Council.MaxParallel < 0 {
		return fmt.Errorf("council.max_parallel must be >= 0")
	}
	if err := c.Pricing.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch a.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format %q is not one of text, json", a.LogFormat)
	}
	switch a.LogLevel {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("app.log_level %q is not one of debug, info, warn, error", a.LogLevel)
	}
}

func (l *LLMConfig) validate(requireKey bool) error {
	if requireKey && l.APIKey == "" {
		return ErrMissingAPIKey
	}
	if l.BaseURL == "" {
		return fmt.Errorf("llm.base_url cannot be empty")
	}
	u, err := url.Parse(l.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("llm.base_url %q is not an absolute URL", l.BaseURL)
	}
	if l.Model == "" {
		return fmt.Errorf("llm.model cannot be empty")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0 (got %g)", l.Temperature)
	}
	if l.TopP < 0 || l.TopP > 1 {
		return fmt.Errorf("top_p must be between 0.0 and 1.0 (got %g)", l.TopP)
	}
	if l.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must be >= 0")
	}
	if l.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must be >= 0")
	}
	if l.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be >= 0")
	}
	if l.BreakerThreshold < 0 || l.BreakerCooldownSeconds < 0 {
		return fmt.Errorf("llm.breaker_threshold and llm.breaker_cooldown_seconds must be >= 0")
	}
	for k := range l.Headers {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("llm.headers contains an empty header name")
		}
	}
	return nil
}

func (p *PricingConfig) validate() error {
	if p.PromptPerMillion < 0 || p.CompletionPerMillion < 0 {
		return fmt.Errorf("pricing values must be >= 0")
	}
	return nil
}

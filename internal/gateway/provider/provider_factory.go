package provider

import (
	"time"

	"braintrust/internal/config"
)

// NewFromConfig builds the completion client every persona shares.
func NewFromConfig(cfg config.LLMConfig) *OpenAIChatClient {
	c := &OpenAIChatClient{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		ModelName:    cfg.Model,
		Temperature:  cfg.Temperature,
		TopP:         cfg.TopP,
		MaxTokens:    cfg.MaxTokens,
		MaxRetries:   cfg.MaxRetries,
		SiteURL:      cfg.SiteURL,
		SiteName:     cfg.SiteName,
		ExtraHeaders: cfg.Headers,
	}
	if cfg.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return c
}

// Build returns the client from NewFromConfig, behind a circuit breaker when
// llm.breaker_threshold is set.
func Build(cfg config.LLMConfig) ModelProvider {
	client := NewFromConfig(cfg)
	if cfg.BreakerThreshold <= 0 {
		return client
	}
	cooldown := time.Duration(cfg.BreakerCooldownSeconds) * time.Second
	return NewGuarded(client, NewBreaker(client.ID(), cfg.BreakerThreshold, cooldown))
}

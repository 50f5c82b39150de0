package config

import "strings"

const (
	defaultLogLevel       = "warn"
	defaultLogFormat      = "text"
	defaultHTTPAddr       = ":9992"
	defaultBaseURL        = "https://openrouter.ai/api/v1"
	defaultModel          = "anthropic/claude-3.5-sonnet"
	defaultTemperature    = 0.7
	defaultTopP           = 1.0
	defaultTimeoutSeconds = 120
	defaultSiteName       = "braintrust"
	defaultExemplarsDir   = "data/exemplars"
	defaultCurrency       = "USD"
	defaultBreakerCooling = 30
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.LLM.applyDefaults(keys)
	c.Council.applyDefaults()
	c.Exemplars.applyDefaults(keys)
	c.Pricing.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.log_level", &a.LogLevel, defaultLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultHTTPAddr),
	)
	a.LogLevel = strings.ToLower(strings.TrimSpace(a.LogLevel))
	a.LogFormat = strings.ToLower(strings.TrimSpace(a.LogFormat))
}

func (l *LLMConfig) applyDefaults(keys keySet) {
	if l == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("llm.base_url", &l.BaseURL, defaultBaseURL),
		stringFieldDefault("llm.model", &l.Model, defaultModel),
		stringFieldDefault("llm.site_name", &l.SiteName, defaultSiteName),
		floatFieldDefault("llm.temperature", &l.Temperature, defaultTemperature),
		floatFieldDefault("llm.top_p", &l.TopP, defaultTopP),
		intFieldDefault("llm.timeout_seconds", &l.TimeoutSeconds, defaultTimeoutSeconds),
		intFieldDefault("llm.breaker_cooldown_seconds", &l.BreakerCooldownSeconds, defaultBreakerCooling),
	)
	l.APIKey = strings.TrimSpace(l.APIKey)
	l.BaseURL = strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
	l.Model = strings.TrimSpace(l.Model)
}

func (c *CouncilConfig) applyDefaults() {
	if c == nil {
		return
	}
	c.Advisors = normalizeList(c.Advisors)
}

func (e *ExemplarConfig) applyDefaults(keys keySet) {
	if e == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("exemplars.dir", &e.Dir, defaultExemplarsDir),
	)
}

func (p *PricingConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("pricing.currency", &p.Currency, defaultCurrency),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// floatFieldDefault only fires for unset keys; an explicit 0 is a valid value.
func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// normalizeList splits comma-joined entries, trims them and drops duplicates.
func normalizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, raw := range items {
		for _, part := range strings.Split(raw, ",") {
			id := strings.TrimSpace(part)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

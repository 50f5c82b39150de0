package config

import "strings"

// Config is the top-level braintrust configuration.
type Config struct {
	App       AppConfig      `yaml:"app"`
	LLM       LLMConfig      `yaml:"llm"`
	Council   CouncilConfig  `yaml:"council"`
	Exemplars ExemplarConfig `yaml:"exemplars"`
	Personas  PersonaConfig  `yaml:"personas"`
	Archive   ArchiveConfig  `yaml:"archive"`
	Pricing   PricingConfig  `yaml:"pricing"`
}

type AppConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogPath   string `yaml:"log_path"`
	LLMLog    string `yaml:"llm_log_path"`
	LLMDump   bool   `yaml:"llm_dump_payload"`
	HTTPAddr  string `yaml:"http_addr"`
}

// LLMConfig is passed through unchanged to every completion request.
type LLMConfig struct {
	APIKey         string            `yaml:"api_key"`
	BaseURL        string            `yaml:"base_url"`
	Model          string            `yaml:"model"`
	Temperature    float64           `yaml:"temperature"`
	TopP           float64           `yaml:"top_p"`
	MaxTokens      int               `yaml:"max_tokens"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	MaxRetries     int               `yaml:"max_retries"`
	SiteURL        string            `yaml:"site_url"`
	SiteName       string            `yaml:"site_name"`
	Headers        map[string]string `yaml:"headers"`

	// BreakerThreshold consecutive upstream failures open the circuit; 0 disables it.
	BreakerThreshold       int `yaml:"breaker_threshold"`
	BreakerCooldownSeconds int `yaml:"breaker_cooldown_seconds"`
}

// CouncilConfig controls the fan-out step.
type CouncilConfig struct {
	// MaxParallel caps concurrent advisor requests; 0 means one goroutine per advisor.
	MaxParallel int      `yaml:"max_parallel"`
	Advisors    []string `yaml:"advisors"`
}

type ExemplarConfig struct {
	Dir string `yaml:"dir"`
}

// PersonaConfig points at an optional YAML file that extends the built-in personas.
type PersonaConfig struct {
	Path string `yaml:"path"`
}

// ArchiveConfig enables the SQLite session archive when Path is set.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// PricingConfig is expressed in currency units per million tokens.
type PricingConfig struct {
	PromptPerMillion     float64 `yaml:"prompt_per_million"`
	CompletionPerMillion float64 `yaml:"completion_per_million"`
	Currency             string  `yaml:"currency"`
}

// Enabled reports whether any price is configured.
func (p PricingConfig) Enabled() bool {
	return p.PromptPerMillion > 0 || p.CompletionPerMillion > 0
}

// keySet tracks which dotted keys were explicitly provided.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

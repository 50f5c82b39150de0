package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables that override them.
var envBindings = []struct {
	key string
	env string
}{
	{"llm.api_key", "OPENROUTER_API_KEY"},
	{"llm.base_url", "OPENROUTER_API_BASE"},
	{"llm.model", "MODEL"},
	{"llm.temperature", "TEMPERATURE"},
	{"llm.top_p", "TOP_P"},
	{"llm.max_tokens", "MAX_TOKENS"},
	{"exemplars.dir", "EXEMPLARS_DIR"},
	{"app.log_level", "LOG_LEVEL"},
	{"app.log_format", "LOG_FORMAT"},
	{"app.llm_log_path", "BRAINTRUST_LLM_LOG"},
	{"archive.path", "BRAINTRUST_ARCHIVE"},
	{"personas.path", "BRAINTRUST_PERSONAS"},
}

// Options controls where Load looks for configuration.
type Options struct {
	// Path is an optional YAML config file. Empty means environment only.
	Path string
	// DotEnvPath is merged below real environment variables when the file exists.
	DotEnvPath string
	// SkipCredentials allows commands that never call the API to load without a key.
	SkipCredentials bool
}

// Load reads path (optional) plus ./.env and the environment, then validates.
func Load(path string) (*Config, error) {
	return LoadWith(Options{Path: path, DotEnvPath: ".env"})
}

func LoadWith(opts Options) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if strings.TrimSpace(opts.Path) != "" {
		files, err := resolveConfigIncludes(opts.Path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if err := mergeConfigFile(v, file); err != nil {
				return nil, fmt.Errorf("reading config file failed (%s): %w", file, err)
			}
		}
	}
	if err := mergeDotEnv(v, opts.DotEnvPath); err != nil {
		return nil, err
	}
	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.env, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg, !opts.SkipCredentials); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeDotEnv registers .env values as defaults so real environment variables win.
func mergeDotEnv(v *viper.Viper, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s failed: %w", path, err)
	}
	for _, b := range envBindings {
		name := strings.ToLower(b.env)
		if !env.IsSet(name) {
			continue
		}
		v.SetDefault(b.key, env.Get(name))
	}
	return nil
}

func mergeConfigFile(v *viper.Viper, path string) error {
	tmp := viper.New()
	tmp.SetConfigFile(path)
	if err := tmp.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(tmp.AllSettings())
}

func resolveConfigIncludes(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	stack := make(map[string]bool)
	files, err := collectConfigFiles(abs, seen, stack)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []string{abs}, nil
	}
	return files, nil
}

// collectConfigFiles returns includes depth-first so the including file is merged last.
func collectConfigFiles(path string, seen, stack map[string]bool) ([]string, error) {
	path = filepath.Clean(path)
	if stack[path] {
		return nil, fmt.Errorf("include cycle detected: %s", path)
	}
	if seen[path] {
		return nil, nil
	}
	stack[path] = true
	includes, err := parseIncludeList(path)
	if err != nil {
		return nil, fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	dir := filepath.Dir(path)
	var ordered []string
	for _, inc := range includes {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(dir, inc)
		}
		sub, err := collectConfigFiles(incPath, seen, stack)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, sub...)
	}
	delete(stack, path)
	seen[path] = true
	ordered = append(ordered, path)
	return ordered, nil
}

// parseIncludeList reads the optional top-level include key, a path or a
// list of paths relative to the including file.
func parseIncludeList(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if !v.IsSet("include") {
		return nil, nil
	}
	switch v.Get("include").(type) {
	case string, []any, []string:
	default:
		return nil, fmt.Errorf("include must be a path or a list of paths")
	}
	return normalizeList(v.GetStringSlice("include")), nil
}

func collectSettingsKeys(settings map[string]any, dest keySet) {
	if dest == nil || len(settings) == 0 {
		return
	}
	flattenConfigKeys("", settings, dest)
}

func flattenConfigKeys(prefix string, node any, dest keySet) {
	switch val := node.(type) {
	case map[string]any:
		for k, v := range val {
			next := strings.ToLower(strings.TrimSpace(k))
			if next == "" {
				continue
			}
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenConfigKeys(next, v, dest)
		}
	default:
		if prefix != "" {
			dest.mark(prefix)
		}
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"braintrust/internal/config"
	"braintrust/internal/council"
	"braintrust/internal/gateway/provider"
	"braintrust/internal/logger"
	"braintrust/internal/persona"
	"braintrust/internal/store/archive"
)

// runtime holds what every subcommand builds from the loaded config.
type runtime struct {
	opts     *rootOptions
	cfg      *config.Config
	registry *persona.Registry
	archive  *archive.Store
	closers  []io.Closer
}

func newRuntime(opts *rootOptions, requireKey bool) (*runtime, error) {
	cfg, err := config.LoadWith(config.Options{
		Path:            opts.configPath,
		DotEnvPath:      ".env",
		SkipCredentials: !requireKey,
	})
	if err != nil {
		return nil, err
	}
	rt := &runtime{opts: opts, cfg: cfg}

	level := cfg.App.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger.SetLevel(level)
	logger.SetFormat(cfg.App.LogFormat)
	if f, err := setupLogOutput(cfg.App.LogPath); err != nil {
		rt.Close()
		return nil, fmt.Errorf("open log file: %w", err)
	} else if f != nil {
		rt.closers = append(rt.closers, f)
	}
	logger.SetLLMWriter(nil)
	if f, err := setupLLMLogOutput(cfg.App.LLMLog); err != nil {
		rt.Close()
		return nil, fmt.Errorf("open llm log: %w", err)
	} else if f != nil {
		rt.closers = append(rt.closers, f)
	}
	logger.EnableLLMBodyDump(cfg.App.LLMDump)

	rt.registry = persona.Default()
	if path := strings.TrimSpace(cfg.Personas.Path); path != "" {
		reg, err := persona.LoadOverrides(rt.registry, path)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.registry = reg
	}
	logger.Debugf("config loaded: model=%s base=%s log_level=%s", cfg.LLM.Model, cfg.LLM.BaseURL, logger.Level())
	return rt, nil
}

// exemplarDir prefers --exemplars-dir over EXEMPLARS_DIR and the config file.
func (rt *runtime) exemplarDir() string {
	if d := strings.TrimSpace(rt.opts.exemplarsDir); d != "" {
		return d
	}
	return rt.cfg.Exemplars.Dir
}

// openArchive returns nil when no archive is configured or it cannot be
// opened; the archive is never required for a deliberation.
func (rt *runtime) openArchive() *archive.Store {
	if rt.archive != nil {
		return rt.archive
	}
	path := strings.TrimSpace(rt.cfg.Archive.Path)
	if path == "" {
		return nil
	}
	store, err := archive.Open(path)
	if err != nil {
		logger.Warnf("session archive disabled: %v", err)
		return nil
	}
	rt.archive = store
	rt.closers = append(rt.closers, store)
	return store
}

func (rt *runtime) engine(ex council.ExemplarSource) (*council.Engine, error) {
	opts := []council.Option{
		council.WithMaxParallel(rt.cfg.Council.MaxParallel),
		council.WithPricing(council.NewPricing(rt.cfg.Pricing)),
	}
	if store := rt.openArchive(); store != nil {
		opts = append(opts, council.WithObserver(store))
	}
	return council.NewEngine(rt.registry, provider.Build(rt.cfg.LLM), ex, opts...)
}

func (rt *runtime) Close() {
	if len(rt.closers) == 0 {
		return
	}
	logger.SetOutput(os.Stderr)
	logger.SetLLMWriter(nil)
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
	rt.closers = nil
	rt.archive = nil
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, file))
	return file, nil
}

func setupLLMLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetLLMWriter(f)
	return f, nil
}

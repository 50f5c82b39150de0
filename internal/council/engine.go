// Package council runs one question past a panel of advisor personas and
// optionally synthesizes their answers.
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

	"github.com/google/uuid"
)

// ErrEmptyQuestion is returned for blank questions before any request is made.
var ErrEmptyQuestion = errors.New("question must not be empty")

// ExemplarSource yields the exemplar names for a persona.
type ExemplarSource interface {
	Names(personaID string) []string
}

type Request struct {
	Question string   `json:"question"`
	Personas []string `json:"personas"`
	// NoSummary skips the summarizer; no request is issued for it.
	NoSummary bool `json:"no_summary"`
}

// Engine wires registry, exemplars, dispatcher and summarizer together.
type Engine struct {
	Registry   *persona.Registry
	Provider   provider.ModelProvider
	Exemplars  ExemplarSource
	Dispatcher *Dispatcher
	Summarizer *Summarizer
	Pricing    Pricing

	observers []SessionObserver
	now       func() time.Time
}

type Option func(*Engine)

func WithMaxParallel(n int) Option {
	return func(e *Engine) { e.Dispatcher.MaxParallel = n }
}

func WithPricing(p Pricing) Option {
	return func(e *Engine) { e.Pricing = p }
}

func WithObserver(o SessionObserver) Option {
	return func(e *Engine) { e.AddObserver(o) }
}

// WithAdvisorInvoker replaces the provider-backed advisor, mainly for tests.
func WithAdvisorInvoker(inv AdvisorInvoker) Option {
	return func(e *Engine) { e.Dispatcher.Invoker = inv }
}

// NewEngine builds an engine around one shared completion provider. The
// registry must hold a summarizer persona.
func NewEngine(reg *persona.Registry, p provider.ModelProvider, ex ExemplarSource, opts ...Option) (*Engine, error) {
	if reg == nil {
		reg = persona.Default()
	}
	sp, ok := reg.Summarizer()
	if !ok {
		return nil, fmt.Errorf("persona registry has no summarizer")
	}
	e := &Engine{
		Registry:   reg,
		Provider:   p,
		Exemplars:  ex,
		Dispatcher: NewDispatcher(NewAdvisor(p)),
		Summarizer: NewSummarizer(p, sp),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) AddObserver(o SessionObserver) {
	if o != nil {
		e.observers = append(e.observers, o)
	}
}

// Deliberate runs one full session. Errors are returned only for invalid
// input; advisor and summarizer failures are recorded in the session.
func (e *Engine) Deliberate(ctx context.Context, req Request) (*Session, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	selected, err := e.Registry.Select(req.Personas)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tasks := make([]Task, len(selected))
	for i, p := range selected {
		tasks[i] = Task{Persona: p}
		if e.Exemplars != nil {
			tasks[i].Exemplars = e.Exemplars.Names(p.ID)
		}
	}

	s := &Session{
		ID:        uuid.NewString(),
		Question:  question,
		StartedAt: e.now(),
	}
	if e.Provider != nil {
		s.Model = e.Provider.Model()
	}
	log := logger.With("session", s.ID)
	log.Info("dispatching", "advisors", len(tasks))
	s.Advisors = e.Dispatcher.Dispatch(ctx, question, tasks)

	if req.NoSummary {
		s.Summary = skippedSummary()
	} else {
		s.Summary = e.Summarizer.Summarize(ctx, question, s.Advisors)
	}
	s.Duration = e.now().Sub(s.StartedAt)
	s.Usage = totalUsage(s)
	s.Cost = e.Pricing.Cost(s.Usage)
	log.Info("deliberation finished",
		"elapsed", s.Duration.Truncate(time.Millisecond),
		"failed", s.Failed(),
		"summary", s.Summary.Status,
		"tokens", s.Usage.Total())

	for _, o := range e.observers {
		o.AfterDeliberate(ctx, s)
	}
	return s, nil
}

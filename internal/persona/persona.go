// Package persona holds the advisor roles a question is dispatched to.
package persona

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPersona is wrapped by Select when an ID is not registered.
var ErrUnknownPersona = errors.New("unknown persona")

// ErrSummarizerNotAdvisor is wrapped by Select when the summarizer is requested
// as an advisor.
var ErrSummarizerNotAdvisor = errors.New("the summarizer cannot be selected as an advisor")

// Persona is an immutable role definition.
type Persona struct {
	ID           string `json:"id" yaml:"id"`
	DisplayName  string `json:"display_name" yaml:"display_name"`
	SystemPrompt string `json:"-" yaml:"system_prompt"`
	Summarizer   bool   `json:"summarizer" yaml:"summarizer"`
	// Color names the panel border color used by the terminal renderer.
	Color string `json:"color,omitempty" yaml:"color"`
}

// Registry is an ordered, read-only persona table.
type Registry struct {
	order []string
	byID  map[string]Persona
}

// Default returns a registry with the built-in advisors and summarizer.
func Default() *Registry {
	r, err := newRegistry(builtins())
	if err != nil {
		panic(err)
	}
	return r
}

func newRegistry(list []Persona) (*Registry, error) {
	r := &Registry{byID: make(map[string]Persona, len(list))}
	summarizers := 0
	for _, p := range list {
		p.ID = NormalizeID(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("persona without id")
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		if strings.TrimSpace(p.SystemPrompt) == "" {
			return nil, fmt.Errorf("persona %q has an empty system prompt", p.ID)
		}
		if strings.TrimSpace(p.DisplayName) == "" {
			p.DisplayName = displayNameFromID(p.ID)
		}
		if p.Summarizer {
			summarizers++
		}
		r.order = append(r.order, p.ID)
		r.byID[p.ID] = p
	}
	if summarizers != 1 {
		return nil, fmt.Errorf("exactly one summarizer persona is required, found %d", summarizers)
	}
	return r, nil
}

// NormalizeID lower-cases an identifier and resolves common aliases.
func NormalizeID(id string) string {
	s := strings.ToLower(strings.TrimSpace(id))
	s = strings.NewReplacer("-", "_", " ", "_", "'", "").Replace(s)
	switch s {
	case "strategy", "strategic":
		return "strategist"
	case "expert", "domain", "domainexpert":
		return "domain_expert"
	case "devil", "devils", "devil_advocate", "devilsadvocate", "advocate":
		return "devils_advocate"
	case "risk", "risks", "risk_manager", "riskofficer":
		return "risk_officer"
	case "ethics", "ethical":
		return "ethicist"
	case "summary", "summariser":
		return "summarizer"
	default:
		return s
	}
}

func displayNameFromID(id string) string {
	parts := strings.Split(id, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func (r *Registry) Lookup(id string) (Persona, bool) {
	if r == nil {
		return Persona{}, false
	}
	p, ok := r.byID[NormalizeID(id)]
	return p, ok
}

// All returns every persona in declaration order, summarizer included.
func (r *Registry) All() []Persona {
	out := make([]Persona, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Advisors returns the non-summarizer personas in declaration order.
func (r *Registry) Advisors() []Persona {
	out := make([]Persona, 0, len(r.order))
	for _, id := range r.order {
		if p := r.byID[id]; !p.Summarizer {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Summarizer() (Persona, bool) {
	for _, id := range r.order {
		if p := r.byID[id]; p.Summarizer {
			return p, true
		}
	}
	return Persona{}, false
}

// Select resolves ids to advisors, keeping the caller's order. An empty list
// selects every advisor. Duplicates keep their first position.
func (r *Registry) Select(ids []string) ([]Persona, error) {
	if len(ids) == 0 {
		return r.Advisors(), nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]Persona, 0, len(ids))
	for _, raw := range ids {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		p, ok := r.Lookup(raw)
		if !ok {
			return nil, fmt.Errorf("%w %q; available personas: %s", ErrUnknownPersona, raw, strings.Join(r.advisorIDs(), ", "))
		}
		if p.Summarizer {
			return nil, fmt.Errorf("%w: %q", ErrSummarizerNotAdvisor, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return r.Advisors(), nil
	}
	return out, nil
}

func (r *Registry) advisorIDs() []string {
	advisors := r.Advisors()
	ids := make([]string, len(advisors))
	for i, p := range advisors {
		ids[i] = p.ID
	}
	return ids
}

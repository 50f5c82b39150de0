package council

import (
	"context"
	"fmt"

	"braintrust/internal/logger"
	"braintrust/internal/persona"

	"golang.org/x/sync/errgroup"
)

// Task pairs a selected persona with the exemplars loaded for it.
type Task struct {
	Persona   persona.Persona
	Exemplars []string
}

// Dispatcher fans the question out to every selected advisor.
type Dispatcher struct {
	Invoker AdvisorInvoker
	// MaxParallel caps in-flight requests; 0 runs every advisor at once.
	MaxParallel int
}

func NewDispatcher(inv AdvisorInvoker) *Dispatcher {
	return &Dispatcher{Invoker: inv}
}

// Dispatch returns exactly one result per task, in task order. Failures are
// recorded on the result and never cancel the other advisors.
func (d *Dispatcher) Dispatch(ctx context.Context, question string, tasks []Task) []AdvisorResult {
	if len(tasks) == 0 {
		return nil
	}
	results := make([]AdvisorResult, len(tasks))
	var eg errgroup.Group
	if d.MaxParallel > 0 {
		eg.SetLimit(d.MaxParallel)
	}
	for i, task := range tasks {
		i, task := i, task
		eg.Go(func() error {
			results[i] = d.invokeSafe(ctx, task, question)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logger.Debugf("dispatch errgroup: %v", err)
	}
	return results
}

func (d *Dispatcher) invokeSafe(ctx context.Context, task Task, question string) (out AdvisorResult) {
	p := task.Persona
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("advisor %s panic: %v", p.ID, r)
			out = AdvisorResult{PersonaID: p.ID, DisplayName: p.DisplayName, Exemplars: task.Exemplars}
			out.fail(fmt.Errorf("advisor %s panic: %v", p.ID, r))
		}
	}()
	if d.Invoker == nil {
		out = AdvisorResult{PersonaID: p.ID, DisplayName: p.DisplayName, Exemplars: task.Exemplars}
		out.fail(fmt.Errorf("advisor %s: no invoker configured", p.ID))
		return out
	}
	return d.Invoker.Invoke(ctx, p, question, task.Exemplars)
}

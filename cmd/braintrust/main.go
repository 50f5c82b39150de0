package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"braintrust/internal/council"
	"braintrust/internal/exemplar"
	"braintrust/internal/persona"
	"braintrust/internal/render"

	"github.com/spf13/cobra"
)

// errReported marks failures already printed to the user.
var errReported = errors.New("reported")

type rootOptions struct {
	configPath   string
	personas     []string
	verbose      bool
	noSummary    bool
	plain        bool
	exemplarsDir string
	timeout      time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "braintrust [question]",
		Short: "Ask a panel of AI advisors and get a synthesized answer",
		Long: `braintrust sends one question to several independently prompted advisor
personas in parallel, shows each answer and, unless disabled, an executive
summary with the key disagreements between them.

Examples:
  braintrust "Should we adopt a microservices architecture?"
  braintrust "How should we prioritize technical debt?" --verbose
  braintrust "Raise prices in Q3?" -p strategist,risk_officer --no-summary`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, args[0])
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", os.Getenv("BRAINTRUST_CONFIG"), "YAML config file (or set BRAINTRUST_CONFIG)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Show the detailed transcript and debug logs")
	pf.BoolVar(&opts.plain, "plain", false, "Print advisor text without markdown rendering")

	f := cmd.Flags()
	f.StringSliceVarP(&opts.personas, "personas", "p", nil, "Comma-separated advisor IDs (default: all advisors)")
	f.BoolVar(&opts.noSummary, "no-summary", false, "Skip the executive summary and show only advisor outputs")
	f.StringVar(&opts.exemplarsDir, "exemplars-dir", "", "Directory containing persona exemplar JSON files (default: data/exemplars)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Overall deadline for the deliberation (0 = none)")

	cmd.AddCommand(newPersonasCmd(opts), newServeCmd(opts), newHistoryCmd(opts))
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runAsk(cmd *cobra.Command, opts *rootOptions, question string) error {
	out := cmd.OutOrStdout()
	status := render.New(out, nil, render.Options{Plain: opts.plain})

	if strings.TrimSpace(question) == "" {
		status.Failure("Configuration error", council.ErrEmptyQuestion)
		return errReported
	}
	status.Status("Loading configuration...")
	rt, err := newRuntime(opts, true)
	if err != nil {
		status.Failure("Configuration error", err)
		return errReported
	}
	defer rt.Close()

	ids := opts.personas
	if len(ids) == 0 {
		ids = rt.cfg.Council.Advisors
	}
	selected, err := rt.registry.Select(ids)
	if err != nil {
		status.Failure("Configuration error", err)
		return errReported
	}
	status.Success("Configuration loaded successfully")
	status.Status("Using advisors: " + joinIDs(selected))

	r := render.New(out, rt.registry, render.Options{Verbose: opts.verbose, Plain: opts.plain})
	r.Question(question)

	engine, err := rt.engine(exemplar.LoadAll(rt.exemplarDir(), personaIDs(selected)))
	if err != nil {
		r.Failure("Error", err)
		return errReported
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	r.Status("Running deliberation...")
	sess, err := engine.Deliberate(ctx, council.Request{Question: question, Personas: ids, NoSummary: opts.noSummary})
	if err != nil {
		r.Failure("Error", err)
		return errReported
	}
	r.Session(sess)
	if sess.Failed() == len(sess.Advisors) {
		r.Failure("Error", fmt.Errorf("all %d advisors failed", len(sess.Advisors)))
		return errReported
	}
	r.Success("Deliberation complete")
	return nil
}

func personaIDs(list []persona.Persona) []string {
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	return ids
}

func joinIDs(list []persona.Persona) string {
	return strings.Join(personaIDs(list), ", ")
}

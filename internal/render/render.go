// Package render prints deliberation sessions as terminal panels.
package render

import (
	"fmt"
	"io"
	"strings"

	"braintrust/internal/council"
	"braintrust/internal/persona"
	"braintrust/internal/pkg/text"
	"braintrust/internal/store/archive"

	"github.com/charmbracelet/glamour"
)

const defaultWidth = 100

type Options struct {
	// Verbose appends the per-node transcript.
	Verbose bool
	// Plain disables markdown rendering.
	Plain bool
	Width int
}

// Renderer writes panels to one output stream.
type Renderer struct {
	out     io.Writer
	opts    Options
	md      *glamour.TermRenderer
	colorOf map[string]string
}

func New(out io.Writer, reg *persona.Registry, opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	r := &Renderer{out: out, opts: opts, colorOf: map[string]string{}}
	if !opts.Plain {
		// Panel padding and border eat 6 columns.
		r.md = newMarkdownRenderer(opts.Width - 6)
	}
	if reg != nil {
		for _, p := range reg.All() {
			r.colorOf[p.ID] = p.Color
		}
	}
	return r
}

// markdown renders text with glamour, falling back to the raw text.
func (r *Renderer) markdown(src string) string {
	if r.md == nil || strings.TrimSpace(src) == "" {
		return src
	}
	out, err := r.md.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) println(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *Renderer) Status(msg string) {
	r.println(dimStyle.Render(msg))
}

func (r *Renderer) Success(msg string) {
	r.println(successStyle.Render("✓") + " " + msg)
}

// Failure prints "✗ <kind>: <err>".
func (r *Renderer) Failure(kind string, err error) {
	r.println("")
	r.println(failureStyle.Render("✗") + " " + kind + ": " + err.Error())
}

func (r *Renderer) Question(q string) {
	r.println(panel("Question", boldStyle.Render(q), "white", r.opts.Width))
}

// Session prints the summary panels (unless skipped), every advisor panel
// in selection order and, in verbose mode, the transcript.
func (r *Renderer) Session(s *council.Session) {
	if s == nil {
		return
	}
	r.Summary(s.Summary)
	for _, res := range s.Advisors {
		r.Advisor(res)
	}
	if r.opts.Verbose {
		r.Transcript(s)
	}
}

func (r *Renderer) Summary(sum council.Summary) {
	switch sum.Status {
	case council.SummarySkipped:
		return
	case council.SummaryFailed:
		r.println("")
		r.println(panel("Executive Summary", "Summary unavailable: "+sum.Error, "red", r.opts.Width))
		return
	}
	r.println("")
	r.println(panel("Executive Summary", r.markdown(sum.Text), "cyan", r.opts.Width))
	if len(sum.Dissent) == 0 {
		return
	}
	lines := make([]string, len(sum.Dissent))
	for i, d := range sum.Dissent {
		lines[i] = "• " + d
	}
	r.println("")
	r.println(panel("Key Disagreements", strings.Join(lines, "\n"), "yellow", r.opts.Width))
}

func (r *Renderer) Advisor(res council.AdvisorResult) {
	title := res.DisplayName
	if title == "" {
		title = res.PersonaID
	}
	r.println("")
	if !res.OK() {
		r.println(panel(title, "✗ "+res.Error, "red", r.opts.Width))
		return
	}
	color, ok := r.colorOf[res.PersonaID]
	if !ok {
		color = "gray"
	}
	r.println(panel(title, r.markdown(res.Output), color, r.opts.Width))
}

// Transcript prints every node's raw output, scratchpad and token usage.
func (r *Renderer) Transcript(s *council.Session) {
	r.println("")
	r.println(panel("Verbose Output", boldStyle.Render("Detailed Transcript"), "magenta", r.opts.Width))
	for _, res := range s.Advisors {
		name := res.DisplayName
		if name == "" {
			name = res.PersonaID
		}
		r.println("")
		r.println(nodeStyle.Render("=== " + name + " ==="))
		if !res.OK() {
			r.println(failureStyle.Render("Error: ") + res.Error)
			continue
		}
		r.println("")
		r.println(boldStyle.Render("Advisor Output:"))
		r.println(res.Output)
		if res.Scratchpad != "" {
			r.println("")
			r.println(dimStyle.Render("Private Scratchpad:"))
			r.println(r.markdown(res.Scratchpad))
		}
		r.println(dimStyle.Render(fmt.Sprintf("tokens: prompt=%d completion=%d elapsed=%s",
			res.Usage.PromptTokens, res.Usage.CompletionTokens, res.Elapsed)))
	}
	if !s.Summary.Skipped() {
		r.println("")
		r.println(nodeStyle.Render("=== Summarizer ==="))
		if s.Summary.Status == council.SummaryFailed {
			r.println(failureStyle.Render("Error: ") + s.Summary.Error)
		} else {
			r.println("")
			r.println(boldStyle.Render("Summary:"))
			r.println(s.Summary.Text)
			if len(s.Summary.Dissent) > 0 {
				r.println("")
				r.println(boldStyle.Render("Disagreements:"))
				for _, d := range s.Summary.Dissent {
					r.println("  • " + d)
				}
			}
		}
	}
	r.println("")
	r.println(usageLine(s))
}

func usageLine(s *council.Session) string {
	line := fmt.Sprintf("Session %s: %d tokens (prompt %d, completion %d) in %s",
		s.ID, s.Usage.Total(), s.Usage.PromptTokens, s.Usage.CompletionTokens, s.Duration)
	if s.Cost != nil {
		line += fmt.Sprintf(", cost %s %s", s.Cost.Total.StringFixed(6), s.Cost.Currency)
	}
	return dimStyle.Render(line)
}

// Personas lists the registry, advisors first.
func (r *Renderer) Personas(reg *persona.Registry) {
	var b strings.Builder
	for _, p := range reg.Advisors() {
		fmt.Fprintf(&b, "%-18s %s\n", p.ID, p.DisplayName)
	}
	if s, ok := reg.Summarizer(); ok {
		fmt.Fprintf(&b, "%-18s %s (summarizer)\n", s.ID, s.DisplayName)
	}
	r.println(panel("Personas", b.String(), "white", r.opts.Width))
}

// History lists archived sessions, newest first.
func (r *Renderer) History(entries []archive.Entry) {
	if len(entries) == 0 {
		r.Status("No archived sessions.")
		return
	}
	var b strings.Builder
	for _, e := range entries {
		q := text.Truncate(e.Question, 48)
		fmt.Fprintf(&b, "%s  %s  %d/%d ok  summary=%-7s %s\n",
			e.ID, e.StartedAt.Local().Format("2006-01-02 15:04"), e.Advisors-e.Failed, e.Advisors, e.SummaryStatus, q)
	}
	r.println(panel("History", b.String(), "white", r.opts.Width+40))
}

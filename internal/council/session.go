package council

import (
	"context"
	"time"

	"braintrust/internal/gateway/provider"
)

// AdvisorResult is one persona's answer to the question.
type AdvisorResult struct {
	PersonaID   string `json:"persona_id"`
	DisplayName string `json:"display_name"`
	// Output holds the brief answer, bullet points and open questions.
	Output     string   `json:"output"`
	Scratchpad string   `json:"scratchpad,omitempty"`
	Exemplars  []string `json:"exemplars,omitempty"`

	SystemPrompt string `json:"-"`
	UserPrompt   string `json:"-"`

	Model   string         `json:"model,omitempty"`
	Usage   provider.Usage `json:"usage"`
	Elapsed time.Duration  `json:"elapsed"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// OK reports whether the advisor produced an answer.
func (r AdvisorResult) OK() bool { return r.Err == nil && r.Error == "" }

func (r *AdvisorResult) fail(err error) {
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

type SummaryStatus string

const (
	SummaryOK      SummaryStatus = "ok"
	SummaryFailed  SummaryStatus = "failed"
	SummarySkipped SummaryStatus = "skipped"
)

// Summary is the summarizer's synthesis of every advisor answer.
type Summary struct {
	Status SummaryStatus `json:"status"`
	// Text carries the executive summary, convergences, divergences and
	// recommended actions.
	Text    string   `json:"text,omitempty"`
	Dissent []string `json:"dissent,omitempty"`

	SystemPrompt string `json:"-"`
	UserPrompt   string `json:"-"`

	Model   string         `json:"model,omitempty"`
	Usage   provider.Usage `json:"usage"`
	Elapsed time.Duration  `json:"elapsed"`

	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

func (s Summary) Skipped() bool { return s.Status == SummarySkipped }

func (s *Summary) fail(err error) {
	s.Status = SummaryFailed
	s.Err = err
	if err != nil {
		s.Error = err.Error()
	}
}

// Session is the record of one deliberation.
type Session struct {
	ID        string          `json:"id"`
	Question  string          `json:"question"`
	Model     string          `json:"model"`
	Advisors  []AdvisorResult `json:"advisors"`
	Summary   Summary         `json:"summary"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	Usage     provider.Usage  `json:"usage"`
	Cost      *Cost           `json:"cost,omitempty"`
}

// Failed counts advisors that returned an error.
func (s *Session) Failed() int {
	n := 0
	for _, r := range s.Advisors {
		if !r.OK() {
			n++
		}
	}
	return n
}

// SessionObserver is notified after every finished deliberation.
type SessionObserver interface {
	AfterDeliberate(ctx context.Context, s *Session)
}

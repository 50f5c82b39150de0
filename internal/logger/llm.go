package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

var (
	llmMu   sync.Mutex
	llmLog  *log.Logger
	llmBody bool
)

// SetLLMWriter directs prompt/response dumps to w. A nil writer disables them.
func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

// EnableLLMBodyDump additionally records raw HTTP request bodies.
func EnableLLMBodyDump(enabled bool) {
	llmMu.Lock()
	llmBody = enabled
	llmMu.Unlock()
}

type llmSection struct {
	Title string
	Body  string
}

func logLLM(kind, persona, model string, sections []llmSection) {
	llmMu.Lock()
	out := llmLog
	llmMu.Unlock()
	if out == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM]")
	for _, tag := range []string{kind, persona, model} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	out.Print(b.String())
}

func LogLLMRequest(persona, model, systemPrompt, userPrompt string) {
	logLLM("request", persona, model, []llmSection{
		{Title: "SYSTEM", Body: systemPrompt},
		{Title: "USER", Body: userPrompt},
	})
}

func LogLLMResponse(persona, model, raw string, err error) {
	sections := []llmSection{{Title: "RAW", Body: raw}}
	if err != nil {
		sections = append(sections, llmSection{Title: "ERROR", Body: err.Error()})
	}
	logLLM("response", persona, model, sections)
}

// LogLLMBody records the serialized HTTP body when body dumps are enabled.
func LogLLMBody(model, body string) {
	llmMu.Lock()
	enabled := llmBody
	llmMu.Unlock()
	if !enabled || strings.TrimSpace(body) == "" {
		return
	}
	logLLM("body", "", model, []llmSection{{Title: "PAYLOAD", Body: body}})
}

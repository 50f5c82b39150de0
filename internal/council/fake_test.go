package council

import (
	"context"
	"fmt"
	"sync"

	"braintrust/internal/gateway/provider"

	"github.com/stretchr/testify/mock"
)

// fakeProvider records every payload and answers through respond.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []provider.ChatPayload
	respond func(ctx context.Context, p provider.ChatPayload) (provider.Completion, error)
}

func (f *fakeProvider) ID() string    { return "fake" }
func (f *fakeProvider) Model() string { return "fake/model" }

func (f *fakeProvider) Call(ctx context.Context, p provider.ChatPayload) (provider.Completion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(ctx, p)
	}
	return advisorReply(p.Tag), nil
}

func (f *fakeProvider) payloads() []provider.ChatPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]provider.ChatPayload, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeProvider) callsFor(tag string) []provider.ChatPayload {
	var out []provider.ChatPayload
	for _, p := range f.payloads() {
		if p.Tag == tag {
			out = append(out, p)
		}
	}
	return out
}

func advisorReply(tag string) provider.Completion {
	if tag == "summarizer" {
		return provider.Completion{
			Content: "=== SUMMARY ===\nAll agree.\n\n=== DISSENT ===\n- timing differs\n",
			Usage:   provider.Usage{PromptTokens: 100, CompletionTokens: 20},
		}
	}
	return provider.Completion{
		Content: fmt.Sprintf("=== ADVISOR OUTPUT ===\nanswer from %s\n\n=== SCRATCHPAD ===\nnotes of %s", tag, tag),
		Usage:   provider.Usage{PromptTokens: 10, CompletionTokens: 5},
	}
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ID() string    { return "mock" }
func (m *mockProvider) Model() string { return "mock/model" }

func (m *mockProvider) Call(ctx context.Context, p provider.ChatPayload) (provider.Completion, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(provider.Completion), args.Error(1)
}

package llmtest

import (
	"context"
	"sync"

	"rd-assistant/pkg/llm"
)

// StubProvider returns canned responses in order and records the prompts it
// received. Once the scripted responses run out it repeats the last one.
type StubProvider struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
	calls     int
}

var _ llm.LLMProvider = &StubProvider{}

func NewStubProvider(responses ...string) *StubProvider {
	return &StubProvider{Responses: responses}
}

func (s *StubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return s.next("")
	}
	return s.next(history[len(history)-1].Content)
}

func (s *StubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.next(prompt)
}

func (s *StubProvider) next(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "{}", nil
	}

	idx := s.calls
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}
	s.calls++
	return s.Responses[idx], nil
}

// CallCount reports how many requests the stub has served.
func (s *StubProvider) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

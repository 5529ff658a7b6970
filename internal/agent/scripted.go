package agent

import (
	"context"
	"sync"
)

// ScriptedResult is one programmed Invoke outcome.
type ScriptedResult struct {
	Output string
	Err    error
}

// Scripted implements Agent for tests. It returns a programmed sequence
// of results and records every prompt it receives.
type Scripted struct {
	mu      sync.Mutex
	results []ScriptedResult
	next    int
	prompts []string
}

// NewScripted creates a Scripted agent that plays back the given results
// in order. Invocations past the end of the script return the last
// result again (or an empty success if no results were given).
func NewScripted(results ...ScriptedResult) *Scripted {
	return &Scripted{results: results}
}

// Invoke records the prompt and returns the next scripted result.
func (s *Scripted) Invoke(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)

	if len(s.results) == 0 {
		return "", nil
	}
	result := s.results[s.next]
	if s.next < len(s.results)-1 {
		s.next++
	}
	return result.Output, result.Err
}

// Calls returns how many times Invoke was called.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns a copy of the recorded prompts.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

var _ Agent = (*Scripted)(nil)

package llm

import (
	"context"
	"fmt"
	"sync"
)

// StaticCompleter is a canned-response Completer for tests and the dry-run
// CLI path. Responses are served in order; when they run out the last one
// repeats.
type StaticCompleter struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

// NewStaticCompleter creates a completer serving the given responses.
func NewStaticCompleter(responses ...string) *StaticCompleter {
	return &StaticCompleter{responses: responses}
}

// NewFailingCompleter creates a completer whose every call fails with err.
func NewFailingCompleter(err error) *StaticCompleter {
	return &StaticCompleter{err: err}
}

// Complete implements [Completer].
func (s *StaticCompleter) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if req != nil {
		s.prompts = append(s.prompts, req.Prompt)
	}

	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, fmt.Errorf("static completer has no responses")
	}

	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}

	return &CompletionResult{
		Text:    s.responses[idx],
		ModelID: "static",
	}, nil
}

// Shutdown implements [Completer].
func (s *StaticCompleter) Shutdown(ctx context.Context) error {
	return nil
}

// Calls returns how many times Complete was invoked.
func (s *StaticCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Prompts returns the prompts seen so far.
func (s *StaticCompleter) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}

var _ Completer = (*StaticCompleter)(nil)

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotEngine runs completions through the GitHub Copilot SDK.
type CopilotEngine struct {
	defaultModelID string

	client copilotClient

	startOnce sync.Once
}

// CopilotEngineBuilder builds a CopilotEngine with options.
type CopilotEngineBuilder struct {
	engine *CopilotEngine
}

// CopilotEngineBuilderOptions carries test seams for the builder.
type CopilotEngineBuilderOptions struct {
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotEngineBuilder creates a builder for CopilotEngine.
//   - defaultModelID - used if no model is specified per request. Can be
//     blank, which lets the copilot CLI choose its own fallback model.
func NewCopilotEngineBuilder(defaultModelID string, options *CopilotEngineBuilderOptions) *CopilotEngineBuilder {
	var client copilotClient

	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	if options == nil || options.NewCopilotClient == nil {
		client = newCopilotClient(copilotOptions)
	} else {
		client = options.NewCopilotClient(copilotOptions)
	}

	builder := &CopilotEngineBuilder{
		engine: &CopilotEngine{
			defaultModelID: defaultModelID,
		},
	}

	builder.engine.client = client
	return builder
}

// Build returns the built engine.
func (b *CopilotEngineBuilder) Build() *CopilotEngine {
	return b.engine
}

// Complete implements [Completer].
func (e *CopilotEngine) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to CopilotEngine.Complete")
	}
	if req.Timeout <= 0 {
		return nil, fmt.Errorf("positive Timeout is required")
	}

	var startErr error

	e.startOnce.Do(func() {
		// NOTE: the copilot client has an 'autostart' feature, but it runs
		// into issues when it tries to autostart from separate goroutines.
		startErr = e.client.Start(ctx)
	})

	if startErr != nil {
		return nil, fmt.Errorf("copilot failed to start: %w", startErr)
	}

	modelID := e.defaultModelID
	if req.Model != "" {
		modelID = req.Model
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	session, err := e.client.CreateSession(ctx, &copilot.SessionConfig{
		Model: modelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Collect assistant message content as it arrives; SendAndWait's final
	// event does not always carry the full reply.
	var partsMu sync.Mutex
	var parts []string

	unsubscribe := session.On(func(event copilot.SessionEvent) {
		if event.Type != copilot.AssistantMessage || event.Data.Content == nil {
			return
		}
		partsMu.Lock()
		parts = append(parts, *event.Data.Content)
		partsMu.Unlock()
	})
	defer unsubscribe()

	resp, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: joinSystemAndPrompt(req.System, req.Prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	text := ""
	if resp != nil && resp.Data.Content != nil {
		text = *resp.Data.Content
	}
	if text == "" {
		partsMu.Lock()
		text = strings.Join(parts, "")
		partsMu.Unlock()
	}

	return &CompletionResult{
		Text:       text,
		ModelID:    modelID,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// Shutdown implements [Completer].
func (e *CopilotEngine) Shutdown(ctx context.Context) error {
	if err := e.client.Stop(); err != nil {
		slog.Info("failed to stop copilot client", "error", err)
	}
	return nil
}

func joinSystemAndPrompt(system, prompt string) string {
	if system == "" {
		return prompt
	}
	return system + "\n\n" + prompt
}

var _ Completer = (*CopilotEngine)(nil)

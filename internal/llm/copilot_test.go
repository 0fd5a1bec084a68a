package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession replays one SendAndWait response and optionally a stream of
// assistant message events first.
type fakeSession struct {
	events      []string
	finalText   *string
	sendErr     error
	unsubscribe int
}

func (f *fakeSession) On(handler copilot.SessionEventHandler) func() {
	for i := range f.events {
		handler(copilot.SessionEvent{
			Type: copilot.AssistantMessage,
			Data: copilot.Data{Content: &f.events[i]},
		})
	}
	return func() { f.unsubscribe++ }
}

func (f *fakeSession) SendAndWait(_ context.Context, _ copilot.MessageOptions) (*copilot.SessionEvent, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &copilot.SessionEvent{
		Data: copilot.Data{Content: f.finalText},
	}, nil
}

type fakeClient struct {
	session    *fakeSession
	sessionErr error
	startErr   error
	starts     int
	stops      int
	lastConfig *copilot.SessionConfig
}

func (f *fakeClient) CreateSession(_ context.Context, config *copilot.SessionConfig) (copilotSession, error) {
	f.lastConfig = config
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeClient) Start(_ context.Context) error {
	f.starts++
	return f.startErr
}

func (f *fakeClient) Stop() error {
	f.stops++
	return nil
}

func newTestEngine(client *fakeClient, defaultModel string) *CopilotEngine {
	return NewCopilotEngineBuilder(defaultModel, &CopilotEngineBuilderOptions{
		NewCopilotClient: func(_ *copilot.ClientOptions) copilotClient { return client },
	}).Build()
}

func strPtr(s string) *string { return &s }

func TestCopilotComplete(t *testing.T) {
	client := &fakeClient{session: &fakeSession{finalText: strPtr(`{"script": "hello"}`)}}
	engine := newTestEngine(client, "default-model")

	res, err := engine.Complete(context.Background(), &CompletionRequest{
		System:  "You write scripts.",
		Prompt:  "Write one.",
		Timeout: time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"script": "hello"}`, res.Text)
	assert.Equal(t, "default-model", res.ModelID)
	assert.Equal(t, "default-model", client.lastConfig.Model)
	assert.Equal(t, 1, client.starts)
	assert.Equal(t, 1, client.session.unsubscribe)
}

func TestCopilotCompleteModelOverride(t *testing.T) {
	client := &fakeClient{session: &fakeSession{finalText: strPtr("ok")}}
	engine := newTestEngine(client, "default-model")

	res, err := engine.Complete(context.Background(), &CompletionRequest{
		Prompt:  "hi",
		Model:   "this-model-wins",
		Timeout: time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, "this-model-wins", res.ModelID)
	assert.Equal(t, "this-model-wins", client.lastConfig.Model)
}

func TestCopilotCompleteFallsBackToStreamedParts(t *testing.T) {
	// The final event carries no content; the reply arrives as streamed
	// assistant messages instead.
	client := &fakeClient{session: &fakeSession{events: []string{`{"script": `, `"hello"}`}}}
	engine := newTestEngine(client, "m")

	res, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "hi", Timeout: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, `{"script": "hello"}`, res.Text)
}

func TestCopilotCompleteStartsOnce(t *testing.T) {
	client := &fakeClient{session: &fakeSession{finalText: strPtr("ok")}}
	engine := newTestEngine(client, "m")

	for i := 0; i < 3; i++ {
		_, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "hi", Timeout: time.Minute})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, client.starts)
}

func TestCopilotCompleteRequiresTimeout(t *testing.T) {
	engine := newTestEngine(&fakeClient{session: &fakeSession{}}, "m")

	_, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "hi"})
	assert.Error(t, err)
}

func TestCopilotCompleteNilRequest(t *testing.T) {
	engine := newTestEngine(&fakeClient{session: &fakeSession{}}, "m")

	_, err := engine.Complete(context.Background(), nil)
	assert.Error(t, err)
}

func TestCopilotCompleteStartError(t *testing.T) {
	client := &fakeClient{startErr: errors.New("cli not installed")}
	engine := newTestEngine(client, "m")

	_, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "hi", Timeout: time.Minute})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start")
}

func TestCopilotCompleteSendError(t *testing.T) {
	client := &fakeClient{session: &fakeSession{sendErr: errors.New("stream reset")}}
	engine := newTestEngine(client, "m")

	_, err := engine.Complete(context.Background(), &CompletionRequest{Prompt: "hi", Timeout: time.Minute})
	assert.Error(t, err)
}

func TestCopilotShutdown(t *testing.T) {
	client := &fakeClient{session: &fakeSession{finalText: strPtr("ok")}}
	engine := newTestEngine(client, "m")

	require.NoError(t, engine.Shutdown(context.Background()))
	assert.Equal(t, 1, client.stops)
}

func TestJoinSystemAndPrompt(t *testing.T) {
	assert.Equal(t, "p", joinSystemAndPrompt("", "p"))
	assert.Equal(t, "s\n\np", joinSystemAndPrompt("s", "p"))
}

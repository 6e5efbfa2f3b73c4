package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

type fakeCompleter struct {
	calls   int
	errs    []error
	replies []*llms.ContentResponse
}

func (f *fakeCompleter) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "ok"}}}, nil
}

func testGateway(c completer) *Gateway {
	return &Gateway{
		model:    c,
		provider: "openai",
		retry: RetryPolicy{
			BaseDelay:   time.Millisecond,
			MaxDelay:    5 * time.Millisecond,
			MaxAttempts: 3,
		},
	}
}

func TestGateway_CompleteSucceedsFirstTry(t *testing.T) {
	fc := &fakeCompleter{replies: []*llms.ContentResponse{
		{Choices: []*llms.ContentChoice{{Content: "hello"}}},
	}}
	g := testGateway(fc)

	res, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 100, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, 1, fc.calls)
}

func TestGateway_RetriesTransportErrorsThenSucceeds(t *testing.T) {
	fc := &fakeCompleter{
		errs: []error{errors.New("connection reset"), errors.New("503 service unavailable")},
		replies: []*llms.ContentResponse{
			nil, nil,
			{Choices: []*llms.ContentChoice{{Content: "recovered"}}},
		},
	}
	g := testGateway(fc)

	res, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 100, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Text)
	assert.Equal(t, 3, fc.calls)
}

func TestGateway_ExhaustsRetriesAndReturnsUnavailable(t *testing.T) {
	fc := &fakeCompleter{errs: []error{
		errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
	}}
	g := testGateway(fc)

	_, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 100, 0.5)
	require.Error(t, err)
	assert.Equal(t, voiderr.LLMUnavailable, voiderr.KindOf(err))
	assert.Equal(t, 3, fc.calls)
}

func TestGateway_DoesNotRetryClientErrors(t *testing.T) {
	fc := &fakeCompleter{errs: []error{errors.New("401 invalid api key")}}
	g := testGateway(fc)

	_, err := g.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 100, 0.5)
	require.Error(t, err)
	assert.Equal(t, 1, fc.calls)
}

func TestGateway_CancelledContextStopsRetryLoop(t *testing.T) {
	fc := &fakeCompleter{errs: []error{errors.New("timeout"), errors.New("timeout"), errors.New("timeout")}}
	g := testGateway(fc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Complete(ctx, []Message{{Role: "user", Content: "hi"}}, 100, 0.5)
	require.Error(t, err)
}

func TestToMessageContent_MapsRoles(t *testing.T) {
	out := toMessageContent([]Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "usr"},
		{Role: "assistant", Content: "asst"},
	})
	require.Len(t, out, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, out[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, out[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, out[2].Role)
}

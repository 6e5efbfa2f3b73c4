package mcpserver

import (
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

func TestExtractArguments_MapPassThrough(t *testing.T) {
	req := &mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"query": "hello"}

	args, err := extractArguments(req)
	require.NoError(t, err)
	assert.Equal(t, "hello", args["query"])
}

func TestExtractArguments_JSONRoundTrip(t *testing.T) {
	req := &mcp.CallToolRequest{}
	req.Params.Arguments = json.RawMessage(`{"limit": 5}`)

	args, err := extractArguments(req)
	require.NoError(t, err)
	assert.Equal(t, float64(5), args["limit"])
}

func TestExtractArguments_Nil(t *testing.T) {
	req := &mcp.CallToolRequest{}

	args, err := extractArguments(req)
	require.NoError(t, err)
	assert.NotNil(t, args)
	assert.Empty(t, args)
}

func TestErrorCode_MapsKnownKinds(t *testing.T) {
	cases := map[voiderr.Kind]string{
		voiderr.LLMUnavailable:  "LLM_UNAVAILABLE",
		voiderr.KnowledgeEmpty:  "KNOWLEDGE_EMPTY",
		voiderr.Conflict:        "TASK_CONFLICT",
		voiderr.NotFound:        "NOT_FOUND",
		voiderr.Timeout:         "TIMEOUT",
		voiderr.Internal:        "INTERNAL",
		voiderr.InvalidArgument: "INTERNAL",
	}
	for kind, want := range cases {
		assert.Equal(t, want, errorCode(kind), "kind=%s", kind)
	}
}

func TestToolError_EmbedsCodeAndMessage(t *testing.T) {
	result := toolError(voiderr.New(voiderr.NotFound, "task not found"))
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var payload errPayload
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	assert.Equal(t, "NOT_FOUND", payload.Code)
	assert.Equal(t, "task not found", payload.Message)
}

func TestSuccessResult_MarshalsValue(t *testing.T) {
	result := successResult(map[string]any{"ok": true})
	assert.False(t, result.IsError)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"ok":true`)
}

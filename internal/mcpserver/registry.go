// Package mcpserver exposes the reasoning core over the Model Context
// Protocol: a tool registry wrapping mcp.Server.AddTool with a concurrency
// cap and a uniform error shape, plus the resource and prompt handlers
// surfaced alongside the tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// ToolInfo is a registered tool's name and description, surfaced through
// the voidcat_list_tools tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Handler is the shape every registered tool implements: take already
// type-converted arguments, do the work, return a result or a typed error.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Registry wraps mcp.Server.AddTool with a counting semaphore bounding the
// number of tool calls in flight at once, and a uniform result shape for
// handler errors.
type Registry struct {
	server *mcp.Server
	logger *zap.Logger
	sem    chan struct{}
	tools  []ToolInfo
}

// NewRegistry builds a Registry over an already-constructed mcp.Server.
// concurrencyCap bounds in-flight tool calls; excess calls block on the
// semaphore rather than being rejected.
func NewRegistry(server *mcp.Server, concurrencyCap int, logger *zap.Logger) *Registry {
	if concurrencyCap <= 0 {
		concurrencyCap = 8
	}
	return &Registry{
		server: server,
		logger: logger,
		sem:    make(chan struct{}, concurrencyCap),
	}
}

// Tools returns every tool registered so far, in registration order.
func (r *Registry) Tools() []ToolInfo {
	out := make([]ToolInfo, len(r.tools))
	copy(out, r.tools)
	return out
}

// Add registers a tool with the given name, description and input schema,
// bounding concurrent execution and converting handler errors into the
// CallToolResult{IsError: true} shape the MCP client expects.
func (r *Registry) Add(name, description string, schema *jsonschema.Schema, h Handler) {
	tool := &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}
	r.server.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		select {
		case r.sem <- struct{}{}:
		case <-ctx.Done():
			return errorResult(voiderr.Timeout, "request cancelled while waiting for a free tool slot"), nil
		}
		defer func() { <-r.sem }()

		args, err := extractArguments(req)
		if err != nil {
			return errorResult(voiderr.InvalidArgument, err.Error()), nil
		}

		result, err := h(ctx, args)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
			}
			return toolError(err), nil
		}
		return successResult(result), nil
	})
	r.tools = append(r.tools, ToolInfo{Name: name, Description: description})
}

// extractArguments type-asserts req.Params.Arguments to a map, falling
// back to a JSON round-trip when the SDK hands back a different concrete
// type (e.g. a json.RawMessage or a struct).
func extractArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params.Arguments == nil {
		return map[string]any{}, nil
	}
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		return args, nil
	}
	raw, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return nil, fmt.Errorf("arguments must be serializable: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("arguments must decode to an object: %w", err)
	}
	return out, nil
}

// errorCode maps a voiderr.Kind to the short uppercase code the MCP error
// payload carries. Unlike the HTTP gateway, InvalidArgument has no code of
// its own here and is reported as INTERNAL.
func errorCode(kind voiderr.Kind) string {
	switch kind {
	case voiderr.LLMUnavailable:
		return "LLM_UNAVAILABLE"
	case voiderr.KnowledgeEmpty:
		return "KNOWLEDGE_EMPTY"
	case voiderr.Conflict:
		return "TASK_CONFLICT"
	case voiderr.NotFound:
		return "NOT_FOUND"
	case voiderr.Timeout:
		return "TIMEOUT"
	default:
		return "INTERNAL"
	}
}

// errPayload is the machine-readable body embedded in an error tool result.
type errPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResult builds a CallToolResult{IsError: true} whose text content is
// a JSON object carrying a code and message, so callers can parse it
// without depending on the human-readable prefix.
func errorResult(kind voiderr.Kind, message string) *mcp.CallToolResult {
	body, _ := json.Marshal(errPayload{Code: errorCode(kind), Message: message})
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		IsError: true,
	}
}

// toolError classifies err as a voiderr.Error if possible and builds the
// matching error result, otherwise falls back to an INTERNAL code.
func toolError(err error) *mcp.CallToolResult {
	kind := voiderr.KindOf(err)
	return errorResult(kind, err.Error())
}

// successResult marshals a handler's return value into a single JSON text
// content block.
func successResult(v any) *mcp.CallToolResult {
	body, err := json.Marshal(v)
	if err != nil {
		return errorResult(voiderr.Internal, fmt.Sprintf("failed to marshal result: %s", err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}

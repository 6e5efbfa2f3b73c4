package mcpserver

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/voidcat-ai/reasoning-core/internal/rag"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// registerQueryTools wires the RAG Coordinator's query surface: the full
// enhanced pipeline, the retrieval-only basic path, a thinking-only path,
// runtime stage toggles, and the cached diagnostics snapshot.
func (r *Registry) registerQueryTools(coord *rag.Coordinator) {
	r.Add("voidcat_enhanced_query",
		"Answer a query using the full pipeline: context assembly, adaptive sequential reasoning, and an LLM call, with automatic fallback to a simpler path on failure.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query":           {Type: "string", Description: "The question to answer"},
				"include_trace":   {Type: "boolean", Description: "Include the full reasoning trace in the response"},
				"timeout_ms":      {Type: "number", Description: "Overall timeout in milliseconds (default 30000)"},
				"context_sources": {Type: "number", Description: "Number of context sources to retrieve when falling back to raw top-k"},
			},
			Required: []string{"query"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			query, ok := args["query"].(string)
			if !ok || query == "" {
				return nil, voiderr.New(voiderr.InvalidArgument, "query is required")
			}
			opts := rag.DefaultOptions()
			if v, ok := args["include_trace"].(bool); ok {
				opts.IncludeTrace = v
			}
			if v, ok := args["timeout_ms"].(float64); ok && v > 0 {
				opts.TimeoutMS = int(v)
			}
			if v, ok := args["context_sources"].(float64); ok && v > 0 {
				opts.ContextSources = int(v)
			}
			res, err := coord.Query(ctx, query, opts)
			if err != nil {
				return nil, err
			}
			return res, nil
		})

	r.Add("voidcat_basic_query",
		"Answer a query using only retrieval and a single LLM call, bypassing context assembly and sequential reasoning.",
		&jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"query": {Type: "string", Description: "The question to answer"}},
			Required:   []string{"query"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			query, ok := args["query"].(string)
			if !ok || query == "" {
				return nil, voiderr.New(voiderr.InvalidArgument, "query is required")
			}
			res, err := coord.QueryBasic(ctx, query)
			if err != nil {
				return nil, err
			}
			return res, nil
		})

	r.Add("voidcat_sequential_thinking",
		"Run the adaptive branch-aware reasoning loop over a query with no retrieval context, returning the full thought trace.",
		&jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"query": {Type: "string", Description: "The question to reason about"}},
			Required:   []string{"query"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			query, ok := args["query"].(string)
			if !ok || query == "" {
				return nil, voiderr.New(voiderr.InvalidArgument, "query is required")
			}
			res, err := coord.SequentialOnly(ctx, query)
			if err != nil {
				return nil, err
			}
			return res, nil
		})

	r.Add("voidcat_configure",
		"Toggle the Context7 and Sequential Thinking enhancement stages at runtime.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"enable_context7": {Type: "boolean", Description: "Enable or disable context assembly"},
				"enable_thinking": {Type: "boolean", Description: "Enable or disable sequential reasoning"},
			},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			var c7, th *bool
			if v, ok := args["enable_context7"].(bool); ok {
				c7 = &v
			}
			if v, ok := args["enable_thinking"].(bool); ok {
				th = &v
			}
			coord.Configure(c7, th)
			return coord.Diagnostics(), nil
		})

	r.Add("voidcat_diagnostics",
		"Return the cached health snapshot: knowledge corpus state, LLM reachability, and which enhancement stages are enabled.",
		&jsonschema.Schema{Type: "object"},
		func(_ context.Context, _ map[string]any) (any, error) {
			return coord.Diagnostics(), nil
		})
}

// registerMetaTools registers voidcat_list_tools, which must run after
// every other tool has been registered to see the complete set.
func (r *Registry) registerMetaTools() {
	r.Add("voidcat_list_tools",
		"List every tool this server exposes, with its description.",
		&jsonschema.Schema{Type: "object"},
		func(_ context.Context, _ map[string]any) (any, error) {
			return map[string]any{"tools": r.Tools()}, nil
		})
}

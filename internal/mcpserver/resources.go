package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/voidcat-ai/reasoning-core/internal/rag"
	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
)

// registerResources exposes read-only state as MCP resources: the two
// snapshot resources computed fresh on every read, plus one resource per
// task and memory that exists in the store at registration time. The
// go-sdk resource API takes a fixed URI per resource rather than a URI
// template, so entities created after the server starts aren't picked up
// here; voidcat_list_tasks and voidcat_search_memories cover those and
// never go stale the way a one-time resource enumeration would.
func registerResources(server *mcp.Server, coord *rag.Coordinator, store *taskmem.Store) error {
	server.AddResource(&mcp.Resource{
		URI:         "voidcat://diagnostics",
		Name:        "Diagnostics",
		Description: "Cached health snapshot: knowledge corpus state, LLM reachability, enabled stages.",
		MIMEType:    "application/json",
	}, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		body, err := json.Marshal(coord.Diagnostics())
		if err != nil {
			return nil, fmt.Errorf("marshal diagnostics: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, MIMEType: "application/json", Text: string(body)},
			},
		}, nil
	})

	server.AddResource(&mcp.Resource{
		URI:         "voidcat://reasoning-playbook",
		Name:        "Reasoning Playbook",
		Description: "Guidance on when to use the enhanced, basic, and sequential-only query tools.",
		MIMEType:    "text/markdown",
	}, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, MIMEType: "text/markdown", Text: reasoningPlaybook},
			},
		}, nil
	})

	registerTaskResources(server, store)
	registerMemoryResources(server, store)
	return nil
}

func registerTaskResources(server *mcp.Server, store *taskmem.Store) {
	for _, task := range store.ListTasks(taskmem.TaskFilter{}) {
		id := task.ID
		uri := fmt.Sprintf("voidcat://task/%s", id)
		server.AddResource(&mcp.Resource{
			URI:         uri,
			Name:        fmt.Sprintf("Task: %s", truncate(task.Description, 60)),
			Description: fmt.Sprintf("Task %s, status %s, priority %d", id, task.Status, task.Priority),
			MIMEType:    "application/json",
		}, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			current, err := store.GetTask(id)
			if err != nil {
				return nil, fmt.Errorf("retrieve task: %w", err)
			}
			body, err := json.MarshalIndent(current, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal task: %w", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, MIMEType: "application/json", Text: string(body)},
				},
			}, nil
		})
	}
}

func registerMemoryResources(server *mcp.Server, store *taskmem.Store) {
	for _, mem := range store.SearchMemories("", "") {
		id := mem.ID
		uri := fmt.Sprintf("voidcat://memory/%s", id)
		server.AddResource(&mcp.Resource{
			URI:         uri,
			Name:        fmt.Sprintf("Memory: %s", truncate(mem.Title, 60)),
			Description: fmt.Sprintf("Memory %s in category %s", id, mem.Category),
			MIMEType:    "application/json",
		}, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			current, err := store.GetMemory(id)
			if err != nil {
				return nil, fmt.Errorf("retrieve memory: %w", err)
			}
			body, err := json.MarshalIndent(current, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal memory: %w", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, MIMEType: "application/json", Text: string(body)},
				},
			}, nil
		})
	}
}

func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

const reasoningPlaybook = `# Reasoning Playbook

- Use voidcat_enhanced_query for most questions against the knowledge corpus.
  It assembles a weighted context bundle, reasons over it with the adaptive
  branch-aware engine, and falls back to simpler paths automatically.
- Use voidcat_basic_query when you want the cheapest possible answer and
  don't need multi-step reasoning.
- Use voidcat_sequential_thinking when there is no relevant knowledge corpus
  content and you only need the reasoning engine's own analysis.
- Check voidcat_diagnostics before relying on the enhanced path in an
  automated workflow: an empty knowledge corpus or an unreachable LLM
  degrade the pipeline silently into simpler fallbacks.
`

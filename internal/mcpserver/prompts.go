package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts wires the prompt templates that help a calling agent
// decide which query tool fits a given question, and how to phrase a task
// breakdown for the task store.
func registerPrompts(server *mcp.Server) error {
	server.AddPrompt(&mcp.Prompt{
		Name:        "voidcat_reasoning_playbook",
		Description: "Decide which query tool (enhanced, basic, or sequential-only) fits a given question and why.",
		Arguments: []*mcp.PromptArgument{
			{Name: "question", Description: "The question the agent wants answered", Required: true},
		},
	}, func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		question := ""
		if req.Params != nil && req.Params.Arguments != nil {
			question = req.Params.Arguments["question"]
		}
		if question == "" {
			return nil, fmt.Errorf("question is a required argument")
		}
		text := fmt.Sprintf(`Decide how to answer: %q

- If the knowledge corpus plausibly contains relevant material and the
  question needs multi-step reasoning, call voidcat_enhanced_query.
- If the question is simple and a direct retrieve-then-answer pass is
  enough, call voidcat_basic_query.
- If the question has nothing to do with the knowledge corpus, call
  voidcat_sequential_thinking directly.
- Call voidcat_diagnostics first if you are unsure whether the corpus is
  populated or the LLM is reachable.`, question)

		return &mcp.GetPromptResult{
			Description: "Query tool selection guidance",
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	})

	server.AddPrompt(&mcp.Prompt{
		Name:        "voidcat_task_breakdown",
		Description: "Break a high-level task description into voidcat_create_task calls with sensible priority, complexity, and tags.",
		Arguments: []*mcp.PromptArgument{
			{Name: "task_description", Description: "High-level description of the work", Required: true},
		},
	}, func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		desc := ""
		if req.Params != nil && req.Params.Arguments != nil {
			desc = req.Params.Arguments["task_description"]
		}
		if desc == "" {
			return nil, fmt.Errorf("task_description is a required argument")
		}
		text := fmt.Sprintf(`Break this task into a small tree of voidcat_create_task calls: %q

For each subtask, set priority 1-10 by urgency, complexity 1-10 by expected
effort, and tags that group related subtasks. Use parent_id to nest
subtasks under the top-level task you create first.`, desc)

		return &mcp.GetPromptResult{
			Description: "Task breakdown planning prompt",
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	})

	return nil
}

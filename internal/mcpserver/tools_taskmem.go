package mcpserver

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

func strArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func intArg(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

func strSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// registerTaskTools wires create/update/move/delete/list/stats onto the
// Task/Memory Store's task collection.
func (r *Registry) registerTaskTools(store *taskmem.Store) {
	r.Add("voidcat_create_task",
		"Create a task, optionally under a parent task and/or project.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":            {Type: "string"},
				"description":     {Type: "string"},
				"priority":        {Type: "number", Description: "1..10"},
				"complexity":      {Type: "number", Description: "1..10"},
				"estimated_hours": {Type: "number"},
				"tags":            {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
				"parent_id":       {Type: "string"},
				"project_id":      {Type: "string"},
			},
			Required: []string{"name"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			name := strArg(args, "name")
			if name == "" {
				return nil, voiderr.New(voiderr.InvalidArgument, "name is required")
			}
			return store.CreateTask(taskmem.Task{
				Name:           name,
				Description:    strArg(args, "description"),
				Priority:       intArg(args, "priority"),
				Complexity:     intArg(args, "complexity"),
				EstimatedHours: float64(intArg(args, "estimated_hours")),
				Tags:           strSliceArg(args, "tags"),
				ParentID:       strArg(args, "parent_id"),
				ProjectID:      strArg(args, "project_id"),
			})
		})

	r.Add("voidcat_update_task_status",
		"Update a task's status. Moving a completed task back to pending requires force=true.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id":     {Type: "string"},
				"status": {Type: "string", Enum: []any{"pending", "in-progress", "completed", "blocked"}},
				"force":  {Type: "boolean"},
			},
			Required: []string{"id", "status"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			id := strArg(args, "id")
			status := taskmem.Status(strArg(args, "status"))
			force, _ := args["force"].(bool)
			return store.UpdateTask(id, func(t *taskmem.Task) { t.Status = status }, force)
		})

	r.Add("voidcat_move_task",
		"Reparent a task. Rejected if it would introduce a cycle.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id":            {Type: "string"},
				"new_parent_id": {Type: "string"},
			},
			Required: []string{"id", "new_parent_id"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return store.MoveTask(strArg(args, "id"), strArg(args, "new_parent_id"))
		})

	r.Add("voidcat_delete_task",
		"Delete a task. Rejected if it has children unless cascade=true.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id":      {Type: "string"},
				"cascade": {Type: "boolean"},
			},
			Required: []string{"id"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			cascade, _ := args["cascade"].(bool)
			if err := store.DeleteTask(strArg(args, "id"), cascade); err != nil {
				return nil, err
			}
			return map[string]any{"deleted": true}, nil
		})

	r.Add("voidcat_list_tasks",
		"List tasks, optionally filtered by status, priority range, project, free text, or tags.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"status":       {Type: "string"},
				"min_priority": {Type: "number"},
				"max_priority": {Type: "number"},
				"project_id":   {Type: "string"},
				"free_text":    {Type: "string"},
				"tags":         {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			filter := taskmem.TaskFilter{
				Status:      taskmem.Status(strArg(args, "status")),
				MinPriority: intArg(args, "min_priority"),
				MaxPriority: intArg(args, "max_priority"),
				ProjectID:   strArg(args, "project_id"),
				FreeText:    strArg(args, "free_text"),
				Tags:        strSliceArg(args, "tags"),
			}
			return map[string]any{"tasks": store.ListTasks(filter)}, nil
		})

	r.Add("voidcat_task_stats",
		"Return aggregate task counts, completion rate, and average completion hours.",
		&jsonschema.Schema{Type: "object"},
		func(_ context.Context, _ map[string]any) (any, error) {
			return store.Stats(), nil
		})
}

// registerMemoryTools wires create/search/categories onto the Task/Memory
// Store's memory collection.
func (r *Registry) registerMemoryTools(store *taskmem.Store) {
	r.Add("voidcat_create_memory",
		"Store a categorized memory. The category must already be registered.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"category":   {Type: "string"},
				"title":      {Type: "string"},
				"content":    {Type: "string"},
				"importance": {Type: "number", Description: "1..10"},
				"tags":       {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			},
			Required: []string{"category", "title", "content"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return store.CreateMemory(taskmem.Memory{
				Category:   strArg(args, "category"),
				Title:      strArg(args, "title"),
				Content:    strArg(args, "content"),
				Importance: intArg(args, "importance"),
				Tags:       strSliceArg(args, "tags"),
			})
		})

	r.Add("voidcat_search_memories",
		"Search memories by substring match on title, content, or tags, optionally narrowed to one category.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query":    {Type: "string"},
				"category": {Type: "string"},
			},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return map[string]any{"memories": store.SearchMemories(strArg(args, "query"), strArg(args, "category"))}, nil
		})

	r.Add("voidcat_register_memory_category",
		"Register a new memory category.",
		&jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"name": {Type: "string"}},
			Required:   []string{"name"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			name := strArg(args, "name")
			if name == "" {
				return nil, voiderr.New(voiderr.InvalidArgument, "name is required")
			}
			if err := store.RegisterCategory(name); err != nil {
				return nil, err
			}
			return map[string]any{"categories": store.ListCategories()}, nil
		})

	r.Add("voidcat_list_memory_categories",
		"List every registered memory category.",
		&jsonschema.Schema{Type: "object"},
		func(_ context.Context, _ map[string]any) (any, error) {
			return map[string]any{"categories": store.ListCategories()}, nil
		})
}

// registerProjectTools wires create/list/get/delete onto the Task/Memory
// Store's project collection.
func (r *Registry) registerProjectTools(store *taskmem.Store) {
	r.Add("voidcat_create_project",
		"Create a project that tasks can be grouped under.",
		&jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":        {Type: "string"},
				"description": {Type: "string"},
			},
			Required: []string{"name"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			name := strArg(args, "name")
			if name == "" {
				return nil, voiderr.New(voiderr.InvalidArgument, "name is required")
			}
			return store.CreateProject(taskmem.Project{Name: name, Description: strArg(args, "description")})
		})

	r.Add("voidcat_list_projects",
		"List every project.",
		&jsonschema.Schema{Type: "object"},
		func(_ context.Context, _ map[string]any) (any, error) {
			return map[string]any{"projects": store.ListProjects()}, nil
		})

	r.Add("voidcat_get_project",
		"Fetch one project by id.",
		&jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"id": {Type: "string"}},
			Required:   []string{"id"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return store.GetProject(strArg(args, "id"))
		})

	r.Add("voidcat_delete_project",
		"Delete a project by id. Tasks referencing it are not cascaded.",
		&jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"id": {Type: "string"}},
			Required:   []string{"id"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			if err := store.DeleteProject(strArg(args, "id")); err != nil {
				return nil, err
			}
			return map[string]any{"deleted": true}, nil
		})
}

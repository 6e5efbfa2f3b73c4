package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/rag"
	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
)

// Config holds what New needs to wire an MCP server against the rest of
// the reasoning core.
type Config struct {
	Name           string
	Version        string
	ConcurrencyCap int
	Coordinator    *rag.Coordinator
	Store          *taskmem.Store
	Logger         *zap.Logger
}

// New builds an mcp.Server with every tool, resource, and prompt
// registered in one call.
func New(cfg Config) (*mcp.Server, error) {
	if cfg.Name == "" {
		cfg.Name = "voidcat-reasoning-core"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	impl := &mcp.Implementation{Name: cfg.Name, Version: cfg.Version}
	opts := &mcp.ServerOptions{HasResources: true, HasTools: true, HasPrompts: true}
	server := mcp.NewServer(impl, opts)

	registry := NewRegistry(server, cfg.ConcurrencyCap, cfg.Logger)
	registry.registerQueryTools(cfg.Coordinator)
	registry.registerTaskTools(cfg.Store)
	registry.registerMemoryTools(cfg.Store)
	registry.registerProjectTools(cfg.Store)
	registry.registerMetaTools()

	if err := registerResources(server, cfg.Coordinator, cfg.Store); err != nil {
		return nil, err
	}
	if err := registerPrompts(server); err != nil {
		return nil, err
	}

	return server, nil
}

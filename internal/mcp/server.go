package mcp

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/prompthive/internal/config"
	"github.com/hpungsan/prompthive/internal/library"
	"github.com/hpungsan/prompthive/internal/logging"
	"github.com/hpungsan/prompthive/internal/ops"
	"github.com/hpungsan/prompthive/internal/watch"
)

// Gateway is the storage surface the server needs. *storage.Gateway implements it.
type Gateway interface {
	ops.StatusSource
	Write(ctx context.Context, db *library.Database) error
}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"prompt_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"prompt_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"prompt_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"prompt_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"prompt_favorite": {
		def:     favoriteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFavorite },
	},
	"prompt_fill": {
		def:     fillToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFill },
	},
	"collection_list": {
		def:     collectionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCollectionList },
	},
	"collection_add": {
		def:     collectionAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCollectionAdd },
	},
	"library_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
}

// AllToolNames returns a sorted list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Server is an MCP server exposing the library as tools and as prompts.
type Server struct {
	mcp      *server.MCPServer
	handlers *Handlers
	prompts  *promptSet
	log      *slog.Logger
	enabled  []string
}

// NewServer creates a new MCP server with PromptHive tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(gw Gateway, cfg *config.Config, version string, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := logging.OrDiscard(logger)

	s := server.NewMCPServer(
		"prompthive",
		version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
	)

	srv := &Server{
		mcp: s,
		log: log,
	}
	srv.prompts = newPromptSet(s, gw, log)
	srv.handlers = NewHandlers(gw, cfg, srv.prompts.refresh)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}
	for _, name := range ValidateDisabledTools(cfg.DisabledTools) {
		log.Warn("unknown tool in disabled_tools", "tool", name)
	}

	// Register tools (skip disabled)
	for _, name := range AllToolNames() {
		if disabled[name] {
			continue
		}
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(srv.handlers))
		srv.enabled = append(srv.enabled, name)
	}

	return srv
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// EnabledTools returns the registered tool names, sorted.
func (s *Server) EnabledTools() []string {
	return append([]string(nil), s.enabled...)
}

// SyncPrompts registers every stored prompt as an MCP prompt and drops
// registrations for prompts that no longer exist.
func (s *Server) SyncPrompts(ctx context.Context) error {
	return s.prompts.sync(ctx)
}

// Run serves over stdio until the client disconnects. When watchDir is set,
// external edits to the library file re-sync the registered prompts.
func (s *Server) Run(ctx context.Context, watchDir string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.prompts.refresh(ctx)

	if watchDir != "" {
		w, err := watch.New(watchDir, watch.Options{Logger: s.log})
		if err != nil {
			s.log.Warn("library watch disabled", "folder", watchDir, "error", err)
		} else {
			defer w.Close()
			go func() {
				_ = w.Run(ctx, func(watch.Change) { s.prompts.refresh(ctx) })
			}()
		}
	}

	return server.ServeStdio(s.mcp)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

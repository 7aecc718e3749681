package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/prompthive/internal/library"
	"github.com/hpungsan/prompthive/internal/ops"
	"github.com/hpungsan/prompthive/internal/variables"
)

// promptSet mirrors the stored prompts as MCP prompts. Each prompt is
// registered under its id with one argument per template variable.
type promptSet struct {
	srv *server.MCPServer
	gw  Gateway
	log *slog.Logger

	mu    sync.Mutex
	names map[string]bool
}

func newPromptSet(srv *server.MCPServer, gw Gateway, log *slog.Logger) *promptSet {
	return &promptSet{srv: srv, gw: gw, log: log, names: map[string]bool{}}
}

// refresh syncs and logs failures.
func (p *promptSet) refresh(ctx context.Context) {
	if err := p.sync(ctx); err != nil {
		p.log.Warn("sync MCP prompts", "error", err)
	}
}

func (p *promptSet) sync(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var prompts []library.Prompt
	if p.gw.Ready() {
		db, err := p.gw.Read(ctx)
		if err != nil {
			return err
		}
		prompts = db.Prompts
	}

	seen := make(map[string]bool, len(prompts))
	for _, stored := range prompts {
		seen[stored.ID] = true
		p.srv.AddPrompt(promptDef(stored), p.handler(stored.ID))
	}

	var stale []string
	for name := range p.names {
		if !seen[name] {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		p.srv.DeletePrompts(stale...)
	}
	p.names = seen
	p.log.Debug("synced MCP prompts", "count", len(seen), "removed", len(stale))
	return nil
}

// registered returns whether id is currently registered.
func (p *promptSet) registered(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.names[id]
}

func promptDef(stored library.Prompt) mcp.Prompt {
	desc := stored.Title
	if stored.Description != "" {
		desc = stored.Title + ": " + stored.Description
	}
	opts := []mcp.PromptOption{mcp.WithPromptDescription(desc)}
	for _, name := range variables.Extract(stored.Body) {
		opts = append(opts, mcp.WithArgument(name,
			mcp.ArgumentDescription(fmt.Sprintf("Value for {{%s}}", name)),
		))
	}
	return mcp.NewPrompt(stored.ID, opts...)
}

// handler fills the prompt from the library at request time, so edits made
// after registration are honoured.
func (p *promptSet) handler(id string) server.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		got, err := ops.GetPrompt(ctx, p.gw, id)
		if err != nil {
			return nil, err
		}
		text := variables.Fill(got.Body, req.Params.Arguments)
		return mcp.NewGetPromptResult(
			got.Title,
			[]mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.TextContent{Type: "text", Text: text}),
			},
		), nil
	}
}

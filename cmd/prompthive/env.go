package main

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/hpungsan/prompthive/internal/capability"
	"github.com/hpungsan/prompthive/internal/config"
	"github.com/hpungsan/prompthive/internal/db"
	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/mcp"
	"github.com/hpungsan/prompthive/internal/storage"
)

// env holds what every command shares: config, logger, the handle store and
// the gateway that owns the project folder.
type env struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *db.HandleStore
	picker *folderPicker
	gw     *storage.Gateway
}

func newEnv(cfg *config.Config, database *sql.DB, logger *slog.Logger, in io.Reader, out io.Writer, interactive bool) *env {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// The folder prompt and the access prompt read from the same input.
	lines := bufio.NewReader(in)

	var auth capability.Authorizer = capability.StaticAuthorizer(false)
	if interactive {
		auth = capability.TerminalAuthorizer{In: lines, Out: out}
	}
	capOpts := capability.Options{TTL: cfg.GrantTTL(), Authorizer: auth}

	store := db.NewHandleStore(database)
	picker := &folderPicker{
		opts:   capOpts,
		prompt: capability.PromptPicker{In: lines, Out: out, Options: capOpts},
	}

	gw := storage.New(storage.Options{
		Store:  store,
		Picker: picker,
		Revive: func(rec capability.Record) (capability.Handle, error) {
			return capability.Revive(rec, capOpts), nil
		},
		Logger: logger,
	})

	return &env{
		cfg:    cfg,
		log:    logger,
		store:  store,
		picker: picker,
		gw:     gw,
	}
}

func (e *env) close() {
	_ = e.gw.Close()
}

// requireLibrary restores the remembered folder if none is active.
func (e *env) requireLibrary(ctx context.Context) error {
	if e.gw.Ready() || e.gw.Restore(ctx) {
		return nil
	}
	return errors.NewUninitialized()
}

// activeDir returns the path of the active project folder, or "".
func (e *env) activeDir() string {
	if rec, ok := e.gw.Active(); ok {
		return rec.Path
	}
	return ""
}

// runMCP serves the MCP protocol on stdio. The remembered folder is restored
// first; without one, tools report UNINITIALIZED.
func (e *env) runMCP(ctx context.Context) error {
	if !e.gw.Restore(ctx) {
		e.log.Warn("no project folder restored; run `prompthive open <dir>` first")
	}
	srv := mcp.NewServer(e.gw, e.cfg, Version, e.log)
	return srv.Run(ctx, e.activeDir())
}

// folderPicker uses the folder named on the command line, or asks on the terminal.
type folderPicker struct {
	path   string
	opts   capability.Options
	prompt capability.PromptPicker
}

func (p *folderPicker) Pick(ctx context.Context) (capability.Handle, error) {
	if p.path != "" {
		return capability.PathPicker{Path: p.path, Options: p.opts}.Pick(ctx)
	}
	return p.prompt.Pick(ctx)
}

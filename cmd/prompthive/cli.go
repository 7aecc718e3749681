package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/prompthive/internal/errors"
	"github.com/hpungsan/prompthive/internal/filter"
	"github.com/hpungsan/prompthive/internal/library"
	"github.com/hpungsan/prompthive/internal/ops"
	"github.com/hpungsan/prompthive/internal/watch"
	"github.com/hpungsan/prompthive/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// e may be nil when only help or version output is needed.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "prompthive",
		Usage:   "Prompt library stored in a project folder you choose",
		Version: Version,
		Commands: []*cli.Command{
			openCmd(e),
			restoreCmd(e),
			statusCmd(e),
			forgetCmd(e),
			listCmd(e),
			showCmd(e),
			saveCmd(e),
			deleteCmd(e),
			favoriteCmd(e),
			varsCmd(e),
			fillCmd(e),
			collectionCmd(e),
			exportCmd(e),
			importCmd(e),
			schemaCmd(),
			watchCmd(e),
			serveCmd(e),
			mcpCmd(e),
		},
	}
	// Values such as "topic=a, b" must reach --set intact.
	app.DisableSliceFlagSeparator = true
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// openCmd creates the open command.
func openCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Choose the project folder (asks on the terminal when no dir is given)",
		ArgsUsage: "[dir]",
		Action: func(c *cli.Context) error {
			e.picker.path = c.Args().First()
			if err := e.gw.Open(c.Context); err != nil {
				return outputError(err)
			}
			return outputStatus(c, e)
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Reactivate the remembered project folder",
		Action: func(c *cli.Context) error {
			if !e.gw.Restore(c.Context) {
				return outputError(errors.NewUninitialized())
			}
			return outputStatus(c, e)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the project folder and library counts",
		Action: func(c *cli.Context) error {
			e.gw.Restore(c.Context)
			return outputStatus(c, e)
		},
	}
}

// forgetCmd creates the forget command.
func forgetCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "forget",
		Usage: "Forget the remembered project folder (files are left untouched)",
		Action: func(c *cli.Context) error {
			forgotten, err := e.store.Forget(c.Context)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			e.gw.Release()
			return outputJSON(c, map[string]bool{"forgotten": forgotten})
		},
	}
}

// listCmd creates the list command.
func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List prompts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Case-insensitive search in title, body and tags"},
			&cli.StringFlag{Name: "tag", Usage: "Only prompts with this tag"},
			&cli.StringFlag{Name: "collection", Aliases: []string{"c"}, Usage: "Only prompts in this collection (id)"},
			&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorites"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			output, err := ops.ListPrompts(c.Context, e.gw, ops.ListInput{
				Options: filter.Options{
					Query:         c.String("query"),
					Tag:           c.String("tag"),
					CollectionID:  c.String("collection"),
					FavoritesOnly: c.Bool("favorites"),
				},
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a prompt by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			output, err := ops.GetPrompt(c.Context, e.gw, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Create a prompt, or replace one with --id (body from --body or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Prompt id to replace"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Prompt title"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Short description"},
			&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "Prompt text; read from stdin when omitted"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringFlag{Name: "collection", Aliases: []string{"c"}, Usage: "Collection id"},
			&cli.BoolFlag{Name: "favorite", Usage: "Mark as favorite"},
			&cli.StringFlag{Name: "short-prompt", Usage: "Condensed variant of the prompt"},
			&cli.StringFlag{Name: "example-output", Usage: "Example of a good answer"},
			&cli.StringFlag{Name: "expected-result", Usage: "What a good answer achieves"},
		},
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}

			body := c.String("body")
			if !c.IsSet("body") && stdinHasData(c.App.Reader) {
				text, err := readStdin(c.App.Reader)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				body = text
			}

			input := ops.SaveInput{
				ID:             c.String("id"),
				Title:          c.String("title"),
				Description:    c.String("description"),
				Body:           body,
				Tags:           ops.ParseTags(c.String("tags")),
				ShortPrompt:    optionalString(c, "short-prompt"),
				ExampleOutput:  optionalString(c, "example-output"),
				ExpectedResult: optionalString(c, "expected-result"),
				CollectionID:   optionalString(c, "collection"),
			}
			if c.IsSet("favorite") {
				fav := c.Bool("favorite")
				input.IsFavorite = &fav
			}

			output, err := ops.SavePrompt(c.Context, e.gw, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a prompt",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			output, err := ops.DeletePrompt(c.Context, e.gw, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// favoriteCmd creates the favorite command.
func favoriteCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "favorite",
		Usage:     "Toggle a prompt's favorite flag",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			output, err := ops.ToggleFavorite(c.Context, e.gw, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// varsCmd creates the vars command.
func varsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "vars",
		Usage:     "List a prompt's {{variables}}",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			p, err := ops.GetPrompt(c.Context, e.gw, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, map[string]any{"id": p.ID, "variables": p.Variables})
		},
	}
}

// fillCmd creates the fill command.
func fillCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "fill",
		Usage:     "Fill a prompt's variables",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "set", Aliases: []string{"s"}, Usage: "Variable value as name=value (repeatable)"},
			&cli.BoolFlag{Name: "raw", Usage: "Print only the filled text"},
		},
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			values, err := parseAssignments(c.StringSlice("set"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			output, err := ops.FillPrompt(c.Context, e.gw, ops.FillInput{ID: c.Args().First(), Values: values})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("raw") {
				_, err := fmt.Fprintln(c.App.Writer, output.Text)
				return err
			}
			return outputJSON(c, output)
		},
	}
}

// collectionCmd creates the collection command and its subcommands.
func collectionCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "collection",
		Usage: "Manage collections",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a collection",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Collection name"},
					&cli.StringFlag{Name: "parent", Aliases: []string{"p"}, Usage: "Parent collection id"},
				},
				Action: func(c *cli.Context) error {
					if err := e.requireLibrary(c.Context); err != nil {
						return outputError(err)
					}
					output, err := ops.AddCollection(c.Context, e.gw, ops.AddCollectionInput{
						Name:     c.String("name"),
						ParentID: optionalString(c, "parent"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
			{
				Name:  "list",
				Usage: "Show the collection tree",
				Action: func(c *cli.Context) error {
					if err := e.requireLibrary(c.Context); err != nil {
						return outputError(err)
					}
					output, err := ops.ListCollections(c.Context, e.gw)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, output)
				},
			},
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Back up the library to a JSON or YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.prompthive/exports/prompthive-backup-<date>.<format>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json|yaml (default: from the path extension, else json)"},
		},
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			var format ops.Format
			if c.IsSet("format") {
				f, err := ops.ParseFormat(c.String("format"))
				if err != nil {
					return outputError(err)
				}
				format = f
			}
			output, err := ops.Export(c.Context, e.gw, e.cfg, ops.ExportInput{
				Path:   c.String("path"),
				Format: format,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Replace the library with a JSON or YAML backup",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			output, err := ops.Import(c.Context, e.gw, e.cfg, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// schemaCmd creates the schema command.
func schemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema accepted by import",
		Action: func(c *cli.Context) error {
			data, err := library.Schema()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			_, err = fmt.Fprintln(c.App.Writer, string(data))
			return err
		},
	}
}

// watchEvent is one line of watch output.
type watchEvent struct {
	Op     string            `json:"op"`
	At     time.Time         `json:"at"`
	Status *ops.StatusOutput `json:"status,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// watchCmd creates the watch command.
func watchCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print a line whenever the library file changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "debounce", Value: watch.DefaultDebounce, Usage: "Quiet period before reporting a change"},
		},
		Action: func(c *cli.Context) error {
			if err := e.requireLibrary(c.Context); err != nil {
				return outputError(err)
			}
			w, err := watch.New(e.activeDir(), watch.Options{Debounce: c.Duration("debounce"), Logger: e.log})
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			defer w.Close()

			e.log.Info("watching library", "path", w.Path())
			err = w.Run(c.Context, func(ch watch.Change) {
				ev := watchEvent{Op: ch.Op.String(), At: ch.At}
				if st, err := ops.Status(c.Context, e.gw); err != nil {
					ev.Error = err.Error()
				} else {
					ev.Status = st
				}
				line, _ := json.Marshal(ev)
				fmt.Fprintln(c.App.Writer, string(line))
			})
			if err != nil && c.Context.Err() == nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8723, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			if !e.gw.Restore(c.Context) {
				e.log.Warn("no project folder restored; pages will show an error until `prompthive open` is run")
			}
			srv, err := web.NewServer(e.gw, Version, c.String("bind"), c.Int("port"), e.log)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(c.Context, srv, e.log); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the MCP protocol on stdio",
		Action: func(c *cli.Context) error {
			return e.runMCP(c.Context)
		},
	}
}

// Helper functions

func outputStatus(c *cli.Context, e *env) error {
	output, err := ops.Status(c.Context, e.gw)
	if err != nil {
		return outputError(err)
	}
	return outputJSON(c, output)
}

// outputJSON marshals result to the app's writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var hErr *errors.HiveError
	if stderrors.As(err, &hErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// optionalString returns a pointer to the flag value, or nil when the flag was not given.
func optionalString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

// stdinHasData returns true if r has piped data (not a terminal).
func stdinHasData(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from r.
func readStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseAssignments turns name=value pairs into a map. Later pairs win.
func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", pair)
		}
		values[name] = value
	}
	return values, nil
}

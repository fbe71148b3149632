package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aanand-mishra/local-crud/internal/config"
	"github.com/aanand-mishra/local-crud/internal/crud"
	"github.com/aanand-mishra/local-crud/internal/storage/sqlite"
	"github.com/aanand-mishra/local-crud/internal/todo"
	"github.com/spf13/cobra"
)

// app carries what PersistentPreRunE sets up for the subcommands.
type app struct {
	out        io.Writer
	configPath string
	jsonOutput bool

	cfg   *config.Config
	log   *slog.Logger
	store *sqlite.SQLite
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "local-crud",
		Short: "Local user list, todo list and remote user forms",
		Long: `local-crud keeps a user list, a todo list and a theme preference in a
local SQLite key-value store, and can send user create / update / delete
requests to a remote placeholder API.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the configuration YAML file (default: $CONFIG_PATH)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	root.AddCommand(
		newUsersCmd(a),
		newTodosCmd(a),
		newThemeCmd(a),
		newRemoteCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = setupLogger(cfg.Env)
	slog.SetDefault(a.log)

	store, err := sqlite.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	a.store = store
	a.log.Debug("storage initialised", slog.String("path", cfg.StoragePath))
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// users returns an initialized user controller over the opened store.
func (a *app) users() (*crud.Controller, error) {
	c := crud.New(a.store, crud.WithLogger(a.log))
	if err := c.Initialize(); err != nil {
		return nil, err
	}
	return c, nil
}

// todos returns an initialized todo controller. A CLI process exits right
// after the command, so the fade-in flag is cleared immediately.
func (a *app) todos(animationDelay bool) (*todo.Controller, error) {
	delay := a.cfg.Todo.AnimationDelay
	if !animationDelay {
		delay = 0
	}
	c := todo.New(a.store, todo.WithLogger(a.log), todo.WithAnimationDelay(delay))
	if err := c.Initialize(); err != nil {
		return nil, err
	}
	return c, nil
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text at DEBUG level.
// Production (prod): JSON at INFO level.
// Logs go to stderr so command output on stdout stays clean.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}

// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/engine"
	"taskflow/internal/model"
)

// CategoryManager creates and deletes stored categories.
type CategoryManager interface {
	Create(ctx context.Context, w model.CategoryWrite) (model.Category, error)
	Delete(ctx context.Context, ids ...string) error
}

// App is the loaded application state handed to commands.
type App struct {
	Engine     *engine.Engine
	Categories CategoryManager

	closer io.Closer
}

// NewApp creates an App. closer, if non-nil, is closed by Close.
func NewApp(eng *engine.Engine, cats CategoryManager, closer io.Closer) *App {
	return &App{Engine: eng, Categories: cats, closer: closer}
}

// Close releases the backing store.
func (a *App) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsApp returns true if the command works on loaded tasks.
	// Commands like help, version, login, logout return false.
	NeedsApp() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// app is nil if NeedsApp() returns false; otherwise its engine is loaded.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int
}

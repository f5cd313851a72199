package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	flags taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskflow add [--desc <text>] [--due YYYY-MM-DD] [--priority low|medium|high] [--category <id>] [--tag <tag>]... <title...>"
}
func (c *AddCmd) NeedsApp() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags.reset()
	c.flags.register(fs)
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	draft := app.Engine.NewDraft()
	draft.Title = strings.Join(args, " ")
	if err := c.flags.apply(draft); err != nil {
		return report(errOut, err)
	}

	// Blank titles are rejected by the engine before any remote call.
	if _, err := app.Engine.Create(ctx, draft.Input()); err != nil {
		return report(errOut, err)
	}
	return exitcode.Success
}

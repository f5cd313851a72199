package commands

import (
	"context"
	"flag"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles completion, so running
// it on a completed task marks it incomplete.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string     { return "taskflow done <ref>" }
func (c *DoneCmd) NeedsApp() bool    { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	task, err := ResolveTaskRef(app.Engine, ref)
	if err != nil {
		return report(errOut, err)
	}
	if err := app.Engine.ToggleComplete(ctx, task.ID); err != nil {
		return report(errOut, err)
	}
	return exitcode.Success
}

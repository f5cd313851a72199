package commands

import (
	"context"
	"flag"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/engine"
	"taskflow/internal/exitcode"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given fields change.
type EditCmd struct {
	title optString
	flags taskFlags
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskflow edit [--title <text>] [--desc <text>] [--due YYYY-MM-DD] [--priority <p>] [--category <id>] [--tag <tag>]... <ref>"
}
func (c *EditCmd) NeedsApp() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title = optString{}
	c.flags.reset()
	fs.Var(&c.title, "title", "")
	c.flags.register(fs)
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	if !c.title.set && !c.flags.any() {
		return report(errOut, usageError("nothing to change"))
	}

	task, err := ResolveTaskRef(app.Engine, ref)
	if err != nil {
		return report(errOut, err)
	}

	draft := engine.DraftFromTask(task)
	if c.title.set {
		draft.Title = c.title.value
	}
	if err := c.flags.apply(draft); err != nil {
		return report(errOut, err)
	}

	if _, err := app.Engine.Update(ctx, task.ID, draft.Input()); err != nil {
		return report(errOut, err)
	}
	return exitcode.Success
}

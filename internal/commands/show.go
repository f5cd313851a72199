package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show every field of a task" }
func (c *ShowCmd) Usage() string     { return "taskflow show <ref>" }
func (c *ShowCmd) NeedsApp() bool    { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	task, err := ResolveTaskRef(app.Engine, ref)
	if err != nil {
		return report(errOut, err)
	}
	output.FormatTaskDetail(out, task, time.Now())
	return exitcode.Success
}

package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/model"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes bool
	in  io.Reader
}

// SetInput sets the confirmation input (for testing). Defaults to stdin.
func (c *RmCmd) SetInput(r io.Reader) {
	c.in = r
}

// SetYes skips the confirmation prompt (for testing).
func (c *RmCmd) SetYes(yes bool) {
	c.yes = yes
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskflow rm [--yes] <ref>" }
func (c *RmCmd) NeedsApp() bool    { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
	fs.BoolVar(&c.yes, "y", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return report(errOut, err)
	}
	task, err := ResolveTaskRef(app.Engine, ref)
	if err != nil {
		return report(errOut, err)
	}

	deleted, err := app.Engine.Delete(ctx, task.ID, c.confirm(errOut))
	if err != nil {
		return report(errOut, err)
	}
	if !deleted && !cfg.Quiet {
		fmt.Fprintln(out, "cancelled")
	}
	return exitcode.Success
}

// confirm asks on prompt and reads a y/N answer from the input.
func (c *RmCmd) confirm(prompt io.Writer) func(model.Task) bool {
	if c.yes {
		return func(model.Task) bool { return true }
	}
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	return func(t model.Task) bool {
		fmt.Fprintf(prompt, "Delete %q? [y/N] ", t.Title)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskflow help" }
func (c *HelpCmd) NeedsApp() bool    { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskflow                                           List all tasks
  taskflow list [common flags] [--category <id>] [--search <text>] [--sort <key>] [<category>]
  taskflow show [common flags] <ref>
  taskflow stats [common flags]
  taskflow categories [common flags]
  taskflow add [common flags] [task flags] <title...>
  taskflow edit [common flags] [--title <text>] [task flags] <ref>
  taskflow done [common flags] <ref>
  taskflow rm [common flags] [--yes] <ref>
  taskflow addcategory [common flags] [--color <class>] <name...>
  taskflow rmcategory [common flags] [--force] <id>
  taskflow login [common flags]
  taskflow logout [common flags]
  taskflow help
  taskflow version

Task flags:
  --desc <text>                 Description
  --due <YYYY-MM-DD>            Due date (default today)
  --priority, -p <p>            low, medium or high (default medium)
  --category, -c <id>           Category (default from config.toml)
  --tag, -t <tag>               Tag; repeat or separate with commas

References:
  <n>                           Number shown by 'taskflow list'
  id:<identity>                 Task identity in the record store

Sort keys:
  dueDate, priority, completed

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/model"
	"taskflow/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskflow` (no args) and `taskflow list [<category>]`.
// Rows keep their default-view numbers so they can be used as references.
type ListCmd struct {
	category string
	search   string
	sort     string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "taskflow list [--category <id>] [--search <text>] [--sort dueDate|priority|completed] [<category>]"
}
func (c *ListCmd) NeedsApp() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.StringVar(&c.sort, "sort", string(model.SortByDueDate), "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	category := strings.TrimSpace(c.category)
	if len(args) > 0 {
		if category != "" {
			fmt.Fprintln(errOut, "error: cannot use both --category and category argument")
			return exitcode.UserError
		}
		category = strings.TrimSpace(strings.Join(args, " "))
	}

	f := model.DefaultFilter()
	if category != "" {
		known := slices.ContainsFunc(app.Engine.Categories(), func(cat model.Category) bool {
			return cat.ID == category
		})
		if !known {
			fmt.Fprintf(errOut, "error: category not found: %s\n", category)
			return exitcode.UserError
		}
		f.ActiveCategory = category
	}
	f.SearchQuery = c.search

	key, err := model.ParseSortKey(c.sort)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	f.SortKey = key

	app.Engine.SetFilter(f)
	view := app.Engine.View()
	if len(view) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	nums := ViewNumbers(app.Engine)
	now := time.Now()
	for _, t := range view {
		output.FormatTask(out, nums[t.ID], t, now)
	}
	return exitcode.Success
}

package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/model"
)

func init() {
	Register(&RmCategoryCmd{})
}

// RmCategoryCmd implements the rmcategory command.
type RmCategoryCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmCategoryCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmCategoryCmd) Name() string      { return "rmcategory" }
func (c *RmCategoryCmd) Aliases() []string { return []string{"rmcat"} }
func (c *RmCategoryCmd) Synopsis() string  { return "Delete a category" }
func (c *RmCategoryCmd) Usage() string     { return "taskflow rmcategory [--force] <id>" }
func (c *RmCategoryCmd) NeedsApp() bool    { return true }

func (c *RmCategoryCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmCategoryCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: category id required")
		return exitcode.UserError
	}
	id := strings.TrimSpace(args[0])

	// The all category is synthetic and never stored
	if id == model.AllCategoryID {
		fmt.Fprintln(errOut, "error: cannot delete the all category")
		return exitcode.UserError
	}

	cats := app.Engine.Categories()
	i := slices.IndexFunc(cats, func(cat model.Category) bool { return cat.ID == id })
	if i < 0 {
		fmt.Fprintf(errOut, "error: category not found: %s\n", id)
		return exitcode.UserError
	}

	// Check if category is empty (unless --force)
	if cats[i].TaskCount > 0 && !c.force {
		fmt.Fprintln(errOut, "error: category not empty (use --force)")
		return exitcode.UserError
	}

	if err := app.Categories.Delete(ctx, id); err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

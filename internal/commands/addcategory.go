package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/model"
)

func init() {
	Register(&AddCategoryCmd{})
}

// AddCategoryCmd implements the addcategory command.
type AddCategoryCmd struct {
	color string
}

func (c *AddCategoryCmd) Name() string      { return "addcategory" }
func (c *AddCategoryCmd) Aliases() []string { return []string{"addcat"} }
func (c *AddCategoryCmd) Synopsis() string  { return "Create a category" }
func (c *AddCategoryCmd) Usage() string     { return "taskflow addcategory [--color <class>] <name...>" }
func (c *AddCategoryCmd) NeedsApp() bool    { return true }

func (c *AddCategoryCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.color, "color", "", "")
}

func (c *AddCategoryCmd) Run(ctx context.Context, cfg *config.Config, app *App, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: category name required")
		return exitcode.UserError
	}

	cat, err := app.Categories.Create(ctx, model.CategoryWrite{Name: name, Color: c.color})
	if err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok [%s]\n", cat.ID)
	}
	return exitcode.Success
}

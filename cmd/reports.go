package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	ledger "github.com/belisario-afk/cakepop-ledger"
	"github.com/belisario-afk/cakepop-ledger/renderer"
	"github.com/google/subcommands"
)

type dashboardCmd struct{ rangeFlags }

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display revenue, costs and profit" }
func (*dashboardCmd) Usage() string {
	return `smallbatch dashboard [-s <date>] [-d <date>]

  Displays the metrics of the period (all time by default), the revenue of the
  last 30 days, the best selling products and the expenses by category.
`
}

func (c *dashboardCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.Range()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderDashboard(renderer.NewDashboard(d, r, ledger.Today(), currency())))
		return nil
	})
}

type statsCmd struct{}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "display what the active ledger holds" }
func (*statsCmd) Usage() string {
	return `smallbatch stats

  Displays the namespace of the active ledger and the size of each collection.
`
}
func (*statsCmd) SetFlags(*flag.FlagSet) {}

func (*statsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		printMarkdown(renderer.StatsMarkdown(a.Store.Namespace(), d))
		return nil
	})
}

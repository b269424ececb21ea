// Package cmd implements the CLI application to manage a small batch ledger.
package cmd

import (
	"flag"
	"fmt"
	"os"

	ledger "github.com/belisario-afk/cakepop-ledger"
	"github.com/belisario-afk/cakepop-ledger/kvstore"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&addProductCmd{}, "catalog")
	c.Register(&removeProductCmd{}, "catalog")
	c.Register(&productsCmd{}, "catalog")
	c.Register(&addIngredientCmd{}, "catalog")
	c.Register(&removeIngredientCmd{}, "catalog")
	c.Register(&ingredientsCmd{}, "catalog")
	c.Register(&setRecipeCmd{}, "catalog")
	c.Register(&unsetRecipeCmd{}, "catalog")
	c.Register(&recipeCmd{}, "catalog")

	c.Register(&addSaleCmd{}, "entries")
	c.Register(&removeSaleCmd{}, "entries")
	c.Register(&salesCmd{}, "entries")
	c.Register(&addExpenseCmd{}, "entries")
	c.Register(&removeExpenseCmd{}, "entries")
	c.Register(&expensesCmd{}, "entries")

	c.Register(&dashboardCmd{}, "reports")
	c.Register(&statsCmd{}, "reports")

	c.Register(&exportCmd{}, "data")
	c.Register(&importCmd{}, "data")
	c.Register(&exportCSVCmd{}, "data")
	c.Register(&resetCmd{}, "data")
	c.Register(&settingsCmd{}, "data")

	c.Register(&gistConfigCmd{}, "backup")
	c.Register(&backupCmd{}, "backup")
	c.Register(&restoreCmd{}, "backup")

	c.Register(&loginCmd{}, "identity")
	c.Register(&logoutCmd{}, "identity")
	c.Register(&whoamiCmd{}, "identity")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storeLocation = flag.String("store", "", "Ledger storage: a folder, sqlite:<file> or a postgres:// URL (default $SMALLBATCH_STORE or .smallbatch)")
var currencyCode = flag.String("currency", "", "ISO code used to format amounts (default $SMALLBATCH_CURRENCY or USD)")

// env returns the value of the environment variable key, or def when unset.
func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// currency returns the display currency.
func currency() string {
	if *currencyCode != "" {
		return *currencyCode
	}
	return env(EnvCurrency, ledger.DefaultCurrency)
}

// App is what every command works on: the KV, the signed-in user and the ledger of that user.
type App struct {
	KV      kvstore.Store
	Session *ledger.Session
	Store   *ledger.Store
}

// OpenApp opens the configured storage. The caller must Close the App.
func OpenApp() (*App, error) {
	location := storePath()
	kv, err := kvstore.Open(location)
	if err != nil {
		return nil, fmt.Errorf("cannot open store %q: %w", location, err)
	}
	session := ledger.NewSession(kv)
	store := ledger.NewStore(kv, session)
	session.OnChange(func(*ledger.User) { store.Invalidate() })
	return &App{KV: kv, Session: session, Store: store}, nil
}

func (a *App) Close() error { return a.KV.Close() }

// withApp runs f on a freshly opened App, reporting errors the CLI way.
func withApp(f func(a *App) error) subcommands.ExitStatus {
	a, err := OpenApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	if err := f(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it as is when it cannot.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ledger "github.com/belisario-afk/cakepop-ledger"
	"github.com/belisario-afk/cakepop-ledger/gist"
	"github.com/google/subcommands"
)

// useStore points the global -store flag to a fresh folder for the test.
func useStore(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "store")
	old := *storeLocation
	*storeLocation = dir
	t.Cleanup(func() { *storeLocation = old })
	return dir
}

// run parses args with c flags and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), fs)
}

func mustRun(t *testing.T, c subcommands.Command, args ...string) {
	t.Helper()
	if got := run(t, c, args...); got != subcommands.ExitSuccess {
		t.Fatalf("%s %v = %v, want success", c.Name(), args, got)
	}
}

// document reads the active ledger back.
func document(t *testing.T) *ledger.Document {
	t.Helper()
	a, err := OpenApp()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	d, err := a.Store.Document()
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestCatalogCommands(t *testing.T) {
	useStore(t)

	mustRun(t, &addProductCmd{}, "-id", "p-lemon", "-name", "Lemon", "-cost", "0.35", "-price", "2.75")
	if got := run(t, &addProductCmd{}, "-id", "p-lemon", "-name", "Again"); got != subcommands.ExitFailure {
		t.Errorf("duplicate add-product = %v, want failure", got)
	}
	if got := run(t, &addProductCmd{}, "-price", "abc", "-name", "X"); got != subcommands.ExitUsageError {
		t.Errorf("add-product with invalid price = %v, want usage error", got)
	}
	mustRun(t, &addIngredientCmd{}, "-id", "ing-lemon", "-name", "Lemon", "-cost", "0.30")
	mustRun(t, &setRecipeCmd{}, "p-lemon", "ing-lemon", "0.5")
	if got := run(t, &setRecipeCmd{}, "p-nope", "ing-lemon", "1"); got != subcommands.ExitFailure {
		t.Errorf("set-recipe on unknown product = %v, want failure", got)
	}

	d := document(t)
	if got := d.ProductCost("p-lemon"); !got.Equal(ledger.M(0.15)) {
		t.Errorf("ProductCost(p-lemon) = %v, want 0.15", got)
	}

	mustRun(t, &unsetRecipeCmd{}, "p-lemon", "ing-lemon")
	mustRun(t, &removeIngredientCmd{}, "ing-lemon")
	mustRun(t, &removeProductCmd{}, "p-lemon")
	d = document(t)
	if d.Product("p-lemon") != nil || d.Ingredient("ing-lemon") != nil {
		t.Errorf("catalog still holds removed items: %+v %+v", d.Products, d.Ingredients)
	}
}

func TestAddSaleCmd_DefaultPrice(t *testing.T) {
	useStore(t)

	mustRun(t, &addSaleCmd{}, "-d", "2025-03-01", "-product", "p-sample1", "-qty", "4", "-discount", "1")
	mustRun(t, &addSaleCmd{}, "-d", "2025-03-02", "-product", "p-sample2", "-price", "3")
	if got := run(t, &addSaleCmd{}, "-product", "p-nope"); got != subcommands.ExitFailure {
		t.Errorf("add-sale of unknown product = %v, want failure", got)
	}
	if got := run(t, &addSaleCmd{}, "-product", "p-sample1", "-d", "yesterday"); got != subcommands.ExitUsageError {
		t.Errorf("add-sale with invalid date = %v, want usage error", got)
	}
	for _, qty := range []string{"0", "-1", "1.5"} {
		if got := run(t, &addSaleCmd{}, "-product", "p-sample1", "-qty", qty); got != subcommands.ExitUsageError {
			t.Errorf("add-sale -qty %s = %v, want usage error", qty, got)
		}
	}

	d := document(t)
	if len(d.Sales) != 2 {
		t.Fatalf("got %d sales, want 2", len(d.Sales))
	}
	if got := d.Sales[0].UnitPrice; !got.Equal(ledger.M(2.5)) {
		t.Errorf("default unit price = %v, want the product price 2.50", got)
	}
	if got := ledger.SaleTotal(d.Sales[0]); !got.Equal(ledger.M(9)) {
		t.Errorf("SaleTotal = %v, want 9", got)
	}
	if got := d.Sales[1].UnitPrice; !got.Equal(ledger.M(3)) {
		t.Errorf("explicit unit price = %v, want 3", got)
	}

	mustRun(t, &removeSaleCmd{}, d.Sales[0].ID)
	if got := len(document(t).Sales); got != 1 {
		t.Errorf("got %d sales after remove, want 1", got)
	}
}

func TestExpenseCommands(t *testing.T) {
	useStore(t)
	if got := run(t, &addExpenseCmd{}, "-category", "rent"); got != subcommands.ExitUsageError {
		t.Errorf("add-expense without amount = %v, want usage error", got)
	}
	mustRun(t, &addExpenseCmd{}, "-category", "rent", "-amount", "500", "-d", "2025-03-01")
	d := document(t)
	if len(d.Expenses) != 1 || d.Expenses[0].Date != ledger.NewDate(2025, 3, 1) {
		t.Fatalf("expenses = %+v", d.Expenses)
	}
	mustRun(t, &expensesCmd{}, "-s", "2025-03-01")
	mustRun(t, &removeExpenseCmd{}, d.Expenses[0].ID)
	if got := len(document(t).Expenses); got != 0 {
		t.Errorf("got %d expenses after remove, want 0", got)
	}
}

func TestRangeFlags(t *testing.T) {
	tests := []struct {
		start, end string
		want       ledger.Range
		wantErr    bool
	}{
		{want: ledger.Range{}},
		{start: "2025-1-1", want: ledger.Range{From: ledger.NewDate(2025, 1, 1)}},
		{start: "2025-02-01", end: "2025-01-01", want: ledger.NewRange(ledger.NewDate(2025, 1, 1), ledger.NewDate(2025, 2, 1))},
		{end: "nope", wantErr: true},
	}
	for _, tt := range tests {
		r := rangeFlags{start: tt.start, end: tt.end}
		got, err := r.Range()
		if (err != nil) != tt.wantErr {
			t.Errorf("Range(%q, %q) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Range(%q, %q) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestExportImport(t *testing.T) {
	useStore(t)
	out := filepath.Join(t.TempDir(), "snapshot.json")

	mustRun(t, &addProductCmd{}, "-id", "p-x", "-name", "X")
	mustRun(t, &exportCmd{}, "-o", out)
	if document(t).Meta.LastExport == nil {
		t.Error("export did not stamp the last export")
	}
	mustRun(t, &resetCmd{}, "-force")
	if document(t).Product("p-x") != nil {
		t.Fatal("reset kept p-x")
	}
	mustRun(t, &importCmd{}, out)
	if document(t).Product("p-x") == nil {
		t.Error("import did not restore p-x")
	}
}

func TestExportImport_Encrypted(t *testing.T) {
	useStore(t)
	out := filepath.Join(t.TempDir(), "sealed.json")

	mustRun(t, &addProductCmd{}, "-id", "p-y", "-name", "Y")
	mustRun(t, &exportCmd{}, "-o", out, "-encrypt", "-password", "secret")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "p-y") {
		t.Fatalf("encrypted export leaks the ledger:\n%s", data)
	}

	mustRun(t, &resetCmd{}, "-force")
	t.Setenv("SMALLBATCH_PASSWORD", "")
	if got := run(t, &importCmd{}, out); got != subcommands.ExitUsageError {
		t.Errorf("import without password = %v, want usage error", got)
	}
	if got := run(t, &importCmd{}, "-password", "wrong", out); got != subcommands.ExitFailure {
		t.Errorf("import with wrong password = %v, want failure", got)
	}
	t.Setenv("SMALLBATCH_PASSWORD", "secret")
	mustRun(t, &importCmd{}, out)
	if document(t).Product("p-y") == nil {
		t.Error("import did not restore p-y")
	}
}

func TestResetCmd_NeedsForce(t *testing.T) {
	useStore(t)
	mustRun(t, &addProductCmd{}, "-id", "p-z", "-name", "Z")
	if got := run(t, &resetCmd{}); got != subcommands.ExitUsageError {
		t.Errorf("reset without -force = %v, want usage error", got)
	}
	if document(t).Product("p-z") == nil {
		t.Error("reset without -force erased the ledger")
	}
}

func TestSettingsCmd(t *testing.T) {
	useStore(t)
	if got := run(t, &settingsCmd{}, "{nope"); got != subcommands.ExitUsageError {
		t.Errorf("settings with invalid JSON = %v, want usage error", got)
	}
	mustRun(t, &settingsCmd{}, `{"theme":"dark"}`)
	if got := string(document(t).Settings); got != `{"theme":"dark"}` {
		t.Errorf("Settings = %s", got)
	}
	mustRun(t, &settingsCmd{})
}

func TestIdentityCommands(t *testing.T) {
	useStore(t)
	mustRun(t, &addProductCmd{}, "-id", "p-guest", "-name", "Guest only")

	if got := run(t, &loginCmd{}); got != subcommands.ExitUsageError {
		t.Errorf("login without identity = %v, want usage error", got)
	}
	mustRun(t, &loginCmd{}, "-sub", "42", "-name", "Ada")
	d := document(t)
	if d.Product("p-guest") != nil {
		t.Error("user 42 sees the guest ledger")
	}
	if d.Product("p-sample1") == nil {
		t.Error("user 42 ledger is not seeded")
	}
	mustRun(t, &whoamiCmd{})

	mustRun(t, &logoutCmd{})
	if document(t).Product("p-guest") == nil {
		t.Error("logout did not switch back to the guest ledger")
	}
}

func TestGistConfigCmd(t *testing.T) {
	useStore(t)
	mustRun(t, &gistConfigCmd{}, "-token", "ghp_secret1234", "-interval", "30")
	mustRun(t, &gistConfigCmd{}, "-gist", "g1")
	if got := run(t, &gistConfigCmd{}, "-interval", "-5"); got != subcommands.ExitFailure {
		t.Errorf("negative interval = %v, want failure", got)
	}

	a, err := OpenApp()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	want := gist.Config{Token: "ghp_secret1234", GistID: "g1", Interval: 30}
	if got := gist.LoadConfig(a.KV); got != want {
		t.Errorf("config = %+v, want %+v", got, want)
	}
}

func TestMaskToken(t *testing.T) {
	tests := map[string]string{
		"":               "(none)",
		"abc":            "***",
		"ghp_secret1234": "**********1234",
	}
	for in, want := range tests {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBackupCmd_NoToken(t *testing.T) {
	useStore(t)
	if got := run(t, &backupCmd{}); got != subcommands.ExitFailure {
		t.Errorf("backup without token = %v, want failure", got)
	}
}

func TestCompletion(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("smallbatch", flag.ContinueOnError), "smallbatch")
	Register(commander)
	root := Completion(commander)

	sale, ok := root.Sub["add-sale"]
	if !ok {
		t.Fatal("add-sale is not completed")
	}
	for _, f := range []string{"d", "product", "qty", "price", "discount", "notes"} {
		if _, ok := sale.Flags[f]; !ok {
			t.Errorf("add-sale flag -%s is not completed", f)
		}
	}
	if _, ok := root.Sub["topic"]; !ok {
		t.Error("topic is not completed")
	}
	if !Registered(commander, "dashboard") || Registered(commander, "hello") {
		t.Error("Registered() does not match the registered commands")
	}
}

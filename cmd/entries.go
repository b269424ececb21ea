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

// addSaleCmd holds the flags for the 'add-sale' subcommand.
type addSaleCmd struct {
	date     string
	product  string
	qty      string
	price    string
	discount string
	notes    string
}

func (*addSaleCmd) Name() string     { return "add-sale" }
func (*addSaleCmd) Synopsis() string { return "record a sale" }
func (*addSaleCmd) Usage() string {
	return `smallbatch add-sale -product <id> [-d <date>] [-qty <n>] [-price <amount>] [-discount <amount>] [-notes <text>]

  Records a sale. The unit price defaults to the current product price and is
  frozen in the sale: later price changes do not affect it.
`
}

func (c *addSaleCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "sale date. See the user manual for supported date formats.")
	f.StringVar(&c.product, "product", "", "product id")
	f.StringVar(&c.qty, "qty", "1", "quantity sold")
	f.StringVar(&c.price, "price", "", "unit price, defaults to the product price")
	f.StringVar(&c.discount, "discount", "0", "discount on the whole sale")
	f.StringVar(&c.notes, "notes", "", "free text")
}

func (c *addSaleCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.product == "" {
		fmt.Fprintln(os.Stderr, "Error: -product is required")
		return subcommands.ExitUsageError
	}
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	qty, err := ledger.ParseQuantity(c.qty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -qty: %v\n", err)
		return subcommands.ExitUsageError
	}
	if !qty.IsPositive() || !qty.IsInteger() {
		fmt.Fprintf(os.Stderr, "Error: -qty must be a whole number above 0, got %s\n", c.qty)
		return subcommands.ExitUsageError
	}
	discount, err := ledger.ParseMoney(c.discount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -discount: %v\n", err)
		return subcommands.ExitUsageError
	}
	sale := ledger.Sale{Date: on, ProductID: c.product, Quantity: qty, Discount: discount, Notes: c.notes}
	if c.price != "" {
		if sale.UnitPrice, err = ledger.ParseMoney(c.price); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -price: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		p := d.Product(c.product)
		if p == nil {
			return fmt.Errorf("unknown product %q", c.product)
		}
		if c.price == "" {
			sale.UnitPrice = p.UnitPrice
		}
		return a.Store.AddSale(sale)
	})
}

type removeSaleCmd struct{}

func (*removeSaleCmd) Name() string     { return "remove-sale" }
func (*removeSaleCmd) Synopsis() string { return "remove sales" }
func (*removeSaleCmd) Usage() string {
	return `smallbatch remove-sale <id>...
`
}
func (*removeSaleCmd) SetFlags(*flag.FlagSet) {}

func (*removeSaleCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing sale id")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		for _, id := range f.Args() {
			if err := a.Store.RemoveSale(id); err != nil {
				return err
			}
		}
		return nil
	})
}

// rangeFlags are the -s and -d flags shared by the commands working on a period.
type rangeFlags struct {
	start string
	end   string
}

func (r *rangeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.start, "s", "", "start date of the period, open when empty")
	f.StringVar(&r.end, "d", "", "end date of the period, open when empty")
}

// Range parses the flags. Empty flags leave the matching bound open.
func (r *rangeFlags) Range() (ledger.Range, error) {
	var from, to ledger.Date
	var err error
	if r.start != "" {
		if from, err = ledger.ParseDate(r.start); err != nil {
			return ledger.Range{}, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if r.end != "" {
		if to, err = ledger.ParseDate(r.end); err != nil {
			return ledger.Range{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	return ledger.NewRange(from, to), nil
}

type salesCmd struct{ rangeFlags }

func (*salesCmd) Name() string     { return "sales" }
func (*salesCmd) Synopsis() string { return "list sales" }
func (*salesCmd) Usage() string {
	return `smallbatch sales [-s <date>] [-d <date>]

  Lists the sales of the period.
`
}

func (c *salesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		printMarkdown(renderer.SalesMarkdown(d, ledger.FilterSales(d.Sales, r), currency()))
		return nil
	})
}

type addExpenseCmd struct {
	date     string
	category string
	amount   string
	notes    string
}

func (*addExpenseCmd) Name() string     { return "add-expense" }
func (*addExpenseCmd) Synopsis() string { return "record an expense" }
func (*addExpenseCmd) Usage() string {
	return `smallbatch add-expense -category <name> -amount <amount> [-d <date>] [-notes <text>]
`
}

func (c *addExpenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "expense date. See the user manual for supported date formats.")
	f.StringVar(&c.category, "category", "", "expense category")
	f.StringVar(&c.amount, "amount", "", "amount spent")
	f.StringVar(&c.notes, "notes", "", "free text")
}

func (c *addExpenseCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.category == "" || c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -category and -amount are required")
		return subcommands.ExitUsageError
	}
	on, err := ledger.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := ledger.ParseMoney(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	e := ledger.Expense{Date: on, Category: c.category, Amount: amount, Notes: c.notes}
	return withApp(func(a *App) error {
		return a.Store.AddExpense(e)
	})
}

type removeExpenseCmd struct{}

func (*removeExpenseCmd) Name() string     { return "remove-expense" }
func (*removeExpenseCmd) Synopsis() string { return "remove expenses" }
func (*removeExpenseCmd) Usage() string {
	return `smallbatch remove-expense <id>...
`
}
func (*removeExpenseCmd) SetFlags(*flag.FlagSet) {}

func (*removeExpenseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing expense id")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		for _, id := range f.Args() {
			if err := a.Store.RemoveExpense(id); err != nil {
				return err
			}
		}
		return nil
	})
}

type expensesCmd struct{ rangeFlags }

func (*expensesCmd) Name() string     { return "expenses" }
func (*expensesCmd) Synopsis() string { return "list expenses" }
func (*expensesCmd) Usage() string {
	return `smallbatch expenses [-s <date>] [-d <date>]
`
}

func (c *expensesCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		printMarkdown(renderer.ExpensesMarkdown(ledger.FilterExpenses(d.Expenses, r), currency()))
		return nil
	})
}

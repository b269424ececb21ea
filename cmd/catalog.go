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

// addProductCmd holds the flags for the 'add-product' subcommand.
type addProductCmd struct {
	id       string
	name     string
	cost     string
	price    string
	inactive bool
}

func (*addProductCmd) Name() string     { return "add-product" }
func (*addProductCmd) Synopsis() string { return "add a product to the catalog" }
func (*addProductCmd) Usage() string {
	return `smallbatch add-product -name <name> [-id <id>] [-cost <amount>] [-price <amount>] [-inactive]

  Adds a product. The cost is the unit cost used as long as the product has no recipe.
`
}

func (c *addProductCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "product id, generated when empty")
	f.StringVar(&c.name, "name", "", "product name")
	f.StringVar(&c.cost, "cost", "0", "base unit cost")
	f.StringVar(&c.price, "price", "0", "unit selling price")
	f.BoolVar(&c.inactive, "inactive", false, "add the product as inactive")
}

func (c *addProductCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		return subcommands.ExitUsageError
	}
	cost, err := ledger.ParseMoney(c.cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -cost: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := ledger.ParseMoney(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -price: %v\n", err)
		return subcommands.ExitUsageError
	}
	p := ledger.Product{ID: c.id, Name: c.name, UnitCost: cost, UnitPrice: price, Active: !c.inactive}
	return withApp(func(a *App) error {
		return a.Store.AddProduct(p)
	})
}

type removeProductCmd struct{}

func (*removeProductCmd) Name() string     { return "remove-product" }
func (*removeProductCmd) Synopsis() string { return "remove a product and its recipe" }
func (*removeProductCmd) Usage() string {
	return `smallbatch remove-product <id>...

  Removes products. Past sales keep referencing them.
`
}
func (*removeProductCmd) SetFlags(*flag.FlagSet) {}

func (*removeProductCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing product id")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		for _, id := range f.Args() {
			if err := a.Store.RemoveProduct(id); err != nil {
				return err
			}
		}
		return nil
	})
}

type productsCmd struct{}

func (*productsCmd) Name() string     { return "products" }
func (*productsCmd) Synopsis() string { return "list products with their unit cost and margin" }
func (*productsCmd) Usage() string {
	return `smallbatch products

  Lists the catalog. The unit cost comes from the recipe when there is one.
`
}
func (*productsCmd) SetFlags(*flag.FlagSet) {}

func (*productsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		printMarkdown(renderer.ProductsMarkdown(d, currency()))
		return nil
	})
}

type addIngredientCmd struct {
	id   string
	name string
	unit string
	cost string
}

func (*addIngredientCmd) Name() string     { return "add-ingredient" }
func (*addIngredientCmd) Synopsis() string { return "add an ingredient" }
func (*addIngredientCmd) Usage() string {
	return `smallbatch add-ingredient -name <name> -unit <unit> -cost <amount> [-id <id>]

  Adds an ingredient priced per unit (g, ml, pcs...).
`
}

func (c *addIngredientCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "ingredient id, generated when empty")
	f.StringVar(&c.name, "name", "", "ingredient name")
	f.StringVar(&c.unit, "unit", "pcs", "unit of measure")
	f.StringVar(&c.cost, "cost", "0", "cost per unit")
}

func (c *addIngredientCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		return subcommands.ExitUsageError
	}
	cost, err := ledger.ParseMoney(c.cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -cost: %v\n", err)
		return subcommands.ExitUsageError
	}
	i := ledger.Ingredient{ID: c.id, Name: c.name, Unit: c.unit, CostPerUnit: cost}
	return withApp(func(a *App) error {
		return a.Store.AddIngredient(i)
	})
}

type removeIngredientCmd struct{}

func (*removeIngredientCmd) Name() string     { return "remove-ingredient" }
func (*removeIngredientCmd) Synopsis() string { return "remove an ingredient from the catalog and all recipes" }
func (*removeIngredientCmd) Usage() string {
	return `smallbatch remove-ingredient <id>...
`
}
func (*removeIngredientCmd) SetFlags(*flag.FlagSet) {}

func (*removeIngredientCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing ingredient id")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		for _, id := range f.Args() {
			if err := a.Store.RemoveIngredient(id); err != nil {
				return err
			}
		}
		return nil
	})
}

type ingredientsCmd struct{}

func (*ingredientsCmd) Name() string     { return "ingredients" }
func (*ingredientsCmd) Synopsis() string { return "list ingredients" }
func (*ingredientsCmd) Usage() string {
	return `smallbatch ingredients
`
}
func (*ingredientsCmd) SetFlags(*flag.FlagSet) {}

func (*ingredientsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		printMarkdown(renderer.IngredientsMarkdown(d, currency()))
		return nil
	})
}

type setRecipeCmd struct{}

func (*setRecipeCmd) Name() string     { return "set-recipe" }
func (*setRecipeCmd) Synopsis() string { return "set the quantity of an ingredient in a product recipe" }
func (*setRecipeCmd) Usage() string {
	return `smallbatch set-recipe <product> <ingredient> <quantity>

  Sets how much of the ingredient goes into one unit of the product.
  Once a product has a recipe, its unit cost is computed from it.
`
}
func (*setRecipeCmd) SetFlags(*flag.FlagSet) {}

func (*setRecipeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: expecting <product> <ingredient> <quantity>")
		return subcommands.ExitUsageError
	}
	qty, err := ledger.ParseQuantity(f.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity: %v\n", err)
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		if d.Product(f.Arg(0)) == nil {
			return fmt.Errorf("unknown product %q", f.Arg(0))
		}
		if d.Ingredient(f.Arg(1)) == nil {
			return fmt.Errorf("unknown ingredient %q", f.Arg(1))
		}
		return a.Store.UpsertRecipeLine(f.Arg(0), f.Arg(1), qty)
	})
}

type unsetRecipeCmd struct{}

func (*unsetRecipeCmd) Name() string     { return "unset-recipe" }
func (*unsetRecipeCmd) Synopsis() string { return "remove an ingredient from a product recipe" }
func (*unsetRecipeCmd) Usage() string {
	return `smallbatch unset-recipe <product> <ingredient>

  The recipe stays defined even when it becomes empty.
`
}
func (*unsetRecipeCmd) SetFlags(*flag.FlagSet) {}

func (*unsetRecipeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: expecting <product> <ingredient>")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		return a.Store.RemoveRecipeLine(f.Arg(0), f.Arg(1))
	})
}

type recipeCmd struct{}

func (*recipeCmd) Name() string     { return "recipe" }
func (*recipeCmd) Synopsis() string { return "show a product recipe and its unit cost" }
func (*recipeCmd) Usage() string {
	return `smallbatch recipe <product>
`
}
func (*recipeCmd) SetFlags(*flag.FlagSet) {}

func (*recipeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting <product>")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		printMarkdown(renderer.RecipeMarkdown(d, f.Arg(0), currency()))
		return nil
	})
}

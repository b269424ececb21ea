package renderer

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	ledger "github.com/belisario-afk/cakepop-ledger"
	md "github.com/nao1215/markdown"
)

// ProductsMarkdown lists the catalog with each product's effective unit cost and margin.
func ProductsMarkdown(d *ledger.Document, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Products")
	if len(d.Products) == 0 {
		doc.PlainText("No products.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignCenter},
		Header:    []string{"ID", "Name", "Price", "Base cost", "Unit cost", "Margin", "Active"},
	}
	for _, p := range d.Products {
		cost := d.ProductCost(p.ID)
		unitCost := cost.Format(currency)
		if _, ok := ledger.RecipeCost(p.ID, d.Ingredients, d.Recipes); ok {
			unitCost += " (recipe)"
		}
		active := ""
		if p.Active {
			active = "yes"
		}
		table.Rows = append(table.Rows, []string{
			p.ID,
			p.Name,
			p.UnitPrice.Format(currency),
			p.UnitCost.Format(currency),
			unitCost,
			p.UnitPrice.Sub(cost).Ratio(p.UnitPrice).String(),
			active,
		})
	}
	doc.Table(table)
	return doc.String()
}

// IngredientsMarkdown lists the ingredients.
func IngredientsMarkdown(d *ledger.Document, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Ingredients")
	if len(d.Ingredients) == 0 {
		doc.PlainText("No ingredients.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"ID", "Name", "Unit", "Cost per unit"},
	}
	for _, i := range d.Ingredients {
		// per unit costs are often fractions of a cent
		table.Rows = append(table.Rows, []string{i.ID, i.Name, i.Unit, i.CostPerUnit.Decimal().String() + " " + currency})
	}
	doc.Table(table)
	return doc.String()
}

// RecipeMarkdown details the recipe of a product, line by line.
func RecipeMarkdown(d *ledger.Document, productID, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Recipe of %s", ledger.ProductName(d.Products, productID)))

	cost, ok := ledger.RecipeCost(productID, d.Ingredients, d.Recipes)
	if !ok {
		doc.PlainText("No recipe, the base cost applies: " + ledger.BaseCost(productID, d.Products).Format(currency))
		return doc.String()
	}

	line := d.Recipes[productID]
	if len(line) == 0 {
		doc.PlainText("The recipe is empty.")
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight},
			Header:    []string{"Ingredient", "Quantity", "Unit", "Cost"},
		}
		for _, id := range slices.Sorted(maps.Keys(line)) {
			qty := line[id]
			ing := d.Ingredient(id)
			if ing == nil {
				table.Rows = append(table.Rows, []string{id + " (removed)", qty.String(), "", "-"})
				continue
			}
			table.Rows = append(table.Rows, []string{ing.Name, qty.String(), ing.Unit, ing.CostPerUnit.Mul(qty).Format(currency)})
		}
		doc.Table(table)
	}
	doc.PlainText(md.Bold("Unit cost: " + cost.Format(currency)))
	return doc.String()
}

// SalesMarkdown lists sales with their totals.
func SalesMarkdown(d *ledger.Document, sales []ledger.Sale, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Sales")
	if len(sales) == 0 {
		doc.PlainText("No sales.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"ID", "Date", "Product", "Qty", "Price", "Discount", "Total", "Notes"},
	}
	var total ledger.Money
	for _, s := range sales {
		t := ledger.SaleTotal(s)
		total = total.Add(t)
		table.Rows = append(table.Rows, []string{
			s.ID,
			s.Date.String(),
			ledger.ProductName(d.Products, s.ProductID),
			s.Quantity.String(),
			s.UnitPrice.Format(currency),
			s.Discount.Format(currency),
			t.Format(currency),
			s.Notes,
		})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", "", "", "", md.Bold(total.Format(currency)), ""})
	doc.Table(table)
	return doc.String()
}

// ExpensesMarkdown lists expenses.
func ExpensesMarkdown(expenses []ledger.Expense, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Expenses")
	if len(expenses) == 0 {
		doc.PlainText("No expenses.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignLeft},
		Header:    []string{"ID", "Date", "Category", "Amount", "Notes"},
	}
	var total ledger.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
		table.Rows = append(table.Rows, []string{e.ID, e.Date.String(), e.Category, e.Amount.Format(currency), e.Notes})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", md.Bold(total.Format(currency)), ""})
	doc.Table(table)
	return doc.String()
}

// StatsMarkdown summarizes what the active ledger holds.
func StatsMarkdown(namespace string, d *ledger.Document) string {
	st := d.Stats()
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Data")
	lastSaved := "never"
	if st.LastSaved != nil {
		lastSaved = st.LastSaved.String()
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Namespace", namespace},
		Rows: [][]string{
			{"Products", fmt.Sprint(st.Products)},
			{"Ingredients", fmt.Sprint(st.Ingredients)},
			{"Recipes", fmt.Sprint(st.RecipesWithItems)},
			{"Sales", fmt.Sprint(st.Sales)},
			{"Expenses", fmt.Sprint(st.Expenses)},
			{"Created", st.Created.String()},
			{"Last saved", lastSaved},
		},
	})
	return doc.String()
}

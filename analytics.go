package ledger

import (
	"cmp"
	"slices"
)

// FilterSales returns the sales whose date is within r, in their original order.
func FilterSales(sales []Sale, r Range) []Sale {
	var out []Sale
	for _, s := range sales {
		if r.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out
}

// FilterExpenses returns the expenses whose date is within r, in their original order.
func FilterExpenses(expenses []Expense, r Range) []Expense {
	var out []Expense
	for _, e := range expenses {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// DailyRevenue is the revenue of one day.
type DailyRevenue struct {
	Date    Date
	Revenue Money
}

// DailyRevenueSeries returns one point per day for the n days ending today,
// oldest first. Days without sales have a zero revenue.
func DailyRevenueSeries(sales []Sale, today Date, n int) []DailyRevenue {
	var series []DailyRevenue
	index := make(map[Date]int)
	r := LastNDays(today, n)
	for d := range r.Days() {
		index[d] = len(series)
		series = append(series, DailyRevenue{Date: d})
	}
	for _, s := range sales {
		if i, ok := index[s.Date]; ok {
			series[i].Revenue = series[i].Revenue.Add(SaleTotal(s))
		}
	}
	return series
}

// ProductVolume is the number of units sold of a product.
type ProductVolume struct {
	ID       string
	Name     string // falls back to ID for a removed product
	Quantity Quantity
}

// TopProducts ranks products by units sold, most sold first. Ties keep the
// order in which products first appear in sales. A limit <= 0 returns all.
func TopProducts(sales []Sale, products []Product, limit int) []ProductVolume {
	var volumes []ProductVolume
	index := make(map[string]int)
	for _, s := range sales {
		i, ok := index[s.ProductID]
		if !ok {
			i = len(volumes)
			index[s.ProductID] = i
			volumes = append(volumes, ProductVolume{ID: s.ProductID, Name: ProductName(products, s.ProductID)})
		}
		volumes[i].Quantity = volumes[i].Quantity.Add(s.Quantity)
	}
	slices.SortStableFunc(volumes, func(a, b ProductVolume) int {
		return b.Quantity.value.Cmp(a.Quantity.value)
	})
	if limit > 0 && len(volumes) > limit {
		volumes = volumes[:limit]
	}
	return volumes
}

// ProductName returns the name of a product, or its id when it no longer exists.
func ProductName(products []Product, id string) string {
	if p := findProduct(products, id); p != nil {
		return p.Name
	}
	return id
}

// CategoryTotal is the sum of expenses of one category.
type CategoryTotal struct {
	Category string
	Amount   Money
}

// ExpensesByCategory sums expenses per category, largest first, then by name.
func ExpensesByCategory(expenses []Expense) []CategoryTotal {
	var totals []CategoryTotal
	index := make(map[string]int)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, CategoryTotal{Category: e.Category})
		}
		totals[i].Amount = totals[i].Amount.Add(e.Amount)
	}
	slices.SortFunc(totals, func(a, b CategoryTotal) int {
		if c := b.Amount.value.Cmp(a.Amount.value); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return totals
}

// Stats counts the content of a document.
type Stats struct {
	Products         int
	Ingredients      int
	RecipesWithItems int
	Sales            int
	Expenses         int
	Created          Millis
	LastSaved        *Millis
}

// Stats returns the document counts shown on the data page.
func (d *Document) Stats() Stats {
	st := Stats{
		Products:    len(d.Products),
		Ingredients: len(d.Ingredients),
		Sales:       len(d.Sales),
		Expenses:    len(d.Expenses),
		Created:     d.Meta.Created,
		LastSaved:   d.Meta.LastSaved,
	}
	for _, line := range d.Recipes {
		if len(line) > 0 {
			st.RecipesWithItems++
		}
	}
	return st
}

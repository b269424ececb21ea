package ledger

// Metrics aggregates sales and expenses over a window chosen by the caller.
type Metrics struct {
	Revenue  Money   // sum of sale totals
	COGS     Money   // cost of goods sold
	Gross    Money   // Revenue - COGS
	Expenses Money   // sum of expense amounts
	Net      Money   // Gross - Expenses
	AOV      Money   // average order value, zero without sales
	Margin   Percent // Gross / Revenue, zero without revenue
}

// ComputeMetrics aggregates already filtered sales and expenses.
//
// It never divides by zero: AOV and Margin are zero when there are no sales
// or no revenue.
func ComputeMetrics(sales []Sale, expenses []Expense, products []Product, ingredients []Ingredient, recipes Recipes) Metrics {
	var m Metrics
	for _, s := range sales {
		m.Revenue = m.Revenue.Add(SaleTotal(s))
		m.COGS = m.COGS.Add(SaleCost(s, products, ingredients, recipes))
	}
	m.Gross = m.Revenue.Sub(m.COGS)
	for _, e := range expenses {
		m.Expenses = m.Expenses.Add(e.Amount)
	}
	m.Net = m.Gross.Sub(m.Expenses)
	if len(sales) > 0 {
		m.AOV = m.Revenue.Div(Q(len(sales)))
	}
	m.Margin = m.Gross.Ratio(m.Revenue)
	return m
}

// Metrics aggregates the given sales and expenses against this document's catalog.
func (d *Document) Metrics(sales []Sale, expenses []Expense) Metrics {
	return ComputeMetrics(sales, expenses, d.Products, d.Ingredients, d.Recipes)
}

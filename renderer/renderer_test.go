package renderer

import (
	"strings"
	"testing"
	"time"

	ledger "github.com/belisario-afk/cakepop-ledger"
)

func testDocument() *ledger.Document {
	d := ledger.NewDocument(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	d.Products = []ledger.Product{
		{ID: "p1", Name: "Vanilla", UnitCost: ledger.M(0.4), UnitPrice: ledger.M(2.5), Active: true},
		{ID: "p2", Name: "Chocolate", UnitCost: ledger.M(0.5), UnitPrice: ledger.M(3)},
	}
	d.Ingredients = []ledger.Ingredient{
		{ID: "sugar", Name: "Sugar", Unit: "g", CostPerUnit: ledger.M(0.002)},
	}
	d.Recipes = ledger.Recipes{"p2": {"sugar": ledger.Q(100), "gone": ledger.Q(1)}}
	d.Sales = []ledger.Sale{
		{ID: "s1", Date: ledger.NewDate(2024, 3, 4), ProductID: "p1", Quantity: ledger.Q(4), UnitPrice: ledger.M(2.5), Discount: ledger.M(1)},
		{ID: "s2", Date: ledger.NewDate(2024, 3, 5), ProductID: "p2", Quantity: ledger.Q(2), UnitPrice: ledger.M(3)},
	}
	d.Expenses = []ledger.Expense{
		{ID: "e1", Date: ledger.NewDate(2024, 3, 5), Category: "packaging", Amount: ledger.M(1.5)},
	}
	return d
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output does not contain %q:\n%s", w, got)
		}
	}
}

func TestRenderDashboard(t *testing.T) {
	d := testDocument()
	db := NewDashboard(d, ledger.Range{}, ledger.NewDate(2024, 3, 5), "USD")
	got := RenderDashboard(db)

	if strings.Contains(got, "error") {
		t.Fatalf("template failed:\n%s", got)
	}
	assertContains(t, got,
		"# Dashboard, all time",
		"| Revenue | $15.00 |",
		"| Cost of goods | $2.00 |",
		"| **Net profit** | **$11.50** |",
		"| Average order | $7.50 |",
		"| Gross margin | 86.7% |",
		"| 2024-03-04 | $9.00 |",
		"| Vanilla | 4 |",
		"| packaging | $1.50 |",
	)
	if strings.Contains(got, "| 2024-03-03 |") {
		t.Errorf("days without sales are listed:\n%s", got)
	}
}

func TestRenderDashboard_Empty(t *testing.T) {
	d := ledger.NewDocument(time.Now())
	got := RenderDashboard(NewDashboard(d, ledger.LastNDays(ledger.NewDate(2024, 3, 5), 7), ledger.NewDate(2024, 3, 5), "USD"))
	assertContains(t, got,
		"# Dashboard, 2024-02-28 to 2024-03-05",
		"| Revenue | $0.00 |",
		"| Gross margin | 0.0% |",
		"No sales in the last 30 days.",
		"No sales yet.",
		"No expenses in this period.",
	)
}

func TestProductsMarkdown(t *testing.T) {
	got := ProductsMarkdown(testDocument(), "USD")
	assertContains(t, got, "Vanilla", "$0.40", "84.0%", "$0.20 (recipe)")
}

func TestRecipeMarkdown(t *testing.T) {
	d := testDocument()
	assertContains(t, RecipeMarkdown(d, "p2", "USD"), "Recipe of Chocolate", "Sugar", "gone (removed)", "Unit cost: $0.20")
	assertContains(t, RecipeMarkdown(d, "p1", "USD"), "No recipe, the base cost applies: $0.40")
}

func TestSalesMarkdown(t *testing.T) {
	d := testDocument()
	d.Products = d.Products[:1] // p2 removed
	assertContains(t, SalesMarkdown(d, d.Sales, "USD"), "Vanilla", "p2", "$9.00", "$15.00")
	assertContains(t, SalesMarkdown(d, nil, "USD"), "No sales.")
}

func TestExpensesMarkdown(t *testing.T) {
	assertContains(t, ExpensesMarkdown(testDocument().Expenses, "USD"), "packaging", "$1.50")
}

func TestStatsMarkdown(t *testing.T) {
	assertContains(t, StatsMarkdown("smallbatch-ledger-v2::guest", testDocument()), "smallbatch-ledger-v2::guest", "never")
}

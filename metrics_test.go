package ledger

import "testing"

func TestComputeMetrics(t *testing.T) {
	products := []Product{{ID: "p1", UnitCost: M(0.5), UnitPrice: M(1.5)}}
	sales := []Sale{{ID: "s1", ProductID: "p1", Quantity: Q(4), UnitPrice: M(1.5)}}
	expenses := []Expense{{ID: "e1", Category: "rent", Amount: M(1)}}

	got := ComputeMetrics(sales, expenses, products, nil, Recipes{})

	checks := []struct {
		name      string
		got, want Money
	}{
		{"revenue", got.Revenue, M(6)},
		{"cogs", got.COGS, M(2)},
		{"gross", got.Gross, M(4)},
		{"expenses", got.Expenses, M(1)},
		{"net", got.Net, M(3)},
		{"aov", got.AOV, M(6)},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got.Decimal(), c.want.Decimal())
		}
	}
	if want := Percent(200.0 / 3); !got.Margin.Equal(want) {
		t.Errorf("margin = %v, want %v", got.Margin, want)
	}
	if got.Margin.String() != "66.7%" {
		t.Errorf("margin.String() = %q, want %q", got.Margin.String(), "66.7%")
	}
}

func TestComputeMetrics_Empty(t *testing.T) {
	got := ComputeMetrics(nil, nil, nil, nil, nil)
	for name, m := range map[string]Money{
		"revenue": got.Revenue, "cogs": got.COGS, "gross": got.Gross,
		"expenses": got.Expenses, "net": got.Net, "aov": got.AOV,
	} {
		if !m.IsZero() {
			t.Errorf("%s = %v, want 0", name, m.Decimal())
		}
	}
	if got.Margin != 0 {
		t.Errorf("margin = %v, want 0", got.Margin)
	}
}

func TestComputeMetrics_ExpensesOnly(t *testing.T) {
	got := ComputeMetrics(nil, []Expense{{Amount: M(12.5)}}, nil, nil, nil)
	if !got.Net.Equal(M(-12.5)) {
		t.Errorf("net = %v, want -12.5", got.Net.Decimal())
	}
	if got.Margin != 0 || !got.AOV.IsZero() {
		t.Errorf("margin, aov = %v, %v, want 0, 0", got.Margin, got.AOV.Decimal())
	}
}

func TestComputeMetrics_RemovedProduct(t *testing.T) {
	sales := []Sale{{ProductID: "gone", Quantity: Q(2), UnitPrice: M(3)}}
	got := ComputeMetrics(sales, nil, nil, nil, Recipes{})
	if !got.Revenue.Equal(M(6)) || !got.COGS.IsZero() {
		t.Errorf("revenue, cogs = %v, %v, want 6, 0", got.Revenue.Decimal(), got.COGS.Decimal())
	}
	if !got.Margin.Equal(100) {
		t.Errorf("margin = %v, want 100%%", got.Margin)
	}
}

func TestDocument_Metrics(t *testing.T) {
	d := NewDocument(testNow)
	seed(d)
	d.Recipes["p-sample1"] = RecipeLine{"ing-sugar": Q(100)}
	d.Sales = append(d.Sales, Sale{ProductID: "p-sample1", Quantity: Q(10), UnitPrice: M(2.50)})

	got := d.Metrics(d.Sales, d.Expenses)
	if !got.COGS.Equal(M(2)) {
		t.Errorf("cogs = %v, want 2 (recipe cost 0.2 x 10)", got.COGS.Decimal())
	}
	if !got.Gross.Equal(M(23)) {
		t.Errorf("gross = %v, want 23", got.Gross.Decimal())
	}
}

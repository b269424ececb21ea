package ledger

// seed adds the starter catalog to a document that has no product yet.
func seed(d *Document) {
	if len(d.Products) > 0 {
		return
	}
	d.Products = append(d.Products,
		Product{ID: "p-sample1", Name: "Classic Vanilla", UnitCost: M(0.40), UnitPrice: M(2.50), Active: true},
		Product{ID: "p-sample2", Name: "Rich Chocolate", UnitCost: M(0.48), UnitPrice: M(2.80), Active: true},
	)
	d.Ingredients = append(d.Ingredients,
		Ingredient{ID: "ing-sugar", Name: "Sugar", Unit: "g", CostPerUnit: M(0.002)},
		Ingredient{ID: "ing-flour", Name: "Flour", Unit: "g", CostPerUnit: M(0.0015)},
	)
}

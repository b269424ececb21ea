package ledger

// MissingRefPolicy names how the cost functions treat a foreign key that no
// longer resolves: a sale whose product was removed, a recipe line whose
// ingredient was removed.
type MissingRefPolicy int

const (
	// ZeroOrSkip resolves a missing product to a zero base cost and skips
	// recipe lines whose ingredient is missing.
	ZeroOrSkip MissingRefPolicy = iota
)

func (p MissingRefPolicy) String() string {
	switch p {
	case ZeroOrSkip:
		return "zero-or-skip"
	default:
		return "unknown"
	}
}

// DanglingRefs is the policy every cost function below follows. None of them
// reports an error for a missing reference.
const DanglingRefs = ZeroOrSkip

// RecipeCost returns the cost of one unit of product computed from its recipe.
//
// The boolean is false when the product has no recipe at all. A recipe whose
// ingredients are all unknown is still a recipe, and costs zero.
func RecipeCost(productID string, ingredients []Ingredient, recipes Recipes) (Money, bool) {
	line, ok := recipes[productID]
	if !ok {
		return Money{}, false
	}
	var total Money
	for ingredientID, qty := range line {
		ing := findIngredient(ingredients, ingredientID)
		if ing == nil {
			continue // DanglingRefs
		}
		total = total.Add(ing.CostPerUnit.Mul(qty))
	}
	return total, true
}

// BaseCost returns the product's flat unit cost, or zero when the product no longer exists.
func BaseCost(productID string, products []Product) Money {
	p := findProduct(products, productID)
	if p == nil {
		return Money{} // DanglingRefs
	}
	return p.UnitCost
}

// EffectiveCost returns the recipe cost when a recipe is defined, the base cost otherwise.
//
// This is an override, not a blend: a zero recipe cost does not fall back to the base cost.
func EffectiveCost(productID string, products []Product, ingredients []Ingredient, recipes Recipes) Money {
	if cost, ok := RecipeCost(productID, ingredients, recipes); ok {
		return cost
	}
	return BaseCost(productID, products)
}

// SaleTotal returns unitPrice * quantity - discount, using the price captured on the sale.
func SaleTotal(s Sale) Money {
	return s.UnitPrice.Mul(s.Quantity).Sub(s.Discount)
}

// SaleCost returns the effective unit cost of the sold product times the quantity.
func SaleCost(s Sale, products []Product, ingredients []Ingredient, recipes Recipes) Money {
	return EffectiveCost(s.ProductID, products, ingredients, recipes).Mul(s.Quantity)
}

func findProduct(products []Product, id string) *Product {
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}

func findIngredient(ingredients []Ingredient, id string) *Ingredient {
	for i := range ingredients {
		if ingredients[i].ID == id {
			return &ingredients[i]
		}
	}
	return nil
}

// ProductCost returns the effective unit cost of a product of this document.
func (d *Document) ProductCost(productID string) Money {
	return EffectiveCost(productID, d.Products, d.Ingredients, d.Recipes)
}

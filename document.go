package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is the version of the document layout written by this package.
const SchemaVersion = 2

// Brand tags documents written or migrated by this package.
const Brand = "smallbatch"

// Document is the whole ledger of one user namespace.
//
// Collections keep insertion order, which is also the display order.
type Document struct {
	Version     int             `json:"version"`
	Products    []Product       `json:"products"`
	Ingredients []Ingredient    `json:"ingredients"`
	Recipes     Recipes         `json:"recipes"`
	Sales       []Sale          `json:"sales"`
	Expenses    []Expense       `json:"expenses"`
	Settings    json.RawMessage `json:"settings"` // opaque theme/profile blob, may be null
	Meta        Meta            `json:"meta"`
}

// Product is a sellable item. UnitCost is the cost basis used when the product has no recipe.
type Product struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitCost  Money  `json:"unitCost"`
	UnitPrice Money  `json:"unitPrice"`
	Active    bool   `json:"active"`
}

// Ingredient is a raw material priced per Unit ("g", "ml", "pcs").
type Ingredient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	CostPerUnit Money  `json:"costPerUnit"`
}

// RecipeLine maps an ingredient id to the quantity used for one unit of product.
type RecipeLine map[string]Quantity

// Recipes maps a product id to its recipe. A missing entry means "no recipe".
type Recipes map[string]RecipeLine

// Sale records units sold. UnitPrice is captured at sale time and never
// follows later product price changes.
type Sale struct {
	ID        string   `json:"id"`
	Date      Date     `json:"date"`
	ProductID string   `json:"productId"`
	Quantity  Quantity `json:"quantity"`
	UnitPrice Money    `json:"unitPrice"`
	Discount  Money    `json:"discount"`
	Notes     string   `json:"notes"`
}

// Expense records money spent outside of the cost of goods.
type Expense struct {
	ID       string `json:"id"`
	Date     Date   `json:"date"`
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
	Notes    string `json:"notes"`
}

// Millis is a Unix timestamp in milliseconds.
type Millis int64

// MillisOf converts t to a Millis.
func MillisOf(t time.Time) Millis { return Millis(t.UnixMilli()) }

// Time returns the Millis as a local time.
func (m Millis) Time() time.Time { return time.UnixMilli(int64(m)) }

func (m Millis) String() string { return m.Time().Format(time.DateTime) }

// UnmarshalJSON reads a number or a numeric string, anything else is zero.
func (m *Millis) UnmarshalJSON(data []byte) error {
	*m = Millis(parseNum(data).IntPart())
	return nil
}

// Meta holds document bookkeeping.
type Meta struct {
	Created      Millis
	LastSaved    *Millis
	LastExport   *Millis
	Migrated     bool
	Brand        string
	MigratedFrom string
	MigratedAt   *Millis
}

// MarshalJSON writes timestamps first, then the bookkeeping fields that are set.
func (m Meta) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("created", m.Created)
	w.Append("lastExport", m.LastExport)
	w.Append("lastSaved", m.LastSaved)
	w.Optional("migrated", m.Migrated)
	w.Optional("brand", m.Brand)
	w.Optional("migratedFrom", m.MigratedFrom)
	w.Optional("migratedAt", m.MigratedAt)
	return w.MarshalJSON()
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	var jmeta struct {
		Created      Millis  `json:"created"`
		LastSaved    *Millis `json:"lastSaved"`
		LastExport   *Millis `json:"lastExport"`
		Migrated     bool    `json:"migrated"`
		Brand        string  `json:"brand"`
		MigratedFrom string  `json:"migratedFrom"`
		MigratedAt   *Millis `json:"migratedAt"`
	}
	texts, flags := []string{"brand", "migratedFrom"}, []string{"migrated"}
	if err := decodeObject(data, &jmeta, texts, flags); err != nil {
		return err
	}
	*m = Meta(jmeta)
	return nil
}

// NewDocument returns an empty document created at now.
func NewDocument(now time.Time) *Document {
	return &Document{
		Version:     SchemaVersion,
		Products:    []Product{},
		Ingredients: []Ingredient{},
		Recipes:     Recipes{},
		Sales:       []Sale{},
		Expenses:    []Expense{},
		Meta:        Meta{Created: MillisOf(now), Migrated: true, Brand: Brand},
	}
}

// DecodeDocument parses a JSON document and backfills the fields older
// layouts lack. Existing data is never discarded: it fails only when data
// is not a JSON object, field values are read leniently.
func DecodeDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid ledger document: %w", err)
	}
	d.backfill()
	return &d, nil
}

// backfill sets missing top-level fields to their defaults.
func (d *Document) backfill() {
	if d.Version == 0 {
		d.Version = SchemaVersion
	}
	if d.Ingredients == nil {
		d.Ingredients = []Ingredient{}
	}
	if d.Recipes == nil {
		d.Recipes = Recipes{}
	}
	if bytes.Equal(bytes.TrimSpace(d.Settings), []byte("null")) {
		d.Settings = nil
	}
	// Not part of the legacy backfill, but a snapshot never carries null collections.
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Sales == nil {
		d.Sales = []Sale{}
	}
	if d.Expenses == nil {
		d.Expenses = []Expense{}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() (*Document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("cannot copy document: %w", err)
	}
	return DecodeDocument(data)
}

// Product returns the product with this id, or nil.
func (d *Document) Product(id string) *Product { return findProduct(d.Products, id) }

// Ingredient returns the ingredient with this id, or nil.
func (d *Document) Ingredient(id string) *Ingredient { return findIngredient(d.Ingredients, id) }

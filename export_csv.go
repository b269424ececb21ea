package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
)

var salesCSVHeader = []string{"id", "date", "product", "quantity", "unitPrice", "discount", "total", "notes"}

// EncodeSalesCSV writes every sale of d as CSV, one row per sale in ledger order.
//
// The product column holds the product name, or the raw product id when the
// product was removed.
func EncodeSalesCSV(w io.Writer, d *Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(salesCSVHeader); err != nil {
		return fmt.Errorf("cannot write sales csv: %w", err)
	}
	for _, s := range d.Sales {
		row := []string{
			s.ID,
			s.Date.String(),
			ProductName(d.Products, s.ProductID),
			s.Quantity.String(),
			s.UnitPrice.Decimal().String(),
			s.Discount.Decimal().String(),
			SaleTotal(s).Fixed(2),
			s.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("cannot write sale %q: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

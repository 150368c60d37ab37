package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/qazi-erp/qazi-erp/internal/domain"
)

// ExportFileName is the download name of the inventory export.
const ExportFileName = "qazi-inventory-export.csv"

// ExportHeader is the first CSV record.
var ExportHeader = []string{"ID", "Product Name", "Category", "Quantity", "Price", "Supplier", "Expiry Date"}

// WriteCSV writes products as RFC 4180 CSV, one record per product.
func WriteCSV(w io.Writer, products []domain.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("inventory: write csv header: %w", err)
	}
	for _, p := range products {
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Category,
			strconv.Itoa(p.Quantity),
			p.Price.String(),
			p.Supplier,
			p.ExpiryDate,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("inventory: write csv row %d: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

package orders

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportFileName is the download name of the orders export.
const ExportFileName = "qazi-orders-export.csv"

// ExportHeader is the first CSV record.
var ExportHeader = []string{"ID", "Customer", "Date", "Status", "Items", "Total"}

// WriteCSV writes one record per row. Items is the number of units ordered.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("orders: write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.CustomerName,
			row.Date,
			string(row.Status),
			strconv.Itoa(row.Units),
			row.Total.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("orders: write csv row %d: %w", row.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

package domain

// LowStockThreshold is the quantity at or below which a product is low on stock.
const LowStockThreshold = 50

// IsLowStock classifies a product against LowStockThreshold. The boundary is inclusive.
func (p Product) IsLowStock() bool {
	return p.Quantity <= LowStockThreshold
}

// StockStatus is the display label used by the inventory view.
func (p Product) StockStatus() string {
	if p.IsLowStock() {
		return "Low Stock"
	}
	return "In Stock"
}

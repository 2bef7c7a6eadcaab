package models

// StockLevel classifies available units the way the storefront badges them.
type StockLevel string

const (
	OutOfStock StockLevel = "out_of_stock"
	LowStock   StockLevel = "low_stock"
	InStock    StockLevel = "in_stock"
)

// LowStockThreshold is the stock below which a product is shown as low stock.
const LowStockThreshold = 10

func StockLevelOf(stock int) StockLevel {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock < LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

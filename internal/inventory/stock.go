package inventory

import "math"

// ItemType classifies inventory items.
type ItemType string

const (
	TypeIngredient ItemType = "INGREDIENT"
	TypeBeverage   ItemType = "BEVERAGE"
	TypeDisposable ItemType = "DISPOSABLE"
)

// ItemTypes lists every item type.
var ItemTypes = []ItemType{TypeIngredient, TypeBeverage, TypeDisposable}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case TypeIngredient, TypeBeverage, TypeDisposable:
		return true
	}
	return false
}

// AllowedUnits returns the units an item of type t may be stocked in.
// Beverages and disposables are counted; ingredients accept any unit.
func AllowedUnits(t ItemType) []Unit {
	switch t {
	case TypeBeverage, TypeDisposable:
		return []Unit{UnitCount}
	case TypeIngredient:
		return append([]Unit(nil), AllUnits...)
	}
	return nil
}

// IsUnitAllowed reports whether an item of type t may use unit u.
func IsUnitAllowed(t ItemType, u Unit) bool {
	for _, a := range AllowedUnits(t) {
		if a == u {
			return true
		}
	}
	return false
}

// StockStatus is derived from quantity and type on every read.
type StockStatus string

const (
	StatusInStock    StockStatus = "in-stock"
	StatusLowStock   StockStatus = "low-stock"
	StatusOutOfStock StockStatus = "out-of-stock"
)

// LowStockThreshold is the quantity at or below which an item is low on stock.
func LowStockThreshold(t ItemType) float64 {
	if t == TypeIngredient {
		return 10
	}
	return 5
}

// CalculateStockStatus classifies a stock level.
func CalculateStockStatus(quantity float64, t ItemType) StockStatus {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= LowStockThreshold(t):
		return StatusLowStock
	}
	return StatusInStock
}

// NormalizeQuantity applies the rounding policy for u. Count quantities are
// floored so stock is never overstated; everything else keeps two decimals.
func NormalizeQuantity(value float64, u Unit) float64 {
	if u.IsCount() {
		return math.Floor(value)
	}
	return math.Round(value*100) / 100
}

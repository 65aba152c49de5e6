package inventory

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Item is a stocked inventory item.
type Item struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Quantity      float64   `json:"quantity"`
	Type          ItemType  `json:"type"`
	UnitOfMeasure Unit      `json:"unit_of_measure"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockStatus derives the item's stock status from its current quantity.
func (i Item) StockStatus() StockStatus {
	return CalculateStockStatus(i.Quantity, i.Type)
}

// RecipeItem is one line of a product's bill of materials.
type RecipeItem struct {
	InventoryID   uuid.UUID `json:"inventory_id" validate:"required"`
	Quantity      float64   `json:"quantity" validate:"gt=0"`
	UnitOfMeasure Unit      `json:"unit_of_measure" validate:"required,unit"`
}

// ValidateRecipeItem checks a recipe line against the inventory item it consumes.
func ValidateRecipeItem(line RecipeItem, inv Item) ValidationResult {
	var res ValidationResult
	if err := validate.Struct(line); err != nil {
		for _, msg := range fieldMessages(err) {
			res.add(msg)
		}
	}
	if line.InventoryID != uuid.Nil && line.InventoryID != inv.ID {
		res.add(fmt.Sprintf("inventory_id %s does not match item %s", line.InventoryID, inv.ID))
	}
	if line.UnitOfMeasure.Valid() && !AreUnitsCompatible(line.UnitOfMeasure, inv.UnitOfMeasure) {
		res.add(fmt.Sprintf("unit %s is not compatible with %s used by %q", line.UnitOfMeasure, inv.UnitOfMeasure, inv.Name))
	}
	if line.UnitOfMeasure.IsCount() && !isWhole(line.Quantity) {
		res.add(fmt.Sprintf("quantity in %s must be a whole number", line.UnitOfMeasure))
	}
	return res.done()
}

// RequiredQuantity is how much of inv the given number of portions consume,
// expressed in inv's unit. Counted items round up to whole units.
func RequiredQuantity(line RecipeItem, inv Item, portions int) (float64, error) {
	q, err := ConvertQuantity(line.Quantity*float64(portions), line.UnitOfMeasure, inv.UnitOfMeasure)
	if err != nil {
		return 0, err
	}
	if inv.UnitOfMeasure.IsCount() {
		return math.Ceil(q), nil
	}
	return math.Round(q*100) / 100, nil
}

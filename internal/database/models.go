package database

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ProductType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Product struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Price         pgtype.Numeric     `json:"price"`
	ProductTypeID uuid.UUID          `json:"product_type_id"`
	IsActive      bool               `json:"is_active"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type Order struct {
	ID          uuid.UUID          `json:"id"`
	TableID     uuid.UUID          `json:"table_id"`
	Status      string             `json:"status"`
	Subtotal    pgtype.Numeric     `json:"subtotal"`
	TaxAmount   pgtype.Numeric     `json:"tax_amount"`
	TotalAmount pgtype.Numeric     `json:"total_amount"`
	CreatedBy   uuid.UUID          `json:"created_by"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type OrderItem struct {
	ID             uuid.UUID      `json:"id"`
	OrderID        uuid.UUID      `json:"order_id"`
	ProductID      uuid.UUID      `json:"product_id"`
	Quantity       int32          `json:"quantity"`
	ServedQuantity int32          `json:"served_quantity"`
	UnitPrice      pgtype.Numeric `json:"unit_price"`
	Subtotal       pgtype.Numeric `json:"subtotal"`
}

type InventoryItem struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Quantity      float64            `json:"quantity"`
	Type          string             `json:"type"`
	UnitOfMeasure string             `json:"unit_of_measure"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type ProductRecipe struct {
	ProductID     uuid.UUID `json:"product_id"`
	InventoryID   uuid.UUID `json:"inventory_id"`
	Quantity      float64   `json:"quantity"`
	UnitOfMeasure string    `json:"unit_of_measure"`
}

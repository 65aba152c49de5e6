package database

import (
	"context"

	"github.com/google/uuid"
)

const inventoryColumns = `id, name, quantity, type, unit_of_measure, created_at, updated_at`

func scanInventoryItem(row interface{ Scan(...any) error }) (InventoryItem, error) {
	var i InventoryItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Quantity,
		&i.Type,
		&i.UnitOfMeasure,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createInventoryItem = `-- name: CreateInventoryItem :one
INSERT INTO inventory_items (name, quantity, type, unit_of_measure)
VALUES ($1, $2, $3, $4)
RETURNING ` + inventoryColumns

type CreateInventoryItemParams struct {
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	Type          string  `json:"type"`
	UnitOfMeasure string  `json:"unit_of_measure"`
}

func (q *Queries) CreateInventoryItem(ctx context.Context, arg CreateInventoryItemParams) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, createInventoryItem,
		arg.Name,
		arg.Quantity,
		arg.Type,
		arg.UnitOfMeasure,
	))
}

const updateInventoryItem = `-- name: UpdateInventoryItem :one
UPDATE inventory_items
SET name = $2, quantity = $3, type = $4, unit_of_measure = $5, updated_at = now()
WHERE id = $1
RETURNING ` + inventoryColumns

type UpdateInventoryItemParams struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Quantity      float64   `json:"quantity"`
	Type          string    `json:"type"`
	UnitOfMeasure string    `json:"unit_of_measure"`
}

func (q *Queries) UpdateInventoryItem(ctx context.Context, arg UpdateInventoryItemParams) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, updateInventoryItem,
		arg.ID,
		arg.Name,
		arg.Quantity,
		arg.Type,
		arg.UnitOfMeasure,
	))
}

const getInventoryItem = `-- name: GetInventoryItem :one
SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = $1
`

func (q *Queries) GetInventoryItem(ctx context.Context, id uuid.UUID) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, getInventoryItem, id))
}

const getInventoryItemForUpdate = `-- name: GetInventoryItemForUpdate :one
SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetInventoryItemForUpdate(ctx context.Context, id uuid.UUID) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, getInventoryItemForUpdate, id))
}

const listInventoryItems = `-- name: ListInventoryItems :many
SELECT ` + inventoryColumns + ` FROM inventory_items
WHERE ($1::text = '' OR type = $1)
ORDER BY name
`

func (q *Queries) ListInventoryItems(ctx context.Context, itemType string) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx, listInventoryItems, itemType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InventoryItem{}
	for rows.Next() {
		i, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setInventoryQuantity = `-- name: SetInventoryQuantity :one
UPDATE inventory_items SET quantity = $2, updated_at = now()
WHERE id = $1
RETURNING ` + inventoryColumns

type SetInventoryQuantityParams struct {
	ID       uuid.UUID `json:"id"`
	Quantity float64   `json:"quantity"`
}

func (q *Queries) SetInventoryQuantity(ctx context.Context, arg SetInventoryQuantityParams) (InventoryItem, error) {
	return scanInventoryItem(q.db.QueryRow(ctx, setInventoryQuantity, arg.ID, arg.Quantity))
}

const deleteProductRecipe = `-- name: DeleteProductRecipe :exec
DELETE FROM product_recipes WHERE product_id = $1
`

func (q *Queries) DeleteProductRecipe(ctx context.Context, productID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteProductRecipe, productID)
	return err
}

const createRecipeItem = `-- name: CreateRecipeItem :one
INSERT INTO product_recipes (product_id, inventory_id, quantity, unit_of_measure)
VALUES ($1, $2, $3, $4)
RETURNING product_id, inventory_id, quantity, unit_of_measure
`

type CreateRecipeItemParams struct {
	ProductID     uuid.UUID `json:"product_id"`
	InventoryID   uuid.UUID `json:"inventory_id"`
	Quantity      float64   `json:"quantity"`
	UnitOfMeasure string    `json:"unit_of_measure"`
}

func (q *Queries) CreateRecipeItem(ctx context.Context, arg CreateRecipeItemParams) (ProductRecipe, error) {
	row := q.db.QueryRow(ctx, createRecipeItem,
		arg.ProductID,
		arg.InventoryID,
		arg.Quantity,
		arg.UnitOfMeasure,
	)
	var i ProductRecipe
	err := row.Scan(&i.ProductID, &i.InventoryID, &i.Quantity, &i.UnitOfMeasure)
	return i, err
}

const listProductRecipe = `-- name: ListProductRecipe :many
SELECT product_id, inventory_id, quantity, unit_of_measure
FROM product_recipes WHERE product_id = $1
ORDER BY inventory_id
`

func (q *Queries) ListProductRecipe(ctx context.Context, productID uuid.UUID) ([]ProductRecipe, error) {
	rows, err := q.db.Query(ctx, listProductRecipe, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ProductRecipe{}
	for rows.Next() {
		var i ProductRecipe
		if err := rows.Scan(&i.ProductID, &i.InventoryID, &i.Quantity, &i.UnitOfMeasure); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

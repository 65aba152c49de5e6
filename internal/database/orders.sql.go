package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, table_id, status, subtotal, tax_amount, total_amount, created_by, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableID,
		&i.Status,
		&i.Subtotal,
		&i.TaxAmount,
		&i.TotalAmount,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (table_id, status, subtotal, tax_amount, total_amount, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	TableID     uuid.UUID      `json:"table_id"`
	Status      string         `json:"status"`
	Subtotal    pgtype.Numeric `json:"subtotal"`
	TaxAmount   pgtype.Numeric `json:"tax_amount"`
	TotalAmount pgtype.Numeric `json:"total_amount"`
	CreatedBy   uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.TableID,
		arg.Status,
		arg.Subtotal,
		arg.TaxAmount,
		arg.TotalAmount,
		arg.CreatedBy,
	))
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOpenOrderByTable = `-- name: GetOpenOrderByTable :one
SELECT ` + orderColumns + ` FROM orders WHERE table_id = $1 AND status = 'OPEN'
`

func (q *Queries) GetOpenOrderByTable(ctx context.Context, tableID uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOpenOrderByTable, tableID))
}

const updateOrderTotals = `-- name: UpdateOrderTotals :one
UPDATE orders
SET subtotal = $2, tax_amount = $3, total_amount = $4, updated_at = now()
WHERE id = $1 AND status = 'OPEN'
RETURNING ` + orderColumns

type UpdateOrderTotalsParams struct {
	ID          uuid.UUID      `json:"id"`
	Subtotal    pgtype.Numeric `json:"subtotal"`
	TaxAmount   pgtype.Numeric `json:"tax_amount"`
	TotalAmount pgtype.Numeric `json:"total_amount"`
}

func (q *Queries) UpdateOrderTotals(ctx context.Context, arg UpdateOrderTotalsParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderTotals,
		arg.ID,
		arg.Subtotal,
		arg.TaxAmount,
		arg.TotalAmount,
	))
}

const orderItemColumns = `id, order_id, product_id, quantity, served_quantity, unit_price, subtotal`

func scanOrderItem(row interface{ Scan(...any) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.ServedQuantity,
		&i.UnitPrice,
		&i.Subtotal,
	)
	return i, err
}

const upsertOrderItem = `-- name: UpsertOrderItem :one
INSERT INTO order_items (order_id, product_id, quantity, served_quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (order_id, product_id) DO UPDATE
SET quantity = EXCLUDED.quantity,
    served_quantity = GREATEST(order_items.served_quantity, EXCLUDED.served_quantity),
    unit_price = EXCLUDED.unit_price,
    subtotal = EXCLUDED.subtotal
RETURNING ` + orderItemColumns

type UpsertOrderItemParams struct {
	OrderID        uuid.UUID      `json:"order_id"`
	ProductID      uuid.UUID      `json:"product_id"`
	Quantity       int32          `json:"quantity"`
	ServedQuantity int32          `json:"served_quantity"`
	UnitPrice      pgtype.Numeric `json:"unit_price"`
	Subtotal       pgtype.Numeric `json:"subtotal"`
}

func (q *Queries) UpsertOrderItem(ctx context.Context, arg UpsertOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, upsertOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.Quantity,
		arg.ServedQuantity,
		arg.UnitPrice,
		arg.Subtotal,
	))
}

const deleteUnservedOrderItemsExcept = `-- name: DeleteUnservedOrderItemsExcept :exec
DELETE FROM order_items
WHERE order_id = $1 AND served_quantity = 0 AND NOT (product_id = ANY($2::uuid[]))
`

type DeleteUnservedOrderItemsExceptParams struct {
	OrderID    uuid.UUID   `json:"order_id"`
	ProductIds []uuid.UUID `json:"product_ids"`
}

func (q *Queries) DeleteUnservedOrderItemsExcept(ctx context.Context, arg DeleteUnservedOrderItemsExceptParams) error {
	_, err := q.db.Exec(ctx, deleteUnservedOrderItemsExcept, arg.OrderID, arg.ProductIds)
	return err
}

const getOrderItem = `-- name: GetOrderItem :one
SELECT ` + orderItemColumns + ` FROM order_items WHERE order_id = $1 AND product_id = $2
`

type GetOrderItemParams struct {
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
}

func (q *Queries) GetOrderItem(ctx context.Context, arg GetOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, getOrderItem, arg.OrderID, arg.ProductID))
}

const updateOrderItemServed = `-- name: UpdateOrderItemServed :one
UPDATE order_items SET served_quantity = $3
WHERE order_id = $1 AND product_id = $2
RETURNING ` + orderItemColumns

type UpdateOrderItemServedParams struct {
	OrderID        uuid.UUID `json:"order_id"`
	ProductID      uuid.UUID `json:"product_id"`
	ServedQuantity int32     `json:"served_quantity"`
}

func (q *Queries) UpdateOrderItemServed(ctx context.Context, arg UpdateOrderItemServedParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, updateOrderItemServed, arg.OrderID, arg.ProductID, arg.ServedQuantity))
}

const listOrderItemsWithProduct = `-- name: ListOrderItemsWithProduct :many
SELECT oi.product_id, p.name, oi.unit_price, pt.name AS product_type_name,
       oi.quantity, oi.served_quantity
FROM order_items oi
JOIN products p ON p.id = oi.product_id
JOIN product_types pt ON pt.id = p.product_type_id
WHERE oi.order_id = $1
ORDER BY oi.created_at, oi.id
`

type ListOrderItemsWithProductRow struct {
	ProductID       uuid.UUID      `json:"product_id"`
	Name            string         `json:"name"`
	UnitPrice       pgtype.Numeric `json:"unit_price"`
	ProductTypeName string         `json:"product_type_name"`
	Quantity        int32          `json:"quantity"`
	ServedQuantity  int32          `json:"served_quantity"`
}

func (q *Queries) ListOrderItemsWithProduct(ctx context.Context, orderID uuid.UUID) ([]ListOrderItemsWithProductRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsWithProduct, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderItemsWithProductRow{}
	for rows.Next() {
		var i ListOrderItemsWithProductRow
		if err := rows.Scan(
			&i.ProductID,
			&i.Name,
			&i.UnitPrice,
			&i.ProductTypeName,
			&i.Quantity,
			&i.ServedQuantity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

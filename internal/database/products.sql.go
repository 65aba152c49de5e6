package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createProductType = `-- name: CreateProductType :one
INSERT INTO product_types (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name
`

func (q *Queries) CreateProductType(ctx context.Context, name string) (ProductType, error) {
	row := q.db.QueryRow(ctx, createProductType, name)
	var i ProductType
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (name, price, product_type_id)
VALUES ($1, $2, $3)
RETURNING id, name, price, product_type_id, is_active, created_at, updated_at
`

type CreateProductParams struct {
	Name          string         `json:"name"`
	Price         pgtype.Numeric `json:"price"`
	ProductTypeID uuid.UUID      `json:"product_type_id"`
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct, arg.Name, arg.Price, arg.ProductTypeID)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.ProductTypeID,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProductWithType = `-- name: GetProductWithType :one
SELECT p.id, p.name, p.price, pt.name AS product_type_name
FROM products p
JOIN product_types pt ON pt.id = p.product_type_id
WHERE p.id = $1 AND p.is_active = true
`

type ProductWithTypeRow struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Price           pgtype.Numeric `json:"price"`
	ProductTypeName string         `json:"product_type_name"`
}

func (q *Queries) GetProductWithType(ctx context.Context, id uuid.UUID) (ProductWithTypeRow, error) {
	row := q.db.QueryRow(ctx, getProductWithType, id)
	var i ProductWithTypeRow
	err := row.Scan(&i.ID, &i.Name, &i.Price, &i.ProductTypeName)
	return i, err
}

const listProductsWithType = `-- name: ListProductsWithType :many
SELECT p.id, p.name, p.price, pt.name AS product_type_name
FROM products p
JOIN product_types pt ON pt.id = p.product_type_id
WHERE p.is_active = true
ORDER BY pt.name, p.name
`

func (q *Queries) ListProductsWithType(ctx context.Context) ([]ProductWithTypeRow, error) {
	rows, err := q.db.Query(ctx, listProductsWithType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ProductWithTypeRow{}
	for rows.Next() {
		var i ProductWithTypeRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Price, &i.ProductTypeName); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

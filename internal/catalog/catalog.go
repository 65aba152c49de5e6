// Package catalog serves the sellable products the carts point to.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/upao-inso/restaurant-pos/internal/cart"
	"github.com/upao-inso/restaurant-pos/internal/database"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog looks products up by id and lists the active menu.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (cart.Product, error)
	ListProducts(ctx context.Context) ([]cart.Product, error)
}

// ProductQuerier is the subset of *database.Queries the Postgres source needs.
type ProductQuerier interface {
	GetProductWithType(ctx context.Context, id uuid.UUID) (database.ProductWithTypeRow, error)
	ListProductsWithType(ctx context.Context) ([]database.ProductWithTypeRow, error)
}

// PostgresSource reads the catalog straight from the database.
type PostgresSource struct {
	q ProductQuerier
}

func NewPostgresSource(q ProductQuerier) *PostgresSource {
	return &PostgresSource{q: q}
}

func (s *PostgresSource) GetProduct(ctx context.Context, id uuid.UUID) (cart.Product, error) {
	row, err := s.q.GetProductWithType(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart.Product{}, ErrProductNotFound
		}
		return cart.Product{}, fmt.Errorf("get product: %w", err)
	}
	return toProduct(row), nil
}

func (s *PostgresSource) ListProducts(ctx context.Context) ([]cart.Product, error) {
	rows, err := s.q.ListProductsWithType(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]cart.Product, len(rows))
	for i, r := range rows {
		out[i] = toProduct(r)
	}
	return out, nil
}

func toProduct(r database.ProductWithTypeRow) cart.Product {
	return cart.Product{
		ID:              r.ID,
		Name:            r.Name,
		Price:           database.NumericToDecimal(r.Price),
		ProductTypeName: r.ProductTypeName,
	}
}

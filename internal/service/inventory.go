package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/upao-inso/restaurant-pos/internal/database"
	"github.com/upao-inso/restaurant-pos/internal/inventory"
)

// Errors returned by the inventory service.
var (
	ErrInventoryNotFound = errors.New("inventory item not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("adjustment would leave negative stock")
	ErrInvalidPortions   = errors.New("portions must be > 0")
	ErrInvalidItemType   = errors.New("invalid item type")
)

// ValidationError carries every rule an input broke.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// InventoryStore defines the DB methods needed by the inventory service.
// Satisfied by *database.Queries.
type InventoryStore interface {
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, arg database.UpdateInventoryItemParams) (database.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id uuid.UUID) (database.InventoryItem, error)
	GetInventoryItemForUpdate(ctx context.Context, id uuid.UUID) (database.InventoryItem, error)
	ListInventoryItems(ctx context.Context, itemType string) ([]database.InventoryItem, error)
	SetInventoryQuantity(ctx context.Context, arg database.SetInventoryQuantityParams) (database.InventoryItem, error)
	GetProductWithType(ctx context.Context, id uuid.UUID) (database.ProductWithTypeRow, error)
	DeleteProductRecipe(ctx context.Context, productID uuid.UUID) error
	CreateRecipeItem(ctx context.Context, arg database.CreateRecipeItemParams) (database.ProductRecipe, error)
	ListProductRecipe(ctx context.Context, productID uuid.UUID) ([]database.ProductRecipe, error)
}

// NewInventoryStore creates an InventoryStore from a DBTX (pool or tx).
type NewInventoryStore func(db database.DBTX) InventoryStore

// ItemView is an inventory item with its derived stock status.
type ItemView struct {
	inventory.Item
	Status inventory.StockStatus `json:"status"`
}

func newItemView(it inventory.Item) ItemView {
	return ItemView{Item: it, Status: it.StockStatus()}
}

// Requirement is the stock one recipe line needs for a number of portions.
type Requirement struct {
	InventoryID   uuid.UUID      `json:"inventory_id"`
	Name          string         `json:"name"`
	Required      float64        `json:"required"`
	Available     float64        `json:"available"`
	UnitOfMeasure inventory.Unit `json:"unit_of_measure"`
	Sufficient    bool           `json:"sufficient"`
}

// InventoryService handles stock items and product recipes.
type InventoryService struct {
	db       DB
	newStore NewInventoryStore
	log      *zap.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(db DB, newStore NewInventoryStore, log *zap.Logger) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryService{db: db, newStore: newStore, log: log.Named("inventory")}
}

func prepareInput(in inventory.ItemInput) (inventory.ItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Quantity = inventory.NormalizeQuantity(in.Quantity, in.UnitOfMeasure)
	if res := inventory.ValidateInventoryItem(in); !res.Valid {
		return in, &ValidationError{Errors: res.Errors}
	}
	return in, nil
}

func (s *InventoryService) Create(ctx context.Context, in inventory.ItemInput) (ItemView, error) {
	in, err := prepareInput(in)
	if err != nil {
		return ItemView{}, err
	}
	row, err := s.newStore(s.db).CreateInventoryItem(ctx, database.CreateInventoryItemParams{
		Name:          in.Name,
		Quantity:      in.Quantity,
		Type:          string(in.Type),
		UnitOfMeasure: string(in.UnitOfMeasure),
	})
	if err != nil {
		return ItemView{}, fmt.Errorf("create inventory item: %w", err)
	}
	return newItemView(toInventoryItem(row)), nil
}

func (s *InventoryService) Update(ctx context.Context, id uuid.UUID, in inventory.ItemInput) (ItemView, error) {
	in, err := prepareInput(in)
	if err != nil {
		return ItemView{}, err
	}
	row, err := s.newStore(s.db).UpdateInventoryItem(ctx, database.UpdateInventoryItemParams{
		ID:            id,
		Name:          in.Name,
		Quantity:      in.Quantity,
		Type:          string(in.Type),
		UnitOfMeasure: string(in.UnitOfMeasure),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemView{}, ErrInventoryNotFound
		}
		return ItemView{}, fmt.Errorf("update inventory item: %w", err)
	}
	return newItemView(toInventoryItem(row)), nil
}

func (s *InventoryService) Get(ctx context.Context, id uuid.UUID) (ItemView, error) {
	row, err := s.newStore(s.db).GetInventoryItem(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemView{}, ErrInventoryNotFound
		}
		return ItemView{}, fmt.Errorf("get inventory item: %w", err)
	}
	return newItemView(toInventoryItem(row)), nil
}

// List returns every item, or only those of itemType when it is not empty.
func (s *InventoryService) List(ctx context.Context, itemType inventory.ItemType) ([]ItemView, error) {
	if itemType != "" && !itemType.Valid() {
		return nil, ErrInvalidItemType
	}
	rows, err := s.newStore(s.db).ListInventoryItems(ctx, string(itemType))
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	out := make([]ItemView, len(rows))
	for i, r := range rows {
		out[i] = newItemView(toInventoryItem(r))
	}
	return out, nil
}

// Adjust adds delta, expressed in unit, to the item's stock. Negative deltas
// consume stock.
func (s *InventoryService) Adjust(ctx context.Context, id uuid.UUID, delta float64, unit inventory.Unit) (ItemView, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return ItemView{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	row, err := store.GetInventoryItemForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemView{}, ErrInventoryNotFound
		}
		return ItemView{}, fmt.Errorf("get inventory item: %w", err)
	}
	item := toInventoryItem(row)

	converted, err := inventory.ConvertQuantity(delta, unit, item.UnitOfMeasure)
	if err != nil {
		return ItemView{}, err
	}
	next := inventory.NormalizeQuantity(item.Quantity+converted, item.UnitOfMeasure)
	if next < 0 {
		return ItemView{}, ErrInsufficientStock
	}

	row, err = store.SetInventoryQuantity(ctx, database.SetInventoryQuantityParams{ID: id, Quantity: next})
	if err != nil {
		return ItemView{}, fmt.Errorf("set inventory quantity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ItemView{}, fmt.Errorf("commit tx: %w", err)
	}

	updated := newItemView(toInventoryItem(row))
	if updated.Status != inventory.StatusInStock {
		s.log.Warn("stock running low",
			zap.Stringer("inventory_id", id),
			zap.String("name", updated.Name),
			zap.Float64("quantity", updated.Quantity),
			zap.String("status", string(updated.Status)),
		)
	}
	return updated, nil
}

// SetRecipe replaces the product's bill of materials. Every line is checked
// against its inventory item before anything is written.
func (s *InventoryService) SetRecipe(ctx context.Context, productID uuid.UUID, lines []inventory.RecipeItem) ([]inventory.RecipeItem, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetProductWithType(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	var problems []string
	seen := make(map[uuid.UUID]bool, len(lines))
	for i, line := range lines {
		if seen[line.InventoryID] {
			problems = append(problems, fmt.Sprintf("line[%d]: inventory item %s listed twice", i, line.InventoryID))
			continue
		}
		seen[line.InventoryID] = true

		row, err := store.GetInventoryItem(ctx, line.InventoryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				problems = append(problems, fmt.Sprintf("line[%d]: inventory item %s not found", i, line.InventoryID))
				continue
			}
			return nil, fmt.Errorf("line[%d]: get inventory item: %w", i, err)
		}
		if res := inventory.ValidateRecipeItem(line, toInventoryItem(row)); !res.Valid {
			for _, msg := range res.Errors {
				problems = append(problems, fmt.Sprintf("line[%d]: %s", i, msg))
			}
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}

	if err := store.DeleteProductRecipe(ctx, productID); err != nil {
		return nil, fmt.Errorf("delete recipe: %w", err)
	}
	saved := make([]inventory.RecipeItem, 0, len(lines))
	for _, line := range lines {
		r, err := store.CreateRecipeItem(ctx, database.CreateRecipeItemParams{
			ProductID:     productID,
			InventoryID:   line.InventoryID,
			Quantity:      line.Quantity,
			UnitOfMeasure: string(line.UnitOfMeasure),
		})
		if err != nil {
			return nil, fmt.Errorf("create recipe item: %w", err)
		}
		saved = append(saved, toRecipeItem(r))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return saved, nil
}

// RecipeRequirements reports, per recipe line, the stock needed to prepare
// portions of the product and whether it is on hand.
func (s *InventoryService) RecipeRequirements(ctx context.Context, productID uuid.UUID, portions int) ([]Requirement, error) {
	if portions <= 0 {
		return nil, ErrInvalidPortions
	}
	store := s.newStore(s.db)

	if _, err := store.GetProductWithType(ctx, productID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	recipe, err := store.ListProductRecipe(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list recipe: %w", err)
	}

	out := make([]Requirement, 0, len(recipe))
	for _, r := range recipe {
		row, err := store.GetInventoryItem(ctx, r.InventoryID)
		if err != nil {
			return nil, fmt.Errorf("get inventory item %s: %w", r.InventoryID, err)
		}
		inv := toInventoryItem(row)
		need, err := inventory.RequiredQuantity(toRecipeItem(r), inv, portions)
		if err != nil {
			return nil, fmt.Errorf("recipe line %s: %w", inv.Name, err)
		}
		out = append(out, Requirement{
			InventoryID:   inv.ID,
			Name:          inv.Name,
			Required:      need,
			Available:     inv.Quantity,
			UnitOfMeasure: inv.UnitOfMeasure,
			Sufficient:    inv.Quantity >= need,
		})
	}
	return out, nil
}

func toInventoryItem(r database.InventoryItem) inventory.Item {
	return inventory.Item{
		ID:            r.ID,
		Name:          r.Name,
		Quantity:      r.Quantity,
		Type:          inventory.ItemType(r.Type),
		UnitOfMeasure: inventory.Unit(r.UnitOfMeasure),
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

func toRecipeItem(r database.ProductRecipe) inventory.RecipeItem {
	return inventory.RecipeItem{
		InventoryID:   r.InventoryID,
		Quantity:      r.Quantity,
		UnitOfMeasure: inventory.Unit(r.UnitOfMeasure),
	}
}

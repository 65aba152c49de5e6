package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/upao-inso/restaurant-pos/internal/auth"
	"github.com/upao-inso/restaurant-pos/internal/catalog"
	"github.com/upao-inso/restaurant-pos/internal/config"
	"github.com/upao-inso/restaurant-pos/internal/database"
	"github.com/upao-inso/restaurant-pos/internal/enum"
	"github.com/upao-inso/restaurant-pos/internal/inventory"
	"github.com/upao-inso/restaurant-pos/internal/logger"
)

type seedProduct struct {
	name, productType, price string
	recipe                   []seedRecipeLine
}

type seedRecipeLine struct {
	inventory string
	quantity  float64
	unit      inventory.Unit
}

type seedItem struct {
	name     string
	quantity float64
	itemType inventory.ItemType
	unit     inventory.Unit
}

var inventoryItems = []seedItem{
	{"Pescado", 8, inventory.TypeIngredient, inventory.Kilogram},
	{"Limón", 5, inventory.TypeIngredient, inventory.Kilogram},
	{"Papa amarilla", 20, inventory.TypeIngredient, inventory.Kilogram},
	{"Lomo de res", 6, inventory.TypeIngredient, inventory.Kilogram},
	{"Arroz", 25, inventory.TypeIngredient, inventory.Kilogram},
	{"Aceite vegetal", 4, inventory.TypeIngredient, inventory.Liter},
	{"Huevos", 60, inventory.TypeIngredient, inventory.UnitCount},
	{"Inca Kola 500ml", 48, inventory.TypeBeverage, inventory.UnitCount},
	{"Táper descartable", 150, inventory.TypeDisposable, inventory.UnitCount},
}

var products = []seedProduct{
	{"Ceviche clásico", "Entrada", "12.50", []seedRecipeLine{
		{"Pescado", 200, inventory.Gram},
		{"Limón", 80, inventory.Gram},
	}},
	{"Papa a la huancaína", "Entrada", "8.00", []seedRecipeLine{
		{"Papa amarilla", 250, inventory.Gram},
		{"Huevos", 1, inventory.UnitCount},
	}},
	{"Sopa de casa", "Entrada", "6.00", nil},
	{"Lomo saltado", "Segundo", "25.00", []seedRecipeLine{
		{"Lomo de res", 180, inventory.Gram},
		{"Arroz", 150, inventory.Gram},
		{"Aceite vegetal", 30, inventory.Milliliter},
	}},
	{"Arroz con pollo", "Segundo", "18.00", []seedRecipeLine{
		{"Arroz", 200, inventory.Gram},
	}},
	{"Inca Kola 500ml", "Bebida", "4.50", []seedRecipeLine{
		{"Inca Kola 500ml", 1, inventory.UnitCount},
	}},
	{"Chicha morada", "Bebida", "6.75", nil},
}

func main() {
	printTokens := flag.Bool("tokens", false, "print development JWTs for every role")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "console", DisableStacktrace: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	if err := seed(ctx, cfg, log); err != nil {
		fatal(log, "seed failed", err)
	}
	log.Info("seed completed successfully")

	if *printTokens {
		for _, role := range []string{enum.UserRoleAdmin, enum.UserRoleWaiter, enum.UserRoleCashier, enum.UserRoleKitchen} {
			token, err := auth.GenerateToken(cfg.JWTSecret, uuid.New(), role, 0)
			if err != nil {
				fatal(log, "generate token", err)
			}
			fmt.Printf("%s\t%s\n", role, token)
		}
	}
}

// fatal logs err, flushes the logger and exits with status 1.
func fatal(log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	_ = log.Sync()
	os.Exit(1)
}

func seed(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Info("connected to database")

	// Menu and stock are seeded in one transaction.
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := database.New(tx)

	stock := make(map[string]uuid.UUID, len(inventoryItems))
	for _, it := range inventoryItems {
		id, err := seedInventoryItem(ctx, tx, q, it, log)
		if err != nil {
			return err
		}
		stock[it.name] = id
	}

	for _, p := range products {
		if err := seedMenuProduct(ctx, tx, q, p, stock, log); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	invalidateCatalog(ctx, cfg, pool, log)
	return nil
}

// seedInventoryItem creates the item unless one with the same name exists.
func seedInventoryItem(ctx context.Context, tx pgx.Tx, q *database.Queries, it seedItem, log *zap.Logger) (uuid.UUID, error) {
	var existingID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM inventory_items WHERE name = $1 LIMIT 1`, it.name).Scan(&existingID)
	if err == nil {
		log.Debug("inventory item exists, skipping", zap.String("name", it.name))
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check inventory item %q: %w", it.name, err)
	}

	in := inventory.ItemInput{Name: it.name, Quantity: it.quantity, Type: it.itemType, UnitOfMeasure: it.unit}
	if res := inventory.ValidateInventoryItem(in); !res.Valid {
		return uuid.Nil, fmt.Errorf("inventory item %q: %v", it.name, res.Errors)
	}

	row, err := q.CreateInventoryItem(ctx, database.CreateInventoryItemParams{
		Name:          it.name,
		Quantity:      it.quantity,
		Type:          string(it.itemType),
		UnitOfMeasure: string(it.unit),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert inventory item %q: %w", it.name, err)
	}
	log.Info("created inventory item", zap.String("name", it.name), zap.Stringer("id", row.ID))
	return row.ID, nil
}

// seedMenuProduct creates the product and its recipe unless the product exists.
func seedMenuProduct(ctx context.Context, tx pgx.Tx, q *database.Queries, p seedProduct, stock map[string]uuid.UUID, log *zap.Logger) error {
	var existingID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM products WHERE name = $1 AND is_active = true LIMIT 1`, p.name).Scan(&existingID)
	if err == nil {
		log.Debug("product exists, skipping", zap.String("name", p.name))
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check product %q: %w", p.name, err)
	}

	pt, err := q.CreateProductType(ctx, p.productType)
	if err != nil {
		return fmt.Errorf("upsert product type %q: %w", p.productType, err)
	}

	created, err := q.CreateProduct(ctx, database.CreateProductParams{
		Name:          p.name,
		Price:         database.DecimalToNumeric(decimal.RequireFromString(p.price)),
		ProductTypeID: pt.ID,
	})
	if err != nil {
		return fmt.Errorf("insert product %q: %w", p.name, err)
	}

	for _, line := range p.recipe {
		invID, ok := stock[line.inventory]
		if !ok {
			return fmt.Errorf("recipe of %q: unknown inventory item %q", p.name, line.inventory)
		}
		if _, err := q.CreateRecipeItem(ctx, database.CreateRecipeItemParams{
			ProductID:     created.ID,
			InventoryID:   invID,
			Quantity:      line.quantity,
			UnitOfMeasure: string(line.unit),
		}); err != nil {
			return fmt.Errorf("insert recipe line %q/%q: %w", p.name, line.inventory, err)
		}
	}

	log.Info("created product",
		zap.String("name", p.name),
		zap.String("type", p.productType),
		zap.Stringer("id", created.ID),
		zap.Int("recipe_lines", len(p.recipe)))
	return nil
}

// invalidateCatalog drops cached menu entries so running servers see the seed.
func invalidateCatalog(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn("invalid redis url, catalog cache not invalidated", zap.Error(err))
		return
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	c := catalog.NewCached(catalog.NewPostgresSource(database.New(pool)), rdb, cfg.CatalogCacheTTL, log)
	if err := c.Invalidate(ctx); err != nil {
		log.Warn("catalog cache not invalidated", zap.Error(err))
	}
}

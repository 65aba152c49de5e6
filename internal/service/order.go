package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/upao-inso/restaurant-pos/internal/cart"
	"github.com/upao-inso/restaurant-pos/internal/database"
	"github.com/upao-inso/restaurant-pos/internal/enum"
)

// Errors returned by the order service.
var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderClosed           = errors.New("order is no longer open")
	ErrTableHasOpenOrder     = errors.New("table already has an open order")
	ErrOrderItemNotFound     = errors.New("order item not found")
	ErrInvalidServedQuantity = errors.New("served_quantity must be between 0 and the ordered quantity")
)

// DB is a connection pool that can also start transactions. *pgxpool.Pool
// satisfies it.
type DB interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to persist table orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOpenOrderByTable(ctx context.Context, tableID uuid.UUID) (database.Order, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	UpdateOrderTotals(ctx context.Context, arg database.UpdateOrderTotalsParams) (database.Order, error)
	UpsertOrderItem(ctx context.Context, arg database.UpsertOrderItemParams) (database.OrderItem, error)
	DeleteUnservedOrderItemsExcept(ctx context.Context, arg database.DeleteUnservedOrderItemsExceptParams) error
	GetOrderItem(ctx context.Context, arg database.GetOrderItemParams) (database.OrderItem, error)
	UpdateOrderItemServed(ctx context.Context, arg database.UpdateOrderItemServedParams) (database.OrderItem, error)
	ListOrderItemsWithProduct(ctx context.Context, orderID uuid.UUID) ([]database.ListOrderItemsWithProductRow, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Broadcaster pushes realtime events to the kitchen and floor screens.
type Broadcaster interface {
	Broadcast(room, eventType string, payload any) error
}

// ConfirmResult is the persisted order with the pricing it was confirmed at.
type ConfirmResult struct {
	Order   database.Order       `json:"order"`
	Items   []database.OrderItem `json:"items"`
	Summary cart.Summary         `json:"summary"`
}

// OrderService moves table carts into persisted orders and back.
type OrderService struct {
	db         DB
	newStore   NewOrderStore
	carts      *cart.Store
	classifier *cart.Classifier
	taxRate    decimal.Decimal
	hub        Broadcaster
	log        *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(db DB, newStore NewOrderStore, carts *cart.Store, classifier *cart.Classifier, taxRate decimal.Decimal, hub Broadcaster, log *zap.Logger) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		db:         db,
		newStore:   newStore,
		carts:      carts,
		classifier: classifier,
		taxRate:    taxRate,
		hub:        hub,
		log:        log.Named("orders"),
	}
}

// ConfirmTable persists the table's cart as an order. When the cart lines
// already reference an order (the cart was opened from one) that order is
// updated in place. The cart is cleared after commit unless it changed while
// the order was being written, in which case it stays bound to the order.
func (s *OrderService) ConfirmTable(ctx context.Context, tableID, createdBy uuid.UUID) (*ConfirmResult, error) {
	items, version := s.carts.Snapshot(tableID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	summary := cart.Summarize(items, s.classifier, s.taxRate)

	var existing uuid.NullUUID
	for _, it := range items {
		if it.OrderID.Valid {
			existing = it.OrderID
			break
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	var order database.Order
	if existing.Valid {
		order, err = s.updateOrder(ctx, store, existing.UUID, summary)
	} else {
		order, err = store.CreateOrder(ctx, database.CreateOrderParams{
			TableID:     tableID,
			Status:      enum.OrderStatusOpen,
			Subtotal:    database.DecimalToNumeric(summary.Subtotal),
			TaxAmount:   database.DecimalToNumeric(summary.Tax),
			TotalAmount: database.DecimalToNumeric(summary.Total),
			CreatedBy:   createdBy,
		})
		if err != nil {
			if isOpenOrderConflict(err) {
				return nil, ErrTableHasOpenOrder
			}
			err = fmt.Errorf("create order: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	persisted := make([]database.OrderItem, 0, len(items))
	productIDs := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		oi, err := store.UpsertOrderItem(ctx, database.UpsertOrderItemParams{
			OrderID:        order.ID,
			ProductID:      it.Product.ID,
			Quantity:       int32(it.Quantity),
			ServedQuantity: int32(it.ServedQuantity),
			UnitPrice:      database.DecimalToNumeric(it.Product.Price),
			Subtotal:       database.DecimalToNumeric(it.Subtotal),
		})
		if err != nil {
			return nil, fmt.Errorf("upsert order item %s: %w", it.Product.ID, err)
		}
		persisted = append(persisted, oi)
		productIDs = append(productIDs, it.Product.ID)
	}

	if err := store.DeleteUnservedOrderItemsExcept(ctx, database.DeleteUnservedOrderItemsExceptParams{
		OrderID:    order.ID,
		ProductIds: productIDs,
	}); err != nil {
		return nil, fmt.Errorf("prune order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.carts.ClearConfirmed(tableID, version, order.ID)

	result := &ConfirmResult{Order: order, Items: persisted, Summary: summary}
	s.log.Info("order confirmed",
		zap.Stringer("order_id", order.ID),
		zap.Stringer("table_id", tableID),
		zap.Int("lines", len(persisted)),
		zap.String("total", summary.Total.StringFixed(2)),
	)
	s.broadcast(enum.RoomKitchen, enum.EventOrderConfirmed, result)
	return result, nil
}

func (s *OrderService) updateOrder(ctx context.Context, store OrderStore, orderID uuid.UUID, summary cart.Summary) (database.Order, error) {
	current, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if current.Status != enum.OrderStatusOpen {
		return database.Order{}, ErrOrderClosed
	}
	order, err := store.UpdateOrderTotals(ctx, database.UpdateOrderTotalsParams{
		ID:          orderID,
		Subtotal:    database.DecimalToNumeric(summary.Subtotal),
		TaxAmount:   database.DecimalToNumeric(summary.Tax),
		TotalAmount: database.DecimalToNumeric(summary.Total),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderClosed
		}
		return database.Order{}, fmt.Errorf("update order totals: %w", err)
	}
	return order, nil
}

// OpenTableOrder loads the table's open order into its cart, keeping each
// line's served quantity so served units stay locked.
func (s *OrderService) OpenTableOrder(ctx context.Context, tableID uuid.UUID) (database.Order, []cart.Item, error) {
	store := s.newStore(s.db)

	order, err := store.GetOpenOrderByTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, nil, ErrOrderNotFound
		}
		return database.Order{}, nil, fmt.Errorf("get open order: %w", err)
	}

	rows, err := store.ListOrderItemsWithProduct(ctx, order.ID)
	if err != nil {
		return database.Order{}, nil, fmt.Errorf("list order items: %w", err)
	}

	ref := uuid.NullUUID{UUID: order.ID, Valid: true}
	for _, r := range rows {
		p := cart.Product{
			ID:              r.ProductID,
			Name:            r.Name,
			Price:           database.NumericToDecimal(r.UnitPrice),
			ProductTypeName: r.ProductTypeName,
		}
		s.carts.AddWithQuantityAndServed(tableID, p, int(r.Quantity), int(r.ServedQuantity), ref)
	}

	return order, s.carts.Items(tableID), nil
}

// MarkServed records how many units of a line the kitchen has delivered.
func (s *OrderService) MarkServed(ctx context.Context, orderID, productID uuid.UUID, served int) (database.OrderItem, error) {
	if served < 0 {
		return database.OrderItem{}, ErrInvalidServedQuantity
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.OrderItem{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderItem{}, ErrOrderNotFound
		}
		return database.OrderItem{}, fmt.Errorf("get order: %w", err)
	}

	line, err := store.GetOrderItem(ctx, database.GetOrderItemParams{OrderID: orderID, ProductID: productID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.OrderItem{}, ErrOrderItemNotFound
		}
		return database.OrderItem{}, fmt.Errorf("get order item: %w", err)
	}
	if served > int(line.Quantity) {
		return database.OrderItem{}, ErrInvalidServedQuantity
	}

	updated, err := store.UpdateOrderItemServed(ctx, database.UpdateOrderItemServedParams{
		OrderID:        orderID,
		ProductID:      productID,
		ServedQuantity: int32(served),
	})
	if err != nil {
		return database.OrderItem{}, fmt.Errorf("update served quantity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.OrderItem{}, fmt.Errorf("commit tx: %w", err)
	}

	// only has an effect when a waiter has the table open
	s.carts.SetServed(order.TableID, productID, served)

	s.broadcast(enum.RoomFloor, enum.EventOrderItemServed, map[string]any{
		"order_id":        orderID,
		"table_id":        order.TableID,
		"product_id":      productID,
		"quantity":        updated.Quantity,
		"served_quantity": updated.ServedQuantity,
	})
	return updated, nil
}

func (s *OrderService) broadcast(room, eventType string, payload any) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Broadcast(room, eventType, payload); err != nil {
		s.log.Error("broadcast failed", zap.String("event", eventType), zap.Error(err))
	}
}

// isOpenOrderConflict reports a unique violation on the one-open-order-per-table index.
func isOpenOrderConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_one_open_per_table"
	}
	return false
}

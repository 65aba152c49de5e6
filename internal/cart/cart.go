// Package cart holds the per-table order carts of the dining room and the
// menu-of-the-day pricing rules applied to them.
package cart

import (
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product is the catalog reference a cart line points to.
type Product struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	ProductTypeName string          `json:"product_type_name"`
}

// Item is a single cart line. Quantity never drops below ServedQuantity.
type Item struct {
	Product        Product         `json:"product"`
	Quantity       int             `json:"quantity"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ServedQuantity int             `json:"served_quantity"`
	OrderID        uuid.NullUUID   `json:"order_id"`
}

// Modifiable reports how much of a cart line can still be changed.
type Modifiable struct {
	CanModify bool `json:"can_modify"`
	CanRemove bool `json:"can_remove"`
	Available int  `json:"available"`
}

// MaxQuantity caps the units of a single line. Order lines are stored as int4.
const MaxQuantity = 9999

func lineSubtotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Store owns the table -> cart mapping. Every method is atomic; callers never
// touch the underlying slices. Guard violations are logged and ignored, the
// returned bool tells whether the mutation was applied.
type Store struct {
	mu       sync.RWMutex
	tables   map[uuid.UUID][]Item
	versions map[uuid.UUID]uint64
	log      *zap.Logger
}

// NewStore creates an empty Store.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		tables:   make(map[uuid.UUID][]Item),
		versions: make(map[uuid.UUID]uint64),
		log:      log.Named("cart"),
	}
}

// touch records a mutation of the table's cart. Callers hold the write lock.
func (s *Store) touch(tableID uuid.UUID) {
	s.versions[tableID]++
}

func indexOf(items []Item, productID uuid.UUID) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.Product.ID == productID })
}

// Add puts one unit of the product in the table's cart.
func (s *Store) Add(tableID uuid.UUID, p Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.tables[tableID]
	if i := indexOf(items, p.ID); i >= 0 {
		if items[i].Quantity >= MaxQuantity {
			s.log.Warn("cart line is at its maximum quantity",
				zap.Stringer("table_id", tableID), zap.Stringer("product_id", p.ID), zap.Int("quantity", items[i].Quantity))
			return false
		}
		items[i].Quantity++
		items[i].Subtotal = lineSubtotal(items[i].Product.Price, items[i].Quantity)
		s.touch(tableID)
		return true
	}
	s.tables[tableID] = append(items, Item{
		Product:  p,
		Quantity: 1,
		Subtotal: p.Price,
	})
	s.touch(tableID)
	return true
}

// AddWithQuantityAndServed upserts a line with explicit quantities. Used to
// rebuild a cart from an order already registered on the server.
func (s *Store) AddWithQuantityAndServed(tableID uuid.UUID, p Product, quantity, served int, orderID uuid.NullUUID) bool {
	if quantity <= 0 || quantity > MaxQuantity {
		s.log.Warn("ignoring cart line with quantity out of range",
			zap.Stringer("table_id", tableID), zap.Stringer("product_id", p.ID), zap.Int("quantity", quantity))
		return false
	}
	if served < 0 || served > quantity {
		s.log.Warn("ignoring cart line with served quantity out of range",
			zap.Stringer("table_id", tableID), zap.Stringer("product_id", p.ID),
			zap.Int("quantity", quantity), zap.Int("served_quantity", served))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{
		Product:        p,
		Quantity:       quantity,
		Subtotal:       lineSubtotal(p.Price, quantity),
		ServedQuantity: served,
		OrderID:        orderID,
	}
	items := s.tables[tableID]
	if i := indexOf(items, p.ID); i >= 0 {
		items[i] = item
	} else {
		s.tables[tableID] = append(items, item)
	}
	s.touch(tableID)
	return true
}

// UpdateQuantity sets the quantity of a line. A quantity <= 0 removes a line
// that has nothing served yet.
func (s *Store) UpdateQuantity(tableID, productID uuid.UUID, quantity int) bool {
	if quantity > MaxQuantity {
		s.log.Warn("quantity above the line maximum",
			zap.Stringer("table_id", tableID), zap.Stringer("product_id", productID), zap.Int("quantity", quantity))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.tables[tableID]
	i := indexOf(items, productID)
	if i < 0 {
		s.log.Warn("product not in cart",
			zap.Stringer("table_id", tableID), zap.Stringer("product_id", productID))
		return false
	}
	if quantity < items[i].ServedQuantity {
		s.log.Warn("cannot reduce quantity below served quantity",
			zap.Stringer("table_id", tableID), zap.Stringer("product_id", productID),
			zap.Int("quantity", quantity), zap.Int("served_quantity", items[i].ServedQuantity))
		return false
	}
	if quantity <= 0 {
		s.tables[tableID] = slices.Delete(items, i, i+1)
	} else {
		items[i].Quantity = quantity
		items[i].Subtotal = lineSubtotal(items[i].Product.Price, quantity)
	}
	s.touch(tableID)
	return true
}

// Remove deletes a line that has nothing served.
func (s *Store) Remove(tableID, productID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.tables[tableID]
	i := indexOf(items, productID)
	if i < 0 {
		s.log.Warn("product not in cart",
			zap.Stringer("table_id", tableID), zap.Stringer("product_id", productID))
		return false
	}
	if items[i].ServedQuantity > 0 {
		s.log.Warn("cannot remove a product with served units",
			zap.Stringer("table_id", tableID), zap.Stringer("product_id", productID),
			zap.Int("served_quantity", items[i].ServedQuantity))
		return false
	}
	s.tables[tableID] = slices.Delete(items, i, i+1)
	s.touch(tableID)
	return true
}

// SetServed mirrors the kitchen's served count onto a line. The count may go
// down when the kitchen corrects itself; the line quantity grows with it if
// needed so the served floor holds.
func (s *Store) SetServed(tableID, productID uuid.UUID, served int) bool {
	if served < 0 || served > MaxQuantity {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.tables[tableID]
	i := indexOf(items, productID)
	if i < 0 {
		return false
	}
	items[i].ServedQuantity = served
	if items[i].Quantity < served {
		items[i].Quantity = served
		items[i].Subtotal = lineSubtotal(items[i].Product.Price, served)
	}
	s.touch(tableID)
	return true
}

// CanModify reports whether a line can be decreased or removed.
func (s *Store) CanModify(tableID, productID uuid.UUID) Modifiable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.tables[tableID]
	i := indexOf(items, productID)
	if i < 0 {
		return Modifiable{}
	}
	available := items[i].Quantity - items[i].ServedQuantity
	return Modifiable{
		CanModify: available > 0,
		CanRemove: items[i].ServedQuantity == 0,
		Available: available,
	}
}

// Items returns a copy of the table's cart in insertion order.
func (s *Store) Items(tableID uuid.UUID) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tables[tableID])
}

// Snapshot returns a copy of the table's cart together with its version.
// The version changes on every applied mutation.
func (s *Store) Snapshot(tableID uuid.UUID) ([]Item, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tables[tableID]), s.versions[tableID]
}

// ClearConfirmed empties the table's cart once its lines were persisted as
// orderID, provided the cart is still at version. A cart that changed in the
// meantime is kept and every line is bound to orderID, so the next confirm
// updates that order with the newer lines. It reports whether the cart was
// cleared.
func (s *Store) ClearConfirmed(tableID uuid.UUID, version uint64, orderID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.versions[tableID] == version {
		delete(s.tables, tableID)
		s.touch(tableID)
		return true
	}

	items := s.tables[tableID]
	ref := uuid.NullUUID{UUID: orderID, Valid: true}
	for i := range items {
		items[i].OrderID = ref
	}
	s.touch(tableID)
	s.log.Info("cart changed while its order was confirmed, keeping newer lines",
		zap.Stringer("table_id", tableID), zap.Stringer("order_id", orderID), zap.Int("lines", len(items)))
	return false
}

// Clear empties one table's cart.
func (s *Store) Clear(tableID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, tableID)
	s.touch(tableID)
}

// ClearAll empties every cart.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.tables {
		s.touch(id)
	}
	s.tables = make(map[uuid.UUID][]Item)
}

// TablesWithOrders lists the tables whose cart is not empty, sorted for stable output.
func (s *Store) TablesWithOrders() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.tables))
	for id, items := range s.tables {
		if len(items) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

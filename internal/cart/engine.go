package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is a waiter's session over the shared Store: it remembers the table
// being served and routes every operation to that table's cart. Operations
// without a selected table do nothing.
type Engine struct {
	store      *Store
	classifier *Classifier
	taxRate    decimal.Decimal
	log        *zap.Logger

	current    uuid.UUID
	hasCurrent bool
}

// NewEngine creates a session over store.
func NewEngine(store *Store, classifier *Classifier, taxRate decimal.Decimal) *Engine {
	if classifier == nil {
		classifier = NewClassifier(nil, nil)
	}
	return &Engine{
		store:      store,
		classifier: classifier,
		taxRate:    taxRate,
		log:        store.log,
	}
}

// SetCurrentTable switches the active table. Other tables keep their carts.
func (e *Engine) SetCurrentTable(tableID uuid.UUID) {
	e.current = tableID
	e.hasCurrent = true
}

// CurrentTable returns the active table, if any.
func (e *Engine) CurrentTable() (uuid.UUID, bool) {
	return e.current, e.hasCurrent
}

func (e *Engine) table(op string) (uuid.UUID, bool) {
	if !e.hasCurrent {
		e.log.Warn("no table selected", zap.String("op", op))
		return uuid.Nil, false
	}
	return e.current, true
}

// AddProduct adds one unit of p to the current table.
func (e *Engine) AddProduct(p Product) bool {
	t, ok := e.table("add_product")
	if !ok {
		return false
	}
	return e.store.Add(t, p)
}

// AddProductWithQuantityAndServed upserts a line with explicit quantities on the current table.
func (e *Engine) AddProductWithQuantityAndServed(p Product, quantity, served int, orderID uuid.NullUUID) bool {
	t, ok := e.table("add_product_with_quantity")
	if !ok {
		return false
	}
	return e.store.AddWithQuantityAndServed(t, p, quantity, served, orderID)
}

// UpdateQuantity sets a line quantity on the current table; <= 0 removes it.
func (e *Engine) UpdateQuantity(productID uuid.UUID, quantity int) bool {
	t, ok := e.table("update_quantity")
	if !ok {
		return false
	}
	return e.store.UpdateQuantity(t, productID, quantity)
}

// RemoveProduct drops a line with nothing served from the current table.
func (e *Engine) RemoveProduct(productID uuid.UUID) bool {
	t, ok := e.table("remove_product")
	if !ok {
		return false
	}
	return e.store.Remove(t, productID)
}

// CanModifyProduct reports what can still change on a line of the current table.
func (e *Engine) CanModifyProduct(productID uuid.UUID) Modifiable {
	if !e.hasCurrent {
		return Modifiable{}
	}
	return e.store.CanModify(e.current, productID)
}

// ClearCurrentTableCart empties the current table's cart.
func (e *Engine) ClearCurrentTableCart() {
	if t, ok := e.table("clear_current_table"); ok {
		e.store.Clear(t)
	}
}

// ClearAllCarts empties every table's cart.
func (e *Engine) ClearAllCarts() {
	e.store.ClearAll()
}

// GetTablesWithOrders lists the tables with a non-empty cart.
func (e *Engine) GetTablesWithOrders() []uuid.UUID {
	return e.store.TablesWithOrders()
}

// Items returns the current table's cart.
func (e *Engine) Items() []Item {
	if !e.hasCurrent {
		return nil
	}
	return e.store.Items(e.current)
}

// Starters returns the current table's starter lines.
func (e *Engine) Starters() []Item {
	s, _, _ := Partition(e.Items(), e.classifier)
	return s
}

// Mains returns the current table's main course lines.
func (e *Engine) Mains() []Item {
	_, m, _ := Partition(e.Items(), e.classifier)
	return m
}

// Others returns the lines that are neither starters nor mains.
func (e *Engine) Others() []Item {
	_, _, o := Partition(e.Items(), e.classifier)
	return o
}

// Summary prices the current table's cart.
func (e *Engine) Summary() Summary {
	return Summarize(e.Items(), e.classifier, e.taxRate)
}

package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/upao-inso/restaurant-pos/internal/cart"
	"github.com/upao-inso/restaurant-pos/internal/catalog"
	"github.com/upao-inso/restaurant-pos/internal/handler"
)

// --- Fake catalog ---

type fakeCatalog struct {
	products map[uuid.UUID]cart.Product
	order    []uuid.UUID
	err      error
}

func newFakeCatalog(products ...cart.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[uuid.UUID]cart.Product)}
	for _, p := range products {
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c
}

func (c *fakeCatalog) GetProduct(_ context.Context, id uuid.UUID) (cart.Product, error) {
	if c.err != nil {
		return cart.Product{}, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return cart.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (c *fakeCatalog) ListProducts(_ context.Context) ([]cart.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]cart.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out, nil
}

var (
	ceviche = cart.Product{ID: uuid.New(), Name: "Ceviche", Price: decimal.RequireFromString("12.50"), ProductTypeName: "Entrada"}
	sopa    = cart.Product{ID: uuid.New(), Name: "Sopa de casa", Price: decimal.RequireFromString("8.00"), ProductTypeName: "Entrada"}
	lomo    = cart.Product{ID: uuid.New(), Name: "Lomo saltado", Price: decimal.RequireFromString("25.00"), ProductTypeName: "Segundo"}
	chicha  = cart.Product{ID: uuid.New(), Name: "Chicha morada", Price: decimal.RequireFromString("6.75"), ProductTypeName: "Bebida"}
)

// --- Helpers ---

type cartBody struct {
	TableID  uuid.UUID    `json:"table_id"`
	Items    []cart.Item  `json:"items"`
	Starters []cart.Item  `json:"starters"`
	Mains    []cart.Item  `json:"mains"`
	Others   []cart.Item  `json:"others"`
	Summary  cart.Summary `json:"summary"`
}

func setupCartRouter(store *cart.Store, products handler.ProductLookup) *chi.Mux {
	h := handler.NewCartHandler(store, cart.NewClassifier(nil, nil), cart.DefaultTaxRate, products)
	r := chi.NewRouter()
	r.Route("/tables", h.RegisterRoutes)
	return r
}

func cartPath(tableID uuid.UUID, suffix string) string {
	return "/tables/" + tableID.String() + "/cart" + suffix
}

func assertMoney(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: got %s, want %s", field, got, want)
	}
}

// --- Tests ---

func TestCartAddItem_ComboPricing(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog(ceviche, sopa, lomo, chicha))
	table := uuid.New()

	for _, p := range []cart.Product{ceviche, sopa, lomo, chicha} {
		rr := doRequest(t, router, http.MethodPost, cartPath(table, "/items"), map[string]string{"product_id": p.ID.String()})
		assertStatus(t, rr, http.StatusOK)
	}

	rr := doRequest(t, router, http.MethodGet, cartPath(table, ""), nil)
	assertStatus(t, rr, http.StatusOK)
	body := decodeJSON[cartBody](t, rr)

	if body.TableID != table {
		t.Errorf("table_id: got %s", body.TableID)
	}
	if len(body.Items) != 4 || len(body.Starters) != 2 || len(body.Mains) != 1 || len(body.Others) != 1 {
		t.Fatalf("partition: items=%d starters=%d mains=%d others=%d",
			len(body.Items), len(body.Starters), len(body.Mains), len(body.Others))
	}
	// One starter rides with the main; the earliest-added one is charged.
	if body.Summary.MenusIncluded != 1 || body.Summary.ExcessStarters != 1 {
		t.Errorf("menus=%d excess=%d", body.Summary.MenusIncluded, body.Summary.ExcessStarters)
	}
	assertMoney(t, "starters_total", body.Summary.StartersTotal, "12.50")
	assertMoney(t, "subtotal", body.Summary.Subtotal, "44.25")
	assertMoney(t, "tax", body.Summary.Tax, "7.97")
	assertMoney(t, "total", body.Summary.Total, "52.22")
}

func TestCartAddItem_SameProductTwice(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog(lomo))
	table := uuid.New()

	doRequest(t, router, http.MethodPost, cartPath(table, "/items"), map[string]string{"product_id": lomo.ID.String()})
	rr := doRequest(t, router, http.MethodPost, cartPath(table, "/items"), map[string]string{"product_id": lomo.ID.String()})
	assertStatus(t, rr, http.StatusOK)

	body := decodeJSON[cartBody](t, rr)
	if len(body.Items) != 1 || body.Items[0].Quantity != 2 {
		t.Fatalf("items: %+v", body.Items)
	}
	assertMoney(t, "line subtotal", body.Items[0].Subtotal, "50.00")
}

func TestCartAddItem_LineAtMaximum(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog(lomo))
	table := uuid.New()
	store.AddWithQuantityAndServed(table, lomo, cart.MaxQuantity, 0, uuid.NullUUID{})

	rr := doRequest(t, router, http.MethodPost, cartPath(table, "/items"), map[string]string{"product_id": lomo.ID.String()})
	assertStatus(t, rr, http.StatusConflict)

	body := decodeJSON[cartBody](t, rr)
	if len(body.Items) != 1 || body.Items[0].Quantity != cart.MaxQuantity {
		t.Errorf("items: %+v", body.Items)
	}
}

func TestCartAddItem_Errors(t *testing.T) {
	table := uuid.New()
	tests := []struct {
		name    string
		catalog *fakeCatalog
		path    string
		body    interface{}
		want    int
	}{
		{"unknown product", newFakeCatalog(), cartPath(table, "/items"), map[string]string{"product_id": uuid.NewString()}, http.StatusNotFound},
		{"catalog failure", &fakeCatalog{err: errors.New("redis and postgres both down")}, cartPath(table, "/items"), map[string]string{"product_id": uuid.NewString()}, http.StatusInternalServerError},
		{"malformed body", newFakeCatalog(), cartPath(table, "/items"), "{not json", http.StatusBadRequest},
		{"unknown field", newFakeCatalog(), cartPath(table, "/items"), map[string]string{"product_id": uuid.NewString(), "price": "1"}, http.StatusBadRequest},
		{"missing product id", newFakeCatalog(), cartPath(table, "/items"), map[string]string{}, http.StatusUnprocessableEntity},
		{"product id not a uuid", newFakeCatalog(), cartPath(table, "/items"), map[string]string{"product_id": "lomo"}, http.StatusUnprocessableEntity},
		{"bad table id", newFakeCatalog(), "/tables/mesa-1/cart/items", map[string]string{"product_id": uuid.NewString()}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := setupCartRouter(cart.NewStore(nil), tc.catalog)
			rr := doRequest(t, router, http.MethodPost, tc.path, tc.body)
			assertStatus(t, rr, tc.want)
		})
	}
}

func TestCartUpdateItem(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog())
	table := uuid.New()
	store.Add(table, lomo)

	rr := doRequest(t, router, http.MethodPut, cartPath(table, "/items/"+lomo.ID.String()), map[string]int{"quantity": 3})
	assertStatus(t, rr, http.StatusOK)
	body := decodeJSON[cartBody](t, rr)
	if body.Items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", body.Items[0].Quantity)
	}
	assertMoney(t, "subtotal", body.Summary.Subtotal, "75.00")
}

func TestCartUpdateItem_ZeroRemovesLine(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog())
	table := uuid.New()
	store.Add(table, chicha)

	rr := doRequest(t, router, http.MethodPut, cartPath(table, "/items/"+chicha.ID.String()), map[string]int{"quantity": 0})
	assertStatus(t, rr, http.StatusOK)
	if items := decodeJSON[cartBody](t, rr).Items; len(items) != 0 {
		t.Errorf("expected empty cart, got %+v", items)
	}
}

func TestCartUpdateItem_BelowServedIsRejected(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog())
	table := uuid.New()
	store.AddWithQuantityAndServed(table, lomo, 3, 2, uuid.NullUUID{UUID: uuid.New(), Valid: true})

	rr := doRequest(t, router, http.MethodPut, cartPath(table, "/items/"+lomo.ID.String()), map[string]int{"quantity": 1})
	assertStatus(t, rr, http.StatusConflict)

	body := decodeJSON[cartBody](t, rr)
	if body.Items[0].Quantity != 3 || body.Items[0].ServedQuantity != 2 {
		t.Errorf("cart changed: %+v", body.Items[0])
	}
}

func TestCartUpdateItem_Errors(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog())
	table := uuid.New()
	store.Add(table, lomo)

	rr := doRequest(t, router, http.MethodPut, cartPath(table, "/items/"+uuid.NewString()), map[string]int{"quantity": 2})
	assertStatus(t, rr, http.StatusNotFound)

	rr = doRequest(t, router, http.MethodPut, cartPath(table, "/items/abc"), map[string]int{"quantity": 2})
	assertStatus(t, rr, http.StatusBadRequest)

	rr = doRequest(t, router, http.MethodPut, cartPath(table, "/items/"+lomo.ID.String()), map[string]int{})
	assertStatus(t, rr, http.StatusUnprocessableEntity)
	if errs := decodeErrors(t, rr); len(errs) != 1 || errs[0] != "quantity is required" {
		t.Errorf("errors: %v", errs)
	}
}

func TestCartUpdateItem_QuantityAboveLineMaximum(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog())
	table := uuid.New()
	store.Add(table, lomo)

	rr := doRequest(t, router, http.MethodPut, cartPath(table, "/items/"+lomo.ID.String()), map[string]int64{"quantity": 4294967297})
	assertStatus(t, rr, http.StatusUnprocessableEntity)
	if errs := decodeErrors(t, rr); len(errs) != 1 || errs[0] != "quantity must be at most 9999" {
		t.Errorf("errors: %v", errs)
	}
	if got := store.Items(table)[0].Quantity; got != 1 {
		t.Errorf("quantity: got %d, want 1", got)
	}
}

func TestCartRemoveItem(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog())
	table := uuid.New()
	store.Add(table, lomo)
	store.AddWithQuantityAndServed(table, ceviche, 1, 1, uuid.NullUUID{})

	rr := doRequest(t, router, http.MethodDelete, cartPath(table, "/items/"+lomo.ID.String()), nil)
	assertStatus(t, rr, http.StatusOK)
	if items := decodeJSON[cartBody](t, rr).Items; len(items) != 1 || items[0].Product.ID != ceviche.ID {
		t.Fatalf("items: %+v", items)
	}

	rr = doRequest(t, router, http.MethodDelete, cartPath(table, "/items/"+ceviche.ID.String()), nil)
	assertStatus(t, rr, http.StatusConflict)

	rr = doRequest(t, router, http.MethodDelete, cartPath(table, "/items/"+lomo.ID.String()), nil)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestCartModifiable(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog())
	table := uuid.New()
	store.AddWithQuantityAndServed(table, lomo, 3, 1, uuid.NullUUID{})

	rr := doRequest(t, router, http.MethodGet, cartPath(table, "/items/"+lomo.ID.String()+"/modifiable"), nil)
	assertStatus(t, rr, http.StatusOK)
	got := decodeJSON[cart.Modifiable](t, rr)
	want := cart.Modifiable{CanModify: true, CanRemove: false, Available: 2}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	rr = doRequest(t, router, http.MethodGet, cartPath(table, "/items/"+uuid.NewString()+"/modifiable"), nil)
	assertStatus(t, rr, http.StatusOK)
	if got := decodeJSON[cart.Modifiable](t, rr); got != (cart.Modifiable{}) {
		t.Errorf("unknown product: got %+v", got)
	}
}

func TestCartClearAndListTables(t *testing.T) {
	store := cart.NewStore(nil)
	router := setupCartRouter(store, newFakeCatalog())
	t1, t2 := uuid.New(), uuid.New()
	store.Add(t1, lomo)
	store.Add(t2, chicha)

	rr := doRequest(t, router, http.MethodGet, "/tables", nil)
	assertStatus(t, rr, http.StatusOK)
	if tables := decodeJSON[map[string][]uuid.UUID](t, rr)["tables"]; len(tables) != 2 {
		t.Fatalf("tables: %v", tables)
	}

	rr = doRequest(t, router, http.MethodDelete, cartPath(t1, ""), nil)
	assertStatus(t, rr, http.StatusNoContent)

	rr = doRequest(t, router, http.MethodGet, "/tables", nil)
	tables := decodeJSON[map[string][]uuid.UUID](t, rr)["tables"]
	if len(tables) != 1 || tables[0] != t2 {
		t.Fatalf("tables after clear: %v", tables)
	}

	rr = doRequest(t, router, http.MethodGet, cartPath(t1, ""), nil)
	body := decodeJSON[cartBody](t, rr)
	if body.Items == nil || len(body.Items) != 0 {
		t.Errorf("cleared cart should be an empty list, got %v", body.Items)
	}
	assertMoney(t, "total", body.Summary.Total, "0")
}

//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/upao-inso/restaurant-pos/internal/auth"
	"github.com/upao-inso/restaurant-pos/internal/cart"
	"github.com/upao-inso/restaurant-pos/internal/catalog"
	"github.com/upao-inso/restaurant-pos/internal/config"
	"github.com/upao-inso/restaurant-pos/internal/database"
	"github.com/upao-inso/restaurant-pos/internal/enum"
	"github.com/upao-inso/restaurant-pos/internal/router"
	"github.com/upao-inso/restaurant-pos/internal/ws"
)

const integrationSecret = "integration-test-secret"

// TestIntegrationFlow runs a table from first dish to kitchen service against
// a real PostgreSQL database, with every handler wired through the router.
func TestIntegrationFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connStr := setupPostgresContainer(t, ctx)
	log := zaptest.NewLogger(t)

	if err := database.Migrate(connStr, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := &config.Config{
		JWTSecret:      integrationSecret,
		TaxRate:        decimal.RequireFromString("0.18"),
		AllowedOrigins: []string{"http://localhost:4200"},
	}
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	r := router.New(cfg, router.Deps{
		DB:      pool,
		Catalog: catalog.NewCached(catalog.NewPostgresSource(database.New(pool)), rdb, time.Minute, log),
		Carts:   cart.NewStore(log),
		Hub:     hub,
		Log:     log,
	})
	server := httptest.NewServer(r)
	defer server.Close()

	// --- 1. Menu (manual DB insert - no product admin endpoints) ---
	q := database.New(pool)
	ceviche := createProduct(t, ctx, q, "Ceviche", "Entrada", "12.50")
	sopa := createProduct(t, ctx, q, "Sopa", "Entrada", "8.00")
	lomo := createProduct(t, ctx, q, "Lomo saltado", "Segundo", "25.00")

	waiter := token(t, enum.UserRoleWaiter)
	kitchen := token(t, enum.UserRoleKitchen)

	// --- 2. Kitchen screen subscribes ---
	kitchenWS := dialRoom(t, server, enum.RoomKitchen, kitchen)
	defer kitchenWS.Close()

	// --- 3. Waiter builds the cart ---
	table := uuid.New()
	cartURL := "/tables/" + table.String() + "/cart"
	for _, id := range []uuid.UUID{ceviche, sopa, lomo} {
		resp := call(t, server, http.MethodPost, cartURL+"/items", map[string]string{"product_id": id.String()}, waiter)
		expectStatus(t, resp, http.StatusOK)
	}
	cartResp := call(t, server, http.MethodGet, cartURL, nil, waiter)
	expectStatus(t, cartResp, http.StatusOK)
	c := decodeBody[cartBody](t, cartResp)
	if !c.Summary.Subtotal.Equal(decimal.RequireFromString("37.50")) {
		t.Fatalf("cart subtotal: got %s, want 37.50", c.Summary.Subtotal)
	}

	// --- 4. Confirm the order ---
	confirmResp := call(t, server, http.MethodPost, "/tables/"+table.String()+"/order", nil, waiter)
	expectStatus(t, confirmResp, http.StatusCreated)
	confirmed := decodeBody[orderBody](t, confirmResp)
	if confirmed.Order.Subtotal != "37.50" || confirmed.Order.TaxAmount != "6.75" || confirmed.Order.TotalAmount != "44.25" {
		t.Fatalf("order totals: %+v", confirmed.Order)
	}
	if len(confirmed.Items) != 3 {
		t.Fatalf("order items: got %d, want 3", len(confirmed.Items))
	}
	orderID := confirmed.Order.ID

	expectEvent(t, kitchenWS, enum.EventOrderConfirmed)

	// Cart is cleared after confirmation; a fresh confirm is rejected.
	expectStatus(t, call(t, server, http.MethodPost, "/tables/"+table.String()+"/order", nil, waiter), http.StatusConflict)

	// --- 5. Reopen the table ---
	openResp := call(t, server, http.MethodPost, "/tables/"+table.String()+"/order/open", nil, waiter)
	expectStatus(t, openResp, http.StatusOK)

	// --- 6. Kitchen serves the main ---
	servedURL := "/orders/" + orderID.String() + "/items/" + lomo.String() + "/served"
	expectStatus(t, call(t, server, http.MethodPatch, servedURL, map[string]int{"served_quantity": 1}, waiter), http.StatusForbidden)
	expectStatus(t, call(t, server, http.MethodPatch, servedURL, map[string]int{"served_quantity": 2}, kitchen), http.StatusUnprocessableEntity)
	expectStatus(t, call(t, server, http.MethodPatch, servedURL, map[string]int{"served_quantity": 1}, kitchen), http.StatusOK)

	// Served dishes cannot be taken off the cart.
	expectStatus(t, call(t, server, http.MethodDelete, cartURL+"/items/"+lomo.String(), nil, waiter), http.StatusConflict)
	expectStatus(t, call(t, server, http.MethodPut, cartURL+"/items/"+lomo.String(), map[string]int{"quantity": 0}, waiter), http.StatusConflict)

	// --- 7. Add a second main and drop the soup, then confirm again ---
	expectStatus(t, call(t, server, http.MethodPut, cartURL+"/items/"+lomo.String(), map[string]int{"quantity": 2}, waiter), http.StatusOK)
	expectStatus(t, call(t, server, http.MethodDelete, cartURL+"/items/"+sopa.String(), nil, waiter), http.StatusOK)

	reconfirmResp := call(t, server, http.MethodPost, "/tables/"+table.String()+"/order", nil, waiter)
	expectStatus(t, reconfirmResp, http.StatusCreated)
	reconfirmed := decodeBody[orderBody](t, reconfirmResp)
	if reconfirmed.Order.ID != orderID {
		t.Errorf("expected order %s to be updated, got %s", orderID, reconfirmed.Order.ID)
	}
	// 2 mains, 1 starter included: 50.00 + 9.00 tax.
	if reconfirmed.Order.Subtotal != "50.00" || reconfirmed.Order.TotalAmount != "59.00" {
		t.Errorf("updated totals: %+v", reconfirmed.Order)
	}

	var lines int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM order_items WHERE order_id = $1`, orderID).Scan(&lines); err != nil {
		t.Fatalf("count order items: %v", err)
	}
	if lines != 2 {
		t.Errorf("order items after reconfirm: got %d, want 2", lines)
	}

	// --- 8. Inventory and recipe ---
	itemResp := call(t, server, http.MethodPost, "/inventory", map[string]any{
		"name": "Lomo de res", "quantity": 2, "type": "INGREDIENT", "unit_of_measure": "kg",
	}, waiter)
	expectStatus(t, itemResp, http.StatusCreated)
	item := decodeBody[map[string]any](t, itemResp)
	itemID := item["id"].(string)

	expectStatus(t, call(t, server, http.MethodPut, "/products/"+lomo.String()+"/recipe", map[string]any{
		"items": []map[string]any{{"inventory_id": itemID, "quantity": 180, "unit_of_measure": "g"}},
	}, waiter), http.StatusOK)

	reqResp := call(t, server, http.MethodGet, "/products/"+lomo.String()+"/recipe/requirements?portions=5", nil, waiter)
	expectStatus(t, reqResp, http.StatusOK)
	reqs := decodeBody[map[string]any](t, reqResp)
	if reqs["sufficient"] != true {
		t.Errorf("requirements: %v", reqs)
	}

	adjResp := call(t, server, http.MethodPost, "/inventory/"+itemID+"/adjust", map[string]any{"delta": -900, "unit": "g"}, waiter)
	expectStatus(t, adjResp, http.StatusOK)
	if got := decodeBody[map[string]any](t, adjResp)["quantity"]; got != 1.1 {
		t.Errorf("quantity after adjust: got %v, want 1.1", got)
	}
	expectStatus(t, call(t, server, http.MethodPost, "/inventory/"+itemID+"/adjust", map[string]any{"delta": -5, "unit": "kg"}, waiter), http.StatusConflict)

	// --- 9. Catalog is served from Redis after the first read ---
	expectStatus(t, call(t, server, http.MethodGet, "/products/"+lomo.String(), nil, waiter), http.StatusOK)
	if !mr.Exists("pos:catalog:product:" + lomo.String()) {
		t.Error("expected product to be cached")
	}

	t.Log("integration flow completed successfully")
}

// --- Helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}
	return connStr
}

func createProduct(t *testing.T, ctx context.Context, q *database.Queries, name, productType, price string) uuid.UUID {
	t.Helper()
	pt, err := q.CreateProductType(ctx, productType)
	if err != nil {
		t.Fatalf("create product type: %v", err)
	}
	p, err := q.CreateProduct(ctx, database.CreateProductParams{
		Name:          name,
		Price:         database.DecimalToNumeric(decimal.RequireFromString(price)),
		ProductTypeID: pt.ID,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p.ID
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(integrationSecret, uuid.New(), role, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func call(t *testing.T, server *httptest.Server, method, path string, body interface{}, tok string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		var body bytes.Buffer
		body.ReadFrom(resp.Body) //nolint:errcheck
		t.Fatalf("%s %s: status %d, want %d (body %s)",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body.String())
	}
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func dialRoom(t *testing.T, server *httptest.Server, room, tok string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + room + "?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", room, err)
	}
	return conn
}

func expectEvent(t *testing.T, conn *websocket.Conn, eventType string) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck
	var ev ws.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != eventType {
		t.Fatalf("event type: got %q, want %q", ev.Type, eventType)
	}
}

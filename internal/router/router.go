package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/upao-inso/restaurant-pos/internal/cart"
	"github.com/upao-inso/restaurant-pos/internal/catalog"
	"github.com/upao-inso/restaurant-pos/internal/config"
	"github.com/upao-inso/restaurant-pos/internal/database"
	"github.com/upao-inso/restaurant-pos/internal/enum"
	"github.com/upao-inso/restaurant-pos/internal/handler"
	mw "github.com/upao-inso/restaurant-pos/internal/middleware"
	"github.com/upao-inso/restaurant-pos/internal/service"
	"github.com/upao-inso/restaurant-pos/internal/ws"
)

// Deps are the long-lived components the routes are built from.
type Deps struct {
	DB      service.DB
	Catalog catalog.Catalog
	Carts   *cart.Store
	Hub     *ws.Hub
	Log     *zap.Logger
}

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, deps Deps) chi.Router {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/{room}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, cfg.JWTSecret, w, r)
	})

	classifier := cart.NewClassifier(cfg.StarterLabels, cfg.MainLabels)

	orderService := service.NewOrderService(
		deps.DB,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		deps.Carts,
		classifier,
		cfg.TaxRate,
		deps.Hub,
		log,
	)
	inventoryService := service.NewInventoryService(
		deps.DB,
		func(db database.DBTX) service.InventoryStore { return database.New(db) },
		log,
	)

	cartHandler := handler.NewCartHandler(deps.Carts, classifier, cfg.TaxRate, deps.Catalog)
	orderHandler := handler.NewOrderHandler(orderService)
	productHandler := handler.NewProductHandler(deps.Catalog, classifier)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	unitHandler := handler.NewUnitHandler()

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/tables", func(r chi.Router) {
			cartHandler.RegisterRoutes(r)
			r.Route("/{tid}/order", orderHandler.RegisterTableRoutes)
		})

		r.Route("/products", func(r chi.Router) {
			productHandler.RegisterRoutes(r)
			r.Route("/{pid}/recipe", inventoryHandler.RegisterRecipeRoutes)
		})

		r.Route("/units", unitHandler.RegisterRoutes)
		r.Route("/inventory", inventoryHandler.RegisterRoutes)

		// Kitchen marks dishes as served
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleKitchen))
			r.Route("/orders", orderHandler.RegisterRoutes)
		})
	})

	log.Debug("router initialized")
	return r
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baadal-bistro/api/internal/config"
	"github.com/baadal-bistro/api/internal/database"
	"github.com/baadal-bistro/api/internal/enum"
	"github.com/baadal-bistro/api/internal/handler"
	mw "github.com/baadal-bistro/api/internal/middleware"
	"github.com/baadal-bistro/api/internal/service"
	"github.com/baadal-bistro/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Reads are open to all staff; writes are gated by role.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // Vite dev server
			"https://pos.baadalbistro.in",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (authenticates via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// The order service builds its store per transaction; table state
	// changes run on the shared pool-backed queries.
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, newOrderStore, cfg.CancelEmptyOrders)
	tableService := service.NewTableService(queries)

	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	tableHandler := handler.NewTableHandler(tableService, queries, hub)
	checkoutHandler := handler.NewCheckoutHandler(orderService, queries, hub, cfg.CafeName)
	menuHandler := handler.NewMenuHandler(queries)
	userHandler := handler.NewUserHandler(queries)
	reportHandler := handler.NewReportHandler(queries)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// All staff can read the menu; only admins change it.
		r.Route("/menu", func(r chi.Router) {
			menuHandler.RegisterReadRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				menuHandler.RegisterWriteRoutes(r)
			})
		})

		// All staff see the floor plan; waiters order, admins manage layout.
		r.Route("/tables", func(r chi.Router) {
			tableHandler.RegisterReadRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleWaiter))
				orderHandler.RegisterTableRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				tableHandler.RegisterWriteRoutes(r)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.List)
			r.Get("/{id}", orderHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleWaiter))
				r.Post("/parcel", orderHandler.CreateParcel)
				r.Patch("/{id}/status", orderHandler.UpdateStatus)
				r.Delete("/{id}/items/{itemID}", orderHandler.RemoveLine)
			})

			// Settlement is for cashiers and admins.
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleCashier))
				checkoutHandler.RegisterRoutes(r)
			})
		})

		// Admin only: staff management and reports.
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			r.Route("/users", userHandler.RegisterRoutes)
			r.Route("/reports", reportHandler.RegisterRoutes)
		})
	})

	return r
}

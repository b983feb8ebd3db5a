package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resto-pos/api/internal/config"
	"github.com/resto-pos/api/internal/database"
	"github.com/resto-pos/api/internal/enum"
	"github.com/resto-pos/api/internal/handler"
	mw "github.com/resto-pos/api/internal/middleware"
	"github.com/resto-pos/api/internal/service"
	"github.com/resto-pos/api/internal/storage"
	"github.com/resto-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Authentication and role gates are applied per route group.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, uploader storage.Uploader) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket kitchen feed (authenticates via token query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, newOrderStore)
	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	menuHandler := handler.NewMenuHandler(queries, uploader)
	chargeHandler := handler.NewChargeHandler(queries)
	driverHandler := handler.NewDriverHandler(queries)
	financeHandler := handler.NewFinanceHandler(queries)
	employeeHandler := handler.NewEmployeeHandler(queries)
	reportHandler := handler.NewReportHandler(queries)
	userHandler := handler.NewUserHandler(queries)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		// Menus: reads for all staff, writes for admin and kitchen
		r.Route("/menus", func(r chi.Router) {
			menuHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin, enum.RoleKitchen))
				menuHandler.RegisterAdminRoutes(r)
			})
		})

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.With(mw.RequireRole(enum.RoleCashier, enum.RoleAdmin)).Post("/", orderHandler.Create)
			r.With(mw.RequireRole(enum.RoleCashier, enum.RoleKitchen, enum.RoleAdmin)).Get("/", orderHandler.List)
			r.With(mw.RequireRole(enum.RoleCashier, enum.RoleAdmin)).Get("/takeaway", orderHandler.ListTakeaway)
			r.With(mw.RequireRole(enum.RoleCashier, enum.RoleAdmin)).Get("/{id}", orderHandler.Get)
			r.With(mw.RequireRole(enum.RoleKitchen, enum.RoleAdmin)).Put("/{id}/status", orderHandler.UpdateStatus)
			r.With(mw.RequireRole(enum.RoleCashier, enum.RoleAdmin)).Put("/{id}/delivery-status", orderHandler.UpdateDeliveryStatus)
		})
		r.With(mw.RequireRole(enum.RoleCashier, enum.RoleAdmin)).Get("/customer", orderHandler.LookupCustomer)

		// Charge settings
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin, enum.RoleCashier))
			chargeHandler.RegisterReadRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))
			chargeHandler.RegisterAdminRoutes(r)
		})

		// Drivers
		r.Route("/drivers", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin, enum.RoleCashier))
				driverHandler.RegisterRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin))
				driverHandler.RegisterAdminRoutes(r)
			})
		})

		// Employees: registry readable by all staff, managed by admin
		r.Route("/employees", func(r chi.Router) {
			employeeHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleAdmin))
				employeeHandler.RegisterAdminRoutes(r)
			})
		})

		// Finance records and dashboards (admin only)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))
			financeHandler.RegisterRoutes(r)
			reportHandler.RegisterAdminRoutes(r)
			r.Route("/users", userHandler.RegisterRoutes)
		})

		// Monthly report is shared with kitchen staff
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleKitchen, enum.RoleAdmin))
			reportHandler.RegisterKitchenRoutes(r)
		})
	})

	return r
}

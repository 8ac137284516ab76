package router

import (
	"net/http"

	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/database"
	"github.com/comanda-pos/api/internal/handler"
	mw "github.com/comanda-pos/api/internal/middleware"
	"github.com/comanda-pos/api/internal/service"
	"github.com/comanda-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, hub scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // waiter/kitchen app dev server
			"https://app.comanda.example.com",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/hubs/{hid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Services
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, queries, newOrderStore)
	stationRouter := service.NewStationRouter(queries)
	settingsService := service.NewSettingsService(queries)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Hub-scoped routes
		r.Route("/hubs/{hid}", func(r chi.Router) {
			r.Use(mw.RequireHub)

			// Orders
			orderHandler := handler.NewOrderHandler(orderService, hub)
			r.Route("/orders", orderHandler.RegisterRoutes)

			// Kitchen stations
			stationHandler := handler.NewStationHandler(queries, orderService)
			r.Route("/stations", stationHandler.RegisterRoutes)

			// Station routing (managers and owners only)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole("OWNER", "MANAGER"))
				routingHandler := handler.NewRoutingHandler(stationRouter)
				r.Route("/routing", routingHandler.RegisterRoutes)

				settingsHandler := handler.NewSettingsHandler(settingsService)
				r.Route("/settings", settingsHandler.RegisterRoutes)
			})
		})
	})

	return r
}

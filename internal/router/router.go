package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinehq/api/internal/config"
	"github.com/dinehq/api/internal/handler"
	mw "github.com/dinehq/api/internal/middleware"
	"github.com/dinehq/api/internal/service"
	"github.com/dinehq/api/internal/store"
	"github.com/dinehq/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Public routes cover the QR ordering flow; everything else sits behind
// authentication with manager-only groups for administration.
func New(cfg *config.Config, queries *store.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
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

	// Handlers shared between public and protected groups
	menuHandler := handler.NewMenuHandler(queries)
	qrHandler := handler.NewQRHandler(queries)
	orderHandler := handler.NewOrderHandler(queries, hub)
	ratingHandler := handler.NewRatingHandler(queries)

	// Customer-facing routes: scanning a QR code must work without an account
	r.Get("/menu", menuHandler.List)
	r.Get("/menu/{id}", menuHandler.Get)
	r.Get("/qr/resolve", qrHandler.Resolve)
	r.Post("/orders", orderHandler.Create)
	r.Get("/ratings", ratingHandler.List)

	// WebSocket routes (handle auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeOrders(hub, cfg.JWTSecret, w, r)
	})
	r.Get("/ws/tables/{tableNumber}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeTable(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		r.Get("/orders", orderHandler.List)
		r.Get("/orders/{id}", orderHandler.Get)
		r.Post("/ratings", ratingHandler.Create)

		attendanceHandler := handler.NewAttendanceHandler(queries)
		leaveHandler := handler.NewLeaveHandler(queries)

		// Staff routes: order flow control, billing, self-service HR
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole("ADMIN", "MANAGER", "STAFF"))

			r.Get("/orders/table/{tableNumber}", orderHandler.ListByTable)
			r.Patch("/orders/{id}/status", orderHandler.UpdateStatus)

			newBillingStore := func(db store.DBTX) service.BillingStore {
				return store.New(db)
			}
			billingService := service.NewBillingService(pool, newBillingStore)
			billHandler := handler.NewBillHandler(queries, billingService, hub)
			r.Post("/bills/generate", billHandler.Generate)
			r.Get("/bills", billHandler.List)
			r.Get("/bills/{id}", billHandler.Get)

			// Staff stamp themselves in and file leave; managers administer
			// the records below
			r.Post("/attendance/check-in", attendanceHandler.CheckIn)
			r.Post("/attendance/check-out", attendanceHandler.CheckOut)
			r.Get("/leaves", leaveHandler.List)
			r.Post("/leaves", leaveHandler.Create)
			r.Get("/leaves/{id}", leaveHandler.Get)
		})

		// Manager-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireManager)

			r.Get("/menu/all", menuHandler.ListAll)
			r.Post("/menu", menuHandler.Create)
			r.Put("/menu/{id}", menuHandler.Update)
			r.Delete("/menu/{id}", menuHandler.Delete)

			floorHandler := handler.NewFloorHandler(queries)
			r.Route("/floors", func(r chi.Router) {
				r.Get("/", floorHandler.List)
				r.Post("/", floorHandler.Create)
				r.Get("/{id}", floorHandler.Get)
				r.Put("/{id}", floorHandler.Update)
				r.Delete("/{id}", floorHandler.Delete)
			})

			tableHandler := handler.NewTableHandler(queries)
			r.Route("/tables", func(r chi.Router) {
				r.Get("/", tableHandler.List)
				r.Post("/", tableHandler.Create)
				r.Get("/{id}", tableHandler.Get)
				r.Put("/{id}", tableHandler.Update)
				r.Patch("/{id}/position", tableHandler.UpdatePosition)
				r.Delete("/{id}", tableHandler.Delete)
			})

			roomHandler := handler.NewRoomHandler(queries)
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", roomHandler.List)
				r.Post("/", roomHandler.Create)
				r.Get("/{id}", roomHandler.Get)
				r.Put("/{id}", roomHandler.Update)
				r.Delete("/{id}", roomHandler.Delete)
			})

			dashboardHandler := handler.NewDashboardHandler(queries)
			r.Get("/dashboard/stats", dashboardHandler.Stats)

			departmentHandler := handler.NewDepartmentHandler(queries)
			r.Route("/departments", func(r chi.Router) {
				r.Get("/", departmentHandler.List)
				r.Post("/", departmentHandler.Create)
				r.Get("/{id}", departmentHandler.Get)
				r.Put("/{id}", departmentHandler.Update)
				r.Delete("/{id}", departmentHandler.Delete)
			})
			r.Route("/roles", func(r chi.Router) {
				r.Get("/", departmentHandler.ListRoles)
				r.Post("/", departmentHandler.CreateRole)
				r.Get("/{id}", departmentHandler.GetRole)
				r.Put("/{id}", departmentHandler.UpdateRole)
				r.Delete("/{id}", departmentHandler.DeleteRole)
			})

			newStaffStore := func(db store.DBTX) service.StaffStore {
				return store.New(db)
			}
			staffService := service.NewStaffService(pool, newStaffStore)
			staffHandler := handler.NewStaffHandler(queries, staffService)
			r.Route("/staff", func(r chi.Router) {
				r.Get("/", staffHandler.List)
				r.Post("/", staffHandler.Create)
				r.Get("/{id}", staffHandler.Get)
				r.Put("/{id}", staffHandler.Update)
				r.Delete("/{id}", staffHandler.Delete)
			})

			r.Get("/attendance", attendanceHandler.List)
			r.Put("/attendance/{id}", attendanceHandler.Update)
			r.Delete("/attendance/{id}", attendanceHandler.Delete)

			r.Patch("/leaves/{id}/approve", leaveHandler.Approve)
			r.Patch("/leaves/{id}/reject", leaveHandler.Reject)
			r.Delete("/leaves/{id}", leaveHandler.Delete)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}

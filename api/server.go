/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers
  3. Logger:     Structured request logging (logrus)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/health           Liveness, public
  /api/auth/*           Register and login public, /me authenticated
  /api/leaves/*         Any authenticated user; review routes need
                        manager or admin, /all needs admin
  /api/admin/*          Admin only

SEE ALSO:
  - middleware.go: Authenticate and RequireRole
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/leave-service/leave"
	"github.com/warp/leave-service/logging"
)

// DefaultOrigins are the local frontend dev servers.
var DefaultOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AllowedOrigins is appended to DefaultOrigins.
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := append([]string{}, DefaultOrigins...)
	for _, o := range opts.AllowedOrigins {
		if o != "" {
			origins = append(origins, o)
		}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Success: false, Message: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Success: false, Message: "Method not allowed"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(h.Authenticate).Get("/me", h.Me)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/types", h.LeaveTypes)
			r.Post("/", h.SubmitLeave)
			r.Get("/my-requests", h.MyRequests)
			r.Get("/balance", h.MyBalance)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(leave.RoleManager, leave.RoleAdmin))
				r.Get("/team-requests", h.TeamRequests)
				r.Put("/{id}/approve", h.ApproveLeave)
				r.Put("/{id}/reject", h.RejectLeave)
			})

			r.With(h.RequireRole(leave.RoleAdmin)).Get("/all", h.AllRequests)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(h.RequireRole(leave.RoleAdmin))

			r.Get("/users", h.ListUsers)
			r.Post("/users", h.CreateStaff)
			r.Put("/users/{id}/role", h.UpdateRole)
			r.Put("/users/{id}/manager", h.AssignManager)
			r.Get("/users/{id}/balance", h.UserBalance)
			r.Put("/users/{id}/balance", h.AdjustBalance)
			r.Get("/statistics", h.Statistics)

			r.Get("/scenarios", h.ListScenarios)
			r.Post("/scenarios/load", h.LoadScenario)
		})
	})

	return r
}

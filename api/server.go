/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. zap logger: Structured request logging
  4. CORS:       Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/combined/*     Reconciled view, commit, summary
  /api/roster/*       Roster CRUD (manage_roster)
  /api/shifts/*       Shift CRUD (manage_shifts)
  /api/allocations/*  Allocation reads
  /api/logs           Audit history
  /api/roles/*        Role lookups
  /api/scenarios/*    Demo scenarios

SECURITY NOTE:
  Caller identity is trusted from the X-Actor-Email header; put an
  authenticating proxy in front for anything beyond a trusted network.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/warp/roster-engine/schedule"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor-Email"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Combined view routes
		r.Route("/combined", func(r chi.Router) {
			r.Use(h.requirePermission(schedule.PermViewCombined))
			r.Get("/", h.GetCombined)
			r.Post("/commit", h.CommitCombined)
			r.Get("/summary", h.GetSummary)
		})

		// Roster routes
		r.Route("/roster", func(r chi.Router) {
			r.Use(h.requirePermission(schedule.PermManageRoster))
			r.Get("/", h.ListRosters)
			r.Post("/", h.CreateRoster)
			r.Put("/{id}", h.UpdateRoster)
			r.Delete("/{id}", h.DeleteRoster)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Use(h.requirePermission(schedule.PermManageShifts))
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Put("/{id}", h.UpdateShift)
			r.Delete("/{id}", h.DeleteShift)
		})

		// Allocation routes
		r.Route("/allocations", func(r chi.Router) {
			r.Get("/", h.ListAllocations)
			r.Get("/names", h.ListAllocationNames)
		})

		// Audit log routes
		r.Get("/logs", h.ListLogs)

		// Role routes
		r.Get("/roles/{email}", h.GetRole)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetData)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Roster Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Roster Engine API</h1>
<ul>
<li><a href="/api/combined">/api/combined</a> - Reconciled dashboard view</li>
<li><a href="/api/combined/summary">/api/combined/summary</a> - Attendance stats</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}

// requestLogger logs one line per request with method, path, status, and
// duration.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"aurora/internal/api/handlers"
	"aurora/internal/api/middleware"
)

// NewRouter builds Aurora's HTTP router: the full surface described in
// the external interfaces section, behind the teacher's middleware
// chain minus authentication (not in scope for a single local user).
func NewRouter(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.NewLogger(h.Bus))
	r.Use(middleware.Telemetry)

	// CORS is permissive: any origin, any method, any header. The
	// server binds to loopback by default, so this is not a network
	// exposure — see ISS-022 for why credentials stay disabled on a
	// wildcard origin.
	corsOrigins := parseCORSOrigins()
	isWildcard := len(corsOrigins) == 1 && corsOrigins[0] == "*"
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !isWildcard,
		MaxAge:           300,
	}))

	r.Get("/", h.Banner)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", h.GetSettings)
		r.Post("/settings", h.UpdateSettings)

		r.Get("/models", h.ListModels)
		r.Delete("/models/{name}", h.DeleteModel)
		r.Get("/popular-models", h.PopularModels)

		r.Get("/templates", h.Templates)

		r.Get("/custom-models", h.ListCustomModels)
		r.Post("/custom-models", h.UpsertCustomModel)
		r.Get("/custom-models/{name}", h.GetCustomModel)
		r.Delete("/custom-models/{name}", h.DeleteCustomModel)

		r.Post("/chat", h.Chat)
		r.Post("/generate", h.Generate)
		r.Post("/pull", h.Pull)

		r.Post("/log", h.PostLog)
		r.Get("/logs", h.Logs)
		r.Get("/logs/stream", h.LogsStream)

		r.Get("/sessions", h.ListSessions)
		r.Post("/sessions", h.CreateSession)
		r.Post("/sessions/clear", h.ClearSessions)
		r.Get("/sessions/{id}", h.GetSession)
		r.Delete("/sessions/{id}", h.DeleteSession)
		r.Get("/sessions/{id}/messages", h.ListMessages)
		r.Post("/sessions/{id}/messages", h.AppendMessage)

		r.Post("/chat/session", h.SessionChat)

		r.Get("/memory", h.ListMemory)
		r.Post("/memory", h.RecordMemory)
		r.Post("/memory/clear", h.ClearMemory)
	})

	return r
}

// parseCORSOrigins reads AURORA_CORS_ORIGINS (comma-separated) and
// defaults to a wildcard, matching the server's loopback-bound default.
func parseCORSOrigins() []string {
	v := os.Getenv("AURORA_CORS_ORIGINS")
	if v == "" {
		return []string{"*"}
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

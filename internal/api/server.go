package api

import (
	"net/http"
	"time"

	conversationapi "github.com/futig/launchpad-backend/internal/api/conversation"
	"github.com/futig/launchpad-backend/internal/api/docs"
	"github.com/futig/launchpad-backend/internal/api/middleware"
	projectapi "github.com/futig/launchpad-backend/internal/api/project"
	"github.com/futig/launchpad-backend/internal/config"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	projectHandler *projectapi.Handler,
	conversationHandler *conversationapi.Handler,
	requestTimeout time.Duration,
	corsCfg config.CORSConfig,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	r.Get("/stages", conversationHandler.ListStages)
	r.Route("/projects", func(r chi.Router) {
		projectapi.RegisterRoutes(r, projectHandler)
		conversationapi.RegisterRoutes(r, conversationHandler)
	})

	return r
}

package api

import (
	"encoding/json"
	"net/http"

	"docmill/internal/models"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// RouteOption configures optional route behavior.
type RouteOption func(*mux.Router)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health" &&
					r.URL.Path != "/api/v1/health" &&
					r.URL.Path != "/metrics"
			}),
		))
	}
}

// WithRateLimiter adds the global rate limiting middleware to the router.
func WithRateLimiter(middleware func(http.Handler) http.Handler) RouteOption {
	return func(r *mux.Router) {
		r.Use(middleware)
	}
}

// SetupRoutes configures the HTTP routes for the API. The heavyLimit
// middleware, when non-nil, guards only the document-processing routes; the
// global limiter (installed via WithRateLimiter) covers everything.
func SetupRoutes(handlers *Handlers, config *models.Config, heavyLimit mux.MiddlewareFunc, opts ...RouteOption) *mux.Router {
	router := mux.NewRouter()

	for _, opt := range opts {
		opt(router)
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	// Heavy routes: every operation funnels through the same admission
	// pipeline, so the strict limiter wraps the whole subrouter.
	heavy := api.PathPrefix("/documents").Subrouter()
	if heavyLimit != nil {
		heavy.Use(heavyLimit)
	}
	heavy.HandleFunc("/{operation}", handlers.ProcessDocument).Methods("POST")
	heavy.HandleFunc("/{operation}", methodNotAllowedHandler).Methods("GET", "PUT", "DELETE", "PATCH")

	api.HandleFunc("/jobs/recent", handlers.RecentJobs).Methods("GET")
	api.HandleFunc("/jobs/{job_id}", handlers.GetJob).Methods("GET")

	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	router.HandleFunc("/api/v1/health", handlers.HealthCheck).Methods("GET")

	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)

	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return router
}

// methodNotAllowedHandler handles requests with invalid HTTP methods.
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	errorResp := models.NewErrorResponse("Method not allowed", models.ErrorCodeInvalidRequest)
	json.NewEncoder(w).Encode(errorResp)
}

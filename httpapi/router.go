package httpapi

import (
	"net/http"
	"time"

	"fundledger/domain/apperrors"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// RouterConfig holds what the router needs beyond the handlers
type RouterConfig struct {
	JWTSecret []byte
	Registry  *prometheus.Registry
}

// NewRouter wires the API routes. Everything under /api/v1 requires a bearer token.
func NewRouter(h *Handlers, cfg RouterConfig) *mux.Router {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := NewHTTPMetrics(registry)

	r := mux.NewRouter()
	r.Use(recoverMiddleware, metrics.Middleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, apperrors.ErrNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"})
	})

	r.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(cfg.JWTSecret))
	api.HandleFunc("/transfers/{transferId}/confirm", h.ConfirmTransfer).Methods(http.MethodPost)
	api.HandleFunc("/transfers/{transferId}", h.GetTransfer).Methods(http.MethodGet)
	api.HandleFunc("/funds/{fundId}/totals", h.GetFundTotals).Methods(http.MethodGet)
	api.HandleFunc("/funds/{fundId}/totals/recompute", h.RecomputeFundTotals).Methods(http.MethodPost)

	return r
}

// NewServer builds an HTTP server with conservative timeouts
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(log.Fields{
					"path":  r.URL.Path,
					"panic": rec,
				}).Error("Recovered from panic in HTTP handler")
				writeError(w, apperrors.ErrInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

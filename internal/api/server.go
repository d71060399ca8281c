// Package api provides the HTTP surface of the gateway: telemetry ingest,
// device snapshots, the live stream relay and process health.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/benmeehan/iot-gateway/internal/services"
	"github.com/benmeehan/iot-gateway/internal/store"
)

// DefaultMaxBodyBytes caps ingest request bodies, matching the historical
// 10mb limit devices were deployed against.
const DefaultMaxBodyBytes = 10 << 20

// APIServer routes inbound requests to the telemetry and relay services.
type APIServer struct {
	router        *mux.Router
	store         store.DeviceStore
	telemetry     *services.TelemetryService
	freshness     *services.FreshnessEvaluator
	relay         *services.StreamRelayService
	maxBodyBytes  int64
	allowedOrigin string
	startedAt     time.Time
	logger        zerolog.Logger
}

// NewAPIServer creates an API server wired to the given store and services.
func NewAPIServer(deviceStore store.DeviceStore, telemetry *services.TelemetryService,
	freshness *services.FreshnessEvaluator, relay *services.StreamRelayService,
	maxBodyBytes int64, allowedOrigin string, logger zerolog.Logger) *APIServer {

	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}

	s := &APIServer{
		router:        mux.NewRouter(),
		store:         deviceStore,
		telemetry:     telemetry,
		freshness:     freshness,
		relay:         relay,
		maxBodyBytes:  maxBodyBytes,
		allowedOrigin: allowedOrigin,
		startedAt:     time.Now(),
		logger:        logger,
	}
	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.Use(s.loggingMiddleware, s.corsMiddleware)

	s.router.HandleFunc("/api/device/update", s.handleDeviceUpdate).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/api/devices", s.handleListDevices).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/device/{id}", s.handleGetDevice).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/device/{id}/stream", s.handleDeviceStream).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
}

// Router returns the configured request handler.
func (s *APIServer) Router() http.Handler {
	return s.router
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response body")
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api provides the HTTP API server for FleetPulse.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/fleetpulse/pkg/db"
	fpHttp "github.com/carverauto/fleetpulse/pkg/http"
	"github.com/carverauto/fleetpulse/pkg/ingest"
	"github.com/carverauto/fleetpulse/pkg/logger"
	"github.com/carverauto/fleetpulse/pkg/models"
	"github.com/carverauto/fleetpulse/pkg/status"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	apiKeyHeader = "X-API-Key"
)

// IngestionService runs one telemetry submission end to end.
type IngestionService interface {
	ProcessDeviceData(ctx context.Context, payload map[string]interface{}, authToken string) (*models.IngestionResult, error)
}

// APIServer serves the ingestion endpoint and the device read surface.
type APIServer struct {
	router         *mux.Router
	ingestion      IngestionService
	store          db.Service
	auth           *ingest.Authenticator
	logger         logger.Logger
	statusLookback time.Duration
}

// NewAPIServer creates an API server instance with the given options.
func NewAPIServer(log logger.Logger, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:         mux.NewRouter(),
		logger:         log,
		statusLookback: status.DefaultLookback,
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithIngestionService wires the ingestion pipeline.
func WithIngestionService(svc IngestionService) func(*APIServer) {
	return func(server *APIServer) {
		server.ingestion = svc
	}
}

// WithStore wires the persistence layer backing the read routes.
func WithStore(store db.Service) func(*APIServer) {
	return func(server *APIServer) {
		server.store = store
	}
}

// WithAuthenticator guards the read routes with the shared credential set.
func WithAuthenticator(auth *ingest.Authenticator) func(*APIServer) {
	return func(server *APIServer) {
		server.auth = auth
	}
}

// WithStatusLookback bounds how far back events influence derived status.
func WithStatusLookback(lookback time.Duration) func(*APIServer) {
	return func(server *APIServer) {
		if lookback > 0 {
			server.statusLookback = lookback
		}
	}
}

func (s *APIServer) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return fpHttp.CommonMiddleware(next, s.logger)
	})

	// The ingest route authenticates inside the pipeline so the credential
	// can also travel in the payload.
	s.router.HandleFunc("/api/ingest", s.postIngest).Methods("POST")

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(s.authenticationMiddleware)

	protected.HandleFunc("/devices", s.getDevices).Methods("GET")
	protected.HandleFunc("/devices/{serial}", s.getDevice).Methods("GET")
	protected.HandleFunc("/devices/{serial}/modules", s.getDeviceModules).Methods("GET")
	protected.HandleFunc("/devices/{serial}/modules/{module}", s.getDeviceModule).Methods("GET")
	protected.HandleFunc("/devices/{serial}/events", s.getDeviceEvents).Methods("GET")
	protected.HandleFunc("/devices/{serial}/events", s.postDeviceEvent).Methods("POST")
}

func (s *APIServer) authenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestKey := r.Header.Get(apiKeyHeader)
		if requestKey == "" {
			requestKey = r.URL.Query().Get("api_key")
		}

		if err := s.auth.Authenticate(requestKey); err != nil {
			s.logger.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("Unauthorized API access attempt")
			writeError(w, "Unauthorized", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// Router exposes the configured handler; used by tests and embedding servers.
func (s *APIServer) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until the context is canceled.
func (s *APIServer) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errResponse := models.ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

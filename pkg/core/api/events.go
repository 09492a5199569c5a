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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/carverauto/fleetpulse/pkg/db"
	"github.com/carverauto/fleetpulse/pkg/models"
)

const defaultEventLimit = 100

// eventRequest is the write shape for a manually appended event.
type eventRequest struct {
	Kind    string                 `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (s *APIServer) getDeviceEvents(w http.ResponseWriter, r *http.Request) {
	serial := mux.Vars(r)["serial"]

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := s.store.ListEvents(r.Context(), serial, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("serial_number", serial).Msg("Failed to list events")
		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	writeJSONResponse(w, http.StatusOK, events)
}

func (s *APIServer) postDeviceEvent(w http.ResponseWriter, r *http.Request) {
	serial := mux.Vars(r)["serial"]

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, "Event message is required", http.StatusBadRequest)
		return
	}

	// The device must exist; events never create devices.
	if _, err := s.store.GetDevice(r.Context(), serial); err != nil {
		if errors.Is(err, db.ErrDeviceNotFound) {
			writeError(w, "Device not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Str("serial_number", serial).Msg("Failed to get device")
		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	kind, valid := models.NormalizeEventKind(req.Kind)
	if !valid {
		s.logger.Warn().
			Str("serial_number", serial).
			Str("kind", req.Kind).
			Msg("Unknown event kind coerced to info")
	}

	event := &models.Event{
		ID:           uuid.New().String(),
		SerialNumber: serial,
		Kind:         kind,
		Message:      req.Message,
		Details:      req.Details,
		Timestamp:    time.Now().UTC(),
	}

	if err := s.store.InsertEvent(r.Context(), event); err != nil {
		s.logger.Error().Err(err).Str("serial_number", serial).Msg("Failed to insert event")
		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	writeJSONResponse(w, http.StatusCreated, event)
}

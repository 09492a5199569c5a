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
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/fleetpulse/pkg/db"
	"github.com/carverauto/fleetpulse/pkg/models"
	"github.com/carverauto/fleetpulse/pkg/status"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *APIServer) getDevices(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r.URL.Query())

	devices, err := s.store.ListDevices(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list devices")
		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	now := time.Now().UTC()
	for _, device := range devices {
		device.Status = s.deriveStatus(r.Context(), device.SerialNumber, now)
	}

	writeJSONResponse(w, http.StatusOK, devices)
}

func (s *APIServer) getDevice(w http.ResponseWriter, r *http.Request) {
	serial := mux.Vars(r)["serial"]

	device, err := s.store.GetDevice(r.Context(), serial)
	if err != nil {
		if errors.Is(err, db.ErrDeviceNotFound) {
			writeError(w, "Device not found", http.StatusNotFound)
			return
		}

		s.logger.Error().Err(err).Str("serial_number", serial).Msg("Failed to get device")
		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	device.Status = s.deriveStatus(r.Context(), serial, time.Now().UTC())

	writeJSONResponse(w, http.StatusOK, device)
}

func (s *APIServer) getDeviceModules(w http.ResponseWriter, r *http.Request) {
	serial := mux.Vars(r)["serial"]

	docs, err := s.store.ListModuleDocuments(r.Context(), serial)
	if err != nil {
		s.logger.Error().Err(err).Str("serial_number", serial).Msg("Failed to list module documents")
		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	writeJSONResponse(w, http.StatusOK, docs)
}

func (s *APIServer) getDeviceModule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serial := vars["serial"]
	moduleID := vars["module"]

	doc, err := s.store.GetModuleDocument(r.Context(), serial, moduleID)
	if err != nil {
		if errors.Is(err, db.ErrModuleDocumentNotFound) {
			writeError(w, "Module document not found", http.StatusNotFound)
			return
		}

		s.logger.Error().
			Err(err).
			Str("serial_number", serial).
			Str("module", moduleID).
			Msg("Failed to get module document")
		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	writeJSONResponse(w, http.StatusOK, doc)
}

// deriveStatus recomputes the device's health signal from collection recency
// and recent events. Failures degrade to missing rather than failing the read.
func (s *APIServer) deriveStatus(ctx context.Context, serial string, now time.Time) models.DeviceStatus {
	lastCollected, err := s.store.LatestCollectedAt(ctx, serial)
	if err != nil {
		s.logger.Warn().Err(err).Str("serial_number", serial).Msg("Failed to resolve latest collection time")
		return models.StatusMissing
	}

	kinds, err := s.store.RecentEventKinds(ctx, serial, now.Add(-s.statusLookback))
	if err != nil {
		s.logger.Warn().Err(err).Str("serial_number", serial).Msg("Failed to resolve recent event kinds")
		return models.StatusMissing
	}

	return status.Resolve(lastCollected, kinds, now)
}

func parseListFilter(query url.Values) db.ListDevicesFilter {
	filter := db.ListDevicesFilter{
		NameContains: query.Get("q"),
		Limit:        defaultListLimit,
	}

	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = min(limit, maxListLimit)
		}
	}

	if raw := query.Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	return filter
}

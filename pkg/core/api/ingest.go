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

	"github.com/carverauto/fleetpulse/pkg/ingest"
)

// maxIngestBodyBytes caps a single submission; the largest observed client
// payload is well under 4 MB.
const maxIngestBodyBytes = 16 << 20

func (s *APIServer) postIngest(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBodyBytes))
	if err := decoder.Decode(&payload); err != nil {
		writeError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	result, err := s.ingestion.ProcessDeviceData(r.Context(), payload, r.Header.Get(apiKeyHeader))
	if err != nil {
		s.writeIngestError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

func (s *APIServer) writeIngestError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ingest.ErrAuthentication):
		writeError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ingest.ErrIdentity):
		writeError(w, "Device identity could not be resolved", http.StatusBadRequest)
	case errors.Is(err, ingest.ErrNoModules):
		writeError(w, "Payload contains no module data", http.StatusBadRequest)
	default:
		s.logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("Ingestion failed")
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

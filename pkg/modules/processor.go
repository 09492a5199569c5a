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

// Package modules transforms raw telemetry payload sections into normalized
// module documents. Each supported module has one Processor implementation;
// rich processors rewrite the section field by field while pass-through
// processors preserve the raw section and stamp identity fields.
package modules

import (
	"errors"
	"time"

	"github.com/carverauto/fleetpulse/pkg/models"
)

var (
	ErrModuleDataMissing      = errors.New("module data missing from payload")
	ErrModuleValidationFailed = errors.New("module document failed validation")
)

// Result is the output of one module transformation. Events carries
// diagnostics the processor surfaced while transforming (for example an
// install loop); the orchestrator appends them to the device's event stream.
type Result struct {
	Document map[string]interface{}
	Events   []*models.Event
}

// Processor normalizes one module's section of a telemetry payload.
// Process expects the payload's top-level keys to already be canonicalized
// to lower case by the caller.
type Processor interface {
	// Name returns the canonical module name, e.g. "hardware".
	Name() string

	// Process extracts the module's section from the payload and returns
	// the normalized document. It fails with ErrModuleDataMissing when the
	// section is absent or empty.
	Process(payload map[string]interface{}, serialNumber string) (*Result, error)

	// Validate checks the processor's own output: required identity fields
	// present and module_id matching the processor. It does not re-validate
	// business semantics.
	Validate(document map[string]interface{}) bool
}

// section pulls the module's sub-document out of the payload.
func section(payload map[string]interface{}, name string) (map[string]interface{}, error) {
	raw, ok := payload[name]
	if !ok || raw == nil {
		return nil, ErrModuleDataMissing
	}

	data, ok := raw.(map[string]interface{})
	if !ok || len(data) == 0 {
		return nil, ErrModuleDataMissing
	}

	return data, nil
}

// stampDocument adds the identity fields every module document carries.
func stampDocument(doc map[string]interface{}, moduleID, serialNumber string, collectedAt time.Time) map[string]interface{} {
	doc[models.DocKeyModuleID] = moduleID
	doc[models.DocKeyDeviceID] = serialNumber
	doc[models.DocKeyCollectedAt] = collectedAt.UTC().Format(time.RFC3339)

	return doc
}

// collectionTime reads the client-asserted collection timestamp from the
// payload metadata, falling back to the server clock.
func collectionTime(payload map[string]interface{}) time.Time {
	meta, ok := payload["metadata"].(map[string]interface{})
	if !ok {
		return time.Now().UTC()
	}

	raw, ok := meta["collectedAt"].(string)
	if !ok {
		return time.Now().UTC()
	}

	if ts := parseTimestamp(raw); ts != nil {
		return *ts
	}

	return time.Now().UTC()
}

// validateDocument is the shared Validate implementation: stamped identity
// fields present and the module_id matching the owning processor.
func validateDocument(doc map[string]interface{}, moduleID string) bool {
	if doc == nil {
		return false
	}

	if id, ok := doc[models.DocKeyModuleID].(string); !ok || id != moduleID {
		return false
	}

	if device, ok := doc[models.DocKeyDeviceID].(string); !ok || device == "" {
		return false
	}

	if _, ok := doc[models.DocKeyCollectedAt].(string); !ok {
		return false
	}

	return true
}

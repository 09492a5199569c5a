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

package models

// IngestionResult is the aggregate outcome of one telemetry submission.
// A request that authenticated and registered its device is a success even
// when individual modules failed; per-module failures land in Errors.
type IngestionResult struct {
	Success          bool                   `json:"success"`
	SerialNumber     string                 `json:"serial_number"`
	DeviceUUID       string                 `json:"device_uuid"`
	ModulesProcessed int                    `json:"modules_processed"`
	ModulesFailed    int                    `json:"modules_failed"`
	SuccessRate      float64                `json:"success_rate"`
	Errors           []string               `json:"errors,omitempty"`
	Summary          map[string]interface{} `json:"summary,omitempty"`
}

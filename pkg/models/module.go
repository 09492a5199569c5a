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

import (
	"time"
)

// ModuleDocument is the latest normalized snapshot of one telemetry module
// for one device. Exactly one row exists per (device, module) pair; every
// ingestion of that module replaces the document wholesale.
type ModuleDocument struct {
	SerialNumber string                 `json:"serial_number"`
	ModuleID     string                 `json:"module_id"`
	Data         map[string]interface{} `json:"data"`
	CollectedAt  time.Time              `json:"collected_at"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// Well-known keys stamped into every normalized module document.
const (
	DocKeyModuleID    = "module_id"
	DocKeyDeviceID    = "device_id"
	DocKeyCollectedAt = "collected_at"
	DocKeySummary     = "summary"
)

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
	"strings"
	"time"
)

// EventKind classifies a device event. The vocabulary is closed; anything
// else presented at the boundary is coerced to KindInfo.
type EventKind string

const (
	KindSuccess EventKind = "success"
	KindWarning EventKind = "warning"
	KindError   EventKind = "error"
	KindInfo    EventKind = "info"
)

// Event is one append-only row in a device's diagnostic stream.
type Event struct {
	ID           string                 `json:"id"`
	SerialNumber string                 `json:"serial_number"`
	Kind         EventKind              `json:"kind"`
	Message      string                 `json:"message"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// NormalizeEventKind reduces an arbitrary kind string to the closed
// vocabulary. It reports whether the input was already valid so callers can
// log the coercion.
func NormalizeEventKind(kind string) (EventKind, bool) {
	switch EventKind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindSuccess:
		return KindSuccess, true
	case KindWarning:
		return KindWarning, true
	case KindError:
		return KindError, true
	case KindInfo:
		return KindInfo, true
	default:
		return KindInfo, false
	}
}

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// CollectionEventData is the payload of the "collection completed" event
// published after every ingestion.
type CollectionEventData struct {
	SerialNumber     string    `json:"serial_number"`
	DeviceUUID       string    `json:"device_uuid"`
	ModulesProcessed int       `json:"modules_processed"`
	ModulesFailed    int       `json:"modules_failed"`
	Timestamp        time.Time `json:"timestamp"`
}

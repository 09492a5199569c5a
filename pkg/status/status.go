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

// Package status derives a device's health signal from collection recency
// and its recent event stream. The status is recomputed on every read; the
// two inputs mutate independently and a stored column would drift.
package status

import (
	"time"

	"github.com/carverauto/fleetpulse/pkg/models"
)

const (
	activeWindow = 24 * time.Hour
	staleWindow  = 7 * 24 * time.Hour
)

// DefaultLookback bounds how far back events influence the derived status.
const DefaultLookback = 24 * time.Hour

// Resolve turns the most recent collection timestamp and the kinds of the
// device's recent events into a status. Event-based status always wins over
// time-based status.
func Resolve(lastCollected *time.Time, recentKinds []models.EventKind, now time.Time) models.DeviceStatus {
	hasWarning := false

	for _, kind := range recentKinds {
		switch kind {
		case models.KindError:
			return models.StatusError
		case models.KindWarning:
			hasWarning = true
		}
	}

	if hasWarning {
		return models.StatusWarning
	}

	if lastCollected == nil || lastCollected.IsZero() {
		return models.StatusMissing
	}

	age := now.Sub(*lastCollected)

	switch {
	case age <= activeWindow:
		return models.StatusActive
	case age <= staleWindow:
		return models.StatusStale
	default:
		return models.StatusMissing
	}
}

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

package modules

import (
	"time"

	"github.com/carverauto/fleetpulse/pkg/models"
)

// pushCertWarningWindow flags the management summary when the MDM push
// certificate expires within this window.
const pushCertWarningWindow = 30 * 24 * time.Hour

type managementProcessor struct{}

func newManagementProcessor() *managementProcessor {
	return &managementProcessor{}
}

func (*managementProcessor) Name() string {
	return "management"
}

func (p *managementProcessor) Process(payload map[string]interface{}, serialNumber string) (*Result, error) {
	data, err := section(payload, p.Name())
	if err != nil {
		return nil, err
	}

	enrolled := asBool(data["enrolled"], false)
	if !enrolled {
		enrolled = firstNonEmpty(data, "enrollment_status", "enrollmentStatus") == "enrolled"
	}

	doc := map[string]interface{}{
		"enrolled":       enrolled,
		"server_url":     firstNonEmpty(data, "server_url", "serverUrl", "mdm_server"),
		"profile_count":  asInt(data["profile_count"], len(asList(data["profiles"]))),
		"user_approved":  asBool(data["user_approved"], asBool(data["userApproved"], false)),
		"supervised":     asBool(data["supervised"], false),
		"dep_enrollment": asBool(data["dep_enrollment"], asBool(data["depEnrollment"], false)),
	}

	if checkin := normalizeTimestamp(firstNonEmpty(data, "last_checkin", "lastCheckin", "last_check_in")); checkin != "" {
		doc["last_checkin"] = checkin
	}

	certExpiring := false

	if expiry := firstNonEmpty(data, "push_cert_expiry", "pushCertExpiry"); expiry != "" {
		if ts := parseTimestamp(expiry); ts != nil {
			doc["push_cert_expiry"] = ts.Format(time.RFC3339)
			certExpiring = time.Until(*ts) < pushCertWarningWindow
		}
	}

	doc[models.DocKeySummary] = map[string]interface{}{
		"enrolled":           enrolled,
		"push_cert_expiring": certExpiring,
		"healthy":            enrolled && !certExpiring,
	}

	stampDocument(doc, p.Name(), serialNumber, collectionTime(payload))

	return &Result{Document: doc}, nil
}

func (p *managementProcessor) Validate(document map[string]interface{}) bool {
	return validateDocument(document, p.Name())
}

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
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/fleetpulse/pkg/models"
)

// InstallStatus is the five-value vocabulary managed-install states reduce to.
type InstallStatus string

const (
	InstallStatusInstalled InstallStatus = "Installed"
	InstallStatusPending   InstallStatus = "Pending"
	InstallStatusWarning   InstallStatus = "Warning"
	InstallStatusError     InstallStatus = "Error"
	InstallStatusRemoved   InstallStatus = "Removed"
)

// installStatusTable maps known upstream status strings exactly. Upstream
// strings come from whatever package-management subsystem runs on the client
// and are not contractually stable; unknown strings fall through to the
// substring heuristics in mapInstallStatus.
var installStatusTable = map[string]InstallStatus{
	"installed":           InstallStatusInstalled,
	"install succeeded":   InstallStatusInstalled,
	"install loop":        InstallStatusInstalled,
	"up to date":          InstallStatusInstalled,
	"current":             InstallStatusInstalled,
	"pending":             InstallStatusPending,
	"pending install":     InstallStatusPending,
	"update available":    InstallStatusPending,
	"scheduled":           InstallStatusPending,
	"downloading":         InstallStatusPending,
	"warning":             InstallStatusWarning,
	"needs attention":     InstallStatusWarning,
	"error":               InstallStatusError,
	"failed":              InstallStatusError,
	"install failed":      InstallStatusError,
	"removed":             InstallStatusRemoved,
	"uninstalled":         InstallStatusRemoved,
	"uninstall succeeded": InstallStatusRemoved,
}

// installStatusRank orders statuses by how urgently they need attention;
// install lists are sorted by this rank.
var installStatusRank = map[InstallStatus]int{
	InstallStatusError:     0,
	InstallStatusWarning:   1,
	InstallStatusPending:   2,
	InstallStatusInstalled: 3,
	InstallStatusRemoved:   4,
}

// mapInstallStatus reduces an arbitrary upstream status string to the fixed
// vocabulary: exact table lookup first, then substring heuristics, then the
// Pending default (an unrecognized status most often means work in flight).
func mapInstallStatus(raw string) InstallStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return InstallStatusPending
	}

	if status, ok := installStatusTable[normalized]; ok {
		return status
	}

	switch {
	case strings.Contains(normalized, "loop"), strings.Contains(normalized, "success"):
		return InstallStatusInstalled
	case strings.Contains(normalized, "fail"), strings.Contains(normalized, "error"):
		return InstallStatusError
	case strings.Contains(normalized, "remov"), strings.Contains(normalized, "uninstall"):
		return InstallStatusRemoved
	case strings.Contains(normalized, "warn"):
		return InstallStatusWarning
	case strings.Contains(normalized, "install"):
		return InstallStatusInstalled
	default:
		return InstallStatusPending
	}
}

type installsProcessor struct{}

func newInstallsProcessor() *installsProcessor {
	return &installsProcessor{}
}

func (*installsProcessor) Name() string {
	return "installs"
}

func (p *installsProcessor) Process(payload map[string]interface{}, serialNumber string) (*Result, error) {
	data, err := section(payload, p.Name())
	if err != nil {
		return nil, err
	}

	raw := data["managed_installs"]
	if raw == nil {
		raw = data["installs"]
	}
	if raw == nil {
		raw = data["items"]
	}

	installs := make([]map[string]interface{}, 0)
	breakdown := make(map[string]int)
	looping := make([]string, 0)

	for _, item := range asList(raw) {
		name := firstNonEmpty(item, "name", "display_name", "displayName")
		if name == "" {
			continue
		}

		rawStatus := firstNonEmpty(item, "status", "state", "install_status")
		status := mapInstallStatus(rawStatus)
		breakdown[string(status)]++

		if strings.Contains(strings.ToLower(rawStatus), "loop") {
			looping = append(looping, name)
		}

		install := map[string]interface{}{
			"name":       name,
			"version":    firstNonEmpty(item, "version", "installed_version"),
			"status":     string(status),
			"raw_status": rawStatus,
		}

		if ts := normalizeTimestamp(firstNonEmpty(item, "last_attempt", "lastAttempt", "last_modified")); ts != "" {
			install["last_attempt"] = ts
		}

		installs = append(installs, install)
	}

	sort.Slice(installs, func(i, j int) bool {
		ri := installStatusRank[InstallStatus(installs[i]["status"].(string))]
		rj := installStatusRank[InstallStatus(installs[j]["status"].(string))]

		if ri == rj {
			return installs[i]["name"].(string) < installs[j]["name"].(string)
		}

		return ri < rj
	})

	doc := map[string]interface{}{
		"installs": installs,
		models.DocKeySummary: map[string]interface{}{
			"total_count":      len(installs),
			"status_breakdown": breakdown,
			"attention_needed": breakdown[string(InstallStatusError)] + breakdown[string(InstallStatusWarning)],
		},
	}

	stampDocument(doc, p.Name(), serialNumber, collectionTime(payload))

	result := &Result{Document: doc}

	if len(looping) > 0 {
		result.Events = append(result.Events, &models.Event{
			ID:           uuid.New().String(),
			SerialNumber: serialNumber,
			Kind:         models.KindWarning,
			Message:      "managed install loop detected",
			Details: map[string]interface{}{
				"module": p.Name(),
				"items":  looping,
			},
			Timestamp: time.Now().UTC(),
		})
	}

	return result, nil
}

func (p *installsProcessor) Validate(document map[string]interface{}) bool {
	return validateDocument(document, p.Name())
}

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

	"github.com/carverauto/fleetpulse/pkg/models"
)

type printersProcessor struct{}

func newPrintersProcessor() *printersProcessor {
	return &printersProcessor{}
}

func (*printersProcessor) Name() string {
	return "printers"
}

func (p *printersProcessor) Process(payload map[string]interface{}, serialNumber string) (*Result, error) {
	data, err := section(payload, p.Name())
	if err != nil {
		return nil, err
	}

	raw := data["printers"]
	if raw == nil {
		raw = data["devices"]
	}

	printers := make([]map[string]interface{}, 0)
	statusBreakdown := make(map[string]int)
	defaultPrinter := ""

	for _, item := range asList(raw) {
		name := firstNonEmpty(item, "name", "display_name")
		if name == "" {
			continue
		}

		status := strings.ToLower(firstNonEmpty(item, "status", "state"))
		if status == "" {
			status = "unknown"
		}

		statusBreakdown[status]++

		isDefault := asBool(item["is_default"], asBool(item["default"], false))
		if isDefault && defaultPrinter == "" {
			defaultPrinter = name
		}

		printers = append(printers, map[string]interface{}{
			"name":       name,
			"driver":     firstNonEmpty(item, "driver", "driver_name"),
			"port":       firstNonEmpty(item, "port", "uri", "device_uri"),
			"status":     status,
			"is_default": isDefault,
			"is_shared":  asBool(item["is_shared"], asBool(item["shared"], false)),
		})
	}

	sort.Slice(printers, func(i, j int) bool {
		return printers[i]["name"].(string) < printers[j]["name"].(string)
	})

	doc := map[string]interface{}{
		"printers": printers,
		models.DocKeySummary: map[string]interface{}{
			"total_count":      len(printers),
			"status_breakdown": statusBreakdown,
			"default_printer":  defaultPrinter,
		},
	}

	stampDocument(doc, p.Name(), serialNumber, collectionTime(payload))

	return &Result{Document: doc}, nil
}

func (p *printersProcessor) Validate(document map[string]interface{}) bool {
	return validateDocument(document, p.Name())
}

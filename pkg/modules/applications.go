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

	"github.com/carverauto/fleetpulse/pkg/models"
)

const topPublisherCount = 5

type applicationsProcessor struct{}

func newApplicationsProcessor() *applicationsProcessor {
	return &applicationsProcessor{}
}

func (*applicationsProcessor) Name() string {
	return "applications"
}

func (p *applicationsProcessor) Process(payload map[string]interface{}, serialNumber string) (*Result, error) {
	data, err := section(payload, p.Name())
	if err != nil {
		return nil, err
	}

	raw := data["installed"]
	if raw == nil {
		raw = data["apps"]
	}
	if raw == nil {
		raw = data["applications"]
	}

	apps := make([]map[string]interface{}, 0)
	publishers := make(map[string]int)
	categories := make(map[string]int)

	for _, item := range asList(raw) {
		name := firstNonEmpty(item, "name", "display_name", "displayName")
		if name == "" {
			continue
		}

		publisher := firstNonEmpty(item, "publisher", "vendor", "author")
		category := firstNonEmpty(item, "category", "type")

		app := map[string]interface{}{
			"name":       name,
			"version":    firstNonEmpty(item, "version", "display_version"),
			"publisher":  publisher,
			"category":   category,
			"size_bytes": asInt64(item["size"], 0),
		}

		if installed := normalizeTimestamp(asString(item["install_date"], asString(item["installDate"], ""))); installed != "" {
			app["install_date"] = installed
		}

		if publisher != "" {
			publishers[publisher]++
		}

		if category != "" {
			categories[category]++
		}

		apps = append(apps, app)
	}

	sort.Slice(apps, func(i, j int) bool {
		return apps[i]["name"].(string) < apps[j]["name"].(string)
	})

	doc := map[string]interface{}{
		"applications": apps,
		models.DocKeySummary: map[string]interface{}{
			"total_count":        len(apps),
			"top_publishers":     topCounts(publishers, topPublisherCount),
			"category_breakdown": categories,
		},
	}

	stampDocument(doc, p.Name(), serialNumber, collectionTime(payload))

	return &Result{Document: doc}, nil
}

func (p *applicationsProcessor) Validate(document map[string]interface{}) bool {
	return validateDocument(document, p.Name())
}

// topCounts returns the n highest-count keys as {name, count} objects,
// ties broken by name so output is stable.
func topCounts(counts map[string]int, n int) []map[string]interface{} {
	type entry struct {
		name  string
		count int
	}

	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name: name, count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].name < entries[j].name
		}

		return entries[i].count > entries[j].count
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{"name": e.name, "count": e.count})
	}

	return out
}

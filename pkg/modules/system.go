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

const topProcessCount = 5

type systemProcessor struct{}

func newSystemProcessor() *systemProcessor {
	return &systemProcessor{}
}

func (*systemProcessor) Name() string {
	return "system"
}

func (p *systemProcessor) Process(payload map[string]interface{}, serialNumber string) (*Result, error) {
	data, err := section(payload, p.Name())
	if err != nil {
		return nil, err
	}

	doc := map[string]interface{}{
		"os": p.normalizeOS(data),
	}

	if uptime := asInt64(data["uptime_seconds"], asInt64(data["uptime"], 0)); uptime > 0 {
		doc["uptime_seconds"] = uptime
	}

	if boot := normalizeTimestamp(firstNonEmpty(data, "boot_time", "bootTime", "last_boot")); boot != "" {
		doc["boot_time"] = boot
	}

	processes := p.normalizeProcesses(data)
	services := p.normalizeServices(data)

	doc["processes"] = processes
	doc["services"] = services

	topProcesses := make([]string, 0, topProcessCount)
	for i, proc := range processes {
		if i == topProcessCount {
			break
		}

		topProcesses = append(topProcesses, proc["name"].(string))
	}

	doc[models.DocKeySummary] = map[string]interface{}{
		"process_count": len(processes),
		"service_count": len(services),
		"top_processes": topProcesses,
	}

	stampDocument(doc, p.Name(), serialNumber, collectionTime(payload))

	return &Result{Document: doc}, nil
}

func (p *systemProcessor) Validate(document map[string]interface{}) bool {
	return validateDocument(document, p.Name())
}

func (*systemProcessor) normalizeOS(data map[string]interface{}) map[string]interface{} {
	os, _ := data["os"].(map[string]interface{})
	if os == nil {
		os = data
	}

	return map[string]interface{}{
		"name":         firstNonEmpty(os, "name", "os_name", "platform"),
		"version":      firstNonEmpty(os, "version", "os_version", "release"),
		"build":        firstNonEmpty(os, "build", "build_number", "buildNumber"),
		"architecture": firstNonEmpty(os, "architecture", "arch"),
	}
}

// normalizeProcesses sorts by descending CPU share, ties broken by name.
func (*systemProcessor) normalizeProcesses(data map[string]interface{}) []map[string]interface{} {
	processes := make([]map[string]interface{}, 0)

	for _, item := range asList(data["processes"]) {
		name := firstNonEmpty(item, "name", "command")
		if name == "" {
			continue
		}

		processes = append(processes, map[string]interface{}{
			"name":        name,
			"pid":         asInt(item["pid"], 0),
			"cpu_percent": asFloat(item["cpu_percent"], asFloat(item["cpu"], 0)),
			"memory_mb":   asFloat(item["memory_mb"], asFloat(item["mem"], 0)),
			"user":        firstNonEmpty(item, "user", "username"),
		})
	}

	sort.Slice(processes, func(i, j int) bool {
		ci := processes[i]["cpu_percent"].(float64)
		cj := processes[j]["cpu_percent"].(float64)

		if ci == cj {
			return processes[i]["name"].(string) < processes[j]["name"].(string)
		}

		return ci > cj
	})

	return processes
}

func (*systemProcessor) normalizeServices(data map[string]interface{}) []map[string]interface{} {
	services := make([]map[string]interface{}, 0)

	for _, item := range asList(data["services"]) {
		name := firstNonEmpty(item, "name", "service_name")
		if name == "" {
			continue
		}

		services = append(services, map[string]interface{}{
			"name":       name,
			"status":     firstNonEmpty(item, "status", "state"),
			"start_type": firstNonEmpty(item, "start_type", "startType"),
		})
	}

	sort.Slice(services, func(i, j int) bool {
		return services[i]["name"].(string) < services[j]["name"].(string)
	})

	return services
}

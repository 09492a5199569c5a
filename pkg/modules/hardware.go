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

// lowDiskPercent flags a volume in the hardware summary when free space
// drops below this share of capacity.
const lowDiskPercent = 10.0

type hardwareProcessor struct{}

func newHardwareProcessor() *hardwareProcessor {
	return &hardwareProcessor{}
}

func (*hardwareProcessor) Name() string {
	return "hardware"
}

func (p *hardwareProcessor) Process(payload map[string]interface{}, serialNumber string) (*Result, error) {
	data, err := section(payload, p.Name())
	if err != nil {
		return nil, err
	}

	// A hardware section carrying none of the known keys is treated as
	// missing rather than normalized into an empty document.
	if !hasAnyKey(data, "model", "manufacturer", "vendor", "make", "product_name", "productName",
		"cpu", "memory", "storage", "disks", "volumes", "gpus") {
		return nil, ErrModuleDataMissing
	}

	doc := map[string]interface{}{
		"manufacturer": firstNonEmpty(data, "manufacturer", "vendor", "make"),
		"model":        firstNonEmpty(data, "model", "product_name", "productName"),
		"cpu":          p.normalizeCPU(data),
		"memory":       p.normalizeMemory(data),
	}

	storage, lowDisk := p.normalizeStorage(data)
	doc["storage"] = storage

	if gpus := p.normalizeGPUs(data); len(gpus) > 0 {
		doc["gpus"] = gpus
	}

	doc[models.DocKeySummary] = map[string]interface{}{
		"volume_count":     len(storage),
		"low_disk_volumes": lowDisk,
		"healthy":          len(lowDisk) == 0,
	}

	stampDocument(doc, p.Name(), serialNumber, collectionTime(payload))

	return &Result{Document: doc}, nil
}

func (p *hardwareProcessor) Validate(document map[string]interface{}) bool {
	return validateDocument(document, p.Name())
}

func (*hardwareProcessor) normalizeCPU(data map[string]interface{}) map[string]interface{} {
	cpu, _ := data["cpu"].(map[string]interface{})
	if cpu == nil {
		cpu = data
	}

	return map[string]interface{}{
		"brand":          firstNonEmpty(cpu, "brand", "name", "cpu_brand", "model"),
		"architecture":   firstNonEmpty(cpu, "architecture", "arch", "cpu_arch"),
		"physical_cores": asInt(cpu["physical_cores"], asInt(cpu["cores"], 0)),
		"logical_cores":  asInt(cpu["logical_cores"], asInt(cpu["threads"], 0)),
		"frequency_mhz":  asFloat(cpu["frequency_mhz"], asFloat(cpu["speed"], 0)),
	}
}

func (*hardwareProcessor) normalizeMemory(data map[string]interface{}) map[string]interface{} {
	mem, _ := data["memory"].(map[string]interface{})
	if mem == nil {
		mem = data
	}

	total := asInt64(mem["total_bytes"], asInt64(mem["total"], 0))
	available := asInt64(mem["available_bytes"], asInt64(mem["available"], 0))

	out := map[string]interface{}{
		"total_bytes":     total,
		"available_bytes": available,
	}

	if total > 0 && available > 0 {
		out["used_percent"] = float64(total-available) / float64(total) * 100
	}

	return out
}

func (*hardwareProcessor) normalizeStorage(data map[string]interface{}) (volumes []map[string]interface{}, lowDisk []string) {
	raw := data["storage"]
	if raw == nil {
		raw = data["disks"]
	}
	if raw == nil {
		raw = data["volumes"]
	}

	volumes = make([]map[string]interface{}, 0)

	for _, item := range asList(raw) {
		name := firstNonEmpty(item, "name", "mount_point", "mountPoint", "device")
		if name == "" {
			continue
		}

		total := asInt64(item["total_bytes"], asInt64(item["size"], 0))
		free := asInt64(item["free_bytes"], asInt64(item["free"], 0))

		volume := map[string]interface{}{
			"name":        name,
			"filesystem":  firstNonEmpty(item, "filesystem", "fs_type", "type"),
			"total_bytes": total,
			"free_bytes":  free,
		}

		if total > 0 {
			freePct := float64(free) / float64(total) * 100
			volume["free_percent"] = freePct

			if freePct < lowDiskPercent {
				lowDisk = append(lowDisk, name)
			}
		}

		volumes = append(volumes, volume)
	}

	sort.Slice(volumes, func(i, j int) bool {
		return volumes[i]["name"].(string) < volumes[j]["name"].(string)
	})

	if lowDisk == nil {
		lowDisk = []string{}
	}

	return volumes, lowDisk
}

func (*hardwareProcessor) normalizeGPUs(data map[string]interface{}) []map[string]interface{} {
	gpus := make([]map[string]interface{}, 0)

	for _, item := range asList(data["gpus"]) {
		name := firstNonEmpty(item, "name", "model")
		if name == "" {
			continue
		}

		gpus = append(gpus, map[string]interface{}{
			"name":      name,
			"vendor":    firstNonEmpty(item, "vendor", "manufacturer"),
			"vram_mb":   asInt64(item["vram_mb"], asInt64(item["memory"], 0)),
			"driver":    firstNonEmpty(item, "driver", "driver_version"),
			"is_active": asBool(item["is_active"], true),
		})
	}

	return gpus
}

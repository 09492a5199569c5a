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

type networkProcessor struct{}

func newNetworkProcessor() *networkProcessor {
	return &networkProcessor{}
}

func (*networkProcessor) Name() string {
	return "network"
}

func (p *networkProcessor) Process(payload map[string]interface{}, serialNumber string) (*Result, error) {
	data, err := section(payload, p.Name())
	if err != nil {
		return nil, err
	}

	raw := data["interfaces"]
	if raw == nil {
		raw = data["adapters"]
	}

	interfaces := make([]map[string]interface{}, 0)
	activeCount := 0
	primaryIP := ""

	for _, item := range asList(raw) {
		name := firstNonEmpty(item, "name", "interface", "adapter")
		if name == "" {
			continue
		}

		active := asBool(item["is_active"], strings.EqualFold(firstNonEmpty(item, "status", "state"), "up"))
		ip := firstNonEmpty(item, "ip_address", "ipAddress", "ipv4")

		iface := map[string]interface{}{
			"name":       name,
			"type":       firstNonEmpty(item, "type", "kind"),
			"mac":        strings.ToUpper(firstNonEmpty(item, "mac", "mac_address", "macAddress")),
			"ip_address": ip,
			"is_active":  active,
		}

		if speed := asInt64(item["speed_mbps"], asInt64(item["speed"], 0)); speed > 0 {
			iface["speed_mbps"] = speed
		}

		if active {
			activeCount++

			if primaryIP == "" && ip != "" && !strings.HasPrefix(ip, "127.") {
				primaryIP = ip
			}
		}

		interfaces = append(interfaces, iface)
	}

	sort.Slice(interfaces, func(i, j int) bool {
		return interfaces[i]["name"].(string) < interfaces[j]["name"].(string)
	})

	doc := map[string]interface{}{
		"interfaces": interfaces,
		"hostname":   firstNonEmpty(data, "hostname", "computer_name"),
		models.DocKeySummary: map[string]interface{}{
			"interface_count": len(interfaces),
			"active_count":    activeCount,
			"primary_ip":      primaryIP,
		},
	}

	if dns := data["dns_servers"]; dns != nil {
		doc["dns_servers"] = dns
	}

	stampDocument(doc, p.Name(), serialNumber, collectionTime(payload))

	return &Result{Document: doc}, nil
}

func (p *networkProcessor) Validate(document map[string]interface{}) bool {
	return validateDocument(document, p.Name())
}

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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetpulse/pkg/models"
)

const testSerial = "0F33V9G25083HJ"

func TestApplicationsProcessorSortsAndSummarizes(t *testing.T) {
	payload := map[string]interface{}{
		"applications": map[string]interface{}{
			"installed": []interface{}{
				map[string]interface{}{"name": "Zoom", "publisher": "Zoom Video", "version": "5.1"},
				map[string]interface{}{"name": "Chrome", "publisher": "Google", "category": "browser"},
				map[string]interface{}{"name": "Earth", "publisher": "Google", "category": "maps"},
				map[string]interface{}{"version": "1.0"}, // nameless, dropped
			},
		},
	}

	result, err := newApplicationsProcessor().Process(payload, testSerial)
	require.NoError(t, err)

	apps := result.Document["applications"].([]map[string]interface{})
	require.Len(t, apps, 3)
	require.Equal(t, "Chrome", apps[0]["name"])
	require.Equal(t, "Earth", apps[1]["name"])
	require.Equal(t, "Zoom", apps[2]["name"])

	summary := result.Document[models.DocKeySummary].(map[string]interface{})
	require.Equal(t, 3, summary["total_count"])

	top := summary["top_publishers"].([]map[string]interface{})
	require.Equal(t, "Google", top[0]["name"])
	require.Equal(t, 2, top[0]["count"])
}

func TestHardwareProcessorFlagsLowDisk(t *testing.T) {
	payload := map[string]interface{}{
		"hardware": map[string]interface{}{
			"model": "Latitude 7420",
			"cpu": map[string]interface{}{
				"brand": "Intel i7",
				"cores": "8",
			},
			"memory": map[string]interface{}{
				"total":     float64(16_000_000_000),
				"available": float64(4_000_000_000),
			},
			"storage": []interface{}{
				map[string]interface{}{"name": "/", "size": float64(500_000_000_000), "free": float64(10_000_000_000)},
				map[string]interface{}{"name": "/data", "size": float64(500_000_000_000), "free": float64(250_000_000_000)},
			},
		},
	}

	result, err := newHardwareProcessor().Process(payload, testSerial)
	require.NoError(t, err)

	cpu := result.Document["cpu"].(map[string]interface{})
	require.Equal(t, 8, cpu["physical_cores"])

	memory := result.Document["memory"].(map[string]interface{})
	require.InDelta(t, 75.0, memory["used_percent"].(float64), 0.01)

	summary := result.Document[models.DocKeySummary].(map[string]interface{})
	require.Equal(t, []string{"/"}, summary["low_disk_volumes"])
	require.False(t, summary["healthy"].(bool))
}

func TestSystemProcessorSortsProcessesByCPU(t *testing.T) {
	payload := map[string]interface{}{
		"system": map[string]interface{}{
			"os": map[string]interface{}{"name": "macOS", "version": "15.1"},
			"processes": []interface{}{
				map[string]interface{}{"name": "idle", "cpu_percent": float64(0.1)},
				map[string]interface{}{"name": "chrome", "cpu_percent": float64(42.5)},
				map[string]interface{}{"name": "backupd", "cpu_percent": float64(42.5)},
			},
			"services": []interface{}{
				map[string]interface{}{"name": "sshd", "status": "running"},
				map[string]interface{}{"name": "cron", "status": "running"},
			},
		},
	}

	result, err := newSystemProcessor().Process(payload, testSerial)
	require.NoError(t, err)

	processes := result.Document["processes"].([]map[string]interface{})
	require.Equal(t, "backupd", processes[0]["name"]) // CPU tie broken by name
	require.Equal(t, "chrome", processes[1]["name"])
	require.Equal(t, "idle", processes[2]["name"])

	services := result.Document["services"].([]map[string]interface{})
	require.Equal(t, "cron", services[0]["name"])

	summary := result.Document[models.DocKeySummary].(map[string]interface{})
	require.Equal(t, 3, summary["process_count"])
	require.Equal(t, []string{"backupd", "chrome", "idle"}, summary["top_processes"])
}

func TestNetworkProcessorPicksPrimaryIP(t *testing.T) {
	payload := map[string]interface{}{
		"network": map[string]interface{}{
			"interfaces": []interface{}{
				map[string]interface{}{"name": "lo0", "ip_address": "127.0.0.1", "status": "up"},
				map[string]interface{}{"name": "en0", "ip_address": "10.1.2.3", "status": "up", "mac": "aa:bb:cc:dd:ee:ff"},
				map[string]interface{}{"name": "en1", "status": "down"},
			},
		},
	}

	result, err := newNetworkProcessor().Process(payload, testSerial)
	require.NoError(t, err)

	summary := result.Document[models.DocKeySummary].(map[string]interface{})
	require.Equal(t, "10.1.2.3", summary["primary_ip"])
	require.Equal(t, 2, summary["active_count"])
	require.Equal(t, 3, summary["interface_count"])

	interfaces := result.Document["interfaces"].([]map[string]interface{})
	require.Equal(t, "en0", interfaces[0]["name"])
	require.Equal(t, "AA:BB:CC:DD:EE:FF", interfaces[0]["mac"])
}

func TestPassthroughPreservesRawSection(t *testing.T) {
	payload := map[string]interface{}{
		"security": map[string]interface{}{
			"firewall_enabled": true,
			"sip_status":       "enabled",
			"novel_field":      map[string]interface{}{"future": "schema"},
		},
	}

	p := newPassthroughProcessor("security")
	result, err := p.Process(payload, testSerial)
	require.NoError(t, err)

	require.Equal(t, true, result.Document["firewall_enabled"])
	require.Equal(t, "enabled", result.Document["sip_status"])
	require.Equal(t, map[string]interface{}{"future": "schema"}, result.Document["novel_field"])
	require.Equal(t, "security", result.Document[models.DocKeyModuleID])
	require.Equal(t, testSerial, result.Document[models.DocKeyDeviceID])

	summary := result.Document[models.DocKeySummary].(map[string]interface{})
	require.Equal(t, 3, summary["field_count"])
	require.True(t, p.Validate(result.Document))
}

func TestProcessorsRejectEmptySection(t *testing.T) {
	payloads := []map[string]interface{}{
		{},
		{"hardware": nil},
		{"hardware": map[string]interface{}{}},
		{"hardware": "not an object"},
	}

	p := newHardwareProcessor()
	for i, payload := range payloads {
		_, err := p.Process(payload, testSerial)
		require.ErrorIs(t, err, ErrModuleDataMissing, "payload %d", i)
	}
}

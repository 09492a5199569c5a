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

func TestMapInstallStatus(t *testing.T) {
	tests := []struct {
		input string
		want  InstallStatus
	}{
		{"Installed", InstallStatusInstalled},
		{"Install Loop", InstallStatusInstalled},
		{"install succeeded", InstallStatusInstalled},
		{"Update Available", InstallStatusPending},
		{"Downloading", InstallStatusPending},
		{"Needs Attention", InstallStatusWarning},
		{"Failed", InstallStatusError},
		{"install failed", InstallStatusError},
		{"Uninstalled", InstallStatusRemoved},
		{"was removed by admin", InstallStatusRemoved},
		{"Blorp", InstallStatusPending},
		{"", InstallStatusPending},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, mapInstallStatus(tt.input), "input %q", tt.input)
	}
}

func TestInstallsProcessorSortsByUrgency(t *testing.T) {
	payload := map[string]interface{}{
		"installs": map[string]interface{}{
			"managed_installs": []interface{}{
				map[string]interface{}{"name": "zsh-config", "status": "Installed"},
				map[string]interface{}{"name": "antivirus", "status": "Failed"},
				map[string]interface{}{"name": "browser", "status": "Update Available"},
				map[string]interface{}{"name": "old-agent", "status": "Uninstalled"},
			},
		},
	}

	p := newInstallsProcessor()
	result, err := p.Process(payload, "0F33V9G25083HJ")
	require.NoError(t, err)

	installs := result.Document["installs"].([]map[string]interface{})
	require.Len(t, installs, 4)
	require.Equal(t, "antivirus", installs[0]["name"])
	require.Equal(t, "browser", installs[1]["name"])
	require.Equal(t, "zsh-config", installs[2]["name"])
	require.Equal(t, "old-agent", installs[3]["name"])

	summary := result.Document[models.DocKeySummary].(map[string]interface{})
	require.Equal(t, 1, summary["attention_needed"])
	require.True(t, p.Validate(result.Document))
}

func TestInstallsProcessorSurfacesLoopEvent(t *testing.T) {
	payload := map[string]interface{}{
		"installs": map[string]interface{}{
			"managed_installs": []interface{}{
				map[string]interface{}{"name": "stuck-pkg", "status": "Install Loop"},
				map[string]interface{}{"name": "fine-pkg", "status": "Installed"},
			},
		},
	}

	result, err := newInstallsProcessor().Process(payload, "0F33V9G25083HJ")
	require.NoError(t, err)
	require.Len(t, result.Events, 1)

	event := result.Events[0]
	require.Equal(t, models.KindWarning, event.Kind)
	require.Equal(t, "0F33V9G25083HJ", event.SerialNumber)
	require.Equal(t, []string{"stuck-pkg"}, event.Details["items"])

	// The looping install itself still normalizes to Installed.
	installs := result.Document["installs"].([]map[string]interface{})
	for _, install := range installs {
		if install["name"] == "stuck-pkg" {
			require.Equal(t, string(InstallStatusInstalled), install["status"])
		}
	}
}

func TestInstallsProcessorMissingSection(t *testing.T) {
	_, err := newInstallsProcessor().Process(map[string]interface{}{}, "0F33V9G25083HJ")
	require.ErrorIs(t, err, ErrModuleDataMissing)
}

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

package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testUUID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

func payloadWith(serial string) map[string]interface{} {
	return map[string]interface{}{
		"metadata": map[string]interface{}{
			"serialNumber": serial,
			"deviceId":     testUUID,
		},
	}
}

func TestResolveAcceptsHardwareSerials(t *testing.T) {
	serials := []string{
		"0F33V9G25083HJ",
		"C02XK1ZGJGH5",
		"5CD1234XYZ",
		"PF-3K9D2-X1",
	}

	for _, serial := range serials {
		res, err := Resolve(payloadWith(serial))
		require.NoError(t, err, "serial %q", serial)
		require.Equal(t, serial, res.SerialNumber)
		require.Equal(t, testUUID, res.DeviceUUID)
	}
}

func TestResolveRejectsHostnames(t *testing.T) {
	hostnames := []string{
		"JSMITH-0322",
		"WIN-GM0MB0JR",
		"DESKTOP-AB12CD",
		"LAPTOP-XY99ZZ",
		"WORKSTATION-A1",
		"PC-FRONTDESK1",
		"ANIM-STD-LAB-11",
		"MATH-DEPT-ROOM-204",
		"BUILD-SERVER",
	}

	for _, hostname := range hostnames {
		_, err := Resolve(payloadWith(hostname))
		require.ErrorIs(t, err, ErrHostnameSerial, "hostname %q", hostname)
	}
}

func TestResolveSerialFallbackChain(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		want    string
	}{
		{
			name: "metadata wins over top level",
			payload: map[string]interface{}{
				"metadata":     map[string]interface{}{"serialNumber": "META1234", "deviceId": testUUID},
				"serialNumber": "TOP56789",
			},
			want: "META1234",
		},
		{
			name: "top level serial",
			payload: map[string]interface{}{
				"serialNumber": "TOP56789",
				"deviceId":     testUUID,
			},
			want: "TOP56789",
		},
		{
			name: "legacy underscore metadata",
			payload: map[string]interface{}{
				"_metadata": map[string]interface{}{"deviceId": "LEG4CY99"},
				"deviceId":  testUUID,
			},
			want: "LEG4CY99",
		},
		{
			name: "inventory snake case",
			payload: map[string]interface{}{
				"inventory": map[string]interface{}{
					"serial_number": "INV12345",
					"uuid":          testUUID,
				},
			},
			want: "INV12345",
		},
		{
			name: "hostname in metadata falls through to inventory",
			payload: map[string]interface{}{
				"metadata": map[string]interface{}{"serialNumber": "DESKTOP-AB12CD", "deviceId": testUUID},
				"inventory": map[string]interface{}{
					"device_serial": "INV12345",
				},
			},
			want: "INV12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.payload)
			require.NoError(t, err)
			require.Equal(t, tt.want, res.SerialNumber)
		})
	}
}

func TestResolveFailsWithoutSerial(t *testing.T) {
	_, err := Resolve(map[string]interface{}{
		"deviceId": testUUID,
	})
	require.ErrorIs(t, err, ErrNoSerialNumber)
}

func TestResolveFailsWithoutUUID(t *testing.T) {
	_, err := Resolve(map[string]interface{}{
		"serialNumber": "0F33V9G25083HJ",
	})
	require.ErrorIs(t, err, ErrNoDeviceUUID)

	// Too short and unhyphenated values fail the loose shape check.
	_, err = Resolve(map[string]interface{}{
		"serialNumber": "0F33V9G25083HJ",
		"deviceId":     "abc123",
	})
	require.ErrorIs(t, err, ErrNoDeviceUUID)
}

func TestResolveTrimsAndSkipsShortCandidates(t *testing.T) {
	res, err := Resolve(map[string]interface{}{
		"metadata": map[string]interface{}{
			"serialNumber": "  X1  ", // too short once trimmed
			"deviceId":     testUUID,
		},
		"serialNumber": "  0F33V9G25083HJ  ",
	})
	require.NoError(t, err)
	require.Equal(t, "0F33V9G25083HJ", res.SerialNumber)
}

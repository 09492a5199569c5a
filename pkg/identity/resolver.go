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

// Package identity resolves a stable device identity out of an
// arbitrarily-shaped telemetry payload. It is the single enforcement point
// for hostname rejection: several client versions historically fell back to
// the machine's network hostname as a fake serial number, and a hostname
// stored as a serial corrupts device identity permanently.
package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNoSerialNumber = errors.New("no resolvable serial number in payload")
	ErrHostnameSerial = errors.New("serial number candidate matches a hostname pattern")
	ErrNoDeviceUUID   = errors.New("no resolvable device uuid in payload")
)

const (
	minSerialLength = 5
	maxSerialLength = 64
	minUUIDLength   = 32
)

// hostnamePatterns match machine names that client bugs have shipped in the
// serial number field. Ordered roughly by how often each shows up in the wild.
var hostnamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(DESKTOP|LAPTOP|WORKSTATION|PC)-`),
	regexp.MustCompile(`(?i)^WIN-`),
	// Lab/room naming: ANIM-STD-LAB-11.
	regexp.MustCompile(`(?i)^[A-Z]+(?:-[A-Z]+)+-\d+$`),
	// Username-style names: JSMITH-0322.
	regexp.MustCompile(`(?i)^[A-Z]{4,}-\d{3,5}$`),
	// Letters and hyphens only; real hardware serials always carry digits.
	regexp.MustCompile(`(?i)^[A-Z]+(?:-[A-Z]+)+$`),
}

var digitRe = regexp.MustCompile(`\d`)

// Resolution carries the two identifiers device registration requires.
type Resolution struct {
	SerialNumber string
	DeviceUUID   string
}

// Resolve walks the serial number and device UUID fallback chains over the
// payload. Both chains must produce a value; a payload with only one of the
// two identifiers fails the whole ingestion.
func Resolve(payload map[string]interface{}) (*Resolution, error) {
	serial, err := resolveSerialNumber(payload)
	if err != nil {
		return nil, err
	}

	uuid, err := resolveDeviceUUID(payload)
	if err != nil {
		return nil, err
	}

	return &Resolution{SerialNumber: serial, DeviceUUID: uuid}, nil
}

// serialCandidates is the ordered fallback chain; first usable match wins.
func serialCandidates(payload map[string]interface{}) []string {
	return []string{
		nestedString(payload, "metadata", "serialNumber"),
		topString(payload, "serialNumber"),
		nestedString(payload, "_metadata", "deviceId"),
		nestedString(payload, "inventory", "serialNumber"),
		nestedString(payload, "inventory", "serial_number"),
		nestedString(payload, "inventory", "device_serial"),
	}
}

func resolveSerialNumber(payload map[string]interface{}) (string, error) {
	sawHostname := false

	for _, candidate := range serialCandidates(payload) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}

		if len(candidate) < minSerialLength || len(candidate) > maxSerialLength {
			continue
		}

		if isHostname(candidate) {
			sawHostname = true
			continue
		}

		return candidate, nil
	}

	if sawHostname {
		return "", ErrHostnameSerial
	}

	return "", ErrNoSerialNumber
}

// isHostname reports whether a serial number candidate looks like a machine
// name rather than a hardware serial.
func isHostname(candidate string) bool {
	if !digitRe.MatchString(candidate) {
		return true
	}

	for _, pattern := range hostnamePatterns {
		if pattern.MatchString(candidate) {
			return true
		}
	}

	return false
}

func uuidCandidates(payload map[string]interface{}) []string {
	return []string{
		nestedString(payload, "metadata", "deviceId"),
		topString(payload, "deviceId"),
		nestedString(payload, "inventory", "uuid"),
		nestedString(payload, "inventory", "deviceId"),
	}
}

func resolveDeviceUUID(payload map[string]interface{}) (string, error) {
	for _, candidate := range uuidCandidates(payload) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}

		if looksLikeUUID(candidate) {
			return candidate, nil
		}
	}

	return "", ErrNoDeviceUUID
}

// looksLikeUUID is a deliberately loose shape check: a hyphenated token of at
// least 32 characters. Clients have shipped both RFC 4122 UUIDs and vendor
// identifiers here.
func looksLikeUUID(candidate string) bool {
	return len(candidate) >= minUUIDLength && strings.Contains(candidate, "-")
}

func topString(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}

	if s, ok := payload[key].(string); ok {
		return s
	}

	return ""
}

func nestedString(payload map[string]interface{}, outer, inner string) string {
	if payload == nil {
		return ""
	}

	nested, ok := payload[outer].(map[string]interface{})
	if !ok {
		return ""
	}

	switch v := nested[inner].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

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
	"strconv"
	"strings"
)

// Type coercion helpers for client payload values. JSON decoding hands every
// number over as float64 and client versions have shipped numbers as strings,
// so each helper accepts both and falls back to a caller-supplied default.

func asString(v interface{}, def string) string {
	switch value := v.(type) {
	case string:
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}

		return def
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return def
	}
}

func asInt(v interface{}, def int) int {
	return int(asInt64(v, int64(def)))
}

func asInt64(v interface{}, def int64) int64 {
	switch value := v.(type) {
	case float64:
		return int64(value)
	case int:
		return int64(value)
	case int64:
		return value
	case string:
		if parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return parsed
		}

		// Some clients send integers formatted as floats ("12.0").
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return int64(parsed)
		}

		return def
	default:
		return def
	}
}

func asFloat(v interface{}, def float64) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}

		return def
	default:
		return def
	}
}

func asBool(v interface{}, def bool) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on", "enabled":
			return true
		case "false", "0", "no", "off", "disabled":
			return false
		default:
			return def
		}
	case float64:
		return value != 0
	default:
		return def
	}
}

// asList returns the value as a slice of maps, tolerating both []interface{}
// of objects and a single object.
func asList(v interface{}) []map[string]interface{} {
	switch value := v.(type) {
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(value))

		for _, item := range value {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}

		return out
	case map[string]interface{}:
		return []map[string]interface{}{value}
	default:
		return nil
	}
}

// hasAnyKey reports whether the map carries at least one of the given keys.
func hasAnyKey(m map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		if _, ok := m[key]; ok {
			return true
		}
	}

	return false
}

// firstNonEmpty returns the first non-empty string coerced from the given
// keys of a map.
func firstNonEmpty(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := asString(m[key], ""); s != "" {
			return s
		}
	}

	return ""
}

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
	"strings"
	"time"
)

// timestampFormats is the ordered list of layouts seen across client
// versions. First successful parse wins.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	time.RFC1123,
}

// parseTimestamp tries each known layout and returns the first success in
// UTC, or nil when no layout matches.
func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, raw); err == nil {
			utc := ts.UTC()
			return &utc
		}
	}

	return nil
}

// normalizeTimestamp re-renders a client date string as RFC 3339, or returns
// the empty string when it cannot be parsed.
func normalizeTimestamp(raw string) string {
	if ts := parseTimestamp(raw); ts != nil {
		return ts.Format(time.RFC3339)
	}

	return ""
}

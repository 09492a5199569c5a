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

package db

import (
	"context"
	"fmt"
)

// schemaStatements bootstrap the pipeline's tables. Each statement is
// idempotent so startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		serial_number  TEXT PRIMARY KEY,
		device_uuid    TEXT NOT NULL,
		display_name   TEXT NOT NULL DEFAULT '',
		manufacturer   TEXT NOT NULL DEFAULT '',
		model          TEXT NOT NULL DEFAULT '',
		client_version TEXT NOT NULL DEFAULT '',
		first_seen     TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_seen      TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (device_uuid),
		UNIQUE (serial_number, device_uuid)
	)`,
	`CREATE TABLE IF NOT EXISTS module_documents (
		serial_number TEXT NOT NULL REFERENCES devices(serial_number),
		module_id     TEXT NOT NULL,
		data          JSONB NOT NULL,
		collected_at  TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (serial_number, module_id)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id            UUID PRIMARY KEY,
		serial_number TEXT NOT NULL,
		kind          TEXT NOT NULL CHECK (kind IN ('success', 'warning', 'error', 'info')),
		message       TEXT NOT NULL,
		details       JSONB NOT NULL DEFAULT '{}'::jsonb,
		timestamp     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_device_time
		ON events (serial_number, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_module_documents_collected
		ON module_documents (serial_number, collected_at DESC)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToInit, err)
		}
	}

	db.logger.Debug().Int("statements", len(schemaStatements)).Msg("Schema bootstrap complete")

	return nil
}

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
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carverauto/fleetpulse/pkg/models"
)

const insertEventSQL = `
	INSERT INTO events (id, serial_number, kind, message, details, timestamp)
	VALUES ($1, $2, $3, $4, $5::jsonb, $6)`

func (db *DB) insertEventTx(ctx context.Context, tx pgx.Tx, event *models.Event) error {
	if event == nil {
		return ErrEventNil
	}

	if event.SerialNumber == "" {
		return ErrSerialNumberRequired
	}

	id := event.ID
	if id == "" {
		id = uuid.New().String()
	}

	kind, valid := models.NormalizeEventKind(string(event.Kind))
	if !valid {
		db.logger.Warn().
			Str("kind", string(event.Kind)).
			Str("serial_number", event.SerialNumber).
			Msg("coercing unknown event kind to info")
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	detailsBytes, err := json.Marshal(event.Details)
	if err != nil || event.Details == nil {
		detailsBytes = []byte("{}")
	}

	_, err = tx.Exec(ctx, insertEventSQL,
		id,
		event.SerialNumber,
		string(kind),
		event.Message,
		detailsBytes,
		ts.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: event for %s: %w", ErrFailedToInsert, event.SerialNumber, err)
	}

	return nil
}

// InsertEvent appends a single event outside an ingestion transaction; used
// by the individual event submission path.
func (db *DB) InsertEvent(ctx context.Context, event *models.Event) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrFailedToInsert, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := db.insertEventTx(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (db *DB) ListEvents(ctx context.Context, serialNumber string, limit int) ([]*models.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, serial_number, kind, message, details, timestamp
		 FROM events
		 WHERE serial_number = $1
		 ORDER BY timestamp DESC
		 LIMIT $2`,
		serialNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: events for %s: %w", ErrFailedToQuery, serialNumber, err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)

	for rows.Next() {
		var (
			event        models.Event
			kind         string
			detailsBytes []byte
		)

		err := rows.Scan(&event.ID, &event.SerialNumber, &kind, &event.Message, &detailsBytes, &event.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: events for %s: %w", ErrFailedToQuery, serialNumber, err)
		}

		event.Kind = models.EventKind(kind)

		if len(detailsBytes) > 0 {
			if err := json.Unmarshal(detailsBytes, &event.Details); err != nil {
				return nil, fmt.Errorf("%w: events for %s: %w", ErrFailedToQuery, serialNumber, err)
			}
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}

func (db *DB) RecentEventKinds(ctx context.Context, serialNumber string, since time.Time) ([]models.EventKind, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT kind FROM events WHERE serial_number = $1 AND timestamp >= $2`,
		serialNumber, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: recent event kinds for %s: %w", ErrFailedToQuery, serialNumber, err)
	}
	defer rows.Close()

	kinds := make([]models.EventKind, 0, 4)

	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("%w: recent event kinds for %s: %w", ErrFailedToQuery, serialNumber, err)
		}

		kinds = append(kinds, models.EventKind(kind))
	}

	return kinds, rows.Err()
}

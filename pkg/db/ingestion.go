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

	"github.com/carverauto/fleetpulse/pkg/models"
)

// StoreIngestion writes one ingestion's unit of work: the device upsert,
// every successful module document, and the ingestion's events, all in a
// single transaction so a partial module set still yields a consistent
// device row plus whichever documents succeeded processing.
func (db *DB) StoreIngestion(ctx context.Context, device *models.Device, docs []*models.ModuleDocument, events []*models.Event) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrFailedToInsert, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := db.upsertDeviceTx(ctx, tx, device); err != nil {
		return err
	}

	for _, doc := range docs {
		if err := db.upsertModuleDocumentTx(ctx, tx, doc); err != nil {
			return err
		}
	}

	for _, event := range events {
		if err := db.insertEventTx(ctx, tx, event); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrFailedToInsert, err)
	}

	db.logger.Debug().
		Str("serial_number", device.SerialNumber).
		Int("module_documents", len(docs)).
		Int("events", len(events)).
		Msg("Stored ingestion")

	return nil
}

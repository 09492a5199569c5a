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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/carverauto/fleetpulse/pkg/models"
)

// upsertModuleDocumentSQL replaces the document wholesale: one row per
// (device, module), always the latest snapshot, never a history.
const upsertModuleDocumentSQL = `
	INSERT INTO module_documents (serial_number, module_id, data, collected_at, created_at, updated_at)
	VALUES ($1, $2, $3::jsonb, $4, now(), now())
	ON CONFLICT (serial_number, module_id) DO UPDATE SET
		data         = EXCLUDED.data,
		collected_at = EXCLUDED.collected_at,
		updated_at   = now()`

const selectModuleDocumentSQL = `
	SELECT serial_number, module_id, data, collected_at, created_at, updated_at
	FROM module_documents`

func (db *DB) upsertModuleDocumentTx(ctx context.Context, tx pgx.Tx, doc *models.ModuleDocument) error {
	if doc == nil {
		return ErrModuleDocumentNil
	}

	if doc.ModuleID == "" {
		return ErrModuleIDRequired
	}

	dataBytes, err := json.Marshal(doc.Data)
	if err != nil {
		db.logger.Warn().
			Err(err).
			Str("module_id", doc.ModuleID).
			Msg("failed to marshal module document; defaulting to empty object")

		dataBytes = []byte("{}")
	}

	_, err = tx.Exec(ctx, upsertModuleDocumentSQL,
		doc.SerialNumber,
		doc.ModuleID,
		dataBytes,
		doc.CollectedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: module %s for %s: %w", ErrFailedToInsert, doc.ModuleID, doc.SerialNumber, err)
	}

	return nil
}

func (db *DB) GetModuleDocument(ctx context.Context, serialNumber, moduleID string) (*models.ModuleDocument, error) {
	row := db.pool.QueryRow(ctx,
		selectModuleDocumentSQL+` WHERE serial_number = $1 AND module_id = $2`,
		serialNumber, moduleID)

	doc, err := scanModuleDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrModuleDocumentNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: module %s for %s: %w", ErrFailedToQuery, moduleID, serialNumber, err)
	}

	return doc, nil
}

func (db *DB) ListModuleDocuments(ctx context.Context, serialNumber string) ([]*models.ModuleDocument, error) {
	rows, err := db.pool.Query(ctx,
		selectModuleDocumentSQL+` WHERE serial_number = $1 ORDER BY module_id`,
		serialNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: modules for %s: %w", ErrFailedToQuery, serialNumber, err)
	}
	defer rows.Close()

	docs := make([]*models.ModuleDocument, 0)

	for rows.Next() {
		doc, err := scanModuleDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: modules for %s: %w", ErrFailedToQuery, serialNumber, err)
		}

		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (db *DB) LatestCollectedAt(ctx context.Context, serialNumber string) (*time.Time, error) {
	var latest *time.Time

	err := db.pool.QueryRow(ctx,
		`SELECT max(collected_at) FROM module_documents WHERE serial_number = $1`,
		serialNumber).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("%w: latest collection for %s: %w", ErrFailedToQuery, serialNumber, err)
	}

	return latest, nil
}

func scanModuleDocument(row pgx.Row) (*models.ModuleDocument, error) {
	var (
		doc       models.ModuleDocument
		dataBytes []byte
	)

	err := row.Scan(
		&doc.SerialNumber,
		&doc.ModuleID,
		&dataBytes,
		&doc.CollectedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(dataBytes) > 0 {
		if err := json.Unmarshal(dataBytes, &doc.Data); err != nil {
			return nil, err
		}
	}

	return &doc, nil
}

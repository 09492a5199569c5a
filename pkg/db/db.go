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

// Package db persists devices, module documents, and events in Postgres.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/fleetpulse/pkg/logger"
	"github.com/carverauto/fleetpulse/pkg/models"
)

// Service is the persistence contract the pipeline and read paths depend on.
type Service interface {
	// StoreIngestion writes one ingestion's device upsert, module document
	// upserts, and event appends in a single transaction.
	StoreIngestion(ctx context.Context, device *models.Device, docs []*models.ModuleDocument, events []*models.Event) error

	GetDevice(ctx context.Context, serialNumber string) (*models.Device, error)
	ListDevices(ctx context.Context, filter ListDevicesFilter) ([]*models.Device, error)

	GetModuleDocument(ctx context.Context, serialNumber, moduleID string) (*models.ModuleDocument, error)
	ListModuleDocuments(ctx context.Context, serialNumber string) ([]*models.ModuleDocument, error)

	// LatestCollectedAt returns the newest collected_at across the
	// device's module documents, or nil when it has none.
	LatestCollectedAt(ctx context.Context, serialNumber string) (*time.Time, error)

	InsertEvent(ctx context.Context, event *models.Event) error
	ListEvents(ctx context.Context, serialNumber string, limit int) ([]*models.Event, error)

	// RecentEventKinds returns the kinds of the device's events newer than
	// since; input to status derivation.
	RecentEventKinds(ctx context.Context, serialNumber string, since time.Time) ([]models.EventKind, error)

	Close()
}

// ListDevicesFilter narrows and pages the device listing.
type ListDevicesFilter struct {
	// NameContains is a case-insensitive substring match on display_name.
	NameContains string
	Limit        int
	Offset       int
}

// DB implements Service on a pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// New wraps an established pool and bootstraps the schema.
func New(ctx context.Context, pool *pgxpool.Pool, log logger.Logger) (*DB, error) {
	database := &DB{pool: pool, logger: log}

	if err := database.migrate(ctx); err != nil {
		return nil, err
	}

	return database, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

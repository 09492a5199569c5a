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
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/carverauto/fleetpulse/pkg/models"
)

const upsertDeviceSQL = `
	INSERT INTO devices (
		serial_number, device_uuid, display_name, manufacturer, model, client_version, first_seen, last_seen
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	ON CONFLICT (serial_number) DO UPDATE SET
		device_uuid    = EXCLUDED.device_uuid,
		display_name   = COALESCE(NULLIF(EXCLUDED.display_name, ''), devices.display_name),
		manufacturer   = COALESCE(NULLIF(EXCLUDED.manufacturer, ''), devices.manufacturer),
		model          = COALESCE(NULLIF(EXCLUDED.model, ''), devices.model),
		client_version = COALESCE(NULLIF(EXCLUDED.client_version, ''), devices.client_version),
		last_seen      = EXCLUDED.last_seen`

const selectDeviceSQL = `
	SELECT serial_number, device_uuid, display_name, manufacturer, model, client_version, first_seen, last_seen
	FROM devices`

func (db *DB) upsertDeviceTx(ctx context.Context, tx pgx.Tx, device *models.Device) error {
	if device == nil {
		return ErrDeviceNil
	}

	if device.SerialNumber == "" {
		return ErrSerialNumberRequired
	}

	if device.DeviceUUID == "" {
		return ErrDeviceUUIDRequired
	}

	_, err := tx.Exec(ctx, upsertDeviceSQL,
		device.SerialNumber,
		device.DeviceUUID,
		device.DisplayName,
		device.Manufacturer,
		device.Model,
		device.ClientVersion,
		device.LastSeen.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: device %s: %w", ErrFailedToInsert, device.SerialNumber, err)
	}

	return nil
}

func (db *DB) GetDevice(ctx context.Context, serialNumber string) (*models.Device, error) {
	row := db.pool.QueryRow(ctx, selectDeviceSQL+` WHERE serial_number = $1`, serialNumber)

	device, err := scanDevice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: device %s: %w", ErrFailedToQuery, serialNumber, err)
	}

	return device, nil
}

func (db *DB) ListDevices(ctx context.Context, filter ListDevicesFilter) ([]*models.Device, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := db.pool.Query(ctx,
		selectDeviceSQL+`
		WHERE ($1 = '' OR display_name ILIKE '%' || $1 || '%' OR serial_number ILIKE '%' || $1 || '%')
		ORDER BY last_seen DESC
		LIMIT $2 OFFSET $3`,
		filter.NameContains, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: devices: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	devices := make([]*models.Device, 0)

	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: devices: %w", ErrFailedToQuery, err)
		}

		devices = append(devices, device)
	}

	return devices, rows.Err()
}

func scanDevice(row pgx.Row) (*models.Device, error) {
	var device models.Device

	err := row.Scan(
		&device.SerialNumber,
		&device.DeviceUUID,
		&device.DisplayName,
		&device.Manufacturer,
		&device.Model,
		&device.ClientVersion,
		&device.FirstSeen,
		&device.LastSeen,
	)
	if err != nil {
		return nil, err
	}

	return &device, nil
}

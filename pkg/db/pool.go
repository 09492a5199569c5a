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
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/fleetpulse/pkg/logger"
	"github.com/carverauto/fleetpulse/pkg/models"
)

// NewPool dials the configured Postgres cluster and returns a pgx pool.
func NewPool(ctx context.Context, cfg *models.Database, log logger.Logger) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: database config is nil", ErrFailedToInit)
	}

	database := *cfg
	if database.Port == 0 {
		database.Port = 5432
	}

	connURL := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", database.Host, database.Port),
		Path:   "/" + database.Database,
	}

	if database.Username != "" {
		if database.Password != "" {
			connURL.User = url.UserPassword(database.Username, database.Password)
		} else {
			connURL.User = url.User(database.Username)
		}
	}

	query := connURL.Query()

	sslMode := database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	query.Set("sslmode", sslMode)

	if database.ApplicationName != "" {
		query.Set("application_name", database.ApplicationName)
	}

	connURL.RawQuery = query.Encode()

	poolConfig, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if database.MaxConnections > 0 {
		poolConfig.MaxConns = database.MaxConnections
	}

	if database.MinConnections > 0 {
		poolConfig.MinConns = database.MinConnections
	}

	if database.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(database.MaxConnLifetime)
	}

	if database.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = time.Duration(database.HealthCheckPeriod)
	}

	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = make(map[string]string)
	}

	for k, v := range database.ExtraRuntimeParams {
		if k == "" {
			continue
		}

		poolConfig.ConnConfig.RuntimeParams[k] = v
	}

	if database.StatementTimeout > 0 {
		timeout := time.Duration(database.StatementTimeout) / time.Millisecond
		poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", timeout)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", database.Host).
		Str("database", database.Database).
		Msg("Connected to Postgres")

	return pool, nil
}

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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetpulse/pkg/logger"
	"github.com/carverauto/fleetpulse/pkg/models"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "core.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"listen_addr": ":9000",
		"auth": {"passphrases": ["secret"]},
		"database": {
			"host": "localhost",
			"port": 5432,
			"database": "fleetpulse",
			"username": "fleetpulse",
			"max_conn_lifetime": "30m"
		},
		"status_lookback": "12h"
	}`)

	var cfg models.CoreConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg)
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.ListenAddr)
	require.Equal(t, []string{"secret"}, cfg.Auth.Passphrases)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 30*time.Minute, time.Duration(cfg.Database.MaxConnLifetime))
	require.Equal(t, 12*time.Hour, time.Duration(cfg.StatusLookback))
	require.Nil(t, cfg.NATS)
}

func TestLoadAndValidateAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `{
		"database": {"host": "localhost", "database": "fleetpulse"}
	}`)

	var cfg models.CoreConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg)
	require.NoError(t, err)
	require.Equal(t, ":8090", cfg.ListenAddr)
}

func TestLoadAndValidateRejectsMissingDatabase(t *testing.T) {
	path := writeConfigFile(t, `{"listen_addr": ":9000"}`)

	var cfg models.CoreConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "database")
}

func TestLoadAndValidateRejectsBadSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "carrier-pigeon")

	var cfg models.CoreConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "unused.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestEnvLoaderFields(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("FLEETPULSE_LISTEN_ADDR", ":7070")
	t.Setenv("FLEETPULSE_AUTH_PASSPHRASES", "alpha, beta")
	t.Setenv("FLEETPULSE_AUTH_DEV_MODE", "true")
	t.Setenv("FLEETPULSE_DATABASE_HOST", "db.internal")
	t.Setenv("FLEETPULSE_DATABASE_PORT", "5433")
	t.Setenv("FLEETPULSE_DATABASE_DATABASE", "fleetpulse")
	t.Setenv("FLEETPULSE_STATUS_LOOKBACK", "6h")

	var cfg models.CoreConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)

	require.Equal(t, ":7070", cfg.ListenAddr)
	require.Equal(t, []string{"alpha", "beta"}, cfg.Auth.Passphrases)
	require.True(t, cfg.Auth.DevMode)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 5433, cfg.Database.Port)
	require.Equal(t, 6*time.Hour, time.Duration(cfg.StatusLookback))

	// NATS stays nil when nothing under its prefix is set.
	require.Nil(t, cfg.NATS)
}

func TestEnvLoaderConfigJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("FLEETPULSE_CONFIG_JSON", `{
		"listen_addr": ":7071",
		"database": {"host": "localhost", "database": "fleetpulse"},
		"nats": {"url": "nats://localhost:4222"}
	}`)

	var cfg models.CoreConfig

	err := NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg)
	require.NoError(t, err)

	require.Equal(t, ":7071", cfg.ListenAddr)
	require.NotNil(t, cfg.NATS)
	require.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	require.Equal(t, "events", cfg.NATS.StreamName)
}

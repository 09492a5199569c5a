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

// Package app boots the ingestion service.
package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/fleetpulse/pkg/config"
	"github.com/carverauto/fleetpulse/pkg/core/api"
	"github.com/carverauto/fleetpulse/pkg/db"
	"github.com/carverauto/fleetpulse/pkg/ingest"
	"github.com/carverauto/fleetpulse/pkg/logger"
	"github.com/carverauto/fleetpulse/pkg/models"
	"github.com/carverauto/fleetpulse/pkg/modules"
	"github.com/carverauto/fleetpulse/pkg/natsutil"
)

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// Run boots the ingestion service and blocks until shutdown.
func Run(ctx context.Context, opts Options) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg models.CoreConfig
	if err := config.NewConfig(nil).LoadAndValidate(ctx, opts.ConfigPath, &cfg); err != nil {
		return err
	}

	logCfg := cfg.Logging
	if logCfg == nil {
		logCfg = logger.DefaultConfig()
	}

	mainLogger, err := logger.New(logCfg)
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.Database, mainLogger)
	if err != nil {
		return err
	}

	database, err := db.New(ctx, pool, mainLogger)
	if err != nil {
		pool.Close()
		return err
	}
	defer database.Close()

	orchestratorOpts := []ingest.Option{}

	if cfg.NATS != nil {
		publisher, nc, natsErr := natsutil.Connect(ctx, cfg.NATS, mainLogger)
		if natsErr != nil {
			return natsErr
		}
		defer nc.Close()

		orchestratorOpts = append(orchestratorOpts, ingest.WithEventPublisher(publisher))
	}

	auth := ingest.NewAuthenticator(cfg.Auth)
	registry := modules.NewRegistry()
	orchestrator := ingest.NewOrchestrator(registry, database, auth, mainLogger, orchestratorOpts...)

	lookback := time.Duration(cfg.StatusLookback)

	server := api.NewAPIServer(mainLogger,
		api.WithIngestionService(orchestrator),
		api.WithStore(database),
		api.WithAuthenticator(auth),
		api.WithStatusLookback(lookback),
	)

	mainLogger.Info().
		Str("listen_addr", cfg.ListenAddr).
		Int("modules", registry.Len()).
		Msg("Starting ingestion service")

	if err := server.Start(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	mainLogger.Info().Msg("Shutdown complete")

	return nil
}

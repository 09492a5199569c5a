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

// Package ingest drives one telemetry submission end to end: authenticate,
// resolve identity, fan out per-module processing, persist, summarize.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/fleetpulse/pkg/db"
	"github.com/carverauto/fleetpulse/pkg/identity"
	"github.com/carverauto/fleetpulse/pkg/logger"
	"github.com/carverauto/fleetpulse/pkg/models"
	"github.com/carverauto/fleetpulse/pkg/modules"
)

// EventPublisher is the optional side channel for ingestion events; the
// database rows remain the authoritative record.
type EventPublisher interface {
	PublishCollectionEvent(ctx context.Context, data models.CollectionEventData) error
}

// Orchestrator is the ingestion pipeline. It holds no per-request state;
// everything lives on the call stack of ProcessDeviceData.
type Orchestrator struct {
	registry  *modules.Registry
	store     db.Service
	auth      *Authenticator
	publisher EventPublisher
	logger    logger.Logger
	tracer    trace.Tracer
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithEventPublisher wires a JetStream publisher for collection events.
func WithEventPublisher(publisher EventPublisher) Option {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

func NewOrchestrator(registry *modules.Registry, store db.Service, auth *Authenticator, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		store:    store,
		auth:     auth,
		logger:   log,
		tracer:   otel.Tracer("fleetpulse/ingest"),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// moduleOutcome is one module's result crossing the fan-out channel.
type moduleOutcome struct {
	name   string
	result *modules.Result
	err    error
}

// ProcessDeviceData runs one ingestion. Authentication and identity failures
// reject the whole request; module failures are gathered per module and
// reported in the aggregate result.
func (o *Orchestrator) ProcessDeviceData(ctx context.Context, payload map[string]interface{}, authToken string) (*models.IngestionResult, error) {
	ctx, span := o.tracer.Start(ctx, "ingest.ProcessDeviceData")
	defer span.End()

	if authToken == "" {
		authToken, _ = payload["auth_token"].(string)
	}

	if err := o.auth.Authenticate(authToken); err != nil {
		return nil, err
	}

	canonicalizeModuleKeys(payload, o.registry.Names())

	resolution, err := identity.Resolve(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentity, err)
	}

	span.SetAttributes(attribute.String("device.serial_number", resolution.SerialNumber))

	detected := o.detectModules(payload)
	if len(detected) == 0 {
		return nil, ErrNoModules
	}

	outcomes := o.fanOut(ctx, payload, resolution.SerialNumber, detected)

	now := time.Now().UTC()
	docs := make([]*models.ModuleDocument, 0, len(outcomes))
	events := make([]*models.Event, 0, 2)
	failures := make([]string, 0)
	summary := make(map[string]interface{}, len(outcomes))
	processed := 0

	for _, outcome := range outcomes {
		if outcome.err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", outcome.name, outcome.err))
			continue
		}

		doc := outcome.result.Document
		processed++

		docs = append(docs, &models.ModuleDocument{
			SerialNumber: resolution.SerialNumber,
			ModuleID:     outcome.name,
			Data:         doc,
			CollectedAt:  documentCollectedAt(doc, now),
		})

		if s, ok := doc[models.DocKeySummary]; ok {
			summary[outcome.name] = s
		}

		events = append(events, outcome.result.Events...)
	}

	device := o.buildDevice(payload, resolution, now)
	events = append(events, collectionEvent(resolution.SerialNumber, processed, len(failures), now))

	if err := o.store.StoreIngestion(ctx, device, docs, events); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	o.publishCollection(ctx, resolution, processed, len(failures), now)

	result := &models.IngestionResult{
		Success:          true,
		SerialNumber:     resolution.SerialNumber,
		DeviceUUID:       resolution.DeviceUUID,
		ModulesProcessed: processed,
		ModulesFailed:    len(failures),
		SuccessRate:      successRate(processed, len(failures)),
		Errors:           failures,
		Summary:          summary,
	}

	o.logger.Info().
		Str("serial_number", resolution.SerialNumber).
		Int("modules_processed", processed).
		Int("modules_failed", len(failures)).
		Msg("Ingestion complete")

	return result, nil
}

// detectModules scans the payload's top-level keys and returns the known
// modules carrying non-empty data, sorted for deterministic dispatch.
// Absent modules are never processed so a partial payload cannot overwrite
// existing good data with an empty document.
func (o *Orchestrator) detectModules(payload map[string]interface{}) []string {
	detected := make([]string, 0, o.registry.Len())

	for _, name := range o.registry.Names() {
		data, ok := payload[name].(map[string]interface{})
		if !ok || len(data) == 0 {
			continue
		}

		detected = append(detected, name)
	}

	sort.Strings(detected)

	return detected
}

// fanOut dispatches one goroutine per detected module and gathers every
// outcome; a failed module never cancels its siblings.
func (o *Orchestrator) fanOut(ctx context.Context, payload map[string]interface{}, serialNumber string, detected []string) []moduleOutcome {
	var wg sync.WaitGroup

	outcomeChan := make(chan moduleOutcome, len(detected))

	for _, name := range detected {
		processor, ok := o.registry.Get(name)
		if !ok {
			continue
		}

		wg.Add(1)

		go func(name string, processor modules.Processor) {
			defer wg.Done()

			_, span := o.tracer.Start(ctx, "ingest.processModule",
				trace.WithAttributes(attribute.String("module", name)))
			defer span.End()

			result, err := processor.Process(payload, serialNumber)
			if err != nil {
				outcomeChan <- moduleOutcome{name: name, err: err}
				return
			}

			if !processor.Validate(result.Document) {
				outcomeChan <- moduleOutcome{name: name, err: modules.ErrModuleValidationFailed}
				return
			}

			outcomeChan <- moduleOutcome{name: name, result: result}
		}(name, processor)
	}

	wg.Wait()
	close(outcomeChan)

	outcomes := make([]moduleOutcome, 0, len(detected))
	for outcome := range outcomeChan {
		outcomes = append(outcomes, outcome)
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].name < outcomes[j].name
	})

	return outcomes
}

func (o *Orchestrator) buildDevice(payload map[string]interface{}, resolution *identity.Resolution, now time.Time) *models.Device {
	device := &models.Device{
		SerialNumber: resolution.SerialNumber,
		DeviceUUID:   resolution.DeviceUUID,
		LastSeen:     now,
	}

	if meta, ok := payload["metadata"].(map[string]interface{}); ok {
		device.DisplayName, _ = meta["deviceName"].(string)
		device.ClientVersion, _ = meta["clientVersion"].(string)
	}

	if hardware, ok := payload["hardware"].(map[string]interface{}); ok {
		device.Manufacturer, _ = hardware["manufacturer"].(string)
		device.Model, _ = hardware["model"].(string)
	}

	return device
}

func (o *Orchestrator) publishCollection(ctx context.Context, resolution *identity.Resolution, processed, failed int, now time.Time) {
	if o.publisher == nil {
		return
	}

	data := models.CollectionEventData{
		SerialNumber:     resolution.SerialNumber,
		DeviceUUID:       resolution.DeviceUUID,
		ModulesProcessed: processed,
		ModulesFailed:    failed,
		Timestamp:        now,
	}

	if err := o.publisher.PublishCollectionEvent(ctx, data); err != nil {
		o.logger.Warn().
			Err(err).
			Str("serial_number", resolution.SerialNumber).
			Msg("Failed to publish collection event")
	}
}

func collectionEvent(serialNumber string, processed, failed int, now time.Time) *models.Event {
	kind := models.KindSuccess
	message := "collection completed"

	if failed > 0 {
		kind = models.KindWarning
		message = "collection completed with module failures"
	}

	return &models.Event{
		ID:           uuid.New().String(),
		SerialNumber: serialNumber,
		Kind:         kind,
		Message:      message,
		Details: map[string]interface{}{
			"modules_processed": processed,
			"modules_failed":    failed,
		},
		Timestamp: now,
	}
}

// canonicalizeModuleKeys folds capitalized module keys ("Hardware") down to
// their canonical lower-case names at the pipeline boundary, so processors
// never deal with client casing drift.
func canonicalizeModuleKeys(payload map[string]interface{}, known []string) {
	for _, name := range known {
		if _, ok := payload[name]; ok {
			continue
		}

		capitalized := strings.ToUpper(name[:1]) + name[1:]
		if value, ok := payload[capitalized]; ok {
			payload[name] = value
			delete(payload, capitalized)
		}
	}
}

func documentCollectedAt(doc map[string]interface{}, fallback time.Time) time.Time {
	raw, ok := doc[models.DocKeyCollectedAt].(string)
	if !ok {
		return fallback
	}

	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC()
	}

	return fallback
}

func successRate(processed, failed int) float64 {
	total := processed + failed

	if total == 0 {
		return 0
	}

	return float64(processed) / float64(total) * 100
}

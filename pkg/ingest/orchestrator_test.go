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

package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetpulse/pkg/db"
	"github.com/carverauto/fleetpulse/pkg/logger"
	"github.com/carverauto/fleetpulse/pkg/models"
	"github.com/carverauto/fleetpulse/pkg/modules"
)

const (
	testSerial = "0F33V9G25083HJ"
	testUUID   = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	testToken  = "collection-passphrase"
)

// fakeStore records what the orchestrator persists.
type fakeStore struct {
	device    *models.Device
	docs      []*models.ModuleDocument
	events    []*models.Event
	storeErr  error
	storeCall int
}

func (f *fakeStore) StoreIngestion(_ context.Context, device *models.Device, docs []*models.ModuleDocument, events []*models.Event) error {
	f.storeCall++

	if f.storeErr != nil {
		return f.storeErr
	}

	f.device = device
	f.docs = docs
	f.events = events

	return nil
}

func (*fakeStore) GetDevice(context.Context, string) (*models.Device, error) { return nil, nil }
func (*fakeStore) ListDevices(context.Context, db.ListDevicesFilter) ([]*models.Device, error) {
	return nil, nil
}
func (*fakeStore) GetModuleDocument(context.Context, string, string) (*models.ModuleDocument, error) {
	return nil, nil
}
func (*fakeStore) ListModuleDocuments(context.Context, string) ([]*models.ModuleDocument, error) {
	return nil, nil
}
func (*fakeStore) LatestCollectedAt(context.Context, string) (*time.Time, error) { return nil, nil }
func (*fakeStore) InsertEvent(context.Context, *models.Event) error              { return nil }
func (*fakeStore) ListEvents(context.Context, string, int) ([]*models.Event, error) {
	return nil, nil
}
func (*fakeStore) RecentEventKinds(context.Context, string, time.Time) ([]models.EventKind, error) {
	return nil, nil
}
func (*fakeStore) Close() {}

func newTestOrchestrator(store *fakeStore, opts ...Option) *Orchestrator {
	auth := NewAuthenticator(models.AuthConfig{Passphrases: []string{testToken}})
	return NewOrchestrator(modules.NewRegistry(), store, auth, logger.NewTestLogger(), opts...)
}

func basePayload() map[string]interface{} {
	return map[string]interface{}{
		"metadata": map[string]interface{}{
			"serialNumber":  testSerial,
			"deviceId":      testUUID,
			"clientVersion": "3.2.1",
			"deviceName":    "build-box",
			"collectedAt":   "2026-08-30T10:00:00Z",
		},
		"inventory": map[string]interface{}{"asset_tag": "A-100"},
		"system": map[string]interface{}{
			"os": map[string]interface{}{"name": "macOS", "version": "15.1"},
		},
	}
}

func TestProcessDeviceDataHappyPath(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store)

	result, err := o.ProcessDeviceData(context.Background(), basePayload(), testToken)
	require.NoError(t, err)

	require.True(t, result.Success)
	require.Equal(t, testSerial, result.SerialNumber)
	require.Equal(t, testUUID, result.DeviceUUID)
	require.Equal(t, 2, result.ModulesProcessed)
	require.Equal(t, 0, result.ModulesFailed)
	require.InDelta(t, 100.0, result.SuccessRate, 0.01)
	require.Contains(t, result.Summary, "inventory")
	require.Contains(t, result.Summary, "system")

	require.NotNil(t, store.device)
	require.Equal(t, "build-box", store.device.DisplayName)
	require.Equal(t, "3.2.1", store.device.ClientVersion)
	require.Len(t, store.docs, 2)

	// One collection-completed event with success kind.
	require.Len(t, store.events, 1)
	require.Equal(t, models.KindSuccess, store.events[0].Kind)
}

func TestProcessDeviceDataRejectsBadToken(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store)

	_, err := o.ProcessDeviceData(context.Background(), basePayload(), "wrong")
	require.ErrorIs(t, err, ErrAuthentication)
	require.Zero(t, store.storeCall)
}

func TestProcessDeviceDataFailsClosedWhenUnconfigured(t *testing.T) {
	store := &fakeStore{}
	auth := NewAuthenticator(models.AuthConfig{})
	o := NewOrchestrator(modules.NewRegistry(), store, auth, logger.NewTestLogger())

	_, err := o.ProcessDeviceData(context.Background(), basePayload(), testToken)
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestProcessDeviceDataAllowsDevModeWithoutCredentials(t *testing.T) {
	store := &fakeStore{}
	auth := NewAuthenticator(models.AuthConfig{DevMode: true})
	o := NewOrchestrator(modules.NewRegistry(), store, auth, logger.NewTestLogger())

	result, err := o.ProcessDeviceData(context.Background(), basePayload(), "")
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestProcessDeviceDataTokenFromPayload(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store)

	payload := basePayload()
	payload["auth_token"] = testToken

	_, err := o.ProcessDeviceData(context.Background(), payload, "")
	require.NoError(t, err)
}

func TestProcessDeviceDataRejectsHostnameIdentity(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store)

	payload := basePayload()
	payload["metadata"].(map[string]interface{})["serialNumber"] = "DESKTOP-AB12CD"

	_, err := o.ProcessDeviceData(context.Background(), payload, testToken)
	require.ErrorIs(t, err, ErrIdentity)
	require.Zero(t, store.storeCall)
}

func TestProcessDeviceDataPartialFailureIsolation(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store)

	payload := basePayload()
	// Hardware carries no recognizable fields; inventory and system are
	// well-formed and must persist regardless.
	payload["hardware"] = map[string]interface{}{"junk": true}

	result, err := o.ProcessDeviceData(context.Background(), payload, testToken)
	require.NoError(t, err)

	require.True(t, result.Success)
	require.Equal(t, 2, result.ModulesProcessed)
	require.Equal(t, 1, result.ModulesFailed)
	require.Contains(t, result.Errors[0], "hardware")

	require.Len(t, store.docs, 2)

	persisted := []string{store.docs[0].ModuleID, store.docs[1].ModuleID}
	require.ElementsMatch(t, []string{"inventory", "system"}, persisted)

	// The collection event downgrades to a warning on partial failure.
	require.Len(t, store.events, 1)
	require.Equal(t, models.KindWarning, store.events[0].Kind)
}

func TestProcessDeviceDataGathersModuleErrors(t *testing.T) {
	store := &fakeStore{}
	auth := NewAuthenticator(models.AuthConfig{Passphrases: []string{testToken}})

	registry := modules.NewRegistryWith(&failingProcessor{name: "inventory"})
	o := NewOrchestrator(registry, store, auth, logger.NewTestLogger())

	result, err := o.ProcessDeviceData(context.Background(), basePayload(), testToken)
	require.NoError(t, err)

	require.Equal(t, 0, result.ModulesProcessed)
	require.Equal(t, 1, result.ModulesFailed)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "inventory")
	require.InDelta(t, 0.0, result.SuccessRate, 0.01)

	// Device registration still persisted; the collection event is a warning.
	require.Equal(t, 1, store.storeCall)
	require.Empty(t, store.docs)
	require.Len(t, store.events, 1)
	require.Equal(t, models.KindWarning, store.events[0].Kind)
}

func TestProcessDeviceDataCapitalizedModuleKey(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store)

	payload := map[string]interface{}{
		"metadata": map[string]interface{}{
			"serialNumber": testSerial,
			"deviceId":     testUUID,
		},
		"Hardware": map[string]interface{}{"model": "Latitude 7420"},
	}

	result, err := o.ProcessDeviceData(context.Background(), payload, testToken)
	require.NoError(t, err)
	require.Equal(t, 1, result.ModulesProcessed)
	require.Len(t, store.docs, 1)
	require.Equal(t, "hardware", store.docs[0].ModuleID)
}

func TestProcessDeviceDataNoModules(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(store)

	payload := map[string]interface{}{
		"metadata": map[string]interface{}{
			"serialNumber": testSerial,
			"deviceId":     testUUID,
		},
	}

	_, err := o.ProcessDeviceData(context.Background(), payload, testToken)
	require.ErrorIs(t, err, ErrNoModules)
}

func TestProcessDeviceDataPersistenceFailure(t *testing.T) {
	store := &fakeStore{storeErr: errors.New("connection refused")}
	o := newTestOrchestrator(store)

	_, err := o.ProcessDeviceData(context.Background(), basePayload(), testToken)
	require.ErrorIs(t, err, ErrPersistence)
}

func TestProcessDeviceDataIdempotentDocuments(t *testing.T) {
	payload := basePayload()

	first := &fakeStore{}
	_, err := newTestOrchestrator(first).ProcessDeviceData(context.Background(), basePayload(), testToken)
	require.NoError(t, err)

	second := &fakeStore{}
	_, err = newTestOrchestrator(second).ProcessDeviceData(context.Background(), payload, testToken)
	require.NoError(t, err)

	require.Equal(t, len(first.docs), len(second.docs))

	for i := range first.docs {
		require.Equal(t, first.docs[i].ModuleID, second.docs[i].ModuleID)
		require.Equal(t, first.docs[i].CollectedAt, second.docs[i].CollectedAt)
		require.Equal(t, first.docs[i].Data["collected_at"], second.docs[i].Data["collected_at"])
	}
}

type capturingPublisher struct {
	data *models.CollectionEventData
}

func (c *capturingPublisher) PublishCollectionEvent(_ context.Context, data models.CollectionEventData) error {
	c.data = &data
	return nil
}

func TestProcessDeviceDataPublishesCollectionEvent(t *testing.T) {
	store := &fakeStore{}
	publisher := &capturingPublisher{}
	o := newTestOrchestrator(store, WithEventPublisher(publisher))

	_, err := o.ProcessDeviceData(context.Background(), basePayload(), testToken)
	require.NoError(t, err)

	require.NotNil(t, publisher.data)
	require.Equal(t, testSerial, publisher.data.SerialNumber)
	require.Equal(t, 2, publisher.data.ModulesProcessed)
}

// failingProcessor always fails validation.
type failingProcessor struct {
	name string
}

func (f *failingProcessor) Name() string { return f.name }

func (f *failingProcessor) Process(payload map[string]interface{}, serialNumber string) (*modules.Result, error) {
	return nil, modules.ErrModuleValidationFailed
}

func (*failingProcessor) Validate(map[string]interface{}) bool { return false }

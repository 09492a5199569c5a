package natsutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetpulse/pkg/models"
)

func TestNewCollectionEvent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	data := models.CollectionEventData{
		SerialNumber:     "0F33V9G25083HJ",
		DeviceUUID:       "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		ModulesProcessed: 4,
		ModulesFailed:    1,
		Timestamp:        ts,
	}

	event := newCollectionEvent(data)

	require.Equal(t, "1.0", event.SpecVersion)
	require.Equal(t, eventSource, event.Source)
	require.Equal(t, collectionEventType, event.Type)
	require.Equal(t, collectionSubject, event.Subject)
	require.NotEmpty(t, event.ID)
	require.Equal(t, ts, *event.Time)

	// Unique IDs per event.
	require.NotEqual(t, event.ID, newCollectionEvent(data).ID)
}

func TestCollectionEventRoundTrips(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	event := newCollectionEvent(models.CollectionEventData{
		SerialNumber: "0F33V9G25083HJ",
		Timestamp:    ts,
	})

	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Equal(t, "1.0", decoded["specversion"])
	require.Equal(t, collectionSubject, decoded["subject"])

	payload, ok := decoded["data"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "0F33V9G25083HJ", payload["serial_number"])
}

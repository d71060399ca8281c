package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/iot-gateway/internal/models"
	"github.com/benmeehan/iot-gateway/internal/store"
)

func flexPtr(v float64) *models.FlexFloat {
	f := models.FlexFloat(v)
	return &f
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

// TestTelemetryService_Ingest_MissingDeviceID tests that an update without a
// device ID is rejected and leaves the store untouched.
func TestTelemetryService_Ingest_MissingDeviceID(t *testing.T) {
	deviceStore := store.NewInMemoryDeviceStore()
	svc := NewTelemetryService(deviceStore, zerolog.Nop())

	_, err := svc.Ingest(models.DeviceUpdate{Current: flexPtr(12.4)})

	require.Error(t, err)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, deviceStore.List())
}

// TestTelemetryService_Ingest_CreatesRecord tests defaults and the lastSeen
// stamp on a first update.
func TestTelemetryService_Ingest_CreatesRecord(t *testing.T) {
	deviceStore := store.NewInMemoryDeviceStore()
	svc := NewTelemetryService(deviceStore, zerolog.Nop())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.nowFn = func() time.Time { return now }

	record, err := svc.Ingest(models.DeviceUpdate{
		DeviceID: "d1",
		Current:  flexPtr(12.4),
		ESPIP:    strPtr("10.0.0.5"),
	})

	require.NoError(t, err)
	assert.Equal(t, "d1", record.DeviceID)
	assert.Equal(t, models.DefaultOwner, record.Owner)
	require.NotNil(t, record.Current)
	assert.InDelta(t, 12.4, record.Current.Float(), 0.0001)
	assert.Equal(t, "10.0.0.5", record.ESPIP)
	assert.Equal(t, now, record.LastSeen)
	assert.Nil(t, record.IsSecure)
}

// TestTelemetryService_Ingest_MergeKeepsAbsentFields tests that fields absent
// from a later update retain their previous values.
func TestTelemetryService_Ingest_MergeKeepsAbsentFields(t *testing.T) {
	deviceStore := store.NewInMemoryDeviceStore()
	svc := NewTelemetryService(deviceStore, zerolog.Nop())

	_, err := svc.Ingest(models.DeviceUpdate{
		DeviceID: "d1",
		Lat:      flexPtr(13.0827),
		Lng:      flexPtr(80.2707),
		Current:  flexPtr(12.4),
		ESPIP:    strPtr("10.0.0.5"),
	})
	require.NoError(t, err)

	record, err := svc.Ingest(models.DeviceUpdate{
		DeviceID: "d1",
		Current:  flexPtr(12.1),
	})
	require.NoError(t, err)

	require.NotNil(t, record.Lat)
	assert.InDelta(t, 13.0827, record.Lat.Float(), 0.0001)
	require.NotNil(t, record.Current)
	assert.InDelta(t, 12.1, record.Current.Float(), 0.0001)
	assert.Equal(t, "10.0.0.5", record.ESPIP)
}

// TestTelemetryService_Ingest_TamperFlagSurvivesOmission tests that an
// explicit is_secure=false is not reset by a later update omitting the field.
func TestTelemetryService_Ingest_TamperFlagSurvivesOmission(t *testing.T) {
	deviceStore := store.NewInMemoryDeviceStore()
	svc := NewTelemetryService(deviceStore, zerolog.Nop())

	_, err := svc.Ingest(models.DeviceUpdate{
		DeviceID: "d1",
		IsSecure: boolPtr(false),
	})
	require.NoError(t, err)

	record, err := svc.Ingest(models.DeviceUpdate{
		DeviceID: "d1",
		Current:  flexPtr(12.4),
	})
	require.NoError(t, err)

	require.NotNil(t, record.IsSecure)
	assert.False(t, *record.IsSecure)
}

// TestTelemetryService_Ingest_LastWriterWinsPerField tests that the final
// value of each field is the most recent update that specified it.
func TestTelemetryService_Ingest_LastWriterWinsPerField(t *testing.T) {
	deviceStore := store.NewInMemoryDeviceStore()
	svc := NewTelemetryService(deviceStore, zerolog.Nop())

	updates := []models.DeviceUpdate{
		{DeviceID: "d1", Voltage: flexPtr(11.8), Owner: strPtr("alice")},
		{DeviceID: "d1", Voltage: flexPtr(12.0)},
		{DeviceID: "d1", ESPIP: strPtr("10.0.0.7")},
	}
	for _, update := range updates {
		_, err := svc.Ingest(update)
		require.NoError(t, err)
	}

	record, found := deviceStore.Get("d1")
	require.True(t, found)
	assert.Equal(t, "alice", record.Owner)
	require.NotNil(t, record.Voltage)
	assert.InDelta(t, 12.0, record.Voltage.Float(), 0.0001)
	assert.Equal(t, "10.0.0.7", record.ESPIP)
	assert.Nil(t, record.Lat)
}

// TestTelemetryService_Ingest_StampsEveryUpdate tests that lastSeen advances
// with each accepted update.
func TestTelemetryService_Ingest_StampsEveryUpdate(t *testing.T) {
	deviceStore := store.NewInMemoryDeviceStore()
	svc := NewTelemetryService(deviceStore, zerolog.Nop())

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Second)

	svc.nowFn = func() time.Time { return first }
	_, err := svc.Ingest(models.DeviceUpdate{DeviceID: "d1"})
	require.NoError(t, err)

	svc.nowFn = func() time.Time { return second }
	record, err := svc.Ingest(models.DeviceUpdate{DeviceID: "d1"})
	require.NoError(t, err)

	assert.Equal(t, second, record.LastSeen)
}

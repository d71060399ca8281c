package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/iot-gateway/internal/models"
	"github.com/benmeehan/iot-gateway/internal/store"
)

// TelemetryService applies partial device updates to the registry. It is the
// only path that mutates the device store.
type TelemetryService struct {
	Store  store.DeviceStore
	Logger zerolog.Logger

	nowFn func() time.Time
}

// NewTelemetryService initializes a new TelemetryService.
func NewTelemetryService(deviceStore store.DeviceStore, logger zerolog.Logger) *TelemetryService {
	return &TelemetryService{
		Store:  deviceStore,
		Logger: logger,
		nowFn:  time.Now,
	}
}

// Ingest merges update into the device's current record and stamps lastSeen
// with the ingest time. Fields absent from the update keep their previous
// values; a record is created implicitly on the first update for a device.
func (t *TelemetryService) Ingest(update models.DeviceUpdate) (models.DeviceRecord, error) {
	if update.DeviceID == "" {
		return models.DeviceRecord{}, &ValidationError{Field: "deviceID", Reason: "is required"}
	}

	record := t.Store.Upsert(update.DeviceID, func(existing models.DeviceRecord, found bool) models.DeviceRecord {
		merged := existing
		if !found {
			merged = models.NewDeviceRecord(update.DeviceID)
		}

		if update.Owner != nil {
			merged.Owner = *update.Owner
		}
		if update.Lat != nil {
			merged.Lat = update.Lat
		}
		if update.Lng != nil {
			merged.Lng = update.Lng
		}
		if update.Voltage != nil {
			merged.Voltage = update.Voltage
		}
		if update.Current != nil {
			merged.Current = update.Current
		}
		if update.IsSecure != nil {
			merged.IsSecure = update.IsSecure
		}
		if update.ESPIP != nil {
			merged.ESPIP = *update.ESPIP
		}

		merged.LastSeen = t.nowFn()
		return merged
	})

	t.Logger.Debug().
		Str("device_id", update.DeviceID).
		Time("last_seen", record.LastSeen).
		Msg("Device update ingested")

	return record, nil
}

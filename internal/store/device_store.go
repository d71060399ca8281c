package store

import (
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/benmeehan/iot-gateway/internal/models"
)

// DeviceStore defines access to the in-memory device registry.
type DeviceStore interface {
	Upsert(deviceID string, merge func(existing models.DeviceRecord, found bool) models.DeviceRecord) models.DeviceRecord
	Get(deviceID string) (models.DeviceRecord, bool)
	List() []models.DeviceRecord
}

// InMemoryDeviceStore keeps one DeviceRecord per device ID in a sharded
// concurrent map. Records are stored and returned by value, so callers never
// hold a handle into the map itself.
type InMemoryDeviceStore struct {
	records cmap.ConcurrentMap[string, models.DeviceRecord]
}

// NewInMemoryDeviceStore creates an empty device registry.
func NewInMemoryDeviceStore() *InMemoryDeviceStore {
	return &InMemoryDeviceStore{
		records: cmap.New[models.DeviceRecord](),
	}
}

// Upsert applies merge under the shard lock for deviceID. Concurrent updates
// to the same device never interleave, and readers only ever observe fully
// merged records. The merged record is returned.
func (s *InMemoryDeviceStore) Upsert(deviceID string, merge func(existing models.DeviceRecord, found bool) models.DeviceRecord) models.DeviceRecord {
	merged := s.records.Upsert(deviceID, models.DeviceRecord{}, func(exist bool, valueInMap, _ models.DeviceRecord) models.DeviceRecord {
		// Store a clone so the map never shares pointer fields with the
		// caller's update payload.
		return merge(valueInMap, exist).Clone()
	})
	return merged.Clone()
}

// Get returns a detached copy of the record for deviceID, if one exists.
// Pointer fields are duplicated, so the caller cannot mutate stored data.
func (s *InMemoryDeviceStore) Get(deviceID string) (models.DeviceRecord, bool) {
	record, found := s.records.Get(deviceID)
	if !found {
		return models.DeviceRecord{}, false
	}
	return record.Clone(), true
}

// List returns a snapshot of every stored record, each a detached copy.
func (s *InMemoryDeviceStore) List() []models.DeviceRecord {
	items := s.records.Items()
	records := make([]models.DeviceRecord, 0, len(items))
	for _, record := range items {
		records = append(records, record.Clone())
	}
	return records
}

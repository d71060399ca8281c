package services

import (
	"time"

	"github.com/benmeehan/iot-gateway/internal/models"
)

// DefaultFreshnessThreshold is how recently a device must have reported to
// count as online.
const DefaultFreshnessThreshold = 10 * time.Second

// FreshnessEvaluator derives a device's online state from the recency of its
// last accepted update.
type FreshnessEvaluator struct {
	Threshold time.Duration
}

// NewFreshnessEvaluator creates an evaluator with the given staleness
// threshold, falling back to the default when it is not positive.
func NewFreshnessEvaluator(threshold time.Duration) *FreshnessEvaluator {
	if threshold <= 0 {
		threshold = DefaultFreshnessThreshold
	}
	return &FreshnessEvaluator{Threshold: threshold}
}

// IsOnline reports whether record was updated within the threshold before
// now. A record that was never updated is offline, and so is one whose
// lastSeen lies in the future: a negative age must not read as "more fresh".
func (f *FreshnessEvaluator) IsOnline(record models.DeviceRecord, now time.Time) bool {
	if record.LastSeen.IsZero() {
		return false
	}

	age := now.Sub(record.LastSeen)
	return age >= 0 && age < f.Threshold
}

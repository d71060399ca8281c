package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/benmeehan/iot-gateway/internal/models"
)

// TestFreshnessEvaluator_IsOnline covers the age boundaries of the online
// derivation, including the clock-skew edge where lastSeen is in the future.
func TestFreshnessEvaluator_IsOnline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	evaluator := NewFreshnessEvaluator(10 * time.Second)

	tests := []struct {
		name     string
		lastSeen time.Time
		want     bool
	}{
		{name: "never updated", lastSeen: time.Time{}, want: false},
		{name: "just updated", lastSeen: now, want: true},
		{name: "within threshold", lastSeen: now.Add(-9 * time.Second), want: true},
		{name: "exactly at threshold", lastSeen: now.Add(-10 * time.Second), want: false},
		{name: "beyond threshold", lastSeen: now.Add(-time.Minute), want: false},
		{name: "future timestamp", lastSeen: now.Add(3 * time.Second), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := models.NewDeviceRecord("d1")
			record.LastSeen = tt.lastSeen
			assert.Equal(t, tt.want, evaluator.IsOnline(record, now))
		})
	}
}

// TestNewFreshnessEvaluator_DefaultThreshold tests the fallback when the
// configured threshold is missing or nonsensical.
func TestNewFreshnessEvaluator_DefaultThreshold(t *testing.T) {
	assert.Equal(t, DefaultFreshnessThreshold, NewFreshnessEvaluator(0).Threshold)
	assert.Equal(t, DefaultFreshnessThreshold, NewFreshnessEvaluator(-time.Second).Threshold)
	assert.Equal(t, time.Minute, NewFreshnessEvaluator(time.Minute).Threshold)
}

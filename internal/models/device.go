package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// DefaultOwner is assigned to records whose owner was never reported.
const DefaultOwner = "Unknown"

// FlexFloat is a float64 that unmarshals from either a JSON number or a
// numeric string. Device firmware sends coordinates as formatted strings
// while electrical readings arrive as plain numbers.
type FlexFloat float64

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		// ParseFloat accepts "NaN" and "Inf", which have no JSON encoding
		// and would poison every later read of the record.
		if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fmt.Errorf("value %q is not a finite number", s)
		}
		*f = FlexFloat(parsed)
		return nil
	}

	var parsed float64
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*f = FlexFloat(parsed)
	return nil
}

// Float returns the underlying float64 value.
func (f FlexFloat) Float() float64 {
	return float64(f)
}

// DeviceUpdate is the partial telemetry payload a device reports. Every field
// except DeviceID is optional; nil means "not reported this cycle" and leaves
// the stored value untouched.
//
// The wire field named "current" carries the instantaneous voltage reading on
// the deployed firmware; the name is kept for wire compatibility.
type DeviceUpdate struct {
	DeviceID string     `json:"deviceID"`
	Owner    *string    `json:"owner,omitempty"`
	Lat      *FlexFloat `json:"lat,omitempty"`
	Lng      *FlexFloat `json:"lng,omitempty"`
	Voltage  *FlexFloat `json:"voltage,omitempty"`
	Current  *FlexFloat `json:"current,omitempty"`
	IsSecure *bool      `json:"is_secure,omitempty"`
	ESPIP    *string    `json:"espIP,omitempty"`
}

// DeviceRecord is the current merged telemetry snapshot for one device.
// IsSecure is tri-state: true = secure, false = tamper alarm, nil = unknown.
type DeviceRecord struct {
	DeviceID string     `json:"deviceID"`
	Owner    string     `json:"owner"`
	Lat      *FlexFloat `json:"lat,omitempty"`
	Lng      *FlexFloat `json:"lng,omitempty"`
	Voltage  *FlexFloat `json:"voltage,omitempty"`
	Current  *FlexFloat `json:"current,omitempty"`
	IsSecure *bool      `json:"is_secure,omitempty"`
	ESPIP    string     `json:"espIP,omitempty"`
	LastSeen time.Time  `json:"lastSeen"`
}

// NewDeviceRecord returns a fresh record for a device seen for the first time.
func NewDeviceRecord(deviceID string) DeviceRecord {
	return DeviceRecord{
		DeviceID: deviceID,
		Owner:    DefaultOwner,
	}
}

// Clone returns a copy with its own pointer fields, so mutating the clone
// cannot reach the record it was copied from.
func (r DeviceRecord) Clone() DeviceRecord {
	clone := r
	clone.Lat = cloneFlexFloat(r.Lat)
	clone.Lng = cloneFlexFloat(r.Lng)
	clone.Voltage = cloneFlexFloat(r.Voltage)
	clone.Current = cloneFlexFloat(r.Current)
	if r.IsSecure != nil {
		v := *r.IsSecure
		clone.IsSecure = &v
	}
	return clone
}

func cloneFlexFloat(f *FlexFloat) *FlexFloat {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDeviceUpdate_Unmarshal_MixedNumericForms tests that numeric wire fields
// accept both JSON numbers and numeric strings.
func TestDeviceUpdate_Unmarshal_MixedNumericForms(t *testing.T) {
	payload := []byte(`{"deviceID":"d1","lat":"13.0827","lng":"80.2707","current":12.4,"is_secure":false,"espIP":"10.0.0.5"}`)

	var update DeviceUpdate
	require.NoError(t, json.Unmarshal(payload, &update))

	assert.Equal(t, "d1", update.DeviceID)
	require.NotNil(t, update.Lat)
	assert.InDelta(t, 13.0827, update.Lat.Float(), 0.0001)
	require.NotNil(t, update.Lng)
	assert.InDelta(t, 80.2707, update.Lng.Float(), 0.0001)
	require.NotNil(t, update.Current)
	assert.InDelta(t, 12.4, update.Current.Float(), 0.0001)

	// Explicit false is distinct from absent
	require.NotNil(t, update.IsSecure)
	assert.False(t, *update.IsSecure)

	assert.Nil(t, update.Voltage)
	require.NotNil(t, update.ESPIP)
	assert.Equal(t, "10.0.0.5", *update.ESPIP)
}

// TestDeviceUpdate_Unmarshal_AbsentOptionalFields tests that omitted fields
// stay nil.
func TestDeviceUpdate_Unmarshal_AbsentOptionalFields(t *testing.T) {
	var update DeviceUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"deviceID":"d1"}`), &update))

	assert.Nil(t, update.Lat)
	assert.Nil(t, update.Lng)
	assert.Nil(t, update.Voltage)
	assert.Nil(t, update.Current)
	assert.Nil(t, update.IsSecure)
	assert.Nil(t, update.ESPIP)
}

// TestFlexFloat_Unmarshal_RejectsNonNumericString tests that a string which
// cannot be parsed as a number is an error rather than a silent zero.
func TestFlexFloat_Unmarshal_RejectsNonNumericString(t *testing.T) {
	var f FlexFloat
	assert.Error(t, json.Unmarshal([]byte(`"not-a-number"`), &f))
}

// TestFlexFloat_Unmarshal_RejectsNonFiniteStrings tests that NaN and infinity
// strings are rejected. ParseFloat accepts them, but they cannot be encoded
// back as JSON, so storing one would break every later read of the record.
func TestFlexFloat_Unmarshal_RejectsNonFiniteStrings(t *testing.T) {
	for _, input := range []string{`"NaN"`, `"nan"`, `"Inf"`, `"+Inf"`, `"-Inf"`, `"Infinity"`} {
		var f FlexFloat
		assert.Errorf(t, json.Unmarshal([]byte(input), &f), "input %s", input)
	}
}

// TestDeviceRecord_Clone_DetachesPointerFields tests that a clone shares no
// pointer fields with its source.
func TestDeviceRecord_Clone_DetachesPointerFields(t *testing.T) {
	lat := FlexFloat(13.0827)
	secure := true
	record := DeviceRecord{DeviceID: "d1", Lat: &lat, IsSecure: &secure}

	clone := record.Clone()
	require.NotNil(t, clone.Lat)
	*clone.Lat = 99.9
	require.NotNil(t, clone.IsSecure)
	*clone.IsSecure = false

	assert.InDelta(t, 13.0827, record.Lat.Float(), 0.0001)
	assert.True(t, *record.IsSecure)
	assert.Nil(t, clone.Lng)
}

// TestFlexFloat_Marshal tests that values marshal as plain JSON numbers.
func TestFlexFloat_Marshal(t *testing.T) {
	data, err := json.Marshal(FlexFloat(12.4))
	require.NoError(t, err)
	assert.Equal(t, "12.4", string(data))
}

// TestNewDeviceRecord_Defaults tests the defaults of a first-seen record.
func TestNewDeviceRecord_Defaults(t *testing.T) {
	record := NewDeviceRecord("d1")

	assert.Equal(t, "d1", record.DeviceID)
	assert.Equal(t, DefaultOwner, record.Owner)
	assert.Nil(t, record.IsSecure)
	assert.True(t, record.LastSeen.IsZero())
}

package utils

import (
	"time"

	"github.com/benmeehan/iot-gateway/pkg/file"
)

// Config represents the structure of the gateway configuration file.
type Config struct {
	Server struct {
		Port              int           `yaml:"port"`                // HTTP listen port
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"` // Header read timeout (in seconds)
		MaxBodyBytes      int64         `yaml:"max_body_bytes"`      // Cap on ingest request bodies
		AllowedOrigin     string        `yaml:"allowed_origin"`      // CORS origin allowed to reach the API
	} `yaml:"server"`

	Telemetry struct {
		FreshnessThresholdMs int `yaml:"freshness_threshold_ms"` // Staleness threshold for the online flag
	} `yaml:"telemetry"`

	Stream struct {
		ConnectTimeout time.Duration `yaml:"connect_timeout"` // Upstream connect/first-byte timeout (in seconds)
	} `yaml:"stream"`

	MQTT struct {
		Enabled       bool   `yaml:"enabled"`        // Enable/disable the MQTT ingest bridge
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		Topic         string `yaml:"topic"`          // Telemetry topic to subscribe to
		QOS           int    `yaml:"qos"`            // MQTT QoS level for telemetry messages
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate (empty = plain TCP)
	} `yaml:"mqtt"`
}

// SimulatorConfig represents the structure of the simulator configuration file.
type SimulatorConfig struct {
	Gateway struct {
		UpdateURL string `yaml:"update_url"` // Gateway telemetry update endpoint
	} `yaml:"gateway"`

	Device struct {
		IdentityFile string        `yaml:"identity_file"` // Path to the device identity file
		StreamIP     string        `yaml:"stream_ip"`     // Address the gateway should proxy the stream from
		Interval     time.Duration `yaml:"interval"`      // Interval between updates (in seconds)
		StartVoltage float64       `yaml:"start_voltage"` // Initial simulated voltage reading
	} `yaml:"device"`

	Location struct {
		SensorBased       bool    `yaml:"sensor_based"`    // Use a real GPS sensor instead of the random walk
		StartLat          float64 `yaml:"start_lat"`       // Random walk origin latitude
		StartLng          float64 `yaml:"start_lng"`       // Random walk origin longitude
		GPSDevicePort     string  `yaml:"gps_device_port"` // Serial port where the GPS sensor is mounted
		GPSDeviceBaudRate int     `yaml:"gps_baud_rate"`   // Baud rate for the GPS sensor
	} `yaml:"location"`
}

// LoadConfig loads the gateway YAML configuration from the specified file.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadSimulatorConfig loads the simulator YAML configuration from the
// specified file.
func LoadSimulatorConfig(filename string, fileClient file.FileOperations) (*SimulatorConfig, error) {
	var config SimulatorConfig
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

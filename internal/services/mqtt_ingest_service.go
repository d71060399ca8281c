package services

import (
	"encoding/json"
	"errors"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/benmeehan/iot-gateway/internal/models"
	"github.com/benmeehan/iot-gateway/pkg/mqtt"
)

// MQTTIngestService bridges telemetry published over MQTT into the registry.
// Devices that cannot reach the HTTP endpoint publish the same JSON payload
// to the configured topic instead.
type MQTTIngestService struct {
	SubTopic   string
	QOS        int
	MqttClient mqtt.MQTTClient
	Telemetry  *TelemetryService
	Logger     zerolog.Logger

	running bool
}

// NewMQTTIngestService initializes a new MQTTIngestService.
func NewMQTTIngestService(subTopic string, qos int, mqttClient mqtt.MQTTClient,
	telemetry *TelemetryService, logger zerolog.Logger) *MQTTIngestService {

	return &MQTTIngestService{
		SubTopic:   subTopic,
		QOS:        qos,
		MqttClient: mqttClient,
		Telemetry:  telemetry,
		Logger:     logger,
	}
}

// Start subscribes to the telemetry topic.
func (m *MQTTIngestService) Start() error {
	if m.running {
		m.Logger.Warn().Msg("MQTTIngestService is already running")
		return errors.New("mqtt ingest service is already running")
	}

	token := m.MqttClient.Subscribe(m.SubTopic, byte(m.QOS), m.handleTelemetryMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		m.Logger.Error().Err(err).Str("topic", m.SubTopic).Msg("Failed to subscribe to telemetry topic")
		return err
	}

	m.running = true
	m.Logger.Info().Str("topic", m.SubTopic).Msg("MQTTIngestService started successfully")
	return nil
}

// Stop unsubscribes from the telemetry topic.
func (m *MQTTIngestService) Stop() error {
	if !m.running {
		m.Logger.Warn().Msg("MQTTIngestService is not running")
		return errors.New("mqtt ingest service is not running")
	}

	token := m.MqttClient.Unsubscribe(m.SubTopic)
	token.Wait()
	if err := token.Error(); err != nil {
		m.Logger.Error().Err(err).Str("topic", m.SubTopic).Msg("Failed to unsubscribe from telemetry topic")
		return err
	}

	m.running = false
	m.Logger.Info().Msg("MQTTIngestService stopped successfully")
	return nil
}

// handleTelemetryMessage decodes an incoming telemetry payload and feeds it
// through the same ingest path as HTTP updates.
func (m *MQTTIngestService) handleTelemetryMessage(_ MQTT.Client, msg MQTT.Message) {
	var update models.DeviceUpdate
	if err := json.Unmarshal(msg.Payload(), &update); err != nil {
		m.Logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Invalid telemetry payload")
		return
	}

	if _, err := m.Telemetry.Ingest(update); err != nil {
		m.Logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to ingest MQTT telemetry")
	}
}

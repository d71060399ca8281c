package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benmeehan/iot-gateway/internal/api"
	"github.com/benmeehan/iot-gateway/internal/services"
	"github.com/benmeehan/iot-gateway/internal/store"
	"github.com/benmeehan/iot-gateway/internal/utils"
	"github.com/benmeehan/iot-gateway/pkg/file"
	"github.com/benmeehan/iot-gateway/pkg/mqtt"
)

func main() {
	// Set up structured logging with JSON output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	configPath := flag.String("config", "configs/config.yaml", "path to the gateway configuration file")
	flag.Parse()

	// Initialize file operations handler and load configuration
	fileClient := file.NewFileService()
	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Wire the device registry and its services
	deviceStore := store.NewInMemoryDeviceStore()
	telemetry := services.NewTelemetryService(deviceStore, logger)
	freshness := services.NewFreshnessEvaluator(time.Duration(config.Telemetry.FreshnessThresholdMs) * time.Millisecond)
	relay := services.NewStreamRelayService(deviceStore, time.Duration(config.Stream.ConnectTimeout)*time.Second, logger)

	// Optional MQTT ingest bridge for devices reporting over MQTT
	var mqttIngest *services.MQTTIngestService
	if config.MQTT.Enabled {
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		logger.Info().Str("client_id", clientID).Msg("Using MQTT client ID")

		mqttClient := mqtt.NewMqttService(fileClient)
		if err := mqttClient.Initialize(config.MQTT.Broker, clientID, config.MQTT.CACertificate); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
		}
		defer mqttClient.Disconnect(250)

		mqttIngest = services.NewMQTTIngestService(config.MQTT.Topic, config.MQTT.QOS, mqttClient, telemetry, logger)
		if err := mqttIngest.Start(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start MQTT ingest service")
		}
	}

	apiServer := api.NewAPIServer(deviceStore, telemetry, freshness, relay,
		config.Server.MaxBodyBytes, config.Server.AllowedOrigin, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           apiServer.Router(),
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if mqttIngest != nil {
		_ = mqttIngest.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

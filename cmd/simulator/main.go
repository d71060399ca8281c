package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/iot-gateway/internal/simulator"
	"github.com/benmeehan/iot-gateway/internal/utils"
	"github.com/benmeehan/iot-gateway/pkg/file"
	"github.com/benmeehan/iot-gateway/pkg/identity"
	"github.com/benmeehan/iot-gateway/pkg/location"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	configPath := flag.String("config", "configs/simulator.yaml", "path to the simulator configuration file")
	flag.Parse()

	fileClient := file.NewFileService()
	config, err := utils.LoadSimulatorConfig(*configPath, fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Load or create the device identity
	deviceInfo := identity.NewDeviceInfo(config.Device.IdentityFile, fileClient)
	if err := deviceInfo.LoadDeviceInfo(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load device information")
	}

	deviceID, err := deviceInfo.EnsureDeviceID()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to establish device ID")
	}
	logger.Info().Str("device_id", deviceID).Msg("Simulating device")

	// Pick the position source: a real GPS module or a random walk
	var provider location.Provider
	if config.Location.SensorBased {
		provider = location.NewGPSSensorProvider(config.Location.GPSDevicePort, config.Location.GPSDeviceBaudRate)
	} else {
		provider = location.NewRandomWalkProvider(config.Location.StartLat, config.Location.StartLng)
	}

	publisher := simulator.NewTelemetryPublisher(
		config.Gateway.UpdateURL,
		time.Duration(config.Device.Interval)*time.Second,
		config.Device.StreamIP,
		config.Device.StartVoltage,
		deviceInfo,
		provider,
		logger,
	)

	if err := publisher.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start telemetry publisher")
	}

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	_ = publisher.Stop()
}

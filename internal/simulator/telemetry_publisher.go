// Package simulator produces device telemetry against a running gateway,
// standing in for ESP32 firmware during development.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/iot-gateway/internal/models"
	"github.com/benmeehan/iot-gateway/pkg/identity"
	"github.com/benmeehan/iot-gateway/pkg/location"
)

// TelemetryPublisher periodically posts device telemetry to the gateway's
// update endpoint.
type TelemetryPublisher struct {
	UpdateURL  string
	Interval   time.Duration
	StreamIP   string
	DeviceInfo identity.DeviceInfoInterface
	Provider   location.Provider
	HTTPClient *http.Client
	Logger     zerolog.Logger

	voltage float64
	rng     *rand.Rand

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTelemetryPublisher initializes a new TelemetryPublisher.
func NewTelemetryPublisher(updateURL string, interval time.Duration, streamIP string, startVoltage float64,
	deviceInfo identity.DeviceInfoInterface, provider location.Provider, logger zerolog.Logger) *TelemetryPublisher {

	return &TelemetryPublisher{
		UpdateURL:  updateURL,
		Interval:   interval,
		StreamIP:   streamIP,
		DeviceInfo: deviceInfo,
		Provider:   provider,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
		Logger:     logger,
		voltage:    startVoltage,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches the publishing loop in a separate goroutine.
func (p *TelemetryPublisher) Start() error {
	if p.ctx != nil {
		p.Logger.Warn().Msg("TelemetryPublisher is already running")
		return errors.New("telemetry publisher is already running")
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runPublishLoop()
	}()

	p.Logger.Info().Str("url", p.UpdateURL).Msg("TelemetryPublisher started successfully")
	return nil
}

// Stop gracefully stops the publishing loop.
func (p *TelemetryPublisher) Stop() error {
	if p.ctx == nil {
		p.Logger.Warn().Msg("TelemetryPublisher is not running")
		return errors.New("telemetry publisher is not running")
	}

	p.cancel()
	p.wg.Wait()

	p.ctx = nil
	p.cancel = nil

	p.Logger.Info().Msg("TelemetryPublisher stopped successfully")
	return nil
}

// runPublishLoop sends one update per tick until the service is stopped.
func (p *TelemetryPublisher) runPublishLoop() {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.publishUpdate(); err != nil {
				p.Logger.Error().Err(err).Msg("Failed to publish telemetry update")
			}
		case <-p.ctx.Done():
			p.Logger.Info().Msg("TelemetryPublisher stopping gracefully")
			return
		}
	}
}

// publishUpdate builds and posts one telemetry payload: the next position
// from the provider and a slowly drifting voltage reading.
func (p *TelemetryPublisher) publishUpdate() error {
	loc, err := p.Provider.GetLocation()
	if err != nil {
		return fmt.Errorf("failed to get location: %w", err)
	}

	p.voltage += (p.rng.Float64() - 0.5) * 0.1

	lat := models.FlexFloat(loc.Latitude)
	lng := models.FlexFloat(loc.Longitude)
	// The deployed wire protocol carries the voltage reading in the field
	// named "current".
	reading := models.FlexFloat(p.voltage)
	streamIP := p.StreamIP

	update := models.DeviceUpdate{
		DeviceID: p.DeviceInfo.GetDeviceID(),
		Lat:      &lat,
		Lng:      &lng,
		Current:  &reading,
		ESPIP:    &streamIP,
	}

	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to serialize update: %w", err)
	}

	req, err := http.NewRequestWithContext(p.ctx, http.MethodPost, p.UpdateURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	p.Logger.Debug().
		Float64("voltage", p.voltage).
		Float64("lat", loc.Latitude).
		Float64("lng", loc.Longitude).
		Msg("Telemetry update published")

	return nil
}

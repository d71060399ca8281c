package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/benmeehan/iot-gateway/internal/models"
	"github.com/benmeehan/iot-gateway/internal/services"
)

// deviceResponse is a DeviceRecord with the derived online flag attached.
type deviceResponse struct {
	models.DeviceRecord
	Online bool `json:"online"`
}

func (s *APIServer) handleDeviceUpdate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var update models.DeviceUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := s.telemetry.Ingest(update); err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			s.writeError(w, validationErr.Error(), http.StatusBadRequest)
			return
		}

		s.logger.Error().Err(err).Msg("Failed to apply device update")
		s.writeError(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *APIServer) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["id"]

	record, found := s.store.Get(deviceID)
	if !found {
		s.writeError(w, "Device not found", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, deviceResponse{
		DeviceRecord: record,
		Online:       s.freshness.IsOnline(record, time.Now()),
	})
}

func (s *APIServer) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	records := s.store.List()
	now := time.Now()

	devices := make([]deviceResponse, 0, len(records))
	for _, record := range records {
		devices = append(devices, deviceResponse{
			DeviceRecord: record,
			Online:       s.freshness.IsOnline(record, now),
		})
	}

	s.writeJSON(w, http.StatusOK, devices)
}

func (s *APIServer) handleDeviceStream(w http.ResponseWriter, r *http.Request) {
	deviceID := mux.Vars(r)["id"]

	err := s.relay.Relay(r.Context(), deviceID, newResponseSink(w))
	if err == nil {
		return
	}

	var upstreamErr *services.UpstreamUnreachableError
	switch {
	case errors.Is(err, services.ErrDeviceUnavailable):
		http.Error(w, "Device offline or IP unknown", http.StatusNotFound)
	case errors.As(err, &upstreamErr):
		s.logger.Warn().Err(upstreamErr.Cause).Str("device_id", deviceID).Msg("Stream relay failed")
		http.Error(w, fmt.Sprintf("Stream unavailable: %v", upstreamErr.Cause), http.StatusBadGateway)
	default:
		s.logger.Error().Err(err).Str("device_id", deviceID).Msg("Unexpected stream relay failure")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

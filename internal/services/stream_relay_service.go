package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/iot-gateway/internal/store"
)

// DefaultStreamContentType is the MJPEG framing header the camera firmware
// serves; used when the upstream response carries no Content-Type of its own.
const DefaultStreamContentType = "multipart/x-mixed-replace; boundary=frame"

// DefaultConnectTimeout bounds connecting to the device and receiving its
// response headers.
const DefaultConnectTimeout = 5 * time.Second

const relayBufferSize = 32 * 1024

// DownstreamSink is the viewer side of a relay: the destination for the
// upstream's framing header and bytes. A Write error means the viewer is gone.
type DownstreamSink interface {
	SetContentType(contentType string)
	Write(p []byte) (int, error)
	Flush()
}

// StreamRelayService proxies a device's live video stream to a viewer. Each
// Relay call owns its upstream connection; the service itself holds no
// per-relay state beyond the read-only address lookup.
type StreamRelayService struct {
	Store          store.DeviceStore
	Client         *http.Client
	ConnectTimeout time.Duration
	Logger         zerolog.Logger
}

// NewStreamRelayService initializes a relay whose HTTP client enforces the
// connect timeout on both dialing and waiting for response headers, while
// leaving the stream itself unbounded.
func NewStreamRelayService(deviceStore store.DeviceStore, connectTimeout time.Duration, logger zerolog.Logger) *StreamRelayService {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	return &StreamRelayService{
		Store: deviceStore,
		Client: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
				ResponseHeaderTimeout: connectTimeout,
			},
		},
		ConnectTimeout: connectTimeout,
		Logger:         logger,
	}
}

// Relay resolves the device's last-known address, connects to its /stream
// endpoint and forwards bytes to sink until either side closes. Cancelling
// ctx (the downstream viewer disconnecting) aborts a blocked upstream read;
// the deferred body close releases the upstream connection on every exit
// path.
func (s *StreamRelayService) Relay(ctx context.Context, deviceID string, sink DownstreamSink) error {
	record, found := s.Store.Get(deviceID)
	if !found || record.ESPIP == "" {
		return ErrDeviceUnavailable
	}

	streamURL := fmt.Sprintf("http://%s/stream", record.ESPIP)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return &UpstreamUnreachableError{Cause: err}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return &UpstreamUnreachableError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamUnreachableError{Cause: fmt.Errorf("upstream returned status %d", resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultStreamContentType
	}
	sink.SetContentType(contentType)

	s.Logger.Info().
		Str("device_id", deviceID).
		Str("url", streamURL).
		Msg("Relaying device stream")

	// Single-hop forwarding: each chunk is written and flushed as it
	// arrives, with no buffering beyond this one slice.
	buf := make([]byte, relayBufferSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := sink.Write(buf[:n]); writeErr != nil {
				s.Logger.Debug().
					Err(writeErr).
					Str("device_id", deviceID).
					Msg("Viewer disconnected, closing upstream")
				return nil
			}
			sink.Flush()
		}

		if readErr != nil {
			switch {
			case errors.Is(readErr, io.EOF):
				s.Logger.Info().Str("device_id", deviceID).Msg("Upstream stream ended")
			case ctx.Err() != nil:
				s.Logger.Debug().Str("device_id", deviceID).Msg("Relay cancelled by viewer")
			default:
				s.Logger.Warn().
					Err(readErr).
					Str("device_id", deviceID).
					Msg("Upstream stream error")
			}
			// Once streaming has begun, an upstream failure simply ends
			// the byte stream for the viewer.
			return nil
		}
	}
}

package location

import (
	"bufio"
	"errors"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// GPSSensorProvider reads position fixes from a GPS module connected via a
// serial port.
type GPSSensorProvider struct {
	port     string // Serial port the GPS module is connected to
	baudRate int    // Baud rate for the serial communication
}

// NewGPSSensorProvider creates a provider for the given port and baud rate.
func NewGPSSensorProvider(port string, baudRate int) *GPSSensorProvider {
	return &GPSSensorProvider{
		port:     port,
		baudRate: baudRate,
	}
}

// GetLocation reads NMEA sentences from the module until it finds a GGA fix
// and returns the position it carries.
func (g *GPSSensorProvider) GetLocation() (Location, error) {
	config := &serial.Config{Name: g.port, Baud: g.baudRate}
	port, err := serial.OpenPort(config)
	if err != nil {
		return Location{}, err
	}
	defer port.Close()

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "$GPGGA") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			return Location{}, err
		}

		if gga, ok := sentence.(nmea.GGA); ok {
			return Location{
				Latitude:  gga.Latitude,
				Longitude: gga.Longitude,
				Accuracy:  float64(gga.HDOP), // HDOP stands in for accuracy
			}, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return Location{}, err
	}

	return Location{}, errors.New("no valid GPS data found")
}

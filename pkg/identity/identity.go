package identity

import (
	"os"

	"github.com/google/uuid"

	"github.com/benmeehan/iot-gateway/pkg/file"
)

// Identity holds the device's unique identifier and metadata.
type Identity struct {
	ID   string `json:"device_id,omitempty"`
	Name string `json:"device_name,omitempty"`
}

// DeviceInfoInterface defines methods for managing device identity.
type DeviceInfoInterface interface {
	LoadDeviceInfo() error
	EnsureDeviceID() (string, error)
	GetDeviceID() string
	SaveDeviceID(deviceID string) error
}

// DeviceInfo manages the device identity file.
type DeviceInfo struct {
	DeviceInfoFile string
	Identity       Identity
	fileOps        file.FileOperations
}

// NewDeviceInfo initializes a new DeviceInfo instance.
func NewDeviceInfo(filePath string, fileOps file.FileOperations) DeviceInfoInterface {
	return &DeviceInfo{
		DeviceInfoFile: filePath,
		fileOps:        fileOps,
		Identity:       Identity{},
	}
}

// LoadDeviceInfo reads the device information from the identity file. A
// missing file is not an error: the identity starts empty and EnsureDeviceID
// will generate one.
func (d *DeviceInfo) LoadDeviceInfo() error {
	err := d.fileOps.ReadJsonFile(d.DeviceInfoFile, &d.Identity)
	if err != nil {
		if os.IsNotExist(err) {
			d.Identity = Identity{}
			return nil
		}
		return err
	}

	return nil
}

// EnsureDeviceID returns the stored device ID, generating and persisting a
// new one on first run.
func (d *DeviceInfo) EnsureDeviceID() (string, error) {
	if d.Identity.ID != "" {
		return d.Identity.ID, nil
	}

	deviceID := "device-" + uuid.New().String()
	if err := d.SaveDeviceID(deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

// GetDeviceID returns the current device ID.
func (d *DeviceInfo) GetDeviceID() string {
	return d.Identity.ID
}

// SaveDeviceID updates the device ID and writes it back to the file.
func (d *DeviceInfo) SaveDeviceID(deviceID string) error {
	d.Identity.ID = deviceID
	return d.fileOps.WriteJsonFile(d.DeviceInfoFile, d.Identity)
}

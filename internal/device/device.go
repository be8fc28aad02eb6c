package device

import (
	"strings"
	"time"

	"github.com/srg/blescan/internal/advdata"
)

// ID identifies a remote BLE device: a MAC address on Linux, a CoreBluetooth
// UUID on macOS. Two IDs are the same device when they match ignoring ASCII case.
type ID string

// Equal reports whether id and other name the same device.
func (id ID) Equal(other ID) bool {
	return id.Key() == other.Key()
}

// Key returns the canonical form used for set membership: the ID with ASCII
// letters upper-cased. Other characters are kept as they are.
func (id ID) Key() string {
	return strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, string(id))
}

func (id ID) String() string {
	return string(id)
}

// ScanResult is one observation of a device during a scan.
//
// Identity is the device alone: two results for the same device are Equal even
// when advertisement, RSSI or time differ, so a later observation replaces an
// earlier one in a result set.
type ScanResult struct {
	Device        ID                     `json:"device"`
	Advertisement *advdata.Advertisement `json:"advertisement"`
	RSSI          int32                  `json:"rssi"`
	ObservedAt    time.Time              `json:"observedAt"`
}

// Equal reports whether r and other describe the same device.
func (r ScanResult) Equal(other ScanResult) bool {
	return r.Device.Equal(other.Device)
}

// Name returns the advertised local name, or "" when unknown.
func (r ScanResult) Name() string {
	if r.Advertisement == nil {
		return ""
	}
	return r.Advertisement.LocalName
}

// DisplayName returns the local name, falling back to the device ID.
func (r ScanResult) DisplayName() string {
	if name := r.Name(); name != "" {
		return name
	}
	return string(r.Device)
}

// Services returns the advertised service UUIDs.
func (r ScanResult) Services() []string {
	if r.Advertisement == nil {
		return nil
	}
	return r.Advertisement.ServiceUUIDs
}

package scanner

import (
	"fmt"

	"github.com/mcuadros/go-defaults"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/transport"
)

// ScanOptions configures a scan. Filters are applied by the transport;
// an empty filter matches everything.
type ScanOptions struct {
	Mode            transport.ScanMode `default:"low-latency"`
	ServiceUUIDs    []string
	DeviceIDs       []string
	MACAddresses    []string
	ManufacturerIDs []uint16
	AllowDuplicates bool `default:"true"`
}

// DefaultScanOptions returns default scanning options
func DefaultScanOptions() *ScanOptions {
	opts := &ScanOptions{}
	defaults.SetDefaults(opts)
	return opts
}

// ParseScanMode converts a user supplied mode name.
func ParseScanMode(s string) (transport.ScanMode, error) {
	switch m := transport.ScanMode(s); m {
	case transport.ScanModeLowPower, transport.ScanModeBalanced,
		transport.ScanModeLowLatency, transport.ScanModeOpportunistic:
		return m, nil
	default:
		return "", fmt.Errorf("unknown scan mode %q (want low-power, balanced, low-latency or opportunistic)", s)
	}
}

// request validates the options and renders the start-scan request.
func (o *ScanOptions) request() (transport.StartScanRequest, error) {
	req := transport.StartScanRequest{
		ScanMode:        o.Mode,
		DeviceIDs:       o.DeviceIDs,
		MACAddresses:    o.MACAddresses,
		ManufacturerIDs: o.ManufacturerIDs,
		AllowDuplicates: o.AllowDuplicates,
	}

	if req.ScanMode == "" {
		req.ScanMode = transport.ScanModeLowLatency
	} else if _, err := ParseScanMode(string(req.ScanMode)); err != nil {
		return req, err
	}

	if len(o.ServiceUUIDs) > 0 {
		uuids, err := device.ValidateUUID(o.ServiceUUIDs...)
		if err != nil {
			return req, fmt.Errorf("invalid service filter: %w", err)
		}
		req.ServiceUUIDs = uuids
	}

	return req, nil
}

package transport

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ScanMode selects the radio duty cycle requested from the platform.
type ScanMode string

const (
	ScanModeLowPower      ScanMode = "low-power"
	ScanModeBalanced      ScanMode = "balanced"
	ScanModeLowLatency    ScanMode = "low-latency"
	ScanModeOpportunistic ScanMode = "opportunistic"
)

// StartScanRequest is the start-scan payload.
type StartScanRequest struct {
	ScanMode        ScanMode `json:"scanMode"`
	ServiceUUIDs    []string `json:"serviceUuids,omitempty"`
	DeviceIDs       []string `json:"deviceIds,omitempty"`
	MACAddresses    []string `json:"macAddresses,omitempty"`
	ManufacturerIDs []uint16 `json:"manufacturerIds,omitempty"`
	AllowDuplicates bool     `json:"allowDuplicates"`
}

// ResultPayload is the payload of a result event.
type ResultPayload struct {
	Device        string `json:"device"`
	Advertisement []byte `json:"advertisement"`
	RSSI          int32  `json:"rssi"`
	Connectable   bool   `json:"connectable"`
}

// ErrorPayload is the payload of an error event.
type ErrorPayload struct {
	Code *int32 `json:"code"`
}

// EncodeStartScan serializes a start-scan request.
func EncodeStartScan(req StartScanRequest) ([]byte, error) {
	return json.Marshal(req)
}

// DecodeStartScan parses a start-scan request. An empty payload means default options.
func DecodeStartScan(b []byte) (StartScanRequest, error) {
	var req StartScanRequest
	if len(b) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(b, &req); err != nil {
		return req, fmt.Errorf("invalid start-scan payload: %w", err)
	}
	return req, nil
}

// EncodeResult serializes a result event payload.
func EncodeResult(p ResultPayload) ([]byte, error) {
	return json.Marshal(p)
}

// DecodeResult parses a result event payload. The device identifier is required.
func DecodeResult(b []byte) (ResultPayload, error) {
	var p ResultPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("invalid result payload: %w", err)
	}
	if p.Device == "" {
		return p, fmt.Errorf("invalid result payload: missing device")
	}
	return p, nil
}

// EncodeError serializes an error event payload.
func EncodeError(code int32) ([]byte, error) {
	return json.Marshal(ErrorPayload{Code: &code})
}

// DecodeError parses an error event payload. The code is required.
func DecodeError(b []byte) (int32, error) {
	var p ErrorPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return 0, fmt.Errorf("invalid error payload: %w", err)
	}
	if p.Code == nil {
		return 0, fmt.Errorf("invalid error payload: missing code")
	}
	return *p.Code, nil
}

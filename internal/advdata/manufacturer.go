package advdata

import (
	"encoding/binary"
	"fmt"

	"github.com/go-ble/ble"
)

// Company identifiers with a name or a payload parser.
const (
	CompanyApple     uint16 = 0x004C
	CompanyMicrosoft uint16 = 0x0006
	CompanyNordic    uint16 = 0x0059
	CompanySamsung   uint16 = 0x0075
	CompanyGoogle    uint16 = 0x00E0
	CompanyEspressif uint16 = 0x02E5
	CompanyBlim      uint16 = 0xFFFE // test/internal use
)

var companyNames = map[uint16]string{
	CompanyApple:     "Apple",
	CompanyMicrosoft: "Microsoft",
	CompanyNordic:    "Nordic Semiconductor",
	CompanySamsung:   "Samsung",
	CompanyGoogle:    "Google",
	CompanyEspressif: "Espressif",
	CompanyBlim:      "BLIMCo",
}

// CompanyName returns the company name for id, or its hex form when unknown.
func CompanyName(id uint16) string {
	if name, ok := companyNames[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", id)
}

// ManufacturerDataParser parses a company payload, company id excluded.
type ManufacturerDataParser func([]byte) (interface{}, error)

// VendorInfo is implemented by parsed manufacturer payloads.
type VendorInfo interface {
	VendorID() uint16
	VendorName() string
}

var manufacturerDataParsers = map[uint16]ManufacturerDataParser{
	CompanyApple: parseAppleData,
	CompanyBlim:  parseBlimData,
}

// ParseManufacturerData parses the payload advertised under companyID, as
// stored in Advertisement.ManufacturerData. It returns (nil, nil) for
// companies or payload kinds without a parser.
func ParseManufacturerData(companyID uint16, data []byte) (interface{}, error) {
	parser, ok := manufacturerDataParsers[companyID]
	if !ok {
		return nil, nil
	}
	return parser(data)
}

// IsParsableManufacturerData returns true if a parser exists for the company ID
func IsParsableManufacturerData(companyID uint16) bool {
	_, ok := manufacturerDataParsers[companyID]
	return ok
}

// IBeacon is an Apple iBeacon payload.
type IBeacon struct {
	ProximityUUID string `json:"proximityUuid"`
	Major         uint16 `json:"major"`
	Minor         uint16 `json:"minor"`
	MeasuredPower int8   `json:"measuredPower"`
}

func (b *IBeacon) VendorID() uint16   { return CompanyApple }
func (b *IBeacon) VendorName() string { return "Apple iBeacon" }

func parseAppleData(data []byte) (interface{}, error) {
	// 0x02 0x15 marks an iBeacon; other Apple payloads are opaque
	if len(data) < 2 || data[0] != 0x02 || data[1] != 0x15 {
		return nil, nil
	}
	if len(data) < 23 {
		return nil, fmt.Errorf("iBeacon payload too short: %d bytes, expected 23", len(data))
	}

	return &IBeacon{
		ProximityUUID: ble.UUID(ble.Reverse(data[2:18])).String(),
		Major:         binary.BigEndian.Uint16(data[18:20]),
		Minor:         binary.BigEndian.Uint16(data[20:22]),
		MeasuredPower: int8(data[22]),
	}, nil
}

// BlimDeviceType represents known Blim device types
type BlimDeviceType uint8

const (
	BlimDeviceTypeBLETest BlimDeviceType = 0x00 // test peripheral
	BlimDeviceTypeIMU     BlimDeviceType = 0x01 // IMU streamer
)

func (t BlimDeviceType) String() string {
	switch t {
	case BlimDeviceTypeBLETest:
		return "BLE Test Device"
	case BlimDeviceTypeIMU:
		return "IMU Streamer"
	default:
		return fmt.Sprintf("Unknown (0x%02X)", uint8(t))
	}
}

// BlimData is a BLIMCo payload: device type, hardware version nibbles, firmware major.minor.patch.
type BlimData struct {
	DeviceType      BlimDeviceType `json:"deviceType"`
	HardwareVersion string         `json:"hardwareVersion"`
	FirmwareVersion string         `json:"firmwareVersion"`
}

func (b *BlimData) VendorID() uint16   { return CompanyBlim }
func (b *BlimData) VendorName() string { return "BLIMCo" }

func parseBlimData(data []byte) (interface{}, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("blim manufacturer data too short: %d bytes, expected 5", len(data))
	}
	return &BlimData{
		DeviceType:      BlimDeviceType(data[0]),
		HardwareVersion: fmt.Sprintf("%d.%d", data[1]>>4, data[1]&0x0F),
		FirmwareVersion: fmt.Sprintf("%d.%d.%d", data[2], data[3], data[4]),
	}, nil
}

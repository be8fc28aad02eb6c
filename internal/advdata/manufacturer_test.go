package advdata_test

import (
	"testing"

	"github.com/srg/blescan/internal/advdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManufacturerData_IBeacon(t *testing.T) {
	payload := []byte{
		0x02, 0x15,
		0xE2, 0xC5, 0x6D, 0xB5, 0xDF, 0xFB, 0x48, 0xD2, 0xB0, 0x60, 0xD0, 0xF5, 0xA7, 0x10, 0x96, 0xE0,
		0x00, 0x01, // major
		0x00, 0x2A, // minor
		0xC5, // -59 dBm
	}

	parsed, err := advdata.ParseManufacturerData(advdata.CompanyApple, payload)
	require.NoError(t, err)

	beacon, ok := parsed.(*advdata.IBeacon)
	require.True(t, ok, "iBeacon payload MUST parse into *IBeacon")
	assert.Equal(t, "e2c56db5dffb48d2b060d0f5a71096e0", beacon.ProximityUUID)
	assert.Equal(t, uint16(1), beacon.Major)
	assert.Equal(t, uint16(42), beacon.Minor)
	assert.Equal(t, int8(-59), beacon.MeasuredPower)
	assert.Equal(t, advdata.CompanyApple, beacon.VendorID())
}

func TestParseManufacturerData(t *testing.T) {
	tests := []struct {
		name      string
		companyID uint16
		data      []byte
		wantNil   bool
		wantErr   bool
	}{
		{"apple non-beacon payload is opaque", advdata.CompanyApple, []byte{0x10, 0x05, 0x01}, true, false},
		{"truncated iBeacon", advdata.CompanyApple, []byte{0x02, 0x15, 0x01}, true, true},
		{"unknown company", 0x1234, []byte{0x01}, true, false},
		{"short blim payload", advdata.CompanyBlim, []byte{0x01}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := advdata.ParseManufacturerData(tt.companyID, tt.data)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, parsed)
			}
		})
	}
}

func TestParseManufacturerData_Blim(t *testing.T) {
	parsed, err := advdata.ParseManufacturerData(advdata.CompanyBlim, []byte{0x01, 0x10, 2, 1, 3})
	require.NoError(t, err)

	data, ok := parsed.(*advdata.BlimData)
	require.True(t, ok)
	assert.Equal(t, advdata.BlimDeviceTypeIMU, data.DeviceType)
	assert.Equal(t, "IMU Streamer", data.DeviceType.String())
	assert.Equal(t, "1.0", data.HardwareVersion)
	assert.Equal(t, "2.1.3", data.FirmwareVersion)
	assert.Equal(t, "BLIMCo", data.VendorName())
}

func TestCompanyAndTypeNames(t *testing.T) {
	assert.Equal(t, "Apple", advdata.CompanyName(0x004C))
	assert.Equal(t, "0x1234", advdata.CompanyName(0x1234))
	assert.True(t, advdata.IsParsableManufacturerData(advdata.CompanyApple))
	assert.False(t, advdata.IsParsableManufacturerData(advdata.CompanyNordic))

	assert.Equal(t, "Complete Local Name", advdata.TypeName(advdata.TypeCompleteName))
	assert.Equal(t, "Unknown (0x3D)", advdata.TypeName(0x3D))
}

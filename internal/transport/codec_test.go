package transport_test

import (
	"testing"

	"github.com/srg/blescan/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartScanPayload(t *testing.T) {
	req := transport.StartScanRequest{
		ScanMode:        transport.ScanModeLowLatency,
		ServiceUUIDs:    []string{"180f"},
		DeviceIDs:       []string{"5C1B6F1E-0D9C-4A4B-8E8F-3F1C2F6D7A10"},
		MACAddresses:    []string{"AA:BB:CC:DD:EE:FF"},
		ManufacturerIDs: []uint16{0x004C},
		AllowDuplicates: true,
	}

	b, err := transport.EncodeStartScan(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"scanMode": "low-latency",
		"serviceUuids": ["180f"],
		"deviceIds": ["5C1B6F1E-0D9C-4A4B-8E8F-3F1C2F6D7A10"],
		"macAddresses": ["AA:BB:CC:DD:EE:FF"],
		"manufacturerIds": [76],
		"allowDuplicates": true
	}`, string(b))

	decoded, err := transport.DecodeStartScan(b)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)

	empty, err := transport.DecodeStartScan(nil)
	require.NoError(t, err, "empty payload MUST mean defaults")
	assert.Equal(t, transport.StartScanRequest{}, empty)
}

func TestDecodeResult(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    transport.ResultPayload
		wantErr string
	}{
		{
			name:    "full payload",
			payload: `{"device":"AA:BB:CC:DD:EE:FF","advertisement":"AgEG","rssi":-40,"connectable":true}`,
			want: transport.ResultPayload{
				Device:        "AA:BB:CC:DD:EE:FF",
				Advertisement: []byte{0x02, 0x01, 0x06},
				RSSI:          -40,
				Connectable:   true,
			},
		},
		{
			name:    "missing device",
			payload: `{"advertisement":"AgEG","rssi":-40}`,
			wantErr: "missing device",
		},
		{
			name:    "not json",
			payload: `garbage`,
			wantErr: "invalid result payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transport.DecodeResult([]byte(tt.payload))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrorPayload(t *testing.T) {
	b, err := transport.EncodeError(3)
	require.NoError(t, err)

	code, err := transport.DecodeError(b)
	require.NoError(t, err)
	assert.Equal(t, int32(3), code)

	_, err = transport.DecodeError([]byte(`{}`))
	assert.ErrorContains(t, err, "missing code")

	_, err = transport.DecodeError([]byte(`{"code":"x"}`))
	assert.Error(t, err)
}

package bledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLookupServiceWithFullUUID verifies that LookupService works with both short and full UUIDs
func TestLookupServiceWithFullUUID(t *testing.T) {
	tests := []struct {
		name     string
		uuid     string
		expected string
	}{
		{
			name:     "Heart Rate - short form",
			uuid:     "180d",
			expected: "Heart Rate",
		},
		{
			name:     "Heart Rate - with 0x prefix",
			uuid:     "0x180D",
			expected: "Heart Rate",
		},
		{
			name:     "Heart Rate - full Bluetooth SIG UUID with dashes",
			uuid:     "0000180d-0000-1000-8000-00805f9b34fb",
			expected: "Heart Rate",
		},
		{
			name:     "Battery Service - full UUID without dashes",
			uuid:     "0000180f00001000800000805f9b34fb",
			expected: "Battery Service",
		},
		{
			name:     "Nordic UART - custom 128-bit UUID",
			uuid:     "6E400001-B5A3-F393-E0A9-E50E24DCCA9E",
			expected: "Nordic UART Service",
		},
		{
			name:     "Unknown UUID",
			uuid:     "ffff",
			expected: "",
		},
		{
			name:     "Invalid UUID",
			uuid:     "not-a-uuid",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LookupService(tt.uuid))
		})
	}
}

func TestDescribeService(t *testing.T) {
	assert.Equal(t, "180f (Battery Service)", DescribeService("180f"))
	assert.Equal(t, "abcd", DescribeService("abcd"))
}

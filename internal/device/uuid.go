package device

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-ble/ble"
)

// sigBaseSuffix is the Bluetooth SIG base UUID after the 16-bit alias (xxxx in 0000xxxx-0000-1000-8000-00805f9b34fb).
const sigBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID converts a UUID string to the form advertisements are decoded
// into: lowercase hex, no dashes, braces or 0x prefix. 128-bit UUIDs in the
// Bluetooth SIG base collapse to their 16-bit alias. Returns "" for strings
// that are not a 16, 32 or 128-bit UUID.
func NormalizeUUID(uuid string) string {
	s := strings.ToLower(strings.TrimSpace(uuid))
	s = strings.TrimPrefix(s, "0x")
	s = strings.Trim(s, "{}")
	s = strings.ReplaceAll(s, "-", "")

	if _, err := hex.DecodeString(s); err != nil {
		return ""
	}

	switch len(s) {
	case 4, 8:
		return s
	case 32:
		if strings.HasPrefix(s, "0000") && strings.HasSuffix(s, sigBaseSuffix) {
			return s[4:8]
		}
		return s
	default:
		return ""
	}
}

// ShortenUUID returns a truncated version of a UUID for display purposes.
// Returns the first eight characters for long UUIDs and short UUIDs by themselves.
func ShortenUUID(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}

// ValidateUUID validates that UUID strings are non-empty and well-formed.
// Returns normalized UUID strings or an error.
func ValidateUUID(uuids ...string) ([]string, error) {
	if len(uuids) == 0 {
		return nil, fmt.Errorf("at least one UUID is required")
	}

	result := make([]string, 0, len(uuids))
	for i, uuid := range uuids {
		if uuid == "" {
			return nil, fmt.Errorf("UUID at index %d cannot be empty", i)
		}
		normalized := NormalizeUUID(uuid)
		if normalized == "" {
			return nil, fmt.Errorf("invalid UUID format at index %d: %s", i, uuid)
		}
		result = append(result, normalized)
	}
	return result, nil
}

// ParseUUID converts a normalized UUID string to the go-ble wire representation.
func ParseUUID(uuid string) (ble.UUID, error) {
	n := NormalizeUUID(uuid)
	if n == "" {
		return nil, fmt.Errorf("invalid UUID: %q", uuid)
	}
	b, err := hex.DecodeString(n)
	if err != nil {
		return nil, err
	}
	return ble.Reverse(b), nil
}

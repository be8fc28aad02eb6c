//go:build !darwin && !linux

package goble

import "errors"

func newPlatformDevice() (ScanningDevice, error) {
	return nil, errors.New("BLE scanning is not supported on this platform")
}

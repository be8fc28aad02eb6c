//go:build darwin

package goble

import "github.com/go-ble/ble/darwin"

func newPlatformDevice() (ScanningDevice, error) {
	return darwin.NewDevice()
}

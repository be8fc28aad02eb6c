//go:build linux

package goble

import "github.com/go-ble/ble/linux"

func newPlatformDevice() (ScanningDevice, error) {
	return linux.NewDevice()
}

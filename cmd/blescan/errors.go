package main

import (
	"errors"
	"fmt"

	"github.com/srg/blescan/internal/advdata"
	"github.com/srg/blescan/internal/device"
)

// FormatUserError turns known errors into a one-line message for the terminal.
func FormatUserError(err error) string {
	var (
		scanErr   *device.ScanError
		decodeErr *advdata.DecodeError
		reqErr    *device.TransportRequestError
	)

	switch {
	case errors.Is(err, device.ErrBluetoothOff),
		errors.Is(err, &device.ScanError{Code: device.CodeBluetoothOff}):
		return "Bluetooth is turned off or unavailable. Turn it on and try again."
	case errors.Is(err, device.ErrAlreadyScanning):
		return "a scan is already running"
	case errors.As(err, &scanErr):
		if scanErr.Code == device.CodeUnknown {
			return "the scan was aborted by the platform"
		}
		return fmt.Sprintf("the scan failed (platform code %d)", scanErr.Code)
	case errors.As(err, &decodeErr):
		return fmt.Sprintf("malformed advertising data: structure at byte %d declares %d bytes, only %d left",
			decodeErr.Offset, decodeErr.Want, decodeErr.Have)
	case errors.As(err, &reqErr):
		return fmt.Sprintf("could not %s: %v", reqErr.Method, reqErr.Err)
	default:
		return err.Error()
	}
}

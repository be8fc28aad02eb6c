package device

import (
	"errors"
	"fmt"
	"strings"
)

// ScanState represents the specific kind of scan state violation
type ScanState string

const (
	AlreadyScanning ScanState = "already_scanning"
)

// StateError represents a scan operation attempted in the wrong session state
type StateError struct {
	State ScanState
	Msg   string
}

// Error implements the error interface
func (e *StateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare StateError values by State
func (e *StateError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*StateError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// ErrAlreadyScanning is returned by StartScan while a scan is active.
var ErrAlreadyScanning = &StateError{State: AlreadyScanning}

// ErrBluetoothOff is reported when the adapter is powered off or unavailable.
var ErrBluetoothOff = errors.New("bluetooth is turned off")

// TransportRequestError is returned when a request to the platform transport fails.
type TransportRequestError struct {
	Method string
	Err    error
}

func (e *TransportRequestError) Error() string {
	return fmt.Sprintf("transport request %q failed: %v", e.Method, e.Err)
}

func (e *TransportRequestError) Unwrap() error {
	return e.Err
}

// Native scan failure codes carried by ScanError.
const (
	CodeUnknown      int32 = -1 // error payload could not be decoded
	CodeBluetoothOff int32 = 1
	CodeScanFailed   int32 = 2
)

// ScanError is a scan failure reported by the platform. It always ends the active scan.
type ScanError struct {
	Code int32
}

func (e *ScanError) Error() string {
	switch e.Code {
	case CodeUnknown:
		return "scan failed: unknown error"
	case CodeBluetoothOff:
		return "scan failed: bluetooth is turned off"
	default:
		return fmt.Sprintf("scan failed: code %d", e.Code)
	}
}

// Is makes ScanError values equal by code for errors.Is
func (e *ScanError) Is(target error) bool {
	t, ok := target.(*ScanError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NormalizeError maps known platform error strings to sentinel errors.
// Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch {
	case msg == "central manager has invalid state: have=4 want=5: is Bluetooth turned on?":
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "bluetooth is turned off"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "can't init hci"):
		return fmt.Errorf("%w: %v", ErrBluetoothOff, err)
	default:
		return err
	}
}

// ScanErrorFor converts a native scan failure into a ScanError code.
func ScanErrorFor(err error) *ScanError {
	if errors.Is(NormalizeError(err), ErrBluetoothOff) {
		return &ScanError{Code: CodeBluetoothOff}
	}
	return &ScanError{Code: CodeScanFailed}
}

// containsIgnoreCase checks the substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

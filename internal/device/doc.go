// Package device defines the scan result model shared by the scanner, the
// transports and the CLI.
//
// It provides:
//   - ID, the case-insensitive device identity used for deduplication
//   - ScanResult, one observation of a device, equal by device only
//   - ScanError and StateError with errors.Is support
//   - UUID normalization and validation for scan filters
package device

package testutils

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestHelper bundles a test with a logger whose output is captured.
type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
	Output *bytes.Buffer
}

// NewTestHelper creates a test helper with a captured debug logger.
func NewTestHelper(t *testing.T) *TestHelper {
	out := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel) // enable debug logs to track execution flow
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return &TestHelper{T: t, Logger: logger, Output: out}
}

// CreateMockAdvertisement starts an advertisement builder for a named device.
func CreateMockAdvertisement(name, address string, rssi int) *AdvertisementBuilder {
	return NewAdvertisementBuilder().WithName(name).WithAddress(address).WithRSSI(rssi)
}

// CreateMockAdvertisementFromJSON starts an advertisement builder from JSON.
func CreateMockAdvertisementFromJSON(jsonStrFmt string, args ...interface{}) *AdvertisementBuilder {
	return NewAdvertisementBuilder().FromJSON(jsonStrFmt, args...)
}

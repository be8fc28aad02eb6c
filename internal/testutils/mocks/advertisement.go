package mocks

import (
	"github.com/go-ble/ble"
	"github.com/stretchr/testify/mock"
)

// MockAdvertisement implements ble.Advertisement for testing
type MockAdvertisement struct {
	mock.Mock
}

func (m *MockAdvertisement) LocalName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAdvertisement) ManufacturerData() []byte {
	args := m.Called()
	b, _ := args.Get(0).([]byte)
	return b
}

func (m *MockAdvertisement) ServiceData() []ble.ServiceData {
	args := m.Called()
	sd, _ := args.Get(0).([]ble.ServiceData)
	return sd
}

func (m *MockAdvertisement) Services() []ble.UUID {
	args := m.Called()
	u, _ := args.Get(0).([]ble.UUID)
	return u
}

func (m *MockAdvertisement) OverflowService() []ble.UUID {
	args := m.Called()
	u, _ := args.Get(0).([]ble.UUID)
	return u
}

func (m *MockAdvertisement) TxPowerLevel() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockAdvertisement) Connectable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAdvertisement) SolicitedService() []ble.UUID {
	args := m.Called()
	u, _ := args.Get(0).([]ble.UUID)
	return u
}

func (m *MockAdvertisement) RSSI() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockAdvertisement) Addr() ble.Addr {
	args := m.Called()
	return args.Get(0).(ble.Addr)
}

// MockAddr implements ble.Addr for testing
type MockAddr struct {
	mock.Mock
}

func (m *MockAddr) String() string {
	args := m.Called()
	return args.String(0)
}

package mocks

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/eventbus"
	"github.com/srg/blescan/internal/transport"
	"github.com/stretchr/testify/mock"
)

// MockTransport implements transport.Transport for testing.
//
// Requests go through testify expectations; events are pushed by the test
// with Emit and reach every subscriber through a real eventbus.
type MockTransport struct {
	mock.Mock
	bus *eventbus.Bus[transport.Event]

	mu     sync.Mutex
	counts map[string]int
}

// NewMockTransport creates a MockTransport with an open event feed.
func NewMockTransport(logger *logrus.Logger) *MockTransport {
	return &MockTransport{
		bus:    eventbus.New[transport.Event](eventbus.DefaultCapacity, logger),
		counts: make(map[string]int),
	}
}

func (m *MockTransport) Request(ctx context.Context, method string, payload []byte) ([]byte, error) {
	m.mu.Lock()
	m.counts[method]++
	m.mu.Unlock()

	args := m.Called(ctx, method, payload)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockTransport) Subscribe() *eventbus.Subscription[transport.Event] {
	return m.bus.Subscribe()
}

// Emit pushes an event to all subscribers.
func (m *MockTransport) Emit(tag string, payload []byte) {
	m.bus.Publish(transport.Event{Tag: tag, Payload: payload})
}

// Subscribers returns the number of live event subscriptions.
func (m *MockTransport) Subscribers() int {
	return m.bus.Len()
}

// Close closes the event feed.
func (m *MockTransport) Close() {
	m.bus.Close()
}

// CountCalls returns how many times method was requested.
func (m *MockTransport) CountCalls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[method]
}

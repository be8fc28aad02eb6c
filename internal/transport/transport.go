// Package transport defines the bridge between the scan session and the
// platform BLE stack: synchronous requests plus a push feed of tagged events.
package transport

import (
	"context"

	"github.com/srg/blescan/internal/eventbus"
)

// Request methods understood by transports.
const (
	MethodStartScan = "start-scan"
	MethodStopScan  = "stop-scan"
)

// Event tags pushed by transports. Other tags may appear and are ignored by the scanner.
const (
	TagResult = "result"
	TagError  = "error"
)

// Event is one pushed message with an opaque payload.
type Event struct {
	Tag     string
	Payload []byte
}

// Transport is the request/response and push-event bridge to native BLE code.
type Transport interface {
	// Request performs a synchronous call and returns its response bytes.
	Request(ctx context.Context, method string, payload []byte) ([]byte, error)

	// Subscribe attaches a new listener to the push-event feed.
	Subscribe() *eventbus.Subscription[Event]
}

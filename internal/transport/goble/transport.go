// Package goble implements transport.Transport on top of github.com/go-ble/ble.
//
// A start-scan request launches the native scan in a named goroutine; every
// advertisement that passes the request's filters is re-serialized into AD
// bytes and pushed as a result event. A native scan failure is pushed as an
// error event.
package goble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/eventbus"
	"github.com/srg/blescan/internal/groutine"
	"github.com/srg/blescan/internal/transport"
)

// ErrUnsupportedMethod is returned for request methods this transport does not implement.
var ErrUnsupportedMethod = errors.New("unsupported method")

// ScanningDevice is the part of ble.Device the transport drives.
type ScanningDevice interface {
	Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error
}

// DeviceFactory creates the platform scanning device.
// This is a variable so that it can be overridden in tests.
var DeviceFactory = newPlatformDevice

// Transport is a go-ble backed transport.Transport.
type Transport struct {
	bus    *eventbus.Bus[transport.Event]
	logger *logrus.Logger

	mu     sync.Mutex
	dev    ScanningDevice
	cancel context.CancelFunc
	done   <-chan struct{}
}

// Option configures a Transport.
type Option func(*options)

type options struct {
	eventBuffer uint32
}

// WithEventBuffer sets how many events each subscriber may fall behind before losing the oldest.
func WithEventBuffer(n uint32) Option {
	return func(o *options) { o.eventBuffer = n }
}

// New creates a Transport. The platform device is opened on the first start-scan.
func New(logger *logrus.Logger, opts ...Option) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	o := options{eventBuffer: eventbus.DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	return &Transport{
		bus:    eventbus.New[transport.Event](o.eventBuffer, logger),
		logger: logger,
	}
}

// Subscribe implements transport.Transport.
func (t *Transport) Subscribe() *eventbus.Subscription[transport.Event] {
	return t.bus.Subscribe()
}

// Request implements transport.Transport.
func (t *Transport) Request(ctx context.Context, method string, payload []byte) ([]byte, error) {
	switch method {
	case transport.MethodStartScan:
		return nil, t.startScan(payload)
	case transport.MethodStopScan:
		return nil, t.stopScan(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
}

// Close stops any running scan and closes the event feed.
func (t *Transport) Close() error {
	err := t.stopScan(context.Background())
	t.bus.Close()
	return err
}

func (t *Transport) startScan(payload []byte) error {
	req, err := transport.DecodeStartScan(payload)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running() {
		return &device.StateError{State: device.AlreadyScanning, Msg: "native scan in progress"}
	}

	if t.dev == nil {
		dev, err := DeviceFactory()
		if err != nil {
			return fmt.Errorf("failed to create BLE device: %w", device.NormalizeError(err))
		}
		t.dev = dev
	}

	f := newFilter(req)
	dev := t.dev

	scanCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = groutine.Go(scanCtx, "goble-scan", func(ctx context.Context) {
		log := groutine.Logger(ctx, t.logger)
		log.WithFields(logrus.Fields{
			"mode":             req.ScanMode,
			"allow_duplicates": req.AllowDuplicates,
		}).Debug("Native scan started")

		err := dev.Scan(ctx, req.AllowDuplicates, func(adv ble.Advertisement) {
			t.handleAdvertisement(adv, f)
		})
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			scanErr := device.ScanErrorFor(err)
			log.WithError(err).WithField("code", scanErr.Code).Warn("Native scan failed")
			t.publishError(scanErr.Code)
			return
		}
		log.Debug("Native scan finished")
	})

	return nil
}

func (t *Transport) stopScan(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel == nil {
		return nil
	}
	t.cancel()

	select {
	case <-t.done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for native scan to stop: %w", ctx.Err())
	}

	t.cancel = nil
	t.done = nil
	return nil
}

// running reports whether a native scan goroutine is still alive. Callers hold t.mu.
func (t *Transport) running() bool {
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *Transport) handleAdvertisement(adv ble.Advertisement, f *filter) {
	if !f.match(adv) {
		return
	}

	payload, err := transport.EncodeResult(transport.ResultPayload{
		Device:        adv.Addr().String(),
		Advertisement: advertisementBytes(adv),
		RSSI:          int32(adv.RSSI()),
		Connectable:   adv.Connectable(),
	})
	if err != nil {
		t.logger.WithError(err).Warn("Failed to encode scan result")
		return
	}
	t.bus.Publish(transport.Event{Tag: transport.TagResult, Payload: payload})
}

func (t *Transport) publishError(code int32) {
	payload, err := transport.EncodeError(code)
	if err != nil {
		t.logger.WithError(err).Error("Failed to encode scan error")
		return
	}
	t.bus.Publish(transport.Event{Tag: transport.TagError, Payload: payload})
}

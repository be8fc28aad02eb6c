// Package scanner runs BLE scan sessions over a transport.
//
// A Session allows one active scan at a time. Each scan subscribes to the
// transport's events, keeps an ordered result set with one entry per device,
// republishes it on the results feed and forwards every result to the
// caller's Scan. A scan ends on StopScan, on its timeout, on a transport error
// event, when the StartScan context is done, or when the consumer stops
// iterating; the first of these wins and cleanup always runs in full.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/blescan/internal/advdata"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/eventbus"
	"github.com/srg/blescan/internal/feed"
	"github.com/srg/blescan/internal/groutine"
	"github.com/srg/blescan/internal/ringchan"
	"github.com/srg/blescan/internal/transport"
	"github.com/srg/blescan/pkg/config"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	// ErrSequenceConsumed is yielded when a Scan is iterated a second time.
	ErrSequenceConsumed = errors.New("scan sequence already consumed")
	// ErrScanStopped is the cause of a scan ended by StopScan or a consumer break.
	ErrScanStopped = errors.New("scan stopped")
	// ErrScanTimeout is the cause of a scan ended by its timeout.
	ErrScanTimeout = errors.New("scan timed out")
	// ErrTransportClosed is the cause of a scan whose transport event feed went away.
	ErrTransportClosed = errors.New("transport event feed closed")
)

// Option configures a Session.
type Option func(*Session)

// WithConfig sets the buffer sizes and stop timeout.
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithClock overrides the time source stamped on results.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session owns the scan state for one transport.
type Session struct {
	tr     transport.Transport
	logger *logrus.Logger
	cfg    *config.Config
	now    func() time.Time

	mu     sync.Mutex // serializes StartScan and StopScan
	active *Scan

	scanning *feed.Value[bool]
	results  *feed.Value[[]device.ScanResult]
}

// NewSession creates an idle session on top of tr.
func NewSession(tr transport.Transport, logger *logrus.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Session{
		tr:       tr,
		logger:   logger,
		cfg:      config.DefaultConfig(),
		now:      time.Now,
		scanning: feed.NewValue(false),
		results:  feed.NewValue([]device.ScanResult{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsScanning reports whether a scan is active.
func (s *Session) IsScanning() bool {
	return s.scanning.Get()
}

// Results returns the result set of the current or last scan, in discovery order.
func (s *Session) Results() []device.ScanResult {
	return s.results.Get()
}

// ScanningFeed publishes the scanning flag.
func (s *Session) ScanningFeed() *feed.Value[bool] {
	return s.scanning
}

// ResultsFeed publishes a fresh snapshot of the result set after every change.
func (s *Session) ResultsFeed() *feed.Value[[]device.ScanResult] {
	return s.results
}

// StartScan starts a scan and returns its result sequence.
//
// It fails with device.ErrAlreadyScanning while another scan is active and
// with *device.TransportRequestError when the transport rejects the start
// request; in both cases the session state is left idle or unchanged.
// A timeout of zero means no timeout. The scan also ends when ctx is done.
func (s *Session) StartScan(ctx context.Context, opts *ScanOptions, timeout time.Duration) (*Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.awaitIdle(); err != nil {
		return nil, err
	}

	if opts == nil {
		opts = DefaultScanOptions()
	}
	req, err := opts.request()
	if err != nil {
		return nil, err
	}
	payload, err := transport.EncodeStartScan(req)
	if err != nil {
		return nil, err
	}

	// Subscribe before the request so no early event is missed.
	sub := s.tr.Subscribe()

	s.scanning.Set(true)
	s.results.Set([]device.ScanResult{})

	log := s.logger.WithFields(logrus.Fields{
		"mode":    req.ScanMode,
		"timeout": timeout,
	})

	if _, err := s.tr.Request(ctx, transport.MethodStartScan, payload); err != nil {
		sub.Close()
		s.scanning.Set(false)
		log.WithError(err).Debug("Start scan request failed")
		return nil, &device.TransportRequestError{Method: transport.MethodStartScan, Err: device.NormalizeError(err)}
	}

	scanCtx, cancel := context.WithCancelCause(ctx)
	stopTimer := context.CancelFunc(func() {})
	if timeout > 0 {
		scanCtx, stopTimer = context.WithTimeoutCause(scanCtx, timeout, ErrScanTimeout)
	}

	sc := &Scan{
		out:    ringchan.New[device.ScanResult](s.cfg.SequenceBuffer),
		cancel: cancel,
	}
	sc.done = groutine.Go(scanCtx, "scan-loop", func(ctx context.Context) {
		defer stopTimer()
		s.run(ctx, sc, sub)
	})
	s.active = sc

	log.Info("BLE scan started")
	return sc, nil
}

// StopScan ends the active scan and returns after cleanup has completed.
// Without an active scan it only republishes scanning=false.
func (s *Session) StopScan() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Stop()
		s.active = nil
	}
	s.scanning.Set(false)
}

// awaitIdle enforces one active scan. A scan that has already published
// scanning=false is only closing its sequence, so it is waited for.
// Callers hold s.mu.
func (s *Session) awaitIdle() error {
	if s.active == nil {
		return nil
	}
	select {
	case <-s.active.done:
	default:
		if s.scanning.Get() {
			return device.ErrAlreadyScanning
		}
		<-s.active.done
	}
	s.active = nil
	return nil
}

// run is the single writer of the scan's result set. Cleanup order is fixed:
// stop consuming events, ask the transport to stop, clear scanning, then
// close the caller's sequence.
func (s *Session) run(ctx context.Context, sc *Scan, sub *eventbus.Subscription[transport.Event]) {
	log := groutine.Logger(ctx, s.logger)
	results := orderedmap.New[string, device.ScanResult]()

	for ctx.Err() == nil {
		ev, err := sub.Next(ctx)
		if err != nil {
			if errors.Is(err, eventbus.ErrClosed) {
				sc.cancel(ErrTransportClosed)
			}
			break
		}

		switch ev.Tag {
		case transport.TagResult:
			s.handleResult(log, sc, results, ev.Payload)
		case transport.TagError:
			code, err := transport.DecodeError(ev.Payload)
			if err != nil {
				log.WithError(err).Warn("Malformed scan error event")
				code = device.CodeUnknown
			}
			sc.cancel(&device.ScanError{Code: code})
		default:
			log.WithField("tag", ev.Tag).Debug("Ignoring transport event")
		}
	}

	cause := context.Cause(ctx)
	sub.Close()

	s.requestStop(log)
	s.scanning.Set(false)

	log.WithFields(logrus.Fields{
		"cause":        cause,
		"device_count": results.Len(),
	}).Info("BLE scan completed")

	sc.cause = cause
	sc.out.Close()
}

func (s *Session) requestStop(log *logrus.Entry) {
	ctx := context.Background()
	if s.cfg.StopTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StopTimeout)
		defer cancel()
	}

	if _, err := s.tr.Request(ctx, transport.MethodStopScan, nil); err != nil {
		reqErr := &device.TransportRequestError{Method: transport.MethodStopScan, Err: err}
		log.WithError(reqErr).Warn("Stop scan request failed, local state reset anyway")
	}
}

// handleResult decodes one result event, stores it and forwards it. A
// malformed payload is dropped and the scan continues.
func (s *Session) handleResult(log *logrus.Entry, sc *Scan, results *orderedmap.OrderedMap[string, device.ScanResult], payload []byte) {
	p, err := transport.DecodeResult(payload)
	if err != nil {
		log.WithError(err).Warn("Dropping malformed scan result")
		return
	}

	adv, err := advdata.Parse(p.Advertisement)
	if err != nil {
		log.WithError(err).WithField("device", p.Device).Warn("Dropping scan result with malformed advertisement")
		return
	}
	adv.Connectable = p.Connectable

	r := device.ScanResult{
		Device:        device.ID(p.Device),
		Advertisement: adv,
		RSSI:          p.RSSI,
		ObservedAt:    s.now(),
	}

	// Set keeps the original position of an existing key.
	if _, existed := results.Set(r.Device.Key(), r); !existed {
		log.WithFields(logrus.Fields{
			"device": r.DisplayName(),
			"id":     r.Device,
			"rssi":   r.RSSI,
		}).Debug("Discovered new device")
	}

	snapshot := make([]device.ScanResult, 0, results.Len())
	for pair := results.Oldest(); pair != nil; pair = pair.Next() {
		snapshot = append(snapshot, pair.Value)
	}
	s.results.Set(snapshot)

	sc.out.Send(r)
}

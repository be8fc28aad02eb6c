package mocks

import (
	"context"

	"github.com/go-ble/ble"
)

// ScanningDevice is a scripted native scanner. Scan delivers Advertisements to
// the handler, then either returns Err or blocks until ctx is cancelled.
type ScanningDevice struct {
	Advertisements []ble.Advertisement
	Err            error

	Started  chan bool
	Finished chan struct{}
}

// NewScanningDevice creates a ScanningDevice delivering ads.
func NewScanningDevice(ads ...ble.Advertisement) *ScanningDevice {
	return &ScanningDevice{
		Advertisements: ads,
		Started:        make(chan bool, 8),
		Finished:       make(chan struct{}, 8),
	}
}

func (d *ScanningDevice) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	d.Started <- allowDup
	defer func() { d.Finished <- struct{}{} }()

	for _, adv := range d.Advertisements {
		h(adv)
	}
	if d.Err != nil {
		return d.Err
	}
	<-ctx.Done()
	return ctx.Err()
}

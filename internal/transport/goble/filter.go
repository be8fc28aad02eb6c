package goble

import (
	"encoding/binary"
	"strings"

	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/transport"
)

// filter applies the start-scan request filters to advertisements.
// Each configured category must match; within a category any entry matches.
// Device IDs and MAC addresses form one address category.
type filter struct {
	addresses     map[string]struct{}
	services      []ble.UUID
	manufacturers map[uint16]struct{}
}

func newFilter(req transport.StartScanRequest) *filter {
	f := &filter{}

	for _, a := range append(append([]string(nil), req.DeviceIDs...), req.MACAddresses...) {
		if f.addresses == nil {
			f.addresses = make(map[string]struct{})
		}
		f.addresses[device.ID(a).Key()] = struct{}{}
	}

	for _, s := range req.ServiceUUIDs {
		if u, err := device.ParseUUID(s); err == nil {
			f.services = append(f.services, u)
		}
	}

	for _, id := range req.ManufacturerIDs {
		if f.manufacturers == nil {
			f.manufacturers = make(map[uint16]struct{})
		}
		f.manufacturers[id] = struct{}{}
	}

	return f
}

func (f *filter) match(adv ble.Advertisement) bool {
	if f.addresses != nil {
		if _, ok := f.addresses[strings.ToUpper(adv.Addr().String())]; !ok {
			return false
		}
	}

	if len(f.services) > 0 {
		advertised := append(append([]ble.UUID(nil), adv.Services()...), adv.OverflowService()...)
		found := false
		for _, want := range f.services {
			for _, have := range advertised {
				if want.Equal(have) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.manufacturers != nil {
		md := adv.ManufacturerData()
		if len(md) < 2 {
			return false
		}
		if _, ok := f.manufacturers[binary.LittleEndian.Uint16(md)]; !ok {
			return false
		}
	}

	return true
}

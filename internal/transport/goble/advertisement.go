package goble

import (
	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/advdata"
)

// txPowerUnknown is what go-ble reports when no TX power level was advertised.
const txPowerUnknown = 127

// advertisementBytes rebuilds AD bytes from a go-ble advertisement.
//
// go-ble hands out decoded fields only, so the payload is synthesized: fields
// follow a fixed order and advertising data and scan response are merged,
// which can exceed the 31 byte legacy limit.
func advertisementBytes(adv ble.Advertisement) []byte {
	b := advdata.NewBuilder()

	if name := adv.LocalName(); name != "" {
		b.CompleteName(name)
	}
	if tx := adv.TxPowerLevel(); tx != txPowerUnknown && tx >= -128 && tx < 127 {
		b.TxPower(int8(tx))
	}

	services := append(append([]ble.UUID(nil), adv.Services()...), adv.OverflowService()...)
	b.ServiceUUIDs(services...)
	b.SolicitedUUIDs(adv.SolicitedService()...)

	for _, sd := range adv.ServiceData() {
		b.ServiceData(sd.UUID, sd.Data)
	}
	if md := adv.ManufacturerData(); len(md) > 0 {
		b.RawManufacturerData(md)
	}

	return b.Bytes()
}

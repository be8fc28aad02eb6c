package testutils

import (
	"encoding/json"
	"fmt"

	"github.com/go-ble/ble"
	"github.com/srg/blescan/internal/advdata"
	"github.com/srg/blescan/internal/testutils/mocks"
	"github.com/srg/blescan/internal/transport"
)

// txPowerUnknown is what go-ble reports when no TX power level was advertised.
const txPowerUnknown = 127

// AdvertisementBuilder builds mocked go-ble advertisements for testing.
// Unset fields report their zero value, as a real adapter would for an
// advertisement that does not carry them.
type AdvertisementBuilder struct {
	name        string
	address     string
	rssi        int
	services    []string
	solicited   []string
	manufData   []byte
	serviceData []ble.ServiceData
	txPower     int
	connectable bool
}

// NewAdvertisementBuilder creates a new AdvertisementBuilder with default values.
// The builder starts connectable, at -50 dBm and without TX power.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{
		rssi:        -50,
		txPower:     txPowerUnknown,
		connectable: true,
	}
}

// WithName sets the local name for the advertisement.
func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.name = name
	return b
}

// WithAddress sets the device address for the advertisement.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.address = addr
	return b
}

// WithRSSI sets the signal strength for the advertisement.
func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.rssi = rssi
	return b
}

// WithServices adds service UUIDs to the advertisement.
// UUIDs can be in short form (e.g., "180D") or full form.
func (b *AdvertisementBuilder) WithServices(uuids ...string) *AdvertisementBuilder {
	b.services = append(b.services, uuids...)
	return b
}

// WithSolicitedServices adds solicited service UUIDs to the advertisement.
func (b *AdvertisementBuilder) WithSolicitedServices(uuids ...string) *AdvertisementBuilder {
	b.solicited = append(b.solicited, uuids...)
	return b
}

// WithManufacturerData sets the manufacturer-specific data, company ID included.
func (b *AdvertisementBuilder) WithManufacturerData(data []byte) *AdvertisementBuilder {
	b.manufData = data
	return b
}

// WithServiceData adds service-specific data for the given service UUID.
func (b *AdvertisementBuilder) WithServiceData(uuid string, data []byte) *AdvertisementBuilder {
	b.serviceData = append(b.serviceData, ble.ServiceData{UUID: ble.MustParse(uuid), Data: data})
	return b
}

// WithTxPower sets the transmission power level.
func (b *AdvertisementBuilder) WithTxPower(power int) *AdvertisementBuilder {
	b.txPower = power
	return b
}

// WithConnectable sets whether the device accepts connections.
func (b *AdvertisementBuilder) WithConnectable(c bool) *AdvertisementBuilder {
	b.connectable = c
	return b
}

// FromJSON fills builder fields from a JSON string with format support.
// Panics on invalid JSON as this is intended for test data setup.
func (b *AdvertisementBuilder) FromJSON(jsonStrFmt string, args ...interface{}) *AdvertisementBuilder {
	jsonStr := fmt.Sprintf(jsonStrFmt, args...)

	var data struct {
		Name             *string           `json:"name"`
		Address          *string           `json:"address"`
		RSSI             *int              `json:"rssi"`
		Services         []string          `json:"services"`
		ManufacturerData []byte            `json:"manufacturerData"`
		ServiceData      map[string][]byte `json:"serviceData"`
		TxPower          *int              `json:"txPower"`
		Connectable      *bool             `json:"connectable"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		panic(fmt.Sprintf("FromJSON: %v", err))
	}

	if data.Name != nil {
		b.WithName(*data.Name)
	}
	if data.Address != nil {
		b.WithAddress(*data.Address)
	}
	if data.RSSI != nil {
		b.WithRSSI(*data.RSSI)
	}
	b.WithServices(data.Services...)
	if data.ManufacturerData != nil {
		b.WithManufacturerData(data.ManufacturerData)
	}
	for uuid, sd := range data.ServiceData {
		b.WithServiceData(uuid, sd)
	}
	if data.TxPower != nil {
		b.WithTxPower(*data.TxPower)
	}
	if data.Connectable != nil {
		b.WithConnectable(*data.Connectable)
	}
	return b
}

// Build creates a MockAdvertisement that implements ble.Advertisement.
func (b *AdvertisementBuilder) Build() *mocks.MockAdvertisement {
	addr := &mocks.MockAddr{}
	addr.On("String").Return(b.address).Maybe()

	adv := &mocks.MockAdvertisement{}
	adv.On("Addr").Return(addr).Maybe()
	adv.On("LocalName").Return(b.name).Maybe()
	adv.On("RSSI").Return(b.rssi).Maybe()
	adv.On("ManufacturerData").Return(b.manufData).Maybe()
	adv.On("ServiceData").Return(b.serviceData).Maybe()
	adv.On("Services").Return(parseUUIDs(b.services)).Maybe()
	adv.On("OverflowService").Return([]ble.UUID(nil)).Maybe()
	adv.On("SolicitedService").Return(parseUUIDs(b.solicited)).Maybe()
	adv.On("TxPowerLevel").Return(b.txPower).Maybe()
	adv.On("Connectable").Return(b.connectable).Maybe()
	return adv
}

// Bytes returns the AD payload a peripheral with this configuration would advertise.
func (b *AdvertisementBuilder) Bytes() []byte {
	ab := advdata.NewBuilder()
	if b.name != "" {
		ab.CompleteName(b.name)
	}
	if b.txPower != txPowerUnknown {
		ab.TxPower(int8(b.txPower))
	}
	ab.ServiceUUIDs(parseUUIDs(b.services)...)
	ab.SolicitedUUIDs(parseUUIDs(b.solicited)...)
	for _, sd := range b.serviceData {
		ab.ServiceData(sd.UUID, sd.Data)
	}
	if len(b.manufData) > 0 {
		ab.RawManufacturerData(b.manufData)
	}
	return ab.Bytes()
}

// ResultPayload returns the encoded result event payload for this advertisement.
// Panics on encoding failure as this is intended for test data setup.
func (b *AdvertisementBuilder) ResultPayload() []byte {
	payload, err := transport.EncodeResult(transport.ResultPayload{
		Device:        b.address,
		Advertisement: b.Bytes(),
		RSSI:          int32(b.rssi),
		Connectable:   b.connectable,
	})
	if err != nil {
		panic(err)
	}
	return payload
}

// ErrorPayload returns an encoded error event payload.
func ErrorPayload(code int32) []byte {
	payload, err := transport.EncodeError(code)
	if err != nil {
		panic(err)
	}
	return payload
}

func parseUUIDs(uuids []string) []ble.UUID {
	var out []ble.UUID
	for _, s := range uuids {
		out = append(out, ble.MustParse(s))
	}
	return out
}

// AdvertisementArrayBuilder builds a slice of ble.Advertisement fluently.
//
//	ads := NewAdvertisementArrayBuilder().
//	    WithNewAdvertisement(func(b *AdvertisementBuilder) { b.WithName("A").WithAddress("AA:BB:CC:DD:EE:01") }).
//	    WithNewAdvertisement(func(b *AdvertisementBuilder) { b.WithAddress("AA:BB:CC:DD:EE:02") }).
//	    Build()
type AdvertisementArrayBuilder struct {
	advertisements []ble.Advertisement
}

// NewAdvertisementArrayBuilder creates an empty array builder.
func NewAdvertisementArrayBuilder() *AdvertisementArrayBuilder {
	return &AdvertisementArrayBuilder{}
}

// WithAdvertisements adds pre-existing advertisements.
func (ab *AdvertisementArrayBuilder) WithAdvertisements(ads ...ble.Advertisement) *AdvertisementArrayBuilder {
	ab.advertisements = append(ab.advertisements, ads...)
	return ab
}

// WithNewAdvertisement configures and appends a new advertisement.
func (ab *AdvertisementArrayBuilder) WithNewAdvertisement(configure func(*AdvertisementBuilder)) *AdvertisementArrayBuilder {
	b := NewAdvertisementBuilder()
	configure(b)
	ab.advertisements = append(ab.advertisements, b.Build())
	return ab
}

// Build returns the configured advertisements.
func (ab *AdvertisementArrayBuilder) Build() []ble.Advertisement {
	return ab.advertisements
}

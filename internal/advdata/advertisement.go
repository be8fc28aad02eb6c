package advdata

import (
	"encoding/binary"

	"github.com/go-ble/ble"
)

// Advertisement is a decoded advertisement snapshot.
//
// Elements always holds every AD structure found in Raw, including types that
// have no typed field below. The typed fields are filled best-effort: a known
// structure with a malformed value is left in Elements and otherwise ignored.
type Advertisement struct {
	LocalName        string            `json:"localName"`
	TxPower          *int8             `json:"txPower"`
	Connectable      bool              `json:"connectable"`
	Flags            *byte             `json:"flags,omitempty"`
	Appearance       *uint16           `json:"appearance,omitempty"`
	ManufacturerData map[uint16][]byte `json:"manufacturerData"`
	ServiceData      map[string][]byte `json:"serviceData"`
	ServiceUUIDs     []string          `json:"serviceUuids"`
	SolicitedUUIDs   []string          `json:"solicitedUuids,omitempty"`
	Raw              []byte            `json:"raw"`
	Elements         []Element         `json:"elements"`
}

// Parse decodes raw and extracts the well-known fields.
// It fails only when the AD structure framing itself is broken.
func Parse(raw []byte) (*Advertisement, error) {
	elements, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return FromElements(raw, elements), nil
}

// FromElements builds an Advertisement from already decoded elements.
func FromElements(raw []byte, elements []Element) *Advertisement {
	a := &Advertisement{
		ManufacturerData: make(map[uint16][]byte),
		ServiceData:      make(map[string][]byte),
		Raw:              append([]byte(nil), raw...),
		Elements:         elements,
	}

	var shortName string
	haveComplete := false

	for _, e := range elements {
		v := e.Value
		switch {
		case e.Type == TypeFlags:
			if len(v) >= 1 {
				f := v[0]
				a.Flags = &f
			}

		case e.Type == TypeCompleteName:
			a.LocalName = string(v)
			haveComplete = true

		case e.Type == TypeShortName:
			shortName = string(v)

		case e.Type == TypeTxPower:
			if len(v) >= 1 {
				p := int8(v[0])
				a.TxPower = &p
			}

		case e.Type == TypeAppearance:
			if len(v) >= 2 {
				ap := binary.LittleEndian.Uint16(v)
				a.Appearance = &ap
			}

		case e.Type == TypeManufacturerData:
			if len(v) >= 2 {
				a.ManufacturerData[binary.LittleEndian.Uint16(v)] = append([]byte{}, v[2:]...)
			}

		case uuidListWidth[e.Type] > 0:
			a.ServiceUUIDs = appendUUIDs(a.ServiceUUIDs, v, uuidListWidth[e.Type])

		case solicitedWidth[e.Type] > 0:
			a.SolicitedUUIDs = appendUUIDs(a.SolicitedUUIDs, v, solicitedWidth[e.Type])

		case serviceDataWidth[e.Type] > 0:
			w := serviceDataWidth[e.Type]
			if len(v) >= w {
				a.ServiceData[ble.UUID(v[:w]).String()] = append([]byte{}, v[w:]...)
			}
		}
	}

	if !haveComplete {
		a.LocalName = shortName
	}

	return a
}

// appendUUIDs appends the UUIDs packed in b. A list whose length is not a
// multiple of width is malformed and skipped entirely.
func appendUUIDs(dst []string, b []byte, width int) []string {
	if len(b) == 0 || len(b)%width != 0 {
		return dst
	}
	for i := 0; i < len(b); i += width {
		dst = append(dst, ble.UUID(b[i:i+width]).String())
	}
	return dst
}

// Field returns the value of the first element with the given type, or nil.
func (a *Advertisement) Field(typ byte) []byte {
	for _, e := range a.Elements {
		if e.Type == typ {
			return e.Value
		}
	}
	return nil
}

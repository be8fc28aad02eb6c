package advdata

import (
	"encoding/binary"
	"fmt"

	"github.com/go-ble/ble"
)

// Encode serializes elements back into AD bytes.
// Values longer than 254 bytes cannot be expressed by a length byte and are rejected.
func Encode(elements []Element) ([]byte, error) {
	out := make([]byte, 0, Span(elements))
	for _, e := range elements {
		if len(e.Value) > 254 {
			return nil, fmt.Errorf("AD type 0x%02x: value of %d bytes exceeds 254", e.Type, len(e.Value))
		}
		out = append(out, byte(len(e.Value)+1), e.Type)
		out = append(out, e.Value...)
	}
	return out, nil
}

// Builder crafts advertisement payloads field by field.
//
//	raw := advdata.NewBuilder().
//	    Flags(0x06).
//	    CompleteName("Thermo").
//	    ManufacturerData(0x004C, []byte{0x02, 0x15}).
//	    Bytes()
type Builder struct {
	elements []Element
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Field appends an arbitrary AD structure.
func (b *Builder) Field(typ byte, value []byte) *Builder {
	b.elements = append(b.elements, Element{Type: typ, Value: append([]byte(nil), value...)})
	return b
}

// Flags appends the flags structure.
func (b *Builder) Flags(flags byte) *Builder {
	return b.Field(TypeFlags, []byte{flags})
}

// CompleteName appends a complete local name.
func (b *Builder) CompleteName(name string) *Builder {
	return b.Field(TypeCompleteName, []byte(name))
}

// ShortName appends a shortened local name.
func (b *Builder) ShortName(name string) *Builder {
	return b.Field(TypeShortName, []byte(name))
}

// TxPower appends the TX power level.
func (b *Builder) TxPower(level int8) *Builder {
	return b.Field(TypeTxPower, []byte{byte(level)})
}

// Appearance appends the GAP appearance value.
func (b *Builder) Appearance(v uint16) *Builder {
	return b.Field(TypeAppearance, binary.LittleEndian.AppendUint16(nil, v))
}

// ServiceUUIDs appends complete UUID lists, grouped by UUID width.
func (b *Builder) ServiceUUIDs(uuids ...ble.UUID) *Builder {
	return b.uuidLists(uuids, TypeAllUUID16, TypeAllUUID32, TypeAllUUID128)
}

// SolicitedUUIDs appends service solicitation lists, grouped by UUID width.
func (b *Builder) SolicitedUUIDs(uuids ...ble.UUID) *Builder {
	return b.uuidLists(uuids, TypeSolicitedUUID16, TypeSolicitedUUID32, TypeSolicitedUUID128)
}

func (b *Builder) uuidLists(uuids []ble.UUID, t16, t32, t128 byte) *Builder {
	var u16, u32, u128 []byte
	for _, u := range uuids {
		switch len(u) {
		case 2:
			u16 = append(u16, u...)
		case 4:
			u32 = append(u32, u...)
		case 16:
			u128 = append(u128, u...)
		}
	}
	if len(u16) > 0 {
		b.Field(t16, u16)
	}
	if len(u32) > 0 {
		b.Field(t32, u32)
	}
	if len(u128) > 0 {
		b.Field(t128, u128)
	}
	return b
}

// ServiceData appends service data for a 16, 32 or 128-bit service UUID.
// UUIDs of any other width are ignored.
func (b *Builder) ServiceData(uuid ble.UUID, data []byte) *Builder {
	var typ byte
	switch len(uuid) {
	case 2:
		typ = TypeServiceData16
	case 4:
		typ = TypeServiceData32
	case 16:
		typ = TypeServiceData128
	default:
		return b
	}
	value := append(append([]byte(nil), uuid...), data...)
	return b.Field(typ, value)
}

// ManufacturerData appends manufacturer specific data with the company id prefix.
func (b *Builder) ManufacturerData(companyID uint16, data []byte) *Builder {
	value := binary.LittleEndian.AppendUint16(nil, companyID)
	return b.Field(TypeManufacturerData, append(value, data...))
}

// RawManufacturerData appends manufacturer data whose first two bytes already carry the company id.
func (b *Builder) RawManufacturerData(data []byte) *Builder {
	return b.Field(TypeManufacturerData, data)
}

// Elements returns the structures appended so far.
func (b *Builder) Elements() []Element {
	return b.elements
}

// Bytes serializes the payload. Values too long for a length byte are truncated to 254 bytes.
func (b *Builder) Bytes() []byte {
	elements := make([]Element, len(b.elements))
	for i, e := range b.elements {
		if len(e.Value) > 254 {
			e.Value = e.Value[:254]
		}
		elements[i] = e
	}
	out, _ := Encode(elements)
	return out
}

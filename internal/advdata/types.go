package advdata

import "fmt"

// AD structure type tags from the Bluetooth Assigned Numbers, Generic Access Profile.
const (
	TypeFlags             byte = 0x01
	TypeSomeUUID16        byte = 0x02
	TypeAllUUID16         byte = 0x03
	TypeSomeUUID32        byte = 0x04
	TypeAllUUID32         byte = 0x05
	TypeSomeUUID128       byte = 0x06
	TypeAllUUID128        byte = 0x07
	TypeShortName         byte = 0x08
	TypeCompleteName      byte = 0x09
	TypeTxPower           byte = 0x0A
	TypeSolicitedUUID16   byte = 0x14
	TypeSolicitedUUID128  byte = 0x15
	TypeServiceData16     byte = 0x16
	TypeAppearance        byte = 0x19
	TypeSolicitedUUID32   byte = 0x1F
	TypeServiceData32     byte = 0x20
	TypeServiceData128    byte = 0x21
	TypeManufacturerData  byte = 0xFF
)

// uuidListWidth maps UUID list tags to the width of one UUID in bytes.
var uuidListWidth = map[byte]int{
	TypeSomeUUID16:  2,
	TypeAllUUID16:   2,
	TypeSomeUUID32:  4,
	TypeAllUUID32:   4,
	TypeSomeUUID128: 16,
	TypeAllUUID128:  16,
}

var solicitedWidth = map[byte]int{
	TypeSolicitedUUID16:  2,
	TypeSolicitedUUID32:  4,
	TypeSolicitedUUID128: 16,
}

var serviceDataWidth = map[byte]int{
	TypeServiceData16:  2,
	TypeServiceData32:  4,
	TypeServiceData128: 16,
}

var typeNames = map[byte]string{
	TypeFlags:            "Flags",
	TypeSomeUUID16:       "Incomplete 16-bit UUIDs",
	TypeAllUUID16:        "Complete 16-bit UUIDs",
	TypeSomeUUID32:       "Incomplete 32-bit UUIDs",
	TypeAllUUID32:        "Complete 32-bit UUIDs",
	TypeSomeUUID128:      "Incomplete 128-bit UUIDs",
	TypeAllUUID128:       "Complete 128-bit UUIDs",
	TypeShortName:        "Shortened Local Name",
	TypeCompleteName:     "Complete Local Name",
	TypeTxPower:          "Tx Power Level",
	TypeSolicitedUUID16:  "16-bit Solicitation UUIDs",
	TypeSolicitedUUID128: "128-bit Solicitation UUIDs",
	TypeServiceData16:    "Service Data 16-bit UUID",
	TypeAppearance:       "Appearance",
	TypeSolicitedUUID32:  "32-bit Solicitation UUIDs",
	TypeServiceData32:    "Service Data 32-bit UUID",
	TypeServiceData128:   "Service Data 128-bit UUID",
	TypeManufacturerData: "Manufacturer Specific Data",
}

// TypeName returns the assigned name of an AD type, or "Unknown (0xNN)".
func TypeName(typ byte) string {
	if name, ok := typeNames[typ]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%02X)", typ)
}

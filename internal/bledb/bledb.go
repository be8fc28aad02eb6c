// Package bledb names well-known Bluetooth SIG service UUIDs.
package bledb

import "github.com/srg/blescan/internal/device"

// services maps assigned 16-bit service UUIDs to their SIG names.
var services = map[string]string{
	"1800": "Generic Access",
	"1801": "Generic Attribute",
	"1802": "Immediate Alert",
	"1803": "Link Loss",
	"1804": "Tx Power",
	"1805": "Current Time Service",
	"1809": "Health Thermometer",
	"180a": "Device Information",
	"180d": "Heart Rate",
	"180f": "Battery Service",
	"1810": "Blood Pressure",
	"1812": "Human Interface Device",
	"1814": "Running Speed and Cadence",
	"1816": "Cycling Speed and Cadence",
	"1818": "Cycling Power",
	"1819": "Location and Navigation",
	"181a": "Environmental Sensing",
	"181c": "User Data",
	"181d": "Weight Scale",
	"1826": "Fitness Machine",
	"fd6f": "Exposure Notification",
	"fe9f": "Google",
	"feaa": "Eddystone",
	"fe2c": "Google Fast Pair",
	"fe59": "Nordic Secure DFU",
}

// vendorServices maps well-known 128-bit vendor service UUIDs to names.
var vendorServices = map[string]string{
	"6e400001b5a3f393e0a9e50e24dcca9e": "Nordic UART Service",
}

// LookupService returns the name of a service UUID in any accepted notation,
// or "" when it is not known.
func LookupService(uuid string) string {
	n := device.NormalizeUUID(uuid)
	if n == "" {
		return ""
	}
	if name, ok := services[n]; ok {
		return name
	}
	return vendorServices[n]
}

// DescribeService renders uuid followed by its name when known, e.g. "180f (Battery Service)".
func DescribeService(uuid string) string {
	if name := LookupService(uuid); name != "" {
		return uuid + " (" + name + ")"
	}
	return uuid
}

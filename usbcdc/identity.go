// Package usbcdc holds the USB side of the device: the identity it enumerates
// with, the contracts of the device stack and its CDC-ACM port, and the
// service loop that keeps both moving.
package usbcdc

import "fmt"

// Device identity. The VID/PID pair is a shared test allocation.
const (
	VendorID     uint16 = 0x16c0
	ProductID    uint16 = 0x27dd
	Manufacturer        = "Fake company"
	Product             = "Serial port"
	SerialNumber        = "TEST"
	// DeviceClass is the USB Communications class code.
	DeviceClass uint8 = 0x02
)

// Identity describes how a device presents itself on the bus.
type Identity struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	SerialNumber string
	Class        uint8
}

// DefaultIdentity is the identity the firmware enumerates with.
var DefaultIdentity = Identity{
	VendorID:     VendorID,
	ProductID:    ProductID,
	Manufacturer: Manufacturer,
	Product:      Product,
	SerialNumber: SerialNumber,
	Class:        DeviceClass,
}

// VIDPID formats the vendor/product pair as "16C0:27DD".
func (id Identity) VIDPID() string {
	return fmt.Sprintf("%04X:%04X", id.VendorID, id.ProductID)
}

// Mismatches lists the fields of got that differ from id. An empty result
// means got is the same device model.
func (id Identity) Mismatches(got Identity) []string {
	var out []string
	if got.VendorID != id.VendorID || got.ProductID != id.ProductID {
		out = append(out, fmt.Sprintf("vid:pid %s, want %s", got.VIDPID(), id.VIDPID()))
	}
	if got.Manufacturer != id.Manufacturer {
		out = append(out, fmt.Sprintf("manufacturer %q, want %q", got.Manufacturer, id.Manufacturer))
	}
	if got.Product != id.Product {
		out = append(out, fmt.Sprintf("product %q, want %q", got.Product, id.Product))
	}
	if got.SerialNumber != id.SerialNumber {
		out = append(out, fmt.Sprintf("serial %q, want %q", got.SerialNumber, id.SerialNumber))
	}
	if got.Class != id.Class {
		out = append(out, fmt.Sprintf("class 0x%02x, want 0x%02x", got.Class, id.Class))
	}
	return out
}

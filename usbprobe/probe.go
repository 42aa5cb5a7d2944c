// Package usbprobe inspects the random number streamer at the USB level:
// which devices with its VID/PID are attached and whether their descriptors
// carry the identity the firmware enumerates with.
package usbprobe

import (
	"errors"
	"fmt"

	"github.com/google/gousb"

	"github.com/Thiagojm/rosc_serial_rng/usbcdc"
)

// Descriptor is what one attached device reported.
type Descriptor struct {
	Bus      int
	Address  int
	Speed    string
	Identity usbcdc.Identity
	// Mismatches lists where Identity differs from the expected one.
	Mismatches []string
}

// OK reports whether the device matched the expected identity.
func (d Descriptor) OK() bool {
	return len(d.Mismatches) == 0
}

// Probe opens every attached device with want's VID/PID, reads its string
// descriptors and compares them against want. Devices are closed before
// returning.
func Probe(want usbcdc.Identity) ([]Descriptor, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(want.VendorID) && desc.Product == gousb.ID(want.ProductID)
	})
	defer func() {
		for _, d := range devs {
			d.Close()
		}
	}()
	if err != nil && len(devs) == 0 {
		return nil, fmt.Errorf("opening devices: %w", err)
	}

	out := make([]Descriptor, 0, len(devs))
	for _, dev := range devs {
		d, derr := describe(dev)
		if derr != nil {
			return out, derr
		}
		d.Mismatches = want.Mismatches(d.Identity)
		out = append(out, d)
	}
	return out, nil
}

func describe(dev *gousb.Device) (Descriptor, error) {
	if dev == nil || dev.Desc == nil {
		return Descriptor{}, errors.New("device without descriptor")
	}
	id := usbcdc.Identity{
		VendorID:  uint16(dev.Desc.Vendor),
		ProductID: uint16(dev.Desc.Product),
		Class:     uint8(dev.Desc.Class),
	}
	var err error
	if id.Manufacturer, err = dev.Manufacturer(); err != nil {
		return Descriptor{}, fmt.Errorf("reading manufacturer: %w", err)
	}
	if id.Product, err = dev.Product(); err != nil {
		return Descriptor{}, fmt.Errorf("reading product: %w", err)
	}
	if id.SerialNumber, err = dev.SerialNumber(); err != nil {
		return Descriptor{}, fmt.Errorf("reading serial number: %w", err)
	}
	return Descriptor{
		Bus:      dev.Desc.Bus,
		Address:  dev.Desc.Address,
		Speed:    dev.Desc.Speed.String(),
		Identity: id,
	}, nil
}

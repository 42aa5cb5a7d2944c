//go:build tinygo && rp2040

package rp2040

import (
	"machine"
	"machine/usb"

	"github.com/Thiagojm/rosc_serial_rng/usbcdc"
)

// ApplyIdentity sets the descriptors TinyGo's USB stack enumerates with. It
// must run before the serial port is configured.
func ApplyIdentity(id usbcdc.Identity) {
	usb.VendorID = id.VendorID
	usb.ProductID = id.ProductID
	usb.Manufacturer = id.Manufacturer
	usb.Product = id.Product
	usb.Serial = id.SerialNumber
}

// CDC adapts machine.Serial, which is USB CDC-ACM on the RP2040, to
// usbcdc.Port.
//
// TinyGo moves endpoint data from its interrupt handler and throws bytes
// away while no host has the port open, so the line state stands in for
// buffer state: with DTR low nothing is written and Flush reports
// ErrWouldBlock.
type CDC struct {
	serial machine.Serialer
}

// NewCDC configures the USB serial port.
func NewCDC() (*CDC, error) {
	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return nil, err
	}
	return &CDC{serial: machine.Serial}, nil
}

// Service reports whether a host has the port open.
func (c *CDC) Service() bool {
	return c.serial.DTR()
}

// Write hands p to the USB transmit buffer if a host is listening.
func (c *CDC) Write(p []byte) (int, error) {
	if !c.serial.DTR() {
		return 0, usbcdc.ErrWouldBlock
	}
	return c.serial.Write(p)
}

// Flush completes once a host has the port open.
func (c *CDC) Flush() error {
	if !c.serial.DTR() {
		return usbcdc.ErrWouldBlock
	}
	return nil
}

// Device is TinyGo's interrupt-driven USB stack seen through usbcdc.Device.
// Transfers happen in the interrupt handler; Poll only runs class services.
type Device struct{}

// Poll services classes and reports whether any made progress.
func (Device) Poll(classes ...usbcdc.Class) bool {
	progressed := false
	for _, c := range classes {
		if c.Service() {
			progressed = true
		}
	}
	return progressed
}

//go:build tinygo && rp2040

// roscrng is the device firmware: it streams ring-oscillator random values in
// [0, 10000) as decimal lines over USB serial, one per millisecond.
//
//	tinygo flash -target=pico ./cmd/roscrng
package main

import (
	"context"

	"github.com/Thiagojm/rosc_serial_rng/rp2040"
	"github.com/Thiagojm/rosc_serial_rng/scheduler"
	"github.com/Thiagojm/rosc_serial_rng/usbcdc"
)

func main() {
	rp2040.ApplyIdentity(usbcdc.DefaultIdentity)
	port, err := rp2040.NewCDC()
	if err != nil {
		halt()
	}
	osc, err := rp2040.TakeROSC()
	if err != nil {
		halt()
	}

	s := scheduler.New(osc.Initialize(), usbcdc.NewService(rp2040.Device{}, port), rp2040.Timer{})
	_ = s.Run(context.Background())
}

func halt() {
	for {
	}
}

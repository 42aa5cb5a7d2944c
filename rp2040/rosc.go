//go:build tinygo && rp2040

package rp2040

import (
	"errors"

	"device/rp"
)

var roscTaken bool

// RingOscillator is the ROSC peripheral before it has been switched on.
// It cannot be sampled; call Initialize to get an EnabledROSC.
type RingOscillator struct{}

// TakeROSC hands out the ring oscillator. It succeeds once.
func TakeROSC() (RingOscillator, error) {
	if roscTaken {
		return RingOscillator{}, errors.New("rp2040: ROSC already taken")
	}
	roscTaken = true
	return RingOscillator{}, nil
}

// Initialize enables the oscillator and returns the only handle that can
// sample it.
func (RingOscillator) Initialize() *EnabledROSC {
	rp.ROSC.CTRL.ReplaceBits(rp.ROSC_CTRL_ENABLE_ENABLE,
		rp.ROSC_CTRL_ENABLE_Msk>>rp.ROSC_CTRL_ENABLE_Pos, rp.ROSC_CTRL_ENABLE_Pos)
	return &EnabledROSC{}
}

// EnabledROSC is the running ring oscillator.
type EnabledROSC struct{}

// RandomBit reads the oscillator's RANDOMBIT register.
func (*EnabledROSC) RandomBit() bool {
	return rp.ROSC.RANDOMBIT.Get()&1 != 0
}

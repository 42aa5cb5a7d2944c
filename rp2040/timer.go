//go:build tinygo && rp2040

package rp2040

import "device/rp"

// Timer reads the free-running 64-bit microsecond counter.
type Timer struct{}

// Ticks returns microseconds since boot. The raw registers are used so the
// read never latches; the high word is re-read to catch a carry.
func (Timer) Ticks() uint64 {
	for {
		hi := rp.TIMER.TIMERAWH.Get()
		lo := rp.TIMER.TIMERAWL.Get()
		if rp.TIMER.TIMERAWH.Get() == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
	}
}

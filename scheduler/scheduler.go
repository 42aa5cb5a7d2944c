// Package scheduler runs the device main loop: keep the USB stack alive,
// drain the previous frame, and emit one new frame per interval.
package scheduler

import (
	"context"

	"github.com/Thiagojm/rosc_serial_rng/entropy"
	"github.com/Thiagojm/rosc_serial_rng/frame"
	"github.com/Thiagojm/rosc_serial_rng/usbcdc"
)

// DefaultInterval is the number of timer ticks between frames.
const DefaultInterval = 1000

// Timer is a monotonic tick counter. Differences are taken with unsigned
// wraparound.
type Timer interface {
	Ticks() uint64
}

// State is the loop's position between frames.
type State int

const (
	// Draining waits for the previous frame to leave the device.
	Draining State = iota
	// TimedWait waits for the interval to elapse.
	TimedWait
)

func (s State) String() string {
	switch s {
	case Draining:
		return "draining"
	case TimedWait:
		return "timed-wait"
	default:
		return "unknown"
	}
}

// Stats counts what the loop has done so far.
type Stats struct {
	Iterations    uint64
	Frames        uint64
	FlushAttempts uint64
	DrainTimeouts uint64
	LastValue     uint16
}

// Scheduler owns the bit source and the USB service for its lifetime. It is
// single-threaded: Step and Run must not be called concurrently.
type Scheduler struct {
	src      entropy.BitSource
	usb      *usbcdc.Service
	timer    Timer
	interval uint64

	state State
	last  uint64
	buf   frame.Buffer
	stats Stats
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the ticks between frames.
func WithInterval(ticks uint64) Option {
	return func(s *Scheduler) { s.interval = ticks }
}

// WithDrainLimit gives up on a flush after n failed attempts and moves on to
// the next frame, counting a drain timeout. The default waits forever.
func WithDrainLimit(n int) Option {
	return func(s *Scheduler) { s.usb.SetDrainLimit(n) }
}

// New creates a Scheduler in the Draining state with the interval starting now.
func New(src entropy.BitSource, usb *usbcdc.Service, timer Timer, opts ...Option) *Scheduler {
	s := &Scheduler{
		src:      src,
		usb:      usb,
		timer:    timer,
		interval: DefaultInterval,
		state:    Draining,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.last = timer.Ticks()
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// Step runs one loop iteration. The USB device is polled first, whatever
// the state.
func (s *Scheduler) Step() {
	s.stats.Iterations++
	s.usb.Poll()

	if s.state == Draining {
		s.stats.FlushAttempts++
		done, err := s.usb.DrainStep()
		if !done {
			return
		}
		if err != nil {
			s.stats.DrainTimeouts++
		}
		s.state = TimedWait
	}

	now := s.timer.Ticks()
	if now-s.last < s.interval {
		return
	}
	v := entropy.Next(s.src)
	s.buf = frame.Format(uint64(v))
	frame.Emit(s.usb.Port(), &s.buf)
	s.last = now
	s.stats.Frames++
	s.stats.LastValue = v
	s.state = Draining
}

// Run steps the loop until ctx is done. On the device ctx never ends.
func (s *Scheduler) Run(ctx context.Context) error {
	done := ctx.Done()
	for {
		select {
		case <-done:
			return ctx.Err()
		default:
		}
		s.Step()
	}
}

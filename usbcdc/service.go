package usbcdc

import (
	"errors"
	"fmt"
)

var (
	// ErrWouldBlock is returned by a Port that cannot take bytes or finish a
	// flush right now.
	ErrWouldBlock = errors.New("usbcdc: would block")
	// ErrDrainTimeout is returned when a drain uses up its flush attempts.
	ErrDrainTimeout = errors.New("usbcdc: drain timed out")
)

// Class is a USB class driver serviced by a Device.
type Class interface {
	// Service moves whatever endpoint data can move now and reports
	// whether anything did.
	Service() bool
}

// Device is the USB device stack. Poll must be called often for enumeration
// and transfers to make progress; it reports whether any class made progress.
type Device interface {
	Poll(classes ...Class) bool
}

// Port is the CDC-ACM serial function. Write and Flush never wait: they
// return ErrWouldBlock when the host has not made room.
type Port interface {
	Class
	Write(p []byte) (int, error)
	// Flush returns nil once every written byte has left the device.
	Flush() error
}

// Service ties a Device to the Port it serves.
type Service struct {
	dev     Device
	port    Port
	classes [1]Class

	// drainLimit bounds failed flush attempts per drain; zero waits forever.
	drainLimit  int
	drainFailed int
}

// NewService creates a Service polling dev on behalf of port.
func NewService(dev Device, port Port) *Service {
	s := &Service{dev: dev, port: port}
	s.classes[0] = port
	return s
}

// Port returns the serviced port.
func (s *Service) Port() Port {
	return s.port
}

// Poll runs one round of the device stack.
func (s *Service) Poll() bool {
	return s.dev.Poll(s.classes[:]...)
}

// TryFlush makes one flush attempt and reports whether the transmit buffer
// is empty.
func (s *Service) TryFlush() bool {
	return s.port.Flush() == nil
}

// SetDrainLimit makes a drain give up after n failed flush attempts. Zero,
// the default, waits as long as the host takes.
func (s *Service) SetDrainLimit(n int) {
	if n < 0 {
		n = 0
	}
	s.drainLimit = n
	s.drainFailed = 0
}

// DrainStep makes one flush attempt of the current drain. It reports done
// once the transmit buffer is empty, or once the drain limit is used up, in
// which case err wraps ErrDrainTimeout and the next call starts a new drain.
func (s *Service) DrainStep() (done bool, err error) {
	if s.TryFlush() {
		s.drainFailed = 0
		return true, nil
	}
	s.drainFailed++
	if s.drainLimit == 0 || s.drainFailed < s.drainLimit {
		return false, nil
	}
	s.drainFailed = 0
	return true, fmt.Errorf("%w after %d flush attempts", ErrDrainTimeout, s.drainLimit)
}

// Drain polls the device until DrainStep is done. Without a drain limit a
// host that never reads stalls it forever.
func (s *Service) Drain() error {
	for {
		done, err := s.DrainStep()
		if done {
			return err
		}
		s.Poll()
	}
}

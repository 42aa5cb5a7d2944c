package usbcdc

import (
	"io"
	"sync/atomic"
)

// DefaultPacketSize is the full-speed bulk endpoint packet size.
const DefaultPacketSize = 64

// Loopback is an in-memory CDC link: a bounded transmit buffer on the device
// side and an io.Writer standing in for the host. It serves as both Device
// and Port, so a scheduler can run on a host exactly as it runs on hardware.
//
// The host side only takes data while HostReading is set, which makes it the
// natural fault injector for a host that stopped draining the port.
type Loopback struct {
	host       io.Writer
	tx         []byte
	capacity   int
	packetSize int
	reading    atomic.Bool
	sent       uint64
	lastErr    error
}

// NewLoopback creates a link with a transmit buffer of capacity bytes that
// delivers to host. The host starts out reading.
func NewLoopback(host io.Writer, capacity int) *Loopback {
	if capacity <= 0 {
		capacity = DefaultPacketSize
	}
	l := &Loopback{
		host:       host,
		tx:         make([]byte, 0, capacity),
		capacity:   capacity,
		packetSize: DefaultPacketSize,
	}
	l.reading.Store(true)
	return l
}

// SetHostReading starts or stops the host side. Safe to call from another
// goroutine.
func (l *Loopback) SetHostReading(on bool) {
	l.reading.Store(on)
}

// HostReading reports whether the host side is taking data.
func (l *Loopback) HostReading() bool {
	return l.reading.Load()
}

// Write copies as much of p as fits into the transmit buffer.
func (l *Loopback) Write(p []byte) (int, error) {
	room := l.capacity - len(l.tx)
	if room <= 0 {
		return 0, ErrWouldBlock
	}
	n := len(p)
	if n > room {
		n = room
	}
	l.tx = append(l.tx, p[:n]...)
	if n < len(p) {
		return n, ErrWouldBlock
	}
	return n, nil
}

// Flush reports whether the transmit buffer is empty.
func (l *Loopback) Flush() error {
	if len(l.tx) > 0 {
		return ErrWouldBlock
	}
	return nil
}

// Service moves up to one packet to the host if it is reading.
func (l *Loopback) Service() bool {
	if !l.reading.Load() || len(l.tx) == 0 {
		return false
	}
	n := len(l.tx)
	if n > l.packetSize {
		n = l.packetSize
	}
	if _, err := l.host.Write(l.tx[:n]); err != nil {
		l.lastErr = err
		return false
	}
	rest := copy(l.tx, l.tx[n:])
	l.tx = l.tx[:rest]
	l.sent += uint64(n)
	return true
}

// Poll services every class and reports whether any made progress.
func (l *Loopback) Poll(classes ...Class) bool {
	progressed := false
	for _, c := range classes {
		if c.Service() {
			progressed = true
		}
	}
	return progressed
}

// Buffered returns the number of bytes waiting in the transmit buffer.
func (l *Loopback) Buffered() int {
	return len(l.tx)
}

// Sent returns the number of bytes delivered to the host.
func (l *Loopback) Sent() uint64 {
	return l.sent
}

// Err returns the last error from the host writer, if any.
func (l *Loopback) Err() error {
	return l.lastErr
}

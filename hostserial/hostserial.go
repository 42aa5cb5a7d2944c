// Package hostserial finds the random number streamer's virtual serial port
// on a host and reads decoded values from it.
package hostserial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/Thiagojm/rosc_serial_rng/entropy"
	"github.com/Thiagojm/rosc_serial_rng/frame"
	"github.com/Thiagojm/rosc_serial_rng/usbcdc"
)

// ErrNotFound is returned when no matching serial port is present.
var ErrNotFound = errors.New("random number streamer not found")

// Matcher selects serial ports belonging to the device.
type Matcher struct {
	Identity usbcdc.Identity
}

// DefaultMatcher matches the firmware's identity.
var DefaultMatcher = Matcher{Identity: usbcdc.DefaultIdentity}

// Match reports whether p is one of our devices: by VID/PID first, then by
// product or serial string for drivers that hide the IDs.
func (m Matcher) Match(p *enumerator.PortDetails) bool {
	if p == nil || !p.IsUSB {
		return false
	}
	vid := fmt.Sprintf("%04X", m.Identity.VendorID)
	pid := fmt.Sprintf("%04X", m.Identity.ProductID)
	if strings.EqualFold(p.VID, vid) && strings.EqualFold(p.PID, pid) {
		return true
	}
	if p.Product != "" && strings.HasPrefix(p.Product, m.Identity.Product) {
		return p.SerialNumber == m.Identity.SerialNumber
	}
	return false
}

// List returns every matching port.
func (m Matcher) List() ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerating ports: %w", err)
	}
	var out []*enumerator.PortDetails
	for _, p := range ports {
		if m.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindPort returns the first matching port name, e.g. "COM5" or "/dev/ttyACM0".
func (m Matcher) FindPort() (string, error) {
	ports, err := m.List()
	if err != nil {
		return "", err
	}
	for _, p := range ports {
		if p.Name != "" {
			return p.Name, nil
		}
	}
	return "", ErrNotFound
}

// Open opens portName, clears stale input and raises DTR. The firmware
// holds its output until a host has the line open, so nothing new arrives
// before DTR is set.
func Open(portName string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: 115200, // ignored by CDC-ACM, but some drivers insist on one
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	_ = port.SetReadTimeout(250 * time.Millisecond)
	_ = port.ResetInputBuffer()
	if err := port.SetDTR(true); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set DTR on %s: %w", portName, err)
	}
	return port, nil
}

// Reading is one decoded frame.
type Reading struct {
	Timestamp time.Time
	Value     uint16
	// Raw is the digit run as received.
	Raw string
	// Err is set when the frame did not decode; Value is then zero.
	Err error
}

// Collect reads frames from r until ctx is cancelled or a read fails,
// calling onReading for each. The stream may start in the middle of a frame,
// so everything up to the first terminator is dropped. Reads that return no
// data (timeouts) are retried.
func Collect(ctx context.Context, r io.Reader, onReading func(Reading)) error {
	if onReading == nil {
		return errors.New("onReading callback must not be nil")
	}
	dec := frame.Decoder{Resync: true}
	buf := make([]byte, 256)
	emit := func(tok []byte) {
		v, err := frame.ParseValue(tok, entropy.Modulus)
		onReading(Reading{Timestamp: time.Now(), Value: uint16(v), Raw: string(tok), Err: err})
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := r.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n], emit)
		}
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
	}
}

// CollectPort opens portName and collects from it until ctx is cancelled.
func CollectPort(ctx context.Context, portName string, onReading func(Reading)) error {
	port, err := Open(portName)
	if err != nil {
		return err
	}
	defer func() { _ = port.Close() }()
	return Collect(ctx, port, onReading)
}

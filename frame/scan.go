package frame

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidDigit is returned for frames holding anything but ASCII digits.
	ErrInvalidDigit = errors.New("frame: invalid digit")
	// ErrOutOfRange is returned for values at or above the decoder's limit.
	ErrOutOfRange = errors.New("frame: value out of range")
)

// ScanFrames is a bufio.SplitFunc yielding the digit run of each frame
// without its terminator. A trailing partial frame at EOF is returned as is.
func ScanFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.Index(data, terminator[:]); i >= 0 {
		return i + len(terminator), data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ParseValue decodes a digit run. An empty run is the value zero. Values
// must be below limit; a zero limit disables the check.
func ParseValue(token []byte, limit uint64) (uint64, error) {
	if len(token) == 0 {
		return 0, nil
	}
	for _, c := range token {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDigit, token)
		}
	}
	v, err := strconv.ParseUint(string(token), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, token)
	}
	if limit != 0 && v >= limit {
		return 0, fmt.Errorf("%w: %d >= %d", ErrOutOfRange, v, limit)
	}
	return v, nil
}

// Decoder reassembles frames from a byte stream that arrives in arbitrary
// chunks, as reads from a serial port do.
type Decoder struct {
	pending []byte
	// MaxPending bounds the bytes kept while waiting for a terminator. When
	// exceeded the pending bytes are discarded along with the rest of that
	// frame. Zero means 4*Width.
	MaxPending int
	// Resync drops everything up to the first terminator, for streams that
	// may be joined in the middle of a frame.
	Resync bool

	started bool
	skip    bool
}

// Feed appends p and calls fn for every complete frame's digit run. The
// token passed to fn is only valid during the call.
func (d *Decoder) Feed(p []byte, fn func(token []byte)) {
	if !d.started {
		d.started = true
		d.skip = d.Resync
	}
	d.pending = append(d.pending, p...)
	for {
		advance, token, _ := ScanFrames(d.pending, false)
		if advance == 0 {
			break
		}
		if d.skip {
			d.skip = false
		} else {
			fn(token)
		}
		d.pending = d.pending[advance:]
	}
	limit := d.MaxPending
	if limit == 0 {
		limit = 4 * Width
	}
	if len(d.pending) > limit {
		d.pending = d.pending[:0]
		d.skip = true
	}
	if len(d.pending) == 0 {
		d.pending = nil
	}
}

// Pending returns the bytes still waiting for a terminator.
func (d *Decoder) Pending() []byte {
	return d.pending
}

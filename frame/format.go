// Package frame renders values as self-terminated decimal text frames and
// reads them back.
//
// A frame is the shortest decimal representation of a value followed by
// Terminator. Formatting works on a fixed Buffer so the device side never
// allocates.
package frame

// Width is the Buffer capacity: enough digits for any uint64.
const Width = 20

// Terminator ends every frame.
const Terminator = "\n\r"

var terminator = [2]byte{'\n', '\r'}

// Buffer holds ASCII digits right-justified. Zero bytes mark positions with
// no digit and are skipped on emission.
type Buffer [Width]byte

// Format renders v into a Buffer with no leading zeros. Zero renders as an
// all-zero Buffer, i.e. an empty digit run.
func Format(v uint64) Buffer {
	var raw, out Buffer
	for i := Width - 1; i >= 0; i-- {
		raw[i] = byte(v % 10)
		v /= 10
	}

	started := false
	for i := 0; i < Width; i++ {
		if raw[i] != 0 || started {
			started = true
			out[i] = raw[i] + '0'
		}
	}
	return out
}

// Digits returns the visible digit run of b.
func (b *Buffer) Digits() []byte {
	for i, c := range b {
		if c != 0 {
			return b[i:]
		}
	}
	return b[Width:]
}

// String returns the digit run as text.
func (b Buffer) String() string {
	return string(b.Digits())
}

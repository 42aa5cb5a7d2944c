package frame

// Writer is a non-blocking output channel. Write either takes bytes or
// reports that it could not; it never waits for room.
type Writer interface {
	Write(p []byte) (int, error)
}

// Emit writes the digit bytes of b one at a time, then the terminator. Bytes
// the channel refuses are dropped: there is no retry and nothing is reported
// back, so a frame may arrive partially.
func Emit(w Writer, b *Buffer) {
	for i := range b {
		if b[i] != 0 {
			_, _ = w.Write(b[i : i+1])
		}
	}
	_, _ = w.Write(terminator[:])
}

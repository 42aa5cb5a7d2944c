package entropy

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	mrand "math/rand"
	"time"
)

// Pseudo is a software BitSource backed by math/rand. It stands in for the
// ring oscillator when the pipeline runs on a host.
type Pseudo struct {
	r     *mrand.Rand
	word  uint64
	avail int
}

// NewPseudo creates a pseudorandom bit source. If seed is zero, a random seed
// is drawn from crypto/rand.
func NewPseudo(seed uint64) (*Pseudo, error) {
	if seed == 0 {
		var s [8]byte
		if _, err := crand.Read(s[:]); err != nil {
			return nil, err
		}
		seed = binary.LittleEndian.Uint64(s[:])
	}
	return &Pseudo{r: mrand.New(mrand.NewSource(int64(seed)))}, nil
}

// RandomBit returns the next bit of the generator's stream.
func (p *Pseudo) RandomBit() bool {
	if p.avail == 0 {
		p.word = p.r.Uint64()
		p.avail = 64
	}
	bit := p.word&1 == 1
	p.word >>= 1
	p.avail--
	return bit
}

// Jitter derives bits from execution timing. It counts how many clock reads
// fit in a short window and keeps the parity of the count, folding Samples
// windows into each bit. Only the parity of the count is used, so clocks that
// tick in 100 ns or 1 µs steps work as well as nanosecond ones. It is slow
// and weak, and only useful for demonstrations.
type Jitter struct {
	// Delay is slept before each window when positive.
	Delay time.Duration
	// Samples is the number of windows folded into one bit. Zero means 4.
	Samples int

	clock func() time.Duration
}

const (
	jitterWindow  = 4 * time.Microsecond
	jitterSamples = 4
)

var jitterEpoch = time.Now()

func monotonic() time.Duration {
	return time.Since(jitterEpoch)
}

// RandomBit returns the XOR of the read-count parities of Samples windows.
func (j Jitter) RandomBit() bool {
	clock := j.clock
	if clock == nil {
		clock = monotonic
	}
	n := j.Samples
	if n <= 0 {
		n = jitterSamples
	}
	var parity uint
	for i := 0; i < n; i++ {
		if j.Delay > 0 {
			time.Sleep(j.Delay)
		}
		parity ^= countReads(clock, jitterWindow)
	}
	return parity&1 == 1
}

// countReads reads clock until window has passed and returns the number of
// reads it took.
func countReads(clock func() time.Duration, window time.Duration) uint {
	start := clock()
	var reads uint
	for clock()-start < window {
		reads++
	}
	return reads
}

// Replay plays back a fixed bit sequence, wrapping around at the end.
type Replay struct {
	bits []bool
	pos  int
	// Draws counts RandomBit calls.
	Draws int
}

// NewReplay builds a Replay from bits. At least one bit is required.
func NewReplay(bits ...bool) (*Replay, error) {
	if len(bits) == 0 {
		return nil, errors.New("replay needs at least one bit")
	}
	return &Replay{bits: append([]bool(nil), bits...)}, nil
}

// ReplayAccumulators returns a Replay whose consecutive 16-bit groups
// accumulate to the given values in order.
func ReplayAccumulators(values ...uint16) *Replay {
	bits := make([]bool, 0, len(values)*AccumulatorBits)
	for _, v := range values {
		for i := 0; i < AccumulatorBits; i++ {
			bits = append(bits, v&(1<<i) != 0)
		}
	}
	if len(bits) == 0 {
		bits = append(bits, false)
	}
	return &Replay{bits: bits}
}

// RandomBit returns the next recorded bit.
func (r *Replay) RandomBit() bool {
	b := r.bits[r.pos]
	r.pos = (r.pos + 1) % len(r.bits)
	r.Draws++
	return b
}

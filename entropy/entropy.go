package entropy

import "math"

const (
	// AccumulatorBits is the number of independent draws per value.
	AccumulatorBits = 16
	// Modulus bounds reduced values to [0, Modulus).
	Modulus = 10000
)

// BitSource yields one noisy bit per call. Sampling always succeeds; any
// settling time between draws is the hardware's business.
//
// A BitSource is owned by exactly one caller. Implementations are not safe
// for concurrent use.
type BitSource interface {
	RandomBit() bool
}

// Accumulate draws AccumulatorBits bits from src, placing draw i at bit i.
func Accumulate(src BitSource) uint16 {
	var acc uint16
	for i := 0; i < AccumulatorBits; i++ {
		if src.RandomBit() {
			acc |= 1 << i
		}
	}
	return acc
}

// Reduce folds an accumulator into [0, Modulus).
func Reduce(acc uint16) uint16 {
	return acc % Modulus
}

// Next draws a fresh accumulator from src and reduces it.
func Next(src BitSource) uint16 {
	return Reduce(Accumulate(src))
}

// Distribution is the exact output law of Next over a uniform accumulator.
type Distribution struct {
	// Split is the first value drawn one time less often than the values below it.
	Split uint16
	// PLow is the probability of each value in [0, Split).
	PLow float64
	// PHigh is the probability of each value in [Split, Modulus).
	PHigh    float64
	Mean     float64
	Variance float64
}

// Model computes the Distribution by walking every accumulator value.
func Model() Distribution {
	var counts [Modulus]int
	for acc := 0; acc <= math.MaxUint16; acc++ {
		counts[Reduce(uint16(acc))]++
	}
	const total = float64(math.MaxUint16 + 1)

	d := Distribution{Split: uint16((math.MaxUint16 + 1) % Modulus)}
	d.PLow = float64(counts[0]) / total
	d.PHigh = float64(counts[Modulus-1]) / total

	for v, c := range counts {
		p := float64(c) / total
		d.Mean += p * float64(v)
	}
	for v, c := range counts {
		p := float64(c) / total
		diff := float64(v) - d.Mean
		d.Variance += p * diff * diff
	}
	return d
}

// Probability returns the chance that Next yields v under a uniform accumulator.
func (d Distribution) Probability(v uint16) float64 {
	switch {
	case v >= Modulus:
		return 0
	case v < d.Split:
		return d.PLow
	default:
		return d.PHigh
	}
}

// LowShare is the probability mass of [0, Split).
func (d Distribution) LowShare() float64 {
	return float64(d.Split) * d.PLow
}

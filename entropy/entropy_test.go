package entropy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulateLSBFirst(t *testing.T) {
	src, err := NewReplay(true, false, true, false, false, false, false, false,
		false, false, false, false, false, false, false, false)
	require.NoError(t, err)

	assert.Equal(t, uint16(5), Accumulate(src))
	assert.Equal(t, AccumulatorBits, src.Draws)
}

func TestNextScenarios(t *testing.T) {
	tests := []struct {
		name string
		acc  uint16
		want uint16
	}{
		{"exact value", 0b101, 5},
		{"modulo wrap", 10000, 0},
		{"max accumulator", 65535, 5535},
		{"just below modulus", 9999, 9999},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := ReplayAccumulators(tt.acc)
			assert.Equal(t, tt.want, Next(src))
			assert.Equal(t, AccumulatorBits, src.Draws)
		})
	}
}

func TestReduceBound(t *testing.T) {
	for acc := 0; acc <= math.MaxUint16; acc++ {
		v := Reduce(uint16(acc))
		if v >= Modulus {
			t.Fatalf("Reduce(%d) = %d, out of range", acc, v)
		}
	}
}

func TestEveryDrawIsIndependent(t *testing.T) {
	src := ReplayAccumulators(1, 2, 3)
	assert.Equal(t, uint16(1), Next(src))
	assert.Equal(t, uint16(2), Next(src))
	assert.Equal(t, uint16(3), Next(src))
	assert.Equal(t, 3*AccumulatorBits, src.Draws)
}

func TestNewReplayRejectsEmpty(t *testing.T) {
	_, err := NewReplay()
	assert.Error(t, err)
}

func TestModel(t *testing.T) {
	d := Model()

	assert.Equal(t, uint16(5536), d.Split)
	assert.InDelta(t, 7.0/65536, d.PLow, 1e-12)
	assert.InDelta(t, 6.0/65536, d.PHigh, 1e-12)
	assert.InDelta(t, 1.0, d.LowShare()+float64(Modulus-int(d.Split))*d.PHigh, 1e-9)
	assert.InDelta(t, 5536*7.0/65536, d.LowShare(), 1e-12)

	// The bias pulls the mean below the uniform 4999.5.
	assert.Less(t, d.Mean, 4999.5)
	assert.Greater(t, d.Mean, 4700.0)
	assert.Greater(t, d.Variance, 0.0)

	assert.Equal(t, d.PLow, d.Probability(0))
	assert.Equal(t, d.PHigh, d.Probability(9999))
	assert.Zero(t, d.Probability(Modulus))
}

func TestPseudoIsReproducible(t *testing.T) {
	a, err := NewPseudo(42)
	require.NoError(t, err)
	b, err := NewPseudo(42)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		require.Equal(t, a.RandomBit(), b.RandomBit())
	}
}

func TestPseudoStaysInRange(t *testing.T) {
	src, err := NewPseudo(0)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		assert.Less(t, Next(src), uint16(Modulus))
	}
}

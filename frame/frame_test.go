package frame

import (
	"bufio"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder accepts writes until budget runs out, then refuses them.
type recorder struct {
	out    []byte
	calls  [][]byte
	budget int
}

var errFull = errors.New("full")

func (r *recorder) Write(p []byte) (int, error) {
	r.calls = append(r.calls, append([]byte(nil), p...))
	if r.budget >= 0 && len(p) > r.budget {
		return 0, errFull
	}
	if r.budget >= 0 {
		r.budget -= len(p)
	}
	r.out = append(r.out, p...)
	return len(p), nil
}

func unlimited() *recorder { return &recorder{budget: -1} }

func TestFormatNoLeadingZeros(t *testing.T) {
	values := []uint64{1, 9, 10, 100, 101, 1000, 9999, 10000, 123456789, math.MaxUint64}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		values = append(values, r.Uint64()>>uint(r.Intn(64)))
	}
	for _, v := range values {
		if v == 0 {
			continue
		}
		b := Format(v)
		assert.Equal(t, strconv.FormatUint(v, 10), string(b.Digits()), "value %d", v)

		nonZero := 0
		for _, c := range b {
			if c != 0 {
				nonZero++
			}
		}
		assert.Equal(t, len(b.Digits()), nonZero, "value %d", v)
	}
}

func TestFormatZeroIsEmpty(t *testing.T) {
	b := Format(0)
	assert.Equal(t, Buffer{}, b)
	assert.Empty(t, b.Digits())
	assert.Equal(t, "", b.String())
}

func TestFormatKeepsInnerZeros(t *testing.T) {
	b := Format(1000)
	assert.Equal(t, "1000", b.String())
	assert.Equal(t, byte('1'), b[Width-4])
	assert.Equal(t, byte(0), b[Width-5])
}

func TestFormatReducedRangeWidth(t *testing.T) {
	for v := uint64(0); v < 10000; v++ {
		b := Format(v)
		if len(b.Digits()) > 4 {
			t.Fatalf("Format(%d) has %d digits", v, len(b.Digits()))
		}
	}
}

func TestFormatDoesNotAllocate(t *testing.T) {
	var sink Buffer
	allocs := testing.AllocsPerRun(100, func() {
		sink = Format(5535)
	})
	assert.Zero(t, allocs)
	_ = sink
}

func TestEmitFrames(t *testing.T) {
	tests := []struct {
		value uint64
		want  string
	}{
		{5, "5\n\r"},
		{0, "\n\r"},
		{5535, "5535\n\r"},
		{1000, "1000\n\r"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			w := unlimited()
			b := Format(tt.value)
			Emit(w, &b)
			assert.Equal(t, tt.want, string(w.out))
		})
	}
}

func TestEmitWritesDigitsSinglyThenTerminator(t *testing.T) {
	w := unlimited()
	b := Format(42)
	Emit(w, &b)

	require.Len(t, w.calls, 3)
	assert.Equal(t, []byte("4"), w.calls[0])
	assert.Equal(t, []byte("2"), w.calls[1])
	assert.Equal(t, []byte(Terminator), w.calls[2])
}

func TestEmitDropsRefusedBytes(t *testing.T) {
	w := &recorder{budget: 2}
	b := Format(5535)
	Emit(w, &b)

	// Two digits fit, the rest and the terminator are dropped without retry.
	assert.Equal(t, "55", string(w.out))
	assert.Len(t, w.calls, 5)
}

func TestEmitRefusingChannel(t *testing.T) {
	w := &recorder{budget: 0}
	b := Format(123)
	assert.NotPanics(t, func() { Emit(w, &b) })
	assert.Empty(t, w.out)
}

func TestScanFrames(t *testing.T) {
	s := bufio.NewScanner(strings.NewReader("5\n\r\n\r5535\n\r12"))
	s.Split(ScanFrames)

	var got []string
	for s.Scan() {
		got = append(got, s.Text())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []string{"5", "", "5535", "12"}, got)
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue([]byte("5535"), 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5535), v)

	v, err = ParseValue(nil, 10000)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = ParseValue([]byte("10000"), 10000)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ParseValue([]byte("12a"), 0)
	assert.ErrorIs(t, err, ErrInvalidDigit)

	_, err = ParseValue([]byte("99999999999999999999999"), 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestDecoderAcrossChunks(t *testing.T) {
	var d Decoder
	var got []string
	collect := func(tok []byte) { got = append(got, string(tok)) }

	d.Feed([]byte("55"), collect)
	assert.Empty(t, got)
	d.Feed([]byte("35\n"), collect)
	assert.Empty(t, got)
	d.Feed([]byte("\r7\n\r\n"), collect)
	assert.Equal(t, []string{"5535", "7"}, got)
	assert.Equal(t, []byte("\n"), d.Pending())
	d.Feed([]byte("\r"), collect)
	assert.Equal(t, []string{"5535", "7", ""}, got)
	assert.Empty(t, d.Pending())
}

func TestDecoderDiscardsRunaway(t *testing.T) {
	d := Decoder{MaxPending: 8}
	var got []string
	collect := func(tok []byte) { got = append(got, string(tok)) }

	d.Feed([]byte("123456789"), collect)
	assert.Empty(t, got)
	assert.Empty(t, d.Pending())

	// "55" ends the discarded frame and must not pass for a value.
	d.Feed([]byte("55\n\r42\n\r"), collect)
	assert.Equal(t, []string{"42"}, got)
}

func TestDecoderResync(t *testing.T) {
	d := Decoder{Resync: true}
	var got []string
	collect := func(tok []byte) { got = append(got, string(tok)) }

	d.Feed([]byte("35\n"), collect)
	d.Feed([]byte("\r5535\n\r"), collect)
	d.Feed([]byte("7\n\r"), collect)
	assert.Equal(t, []string{"5535", "7"}, got)
}

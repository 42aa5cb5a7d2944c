package main

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thiagojm/rosc_serial_rng/config"
	"github.com/Thiagojm/rosc_serial_rng/entropy"
	"github.com/Thiagojm/rosc_serial_rng/logging"
	"github.com/Thiagojm/rosc_serial_rng/naming"
)

func setupGlobals(t *testing.T) {
	t.Helper()
	cfg = config.Default()
	cfg.Capture.OutDir = t.TempDir()
	logger = logging.New(io.Discard, "error", "text")
}

func TestCaptureSinkDecodesStream(t *testing.T) {
	setupGlobals(t)
	cfg.Capture.SQLite = ":memory:"

	sink, err := newCaptureSink(context.Background(), naming.SourceSimulated)
	require.NoError(t, err)

	_, err = sink.Write([]byte("5\n\r\n\r55"))
	require.NoError(t, err)
	_, err = sink.Write([]byte("35\n\rx\n\r"))
	require.NoError(t, err)

	assert.Equal(t, 3, sink.frames)
	assert.Equal(t, 1, sink.invalid)
	vals, err := sink.db.Values(context.Background(), sink.session)
	require.NoError(t, err)
	assert.Equal(t, []uint16{5, 0, 5535}, vals)

	paths := sink.paths
	require.NoError(t, sink.Close())

	raw, err := os.ReadFile(paths.Raw)
	require.NoError(t, err)
	assert.Equal(t, "5\n\r\n\r5535\n\rx\n\r", string(raw))

	csvData, err := os.ReadFile(paths.CSV)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[2], ",5535"))

	p, err := naming.ParseName(paths.CSV)
	require.NoError(t, err)
	assert.Equal(t, naming.SourceSimulated, p.Source)
}

func TestNewBitSource(t *testing.T) {
	src, err := newBitSource("pseudo", 9)
	require.NoError(t, err)
	assert.Less(t, entropy.Next(src), uint16(entropy.Modulus))

	_, err = newBitSource("JITTER", 0)
	assert.NoError(t, err)

	_, err = newBitSource("dice", 0)
	assert.Error(t, err)
}

func TestIdentityUsesConfiguredIDs(t *testing.T) {
	setupGlobals(t)
	cfg.Device.ProductID = 0x1234
	id := identity()
	assert.Equal(t, uint16(0x16c0), id.VendorID)
	assert.Equal(t, uint16(0x1234), id.ProductID)
	assert.Equal(t, "Serial port", id.Product)
}

package naming

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndParse(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 5, 0, time.Local)
	id := xid.New()

	paths, err := BuildCapturePaths("data", now, SourceDevice, id)
	require.NoError(t, err)

	base := "20261018T093005_rosc_" + id.String()
	assert.Equal(t, filepath.Join("data", base+".txt"), paths.Raw)
	assert.Equal(t, filepath.Join("data", base+".csv"), paths.CSV)

	p, err := ParseName(paths.CSV)
	require.NoError(t, err)
	assert.Equal(t, SourceDevice, p.Source)
	assert.Equal(t, id, p.Session)
	assert.True(t, now.Equal(p.Started))
}

func TestBuildBaseNameValidates(t *testing.T) {
	_, err := BuildBaseName(time.Now(), Source("trng"), xid.New())
	assert.Error(t, err)

	_, err = BuildBaseName(time.Now(), SourceSimulated, xid.NilID())
	assert.Error(t, err)
}

func TestWithExt(t *testing.T) {
	assert.Equal(t, "a.csv", WithExt("a", ".csv"))
	assert.Equal(t, "a.csv", WithExt("a", "csv"))
	assert.Equal(t, "a", WithExt("a", ""))
	assert.Equal(t, "a", JoinDir("", "a"))
}

func TestParseNameRejectsForeignNames(t *testing.T) {
	_, err := ParseName("20250101T000000_trng_s2048_i1.csv")
	assert.Error(t, err)
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValueScanRoundTrip(t *testing.T) {
	list := StringList{"a", "b"}

	v, err := list.Value()
	require.NoError(t, err)

	var out StringList
	require.NoError(t, out.Scan(v))
	assert.Equal(t, list, out)
}

func TestStringListScanAbsent(t *testing.T) {
	var out StringList
	require.NoError(t, out.Scan(nil))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestStringListScanBytes(t *testing.T) {
	var out StringList
	require.NoError(t, out.Scan([]byte(`["x","y"]`)))
	assert.Equal(t, StringList{"x", "y"}, out)
}

func TestMetadataRoundTrip(t *testing.T) {
	m := Metadata{"key": "value", "count": float64(3)}

	v, err := m.Value()
	require.NoError(t, err)

	var out Metadata
	require.NoError(t, out.Scan(v))
	assert.Equal(t, m, out)
}

func TestMetadataScanNil(t *testing.T) {
	var out Metadata
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
}

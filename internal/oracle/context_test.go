package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIndex = `
types:
  ext.Base:
    superclass: ext.Root
    interfaces: [java.io.Closeable]
    fields: [MAX_SIZE, name]
    methods:
      - name: load
        params: [String]
      - name: load
        params: [String, int]
      - name: reset
  ext.Root: {}
`

func TestParse(t *testing.T) {
	idx, err := Parse([]byte(sampleIndex))
	require.NoError(t, err)

	assert.True(t, idx.Knows("ext.Base"))
	assert.True(t, idx.Knows("ext.Root"))
	assert.False(t, idx.Knows("ext.Missing"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("types: [not, a, map]"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	idx, err := Parse(nil)
	require.NoError(t, err)
	assert.NotNil(t, idx.Types)
	assert.False(t, idx.Knows("anything"))
}

func TestSupertypes(t *testing.T) {
	idx, err := Parse([]byte(sampleIndex))
	require.NoError(t, err)

	super, ifaces, ok := idx.Supertypes("ext.Base")
	require.True(t, ok)
	assert.Equal(t, "ext.Root", super)
	assert.Equal(t, []string{"java.io.Closeable"}, ifaces)

	_, _, ok = idx.Supertypes("ext.Missing")
	assert.False(t, ok)
}

func TestMemberQueries(t *testing.T) {
	idx, err := Parse([]byte(sampleIndex))
	require.NoError(t, err)

	assert.True(t, idx.HasField("ext.Base", "MAX_SIZE"))
	assert.False(t, idx.HasField("ext.Base", "other"))
	assert.False(t, idx.HasField("ext.Root", "MAX_SIZE"))

	assert.True(t, idx.HasMethod("ext.Base", "load", 1))
	assert.True(t, idx.HasMethod("ext.Base", "load", 2))
	assert.False(t, idx.HasMethod("ext.Base", "load", 3))
	assert.True(t, idx.HasMethod("ext.Base", "reset", 0))

	assert.True(t, idx.HasMethodNamed("ext.Base", "load"))
	assert.False(t, idx.HasMethodNamed("ext.Base", "save"))
}

func TestNilIndexIsSafe(t *testing.T) {
	var idx *Index

	assert.False(t, idx.Knows("ext.Base"))
	assert.False(t, idx.HasField("ext.Base", "x"))
	assert.False(t, idx.HasMethod("ext.Base", "x", 0))
	assert.False(t, idx.HasMethodNamed("ext.Base", "x"))

	_, _, ok := idx.Supertypes("ext.Base")
	assert.False(t, ok)
}

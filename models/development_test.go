package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDevelopment(t *testing.T) {
	t.Run("TrimAndLowercase", func(t *testing.T) {
		key := NormalizeDevelopment("  Vista Del Mar  ")
		assert.Equal(t, "vista del mar", key.String())
	})

	t.Run("AliasResolution", func(t *testing.T) {
		short := NormalizeDevelopment("VDM")
		long := NormalizeDevelopment("Vista del Mar")
		assert.Equal(t, long, short)
		assert.Equal(t, "vista del mar", short.String())
	})

	t.Run("AllAliasesCollapse", func(t *testing.T) {
		for raw, canonical := range developmentAliases {
			assert.Equal(t, canonical, NormalizeDevelopment(raw).String(), "alias %q", raw)
		}
	})

	t.Run("UnknownNamePassesThrough", func(t *testing.T) {
		key := NormalizeDevelopment("Torre Norte")
		assert.Equal(t, "torre norte", key.String())
		assert.False(t, key.IsZero())
	})

	t.Run("EmptyIsZero", func(t *testing.T) {
		assert.True(t, NormalizeDevelopment("   ").IsZero())
	})
}

func TestDevelopmentKeyScan(t *testing.T) {
	var key DevelopmentKey

	require.NoError(t, key.Scan("San Miguel"))
	assert.Equal(t, "san miguel residencial", key.String())

	require.NoError(t, key.Scan([]byte("vdm")))
	assert.Equal(t, "vista del mar", key.String())

	require.NoError(t, key.Scan(nil))
	assert.True(t, key.IsZero())

	assert.Error(t, key.Scan(42))
}

func TestDevelopmentKeyValue(t *testing.T) {
	key := NormalizeDevelopment("Altozano")
	v, err := key.Value()
	require.NoError(t, err)
	assert.Equal(t, "altozano bosques", v)
}

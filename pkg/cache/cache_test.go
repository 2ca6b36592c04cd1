package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerCacheSetGet(t *testing.T) {
	c, err := NewBadgerCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("synth:abc", []byte("rewritten text"), time.Hour))

	got, err := c.Get("synth:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("rewritten text"), got)
}

func TestBadgerCacheMissingKey(t *testing.T) {
	c, err := NewBadgerCache(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get("synth:missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

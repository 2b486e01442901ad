package channel_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgooch/karma-sub004/api"
)

func TestMemory_PatternSeekScenario(t *testing.T) {
	r := newRegistry(t)
	c, err := r.OpenMemory(nil, 1024)
	require.NoError(t, err)
	assert.Equal(t, api.KindMemory, c.Kind())
	assert.Equal(t, -1, c.Descriptor())

	n, err := c.Write(bytes.Repeat([]byte{0xAA}, 100))
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	require.NoError(t, c.Seek(0))
	got := make([]byte, 100)
	n, err = c.Read(got)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, bytes.Repeat([]byte{0xAA}, 100), got)

	assert.ErrorIs(t, c.Seek(1024), api.ErrOutOfRange)
	rp, wp := c.Tell()
	assert.Equal(t, uint64(100), rp, "failed seek must not move the channel")
	assert.Equal(t, uint64(100), wp)
	require.NoError(t, c.Close())
}

func TestMemory_RoundTripAtEveryOffset(t *testing.T) {
	const size = 256
	r := newRegistry(t)
	c, err := r.OpenMemory(nil, size)
	require.NoError(t, err)
	defer c.Close()

	for _, p := range []int{0, 1, 17, 128, 255} {
		for _, length := range []int{0, 1, size - p} {
			data := pattern(length, int64(p*1000+length))
			require.NoError(t, c.Seek(uint64(p)))
			n, err := c.Write(data)
			require.NoError(t, err)
			require.Equal(t, length, n)

			require.NoError(t, c.Seek(uint64(p)))
			got := make([]byte, length)
			n, err = c.Read(got)
			require.NoError(t, err)
			require.Equal(t, length, n)
			assert.Equal(t, data, got, "offset %d length %d", p, length)
		}
	}
}

func TestMemory_TransfersTruncateAtEnd(t *testing.T) {
	r := newRegistry(t)
	c, err := r.OpenMemory(nil, 10)
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Write(pattern(16, 1))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	n, err = c.Write([]byte{1})
	require.NoError(t, err)
	assert.Zero(t, n)

	buf := make([]byte, 16)
	n, err = c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, pattern(16, 1)[:10], buf[:10])

	n, err = c.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	rp, wp := c.Tell()
	assert.Equal(t, uint64(10), rp)
	assert.Equal(t, uint64(10), wp)
}

func TestMemory_CallerBufferIsShared(t *testing.T) {
	r := newRegistry(t)
	backing := []byte("hello, world")
	c, err := r.OpenMemory(backing, len(backing))
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	_, err = c.Write([]byte("HELLO"))
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.Equal(t, "HELLO, world", string(backing))
}

func TestMemory_CallerBufferSizeClamped(t *testing.T) {
	r := newRegistry(t)
	c, err := r.OpenMemory(make([]byte, 4), 100)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, 4, c.BlockSize())
}

func TestMemory_NegativeSize(t *testing.T) {
	r := newRegistry(t)
	_, err := r.OpenMemory(nil, -1)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestMemory_StreamOnlyOperationsPanic(t *testing.T) {
	r := newRegistry(t)
	c, err := r.OpenMemory(nil, 8)
	require.NoError(t, err)
	defer c.Close()

	requireViolation(t, func() { c.BytesReadable() })
	requireViolation(t, func() { c.MappedBytes() })
	requireViolation(t, func() { c.IsLocalConnection() })
	assert.False(t, c.IsIO())
	assert.False(t, c.IsConnection())
	assert.False(t, c.IsMemoryMapped())
	assert.False(t, c.IsAsynchronous())
	assert.NoError(t, c.Flush())
	assert.NoError(t, c.Err())
}

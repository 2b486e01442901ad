package channel_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgooch/karma-sub004/api"
)

func TestText_PutsGetl(t *testing.T) {
	r := newRegistry(t)
	c, err := r.OpenMemory(nil, 64)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Puts("first line"))
	require.NoError(t, c.Puts(""))
	_, err = c.Printf("%s=%d", "answer", 42)
	require.NoError(t, err)

	line, err := c.Getl(64)
	require.NoError(t, err)
	assert.Equal(t, "first line", line)
	line, err = c.Getl(64)
	require.NoError(t, err)
	assert.Empty(t, line)
	line, err = c.Getl(4)
	require.NoError(t, err)
	assert.Equal(t, "answ", line, "bounded by max")
	line, err = c.Getl(64)
	require.NoError(t, err)
	assert.Equal(t, "er=42", line[:5])
}

func TestText_GetlAtEOF(t *testing.T) {
	r := newRegistry(t)
	path := writeTemp(t, "lines", []byte("one\ntwo"))
	c, err := r.OpenFile(path, api.ModeRead)
	require.NoError(t, err)
	defer c.Close()

	line, err := c.Getl(16)
	require.NoError(t, err)
	assert.Equal(t, "one", line)
	line, err = c.Getl(16)
	require.NoError(t, err)
	assert.Equal(t, "two", line, "unterminated last line")
	_, err = c.Getl(16)
	assert.ErrorIs(t, err, io.EOF)
}

func TestText_PutsPastEndOfMemory(t *testing.T) {
	r := newRegistry(t)
	c, err := r.OpenMemory(nil, 4)
	require.NoError(t, err)
	defer c.Close()
	assert.ErrorIs(t, c.Puts("too long"), io.ErrShortWrite)
}

func TestText_DrainFill(t *testing.T) {
	r := newRegistry(t)
	c, err := r.OpenMemory(nil, 10000)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Fill(9000, 'z'))
	_, wp := c.Tell()
	assert.Equal(t, uint64(9000), wp)

	skipped, err := c.Drain(8990)
	require.NoError(t, err)
	assert.Equal(t, uint64(8990), skipped)

	rest := make([]byte, 10)
	n, err := c.Read(rest)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{'z'}, 10), rest[:n])

	// only zero-filled or stale region remains; drain stops at the end
	skipped, err = c.Drain(5000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), skipped)
}

func TestText_ReaderWriterAdapters(t *testing.T) {
	r := newRegistry(t)
	src := writeTemp(t, "src", pattern(20000, 8))
	in, err := r.OpenFile(src, api.ModeRead)
	require.NoError(t, err)
	defer in.Close()

	out, err := r.OpenMemory(nil, 20000)
	require.NoError(t, err)
	defer out.Close()

	copied, err := io.Copy(out.Writer(), in.Reader())
	require.NoError(t, err)
	assert.Equal(t, int64(20000), copied)

	// the region is full, so a further write is short
	_, err = fmt.Fprintf(out.Writer(), "x")
	assert.ErrorIs(t, err, io.ErrShortWrite)

	require.NoError(t, out.Seek(0))

	got, err := io.ReadAll(out.Reader())
	require.NoError(t, err)
	assert.Equal(t, pattern(20000, 8), got)

	require.NoError(t, out.Seek(19999))
	_, err = out.Writer().Write([]byte("yz"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestText_AdaptersAfterClose(t *testing.T) {
	r := newRegistry(t)
	c, err := r.OpenMemory(nil, 8)
	require.NoError(t, err)
	rd, wr := c.Reader(), c.Writer()
	require.NoError(t, c.Close())

	_, err = rd.Read(make([]byte, 4))
	assert.ErrorIs(t, err, api.ErrChannelClosed)
	_, err = wr.Write([]byte("x"))
	assert.ErrorIs(t, err, api.ErrChannelClosed)
}

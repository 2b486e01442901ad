package channel_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/channel"
	"github.com/rgooch/karma-sub004/control"
)

// newRegistry returns a registry whose exit hook is inert and whose
// unix-domain docks live in a per-test directory.
func newRegistry(t *testing.T, opts ...channel.Option) *channel.Registry {
	t.Helper()
	ctrl := control.NewAdapter()
	require.NoError(t, ctrl.SetConfig(map[string]any{control.KeyUnixDir: t.TempDir()}))
	opts = append([]channel.Option{
		channel.WithExitHook(func(*channel.Registry) {}),
		channel.WithControl(ctrl),
	}, opts...)
	r := channel.NewRegistry(opts...)
	t.Cleanup(func() { _ = r.CloseAll() })
	return r
}

func requireViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a contract violation")
		assert.True(t, api.IsContractViolation(r), "panic value %T: %v", r, r)
	}()
	fn()
}

func pattern(n int, seed int64) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// blockSize reports the buffering granularity disc channels get in a
// temporary directory.
func blockSize(t *testing.T, r *channel.Registry) int {
	t.Helper()
	path := writeTemp(t, "blocksize", nil)
	c, err := r.OpenFile(path, api.ModeRead)
	require.NoError(t, err)
	defer c.Close()
	b := c.BlockSize()
	require.Positive(t, b)
	return b
}

// readAll reads from c in chunks of size until a short read.
func readAll(t *testing.T, c *channel.Channel, size int) []byte {
	t.Helper()
	out := []byte{}
	buf := make([]byte, size)
	for {
		n, err := c.Read(buf)
		require.NoError(t, err)
		out = append(out, buf[:n]...)
		if n < size {
			return out
		}
	}
}

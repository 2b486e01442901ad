package channel

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/rgooch/karma-sub004/api"
)

// resetExitHook restores the process-wide hook once the test is done and
// routes its exit call to the returned channel.
func resetExitHook(t *testing.T) <-chan int {
	t.Helper()
	codes := make(chan int, 1)
	exitHook.mu.Lock()
	exitHook.exit = func(code int) { codes <- code }
	exitHook.mu.Unlock()
	t.Cleanup(func() {
		exitHook.mu.Lock()
		defer exitHook.mu.Unlock()
		if exitHook.sigs != nil {
			signal.Stop(exitHook.sigs)
			close(exitHook.stop)
		}
		exitHook.regs = nil
		exitHook.sigs, exitHook.stop = nil, nil
		exitHook.fired = false
		exitHook.exit = os.Exit
	})
	return codes
}

func TestExitHook_SharedAcrossRegistries(t *testing.T) {
	codes := resetExitHook(t)
	dir := t.TempDir()

	var paths []string
	for i, files := range []int{3, 300} {
		r := NewRegistry()
		for j := 0; j < files; j++ {
			path := filepath.Join(dir, fmt.Sprintf("%d-%d", i, j))
			c, err := r.OpenFile(path, api.ModeWrite)
			require.NoError(t, err)
			_, err = c.Write([]byte{'x'})
			require.NoError(t, err)
			paths = append(paths, path)
		}
	}
	exitHook.mu.Lock()
	assert.Len(t, exitHook.regs, 2)
	exitHook.mu.Unlock()

	require.NoError(t, unix.Kill(os.Getpid(), unix.SIGTERM))
	select {
	case code := <-codes:
		assert.Equal(t, 1, code)
	case <-time.After(10 * time.Second):
		t.Fatal("exit hook did not run")
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "x", string(data), path)
	}
}

func TestExitHook_ReleasedOnShutdown(t *testing.T) {
	resetExitHook(t)
	// start the runtime's signal loop so it is part of the baseline
	warm := make(chan os.Signal, 1)
	signal.Notify(warm, unix.SIGUSR2)
	signal.Stop(warm)
	base := runtime.NumGoroutine()

	for i := 0; i < 50; i++ {
		r := NewRegistry()
		_, err := r.OpenMemory(nil, 16)
		require.NoError(t, err)
		require.NoError(t, r.Shutdown())
	}

	exitHook.mu.Lock()
	assert.Empty(t, exitHook.regs)
	assert.Nil(t, exitHook.sigs)
	exitHook.mu.Unlock()
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= base
	}, 2*time.Second, 10*time.Millisecond)
}

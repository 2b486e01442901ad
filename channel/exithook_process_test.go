package channel_test

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/channel"
)

const (
	childDirEnv = "KARMA_CHANNEL_EXIT_DIR"
	childFiles  = 200
)

// runSignalledChild opens files with pending output in two registries that
// use the default exit hook, reports readiness and waits to be signalled.
func runSignalledChild(dir string) {
	for reg := 0; reg < 2; reg++ {
		r := channel.NewRegistry()
		for i := 0; i < childFiles/2; i++ {
			c, err := r.OpenFile(filepath.Join(dir, fmt.Sprintf("%d-%d", reg, i)), api.ModeWrite)
			if err != nil {
				fmt.Println("error:", err)
				os.Exit(3)
			}
			if _, err := c.Write([]byte("pending")); err != nil {
				fmt.Println("error:", err)
				os.Exit(3)
			}
		}
	}
	fmt.Println("ready")
	time.Sleep(time.Minute)
	os.Exit(2)
}

func TestExitHook_SignalFlushesEveryRegistry(t *testing.T) {
	if dir := os.Getenv(childDirEnv); dir != "" {
		runSignalledChild(dir)
		return
	}
	dir := t.TempDir()
	cmd := exec.Command(os.Args[0], "-test.run=^TestExitHook_SignalFlushesEveryRegistry$")
	cmd.Env = append(os.Environ(), childDirEnv+"="+dir)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	ready := make(chan bool, 1)
	go func() {
		scan := bufio.NewScanner(stdout)
		for scan.Scan() {
			if scan.Text() == "ready" {
				ready <- true
				return
			}
		}
		ready <- false
	}()
	select {
	case ok := <-ready:
		require.True(t, ok, "child failed before opening its channels")
	case <-time.After(30 * time.Second):
		cmd.Process.Kill()
		t.Fatal("child never became ready")
	}

	require.NoError(t, cmd.Process.Signal(unix.SIGTERM))
	err = cmd.Wait()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "child exit: %v", err)
	assert.Equal(t, 1, exitErr.ExitCode())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, childFiles)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		assert.Equal(t, "pending", string(data), e.Name())
	}
}

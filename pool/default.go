package pool

import "sync"

var (
	defaultOnce sync.Once
	defaultPool *BytePool
)

// Default returns the process-wide pool shared by registries that are not
// given their own.
func Default() *BytePool {
	defaultOnce.Do(func() {
		defaultPool = NewBytePool()
	})
	return defaultPool
}

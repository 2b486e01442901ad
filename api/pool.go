// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs for channel buffers.

package api

// BytePool provides reusable []byte buffers for channel read and write sides.
type BytePool interface {
	// Acquire returns a slice of exactly n bytes.
	Acquire(n int) []byte

	// Release returns a buffer to the pool
	Release(buf []byte)

	// Stats exposes resource/accounting metrics for observability.
	Stats() BufferPoolStats
}

// BufferPoolStats aggregates buffer allocation/reuse stats.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
	Classes    map[int]int64
}

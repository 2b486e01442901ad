// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/rgooch/karma-sub004/api"
)

// BytePool hands out exact-size byte slices grouped by size class.
type BytePool struct {
	mu      sync.Mutex
	classes map[int]*sync.Pool
	counts  map[int]int64

	totalAlloc atomic.Int64
	totalFree  atomic.Int64
}

var _ api.BytePool = (*BytePool)(nil)

// NewBytePool creates an empty pool.
func NewBytePool() *BytePool {
	return &BytePool{
		classes: make(map[int]*sync.Pool),
		counts:  make(map[int]int64),
	}
}

func (b *BytePool) class(size int) *sync.Pool {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.classes[size]
	if !ok {
		p = &sync.Pool{
			New: func() any {
				buf := make([]byte, size)
				return &buf
			},
		}
		b.classes[size] = p
	}
	b.counts[size]++
	return p
}

// Acquire returns nil for n <= 0; otherwise a slice of n bytes.
// Recycled buffers keep their previous contents.
func (b *BytePool) Acquire(n int) []byte {
	if n <= 0 {
		return nil
	}
	bp := b.class(n).Get().(*[]byte)
	b.totalAlloc.Add(1)
	return (*bp)[:n]
}

// Release returns buf to its size class. Nil buffers are ignored.
func (b *BytePool) Release(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	buf = buf[:cap(buf)]
	b.mu.Lock()
	p, ok := b.classes[len(buf)]
	b.mu.Unlock()
	b.totalFree.Add(1)
	if !ok {
		// foreign buffer: GC handles memory
		return
	}
	p.Put(&buf)
}

// Stats reports acquire/release accounting.
func (b *BytePool) Stats() api.BufferPoolStats {
	alloc := b.totalAlloc.Load()
	free := b.totalFree.Load()
	b.mu.Lock()
	classes := make(map[int]int64, len(b.counts))
	for k, v := range b.counts {
		classes[k] = v
	}
	b.mu.Unlock()
	return api.BufferPoolStats{
		TotalAlloc: alloc,
		TotalFree:  free,
		InUse:      alloc - free,
		Classes:    classes,
	}
}

// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake buffer pool for testing: hands out fresh slices and tracks which
// are still outstanding.

package fake

import (
	"sync"

	"github.com/rgooch/karma-sub004/api"
)

// BytePool is an api.BytePool that never recycles and remembers every
// buffer it has handed out until it is released.
type BytePool struct {
	mu          sync.Mutex
	outstanding map[*byte]int
	acquired    int64
	released    int64
	foreign     int64
}

var _ api.BytePool = (*BytePool)(nil)

// NewBytePool creates an empty fake pool.
func NewBytePool() *BytePool {
	return &BytePool{outstanding: make(map[*byte]int)}
}

func (p *BytePool) Acquire(n int) []byte {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	p.mu.Lock()
	p.outstanding[&buf[0]] = n
	p.acquired++
	p.mu.Unlock()
	return buf
}

func (p *BytePool) Release(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	key := &buf[:1][0]
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.outstanding[key]; !ok {
		p.foreign++
		return
	}
	delete(p.outstanding, key)
	p.released++
}

func (p *BytePool) Stats() api.BufferPoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	classes := make(map[int]int64)
	for _, n := range p.outstanding {
		classes[n]++
	}
	return api.BufferPoolStats{
		TotalAlloc: p.acquired,
		TotalFree:  p.released,
		InUse:      int64(len(p.outstanding)),
		Classes:    classes,
	}
}

// Outstanding returns the number of buffers not yet released.
func (p *BytePool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.outstanding)
}

// Foreign returns how many released buffers did not come from this pool,
// including double releases.
func (p *BytePool) Foreign() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.foreign
}

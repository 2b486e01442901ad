// File: channel/memory.go
// Author: momentics <momentics@gmail.com>
//
// Flat-buffer strategy for memory and memory-mapped channels.

package channel

import (
	"log"

	"golang.org/x/sys/unix"

	"github.com/rgooch/karma-sub004/api"
)

// memIO transfers between the caller and a flat region with independent
// read and write cursors. Transfers are truncated at the region's end.
type memIO struct {
	buf       []byte
	rpos      int
	wpos      int
	owned     bool
	writeable bool

	// mapped regions are unmapped and fd closed on release
	mapped bool
	fd     int
	pool   api.BytePool
}

func (m *memIO) read(p []byte) (int, error) {
	n := copy(p, m.buf[m.rpos:])
	m.rpos += n
	return n, nil
}

func (m *memIO) write(p []byte) (int, error) {
	if !m.writeable {
		return 0, api.ErrNotWriteable
	}
	n := copy(m.buf[m.wpos:], p)
	m.wpos += n
	return n, nil
}

func (m *memIO) flush() error     { return nil }
func (m *memIO) lastError() error { return nil }

// seek moves both cursors to pos.
func (m *memIO) seek(pos uint64) error {
	if pos >= uint64(len(m.buf)) {
		return api.ErrOutOfRange
	}
	m.rpos, m.wpos = int(pos), int(pos)
	return nil
}

func (m *memIO) release() error {
	buf := m.buf
	m.buf = nil
	if m.mapped {
		if err := unix.Munmap(buf); err != nil {
			// a mapping that cannot be released leaves the address space in
			// an unknown state
			log.Fatalf("[channel] munmap: %v", err)
		}
		return unix.Close(m.fd)
	}
	if m.owned && m.pool != nil {
		m.pool.Release(buf)
	}
	return nil
}

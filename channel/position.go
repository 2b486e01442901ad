// File: channel/position.go
// Author: momentics <momentics@gmail.com>
//
// Seek, tell and readiness queries.

package channel

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/internal/netx"
)

// Seek moves both the read and write positions to pos. Memory channels
// reject positions at or beyond their length without changing state.
// Regular disc files flush pending output and reposition the descriptor.
// Seeking a stream, dock or asynchronous channel panics.
func (c *Channel) Seek(pos uint64) error {
	c.check("seek")
	switch b := c.io.(type) {
	case *memIO:
		if err := b.seek(pos); err != nil {
			return err
		}
	case *discIO:
		if c.kind != api.KindDisc {
			api.Violation("seek", c.kind, "stream is not seekable")
		}
		if err := b.flush(); err != nil {
			return err
		}
		if _, err := unix.Seek(b.fd, int64(pos), unix.SEEK_SET); err != nil {
			return b.fail(err)
		}
		b.rpos, b.rfill = 0, 0
		b.short = false
	default:
		api.Violation("seek", c.kind, "kind is not seekable")
	}
	c.readPos, c.writePos = pos, pos
	return nil
}

// Tell returns the absolute read and write positions.
func (c *Channel) Tell() (readPos, writePos uint64) {
	c.check("tell")
	switch c.kind {
	case api.KindDock, api.KindAsynchronous, api.KindUndefined:
		api.Violation("tell", c.kind, "kind has no position")
	}
	return c.readPos, c.writePos
}

// BytesReadable returns how many bytes a Read can deliver without blocking:
// the unconsumed buffer plus what the descriptor already holds. On failure
// it returns -1 and records the error on the channel.
func (c *Channel) BytesReadable() (int, error) {
	c.check("bytes-readable")
	if !c.kind.Stream() {
		api.Violation("bytes-readable", c.kind, "not a stream")
	}
	var b *fdBuffers
	switch s := c.io.(type) {
	case *connIO:
		b = &s.fdBuffers
	case *discIO:
		b = &s.fdBuffers
	}
	n, err := netx.Readable(b.fd)
	if err != nil && c.kind == api.KindCharacterSpecial && errors.Is(err, unix.ENOTTY) {
		// devices without a queue count have nothing pending
		n, err = 0, nil
	}
	if err != nil {
		b.err = err
		return -1, err
	}
	return b.buffered() + n, nil
}

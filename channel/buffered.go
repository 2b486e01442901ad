// File: channel/buffered.go
// Author: momentics <momentics@gmail.com>
//
// Buffered descriptor strategies. discIO serves regular files, character
// devices and FIFOs; connIO serves sockets.

package channel

import (
	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/internal/netx"
	"golang.org/x/sys/unix"
)

// fdBuffers is the read/write buffer pair shared by the descriptor kinds.
type fdBuffers struct {
	fd    int
	kind  api.Kind
	block int
	pool  api.BytePool

	rbuf  []byte
	rfill int
	rpos  int
	// short is set when the last refill returned less than a block.
	short bool

	wbuf []byte
	wpos int

	err error
}

func newFDBuffers(fd int, kind api.Kind, block int, p api.BytePool, readable, writeable bool) fdBuffers {
	b := fdBuffers{fd: fd, kind: kind, block: block, pool: p}
	if readable {
		b.rbuf = p.Acquire(block)
	}
	if writeable {
		b.wbuf = p.Acquire(block)
	}
	return b
}

func (b *fdBuffers) lastError() error { return b.err }

// buffered returns the number of unconsumed read-buffer bytes.
func (b *fdBuffers) buffered() int { return b.rfill - b.rpos }

// fail records err and discards the read buffer so a retry refills.
func (b *fdBuffers) fail(err error) error {
	b.err = err
	b.rpos, b.rfill = 0, 0
	return err
}

// takeBuffered copies unconsumed bytes into p and empties the buffer when
// they do not cover p.
func (b *fdBuffers) takeBuffered(p []byte) (n int, done bool) {
	if b.rfill-b.rpos >= len(p) {
		copy(p, b.rbuf[b.rpos:b.rpos+len(p)])
		b.rpos += len(p)
		return len(p), true
	}
	n = copy(p, b.rbuf[b.rpos:b.rfill])
	b.rpos, b.rfill = 0, 0
	return n, false
}

func (b *fdBuffers) mustRead(op string) {
	if b.rbuf == nil {
		api.Violation(op, b.kind, "channel not open for reading")
	}
}

func (b *fdBuffers) mustWrite(op string) {
	if b.wbuf == nil {
		api.Violation(op, b.kind, "channel not open for writing")
	}
}

// write buffers p, flushing and writing whole blocks directly when p does
// not fit.
func (b *fdBuffers) write(p []byte) (int, error) {
	b.mustWrite("write")
	if b.err != nil {
		return 0, b.err
	}
	if len(p) <= len(b.wbuf)-b.wpos {
		b.wpos += copy(b.wbuf[b.wpos:], p)
		return len(p), nil
	}
	n := copy(b.wbuf[b.wpos:], p)
	b.wpos += n
	if err := b.flush(); err != nil {
		return n, err
	}
	if direct := (len(p) - n) / b.block * b.block; direct > 0 {
		w, err := writeFull(b.fd, b.kind, p[n:n+direct])
		n += w
		if err != nil {
			b.err = err
			return n, err
		}
	}
	b.wpos = copy(b.wbuf, p[n:])
	return len(p), nil
}

// flush writes the pending buffer in one piece.
func (b *fdBuffers) flush() error {
	if b.wpos == 0 {
		return nil
	}
	if b.err != nil {
		return b.err
	}
	if _, err := writeFull(b.fd, b.kind, b.wbuf[:b.wpos]); err != nil {
		b.err = err
		return err
	}
	b.wpos = 0
	return nil
}

func (b *fdBuffers) freeBuffers() {
	b.pool.Release(b.rbuf)
	b.pool.Release(b.wbuf)
	b.rbuf, b.wbuf = nil, nil
	b.rpos, b.rfill, b.wpos = 0, 0, 0
}

// sysRead reads once, retrying on EINTR.
func sysRead(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err == unix.EINTR {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

// writeFull writes all of p, continuing after short writes. A write that
// makes no progress without reporting an error panics.
func writeFull(fd int, kind api.Kind, p []byte) (int, error) {
	done := 0
	for done < len(p) {
		n, err := unix.Write(fd, p[done:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return done, err
		}
		if n <= 0 {
			api.Violation("write", kind, "zero-length write without error")
		}
		done += n
	}
	return done, nil
}

// discIO is the block-buffered strategy for files, devices and FIFOs.
type discIO struct {
	fdBuffers
}

func (d *discIO) read(p []byte) (int, error) {
	d.mustRead("read")
	if d.kind == api.KindDisc && d.wpos > 0 {
		// r+ files share one offset between the buffers
		if err := d.flush(); err != nil {
			return 0, err
		}
	}
	n, done := d.takeBuffered(p)
	if done {
		return n, nil
	}
	if d.short {
		d.short = false
		return n, nil
	}
	remaining := len(p) - n
	if direct := remaining / d.block * d.block; direct > 0 {
		got, err := sysRead(d.fd, p[n:n+direct])
		n += got
		if err != nil {
			return n, d.fail(err)
		}
		if got < direct {
			return n, nil
		}
		remaining -= got
		if remaining == 0 {
			d.err = nil
			return n, nil
		}
	}
	got, err := sysRead(d.fd, d.rbuf)
	if err != nil {
		return n, d.fail(err)
	}
	d.err = nil
	d.rfill = got
	d.short = got < len(d.rbuf)
	d.rpos = copy(p[n:], d.rbuf[:d.rfill])
	n += d.rpos
	if n < len(p) {
		// EOF is reported by this short count
		d.short = false
	}
	return n, nil
}

func (d *discIO) write(p []byte) (int, error) {
	if d.kind == api.KindDisc && d.buffered() > 0 && d.err == nil {
		// give back read-ahead so the write lands at the logical position
		if _, err := unix.Seek(d.fd, int64(-d.buffered()), unix.SEEK_CUR); err != nil {
			return 0, d.fail(err)
		}
		d.rpos, d.rfill = 0, 0
	}
	d.short = false
	return d.fdBuffers.write(p)
}

func (d *discIO) release() error {
	d.freeBuffers()
	return unix.Close(d.fd)
}

// connIO reads whatever the peer has sent without waiting for full blocks.
type connIO struct {
	fdBuffers
}

// read serves p from the buffer when possible; otherwise it performs one
// potentially blocking read for the shortfall and then drains, without
// blocking, whatever else the socket already holds.
func (c *connIO) read(p []byte) (int, error) {
	c.mustRead("read")
	n, done := c.takeBuffered(p)
	if done {
		return n, nil
	}
	got, err := sysRead(c.fd, p[n:])
	if err != nil {
		return n, c.fail(err)
	}
	c.err = nil
	n += got
	if got == 0 {
		return n, nil
	}
	c.drain()
	return n, nil
}

func (c *connIO) drain() {
	avail, err := netx.Readable(c.fd)
	if err != nil || avail <= 0 {
		return
	}
	if avail > len(c.rbuf) {
		avail = len(c.rbuf)
	}
	got, err := sysRead(c.fd, c.rbuf[:avail])
	if err != nil {
		return
	}
	c.rpos, c.rfill = 0, got
}

func (c *connIO) release() error {
	c.freeBuffers()
	return netx.Hangup(c.fd)
}

// nullIO backs channels that carry no data path of their own.
type nullIO struct{}

func (nullIO) read([]byte) (int, error)  { return 0, nil }
func (nullIO) write([]byte) (int, error) { return 0, nil }
func (nullIO) flush() error              { return nil }
func (nullIO) release() error            { return nil }
func (nullIO) lastError() error          { return nil }

// asyncIO tracks a bare descriptor so it closes with the registry.
type asyncIO struct {
	nullIO
	fd int
}

func (a *asyncIO) release() error {
	return unix.Close(a.fd)
}

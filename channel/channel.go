// File: channel/channel.go
// Author: momentics <momentics@gmail.com>
//
// Channel object and kind-dispatched read/write/flush.

package channel

import (
	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/translate"
)

var f = translate.From

const (
	magicLive   uint32 = 0x1f844541
	magicClosed uint32 = 0x0badc0de
)

// backend is the per-kind strategy behind a channel.
type backend interface {
	read(p []byte) (int, error)
	write(p []byte) (int, error)
	flush() error
	// release frees buffers and the OS resource.
	release() error
	// lastError reports the sticky error, if any.
	lastError() error
}

// Channel is one open I/O resource. Obtain channels from the Open*, MapDisc,
// AllocatePort, AcceptOnDock and Attach* functions; release them with Close.
type Channel struct {
	reg   *Registry
	id    uint64
	magic uint32
	kind  api.Kind
	fd    int
	local bool

	mmapAccess uint

	readPos  uint64
	writePos uint64

	io backend
}

// check panics unless c is a live channel.
func (c *Channel) check(op string) {
	if c == nil {
		api.Violation(op, api.KindUndefined, "nil channel")
	}
	if c.magic != magicLive {
		api.Violation(op, c.kind, "channel used after close")
	}
}

// Kind returns the channel's kind.
func (c *Channel) Kind() api.Kind {
	c.check("kind")
	return c.kind
}

// Descriptor returns the OS descriptor, or -1 for pure memory channels.
func (c *Channel) Descriptor() int {
	c.check("descriptor")
	return c.fd
}

// Open reports whether c has not been closed.
func (c *Channel) Open() bool {
	return c != nil && c.magic == magicLive
}

// Err returns the sticky I/O error recorded on the channel.
func (c *Channel) Err() error {
	c.check("err")
	return c.io.lastError()
}

func (c *Channel) String() string {
	if !c.Open() {
		return "channel{closed}"
	}
	return f("channel{%s fd=%d}", c.kind, c.fd)
}

// Read fills p from the channel and returns the count transferred. A count
// below len(p) with a nil error is end of file (or, for connections, a slow
// peer). A non-nil error is the channel's sticky I/O error.
func (c *Channel) Read(p []byte) (int, error) {
	c.check("read")
	switch c.kind {
	case api.KindDock, api.KindAsynchronous, api.KindUndefined:
		api.Violation("read", c.kind, "kind does not support reading")
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := c.io.read(p)
	c.readPos += uint64(n)
	c.reg.account(metricBytesRead, n)
	return n, err
}

// Write transfers p into the channel and returns the count accepted. A count
// below len(p) always comes with an error.
func (c *Channel) Write(p []byte) (int, error) {
	c.check("write")
	switch c.kind {
	case api.KindDock, api.KindAsynchronous, api.KindUndefined:
		api.Violation("write", c.kind, "kind does not support writing")
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := c.io.write(p)
	c.writePos += uint64(n)
	c.reg.account(metricBytesWritten, n)
	return n, err
}

// Flush writes any buffered output. It is a no-op for memory, mapped, dock
// and asynchronous channels.
func (c *Channel) Flush() error {
	c.check("flush")
	return c.io.flush()
}

// Close flushes pending output, releases the OS resource and buffers, and
// removes the channel from its registry. Every resource is released even
// when an error is reported. Closing twice panics.
func (c *Channel) Close() error {
	c.check("close")
	ferr := c.io.flush()
	rerr := c.io.release()
	c.reg.remove(c)
	c.magic = magicClosed
	if ferr != nil {
		return ferr
	}
	return rerr
}

// IsIO reports whether the channel is a buffered descriptor: disc,
// connection, character special or FIFO.
func (c *Channel) IsIO() bool {
	c.check("is-io")
	return c.kind.Buffered()
}

// IsAsynchronous reports whether the channel wraps a bare descriptor.
func (c *Channel) IsAsynchronous() bool {
	c.check("is-asynchronous")
	return c.kind == api.KindAsynchronous
}

// IsConnection reports whether the channel is a connection.
func (c *Channel) IsConnection() bool {
	c.check("is-connection")
	return c.kind == api.KindConnection
}

// IsLocalConnection reports whether the connection's peer is on this host.
func (c *Channel) IsLocalConnection() bool {
	c.check("is-local-connection")
	if c.kind != api.KindConnection {
		api.Violation("is-local-connection", c.kind, "not a connection")
	}
	return c.local
}

// IsMemoryMapped reports whether the channel is a mapped disc file.
func (c *Channel) IsMemoryMapped() bool {
	c.check("is-memory-mapped")
	return c.kind == api.KindMemoryMapped
}

// MappedBytes returns the mapped region of a memory-mapped channel. The
// slice is only valid until Close.
func (c *Channel) MappedBytes() []byte {
	c.check("mapped-bytes")
	if c.kind != api.KindMemoryMapped {
		api.Violation("mapped-bytes", c.kind, "not memory mapped")
	}
	c.mmapAccess++
	return c.io.(*memIO).buf
}

// MmapAccessCount reports how often MappedBytes has been called.
func (c *Channel) MmapAccessCount() uint {
	c.check("mmap-access-count")
	if c.kind != api.KindMemoryMapped {
		api.Violation("mmap-access-count", c.kind, "not memory mapped")
	}
	return c.mmapAccess
}

// BlockSize returns the buffering granularity of a buffered channel, or the
// region length of a memory channel.
func (c *Channel) BlockSize() int {
	c.check("block-size")
	switch b := c.io.(type) {
	case *discIO:
		return b.block
	case *connIO:
		return b.block
	case *memIO:
		return len(b.buf)
	}
	return 0
}

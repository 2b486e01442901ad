// File: channel/open.go
// Author: momentics <momentics@gmail.com>
//
// Open/create variants for disc, memory and asynchronous channels.

package channel

import (
	"golang.org/x/sys/unix"

	"github.com/rgooch/karma-sub004/api"
)

func openFlags(mode api.OpenMode) int {
	switch mode {
	case api.ModeRead:
		return unix.O_RDONLY
	case api.ModeWrite:
		return unix.O_CREAT | unix.O_TRUNC | unix.O_WRONLY
	case api.ModeAppend:
		return unix.O_CREAT | unix.O_APPEND | unix.O_WRONLY
	case api.ModeReadUpdate:
		return unix.O_RDWR
	case api.ModeWriteUpdate:
		return unix.O_CREAT | unix.O_TRUNC | unix.O_RDWR
	case api.ModeAppendUpdate:
		return unix.O_CREAT | unix.O_APPEND | unix.O_RDWR
	}
	return -1
}

// classify maps a stat mode onto the kind of a descriptor channel.
func classify(mode uint32) api.Kind {
	switch mode & unix.S_IFMT {
	case unix.S_IFCHR:
		return api.KindCharacterSpecial
	case unix.S_IFIFO:
		return api.KindFIFO
	}
	return api.KindDisc
}

func openError(path string, err error) *api.Error {
	return api.NewError(api.ErrCodeOpen, f("open %s", path)).Wrap(err)
}

// OpenFile opens path in one of the fopen-style modes. Regular files,
// character devices and FIFOs all get block-buffered channels sized to the
// filesystem's preferred I/O size.
func (r *Registry) OpenFile(path string, mode api.OpenMode) (*Channel, error) {
	flags := openFlags(mode)
	if flags < 0 {
		return nil, openError(path, api.ErrInvalidArgument).WithContext("mode", int(mode))
	}
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0o666)
	if err != nil {
		return nil, openError(path, err).WithContext("mode", mode.String())
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, openError(path, err).WithContext("op", "fstat")
	}
	block := int(st.Blksize)
	if block <= 0 {
		block = int(r.blockSize.Load())
	}
	kind := classify(uint32(st.Mode))
	c, err := r.allocate(kind, fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	c.io = &discIO{newFDBuffers(fd, kind, block, r.pool, mode.Readable(), mode.Writeable())}
	return c, nil
}

// OpenMemory creates a memory channel over buf. With a nil buf a region of
// size bytes is allocated and owned by the channel; its initial contents are
// unspecified. A caller-supplied buf is never retained past Close.
func (r *Registry) OpenMemory(buf []byte, size int) (*Channel, error) {
	if size < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, f("memory channel size %d", size)).Wrap(api.ErrInvalidArgument)
	}
	m := &memIO{writeable: true, fd: -1}
	if buf == nil {
		m.buf = r.pool.Acquire(size)
		if m.buf == nil {
			m.buf = []byte{}
		}
		m.owned = true
		m.pool = r.pool
	} else {
		if size > len(buf) {
			size = len(buf)
		}
		m.buf = buf[:size]
	}
	c, err := r.allocate(api.KindMemory, -1)
	if err != nil {
		if m.owned {
			r.pool.Release(m.buf)
		}
		return nil, err
	}
	c.io = m
	return c, nil
}

// AttachToAsynchronousDescriptor tracks fd so it is closed with the
// registry. The channel cannot be read, written or sought.
func (r *Registry) AttachToAsynchronousDescriptor(fd int) (*Channel, error) {
	if fd < 0 {
		api.Violation("attach", api.KindAsynchronous, "negative descriptor")
	}
	c, err := r.allocate(api.KindAsynchronous, fd)
	if err != nil {
		return nil, err
	}
	c.io = &asyncIO{fd: fd}
	return c, nil
}

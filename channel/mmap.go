// File: channel/mmap.go
// Author: momentics <momentics@gmail.com>
//
// Memory-mapped disc channels.

package channel

import (
	"errors"
	"log"
	"math"

	"golang.org/x/sys/unix"

	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/control"
)

// wantMapping applies opt to a file of size bytes.
func (r *Registry) wantMapping(opt api.MapOption, fd int, size int64) bool {
	large := func() bool {
		return size >= r.control.Config().Int64(control.KeyLargeThreshold, 1<<20)
	}
	switch opt {
	case api.MapLargeAndLocal:
		return large() && localFS(fd)
	case api.MapLocal:
		return localFS(fd)
	case api.MapLarge:
		return large()
	case api.MapIfAvailable, api.MapAlways:
		return true
	}
	return false
}

// MapDisc opens path for reading as a memory-mapped channel when opt allows
// it, and as a buffered disc channel otherwise. A writeable mapping is
// shared with the file when updateOnWrite is set and private (copy on write)
// when it is not. With MapAlways a mapping that cannot be made is an error
// instead of a fallback.
func (r *Registry) MapDisc(path string, opt api.MapOption, writeable, updateOnWrite bool) (*Channel, error) {
	if opt == api.MapNever {
		return r.OpenFile(path, api.ModeRead)
	}
	flags := unix.O_RDONLY
	if writeable && updateOnWrite {
		flags = unix.O_RDWR
	}
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, openError(path, err).WithContext("map", opt.String())
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, openError(path, err).WithContext("op", "fstat")
	}
	fallback := func(reason error) (*Channel, error) {
		unix.Close(fd)
		if opt == api.MapAlways {
			code := api.ErrCodeMap
			if errors.Is(reason, api.ErrNotSupported) {
				code = api.ErrCodeNotSupported
			}
			return nil, api.NewError(code, f("map %s", path)).Wrap(reason)
		}
		log.Printf("[channel] map %s: %v, using buffered reads", path, reason)
		return r.OpenFile(path, api.ModeRead)
	}
	size := st.Size
	switch {
	case uint32(st.Mode)&unix.S_IFMT != unix.S_IFREG:
		return fallback(api.ErrNotSupported)
	case size == 0 || size > math.MaxInt:
		return fallback(api.ErrNoMapping)
	case !r.wantMapping(opt, fd, size):
		unix.Close(fd)
		return r.OpenFile(path, api.ModeRead)
	}
	prot, mflags := unix.PROT_READ, unix.MAP_SHARED
	if writeable {
		prot |= unix.PROT_WRITE
		if !updateOnWrite {
			mflags = unix.MAP_PRIVATE
		}
	}
	data, err := unix.Mmap(fd, 0, int(size), prot, mflags)
	if err != nil {
		return fallback(err)
	}
	c, err := r.allocate(api.KindMemoryMapped, fd)
	if err != nil {
		unix.Munmap(data)
		unix.Close(fd)
		return nil, err
	}
	c.io = &memIO{buf: data, writeable: writeable, mapped: true, fd: fd}
	return c, nil
}

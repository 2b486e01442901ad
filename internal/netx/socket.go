// File: internal/netx/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw descriptor sockets: docks (listening endpoints), connect and accept.

package netx

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/rgooch/karma-sub004/api"
	"golang.org/x/sys/unix"
)

// Dock is a bound, listening socket.
type Dock struct {
	FD   int
	Unix bool
	Path string // unix-domain socket path, empty for TCP
	Port uint16
}

// ListenTCP binds a TCP dock on port, trying up to retries successive port
// numbers while the requested one is in use. Port 0 lets the kernel choose.
func ListenTCP(port uint16, retries, backlog int) (fd int, bound uint16, err error) {
	for try := 0; try <= retries; try++ {
		candidate := port
		if port != 0 {
			if int(port)+try > 0xffff {
				break
			}
			candidate = port + uint16(try)
		}
		fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
		if err != nil {
			return -1, 0, fmt.Errorf("socket create: %w", err)
		}
		unix.CloseOnExec(fd)
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		err = unix.Bind(fd, &unix.SockaddrInet4{Port: int(candidate)})
		if err == nil {
			err = unix.Listen(fd, backlog)
		}
		if err == nil {
			bound, err = localPort(fd)
			if err != nil {
				unix.Close(fd)
				return -1, 0, err
			}
			return fd, bound, nil
		}
		unix.Close(fd)
		if !errors.Is(err, unix.EADDRINUSE) || port == 0 {
			return -1, 0, fmt.Errorf("bind port %d: %w", candidate, err)
		}
	}
	return -1, 0, fmt.Errorf("port %d+%d: %w", port, retries, api.ErrPortExhausted)
}

func localPort(fd int) (uint16, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, fmt.Errorf("getsockname: %w", err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("getsockname: %w", api.ErrNotSupported)
	}
	return uint16(in4.Port), nil
}

// ListenUnix binds a unix-domain dock at path, replacing a stale socket
// left behind by a process that died without cleaning up.
func ListenUnix(path string, backlog int) (int, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("socket create: %w", err)
	}
	unix.CloseOnExec(fd)
	err = unix.Bind(fd, &unix.SockaddrUnix{Name: path})
	if errors.Is(err, unix.EADDRINUSE) && stale(path) {
		log.Printf("[netx] removing stale dock %s", path)
		_ = os.Remove(path)
		err = unix.Bind(fd, &unix.SockaddrUnix{Name: path})
	}
	if err == nil {
		err = unix.Listen(fd, backlog)
	}
	if err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("bind %s: %w", path, err)
	}
	return fd, nil
}

// stale reports whether nobody is accepting on the unix socket at path.
func stale(path string) bool {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)
	return unix.Connect(fd, &unix.SockaddrUnix{Name: path}) != nil
}

// Listen binds the docks for a port: always a TCP dock, plus a unix-domain
// dock under unixDir when unixDir is non-empty. On failure nothing is left
// bound.
func Listen(port uint16, retries int, unixDir string, backlog int) ([]Dock, uint16, error) {
	fd, bound, err := ListenTCP(port, retries, backlog)
	if err != nil {
		return nil, 0, err
	}
	docks := []Dock{{FD: fd, Port: bound}}
	if unixDir == "" {
		return docks, bound, nil
	}
	if err := os.MkdirAll(unixDir, 0o777); err != nil {
		unix.Close(fd)
		return nil, 0, fmt.Errorf("dock directory: %w", err)
	}
	path := UnixPath(unixDir, bound)
	ufd, err := ListenUnix(path, backlog)
	if err != nil {
		unix.Close(fd)
		return nil, 0, err
	}
	return append(docks, Dock{FD: ufd, Unix: true, Path: path, Port: bound}), bound, nil
}

// CloseDock closes the dock descriptor and removes its socket file.
func CloseDock(d Dock) error {
	err := unix.Close(d.FD)
	if d.Unix && d.Path != "" {
		if rerr := os.Remove(d.Path); rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = rerr
		}
	}
	return err
}

// Dial connects to addr:port. Local peers are reached through the
// unix-domain dock under unixDir when one is listening; otherwise TCP.
func Dial(addr uint32, port uint16, unixDir string) (fd int, local bool, err error) {
	local = IsLocal(addr)
	if local && unixDir != "" {
		fd, err = unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
		if err == nil {
			unix.CloseOnExec(fd)
			if err = unix.Connect(fd, &unix.SockaddrUnix{Name: UnixPath(unixDir, port)}); err == nil {
				return fd, true, nil
			}
			unix.Close(fd)
		}
	}
	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, false, fmt.Errorf("socket create: %w", err)
	}
	unix.CloseOnExec(fd)
	for {
		err = unix.Connect(fd, &unix.SockaddrInet4{Port: int(port), Addr: IP(addr)})
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		unix.Close(fd)
		return -1, false, fmt.Errorf("connect %s:%d: %w", FormatAddr(addr), port, err)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return fd, local, nil
}

// Accept blocks until a peer connects to the dock. Unix-domain peers report
// the loopback address.
func Accept(d Dock) (fd int, peer uint32, local bool, err error) {
	var sa unix.Sockaddr
	for {
		fd, sa, err = unix.Accept(d.FD)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return -1, 0, false, fmt.Errorf("accept: %w", err)
	}
	unix.CloseOnExec(fd)
	if d.Unix {
		return fd, Loopback, true, nil
	}
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		peer = Addr(in4.Addr)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return fd, peer, IsLocal(peer), nil
}

// Readable reports how many bytes can be read from fd without blocking.
func Readable(fd int) (int, error) {
	n, err := unix.IoctlGetInt(fd, fionread)
	if err != nil {
		return -1, fmt.Errorf("FIONREAD: %w", err)
	}
	return n, nil
}

// Hangup shuts down both directions of a connection and closes it.
func Hangup(fd int) error {
	_ = unix.Shutdown(fd, unix.SHUT_RDWR)
	return unix.Close(fd)
}

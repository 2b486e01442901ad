//go:build darwin || dragonfly || freebsd || netbsd || openbsd

// File: internal/netx/ioctl_bsd.go
// Author: momentics <momentics@gmail.com>

package netx

import "golang.org/x/sys/unix"

const fionread = unix.FIONREAD

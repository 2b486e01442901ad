//go:build linux

// File: internal/netx/ioctl_linux.go
// Author: momentics <momentics@gmail.com>

package netx

import "golang.org/x/sys/unix"

// fionread is FIONREAD under its linux name.
const fionread = unix.TIOCINQ

//go:build !linux
// +build !linux

// File: channel/fslocal_other.go
// Author: momentics <momentics@gmail.com>

package channel

import "golang.org/x/sys/unix"

// localFS reports whether fd lives on a filesystem of this host. Without
// filesystem magic numbers every filesystem that answers statfs is local.
func localFS(fd int) bool {
	var st unix.Statfs_t
	if err := unix.Fstatfs(fd, &st); err != nil {
		return false
	}
	return true
}

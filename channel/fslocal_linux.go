//go:build linux
// +build linux

// File: channel/fslocal_linux.go
// Author: momentics <momentics@gmail.com>

package channel

import "golang.org/x/sys/unix"

// network filesystem magics from statfs(2)
var remoteFS = map[uint32]bool{
	0x6969:     true, // NFS
	0x517b:     true, // SMB
	0xff534d42: true, // CIFS
	0xfe534d42: true, // SMB2
	0x73757245: true, // CODA
	0x5346414f: true, // AFS
	0x00c36400: true, // CEPH
	0x01161970: true, // GFS2
}

// localFS reports whether fd lives on a filesystem of this host.
func localFS(fd int) bool {
	var st unix.Statfs_t
	if err := unix.Fstatfs(fd, &st); err != nil {
		return false
	}
	return !remoteFS[uint32(st.Type)]
}

// File: internal/netx/addr.go
// Author: momentics <momentics@gmail.com>
//
// IPv4 address helpers and host locality checks.

package netx

import (
	"net"
	"path/filepath"
	"strconv"
)

// Loopback is 127.0.0.1 in host byte order.
const Loopback uint32 = 0x7f000001

// Addr packs a 4-byte IPv4 address into host byte order.
func Addr(ip [4]byte) uint32 {
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

// IP unpacks a host-order address.
func IP(addr uint32) [4]byte {
	return [4]byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

// FormatAddr renders addr in dotted-quad form.
func FormatAddr(addr uint32) string {
	ip := IP(addr)
	return net.IPv4(ip[0], ip[1], ip[2], ip[3]).String()
}

// ParseAddr resolves a dotted-quad or host name to its first IPv4 address.
func ParseAddr(host string) (uint32, error) {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return Addr([4]byte(v4)), nil
		}
	}
	addrs, err := net.LookupIP(host)
	if err != nil {
		return 0, err
	}
	for _, ip := range addrs {
		if v4 := ip.To4(); v4 != nil {
			return Addr([4]byte(v4)), nil
		}
	}
	return 0, &net.AddrError{Err: "no IPv4 address", Addr: host}
}

// IsLocal reports whether addr is a loopback address or is assigned to one
// of this host's interfaces.
func IsLocal(addr uint32) bool {
	if addr>>24 == 127 || addr == 0 {
		return true
	}
	ifaddrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}
	for _, a := range ifaddrs {
		ipn, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipn.IP.To4(); v4 != nil && Addr([4]byte(v4)) == addr {
			return true
		}
	}
	return false
}

// UnixPath is the unix-domain socket path of the dock for port under dir.
func UnixPath(dir string, port uint16) string {
	return filepath.Join(dir, strconv.Itoa(int(port)))
}

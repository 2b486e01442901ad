// File: channel/default.go
// Author: momentics <momentics@gmail.com>
//
// Package-level entry points bound to the default registry.

package channel

import "github.com/rgooch/karma-sub004/api"

// OpenFile opens path through the default registry.
func OpenFile(path string, mode api.OpenMode) (*Channel, error) {
	return Default().OpenFile(path, mode)
}

// MapDisc maps path through the default registry.
func MapDisc(path string, opt api.MapOption, writeable, updateOnWrite bool) (*Channel, error) {
	return Default().MapDisc(path, opt, writeable, updateOnWrite)
}

// OpenConnection connects through the default registry.
func OpenConnection(addr uint32, port uint16) (*Channel, error) {
	return Default().OpenConnection(addr, port)
}

// AcceptOnDock accepts through the default registry.
func AcceptOnDock(dock *Channel) (*Channel, uint32, error) {
	return Default().AcceptOnDock(dock)
}

// OpenMemory creates a memory channel in the default registry.
func OpenMemory(buf []byte, size int) (*Channel, error) {
	return Default().OpenMemory(buf, size)
}

// AllocatePort binds docks through the default registry.
func AllocatePort(port uint16, retries int) ([]*Channel, uint16, error) {
	return Default().AllocatePort(port, retries)
}

// AttachToAsynchronousDescriptor tracks fd in the default registry.
func AttachToAsynchronousDescriptor(fd int) (*Channel, error) {
	return Default().AttachToAsynchronousDescriptor(fd)
}

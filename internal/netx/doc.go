// File: internal/netx/doc.go
// Package netx
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Descriptor-level networking used by connection and dock channels:
// binding listening docks with port retries, connecting to a host/port pair,
// accepting peers and querying how many bytes a descriptor can deliver
// without blocking. Everything operates on raw descriptors through
// golang.org/x/sys/unix so channels can buffer and close them directly.

package netx

// File: channel/doc.go
// Package channel
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unified buffered I/O over heterogeneous OS resources. A Channel wraps a
// regular file, character device, FIFO, TCP or unix-domain connection,
// listening dock, memory-mapped file, in-memory buffer or a bare descriptor,
// and exposes one Read/Write/Flush/Seek/Tell/Close surface over all of them.
//
// Every channel belongs to a Registry. The first allocation installs the
// registry's exit hook, and CloseAll (or Exit) flushes and releases whatever
// is still open so buffered writes are not lost on termination.
//
// Error model:
//   - EOF is a short count with a nil error.
//   - I/O failures are sticky: the channel records the error and later
//     operations report it (see Channel.Err).
//   - Caller bugs (use after close, reading a dock, seeking a stream) panic
//     with *api.ContractViolation.
//
// A Channel has a single owner; distinct channels are independent and the
// registry itself is safe for concurrent use.
package channel

// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer pooling for the channel layer. Read and write buffers are sized to
// a descriptor's block size, so pools are keyed by exact size class and
// recycle through sync.Pool. See bytepool.go for details.
package pool

// File: channel/text.go
// Author: momentics <momentics@gmail.com>
//
// Line, formatted and bulk helpers layered on Read/Write.

package channel

import (
	"bytes"
	"fmt"
	"io"

	"github.com/rgooch/karma-sub004/api"
)

const scratchSize = 4096

// Puts writes s followed by a newline.
func (c *Channel) Puts(s string) error {
	if _, err := c.writeAll([]byte(s + "\n")); err != nil {
		return err
	}
	return nil
}

// Printf writes formatted output and returns the bytes accepted.
func (c *Channel) Printf(format string, args ...any) (int, error) {
	return c.writeAll([]byte(fmt.Sprintf(format, args...)))
}

// Getl reads one line of at most max bytes and returns it without the
// newline. At end of input with nothing read it returns io.EOF; a line cut
// off by end of input is returned as is.
func (c *Channel) Getl(max int) (string, error) {
	var line bytes.Buffer
	var one [1]byte
	for line.Len() < max {
		n, err := c.Read(one[:])
		if err != nil {
			return line.String(), err
		}
		if n == 0 {
			if line.Len() == 0 {
				return "", io.EOF
			}
			break
		}
		if one[0] == '\n' {
			break
		}
		line.WriteByte(one[0])
	}
	return line.String(), nil
}

// Drain reads and discards up to n bytes and returns how many were skipped.
func (c *Channel) Drain(n uint64) (uint64, error) {
	var scratch [scratchSize]byte
	var done uint64
	for done < n {
		want := n - done
		if want > scratchSize {
			want = scratchSize
		}
		got, err := c.Read(scratch[:want])
		done += uint64(got)
		if err != nil {
			return done, err
		}
		if uint64(got) < want {
			break
		}
	}
	return done, nil
}

// Fill writes n copies of b.
func (c *Channel) Fill(n uint64, b byte) error {
	scratch := bytes.Repeat([]byte{b}, scratchSize)
	for n > 0 {
		chunk := uint64(len(scratch))
		if n < chunk {
			chunk = n
		}
		if _, err := c.writeAll(scratch[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func (c *Channel) writeAll(p []byte) (int, error) {
	n, err := c.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

type reader struct{ c *Channel }

func (r reader) Read(p []byte) (int, error) {
	if !r.c.Open() {
		return 0, api.ErrChannelClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.c.Read(p)
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

type writer struct{ c *Channel }

func (w writer) Write(p []byte) (int, error) {
	if !w.c.Open() {
		return 0, api.ErrChannelClosed
	}
	return w.c.writeAll(p)
}

// Reader adapts the channel to io.Reader; an empty read at end of input
// becomes io.EOF and use after Close reports api.ErrChannelClosed.
func (c *Channel) Reader() io.Reader {
	c.check("reader")
	return reader{c}
}

// Writer adapts the channel to io.Writer; a short write without a channel
// error becomes io.ErrShortWrite.
func (c *Channel) Writer() io.Writer {
	c.check("writer")
	return writer{c}
}

// File: cmd/kftp/session.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/channel"
	"github.com/rgooch/karma-sub004/internal/concurrency"
	"github.com/rgooch/karma-sub004/internal/netx"
)

const maxLine = 4096

var errRemote = errors.New("remote error")

// header is the first line of a session.
type header struct {
	verb string
	name string
	size int64
}

func parseHeader(line string) (header, error) {
	var h header
	fields := strings.Fields(line)
	switch {
	case len(fields) == 3 && fields[0] == "PUT":
		if _, err := fmt.Sscan(fields[2], &h.size); err != nil || h.size < 0 {
			return h, fmt.Errorf("bad size %q: %w", fields[2], api.ErrInvalidArgument)
		}
	case len(fields) == 2 && fields[0] == "GET":
	default:
		return h, fmt.Errorf("bad header %q: %w", line, api.ErrInvalidArgument)
	}
	h.verb, h.name = fields[0], fields[1]
	if h.name != filepath.Base(h.name) || h.name == "." || h.name == ".." {
		return h, fmt.Errorf("bad name %q: %w", h.name, api.ErrInvalidArgument)
	}
	return h, nil
}

// copyN moves exactly n bytes from src to dst.
func copyN(dst, src *channel.Channel, n int64) error {
	got, err := io.CopyN(dst.Writer(), src.Reader(), n)
	if err == io.EOF {
		return fmt.Errorf("short transfer %d of %d bytes: %w", got, n, io.ErrUnexpectedEOF)
	}
	return err
}

// status reads the peer's status line.
func status(conn *channel.Channel) (int64, error) {
	line, err := conn.Getl(maxLine)
	if err != nil {
		return 0, err
	}
	var size int64
	if _, err := fmt.Sscanf(line, "OK %d", &size); err != nil {
		return 0, fmt.Errorf("%w: %s", errRemote, strings.TrimPrefix(line, "ERR "))
	}
	return size, nil
}

func dial(host string, port uint16) (*channel.Channel, error) {
	addr, err := netx.ParseAddr(host)
	if err != nil {
		return nil, err
	}
	return channel.OpenConnection(addr, port)
}

func put(host string, port uint16, path string, opt api.MapOption) error {
	src, err := channel.MapDisc(path, opt, false, false)
	if err != nil {
		return err
	}
	defer src.Close()
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	conn, err := dial(host, port)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Printf("PUT %s %d\n", filepath.Base(path), st.Size()); err != nil {
		return err
	}
	if src.IsMemoryMapped() {
		_, err = conn.Writer().Write(src.MappedBytes())
	} else {
		err = copyN(conn, src, st.Size())
	}
	if err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	size, err := status(conn)
	if err != nil {
		return err
	}
	log.Printf("sent %s (%d bytes, %s)", path, size, src.Kind())
	return nil
}

func get(host string, port uint16, name, dir string) error {
	conn, err := dial(host, port)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.Puts("GET " + name); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	size, err := status(conn)
	if err != nil {
		return err
	}
	dst, err := channel.OpenFile(filepath.Join(dir, filepath.Base(name)), api.ModeWrite)
	if err != nil {
		return err
	}
	if err := copyN(dst, conn, size); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	log.Printf("received %s (%d bytes)", name, size)
	return nil
}

// serve accepts sessions on every dock of port and runs them on a pool of
// workers. It returns the first dock failure once every dock has stopped.
func serve(port uint16, retries int, dir string, workers int) error {
	docks, bound, err := channel.AllocatePort(port, retries)
	if err != nil {
		return err
	}
	exec := concurrency.NewExecutor(workers)
	defer exec.Close()
	ctrl := channel.Default().Control()
	ctrl.RegisterDebugProbe("kftp.sessions", func() any { return exec.Stats() })
	log.Printf("config %v", ctrl.GetConfig())
	log.Printf("serving %s on port %d (%d docks, %d workers)", dir, bound, len(docks), exec.NumWorkers())

	var wg sync.WaitGroup
	errs := make(chan error, len(docks))
	for _, dock := range docks {
		wg.Add(1)
		go func(dock *channel.Channel) {
			defer wg.Done()
			for {
				conn, peer, err := channel.AcceptOnDock(dock)
				if err != nil {
					errs <- err
					return
				}
				err = exec.Submit(func() {
					if err := handle(conn, dir); err != nil {
						log.Printf("%s: %v", netx.FormatAddr(peer), err)
					}
				})
				if err != nil {
					conn.Close()
					errs <- err
					return
				}
			}
		}(dock)
	}
	wg.Wait()
	return <-errs
}

// handle serves one session and closes conn.
func handle(conn *channel.Channel, dir string) error {
	defer conn.Close()
	line, err := conn.Getl(maxLine)
	if err != nil {
		return err
	}
	h, err := parseHeader(line)
	if err == nil {
		switch h.verb {
		case "PUT":
			err = receive(conn, filepath.Join(dir, h.name), h.size)
		case "GET":
			err = send(conn, filepath.Join(dir, h.name))
		}
	}
	if err != nil {
		conn.Printf("ERR %v\n", err)
	}
	return err
}

func receive(conn *channel.Channel, path string, size int64) error {
	dst, err := channel.OpenFile(path, api.ModeWrite)
	if err != nil {
		return err
	}
	if err := copyN(dst, conn, size); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	_, err = conn.Printf("OK %d\n", size)
	return err
}

func send(conn *channel.Channel, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	src, err := channel.MapDisc(path, api.MapLargeAndLocal, false, false)
	if err != nil {
		return err
	}
	defer src.Close()
	if _, err := conn.Printf("OK %d\n", st.Size()); err != nil {
		return err
	}
	return copyN(conn, src, st.Size())
}

// File: cmd/kftp/main.go
// Author: momentics <momentics@gmail.com>
//
// kftp moves files between hosts over connection channels.
//
//	kftp serve -port 7000 -dir /srv/incoming
//	kftp put -host 10.0.0.2 -port 7000 -map large big.dat
//	kftp get -host 10.0.0.2 -port 7000 big.dat
//
// A session is a header line ("PUT name size" or "GET name"), an optional
// body, and a status line ("OK size" or "ERR reason").

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/channel"
	"github.com/rgooch/karma-sub004/control"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: kftp serve|put|get [flags] [files]\n")
	os.Exit(2)
}

func main() {
	log.SetPrefix("[kftp] ")
	if len(os.Args) < 2 {
		usage()
	}
	cmd, args := os.Args[1], os.Args[2:]

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	host := fs.String("host", "127.0.0.1", "Peer host name or address")
	port := fs.Uint("port", 7000, "Dock port")
	retries := fs.Int("retries", 0, "Successive ports to try when the port is busy (serve)")
	dir := fs.String("dir", ".", "Directory files are stored in (serve) or fetched into (get)")
	mapOpt := fs.String("map", "large-and-local", "Memory mapping policy for files sent (put)")
	unixDir := fs.String("unix-dir", "", "Directory of unix-domain docks (default from config)")
	workers := fs.Int("workers", 4, "Concurrent sessions (serve, 0 = NumCPU)")
	fs.Parse(args)

	if *port > 0xffff {
		log.Fatalf("port %d out of range", *port)
	}
	if *unixDir != "" {
		channel.Default().Control().SetConfig(map[string]any{control.KeyUnixDir: *unixDir})
	}

	var err error
	switch cmd {
	case "serve":
		err = serve(uint16(*port), *retries, *dir, *workers)
	case "put":
		var opt api.MapOption
		if opt, err = api.ParseMapOption(*mapOpt); err == nil {
			err = forEach(fs.Args(), func(name string) error {
				return put(*host, uint16(*port), name, opt)
			})
		}
	case "get":
		err = forEach(fs.Args(), func(name string) error {
			return get(*host, uint16(*port), name, *dir)
		})
	default:
		usage()
	}
	if err != nil {
		log.Printf("%s: %v", cmd, err)
		channel.Exit(1)
	}
	channel.Exit(0)
}

func forEach(names []string, fn func(string) error) error {
	if len(names) == 0 {
		return fmt.Errorf("no files given: %w", api.ErrInvalidArgument)
	}
	for _, name := range names {
		if err := fn(name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

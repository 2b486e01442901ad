// File: channel/dock.go
// Author: momentics <momentics@gmail.com>
//
// Connection and dock channels.

package channel

import (
	"errors"

	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/control"
	"github.com/rgooch/karma-sub004/internal/netx"
)

// dockIO holds a listening socket.
type dockIO struct {
	nullIO
	dock netx.Dock
}

func (d *dockIO) release() error {
	return netx.CloseDock(d.dock)
}

// AllocatePort binds the docks for port: a TCP dock and, when
// dock.unix_dir is configured, a unix-domain dock for local peers. If port
// is busy the next retries port numbers are tried; port 0 lets the kernel
// choose. It returns the docks and the port actually bound. Either every
// dock is returned or none is left open.
func (r *Registry) AllocatePort(port uint16, retries int) ([]*Channel, uint16, error) {
	cfg := r.control.Config()
	docks, bound, err := netx.Listen(port, retries,
		cfg.String(control.KeyUnixDir, ""), cfg.Int(control.KeyBacklog, 16))
	if err != nil {
		code := api.ErrCodeNetwork
		if errors.Is(err, api.ErrResourceExhausted) {
			code = api.ErrCodeResourceExhausted
		}
		return nil, 0, api.NewError(code, f("allocate port %d", port)).
			WithContext("retries", retries).Wrap(err)
	}
	out := make([]*Channel, 0, len(docks))
	for i, d := range docks {
		c, err := r.allocate(api.KindDock, d.FD)
		if err != nil {
			for _, prev := range out {
				prev.Close()
			}
			for _, rest := range docks[i:] {
				netx.CloseDock(rest)
			}
			return nil, 0, err
		}
		c.io = &dockIO{dock: d}
		out = append(out, c)
	}
	return out, bound, nil
}

// DockPort returns the port a dock channel is bound to.
func (c *Channel) DockPort() uint16 {
	c.check("dock-port")
	if c.kind != api.KindDock {
		api.Violation("dock-port", c.kind, "not a dock")
	}
	return c.io.(*dockIO).dock.Port
}

// IsUnixDock reports whether a dock channel listens on a unix-domain socket.
func (c *Channel) IsUnixDock() bool {
	c.check("is-unix-dock")
	if c.kind != api.KindDock {
		api.Violation("is-unix-dock", c.kind, "not a dock")
	}
	return c.io.(*dockIO).dock.Unix
}

func (r *Registry) connection(fd int, local bool) (*Channel, error) {
	c, err := r.allocate(api.KindConnection, fd)
	if err != nil {
		netx.Hangup(fd)
		return nil, err
	}
	size := int(r.connBuffer.Load())
	c.local = local
	c.io = &connIO{newFDBuffers(fd, api.KindConnection, size, r.pool, true, true)}
	return c, nil
}

// AcceptOnDock waits for a peer on dock and returns the new connection and
// the peer's IPv4 address in host byte order.
func (r *Registry) AcceptOnDock(dock *Channel) (*Channel, uint32, error) {
	dock.check("accept")
	if dock.kind != api.KindDock {
		api.Violation("accept", dock.kind, "not a dock")
	}
	fd, peer, local, err := netx.Accept(dock.io.(*dockIO).dock)
	if err != nil {
		return nil, 0, api.NewError(api.ErrCodeNetwork, f("accept on dock")).Wrap(err)
	}
	c, err := r.connection(fd, local)
	if err != nil {
		return nil, 0, err
	}
	return c, peer, nil
}

// OpenConnection connects to addr:port. Peers on this host are reached over
// the unix-domain dock when one is listening.
func (r *Registry) OpenConnection(addr uint32, port uint16) (*Channel, error) {
	fd, local, err := netx.Dial(addr, port, r.control.Config().String(control.KeyUnixDir, ""))
	if err != nil {
		return nil, api.NewError(api.ErrCodeNetwork, f("connect")).
			WithContext("addr", netx.FormatAddr(addr)).WithContext("port", port).Wrap(err)
	}
	return r.connection(fd, local)
}

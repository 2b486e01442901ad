// File: channel/registry.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide tracking of live channels and shutdown cleanup.

package channel

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/rgooch/karma-sub004/api"
	"github.com/rgooch/karma-sub004/control"
	"github.com/rgooch/karma-sub004/pool"
)

// ErrRegistryClosed is returned by open functions once Shutdown has begun.
var ErrRegistryClosed = errors.New(f("channel registry is shut down"))

const (
	metricOpened       = "channels.opened"
	metricClosed       = "channels.closed"
	metricBytesRead    = "bytes.read"
	metricBytesWritten = "bytes.written"
)

// Registry owns every channel created through it.
type Registry struct {
	mu     sync.Mutex
	live   map[uint64]*Channel
	nextID uint64
	sealed bool

	hookOnce    sync.Once
	installHook func(*Registry)

	control   *control.Adapter
	pool      api.BytePool
	observers []func(*Channel)

	// buffer sizes for new channels, refreshed on config reload
	blockSize  atomic.Int64
	connBuffer atomic.Int64
}

var _ api.GracefulShutdown = (*Registry)(nil)

// Option customizes a Registry.
type Option func(*Registry)

// WithExitHook replaces the hook installed on first allocation. The default
// enrolls the registry in one process-wide handler that, on SIGINT, SIGTERM
// or SIGHUP, shuts down every enrolled registry and then exits with status 1.
func WithExitHook(fn func(*Registry)) Option {
	return func(r *Registry) {
		r.installHook = fn
	}
}

// WithControl supplies the config/metrics/debug adapter.
func WithControl(c *control.Adapter) Option {
	return func(r *Registry) {
		r.control = c
	}
}

// WithPool supplies the buffer pool used for channel buffers.
func WithPool(p api.BytePool) Option {
	return func(r *Registry) {
		r.pool = p
	}
}

// WithCloseObserver registers fn to run after each channel closes.
func WithCloseObserver(fn func(*Channel)) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, fn)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		live:        make(map[uint64]*Channel),
		installHook: signalExitHook,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.control == nil {
		r.control = control.NewAdapter()
	}
	if r.pool == nil {
		r.pool = pool.Default()
	}
	r.reload()
	r.control.OnReload(r.reload)
	r.control.RegisterDebugProbe("channels.open", func() any { return r.Len() })
	r.control.RegisterDebugProbe("pool.stats", func() any { return r.pool.Stats() })
	return r
}

// reload picks up buffer sizes for channels opened from now on. Open
// channels keep the buffers they were created with.
func (r *Registry) reload() {
	cfg := r.control.GetConfig()
	block, conn := sizeSetting(cfg[control.KeyBlockSize]), sizeSetting(cfg[control.KeyConnBufferSize])
	if block <= 0 {
		block = 4096
	}
	if conn <= 0 {
		conn = 4096
	}
	if r.blockSize.Swap(block) != block || r.connBuffer.Swap(conn) != conn {
		log.Printf("[channel] buffers: block %d, connection %d", block, conn)
	}
}

func sizeSetting(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

var defaultRegistry = sync.OnceValue(func() *Registry { return NewRegistry() })

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry {
	return defaultRegistry()
}

// Control exposes the registry's configuration and metrics.
func (r *Registry) Control() *control.Adapter {
	return r.control
}

// Len returns the number of open channels.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// allocate creates a channel of kind, links it in, and installs the exit
// hook on first use.
func (r *Registry) allocate(kind api.Kind, fd int) (*Channel, error) {
	r.hookOnce.Do(func() {
		if r.installHook != nil {
			r.installHook(r)
		}
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return nil, ErrRegistryClosed
	}
	r.nextID++
	c := &Channel{
		reg:   r,
		id:    r.nextID,
		magic: magicLive,
		kind:  kind,
		fd:    fd,
		io:    nullIO{},
	}
	r.live[c.id] = c
	r.control.Metrics().Add(metricOpened, 1)
	return c, nil
}

func (r *Registry) remove(c *Channel) {
	r.mu.Lock()
	delete(r.live, c.id)
	observers := r.observers
	r.mu.Unlock()
	r.control.Metrics().Add(metricClosed, 1)
	for _, fn := range observers {
		fn(c)
	}
}

func (r *Registry) account(key string, n int) {
	if n > 0 {
		r.control.Metrics().Add(key, int64(n))
	}
}

// snapshot queues live channels newest first.
func (r *Registry) snapshot() *queue.Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint64, 0, len(r.live))
	for id := range r.live {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	q := queue.New()
	for _, id := range ids {
		q.Add(r.live[id])
	}
	return q
}

// CloseAll closes every open channel, newest first, until the registry is
// empty. Channels opened while it runs are closed too. The first close error
// is returned after all channels have been released.
func (r *Registry) CloseAll() error {
	var first error
	for {
		q := r.snapshot()
		if q.Length() == 0 {
			return first
		}
		for q.Length() > 0 {
			c := q.Remove().(*Channel)
			if !c.Open() {
				continue
			}
			if err := c.Close(); err != nil {
				log.Printf("[channel] close %v: %v", c.id, err)
				if first == nil {
					first = err
				}
			}
		}
	}
}

// Shutdown refuses further allocations, closes every channel and withdraws
// the registry from the process-wide signal hook.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
	err := r.CloseAll()
	releaseExitHook(r)
	return err
}

// exitHook is the single signal subscription shared by every registry that
// uses the default hook.
var exitHook struct {
	mu    sync.Mutex
	regs  map[*Registry]struct{}
	sigs  chan os.Signal
	stop  chan struct{}
	exit  func(int)
	fired bool
}

func init() {
	exitHook.exit = os.Exit
}

// signalExitHook enrolls r in the process-wide hook, starting the signal
// watcher if it is not running.
func signalExitHook(r *Registry) {
	exitHook.mu.Lock()
	defer exitHook.mu.Unlock()
	if exitHook.fired {
		return
	}
	if exitHook.regs == nil {
		exitHook.regs = make(map[*Registry]struct{})
	}
	exitHook.regs[r] = struct{}{}
	if exitHook.sigs != nil {
		return
	}
	exitHook.sigs = make(chan os.Signal, 1)
	exitHook.stop = make(chan struct{})
	signal.Notify(exitHook.sigs, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	go watchSignals(exitHook.sigs, exitHook.stop)
}

// releaseExitHook withdraws r from the hook and stops the watcher once no
// registry is enrolled.
func releaseExitHook(r *Registry) {
	exitHook.mu.Lock()
	defer exitHook.mu.Unlock()
	if _, ok := exitHook.regs[r]; !ok || exitHook.fired {
		return
	}
	delete(exitHook.regs, r)
	if len(exitHook.regs) == 0 && exitHook.sigs != nil {
		signal.Stop(exitHook.sigs)
		close(exitHook.stop)
		exitHook.sigs, exitHook.stop = nil, nil
	}
}

func watchSignals(sigs <-chan os.Signal, stop <-chan struct{}) {
	select {
	case sig := <-sigs:
		exitHook.mu.Lock()
		exitHook.fired = true
		regs := make([]*Registry, 0, len(exitHook.regs))
		for r := range exitHook.regs {
			regs = append(regs, r)
		}
		exit := exitHook.exit
		exitHook.mu.Unlock()

		var wg sync.WaitGroup
		for _, r := range regs {
			wg.Add(1)
			go func(r *Registry) {
				defer wg.Done()
				log.Printf("[channel] %v: closing %d open channels", sig, r.Len())
				if err := r.Shutdown(); err != nil {
					log.Printf("[channel] shutdown: %v", err)
				}
			}(r)
		}
		wg.Wait()
		exit(1)
	case <-stop:
	}
}

// CloseAll closes every channel of the default registry.
func CloseAll() error {
	return Default().CloseAll()
}

// Exit closes every channel of the default registry and terminates the
// process with code. Programs call it in place of os.Exit.
func Exit(code int) {
	if err := Default().Shutdown(); err != nil {
		log.Printf("[channel] shutdown: %v", err)
	}
	os.Exit(code)
}

// Package wayland opens a client connection to a Wayland compositor from the
// process environment and releases it again.
//
// The handle is opaque: it can prove that the compositor answers
// (Roundtrip) and describe the peer, it does not bind globals or expose
// events.
package wayland

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/neurlang/wayland/wl"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/internal/logx"
	"github.com/srlehn/wlconn/internal/propkeys"
)

// consecutive dispatch failures after which the connection counts as broken
const maxDispatchFailures = 16

// Connection is a live connection to a compositor.
// It is safe for concurrent use; Close may be called while a Roundtrip blocks.
type Connection struct {
	mu       sync.Mutex // serializes Roundtrip
	display  *wl.Display
	endpoint Endpoint
	env      environ.Enver
	logger   *slog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closing   chan struct{}
	pumpDone  chan struct{}

	stateMu sync.Mutex
	fatal   error
	broken  chan struct{}
	waiters map[uint32]chan struct{} // sync callbacks by object id
	deleted map[uint32]struct{}      // delete_id seen before the waiter was registered

	peerOnce sync.Once
	peerPID  int32
	peerErr  error
}

var _ logx.LoggerProvider = (*Connection)(nil)

// ConnectToEnv connects to the compositor named by the environment.
// See ResolveEndpoint for the lookup rules.
func ConnectToEnv(opts ...Option) (*Connection, error) {
	return ConnectToEnvContext(context.Background(), opts...)
}

// ConnectToEnvContext is ConnectToEnv giving up when ctx is done before dialing.
func ConnectToEnvContext(ctx context.Context, opts ...Option) (*Connection, error) {
	c, err := newConnection(opts...)
	if err != nil {
		return nil, err
	}
	ep, err := ResolveEndpoint(c.env)
	if err != nil {
		logx.Debug(`compositor endpoint lookup failed`, c, `error`, err)
		return nil, errors.Wrapped(err)
	}
	if ep.Kind == EndpointFD {
		return nil, errors.Wrapped(c.refuseSocketFD(ep))
	}
	if err := c.open(ctx, ep); err != nil {
		return nil, err
	}
	return c, nil
}

// ConnectTo connects to the socket at path.
func ConnectTo(ctx context.Context, path string, opts ...Option) (*Connection, error) {
	c, err := newConnection(opts...)
	if err != nil {
		return nil, err
	}
	ep := Endpoint{Kind: EndpointPath, Path: path, Display: path}
	if len(path) > maxSocketPathLen {
		return nil, errors.Wrapped(newConnectError(KindNoCompositor, CauseNameTooLong, ep, nil))
	}
	if err := c.open(ctx, ep); err != nil {
		return nil, err
	}
	return c, nil
}

func newConnection(opts ...Option) (*Connection, error) {
	c := &Connection{
		closing:  make(chan struct{}),
		pumpDone: make(chan struct{}),
		broken:   make(chan struct{}),
		waiters:  make(map[uint32]chan struct{}),
		deleted:  make(map[uint32]struct{}),
	}
	if err := c.setOptions(opts...); err != nil {
		return nil, err
	}
	if c.env == nil {
		c.env = environ.Process()
	}
	return c, nil
}

// refuseSocketFD takes the WAYLAND_SOCKET fd away from the environment.
// The client library only dials socket paths, a valid inherited socket is
// closed and reported as unusable.
func (c *Connection) refuseSocketFD(ep Endpoint) error {
	// the fd is ours now, children must not see the variable
	if err := environ.Unsetenv(c.env, `WAYLAND_SOCKET`); err != nil {
		logx.Warn(`unsetting WAYLAND_SOCKET failed`, c, `error`, err)
	}
	if err := checkSocketFD(ep.FD); err != nil {
		return newConnectError(KindInvalidFD, CauseInvalidFD, ep, err)
	}
	if err := closeFD(ep.FD); err != nil {
		logx.Warn(`closing WAYLAND_SOCKET failed`, c, `fd`, ep.FD, `error`, err)
	}
	logx.Debug(`refused handed over socket`, c, `fd`, ep.FD)
	return newConnectError(KindNoCompositor, CauseSocketUnsupported, ep, nil)
}

func (c *Connection) open(ctx context.Context, ep Endpoint) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return errors.New(err)
	}
	var (
		display *wl.Display
		err     error
	)
	switch {
	case ep.Kind != EndpointPath:
		err = newConnectError(KindNoCompositor, CauseOther, ep, errors.New(`invalid endpoint`))
	default:
		if _, errStat := os.Stat(ep.Path); errStat != nil {
			err = newConnectError(KindNoCompositor, dialCause(errStat), ep, errStat)
			break
		}
		if display, err = dialDisplay(ep.Path); err != nil {
			err = newConnectError(KindNoCompositor, classifyDial(ep.Path, err), ep, err)
		}
	}
	if err != nil {
		logx.Debug(`connecting to compositor failed`, c, `endpoint`, ep.String(), `error`, err)
		return errors.Wrapped(err)
	}
	c.display = display
	c.endpoint = ep
	h := displayHandler{c: c}
	display.AddErrorHandler(h)
	display.AddDeleteIdHandler(h)
	go c.pump()
	logx.Debug(`connected to compositor`, c, `endpoint`, ep.String())
	return nil
}

// classifyDial derives the Cause of a failed dial. Errors the client library
// does not wrap are classified by dialing path once more.
func classifyDial(path string, err error) Cause {
	if cause := dialCause(err); cause != CauseOther {
		return cause
	}
	conn, errDial := net.Dial(`unix`, path)
	if errDial != nil {
		return dialCause(errDial)
	}
	_ = conn.Close()
	return CauseOther
}

// pump dispatches compositor events until the connection is closed or broken.
func (c *Connection) pump() {
	defer close(c.pumpDone)
	failures := 0
	for {
		err := c.display.Context().Run()
		if c.closed.Load() {
			return
		}
		if err == nil {
			failures = 0
			continue
		}
		failures++
		if isHangup(err) || failures >= maxDispatchFailures {
			c.setFatal(errors.WrapPrefix(err, `wlconn: compositor hung up`, 0))
			logx.Debug(`compositor connection lost`, c, `error`, err)
			return
		}
		logx.Debug(`ignoring undispatchable event`, c, `error`, err)
	}
}

func isHangup(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

func (c *Connection) setFatal(err error) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.fatal != nil {
		return
	}
	c.fatal = err
	close(c.broken)
}

func (c *Connection) fatalErr() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.fatal
}

func (c *Connection) protocolError(objectID, code uint32, msg string) {
	pe := &ProtocolError{ObjectID: objectID, Code: code, Message: msg}
	c.stateMu.Lock()
	_, isCallback := c.waiters[objectID]
	c.stateMu.Unlock()
	switch {
	case objectID == 1:
		pe.Interface = `wl_display`
	case isCallback:
		pe.Interface = `wl_callback`
	}
	logx.Error(`compositor reported protocol error`, c, `object`, objectID, `code`, code, `message`, msg)
	c.setFatal(errors.New(pe))
}

// await returns a channel closed once the compositor deleted object id.
func (c *Connection) await(id uint32) <-chan struct{} {
	ch := make(chan struct{})
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if _, ok := c.deleted[id]; ok {
		delete(c.deleted, id)
		close(ch)
		return ch
	}
	c.waiters[id] = ch
	return ch
}

func (c *Connection) released(id uint32) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if ch, ok := c.waiters[id]; ok {
		delete(c.waiters, id)
		close(ch)
		return
	}
	c.deleted[id] = struct{}{}
}

// Close releases the connection. Only the first call has an effect, after it
// every operation returns ErrClosed without touching the socket.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closing)
		if c.display == nil {
			return
		}
		c.display.Context().Close()
		<-c.pumpDone
		logx.Debug(`released compositor connection`, c, `endpoint`, c.endpoint.String())
	})
	return nil
}

// Closed reports whether Close was called.
func (c *Connection) Closed() bool { return c == nil || c.closed.Load() }

// Roundtrip sends wl_display.sync and waits until the compositor retired the
// callback. A compositor side wl_display.error ends the wait with a
// *ProtocolError and breaks the connection for good. A cancelled ctx leaves
// the connection usable.
func (c *Connection) Roundtrip(ctx context.Context) error {
	if c == nil {
		return errors.NilReceiver()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.closed.Load() {
		return errors.New(ErrClosed)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return errors.New(ErrClosed)
	}
	if err := c.fatalErr(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.New(err)
	}

	_, err := logx.TimeIt2(func() (struct{}, error) {
		cb, err := c.display.Sync()
		if err != nil {
			if c.closed.Load() {
				return struct{}{}, errors.New(ErrClosed)
			}
			return struct{}{}, errors.New(err)
		}
		done := c.await(uint32(cb.Id()))
		select {
		case <-done:
			return struct{}{}, nil
		case <-c.broken:
			return struct{}{}, c.fatalErr()
		case <-c.closing:
			return struct{}{}, errors.New(ErrClosed)
		case <-ctx.Done():
			return struct{}{}, errors.New(ctx.Err())
		}
	}, `roundtrip`, c, `endpoint`, c.endpoint.String())
	return err
}

// Endpoint returns where the connection was established.
func (c *Connection) Endpoint() Endpoint {
	if c == nil {
		return Endpoint{}
	}
	return c.endpoint
}

// PeerPID returns the process id of the compositor, the process holding the
// socket the connection was dialed to.
func (c *Connection) PeerPID() (int32, error) {
	if c == nil {
		return 0, errors.NilReceiver()
	}
	if c.closed.Load() {
		return 0, errors.New(ErrClosed)
	}
	c.peerOnce.Do(func() {
		c.peerPID, c.peerErr = listenerPID(c.endpoint.Path)
	})
	return c.peerPID, c.peerErr
}

// CompositorName returns the process name of the compositor.
func (c *Connection) CompositorName() (string, error) {
	pid, err := c.PeerPID()
	if err != nil {
		return ``, err
	}
	proc, err := process.NewProcess(pid)
	if err != nil {
		return ``, errors.New(err)
	}
	name, err := proc.Name()
	if err != nil {
		return ``, errors.New(err)
	}
	return name, nil
}

// Properties describes the connection.
func (c *Connection) Properties() environ.Properties {
	pr := environ.NewProperties()
	if c == nil {
		return pr
	}
	pr.SetProperty(propkeys.DisplayServer, `wayland`)
	pr.SetProperty(propkeys.WaylandEndpointKind, c.endpoint.Kind.String())
	pr.SetProperty(propkeys.WaylandSocketPath, c.endpoint.Path)
	pr.SetProperty(propkeys.WaylandDisplayName, c.endpoint.Display)
	if pid, err := c.PeerPID(); err == nil {
		pr.SetProperty(propkeys.PeerPID, strconv.Itoa(int(pid)))
		if name, err := c.CompositorName(); err == nil {
			pr.SetProperty(propkeys.PeerName, name)
		}
	}
	return pr
}

func (c *Connection) Logger() *slog.Logger {
	if c == nil {
		return nil
	}
	return c.logger
}

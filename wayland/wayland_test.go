//go:build unix

package wayland_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sys/unix"

	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/internal/propkeys"
	"github.com/srlehn/wlconn/internal/testutil/compositor"
	"github.com/srlehn/wlconn/wayland"
)

func connectEnv(t *testing.T, env ...string) (*wayland.Connection, error) {
	t.Helper()
	return wayland.ConnectToEnv(wayland.SetEnv(env))
}

func TestConnectToEnvRuntimeDir(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	comp := compositor.Listen(t, dir, `wayland-0`)

	conn, err := connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, wayland.EndpointPath, conn.Endpoint().Kind)
	assert.Equal(t, comp.Path(), conn.Endpoint().Path)
	require.NoError(t, conn.Roundtrip(context.Background()))
	require.NoError(t, conn.Roundtrip(context.Background()))
	assert.EqualValues(t, 2, comp.Requests(), `one sync request per roundtrip`)
}

func TestConnectToEnvAbsoluteDisplay(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	comp := compositor.Listen(t, dir, `custom.sock`)

	conn, err := connectEnv(t, `WAYLAND_DISPLAY=`+comp.Path())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.Roundtrip(context.Background()))

	props := conn.Properties()
	v, _ := props.Property(propkeys.WaylandSocketPath)
	assert.Equal(t, comp.Path(), v)
	v, _ = props.Property(propkeys.DisplayServer)
	assert.Equal(t, `wayland`, v)
}

func TestConnectToEnvSocketFD(t *testing.T) {
	comp, fd := compositor.Socketpair(t)

	_, err := connectEnv(t, `WAYLAND_SOCKET=`+strconv.Itoa(fd), `WAYLAND_DISPLAY=nonexistent`)
	require.Error(t, err)
	assert.ErrorIs(t, err, wayland.ErrNoCompositor)
	var ce *wayland.ConnectError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, wayland.CauseSocketUnsupported, ce.Cause)
	assert.Equal(t, wayland.Endpoint{Kind: wayland.EndpointFD, FD: fd}, ce.Endpoint)

	// the handed over socket is not kept open
	_, errFcntl := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	assert.ErrorIs(t, errFcntl, unix.EBADF)
	select {
	case <-comp.Hangups():
	case <-time.After(5 * time.Second):
		t.Fatal(`compositor end still connected`)
	}
}

func TestConnectToEnvUnsetsProcessSocket(t *testing.T) {
	_, fd := compositor.Socketpair(t)
	t.Setenv(`WAYLAND_SOCKET`, strconv.Itoa(fd))

	_, err := wayland.ConnectToEnv()
	assert.ErrorIs(t, err, wayland.ErrNoCompositor)

	_, ok := os.LookupEnv(`WAYLAND_SOCKET`)
	assert.False(t, ok)
}

func TestConnectToEnvKeepsProcessEnv(t *testing.T) {
	t.Setenv(`XDG_RUNTIME_DIR`, `/nonexistent/runtime`)
	t.Setenv(`WAYLAND_DISPLAY`, `wayland-9`)
	dir := compositor.RuntimeDir(t)
	compositor.Listen(t, dir, `wayland-0`)

	conn, err := connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.Roundtrip(context.Background()))

	assert.Equal(t, `/nonexistent/runtime`, os.Getenv(`XDG_RUNTIME_DIR`))
	assert.Equal(t, `wayland-9`, os.Getenv(`WAYLAND_DISPLAY`))
}

func TestConnectToEnvInvalidFD(t *testing.T) {
	// an fd number far above anything open in the test process
	_, err := connectEnv(t, `WAYLAND_SOCKET=1000000`)
	require.Error(t, err)
	assert.ErrorIs(t, err, wayland.ErrInvalidFD)

	f, err := os.CreateTemp(t.TempDir(), `notasocket`)
	require.NoError(t, err)
	defer f.Close()
	// regular files are no sockets
	_, err = connectEnv(t, `WAYLAND_SOCKET=`+strconv.Itoa(int(f.Fd())))
	assert.ErrorIs(t, err, wayland.ErrInvalidFD)
}

func TestConnectToEnvNoCompositor(t *testing.T) {
	dir := compositor.RuntimeDir(t)

	_, err := connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, wayland.ErrNoCompositor)
	var ce *wayland.ConnectError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, wayland.CauseSocketNotFound, ce.Cause)
	assert.Equal(t, filepath.Join(dir, `wayland-0`), ce.Endpoint.Path)
}

func TestConnectToEnvRefused(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	path := filepath.Join(dir, `wayland-0`)
	ln, err := net.ListenUnix(`unix`, &net.UnixAddr{Name: path, Net: `unix`})
	require.NoError(t, err)
	// leave a stale socket file behind
	ln.SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())

	_, err = connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.Error(t, err)
	var ce *wayland.ConnectError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, wayland.KindNoCompositor, ce.Kind)
	assert.Equal(t, wayland.CauseConnectionRefused, ce.Cause)
}

func TestCloseReleases(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := compositor.RuntimeDir(t)
	comp := compositor.Listen(t, dir, `wayland-0`)

	conn, err := connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.NoError(t, err)
	require.NoError(t, conn.Roundtrip(context.Background()))
	requests := comp.Requests()

	require.NoError(t, conn.Close())
	assert.True(t, conn.Closed())
	assert.NoError(t, conn.Close(), `second close is a no-op`)

	select {
	case <-comp.Hangups():
	case <-time.After(5 * time.Second):
		t.Fatal(`compositor did not observe the hangup`)
	}

	assert.ErrorIs(t, conn.Roundtrip(context.Background()), wayland.ErrClosed)
	_, err = conn.PeerPID()
	assert.ErrorIs(t, err, wayland.ErrClosed)
	assert.Equal(t, requests, comp.Requests(), `no I/O after release`)

	require.NoError(t, comp.Close())
}

func TestCloseUnblocksRoundtrip(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	comp := compositor.Listen(t, dir, `wayland-0`)
	comp.Silent.Store(true)

	conn, err := connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- conn.Roundtrip(context.Background()) }()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, conn.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, wayland.ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal(`roundtrip still blocked after close`)
	}
}

func TestRoundtripContext(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	comp := compositor.Listen(t, dir, `wayland-0`)
	comp.Silent.Store(true)

	conn, err := connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = conn.Roundtrip(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the connection stays usable once the compositor answers again
	comp.Silent.Store(false)
	require.NoError(t, conn.Roundtrip(context.Background()))
}

func TestRoundtripIgnoresUnknownEvents(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	comp := compositor.Listen(t, dir, `wayland-0`)
	comp.ExtraEvent.Store(true)

	conn, err := connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.NoError(t, err)
	defer conn.Close()
	assert.NoError(t, conn.Roundtrip(context.Background()))
}

func TestRoundtripProtocolError(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	comp := compositor.Listen(t, dir, `wayland-0`)
	comp.ErrorOnSync.Store(true)

	conn, err := connectEnv(t, `XDG_RUNTIME_DIR=`+dir)
	require.NoError(t, err)
	defer conn.Close()

	err = conn.Roundtrip(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, wayland.ErrProtocol)
	var pe *wayland.ProtocolError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, uint32(1), pe.ObjectID)
	assert.Equal(t, uint32(1), pe.Code, `invalid method`)
	assert.Equal(t, `wl_display`, pe.Interface)
	assert.Equal(t, `invalid method`, pe.Message)

	requests := comp.Requests()
	assert.ErrorIs(t, conn.Roundtrip(context.Background()), wayland.ErrProtocol, `protocol errors are fatal`)
	assert.Equal(t, requests, comp.Requests())
}

func TestConnectTo(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	comp := compositor.Listen(t, dir, `wayland-5`)

	conn, err := wayland.ConnectTo(context.Background(), comp.Path())
	require.NoError(t, err)
	defer conn.Close()
	assert.NoError(t, conn.Roundtrip(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = wayland.ConnectTo(ctx, comp.Path())
	assert.ErrorIs(t, err, context.Canceled)

	_, err = wayland.ConnectTo(context.Background(), filepath.Join(dir, `wayland-6`))
	assert.ErrorIs(t, err, wayland.ErrNoCompositor)
}

//go:build unix && !android && !darwin && !js

package wlconn_test

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/wlconn"
	"github.com/srlehn/wlconn/internal/testutil/compositor"
	"github.com/srlehn/wlconn/wayland"
)

func setSession(t *testing.T, runtimeDir string) {
	t.Helper()
	for _, name := range []string{`WAYLAND_SOCKET`, `WAYLAND_DISPLAY`, `DISPLAY`} {
		t.Setenv(name, ``)
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv(`XDG_RUNTIME_DIR`, runtimeDir)
	t.Setenv(`XDG_SESSION_TYPE`, `wayland`)
}

func TestConnect(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	compositor.Listen(t, dir, `wayland-0`)
	setSession(t, dir)

	conn, err := wlconn.Connect()
	require.NoError(t, err)
	require.NoError(t, conn.Roundtrip(context.Background()))
	require.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.Roundtrip(context.Background()), wayland.ErrClosed)
}

func TestConnectNoCompositor(t *testing.T) {
	setSession(t, compositor.RuntimeDir(t))

	_, err := wlconn.Connect()
	assert.ErrorIs(t, err, wayland.ErrNoCompositor)
}

func TestDisplay(t *testing.T) {
	dir := compositor.RuntimeDir(t)
	compositor.Listen(t, dir, `wayland-0`)
	setSession(t, dir)

	conn, err := wlconn.Display()
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, `wayland`, conn.Server())
}

// TestMustConnectExitStatus runs MustConnect in a child process: without
// compositor it has to end the process with status 1 and a diagnostic.
func TestMustConnectExitStatus(t *testing.T) {
	if os.Getenv(`WLCONN_HELPER_PROCESS`) == `1` {
		conn := wlconn.MustConnect()
		_ = conn.Close()
		return
	}
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, `WAYLAND_`) || strings.HasPrefix(e, `XDG_RUNTIME_DIR=`) {
			continue
		}
		env = append(env, e)
	}
	env = append(env, `WLCONN_HELPER_PROCESS=1`, `XDG_RUNTIME_DIR=`+compositor.RuntimeDir(t))

	cmd := exec.Command(os.Args[0], `-test.run=^TestMustConnectExitStatus$`)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, string(out))
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, string(out), `no compositor available: `)
	assert.Contains(t, string(out), `socket not found`)
}

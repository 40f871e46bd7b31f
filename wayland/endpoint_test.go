package wayland_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/wayland"
)

func TestResolveEndpoint(t *testing.T) {
	tests := map[string]struct {
		env   []string
		want  wayland.Endpoint
		kind  wayland.ErrorKind
		cause wayland.Cause
	}{
		"default display": {
			env:  []string{`XDG_RUNTIME_DIR=/run/user/1000`},
			want: wayland.Endpoint{Kind: wayland.EndpointPath, Path: `/run/user/1000/wayland-0`, Display: `wayland-0`},
		},
		"empty display falls back to default": {
			env:  []string{`XDG_RUNTIME_DIR=/run/user/1000`, `WAYLAND_DISPLAY=`},
			want: wayland.Endpoint{Kind: wayland.EndpointPath, Path: `/run/user/1000/wayland-0`, Display: `wayland-0`},
		},
		"named display": {
			env:  []string{`XDG_RUNTIME_DIR=/run/user/1000`, `WAYLAND_DISPLAY=wayland-1`},
			want: wayland.Endpoint{Kind: wayland.EndpointPath, Path: `/run/user/1000/wayland-1`, Display: `wayland-1`},
		},
		"absolute display ignores runtime dir": {
			env:  []string{`WAYLAND_DISPLAY=/tmp/sway.sock`},
			want: wayland.Endpoint{Kind: wayland.EndpointPath, Path: `/tmp/sway.sock`, Display: `/tmp/sway.sock`},
		},
		"socket fd wins": {
			env:  []string{`WAYLAND_SOCKET=7`, `WAYLAND_DISPLAY=wayland-1`, `XDG_RUNTIME_DIR=/run/user/1000`},
			want: wayland.Endpoint{Kind: wayland.EndpointFD, FD: 7},
		},
		"missing runtime dir": {
			env:   []string{`WAYLAND_DISPLAY=wayland-1`},
			kind:  wayland.KindNoCompositor,
			cause: wayland.CauseMissingRuntimeDir,
		},
		"relative runtime dir": {
			env:   []string{`XDG_RUNTIME_DIR=run/user/1000`},
			kind:  wayland.KindNoCompositor,
			cause: wayland.CauseRelativeRuntimeDir,
		},
		"relative runtime dir with absolute display": {
			env:  []string{`XDG_RUNTIME_DIR=run/user/1000`, `WAYLAND_DISPLAY=/tmp/sway.sock`},
			want: wayland.Endpoint{Kind: wayland.EndpointPath, Path: `/tmp/sway.sock`, Display: `/tmp/sway.sock`},
		},
		"path too long": {
			env:   []string{`XDG_RUNTIME_DIR=/` + strings.Repeat(`r`, 120)},
			kind:  wayland.KindNoCompositor,
			cause: wayland.CauseNameTooLong,
		},
		"socket not a number": {
			env:   []string{`WAYLAND_SOCKET=abc`},
			kind:  wayland.KindInvalidFD,
			cause: wayland.CauseInvalidFD,
		},
		"negative socket": {
			env:   []string{`WAYLAND_SOCKET=-3`},
			kind:  wayland.KindInvalidFD,
			cause: wayland.CauseInvalidFD,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ep, err := wayland.ResolveEndpoint(environ.EnvToProperties(tc.env))
			if tc.kind == 0 {
				require.NoError(t, err)
				assert.Equal(t, tc.want, ep)
				return
			}
			require.Error(t, err)
			var ce *wayland.ConnectError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.kind, ce.Kind)
			assert.Equal(t, tc.cause, ce.Cause)
		})
	}
}

func TestResolveEndpointNilEnv(t *testing.T) {
	_, err := wayland.ResolveEndpoint(nil)
	assert.Error(t, err)
}

func TestConnectErrorMatching(t *testing.T) {
	_, err := wayland.ResolveEndpoint(environ.EnvToProperties(nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, wayland.ErrNoCompositor)
	assert.NotErrorIs(t, err, wayland.ErrInvalidFD)
	assert.Contains(t, err.Error(), `XDG_RUNTIME_DIR not set`)

	_, err = wayland.ResolveEndpoint(environ.EnvToProperties([]string{`WAYLAND_SOCKET=x`}))
	require.Error(t, err)
	assert.ErrorIs(t, err, wayland.ErrInvalidFD)
	assert.NotErrorIs(t, err, wayland.ErrNoCompositor)
}

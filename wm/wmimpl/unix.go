//go:build unix && !android && !darwin && !js

package wmimpl

import (
	"github.com/srlehn/wlconn/internal/consts"
	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/internal/logx"
	"github.com/srlehn/wlconn/wm"
)

type connector func(env environ.Properties, lp logx.LoggerProvider) (wm.Connection, error)

func (i *implementation) newConn(env environ.Properties) (wm.Connection, error) {
	if env == nil {
		return nil, errors.NilParam()
	}
	xdgSessionType, _ := env.LookupEnv(`XDG_SESSION_TYPE`)
	switch xdgSessionType {
	case consts.SessionTypeWayland:
		return newConnWayland(env, i)
	case consts.SessionTypeX11:
		return newConnX11(env, i)
	}

	// tty or unknown session: try what the environment advertises, Wayland first
	var connectors []connector
	if hasEnv(env, `WAYLAND_SOCKET`, `WAYLAND_DISPLAY`) {
		connectors = append(connectors, newConnWayland)
	}
	if hasEnv(env, `DISPLAY`) {
		connectors = append(connectors, newConnX11)
	}
	if len(connectors) == 0 {
		return nil, errors.New(consts.ErrNoDisplayServer)
	}
	var errFirst error
	for _, connect := range connectors {
		conn, err := connect(env, i)
		if err == nil {
			return conn, nil
		}
		logx.Debug(`display server connection failed`, i, `error`, err)
		if errFirst == nil {
			errFirst = err
		}
	}
	return nil, errFirst
}

func hasEnv(env environ.Enver, names ...string) bool {
	for _, name := range names {
		if v, ok := env.LookupEnv(name); ok && len(v) > 0 {
			return true
		}
	}
	return false
}

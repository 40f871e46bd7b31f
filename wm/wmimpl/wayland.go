//go:build unix && !android && !darwin && !js

package wmimpl

import (
	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/internal/logx"
	"github.com/srlehn/wlconn/wayland"
	"github.com/srlehn/wlconn/wm"
)

var _ wm.Connection = (*connWayland)(nil)

type connWayland struct {
	*wayland.Connection
}

func newConnWayland(env environ.Properties, lp logx.LoggerProvider) (wm.Connection, error) {
	var opts wayland.Options
	opts = append(opts, wayland.SetEnviron(env))
	if lp != nil {
		opts = append(opts, wayland.SetLogger(lp.Logger()))
	}
	conn, err := wayland.ConnectToEnv(opts)
	if err != nil {
		return nil, err
	}
	return &connWayland{Connection: conn}, nil
}

func (c *connWayland) Conn() any {
	if c == nil {
		return nil
	}
	return c.Connection
}

func (c *connWayland) Server() string { return `wayland` }

func (c *connWayland) Resources() (environ.Properties, error) {
	if c == nil || c.Connection == nil {
		return nil, errors.NilReceiver()
	}
	if c.Closed() {
		return nil, errors.New(wayland.ErrClosed)
	}
	return c.Properties(), nil
}

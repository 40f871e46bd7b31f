//go:build unix && !android && !darwin && !js

package wmimpl

import (
	"strconv"
	"sync"

	"github.com/jezek/xgb/xproto"
	"github.com/srlehn/xgbutil"
	"github.com/srlehn/xgbutil/ewmh"

	"github.com/srlehn/wlconn/internal/consts"
	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/internal/logx"
	"github.com/srlehn/wlconn/internal/propkeys"
	"github.com/srlehn/wlconn/wm"
)

var _ wm.Connection = (*connX11)(nil)

type connX11 struct {
	*xgbutil.XUtil
	display   string
	logger    logx.LoggerProvider
	closeOnce sync.Once
	closed    bool
}

func newConnX11(env environ.Properties, lp logx.LoggerProvider) (wm.Connection, error) {
	display, _ := env.LookupEnv(`DISPLAY`)
	if len(display) == 0 {
		return nil, errors.Errorf(`%w: DISPLAY not set`, consts.ErrNoDisplayServer)
	}
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		logx.Debug(`connecting to X server failed`, lp, `display`, display, `error`, err)
		return nil, errors.New(err)
	}
	logx.Debug(`connected to X server`, lp, `display`, display)
	return &connX11{XUtil: xu, display: display, logger: lp}, nil
}

func (c *connX11) Close() error {
	if c == nil || c.XUtil == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		c.closed = true
		if conn := c.XUtil.Conn(); conn != nil {
			conn.Close()
		}
	})
	return nil
}

func (c *connX11) Conn() any {
	if c == nil {
		return nil
	}
	return c.XUtil
}

func (c *connX11) Server() string { return `x11` }

func (c *connX11) Resources() (environ.Properties, error) {
	if c == nil || c.XUtil == nil {
		return nil, errors.NilReceiver()
	}
	if c.closed {
		return nil, errors.New(`X server connection closed`)
	}
	setup := xproto.Setup(c.XUtil.Conn())
	if setup == nil {
		return nil, errors.New(`no X server setup info`)
	}
	pr := environ.NewProperties()
	pr.SetProperty(propkeys.DisplayServer, `x11`)
	pr.SetProperty(propkeys.X11Display, c.display)
	pr.SetProperty(propkeys.X11Vendor, setup.Vendor)
	pr.SetProperty(propkeys.X11ProtocolVersion,
		strconv.Itoa(int(setup.ProtocolMajorVersion))+`.`+strconv.Itoa(int(setup.ProtocolMinorVersion)))
	pr.SetProperty(propkeys.X11Screens, strconv.Itoa(len(setup.Roots)))
	// EWMH compliant window managers only
	if name, err := ewmh.GetEwmhWM(c.XUtil); err == nil && len(name) > 0 {
		pr.SetProperty(propkeys.X11WindowManager, name)
	} else if err != nil {
		logx.Debug(`no EWMH window manager`, c.logger, `error`, err)
	}
	return pr, nil
}

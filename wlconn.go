// Package wlconn connects to the Wayland compositor named by the process
// environment.
package wlconn

import (
	"github.com/srlehn/wlconn/internal/util"
	"github.com/srlehn/wlconn/wayland"
	"github.com/srlehn/wlconn/wm"
	"github.com/srlehn/wlconn/wm/wmimpl"
)

var (
	// chosen defaults
	wmImplementation = wmimpl.Impl()
)

// DefaultConfig is applied before the options passed to Connect.
var DefaultConfig = wayland.Options{
	wayland.SetSLogger(nil, false),
}

// Connect connects to the compositor named by the process environment.
func Connect(opts ...wayland.Option) (*wayland.Connection, error) {
	return wayland.ConnectToEnv(append(wayland.Options{DefaultConfig}, opts...)...)
}

// MustConnect is Connect terminating the process with a diagnostic when no
// compositor is available.
func MustConnect(opts ...wayland.Option) *wayland.Connection {
	conn, err := Connect(opts...)
	return util.Expect(conn, err, `no compositor available`)
}

// Display connects to whichever display server the environment points at,
// Wayland or X11.
func Display() (wm.Connection, error) {
	wm.SetImpl(wmImplementation)
	return wm.NewConn(nil)
}

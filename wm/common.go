// Package wm opens a connection to whatever display server the environment
// points at.
package wm

import (
	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
)

type Implementation interface {
	Name() string
	Conn(env environ.Properties) (Connection, error)
}

// Connection is a live display server connection.
type Connection interface {
	Close() error
	// Conn returns the underlying handle, *wayland.Connection or *xgb.Conn.
	Conn() any
	// Server returns "wayland" or "x11".
	Server() string
	Resources() (environ.Properties, error)
}

var implem Implementation

func SetImpl(impl Implementation) {
	if impl != nil {
		implem = impl
	}
}

func Impl() Implementation { return implem }

func NewConn(env environ.Properties) (Connection, error) {
	if implem == nil {
		return nil, errors.New(`no wm.Implementation set`)
	}
	if env == nil {
		env = environ.Process()
	}
	return implem.Conn(env)
}

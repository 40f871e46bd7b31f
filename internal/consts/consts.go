package consts

import (
	"errors"
)

var (
	ErrNotImplemented       = errors.New(`not implemented`)
	ErrNilReceiver          = errors.New(`nil receiver`)
	ErrNilParam             = errors.New(`nil parameter`)
	ErrPlatformNotSupported = errors.New(`platform not supported`)
	ErrNoDisplayServer      = errors.New(`no display server found in environment`)
)

const (
	LibraryName = `wlconn`

	// socket name used when WAYLAND_DISPLAY is unset
	WaylandDisplayDefault = `wayland-0`

	SessionTypeWayland = `wayland`
	SessionTypeX11     = `x11`
	SessionTypeTTY     = `tty`
)

package wayland

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

var (
	// ErrNoCompositor matches every ConnectError of kind KindNoCompositor.
	ErrNoCompositor = errors.New(`wlconn: no compositor available`)
	// ErrInvalidFD matches every ConnectError of kind KindInvalidFD.
	ErrInvalidFD = errors.New(`wlconn: WAYLAND_SOCKET is not a valid socket`)
	// ErrClosed is returned by every operation on a released connection.
	ErrClosed = errors.New(`wlconn: connection closed`)
	// ErrProtocol matches every *ProtocolError.
	ErrProtocol = errors.New(`wlconn: protocol error`)
)

type ErrorKind uint8

const (
	KindNoCompositor ErrorKind = iota + 1
	KindInvalidFD
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoCompositor:
		return `no compositor`
	case KindInvalidFD:
		return `invalid fd`
	default:
		return fmt.Sprintf(`invalid kind #%d`, k)
	}
}

// Cause narrows down why connecting failed.
type Cause uint8

const (
	CauseOther Cause = iota
	CauseMissingRuntimeDir
	CauseNameTooLong
	CauseSocketNotFound
	CauseConnectionRefused
	CausePermissionDenied
	CauseInvalidFD
	CauseRelativeRuntimeDir
	CauseSocketUnsupported
)

func (c Cause) String() string {
	switch c {
	case CauseOther:
		return `other`
	case CauseMissingRuntimeDir:
		return `XDG_RUNTIME_DIR not set`
	case CauseNameTooLong:
		return `socket path too long`
	case CauseSocketNotFound:
		return `socket not found`
	case CauseConnectionRefused:
		return `connection refused`
	case CausePermissionDenied:
		return `permission denied`
	case CauseInvalidFD:
		return `invalid fd`
	case CauseRelativeRuntimeDir:
		return `XDG_RUNTIME_DIR not absolute`
	case CauseSocketUnsupported:
		return `handed over socket not supported`
	default:
		return fmt.Sprintf(`invalid cause #%d`, c)
	}
}

// ConnectError is returned when no connection to the compositor could be
// established.
type ConnectError struct {
	Kind     ErrorKind
	Cause    Cause
	Endpoint Endpoint
	Err      error
}

func (e *ConnectError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindInvalidFD:
		b.WriteString(ErrInvalidFD.Error())
	default:
		b.WriteString(ErrNoCompositor.Error())
	}
	b.WriteString(` (`)
	b.WriteString(e.Cause.String())
	if e.Endpoint.Kind != EndpointInvalid {
		b.WriteString(`: `)
		b.WriteString(e.Endpoint.String())
	}
	b.WriteString(`)`)
	if e.Err != nil {
		b.WriteString(`: `)
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConnectError) Unwrap() error { return e.Err }

func (e *ConnectError) Is(target error) bool {
	switch target {
	case ErrNoCompositor:
		return e.Kind == KindNoCompositor
	case ErrInvalidFD:
		return e.Kind == KindInvalidFD
	}
	return false
}

// ProtocolError is a fatal wl_display.error sent by the compositor.
// The connection is unusable afterwards.
type ProtocolError struct {
	ObjectID  uint32
	Code      uint32
	Interface string
	Message   string
}

func (e *ProtocolError) Error() string {
	iface := e.Interface
	if len(iface) == 0 {
		iface = `unknown`
	}
	return fmt.Sprintf(`wlconn: protocol error on %s@%d (code %d): %s`, iface, e.ObjectID, e.Code, e.Message)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

func newConnectError(kind ErrorKind, cause Cause, ep Endpoint, err error) *ConnectError {
	return &ConnectError{Kind: kind, Cause: cause, Endpoint: ep, Err: err}
}

func dialCause(err error) Cause {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CauseSocketNotFound
	case errors.Is(err, syscall.ECONNREFUSED):
		return CauseConnectionRefused
	case errors.Is(err, fs.ErrPermission):
		return CausePermissionDenied
	default:
		return CauseOther
	}
}

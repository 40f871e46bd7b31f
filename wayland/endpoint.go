package wayland

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/srlehn/wlconn/internal/consts"
	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
)

// maximum socket path length, sun_path without the terminating NUL
const maxSocketPathLen = 107

type EndpointKind uint8

const (
	EndpointInvalid EndpointKind = iota
	EndpointPath
	EndpointFD
)

func (k EndpointKind) String() string {
	switch k {
	case EndpointPath:
		return `path`
	case EndpointFD:
		return `fd`
	default:
		return `invalid`
	}
}

// Endpoint is where the compositor is expected to listen.
type Endpoint struct {
	Kind EndpointKind
	// Path is the socket path for EndpointPath.
	Path string
	// FD is the inherited socket for EndpointFD.
	FD int
	// Display is the WAYLAND_DISPLAY value the path was derived from.
	Display string
}

func (e Endpoint) String() string {
	switch e.Kind {
	case EndpointPath:
		return e.Path
	case EndpointFD:
		return fmt.Sprintf(`WAYLAND_SOCKET=%d`, e.FD)
	default:
		return `<invalid endpoint>`
	}
}

// ResolveEndpoint finds the compositor socket from env without connecting.
//
// WAYLAND_SOCKET takes precedence over WAYLAND_DISPLAY. WAYLAND_DISPLAY
// defaults to "wayland-0"; a relative name is looked up in XDG_RUNTIME_DIR,
// which has to be absolute.
func ResolveEndpoint(env environ.Enver) (Endpoint, error) {
	if env == nil {
		return Endpoint{}, errors.NilParam()
	}
	if sock, ok := env.LookupEnv(`WAYLAND_SOCKET`); ok {
		fd, err := strconv.Atoi(strings.TrimSpace(sock))
		if err != nil || fd < 0 {
			if err == nil {
				err = fmt.Errorf(`negative fd %d`, fd)
			}
			return Endpoint{}, newConnectError(KindInvalidFD, CauseInvalidFD, Endpoint{}, err)
		}
		return Endpoint{Kind: EndpointFD, FD: fd}, nil
	}

	display, _ := env.LookupEnv(`WAYLAND_DISPLAY`)
	if len(display) == 0 {
		display = consts.WaylandDisplayDefault
	}
	var path string
	if filepath.IsAbs(display) {
		path = display
	} else {
		runtimeDir, _ := env.LookupEnv(`XDG_RUNTIME_DIR`)
		if len(runtimeDir) == 0 {
			return Endpoint{}, newConnectError(KindNoCompositor, CauseMissingRuntimeDir, Endpoint{Display: display}, nil)
		}
		if !filepath.IsAbs(runtimeDir) {
			return Endpoint{}, newConnectError(KindNoCompositor, CauseRelativeRuntimeDir, Endpoint{Display: display},
				fmt.Errorf(`XDG_RUNTIME_DIR=%q`, runtimeDir))
		}
		path = filepath.Join(runtimeDir, display)
	}
	ep := Endpoint{Kind: EndpointPath, Path: path, Display: display}
	if len(path) > maxSocketPathLen {
		return Endpoint{}, newConnectError(KindNoCompositor, CauseNameTooLong, ep, nil)
	}
	return ep, nil
}

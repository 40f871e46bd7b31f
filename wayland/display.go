package wayland

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/neurlang/wayland/wl"
)

// envMu guards the process environment while wl.Connect reads it.
var envMu sync.Mutex

// dialDisplay connects the client library to the socket at path.
// wl.Connect discovers its socket from the process environment only, the
// resolved path is handed to it through XDG_RUNTIME_DIR and WAYLAND_DISPLAY
// for the duration of the call.
func dialDisplay(path string) (*wl.Display, error) {
	envMu.Lock()
	defer envMu.Unlock()
	restore := overrideEnv(map[string]string{
		`XDG_RUNTIME_DIR`: filepath.Dir(path),
		`WAYLAND_DISPLAY`: filepath.Base(path),
	}, `WAYLAND_SOCKET`)
	defer restore()
	return wl.Connect(``)
}

func overrideEnv(set map[string]string, unset ...string) (restore func()) {
	type saved struct {
		value string
		ok    bool
	}
	prev := make(map[string]saved, len(set)+len(unset))
	for name, value := range set {
		v, ok := os.LookupEnv(name)
		prev[name] = saved{value: v, ok: ok}
		_ = os.Setenv(name, value)
	}
	for _, name := range unset {
		v, ok := os.LookupEnv(name)
		prev[name] = saved{value: v, ok: ok}
		_ = os.Unsetenv(name)
	}
	return func() {
		for name, s := range prev {
			if s.ok {
				_ = os.Setenv(name, s.value)
			} else {
				_ = os.Unsetenv(name)
			}
		}
	}
}

// displayHandler receives the wl_display events of a Connection.
type displayHandler struct{ c *Connection }

var (
	_ wl.DisplayErrorHandler    = displayHandler{}
	_ wl.DisplayDeleteIdHandler = displayHandler{}
)

func (h displayHandler) HandleDisplayError(ev wl.DisplayErrorEvent) {
	var objectID uint32
	if ev.ObjectId != nil {
		objectID = uint32(ev.ObjectId.Id())
	}
	h.c.protocolError(objectID, ev.Code, ev.Message)
}

func (h displayHandler) HandleDisplayDeleteId(ev wl.DisplayDeleteIdEvent) {
	h.c.released(ev.Id)
}

// actual implementation (Wayland, X11)
package wmimpl

import (
	"log/slog"

	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/wm"
)

var _ wm.Implementation = (*implementation)(nil)

type implementation struct {
	logger *slog.Logger
}

func Impl() wm.Implementation { return &implementation{} }

// ImplWithLogger is Impl logging through logger.
func ImplWithLogger(logger *slog.Logger) wm.Implementation {
	return &implementation{logger: logger}
}

func (i *implementation) Name() string { return `generic` }

func (i *implementation) Logger() *slog.Logger { return i.logger }

func (i *implementation) Conn(env environ.Properties) (wm.Connection, error) {
	return i.newConn(env)
}

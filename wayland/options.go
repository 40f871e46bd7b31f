package wayland

import (
	"log/slog"

	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
)

type Option interface {
	ApplyOption(c *Connection) error
}

var _ Option = (OptFunc)(nil)

type OptFunc func(*Connection) error

func (o OptFunc) ApplyOption(c *Connection) error { return o(c) }

var _ Option = (Options)(nil)

type Options []Option

func (o Options) ApplyOption(c *Connection) error { return c.setOptions(o...) }

func (c *Connection) setOptions(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(c); err != nil {
			return errors.New(err)
		}
	}
	return nil
}

// SetEnviron replaces the process environment as source for socket discovery.
func SetEnviron(env environ.Enver) Option {
	return OptFunc(func(c *Connection) error {
		if env == nil {
			return errors.NilParam()
		}
		c.env = env
		return nil
	})
}

// SetEnv is SetEnviron for "KEY=value" entries.
func SetEnv(env []string) Option {
	return OptFunc(func(c *Connection) error {
		c.env = environ.EnvToProperties(env)
		return nil
	})
}

// SetSLogger logs through a new logger on h, slog.Default() for a nil h.
// enable false turns logging off.
func SetSLogger(h slog.Handler, enable bool) Option {
	return OptFunc(func(c *Connection) error {
		if enable {
			if h == nil {
				c.logger = slog.Default()
			} else {
				c.logger = slog.New(h)
			}
		} else {
			c.logger = nil
		}
		return nil
	})
}

// SetLogger logs through logger, nil turns logging off.
func SetLogger(logger *slog.Logger) Option {
	return OptFunc(func(c *Connection) error { c.logger = logger; return nil })
}

package wminternal

import (
	"github.com/srlehn/wlconn/internal/consts"
	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/internal/propkeys"
	"github.com/srlehn/wlconn/wm"
)

var _ wm.Connection = (*ConnDummy)(nil)

// ConnDummy is a connection to no display server at all.
type ConnDummy struct {
	Closed bool
}

func (c *ConnDummy) Close() error   { c.Closed = true; return nil }
func (c *ConnDummy) Conn() any      { return nil }
func (c *ConnDummy) Server() string { return `dummy` }
func (c *ConnDummy) Resources() (environ.Properties, error) {
	pr := environ.NewProperties()
	pr.SetProperty(propkeys.DisplayServer, `dummy`)
	return pr, nil
}

var _ wm.Implementation = (*dummyImplementation)(nil)

type dummyImplementation struct{ fail bool }

// DummyImpl hands out ConnDummy connections.
func DummyImpl() wm.Implementation { return &dummyImplementation{} }

// FailingImpl never connects.
func FailingImpl() wm.Implementation { return &dummyImplementation{fail: true} }

func (i *dummyImplementation) Name() string { return `dummy` }

func (i *dummyImplementation) Conn(env environ.Properties) (wm.Connection, error) {
	if i.fail {
		return nil, errors.New(consts.ErrNotImplemented)
	}
	return &ConnDummy{}, nil
}

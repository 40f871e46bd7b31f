//go:build !unix || android || darwin || js

// not supported platforms

package wmimpl

import (
	"github.com/srlehn/wlconn/internal/consts"
	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/errors"
	"github.com/srlehn/wlconn/wm"
)

func (i *implementation) newConn(env environ.Properties) (wm.Connection, error) {
	return nil, errors.New(consts.ErrPlatformNotSupported)
}
